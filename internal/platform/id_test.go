package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID_ReturnsValidUUIDString(t *testing.T) {
	id := NewID()
	assert.NotEmpty(t, id)
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestBackupID_Format(t *testing.T) {
	ts := time.Date(2026, 3, 14, 2, 30, 45, 0, time.UTC)
	assert.Equal(t, "staging_full_20260314_023045", BackupID("staging", "full", ts))
}

func TestBackupID_SortsByTime(t *testing.T) {
	earlier := BackupID("prod", "database", time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC))
	later := BackupID("prod", "database", time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}
