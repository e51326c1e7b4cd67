package platform

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const backupIDTimeLayout = "20060102_150405"

// NewID returns a random UUID string for request-scoped resources.
func NewID() string {
	return uuid.New().String()
}

// BackupID builds the catalog identifier for a backup. The embedded
// timestamp makes IDs sortable by creation time within an environment
// and doubles as the on-disk directory name.
func BackupID(env, kind string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s", env, kind, t.Format(backupIDTimeLayout))
}
