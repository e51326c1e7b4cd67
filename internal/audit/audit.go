// Package audit records operator-visible events to an append-only
// JSON-lines file. The audit trail answers "what ran, when, and did it
// work" for backups, copies, schedule fires and container actions.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/model"
)

// Sink receives audit entries. Implementations must never lose an
// entry that Append returned nil for.
type Sink interface {
	Append(entry model.AuditEntry) error
}

// FileSink writes entries as JSON lines to a single file opened with
// O_APPEND, so concurrent writers interleave whole lines.
type FileSink struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewFileSink(path string, logger zerolog.Logger) *FileSink {
	return &FileSink{
		path:   path,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Append writes one entry. A zero Timestamp is stamped with the
// current time.
func (s *FileSink) Append(entry model.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Filter narrows a Read to matching entries. Zero values match all.
type Filter struct {
	Environment string
	Category    string
	Limit       int
}

// Read returns the most recent entries matching the filter, newest
// first. Malformed lines are skipped with a warning rather than
// failing the whole read.
func (s *FileSink) Read(filter Filter) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []model.AuditEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var entries []model.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry model.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			s.logger.Warn().Err(err).Msg("skipping malformed audit line")
			continue
		}
		if filter.Environment != "" && entry.Environment != filter.Environment {
			continue
		}
		if filter.Category != "" && entry.Category != filter.Category {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}
