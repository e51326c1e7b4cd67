package model

import (
	"path/filepath"
	"time"
)

// Backup kinds. A full backup carries both a database dump and a
// filestore archive; the other kinds carry exactly one artifact.
const (
	BackupKindFull      = "full"
	BackupKindDatabase  = "database"
	BackupKindFilestore = "filestore"
)

// BackupRecord is a catalog entry describing one completed backup.
// FilesExist is never trusted from stored state; the catalog recomputes
// it from disk on every read.
type BackupRecord struct {
	ID            string    `json:"backup_id" gorm:"primaryKey"`
	Environment   string    `json:"environment" gorm:"index"`
	Kind          string    `json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
	Description   string    `json:"description,omitempty"`
	DatabaseName  string    `json:"database_name,omitempty"`
	DatabaseFile  string    `json:"database_file,omitempty"`
	FilestoreFile string    `json:"filestore_file,omitempty"`
	SizeBytes     int64     `json:"size_bytes"`
	FilesExist    bool      `json:"files_exist" gorm:"-"`
	Uploaded      bool      `json:"uploaded"`
	UploadedTo    string    `json:"uploaded_to,omitempty"`
}

// IncludesDatabase reports whether this record's kind carries a database dump.
func (r *BackupRecord) IncludesDatabase() bool {
	return r.Kind == BackupKindFull || r.Kind == BackupKindDatabase
}

// IncludesFilestore reports whether this record's kind carries a filestore archive.
func (r *BackupRecord) IncludesFilestore() bool {
	return r.Kind == BackupKindFull || r.Kind == BackupKindFilestore
}

// ArtifactFiles returns the paths of the artifacts this record owns.
func (r *BackupRecord) ArtifactFiles() []string {
	var files []string
	if r.DatabaseFile != "" {
		files = append(files, r.DatabaseFile)
	}
	if r.FilestoreFile != "" {
		files = append(files, r.FilestoreFile)
	}
	return files
}

// ArtifactDir returns the directory holding this record's artifacts,
// or "" if the record owns none.
func (r *BackupRecord) ArtifactDir() string {
	files := r.ArtifactFiles()
	if len(files) == 0 {
		return ""
	}
	return filepath.Dir(files[0])
}

// ValidBackupKind reports whether kind is one of the supported backup kinds.
func ValidBackupKind(kind string) bool {
	switch kind {
	case BackupKindFull, BackupKindDatabase, BackupKindFilestore:
		return true
	}
	return false
}
