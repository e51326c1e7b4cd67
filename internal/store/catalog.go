package store

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// Catalog is the authoritative index of completed backups. A record is
// appended only after its artifacts exist on disk, so readers never see
// a cataloged backup whose files were never produced; files may still
// disappear out-of-band, which is why FilesExist is recomputed on read.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Append inserts a completed backup record.
func (c *Catalog) Append(record model.BackupRecord) error {
	if err := c.db.Create(&record).Error; err != nil {
		return fmt.Errorf("append backup %s: %w", record.ID, err)
	}
	return nil
}

// List returns the records for one environment, or all environments if
// env is empty, newest first. FilesExist is recomputed from disk.
func (c *Catalog) List(env string) ([]model.BackupRecord, error) {
	var records []model.BackupRecord
	q := c.db.Order("created_at desc")
	if env != "" {
		q = q.Where("environment = ?", env)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	for i := range records {
		records[i].FilesExist = filesExist(&records[i])
	}
	return records, nil
}

// Get returns a single record by backup ID.
func (c *Catalog) Get(id string) (*model.BackupRecord, error) {
	var record model.BackupRecord
	err := c.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errdefs.NotFoundError{Kind: "backup", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %s: %w", id, err)
	}
	record.FilesExist = filesExist(&record)
	return &record, nil
}

// Remove deletes a backup's artifacts from disk and then its catalog
// row. A missing artifact is not an error; removal is idempotent.
func (c *Catalog) Remove(id string) error {
	record, err := c.Get(id)
	if err != nil {
		return err
	}
	for _, file := range record.ArtifactFiles() {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove artifact %s: %w", file, err)
		}
	}
	if dir := record.ArtifactDir(); dir != "" {
		// Best effort; the directory may hold unrelated files.
		_ = os.Remove(dir)
	}
	if err := c.db.Delete(&model.BackupRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("remove backup %s: %w", id, err)
	}
	return nil
}

// MarkUploaded records that a backup's artifacts reached the given
// remote backend.
func (c *Catalog) MarkUploaded(id, backend string) error {
	res := c.db.Model(&model.BackupRecord{}).Where("id = ?", id).Updates(map[string]any{
		"uploaded":    true,
		"uploaded_to": backend,
	})
	if res.Error != nil {
		return fmt.Errorf("mark backup %s uploaded: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &errdefs.NotFoundError{Kind: "backup", ID: id}
	}
	return nil
}

func filesExist(record *model.BackupRecord) bool {
	files := record.ArtifactFiles()
	if len(files) == 0 {
		return false
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return false
		}
	}
	return true
}
