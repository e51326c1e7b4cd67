package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edvin/opsdash/internal/model"
)

// ScheduleStore holds the per-environment backup schedules. An
// environment without a stored row gets the disabled default, so every
// known environment always resolves to a schedule.
type ScheduleStore struct {
	db *gorm.DB
}

func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Get returns the stored schedule for env, or the disabled default if
// none has been saved yet.
func (s *ScheduleStore) Get(env string) (model.ScheduleConfig, error) {
	var cfg model.ScheduleConfig
	err := s.db.First(&cfg, "environment = ?", env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultSchedule(env), nil
	}
	if err != nil {
		return model.ScheduleConfig{}, fmt.Errorf("get schedule for %s: %w", env, err)
	}
	return cfg, nil
}

// Put upserts the schedule for cfg.Environment.
func (s *ScheduleStore) Put(cfg model.ScheduleConfig) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "environment"}},
		UpdateAll: true,
	}).Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("save schedule for %s: %w", cfg.Environment, err)
	}
	return nil
}

// List returns all stored schedules.
func (s *ScheduleStore) List() ([]model.ScheduleConfig, error) {
	var configs []model.ScheduleConfig
	if err := s.db.Order("environment").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return configs, nil
}
