package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pflegewerk/lohnmonitor/internal/settings"
)

// SettingsRepository implements the settings.Repository interface using GORM
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

// Get retrieves one setting by key; a missing row returns nil, nil so
// callers can fall back to their default.
func (r *SettingsRepository) Get(key string) (*settings.Setting, error) {
	var row settings.Setting
	err := r.db.Where("key = ?", key).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// All retrieves every setting row.
func (r *SettingsRepository) All() ([]*settings.Setting, error) {
	var rows []*settings.Setting
	err := r.db.Order("key ASC").Find(&rows).Error
	return rows, err
}

// Upsert inserts or updates a setting by key.
func (r *SettingsRepository) Upsert(key, value string) error {
	row := settings.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
