// Package legacy upgrades the register from its pre-migration shapes (one
// transformer per flat record, kept in a plain key-value store or an exported
// JSON file) into the current multi-item dispatch records.
package legacy

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"dispatch-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LegacyKey is the well-known key the old register was saved under.
const LegacyKey = "sales_records"

// Source is where legacy data may be found. Load reports false when there is none.
type Source interface {
	Load(ctx context.Context) ([]byte, bool, error)
	Clear(ctx context.Context) error
}

// KVSource reads the legacy array from the legacy_kv table.
type KVSource struct {
	db  *gorm.DB
	key string
}

func NewKVSource(db *gorm.DB) *KVSource {
	return &KVSource{db: db, key: LegacyKey}
}

func (s *KVSource) Load(ctx context.Context) ([]byte, bool, error) {
	var entries []models.LegacyEntry
	if err := s.db.WithContext(ctx).Where("name = ?", s.key).Limit(1).Find(&entries).Error; err != nil {
		return nil, false, err
	}
	if len(entries) == 0 || strings.TrimSpace(entries[0].Value) == "" {
		return nil, false, nil
	}
	return []byte(entries[0].Value), true, nil
}

// Save stores a raw legacy payload under the well-known key, replacing any previous one.
func (s *KVSource) Save(ctx context.Context, value []byte) error {
	entry := models.LegacyEntry{Name: s.key, Value: string(value)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}

func (s *KVSource) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("name = ?", s.key).Delete(&models.LegacyEntry{}).Error
}

// FileSource reads a legacy JSON export from disk. Clearing renames the file
// with a .migrated suffix instead of removing it.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, false, nil
	}
	return data, true, nil
}

func (s FileSource) Clear(ctx context.Context) error {
	err := os.Rename(s.Path, s.Path+".migrated")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
