package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the dispatch register: sales keyed by id, with the supplier GST
// cache kept in step inside the same transaction as every write.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for collaborators sharing the same file
// (the legacy key-value source, user accounts).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Put inserts or fully replaces the record at rec.ID and returns what was stored.
func (s *Store) Put(ctx context.Context, rec models.SaleRecord) (models.SaleRecord, error) {
	rec = rec.Normalized()
	if err := rec.Validate(); err != nil {
		return models.SaleRecord{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return putRecord(tx, rec)
	})
	if err != nil {
		return models.SaleRecord{}, unavailable("put", err)
	}
	return rec, nil
}

// PutBatch writes all records in one transaction: either every record is
// stored or none is. Nothing is written if any record fails validation.
func (s *Store) PutBatch(ctx context.Context, recs []models.SaleRecord) ([]models.SaleRecord, error) {
	out := make([]models.SaleRecord, 0, len(recs))
	for i, rec := range recs {
		rec = rec.Normalized()
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return out, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range out {
			if err := putRecord(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("put batch", err)
	}
	return out, nil
}

func putRecord(tx *gorm.DB, rec models.SaleRecord) error {
	// Remember who owned this id before, an edit may move it to another supplier.
	var previous []string
	if err := tx.Model(&models.SaleRecord{}).Where("id = ?", rec.ID).Pluck("supplier", &previous).Error; err != nil {
		return err
	}

	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return err
	}

	if err := refreshSupplier(tx, rec.Supplier); err != nil {
		return err
	}
	for _, name := range previous {
		if name != rec.Supplier {
			if err := refreshSupplier(tx, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the record with that id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (models.SaleRecord, error) {
	var rec models.SaleRecord
	err := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SaleRecord{}, ErrNotFound
	}
	if err != nil {
		return models.SaleRecord{}, unavailable("get", err)
	}
	return rec, nil
}

// Delete removes the record. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners []string
		if err := tx.Model(&models.SaleRecord{}).Where("id = ?", id).Pluck("supplier", &owners).Error; err != nil {
			return err
		}
		if len(owners) == 0 {
			return nil
		}
		if err := tx.Where("id = ?", id).Delete(&models.SaleRecord{}).Error; err != nil {
			return err
		}
		return refreshSupplier(tx, owners[0])
	})
	return unavailable("delete", err)
}

// GetAll returns every stored record in no particular order.
func (s *Store) GetAll(ctx context.Context) ([]models.SaleRecord, error) {
	var recs []models.SaleRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, unavailable("get all", err)
	}
	return recs, nil
}

// GetBySupplier returns the records whose supplier is exactly supplier,
// read through the supplier index.
func (s *Store) GetBySupplier(ctx context.Context, supplier string) ([]models.SaleRecord, error) {
	var recs []models.SaleRecord
	if err := s.db.WithContext(ctx).Where("supplier = ?", supplier).Find(&recs).Error; err != nil {
		return nil, unavailable("get by supplier", err)
	}
	return recs, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.SaleRecord{}).Count(&n).Error; err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}
