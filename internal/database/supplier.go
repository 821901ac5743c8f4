package database

import (
	"context"
	"strings"

	"dispatch-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GSTBySupplier returns the GST number of the most recent dispatch for this
// supplier that carried one. Records with a blank GST are skipped even when
// newer. It never writes.
func (s *Store) GSTBySupplier(ctx context.Context, supplier string) (string, bool, error) {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return "", false, nil
	}
	db := s.db.WithContext(ctx)

	var cached []models.SupplierGST
	if err := db.Where("supplier = ?", supplier).Limit(1).Find(&cached).Error; err != nil {
		return "", false, unavailable("gst lookup", err)
	}
	if len(cached) == 1 && cached[0].GSTNumber != "" {
		return cached[0].GSTNumber, true, nil
	}

	latest, found, err := latestGST(db, supplier)
	if err != nil {
		return "", false, unavailable("gst lookup", err)
	}
	return latest.GSTNumber, found, nil
}

// RebuildSuppliers recomputes the whole supplier cache from the sales table.
func (s *Store) RebuildSuppliers(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SupplierGST{}).Error; err != nil {
			return err
		}
		var names []string
		if err := tx.Model(&models.SaleRecord{}).Distinct("supplier").Pluck("supplier", &names).Error; err != nil {
			return err
		}
		for _, name := range names {
			if err := refreshSupplier(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
	return unavailable("rebuild suppliers", err)
}

// latestGST picks, among the supplier's records with a GST number, the one
// with the greatest date; equal dates fall back to the greatest id.
func latestGST(db *gorm.DB, supplier string) (models.SupplierGST, bool, error) {
	var rows []models.SaleRecord
	err := db.Select("id", "date", "supplier", "gst_number").
		Where("supplier = ? AND gst_number <> ''", supplier).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return models.SupplierGST{}, false, err
	}
	return models.SupplierGST{
		Supplier:  supplier,
		GSTNumber: rows[0].GSTNumber,
		Date:      rows[0].Date,
	}, true, nil
}

func refreshSupplier(tx *gorm.DB, supplier string) error {
	if supplier == "" {
		return nil
	}
	latest, found, err := latestGST(tx, supplier)
	if err != nil {
		return err
	}
	if !found {
		return tx.Where("supplier = ?", supplier).Delete(&models.SupplierGST{}).Error
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&latest).Error
}
