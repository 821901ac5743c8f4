package database

import (
	"context"

	"dispatch-ledger/internal/models"
)

// DispatchSummary holds the totals for a date window
type DispatchSummary struct {
	Start        string  `json:"start_date"`
	End          string  `json:"end_date"`
	Dispatches   int     `json:"dispatches"`
	Transformers int     `json:"transformers"`
	TotalKVA     float64 `json:"total_kva"`
	Suppliers    int     `json:"suppliers"`
}

// Summary totals the dispatches dated between start and end (inclusive, YYYY-MM-DD).
func (s *Store) Summary(ctx context.Context, start, end string) (*DispatchSummary, error) {
	var recs []models.SaleRecord

	// ISO dates compare correctly as strings, so the date index does the filtering
	err := s.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Find(&recs).Error
	if err != nil {
		return nil, unavailable("summary", err)
	}

	result := &DispatchSummary{Start: start, End: end, Dispatches: len(recs)}
	suppliers := make(map[string]bool)
	for _, rec := range recs {
		result.Transformers += len(rec.Items)
		for _, it := range rec.Items {
			result.TotalKVA += it.KVA
		}
		if rec.Supplier != "" {
			suppliers[rec.Supplier] = true
		}
	}
	result.Suppliers = len(suppliers)

	return result, nil
}
