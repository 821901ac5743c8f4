package database

import (
	"context"
	"strings"

	"dispatch-ledger/internal/models"
)

// Search returns the records matching q (case-insensitive, any field except
// manufacturer), newest first. A blank q lists everything.
func (s *Store) Search(ctx context.Context, q string) ([]models.SaleRecord, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.SaleRecord, 0, len(all))
	for _, rec := range all {
		if rec.Matches(q) {
			out = append(out, rec)
		}
	}
	models.SortByDateDesc(out)
	return out, nil
}
