package models

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Matches reports whether q (already lower-cased) appears in any searchable
// field. Manufacturer is deliberately left out of search.
func (r SaleRecord) Matches(q string) bool {
	if q == "" {
		return true
	}
	fields := []string{r.Date, r.Supplier, r.GSTNumber, r.DCNumber, r.Remarks}
	for _, it := range r.Items {
		fields = append(fields, it.SerialNumber, strconv.FormatFloat(it.KVA, 'f', -1, 64))
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// SortByDateDesc orders records newest first, then by id for a stable display.
func SortByDateDesc(recs []SaleRecord) {
	slices.SortFunc(recs, func(a, b SaleRecord) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
