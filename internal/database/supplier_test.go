package database

import (
	"context"
	"testing"

	"dispatch-ledger/internal/models"
)

func supplierRecord(id, supplier, date, gst string) models.SaleRecord {
	return models.SaleRecord{
		ID:        id,
		Date:      date,
		Supplier:  supplier,
		GSTNumber: gst,
		DCNumber:  "DC-" + id,
		Items:     []models.SaleItem{{SerialNumber: "T-" + id, KVA: 100}},
	}
}

func putAll(t *testing.T, store *Store, recs ...models.SaleRecord) {
	t.Helper()
	for _, rec := range recs {
		if _, err := store.Put(context.Background(), rec); err != nil {
			t.Fatalf("Put(%s) error = %v", rec.ID, err)
		}
	}
}

func TestGSTBySupplier(t *testing.T) {
	tests := []struct {
		name      string
		records   []models.SaleRecord
		supplier  string
		wantGST   string
		wantFound bool
	}{
		{
			name: "Most recent non-blank wins over newer blank",
			records: []models.SaleRecord{
				supplierRecord("1", "Acme", "2024-01-01", "A1"),
				supplierRecord("2", "Acme", "2024-06-01", ""),
			},
			supplier:  "Acme",
			wantGST:   "A1",
			wantFound: true,
		},
		{
			name: "Newest dated GST is chosen",
			records: []models.SaleRecord{
				supplierRecord("1", "Acme", "2024-06-01", "NEW"),
				supplierRecord("2", "Acme", "2023-01-01", "OLD"),
			},
			supplier:  "Acme",
			wantGST:   "NEW",
			wantFound: true,
		},
		{
			name: "Tie on date goes to the greatest id",
			records: []models.SaleRecord{
				supplierRecord("b", "Acme", "2024-01-01", "FROM-B"),
				supplierRecord("a", "Acme", "2024-01-01", "FROM-A"),
			},
			supplier:  "Acme",
			wantGST:   "FROM-B",
			wantFound: true,
		},
		{
			name: "Exact supplier match only",
			records: []models.SaleRecord{
				supplierRecord("1", "Acme Ltd", "2024-01-01", "OTHER"),
			},
			supplier:  "Acme",
			wantFound: false,
		},
		{
			name: "Input is trimmed",
			records: []models.SaleRecord{
				supplierRecord("1", "Acme", "2024-01-01", "A1"),
			},
			supplier:  "  Acme ",
			wantGST:   "A1",
			wantFound: true,
		},
		{
			name: "Blank supplier",
			records: []models.SaleRecord{
				supplierRecord("1", "", "2024-01-01", "X"),
			},
			supplier:  "   ",
			wantFound: false,
		},
		{
			name: "Only blank GST numbers",
			records: []models.SaleRecord{
				supplierRecord("1", "Acme", "2024-01-01", ""),
			},
			supplier:  "Acme",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			putAll(t, store, tt.records...)

			gst, found, err := store.GSTBySupplier(context.Background(), tt.supplier)
			if err != nil {
				t.Fatalf("GSTBySupplier() error = %v", err)
			}
			if found != tt.wantFound || gst != tt.wantGST {
				t.Errorf("GSTBySupplier(%q) = %q, %v; want %q, %v", tt.supplier, gst, found, tt.wantGST, tt.wantFound)
			}
		})
	}
}

func TestSupplierCacheFollowsEditsAndDeletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	putAll(t, store,
		supplierRecord("1", "Acme", "2024-01-01", "A1"),
		supplierRecord("2", "Acme", "2024-03-01", "A2"),
	)

	assertGST := func(supplier, want string, wantFound bool) {
		t.Helper()
		gst, found, err := store.GSTBySupplier(ctx, supplier)
		if err != nil {
			t.Fatalf("GSTBySupplier() error = %v", err)
		}
		if gst != want || found != wantFound {
			t.Errorf("GSTBySupplier(%q) = %q, %v; want %q, %v", supplier, gst, found, want, wantFound)
		}
	}

	assertGST("Acme", "A2", true)

	// Deleting the newest falls back to the older GST.
	if err := store.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertGST("Acme", "A1", true)

	// Moving the last record to another supplier clears the old entry.
	moved := supplierRecord("1", "Beta", "2024-01-01", "A1")
	putAll(t, store, moved)
	assertGST("Acme", "", false)
	assertGST("Beta", "A1", true)

	var cached []models.SupplierGST
	if err := store.DB().Order("supplier").Find(&cached).Error; err != nil {
		t.Fatalf("reading supplier cache: %v", err)
	}
	if len(cached) != 1 || cached[0].Supplier != "Beta" || cached[0].GSTNumber != "A1" {
		t.Errorf("supplier cache = %+v, want only Beta/A1", cached)
	}
}

func TestGSTBySupplierFallsBackWithoutCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	putAll(t, store,
		supplierRecord("1", "Acme", "2024-01-01", "A1"),
		supplierRecord("2", "Acme", "2024-06-01", ""),
	)

	if err := store.DB().Where("1 = 1").Delete(&models.SupplierGST{}).Error; err != nil {
		t.Fatalf("clearing cache: %v", err)
	}
	gst, found, err := store.GSTBySupplier(ctx, "Acme")
	if err != nil || !found || gst != "A1" {
		t.Errorf("GSTBySupplier() without cache = %q, %v, %v; want A1", gst, found, err)
	}

	// Lookups never write.
	var n int64
	store.DB().Model(&models.SupplierGST{}).Count(&n)
	if n != 0 {
		t.Errorf("GSTBySupplier() wrote %d cache rows", n)
	}

	if err := store.RebuildSuppliers(ctx); err != nil {
		t.Fatalf("RebuildSuppliers() error = %v", err)
	}
	var rebuilt []models.SupplierGST
	store.DB().Find(&rebuilt)
	want := models.SupplierGST{Supplier: "Acme", GSTNumber: "A1", Date: "2024-01-01"}
	if len(rebuilt) != 1 || rebuilt[0] != want {
		t.Errorf("rebuilt cache = %+v, want [%+v]", rebuilt, want)
	}
}
