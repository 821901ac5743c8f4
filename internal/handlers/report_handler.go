package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// SupplierTotals is one supplier's line in the breakdown report
type SupplierTotals struct {
	Supplier     string  `json:"supplier"`
	Dispatches   int     `json:"dispatches"`
	Transformers int     `json:"transformers"`
	TotalKVA     float64 `json:"total_kva"`
}

// SupplierBreakdown is the final payload sent to the frontend
type SupplierBreakdown struct {
	Suppliers  []SupplierTotals `json:"suppliers"`
	GrandTotal float64          `json:"grand_total_kva"`
}

// --- GET: /api/reports?start=&end= ---
// Defaults to the current month when no window is given.
func (h *SaleHandler) GetDispatchReport(c *gin.Context) {
	now := time.Now()
	start := c.DefaultQuery("start", now.Format("2006-01")+"-01")
	end := c.DefaultQuery("end", now.Format(time.DateOnly))

	_, err1 := time.Parse(time.DateOnly, start)
	_, err2 := time.Parse(time.DateOnly, end)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be in YYYY-MM-DD format"})
		return
	}

	summary, err := h.Store.Summary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- GET: /api/reports/suppliers ---
// GetSupplierBreakdown totals dispatched units and KVA per supplier, all time.
func (h *SaleHandler) GetSupplierBreakdown(c *gin.Context) {
	// 1. Fetch every dispatch
	recs, err := h.Store.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Group by supplier
	var grandTotal float64
	grouped := make(map[string]*SupplierTotals)
	for _, r := range recs {
		name := r.Supplier
		if name == "" {
			name = "Unassigned"
		}
		if _, exists := grouped[name]; !exists {
			grouped[name] = &SupplierTotals{Supplier: name}
		}
		g := grouped[name]
		g.Dispatches++
		g.Transformers += len(r.Items)
		for _, it := range r.Items {
			g.TotalKVA += it.KVA
			grandTotal += it.KVA
		}
	}

	// 3. Flatten into a slice sorted by name
	response := SupplierBreakdown{Suppliers: []SupplierTotals{}, GrandTotal: grandTotal}
	for _, g := range grouped {
		response.Suppliers = append(response.Suppliers, *g)
	}
	sort.Slice(response.Suppliers, func(i, j int) bool {
		return response.Suppliers[i].Supplier < response.Suppliers[j].Supplier
	})

	c.JSON(http.StatusOK, response)
}
