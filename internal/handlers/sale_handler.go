package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dispatch-ledger/internal/database"
	"dispatch-ledger/internal/export"
	"dispatch-ledger/internal/middleware"
	"dispatch-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SaleHandler serves the dispatch register.
type SaleHandler struct {
	Store *database.Store
}

// SaleItemRequest is one transformer line as the form sends it.
type SaleItemRequest struct {
	SerialNumber string  `json:"serialNumber" binding:"required"`
	KVA          float64 `json:"kva" binding:"gte=0"`
}

// SaleRequest is the body for create and update. The form insists on a date
// and a supplier even though the store does not.
type SaleRequest struct {
	Date         string            `json:"date" binding:"required,datetime=2006-01-02"`
	Supplier     string            `json:"supplier" binding:"required"`
	GSTNumber    string            `json:"gstNumber"`
	DCNumber     string            `json:"dcNumber" binding:"required"`
	Manufacturer string            `json:"manufacturer"`
	Items        []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Remarks      string            `json:"remarks"`
}

// blankField names the first field that is only whitespace, the same
// check the form makes before enabling save.
func (r SaleRequest) blankField() string {
	if strings.TrimSpace(r.Supplier) == "" {
		return "supplier"
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.SerialNumber) == "" {
			return fmt.Sprintf("items[%d].serialNumber", i)
		}
	}
	return ""
}

func (r SaleRequest) record(id string) models.SaleRecord {
	items := make([]models.SaleItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, models.SaleItem{SerialNumber: it.SerialNumber, KVA: it.KVA})
	}
	return models.SaleRecord{
		ID:           id,
		Date:         r.Date,
		Supplier:     r.Supplier,
		GSTNumber:    r.GSTNumber,
		DCNumber:     r.DCNumber,
		Manufacturer: r.Manufacturer,
		Items:        items,
		Remarks:      r.Remarks,
	}
}

// bindSale decodes and checks the body, answering 400 itself on failure.
func bindSale(c *gin.Context) (SaleRequest, bool) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return req, false
	}
	if field := req.blankField(); field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + field + " is blank"})
		return req, false
	}
	return req, true
}

// --- GET: /api/sales?q= ---
func (h *SaleHandler) ListSales(c *gin.Context) {
	recs, err := h.Store.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// --- GET: /api/sales/:id ---
func (h *SaleHandler) GetSale(c *gin.Context) {
	rec, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- POST: /api/sales ---
func (h *SaleHandler) CreateSale(c *gin.Context) {
	req, ok := bindSale(c)
	if !ok {
		return
	}

	saved, err := h.Store.Put(c.Request.Context(), req.record(uuid.NewString()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// --- PUT: /api/sales/:id ---
// Full replace of an existing dispatch. Unknown ids are not created here.
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	// 1. Check the dispatch exists
	if _, err := h.Store.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	// 2. Validate the new version
	req, ok := bindSale(c)
	if !ok {
		return
	}

	// 3. Replace it
	saved, err := h.Store.Put(ctx, req.record(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// --- DELETE: /api/sales/:id (admin) ---
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("🗑️ Dispatch %s deleted by user %d", c.Param("id"), middleware.CurrentUserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Dispatch deleted"})
}

// --- GET: /api/suppliers/gst?supplier= ---
func (h *SaleHandler) LookupGST(c *gin.Context) {
	supplier := strings.TrimSpace(c.Query("supplier"))
	gst, found, err := h.Store.GSTBySupplier(c.Request.Context(), supplier)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": supplier, "gstNumber": gst, "found": found})
}

// --- GET: /api/sales/export?q= ---
func (h *SaleHandler) ExportSales(c *gin.Context) {
	recs, err := h.Store.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, recs); err != nil {
		log.Println("❌ Export failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build the spreadsheet"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// respondError maps store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch not found"})
	case errors.Is(err, database.ErrStorageUnavailable):
		log.Println("❌ Storage error:", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is unavailable, try again"})
	default:
		log.Println("❌ Unexpected error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
