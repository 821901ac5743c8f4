package handlers

import (
	"net/http"

	"dispatch-ledger/internal/ai"
	"dispatch-ledger/internal/auth"
	"dispatch-ledger/internal/database"
	"dispatch-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps is everything the routes need. Assistant may be nil.
type Deps struct {
	Store     *database.Store
	Tokens    *auth.Manager
	Assistant *ai.Assistant
}

// Register mounts the register's API on r.
func Register(r *gin.Engine, d Deps) {
	sales := &SaleHandler{Store: d.Store}
	login := &AuthHandler{Store: d.Store, Tokens: d.Tokens}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", login.Login)

	// --- OPEN TO THE OFFICE ---
	api := r.Group("/api")
	{
		api.GET("/sales", sales.ListSales)
		api.GET("/sales/export", sales.ExportSales)
		api.GET("/sales/:id", sales.GetSale)
		api.POST("/sales", sales.CreateSale)
		api.PUT("/sales/:id", sales.UpdateSale)
		api.GET("/suppliers/gst", sales.LookupGST)
		api.GET("/reports", sales.GetDispatchReport)
		api.GET("/reports/suppliers", sales.GetSupplierBreakdown)
	}

	// --- ADMIN ONLY ---
	admin := r.Group("/api")
	admin.Use(middleware.AuthMiddleware(d.Tokens), middleware.RequireRole("admin"))
	{
		admin.DELETE("/sales/:id", sales.DeleteSale)
		if d.Assistant != nil {
			assistant := &AIHandler{Assistant: d.Assistant}
			admin.POST("/ask", assistant.AskAI)
		}
	}
}
