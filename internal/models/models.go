package models

import (
	"time"

	"gorm.io/datatypes"
)

// User - An operator of the register. Only admins may delete dispatches.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'operator'
	CreatedAt    time.Time `json:"created_at"`
}

// SaleItem - One transformer unit inside a dispatch
type SaleItem struct {
	SerialNumber string  `json:"serialNumber" validate:"required"`
	KVA          float64 `json:"kva" validate:"gte=0"`
}

// SaleRecord - One dispatch (delivery challan). Items are kept in order
// as a JSON column so a record is always read back exactly as written.
type SaleRecord struct {
	ID           string                        `gorm:"primaryKey;size:64" json:"id" validate:"required"`
	Date         string                        `gorm:"index;size:10;not null" json:"date"`
	Supplier     string                        `gorm:"index;not null" json:"supplier"`
	GSTNumber    string                        `gorm:"not null" json:"gstNumber"`
	DCNumber     string                        `gorm:"index;not null" json:"dcNumber" validate:"required"`
	Manufacturer string                        `gorm:"not null" json:"manufacturer"`
	Items        datatypes.JSONSlice[SaleItem] `json:"items" validate:"min=1,dive"`
	Remarks      string                        `gorm:"not null" json:"remarks"`
}

func (SaleRecord) TableName() string { return "sales" }

// SupplierGST - Latest known GST number per supplier. Derived from sales,
// rebuilt on every write that touches the supplier.
type SupplierGST struct {
	Supplier  string `gorm:"primaryKey" json:"supplier"`
	GSTNumber string `gorm:"not null" json:"gstNumber"`
	Date      string `gorm:"size:10;not null" json:"date"`
}

func (SupplierGST) TableName() string { return "suppliers" }

// LegacyEntry - The old key-value store. The pre-migration register lived
// here as one serialized array under a single key.
type LegacyEntry struct {
	Name      string `gorm:"primaryKey;size:100"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (LegacyEntry) TableName() string { return "legacy_kv" }
