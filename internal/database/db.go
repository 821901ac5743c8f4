package database

import (
	"log"
	"sync"

	"dispatch-ledger/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	shared     *gorm.DB
	sharedErr  error
	sharedOnce sync.Once
)

// Connect returns the process-wide database handle, opening it on first use.
// Concurrent first callers all get the same handle (or the same error);
// the dsn of later calls is ignored.
func Connect(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Open(dsn, level)
		if sharedErr == nil {
			log.Println("✅ Local dispatch store ready:", dsn)
		}
	})
	return shared, sharedErr
}

// Open opens (creating if needed) the SQLite file at dsn and brings the schema
// up to date. Safe to call on an already-upgraded database.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, unavailable("open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, unavailable("open", err)
	}
	// One writer, one connection: SQLite serializes anyway and this keeps
	// transactions from tripping over "database is locked".
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, unavailable("ping", err)
	}

	if err := migrate(db); err != nil {
		sqlDB.Close()
		return nil, unavailable("migrate", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	// AutoMigrate only adds what is missing: tables, columns, and the
	// supplier/date/dc_number indexes declared on the models.
	return db.AutoMigrate(
		&models.SaleRecord{},
		&models.SupplierGST{},
		&models.LegacyEntry{},
		&models.User{},
	)
}
