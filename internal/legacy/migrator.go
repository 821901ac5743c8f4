package legacy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"dispatch-ledger/internal/models"

	"github.com/google/uuid"
)

// MigrationError names the stage a migration failed at. Nothing has been
// written to the store when Stage is "load" or "parse".
type MigrationError struct {
	Stage string
	Err   error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("legacy migration failed at %s: %v", e.Stage, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// Rejection is a legacy record that did not pass validation and was left out.
type Rejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Report describes one migration run.
type Report struct {
	Found    bool        `json:"found"`
	Skipped  string      `json:"skipped,omitempty"`
	Parsed   int         `json:"parsed"`
	Imported int         `json:"imported"`
	Rejected []Rejection `json:"rejected,omitempty"`
	Cleared  bool        `json:"cleared"`
}

// Target is the part of the store a migration writes to.
type Target interface {
	Count(ctx context.Context) (int64, error)
	PutBatch(ctx context.Context, recs []models.SaleRecord) ([]models.SaleRecord, error)
}

type Migrator struct {
	store  Target
	source Source
	logger *log.Logger

	// ClearAfter removes the legacy data once all of its records are in the
	// store. Any rejection keeps it.
	ClearAfter bool

	newID func() string
}

func NewMigrator(store Target, source Source, logger *log.Logger, clearAfter bool) *Migrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Migrator{
		store:      store,
		source:     source,
		logger:     logger,
		ClearAfter: clearAfter,
		newID:      uuid.NewString,
	}
}

// Migrate copies legacy records into an empty store. It runs at most once in
// effect: a populated store is left alone, so running it again is harmless.
func (m *Migrator) Migrate(ctx context.Context) (Report, error) {
	var rep Report

	// 1. Anything to migrate?
	data, found, err := m.source.Load(ctx)
	if err != nil {
		return rep, &MigrationError{Stage: "load", Err: err}
	}
	if !found {
		rep.Skipped = "no legacy data"
		return rep, nil
	}
	rep.Found = true

	n, err := m.store.Count(ctx)
	if err != nil {
		return rep, &MigrationError{Stage: "count", Err: err}
	}
	if n > 0 {
		rep.Skipped = "store already populated"
		return rep, nil
	}

	// 2. Parse the whole payload before touching the store
	recs, err := Parse(data)
	if err != nil {
		return rep, &MigrationError{Stage: "parse", Err: err}
	}
	rep.Parsed = len(recs)

	// 3. Give every record an id and keep only the valid ones
	valid := make([]models.SaleRecord, 0, len(recs))
	for i, rec := range recs {
		if rec.ID == "" {
			rec.ID = m.newID()
		}
		rec = rec.Normalized()
		if err := rec.Validate(); err != nil {
			rep.Rejected = append(rep.Rejected, Rejection{Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}
		valid = append(valid, rec)
	}

	// 4. One transaction for the lot
	if len(valid) > 0 {
		if _, err := m.store.PutBatch(ctx, valid); err != nil {
			return rep, &MigrationError{Stage: "write", Err: err}
		}
	}
	rep.Imported = len(valid)

	// 5. Clean up the old storage. Rejected records exist only there, so it
	// stays until someone has dealt with them.
	switch {
	case !m.ClearAfter:
	case len(rep.Rejected) > 0:
		m.logger.Printf("⚠️ %d legacy records rejected, legacy data kept for review", len(rep.Rejected))
	default:
		if err := m.source.Clear(ctx); err != nil {
			m.logger.Printf("⚠️ Legacy data imported but could not be cleared: %v", err)
		} else {
			rep.Cleared = true
		}
	}
	return rep, nil
}

// RunOnStartup migrates and logs the outcome. It never fails: a broken legacy
// payload must not keep the register from starting.
func (m *Migrator) RunOnStartup(ctx context.Context) (rep Report) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Printf("❌ Legacy migration panicked: %v", r)
		}
	}()

	rep, err := m.Migrate(ctx)
	var merr *MigrationError
	switch {
	case errors.As(err, &merr):
		m.logger.Printf("❌ Legacy migration stopped at %s: %v", merr.Stage, merr.Err)
	case err != nil:
		m.logger.Printf("❌ Legacy migration failed: %v", err)
	case rep.Skipped != "":
		m.logger.Printf("ℹ️ Legacy migration skipped: %s", rep.Skipped)
	default:
		m.logger.Printf("✅ Migrated %d legacy records (%d rejected)", rep.Imported, len(rep.Rejected))
		for _, r := range rep.Rejected {
			m.logger.Printf("   rejected #%d (%s): %s", r.Index, r.ID, r.Reason)
		}
	}
	return rep
}
