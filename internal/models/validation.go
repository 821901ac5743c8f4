package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingID       = errors.New("record id is required")
	ErrMissingDCNumber = errors.New("dc number is required")
	ErrNoItems         = errors.New("at least one transformer with a serial number is required")
	ErrNegativeKVA     = errors.New("kva cannot be negative")
	ErrInvalidRecord   = errors.New("invalid sale record")
)

// ValidationError wraps one of the sentinel errors above with the field that failed.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalized returns a copy with every string trimmed and blank-serial items dropped.
func (r SaleRecord) Normalized() SaleRecord {
	out := SaleRecord{
		ID:           strings.TrimSpace(r.ID),
		Date:         strings.TrimSpace(r.Date),
		Supplier:     strings.TrimSpace(r.Supplier),
		GSTNumber:    strings.TrimSpace(r.GSTNumber),
		DCNumber:     strings.TrimSpace(r.DCNumber),
		Manufacturer: strings.TrimSpace(r.Manufacturer),
		Remarks:      strings.TrimSpace(r.Remarks),
	}
	items := make([]SaleItem, 0, len(r.Items))
	for _, it := range r.Items {
		serial := strings.TrimSpace(it.SerialNumber)
		if serial == "" {
			continue
		}
		items = append(items, SaleItem{SerialNumber: serial, KVA: it.KVA})
	}
	out.Items = items
	return out
}

// Validate checks the write-path invariants. Call it on a normalized record.
func (r SaleRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Err: ErrInvalidRecord, Details: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "id":
		return &ValidationError{Err: ErrMissingID}
	case "dcNumber":
		return &ValidationError{Err: ErrMissingDCNumber}
	case "items", "serialNumber":
		return &ValidationError{Err: ErrNoItems}
	case "kva":
		return &ValidationError{Err: ErrNegativeKVA, Details: fe.Namespace()}
	}
	return &ValidationError{Err: ErrInvalidRecord, Details: fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag())}
}
