package database

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable matches every engine-level failure of the store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrNotFound = errors.New("sale record not found")
)

// StorageError carries the failing operation and the engine's error.
// errors.Is(err, ErrStorageUnavailable) holds for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
