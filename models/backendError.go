package models

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// CodeUniqueViolation is the SQLSTATE of a unique constraint violation.
const CodeUniqueViolation = "23505"

const (
	codeNotFound = "P0002"
	codeUnknown  = "XX000"
)

// BackendError is a record store failure carrying a machine readable code.
type BackendError struct {
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code == CodeUniqueViolation
	}
	return uniqueViolation(err)
}

func uniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// AsBackendError wraps a store error with its code. nil stays nil and
// errors that already carry a code pass through.
func AsBackendError(err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	code := codeUnknown
	switch {
	case uniqueViolation(err):
		code = CodeUniqueViolation
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = codeNotFound
	}
	return &BackendError{Code: code, Message: err.Error(), Err: err}
}
