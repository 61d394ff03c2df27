package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Callers match them with errors.Is.
var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")

	// ErrStoreIO covers every failure to read or write a bot file
	// (config store, changelog, help documents).
	ErrStoreIO = fmt.Errorf("file store failure")
	// ErrFetch covers network failures against the search engine.
	ErrFetch = fmt.Errorf("fetch failed")

	ErrConfigLoad  = fmt.Errorf("failed to load configuration")
	ErrDecryption  = fmt.Errorf("decryption failed")
	ErrEncryption  = fmt.Errorf("encryption operation failed")
	ErrCircuitOpen = fmt.Errorf("circuit open")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Store.Set")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for log filtering.
type ErrorCode string

const (
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeStoreIO      ErrorCode = "STORE_IO"
	CodeFetch        ErrorCode = "FETCH"
	CodeConfigLoad   ErrorCode = "CONFIG_LOAD"
	CodeDecryption   ErrorCode = "DECRYPTION"
	CodeEncryption   ErrorCode = "ENCRYPTION"
	CodeCircuitOpen  ErrorCode = "CIRCUIT_OPEN"
)

// codeOrder is walked front to back so that more specific sentinels win
// (an open circuit is also a fetch failure).
var codeOrder = []struct {
	err  error
	code ErrorCode
}{
	{ErrCircuitOpen, CodeCircuitOpen},
	{ErrFetch, CodeFetch},
	{ErrStoreIO, CodeStoreIO},
	{ErrNotFound, CodeNotFound},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrDecryption, CodeDecryption},
	{ErrEncryption, CodeEncryption},
}

// ErrorCodeOf returns the machine-parseable code for err, or CodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, c := range codeOrder {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}
