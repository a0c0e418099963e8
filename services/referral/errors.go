package referral

import (
	"errors"
	"fmt"
)

// Ledger error codes. Invalid codes are a user-facing validation outcome;
// transient failures are retryable storage hiccups. The two must never be
// conflated, or a Redis blip would tell a customer their code is bad.
const (
	CodeInvalid   = "invalidCode"
	CodeTransient = "transientFailure"
)

type LedgerError struct {
	Code    string
	Message string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidCodeError(msg string) error {
	return &LedgerError{Code: CodeInvalid, Message: msg}
}

func NewTransientError(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &LedgerError{Code: CodeTransient, Message: msg}
}

// IsInvalidCode reports whether err is a code-validation failure.
func IsInvalidCode(err error) bool {
	var le *LedgerError
	return errors.As(err, &le) && le.Code == CodeInvalid
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var le *LedgerError
	return errors.As(err, &le) && le.Code == CodeTransient
}
