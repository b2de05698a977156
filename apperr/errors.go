// Package apperr defines the typed errors every marketplace operation returns
// for business-rule violations.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindAuthorization     Kind = "authorization"
	KindConflict          Kind = "conflict"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInvalidTransition Kind = "invalid_transition"
	KindExternalService   Kind = "external_service"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Authorization(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

func InvalidTransition(format string, args ...any) *Error {
	return newf(KindInvalidTransition, format, args...)
}

// External wraps a failure reported by a third-party collaborator.
func External(err error, format string, args ...any) *Error {
	e := newf(KindExternalService, format, args...)
	e.Err = err
	return e
}

// InsufficientFunds is returned when a debit exceeds the balance. On the order
// path the warning fields describe the deterrent applied to the account.
type InsufficientFunds struct {
	CurrentBalance decimal.Decimal
	OrderTotal     decimal.Decimal
	WarningIssued  bool
	WarningsCount  int
	Blacklisted    bool
}

func (e *InsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s",
		e.CurrentBalance.StringFixed(2), e.OrderTotal.StringFixed(2))
}

// KindOf reports the taxonomy kind of err, or KindInternal for anything else.
func KindOf(err error) Kind {
	var funds *InsufficientFunds
	if errors.As(err, &funds) {
		return KindInsufficientFunds
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromValidator turns validator field errors into a single ValidationError.
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation("invalid input: %v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return Validation("invalid input: %s", strings.Join(fields, "; "))
}

// Wrap annotates unexpected errors with op and passes typed business errors
// through untouched, so callers see their original message.
func Wrap(op string, err error) error {
	if err == nil || KindOf(err) != KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
