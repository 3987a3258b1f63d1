// Package apperr holds the typed error carried across every layer. Each error has a
// Kind (the class the HTTP layer maps to a status) and a stable machine-readable Code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindPrecondition    Kind = "PRECONDITION_FAILED"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindAccessDenied    Kind = "ACCESS_DENIED"
	KindPaymentRequired Kind = "PAYMENT_REQUIRED"
	KindStorage         Kind = "STORAGE_ERROR"
	KindUnavailable     Kind = "UNAVAILABLE"
	KindInternal        Kind = "INTERNAL"
)

// Code is the stable identifier of a specific failure.
type Code string

const (
	CodeAssessmentNotFound         Code = "ASSESSMENT_NOT_FOUND"
	CodeGapNotFound                Code = "GAP_NOT_FOUND"
	CodeVendorNotFound             Code = "VENDOR_NOT_FOUND"
	CodeNoGapsFound                Code = "NO_GAPS_FOUND"
	CodeNoAnalysis                 Code = "NO_ANALYSIS"
	CodeAssessmentAlreadyCompleted Code = "ASSESSMENT_ALREADY_COMPLETED"
	CodeInvalidVendorCount         Code = "INVALID_VENDOR_COUNT"
	CodeInvalidContactType         Code = "INVALID_CONTACT_TYPE"
	CodeEmptyMessage               Code = "EMPTY_MESSAGE"
	CodeInvalidFilter              Code = "INVALID_FILTER"
	CodeDuplicateVendor            Code = "DUPLICATE_VENDOR"
	CodeInvalidRecord              Code = "INVALID_RECORD"
	CodeAccessDenied               Code = "ACCESS_DENIED"
	CodeInsufficientCredits        Code = "INSUFFICIENT_CREDITS"
	CodeSubscriptionRequired       Code = "SUBSCRIPTION_REQUIRED"
	CodeStorageFailure             Code = "STORAGE_FAILURE"
	CodeAnalysisConflict           Code = "ANALYSIS_CONFLICT"
	CodeAIQuotaExceeded            Code = "AI_QUOTA_EXCEEDED"
	CodeAIUnavailable              Code = "AI_UNAVAILABLE"
	CodeFeatureDisabled            Code = "FEATURE_DISABLED"
	CodeInternal                   Code = "INTERNAL"
)

// Error is the structured failure returned by the core.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so a re-messaged copy of a sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New builds an Error.
func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Cause: e.Cause}
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Cause: cause}
}

// Sentinels
var (
	ErrAssessmentNotFound         = New(KindNotFound, CodeAssessmentNotFound, "assessment not found")
	ErrGapNotFound                = New(KindNotFound, CodeGapNotFound, "gap not found")
	ErrVendorNotFound             = New(KindNotFound, CodeVendorNotFound, "vendor not found")
	ErrNoGapsFound                = New(KindPrecondition, CodeNoGapsFound, "No gaps found for assessment")
	ErrNoAnalysis                 = New(KindPrecondition, CodeNoAnalysis, "analysis has not been generated")
	ErrAssessmentAlreadyCompleted = New(KindPrecondition, CodeAssessmentAlreadyCompleted, "assessment already completed")
	ErrInvalidVendorCount         = New(KindPrecondition, CodeInvalidVendorCount, "between 2 and 4 vendors can be compared")
	ErrInvalidContactType         = New(KindValidation, CodeInvalidContactType, "invalid contact type")
	ErrEmptyMessage               = New(KindValidation, CodeEmptyMessage, "message is required")
	ErrInvalidFilter              = New(KindValidation, CodeInvalidFilter, "invalid filter")
	ErrDuplicateVendor            = New(KindValidation, CodeDuplicateVendor, "duplicate vendor id")
	ErrInvalidRecord              = New(KindValidation, CodeInvalidRecord, "invalid record")
	ErrAccessDenied               = New(KindAccessDenied, CodeAccessDenied, "access denied")
	ErrInsufficientCredits        = New(KindPaymentRequired, CodeInsufficientCredits, "insufficient credits")
	ErrSubscriptionRequired       = New(KindPaymentRequired, CodeSubscriptionRequired, "a paid subscription is required")
	ErrAnalysisConflict           = New(KindStorage, CodeAnalysisConflict, "analysis was modified concurrently")
	ErrAIQuotaExceeded            = New(KindUnavailable, CodeAIQuotaExceeded, "ai quota exceeded")
	ErrAIUnavailable              = New(KindUnavailable, CodeAIUnavailable, "ai provider unavailable")
	ErrFeatureDisabled            = New(KindUnavailable, CodeFeatureDisabled, "feature is not enabled")
)

// Storage wraps an I/O failure from a repository or store. A nil err gives nil.
// Errors that are already typed pass through untouched.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStorage, Code: CodeStorageFailure, Message: op, Cause: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf returns the Code of the first *Error in err's chain, CodeInternal otherwise.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// MessageOf returns the human message of err without the code prefix.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// HTTPStatus maps a Kind to the status class the route layer answers with.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindAccessDenied:
		return http.StatusForbidden
	case KindPaymentRequired:
		return http.StatusPaymentRequired
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
