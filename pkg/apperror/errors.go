package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Validation (VAL): rejected before any state is touched ----

// Validation returns a generic VAL_001 error with the given reason.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrEmptyCart() *AppError {
	return New("VAL_002", "Ticket must contain at least one line item", http.StatusBadRequest)
}

func ErrPaymentRequired() *AppError {
	return New("VAL_003", "At least one payment is required for a non-zero total", http.StatusBadRequest)
}

func ErrDiscountExceedsTotal() *AppError {
	return New("VAL_004", "Discount exceeds the discountable amount", http.StatusBadRequest)
}

func ErrInvalidDate(raw string) *AppError {
	return New("VAL_005", fmt.Sprintf("Invalid business date %q", raw), http.StatusBadRequest)
}

// ---- Preconditions (PRE): business rules the caller can fix and retry ----

func ErrRegisterInvalid() *AppError {
	return New("PRE_001", "Register does not exist, belongs to another tenant, or is inactive", http.StatusUnprocessableEntity)
}

func ErrEstablishmentInvalid() *AppError {
	return New("PRE_002", "Establishment is inactive or unknown", http.StatusUnprocessableEntity)
}

func ErrDayAlreadyClosed() *AppError {
	return New("PRE_003", "The business day is already closed for this register", http.StatusConflict)
}

func ErrAlreadyClosed() *AppError {
	return New("PRE_004", "A closure already exists for this register and date", http.StatusConflict)
}

func ErrTicketNotFound() *AppError {
	return New("PRE_005", "Ticket not found", http.StatusNotFound)
}

func ErrTicketClosed() *AppError {
	return New("PRE_006", "Ticket belongs to a closed day and can no longer change", http.StatusConflict)
}

func ErrTicketAlreadyCancelled() *AppError {
	return New("PRE_007", "Ticket is already cancelled", http.StatusConflict)
}

func ErrClosureNotFound() *AppError {
	return New("PRE_008", "Closure not found", http.StatusNotFound)
}

func ErrSequenceExhausted() *AppError {
	return New("PRE_009", "Daily ticket sequence exhausted for this register", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Operator role is not allowed to perform this action", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence reports a storage transaction failure. The whole operation was rolled back.
func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "Ledger storage failure, nothing was recorded", http.StatusInternalServerError, err)
}

// InternalError wraps an unexpected internal error as SYS_002.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}
