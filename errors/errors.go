package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ErrorCode string

const (
	CodeUnauthorized            ErrorCode = "AUTH_001"
	CodeTokenExpired            ErrorCode = "AUTH_002"
	CodeTokenInvalid            ErrorCode = "AUTH_003"
	CodeInsufficientPermissions ErrorCode = "AUTH_004"
	CodeNotGroupMember          ErrorCode = "AUTH_005"

	CodeInvalidRequest       ErrorCode = "VALIDATION_001"
	CodeMissingRequiredField ErrorCode = "VALIDATION_002"
	CodeInvalidFieldFormat   ErrorCode = "VALIDATION_003"
	CodeInvalidAmount        ErrorCode = "VALIDATION_004"
	CodeAmountMismatch       ErrorCode = "VALIDATION_005"
	CodeDuplicateSplit       ErrorCode = "VALIDATION_006"
	CodeInvalidUUID          ErrorCode = "VALIDATION_007"

	CodeUserNotFound    ErrorCode = "NOT_FOUND_002"
	CodeGroupNotFound   ErrorCode = "NOT_FOUND_003"
	CodeExpenseNotFound ErrorCode = "NOT_FOUND_004"

	CodeCannotSelfAction ErrorCode = "CONFLICT_005"

	CodeDataIntegrity     ErrorCode = "INTEGRITY_001"
	CodeInvalidSettlement ErrorCode = "BUSINESS_005"

	CodeDatabaseError ErrorCode = "DATABASE_001"

	CodeExternalServiceError ErrorCode = "EXTERNAL_001"
	CodeCacheError           ErrorCode = "EXTERNAL_002"
	CodeAIServiceError       ErrorCode = "EXTERNAL_003"

	CodeInternalError ErrorCode = "INTERNAL_001"
)

type ErrorType int

const (
	ErrorTypeUnauthorized ErrorType = iota
	ErrorTypeForbidden
	ErrorTypeBadRequest
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeUnprocessable
	ErrorTypeInternal
	ErrorTypeServiceUnavailable
)

type AppError struct {
	Type    ErrorType `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
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

func (e *AppError) UserMessage() string {
	return e.Message
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeTokenExpired,
		Message: "Your session has expired. Please log in again.",
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeTokenInvalid,
		Message: "Invalid authentication token.",
	}
}

func NotGroupMember() *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeNotGroupMember,
		Message: "You are not a member of this group.",
	}
}

func PermissionDenied(action string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeInsufficientPermissions,
		Message: fmt.Sprintf("You don't have permission to %s.", action),
	}
}

func InvalidRequest(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

func MissingRequiredField(fieldName string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required.", fieldName),
	}
}

func InvalidFieldFormat(fieldName, expectedFormat string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidFieldFormat,
		Message: fmt.Sprintf("Invalid format for %s.", fieldName),
		Details: fmt.Sprintf("Expected format: %s", expectedFormat),
	}
}

func InvalidUUID(fieldName string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidUUID,
		Message: fmt.Sprintf("%s must be a valid UUID.", fieldName),
	}
}

func InvalidAmount(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidAmount,
		Message: message,
	}
}

// AmountMismatch takes preformatted amounts so callers decide the precision shown.
func AmountMismatch(splitTotal, expectedTotal string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeAmountMismatch,
		Message: fmt.Sprintf("Sum of split amounts (%s) does not equal total amount (%s).", splitTotal, expectedTotal),
	}
}

func DuplicateSplit(userID string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeDuplicateSplit,
		Message: "A user may appear only once in an expense's splits.",
		Details: fmt.Sprintf("duplicate split for user %s", userID),
	}
}

func UserNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeUserNotFound,
		Message: "User not found.",
	}
}

func GroupNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeGroupNotFound,
		Message: "Group not found.",
	}
}

func ExpenseNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeExpenseNotFound,
		Message: "Expense not found.",
	}
}

func CannotSelfAction(action string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeCannotSelfAction,
		Message: fmt.Sprintf("You cannot %s yourself.", action),
	}
}

func CannotSettleToSelf() *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidSettlement,
		Message: "Cannot settle payment to yourself.",
	}
}

func DataIntegrity(details string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnprocessable,
		Code:    CodeDataIntegrity,
		Message: "Ledger records reference a party outside the declared membership.",
		Details: details,
	}
}

func DatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeDatabaseError,
		Message: "A database error occurred. Please try again.",
		Details: operation,
		Err:     err,
	}
}

func CacheError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeCacheError,
		Message: "Failed to access the balance cache.",
		Details: operation,
		Err:     err,
	}
}

func ExternalServiceError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServiceUnavailable,
		Code:    CodeExternalServiceError,
		Message: "An external service is temporarily unavailable.",
		Details: operation,
		Err:     err,
	}
}

func AIServiceError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServiceUnavailable,
		Code:    CodeAIServiceError,
		Message: "AI service is temporarily unavailable. Please try again later.",
		Err:     err,
	}
}

func InternalError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeInternalError,
		Message: "An unexpected error occurred. Please try again.",
		Err:     err,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code, including
// AppErrors wrapped as the cause of another AppError.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

func GetHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeUnauthorized:
		return 401
	case ErrorTypeForbidden:
		return 403
	case ErrorTypeBadRequest:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeConflict:
		return 409
	case ErrorTypeUnprocessable:
		return 422
	case ErrorTypeServiceUnavailable:
		return 503
	default:
		return 500
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no rows") || strings.Contains(errStr, "not found")
}
