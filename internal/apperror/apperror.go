package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to clients in the "code" field
const (
	CodeMissingIngredients = "MISSING_INGREDIENTS"
	CodeValidation         = "VALIDATION_ERROR"
	CodeSearch             = "SEARCH_ERROR"
	CodeRecipeNotFound     = "RECIPE_NOT_FOUND"
	CodeFetch              = "FETCH_ERROR"
	CodeGeneration         = "GENERATION_ERROR"
	CodeIndex              = "INDEX_ERROR"
	CodeMissingName        = "MISSING_NAME"
	CodeInvalidName        = "INVALID_NAME"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeProfile            = "PROFILE_ERROR"
	CodeAvatar             = "AVATAR_ERROR"
	CodeHistory            = "HISTORY_ERROR"
	CodeFavorites          = "FAVORITES_ERROR"
	CodeMissingField       = "MISSING_FIELD"
	CodeFavorite           = "FAVORITE_ERROR"
	CodeFavoriteNotFound   = "FAVORITE_NOT_FOUND"
	CodeMissingParameters  = "MISSING_PARAMETERS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// Kind classifies normalizer validation failures
type Kind int

const (
	KindNone Kind = iota
	KindEmptyInput
	KindTooManyIngredients
	KindInvalidIngredientLength
	KindInvalidCharacters
	KindInvalidMood
	KindInvalidUserName
)

func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "EmptyInput"
	case KindTooManyIngredients:
		return "TooManyIngredients"
	case KindInvalidIngredientLength:
		return "InvalidIngredientLength"
	case KindInvalidCharacters:
		return "InvalidCharacters"
	case KindInvalidMood:
		return "InvalidMood"
	case KindInvalidUserName:
		return "InvalidUserName"
	default:
		return "None"
	}
}

// Error is an error that knows how it should be rendered over HTTP
type Error struct {
	Code    string
	Message string
	Status  int
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two *Error values by code, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Kind == KindNone || e.Kind == t.Kind)
}

// New creates an Error
func New(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Wrap creates an Error carrying a cause
func Wrap(err error, status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status, Err: err}
}

// Validation creates a 400 error for a normalizer failure. An empty input
// is reported with its own code so clients can prompt for ingredients.
func Validation(kind Kind, message string) *Error {
	code := CodeValidation
	if kind == KindEmptyInput {
		code = CodeMissingIngredients
	}
	return &Error{Code: code, Message: message, Status: http.StatusBadRequest, Kind: kind}
}

// NotFound creates a 404 error
func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

// Internal wraps an unexpected failure as a 500
func Internal(err error, code, message string) *Error {
	return Wrap(err, http.StatusInternalServerError, code, message)
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the validation kind of err, or KindNone
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindNone
}

// IsValidation reports whether err is a normalizer validation failure
func IsValidation(err error) bool {
	return KindOf(err) != KindNone
}
