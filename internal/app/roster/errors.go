package roster

import "errors"

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeScoutNotFound = "SCOUT_NOT_FOUND"
)

// IsValidation reports whether err is a VALIDATION_ERROR.
func IsValidation(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == CodeValidation
}

// IsNotFound reports whether err is a SCOUT_NOT_FOUND error.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == CodeScoutNotFound
}

func notFound() *Error {
	return &Error{
		Status:  404,
		Code:    CodeScoutNotFound,
		Message: "Scout not found.",
	}
}

func invalid(field, message, detail string) *Error {
	return &Error{
		Status:  422,
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{field: detail},
	}
}
