package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(code, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Forbidden(code, msg string) *Error {
	return New(http.StatusForbidden, code, errors.New(msg))
}

func Downstream(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}

// FromAggregate converts an aggregate-layer error into an API error. fallbackCode is used
// for internal failures so clients can tell which operation broke.
func FromAggregate(err error, fallbackCode string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var de *domainagg.Error
	if !errors.As(err, &de) {
		return New(http.StatusInternalServerError, fallbackCode, err)
	}
	msg := errors.New(de.Message)
	if de.Message == "" {
		msg = de
	}
	switch de.Code {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, "validation", msg)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, "not_found", msg)
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation:
		return New(http.StatusConflict, string(de.Code), msg)
	case domainagg.CodePreconditionFailed:
		return New(http.StatusPreconditionFailed, string(de.Code), msg)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, string(de.Code), msg)
	default:
		return New(http.StatusInternalServerError, fallbackCode, de)
	}
}
