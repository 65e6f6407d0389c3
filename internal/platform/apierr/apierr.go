package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a caller that is known but may not touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIntegrity marks data that references an entity which is not there.
	ErrIntegrity = errors.New("data integrity")
)

const (
	CodeNotFound         = "not_found"
	CodeMissingResource  = "missing_resource"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeInvalidArgument  = "invalid_argument"
	CodeFetchTimeout     = "fetch_timeout"
	CodeStoreUnavailable = "store_unavailable"
	CodeRemoteFetch      = "remote_fetch_failed"
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

// FromError classifies err into a status/code pair. An *Error already in the
// chain wins.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrIntegrity):
		return New(http.StatusNotFound, CodeMissingResource, err)
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return New(http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, ErrUnauthorized):
		return New(http.StatusUnauthorized, CodeUnauthorized, err)
	case errors.Is(err, ErrForbidden):
		return New(http.StatusForbidden, CodeForbidden, err)
	case errors.Is(err, ErrInvalidArgument):
		return New(http.StatusBadRequest, CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, CodeFetchTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01", "55P03", "57P01", "53300":
			return New(http.StatusServiceUnavailable, CodeStoreUnavailable, err)
		}
	}
	return New(http.StatusBadGateway, CodeRemoteFetch, err)
}
