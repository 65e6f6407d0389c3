package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestFromError(t *testing.T) {
	preset := New(http.StatusTeapot, "teapot", errors.New("short and stout"))

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"integrity", fmt.Errorf("viewer: %w", ErrIntegrity), http.StatusNotFound, CodeMissingResource},
		{"gorm not found", fmt.Errorf("lesson: %w", gorm.ErrRecordNotFound), http.StatusNotFound, CodeNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", fmt.Errorf("session: %w", ErrForbidden), http.StatusForbidden, CodeForbidden},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, CodeFetchTimeout},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, http.StatusServiceUnavailable, CodeStoreUnavailable},
		{"pg other", &pgconn.PgError{Code: "23505"}, http.StatusBadGateway, CodeRemoteFetch},
		{"opaque", errors.New("boom"), http.StatusBadGateway, CodeRemoteFetch},
		{"preset", fmt.Errorf("wrapped: %w", preset), http.StatusTeapot, "teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.Status != tt.status {
				t.Fatalf("status: want=%d got=%d", tt.status, got.Status)
			}
			if got.Code != tt.code {
				t.Fatalf("code: want=%q got=%q", tt.code, got.Code)
			}
		})
	}
	if FromError(nil) != nil {
		t.Fatalf("nil error should classify to nil")
	}
}
