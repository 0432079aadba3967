package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roomshare/roomshare-be/internal/services"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: group not found", services.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: not a member", services.ErrForbidden), http.StatusForbidden},
		{"conflict", fmt.Errorf("%w: already a member", services.ErrConflict), http.StatusConflict},
		{"invalid state", fmt.Errorf("%w: only admin", services.ErrInvalidState), http.StatusBadRequest},
		{"bad request", fmt.Errorf("%w: bad month", services.ErrBadRequest), http.StatusBadRequest},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized},
		{"unexpected", errors.New("driver: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/groups/g1/members", nil)

			writeError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("body status = %d, want %d", body.Status, tt.wantStatus)
			}
			if body.Path != "/api/groups/g1/members" {
				t.Errorf("body path = %q", body.Path)
			}
			if body.Timestamp.IsZero() {
				t.Error("body timestamp is zero")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/expenses/group/g1", nil)

	writeError(rec, req, errors.New("dial tcp 10.0.0.3:5432: connect: connection refused"))

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body.Message != "An unexpected error occurred." {
		t.Errorf("internal detail leaked: %q", body.Message)
	}
}
