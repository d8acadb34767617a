package errors_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) uierrors.Body {
	t.Helper()
	var b uierrors.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return b
}

func TestRenderError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"not found", fmt.Errorf("technician x: %w", assignment.ErrNotFound), http.StatusNotFound, uierrors.StatusNotFound},
		{"mongo no documents", mongo.ErrNoDocuments, http.StatusNotFound, uierrors.StatusNotFound},
		{"conflict", fmt.Errorf("stale: %w", assignment.ErrConflict), http.StatusConflict, uierrors.StatusConflict},
		{"dependents", &assignment.DependentsError{Entity: "technicians", Count: 2}, http.StatusConflict, uierrors.StatusHasDependents},
		{"bare dependents", assignment.ErrHasDependents, http.StatusConflict, uierrors.StatusHasDependents},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, uierrors.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			uierrors.RenderError(rec, req, uierrors.NewErrorLogger(zap.NewNop()), tt.err)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if b := decode(t, rec); b.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", b.Status, tt.wantStatus)
			}
		})
	}
}

func TestRenderError_DependentsCount(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/centers/x/delete", nil)
	uierrors.RenderError(rec, req, nil, &assignment.DependentsError{Entity: "technicians", Count: 3})

	if b := decode(t, rec); b.Count != 3 {
		t.Errorf("count = %d, want 3", b.Count)
	}
}

func TestRenderError_LogsInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	errLog := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/centers", nil)
	uierrors.RenderError(rec, req, errLog, fmt.Errorf("disk on fire"))

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["path"]; got != "/centers" {
		t.Errorf("path field = %v", got)
	}

	// Mapped errors are not logged.
	uierrors.RenderError(httptest.NewRecorder(), req, errLog, assignment.ErrNotFound)
	if logs.Len() != 1 {
		t.Errorf("expected mapped error not to be logged, got %d entries", logs.Len())
	}
}

func TestRenderValidation(t *testing.T) {
	type in struct {
		Name string `validate:"required" label:"Name"`
	}
	rec := httptest.NewRecorder()
	uierrors.RenderValidation(rec, inputval.Validate(in{}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d", rec.Code)
	}
	b := decode(t, rec)
	if b.Message != "Name is required." || len(b.Fields) != 1 {
		t.Errorf("body = %+v", b)
	}
}
