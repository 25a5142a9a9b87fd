package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// failingRepo simulates a store outage: every read errors.
type failingRepo struct{ *mockRepo }

func (failingRepo) GetByID(context.Context, uuid.UUID) (*Doctor, error) {
	return nil, fmt.Errorf("connection refused")
}

func getDoctorStatus(t *testing.T, repo Repository, id string) int {
	t.Helper()
	h := NewHandler(NewService(repo))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath("/doctors/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	err := h.GetDoctor(c)
	if err == nil {
		return rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("unexpected error type: %v", err)
	}
	return he.Code
}

func TestGetDoctor_UnknownIDIs404(t *testing.T) {
	if code := getDoctorStatus(t, newMockRepo(), uuid.NewString()); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestGetDoctor_StoreFailureIs500(t *testing.T) {
	if code := getDoctorStatus(t, failingRepo{newMockRepo()}, uuid.NewString()); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
}
