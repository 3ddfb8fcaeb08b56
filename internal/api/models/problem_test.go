package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdirex/flashdirex/internal/api/models"
)

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("trace-123", "start_lat is required", []models.FieldError{
		{Field: "start_lat", Message: "required", Code: "required"},
	}).WithInstance("/route")

	rec := httptest.NewRecorder()
	p.Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))

	var decoded models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, models.ProblemTypeValidation, decoded.Type)
	assert.Equal(t, "Validation error", decoded.Title)
	assert.Equal(t, "/route", decoded.Instance)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "start_lat", decoded.Errors[0].Field)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		problem *models.Problem
		status  int
	}{
		{"not found", models.NewNotFound("t", "gone"), http.StatusNotFound},
		{"internal", models.NewInternalError("t", "boom"), http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("t", "down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, "t", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Type)
		})
	}
}
