package errors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusNotFound, "NOT_FOUND", "gone")
	assert.Equal(t, "gone", err.Error())
}

func TestModuleNotFoundError(t *testing.T) {
	err := ModuleNotFoundError("water")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "MODULE_NOT_FOUND", err.ErrorCode)
	assert.Contains(t, err.Message, "water")
}

func TestHandleErrorWritesEnvelope(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	r := httptest.NewRequest(http.MethodGet, "/api/modules/water", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, ModuleNotFoundError("water"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MODULE_NOT_FOUND", resp.Error.ErrorCode)
}

func TestHandleErrorMasksUnknownErrors(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database exploded")
}
