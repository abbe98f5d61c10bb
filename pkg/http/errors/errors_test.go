package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRespondConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, ErrCodeInvalidTransition, "cannot submit in GENERATING")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, ErrCodeInvalidTransition, body.Error)
	assert.Equal(t, "cannot submit in GENERATING", body.Message)
}

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationError(rec, ErrCodeMissingField, "question_id is required", "question_id")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "question_id", body.Field)
}

func TestRespondErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithDetails(rec, http.StatusConflict, ErrCodeInvalidTransition, "nope", map[string]interface{}{"state": "RESULTS"})

	body := decode(t, rec)
	assert.Equal(t, "RESULTS", body.Details["state"])
}
