package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

func marshalEnvelope(t *testing.T, v any) map[string]any {
	t.Helper()
	result, err := EnvelopeTransformer(nil, "200", v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelope_Success(t *testing.T) {
	out := marshalEnvelope(t, map[string]string{"id": "test-123"})

	assert.Equal(t, float64(response.Version), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "test-123"}, out["data"])
	for key := range out {
		assert.Contains(t, []string{"v", "success", "data"}, key)
	}
}

func TestEnvelope_NilData(t *testing.T) {
	out := marshalEnvelope(t, nil)

	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelope_APIError(t *testing.T) {
	out := marshalEnvelope(t, &APIError{
		status:  http.StatusConflict,
		Code:    "ALREADY_BORROWED",
		Message: "book 3 is already borrowed",
		Details: map[string]int{"id": 3},
	})

	assert.Equal(t, false, out["success"])
	assert.Equal(t, "ALREADY_BORROWED", out["code"])
	assert.Equal(t, "book 3 is already borrowed", out["message"])
	assert.Equal(t, "book 3 is already borrowed", out["error"])
	assert.Equal(t, map[string]any{"id": float64(3)}, out["details"])
}

func TestEnvelope_HumaErrorModel(t *testing.T) {
	out := marshalEnvelope(t, &huma.ErrorModel{Status: http.StatusNotFound, Detail: "gone"})

	assert.Equal(t, false, out["success"])
	assert.Equal(t, "NOT_FOUND", out["code"])
	assert.Equal(t, "gone", out["message"])
}

func TestEnvelope_AlreadyEnvelopedPassesThrough(t *testing.T) {
	out := marshalEnvelope(t, response.Ok("x"))

	assert.Equal(t, "x", out["data"])
}

func TestStatusToCode(t *testing.T) {
	assert.Equal(t, "VALIDATION", string(statusToCode(http.StatusUnprocessableEntity)))
	assert.Equal(t, "NOT_FOUND", string(statusToCode(http.StatusNotFound)))
	assert.Equal(t, "RATE_LIMITED", string(statusToCode(http.StatusTooManyRequests)))
	assert.Equal(t, "PERSISTENCE_UNAVAILABLE", string(statusToCode(http.StatusServiceUnavailable)))
	assert.Equal(t, "INTERNAL", string(statusToCode(http.StatusBadGateway)))
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "127.0.0.1", clientIP("127.0.0.1:5000"))
	assert.Equal(t, "::1", clientIP("[::1]:5000"))
	assert.Equal(t, "10.0.0.9", clientIP("10.0.0.9"))
}
