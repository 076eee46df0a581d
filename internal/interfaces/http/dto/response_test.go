package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse_FlatMessage(t *testing.T) {
	resp := NewErrorResponse(ErrCodeNotFound, "Order not found")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	// Pre-envelope clients read the message at the top level
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Order not found", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestNewErrorResponseWithRequestID_FlatMessage(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, "No order items", "req-1")

	assert.Equal(t, "No order items", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "No order items", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestNewSuccessResponse_NoMessage(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse(map[string]string{"ok": "yes"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"message"`)
}
