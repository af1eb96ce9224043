package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

func TestOK(t *testing.T) {
	r := OK(domain.Content{ImageURL: "data:image/png;base64,AAA", Description: "a garden at dusk"})

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"imageUrl":"data:image/png;base64,AAA","description":"a garden at dusk"},"status":200}`, string(raw))
	assert.NoError(t, r.Err())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "validation", err: domain.NewValidationError("style", "style is required"), status: 400, msg: "style is required"},
		{name: "wrapped validation", err: fmt.Errorf("generate: %w", domain.NewValidationError("prompt", "prompt is required")), status: 400, msg: "generate: prompt is required"},
		{name: "no provider", err: domain.ErrNoProviderConfigured, status: 500, msg: domain.ErrNoProviderConfigured.Error()},
		{
			name:   "all failed",
			err:    &domain.AllProvidersFailedError{Last: &domain.ProviderError{Provider: "gemini", Op: "image", Message: "quota"}},
			status: 500,
			msg:    "gemini image: quota",
		},
		{name: "nil error", err: nil, status: 500, msg: MsgNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromError[domain.Content](tt.err)
			assert.False(t, r.Success)
			assert.Nil(t, r.Data)
			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.msg, r.Error)
			assert.Error(t, r.Err())
		})
	}
}

func TestFailureJSONHasNullData(t *testing.T) {
	raw, err := json.Marshal(FromError[domain.Content](errors.New("boom")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"data":null,"error":"boom","status":500}`, string(raw))
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, MethodNotAllowed())

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"data":null,"error":"Method Not Allowed","status":405}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	r := NotFound()
	assert.Equal(t, 404, r.Status)
	assert.Equal(t, MsgNotFound, r.Error)
}
