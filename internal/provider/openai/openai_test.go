package openai

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/domain"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4.1-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.ProviderSettings{
		APIKey:     "sk-test",
		BaseURL:    srv.URL + "/v1/",
		TextModel:  "gpt-4.1-mini",
		FastModel:  "gpt-4.1-mini",
		ImageModel: "gpt-image-1",
	}, option.WithMaxRetries(0))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateText(t *testing.T) {
	var got map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		writeJSON(w, http.StatusOK, chatReply(`{"title":"Snow","body":"...","pairings":"A x B","plotHooks":["h1","h2","h3"],"traits":["cold"]}`))
	})

	c, err := p.GenerateText(t.Context(), "winter", domain.StyleAncient, domain.Facets{"era": "Song"})
	require.NoError(t, err)
	assert.Equal(t, "Snow", c.Title)
	assert.Len(t, c.PlotHooks, 3)

	assert.Equal(t, "gpt-4.1-mini", got["model"])
	assert.InDelta(t, 0.8, got["temperature"], 0.0001)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestGenerateInspirationFencedJSON(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatReply("```json\n{\"pairings\":\"fox x monk\",\"description\":\"storm\",\"traits\":[\"rivals\"]}\n```"))
	})

	c, err := p.GenerateInspiration(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "fox x monk", c.Pairings)
	assert.Equal(t, []string{"rivals"}, c.Traits)
}

func TestGenerateTextUnparsable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatReply("sorry, I cannot"))
	})

	_, err := p.GenerateText(t.Context(), "x", domain.StyleModern, nil)
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ID, pe.Provider)
	assert.Equal(t, "text", pe.Op)
}

func TestGenerateTextBackendError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
		})
	})

	_, err := p.GenerateText(t.Context(), "x", domain.StyleModern, nil)
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.NotEmpty(t, pe.Message)
}

func TestGenerateImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []map[string]any
		want    string
		wantErr bool
	}{
		{name: "base64 payload", data: []map[string]any{{"b64_json": "AAA"}}, want: "data:image/png;base64,AAA"},
		{name: "remote url", data: []map[string]any{{"url": "https://img.example.com/1.png"}}, want: "https://img.example.com/1.png"},
		{name: "no data", data: []map[string]any{}, wantErr: true},
		{name: "empty image", data: []map[string]any{{"revised_prompt": "x"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/images/generations", r.URL.Path)
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &got)
				writeJSON(w, http.StatusOK, map[string]any{"created": 1, "data": tt.data})
			})

			url, err := p.GenerateImage(t.Context(), "a garden at dusk", domain.Facets{"lighting": "moonlight"})
			if tt.wantErr {
				var pe *domain.ProviderError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, "image", pe.Op)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
			assert.Equal(t, "gpt-image-1", got["model"])
			assert.Contains(t, got["prompt"], "a garden at dusk")
			assert.NotContains(t, got, "response_format")
		})
	}
}

func TestConfigured(t *testing.T) {
	assert.False(t, New(config.ProviderSettings{}).Configured())
	assert.True(t, New(config.ProviderSettings{APIKey: "k"}).Configured())

	_, err := New(config.ProviderSettings{}).GenerateInspiration(t.Context())
	var pe *domain.ProviderError
	assert.True(t, errors.As(err, &pe))
}
