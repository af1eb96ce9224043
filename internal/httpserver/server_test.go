package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/api"
	"github.com/MrSnakeDoc/muse/internal/catalog"
	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/orchestrator"
	"github.com/MrSnakeDoc/muse/internal/provider"
	"github.com/MrSnakeDoc/muse/internal/provider/providertest"
)

type envelopeBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Status  int             `json:"status"`
}

type testServer struct {
	handler http.Handler
	fake    *providertest.Fake
}

func newTestServer(t *testing.T, mutate func(*config.Config, *deps.Deps)) *testServer {
	t.Helper()
	fake := &providertest.Fake{Name: "openai", Ready: true}
	cfg := &config.Config{
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"*"},
	}
	d := deps.Deps{
		Logger:          logger.NewNop(),
		StartTime:       time.Unix(1000, 0),
		TimeNow:         func() time.Time { return time.Unix(1060, 0) },
		Version:         "v1.2.3",
		RateBurst:       100,
		RatePerMin:      100,
		Service:         api.NewService(orchestrator.New([]provider.Provider{fake}, time.Second, nil), nil, nil),
		Catalog:         catalog.Default(),
		ProviderTimeout: 90 * time.Second,
	}
	if mutate != nil {
		mutate(cfg, &d)
	}
	return &testServer{handler: NewRouter(cfg, d.Logger, d), fake: fake}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	// ops endpoints answer plain JSON, only the API speaks the envelope
	var env envelopeBody
	if strings.HasPrefix(path, "/api") && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestGenerateText(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.fake.Text = func(_ context.Context, topic string, style domain.Style, kw domain.Facets) (domain.Content, error) {
		assert.Equal(t, "rain", topic)
		assert.Equal(t, domain.StyleModern, style)
		assert.Equal(t, domain.Facets{"plot": "sweet"}, kw)
		return domain.Content{Title: "Rain", Body: "..."}, nil
	}

	rec, env := srv.do(t, http.MethodPost, "/api/generate/text", `{"topic":"rain","style":"modern","keywords":{"plot":"sweet"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.JSONEq(t, `{"title":"Rain","body":"..."}`, string(env.Data))
}

func TestGenerateTextRejectsInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing style", body: `{"topic":"rain"}`, wantErr: api.MsgStyleRequired},
		{name: "empty body", body: ``, wantErr: api.MsgStyleRequired},
		{name: "unknown style", body: `{"style":"baroque"}`},
		{name: "malformed json", body: `{"style":`},
		{name: "wrong type", body: `["modern"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			rec, env := srv.do(t, http.MethodPost, "/api/generate/text", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "null", string(env.Data))
			assert.Equal(t, http.StatusBadRequest, env.Status)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, env.Error)
			} else {
				assert.NotEmpty(t, env.Error)
			}
			assert.Empty(t, srv.fake.Calls(), "no provider is called")
		})
	}
}

func TestGenerateTextProviderFailure(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.fake.Text = func(context.Context, string, domain.Style, domain.Facets) (domain.Content, error) {
		return domain.Content{}, errors.New("invalid api key")
	}

	rec, env := srv.do(t, http.MethodPost, "/api/generate/text", `{"style":"ancient"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "openai text: invalid api key", env.Error)
	assert.Equal(t, http.StatusInternalServerError, env.Status)
}

func TestGenerateImage(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.fake.Image = providertest.ImageURL("data:image/png;base64,AAA")

	rec, env := srv.do(t, http.MethodPost, "/api/generate/image", `{"prompt":"a garden at dusk","keywords":{"lighting":"golden hour"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imageUrl":"data:image/png;base64,AAA","description":"a garden at dusk"}`, string(env.Data))
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/generate/image", `{"keywords":{"lighting":"soft"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.MsgPromptRequired, env.Error)
	assert.Empty(t, srv.fake.Calls())
}

func TestGenerateInspirationWithoutBody(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.fake.Inspiration = func(context.Context) (domain.Content, error) {
		return domain.Content{Pairings: "fox x monk", Traits: []string{"sly"}}, nil
	}

	rec, env := srv.do(t, http.MethodPost, "/api/generate/inspiration", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"pairings":"fox x monk","traits":["sly"]}`, string(env.Data))
}

func TestNoProviderConfigured(t *testing.T) {
	srv := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.Service = api.NewService(orchestrator.New([]provider.Provider{&providertest.Fake{Name: "openai"}}, time.Second, nil), nil, nil)
	})

	rec, env := srv.do(t, http.MethodPost, "/api/generate/inspiration", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.ErrNoProviderConfigured.Error(), env.Error)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/api/generate/text", "/api/generate/image", "/api/generate/inspiration"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			rec, env := srv.do(t, method, path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", method, path)
			assert.Equal(t, "Method Not Allowed", env.Error)
			assert.Equal(t, http.StatusMethodNotAllowed, env.Status)
			assert.False(t, env.Success)
		}
	}
	assert.Empty(t, srv.fake.Calls())
}

func TestUnknownAPIRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/generate/poem", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Equal(t, "API route not found", env.Error)
}

func TestCatalog(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/catalog", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var c catalog.Catalog
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Len(t, c.Styles, 5)
	assert.NotEmpty(t, c.Facets["drawing"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate/text", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.RateBurst = 1
		d.RatePerMin = 1
	})
	srv.fake.Inspiration = func(context.Context) (domain.Content, error) {
		return domain.Content{Description: "x"}, nil
	}

	rec, _ := srv.do(t, http.MethodPost, "/api/generate/inspiration", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec, env := srv.do(t, http.MethodPost, "/api/generate/inspiration", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Len(t, srv.fake.Calls(), 1)
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := srv.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "v1.2.3", health["version"])
	assert.InDelta(t, 60.0, health["uptime_seconds"], 0.001)

	rec, _ = srv.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())

	rec, _ = srv.do(t, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var infra struct {
		GenerationMode  string   `json:"generation_mode"`
		FallbackOrder   []string `json:"fallback_order"`
		ProviderTimeout string   `json:"provider_timeout"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infra))
	assert.Equal(t, "redundant", infra.GenerationMode)
	assert.Equal(t, []string{"openai"}, infra.FallbackOrder)
	assert.Equal(t, "1m30s", infra.ProviderTimeout)
}

func TestInfraDegraded(t *testing.T) {
	srv := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		providers := []provider.Provider{
			&providertest.Fake{Name: "openai"},
			&providertest.Fake{Name: "gemini", Ready: true},
		}
		d.Service = api.NewService(orchestrator.New(providers, time.Second, nil), nil, nil)
	})

	rec, _ := srv.do(t, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infra struct {
		GenerationMode string `json:"generation_mode"`
		Providers      map[string]struct {
			OK       bool   `json:"ok"`
			Position int    `json:"position"`
			Error    string `json:"error"`
		} `json:"providers"`
		Catalog struct {
			Styles int            `json:"styles"`
			Facets map[string]int `json:"facets"`
		} `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infra))
	assert.Equal(t, "degraded", infra.GenerationMode)
	assert.False(t, infra.Providers["openai"].OK)
	assert.Equal(t, domain.ErrNoProviderConfigured.Error(), infra.Providers["openai"].Error)
	assert.True(t, infra.Providers["gemini"].OK)
	assert.Equal(t, 1, infra.Providers["gemini"].Position)
	assert.Equal(t, 5, infra.Catalog.Styles)
	assert.Equal(t, 9, infra.Catalog.Facets["drawing"])
}

func TestReadyzWithoutProviders(t *testing.T) {
	srv := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.Service = api.NewService(orchestrator.New([]provider.Provider{&providertest.Fake{Name: "gemini"}}, time.Second, nil), nil, nil)
	})

	rec, _ := srv.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":false`)
}

func TestOpsRestrictedByCIDR(t *testing.T) {
	srv := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1
	rec, _ := srv.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>muse</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	srv := newTestServer(t, func(cfg *config.Config, _ *deps.Deps) { cfg.DistDir = dist })

	rec, _ := srv.do(t, http.MethodGet, "/assets/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec, _ = srv.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "muse")

	rec, _ = srv.do(t, http.MethodGet, "/history/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "muse", "client routes fall back to index.html")

	rec, env := srv.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "API route not found", env.Error)
}

func TestWithoutDistDir(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, _ := srv.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := &config.Config{RequestTimeout: time.Second}
	s := New(cfg, logger.NewNop(), deps.Deps{
		Logger:  logger.NewNop(),
		Service: api.NewService(orchestrator.New(nil, time.Second, nil), nil, nil),
		Catalog: catalog.Default(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
