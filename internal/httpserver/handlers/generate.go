package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/muse/internal/api"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/muse/internal/logger"
)

const (
	maxBodyBytes   = 64 << 10
	msgInvalidBody = "request body must be a JSON object"
)

type textRequest struct {
	Topic    string        `json:"topic"`
	Style    domain.Style  `json:"style"`
	Keywords domain.Facets `json:"keywords"`
}

type imageRequest struct {
	Prompt   string        `json:"prompt"`
	Keywords domain.Facets `json:"keywords"`
}

// GenerateText handles POST /api/generate/text.
func GenerateText(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decode(w, r, &req, d.Logger) {
			return
		}
		if req.Style == "" {
			envelope.Write(w, envelope.Fail[domain.Content](http.StatusBadRequest, api.MsgStyleRequired))
			return
		}
		envelope.Write(w, d.Service.GenerateText(r.Context(), req.Topic, req.Style, req.Keywords))
	}
}

// GenerateImage handles POST /api/generate/image. Over HTTP a prompt is
// mandatory even when keywords are given.
func GenerateImage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		if !decode(w, r, &req, d.Logger) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			envelope.Write(w, envelope.Fail[domain.Content](http.StatusBadRequest, api.MsgPromptRequired))
			return
		}
		envelope.Write(w, d.Service.GenerateImage(r.Context(), req.Prompt, req.Keywords))
	}
}

// GenerateInspiration handles POST /api/generate/inspiration. Any body is ignored.
func GenerateInspiration(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		envelope.Write(w, d.Service.GenerateInspiration(r.Context()))
	}
}

// decode reads a JSON body into dst. An empty body leaves dst zeroed. On a
// malformed body it writes a 400 envelope and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any, log logger.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		log.Debug("rejected request body",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		envelope.Write(w, envelope.Fail[domain.Content](http.StatusBadRequest, msgInvalidBody))
		return false
	}
	return true
}
