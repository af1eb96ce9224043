package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

var (
	ErrEmptyContent   = errors.New("backend returned no content")
	ErrNoImagePayload = errors.New("backend returned no image data")
)

// textList accepts either a JSON array of strings or a single string.
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one != "" {
		*l = []string{one}
	}
	return nil
}

type wireContent struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Pairings    string   `json:"pairings"`
	Traits      textList `json:"traits"`
	PlotHooks   textList `json:"plotHooks"`
	ImageURL    string   `json:"imageUrl"`
	Description string   `json:"description"`
}

// DecodeContent parses a model's JSON answer. It accepts a bare object or one
// wrapped in a markdown code fence.
func DecodeContent(raw string) (domain.Content, error) {
	text := StripFence(raw)
	if text == "" {
		return domain.Content{}, ErrEmptyContent
	}

	var w wireContent
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return domain.Content{}, fmt.Errorf("failed to parse content json: %w", err)
	}

	c := domain.Content{
		Title:       w.Title,
		Body:        w.Body,
		Pairings:    w.Pairings,
		Traits:      []string(w.Traits),
		PlotHooks:   []string(w.PlotHooks),
		ImageURL:    w.ImageURL,
		Description: w.Description,
	}
	if c.IsEmpty() {
		return domain.Content{}, ErrEmptyContent
	}
	return c, nil
}

// JoinParts concatenates text parts in order.
func JoinParts(parts []string) string {
	return strings.Join(parts, "")
}

// StripFence trims whitespace and a surrounding ``` or ```json fence.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DataURI encodes base64 image bytes as a data URI.
func DataURI(mimeType, b64 string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + b64
}
