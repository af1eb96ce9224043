// Package gemini adapts the Gemini models through the genai SDK.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/provider"
)

// ID identifies this provider in orchestration order and logs.
const ID = "gemini"

const apiVersion = "v1beta"

type Provider struct {
	cfg        config.ProviderSettings
	httpClient *http.Client

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New builds the adapter. A nil client lets the SDK pick its own; deadlines
// come from the caller's context. The SDK client is created on first call.
func New(cfg config.ProviderSettings, httpClient *http.Client) *Provider {
	return &Provider{cfg: cfg, httpClient: httpClient}
}

func (p *Provider) ID() string { return ID }

func (p *Provider) Configured() bool { return p.cfg.Configured() }

var writingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":     {Type: genai.TypeString},
		"body":      {Type: genai.TypeString, Description: "an evocative excerpt"},
		"pairings":  {Type: genai.TypeString, Description: "the couple"},
		"plotHooks": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "three plot hooks"},
		"traits":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "character tags"},
	},
	Required: []string{"title", "body", "pairings", "plotHooks", "traits"},
}

var inspirationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"pairings":    {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"traits":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"pairings", "description", "traits"},
}

func (p *Provider) GenerateText(ctx context.Context, topic string, style domain.Style, keywords domain.Facets) (domain.Content, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(provider.WritingSystem, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    writingSchema,
	}
	return p.generateJSON(ctx, provider.OpText, p.cfg.TextModel, provider.WritingPrompt(topic, style, keywords), cfg)
}

func (p *Provider) GenerateInspiration(ctx context.Context) (domain.Content, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(provider.InspirationSystem, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    inspirationSchema,
	}
	return p.generateJSON(ctx, provider.OpInspiration, p.cfg.FastModel, provider.InspirationPrompt, cfg)
}

func (p *Provider) GenerateImage(ctx context.Context, prompt string, keywords domain.Facets) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: "3:4"},
	}

	resp, err := p.generate(ctx, provider.OpImage, p.cfg.ImageModel, provider.DrawingPrompt(prompt, keywords), cfg)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, pt := range c.Content.Parts {
			if pt != nil && pt.InlineData != nil && len(pt.InlineData.Data) > 0 {
				return provider.DataURI(pt.InlineData.MIMEType, base64.StdEncoding.EncodeToString(pt.InlineData.Data)), nil
			}
		}
	}
	return "", provider.Fail(ID, provider.OpImage, provider.ErrNoImagePayload.Error(), provider.ErrNoImagePayload)
}

func (p *Provider) generateJSON(ctx context.Context, op, model, prompt string, cfg *genai.GenerateContentConfig) (domain.Content, error) {
	resp, err := p.generate(ctx, op, model, prompt, cfg)
	if err != nil {
		return domain.Content{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return domain.Content{}, provider.Fail(ID, op, provider.ErrEmptyContent.Error(), provider.ErrEmptyContent)
	}

	parts := resp.Candidates[0].Content.Parts
	texts := make([]string, 0, len(parts))
	for _, pt := range parts {
		if pt != nil && !pt.Thought {
			texts = append(texts, pt.Text)
		}
	}

	c, err := provider.DecodeContent(provider.JoinParts(texts))
	if err != nil {
		return domain.Content{}, provider.Fail(ID, op, err.Error(), err)
	}
	return c, nil
}

func (p *Provider) generate(ctx context.Context, op, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if !p.Configured() {
		return nil, provider.Fail(ID, op, "Gemini API key is not set", nil)
	}
	client, err := p.sdk(ctx)
	if err != nil {
		return nil, provider.Fail(ID, op, "failed to create client", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, provider.Fail(ID, op, apiMessage(err), err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, provider.Fail(ID, op, "prompt blocked: "+string(resp.PromptFeedback.BlockReason), nil)
	}
	return resp, nil
}

func (p *Provider) sdk(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     p.cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: p.httpClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    p.cfg.BaseURL,
				APIVersion: apiVersion,
			},
		})
	})
	return p.client, p.initErr
}

// apiMessage keeps the backend's own message when it sent one.
func apiMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return fmt.Sprintf("API returned status %d", apiErr.Code)
	}
	return "failed to call API"
}
