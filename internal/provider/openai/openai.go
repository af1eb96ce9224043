// Package openai adapts the OpenAI chat completion and image APIs.
package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/provider"
)

// ID identifies this provider in orchestration order and logs.
const ID = "openai"

const (
	textTemperature        = 0.8
	inspirationTemperature = 0.9
)

type Provider struct {
	cfg    config.ProviderSettings
	client openai.Client
}

// New builds the adapter. Extra request options are appended after the
// credentials, tests use them to point at a fake backend.
func New(cfg config.ProviderSettings, extra ...option.RequestOption) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	return &Provider{cfg: cfg, client: openai.NewClient(opts...)}
}

func (p *Provider) ID() string { return ID }

func (p *Provider) Configured() bool { return p.cfg.Configured() }

func (p *Provider) GenerateText(ctx context.Context, topic string, style domain.Style, keywords domain.Facets) (domain.Content, error) {
	return p.chatJSON(ctx, provider.OpText, p.cfg.TextModel, textTemperature,
		provider.WritingSystem, provider.WritingPrompt(topic, style, keywords))
}

func (p *Provider) GenerateInspiration(ctx context.Context) (domain.Content, error) {
	return p.chatJSON(ctx, provider.OpInspiration, p.cfg.FastModel, inspirationTemperature,
		provider.InspirationSystem, provider.InspirationPrompt)
}

func (p *Provider) GenerateImage(ctx context.Context, prompt string, keywords domain.Facets) (string, error) {
	if !p.Configured() {
		return "", provider.Fail(ID, provider.OpImage, "OpenAI API key is not set", nil)
	}

	params := openai.ImageGenerateParams{
		Prompt: provider.DrawingPrompt(prompt, keywords),
		Model:  openai.ImageModel(p.cfg.ImageModel),
		Size:   openai.ImageGenerateParamsSize1024x1536,
	}
	// dall-e models default to URLs and have their own portrait size.
	if strings.HasPrefix(p.cfg.ImageModel, "dall-e") {
		params.Size = openai.ImageGenerateParamsSize1024x1792
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return "", provider.Fail(ID, provider.OpImage, apiMessage(err, "image generation failed"), err)
	}
	if len(resp.Data) == 0 {
		return "", provider.Fail(ID, provider.OpImage, provider.ErrNoImagePayload.Error(), provider.ErrNoImagePayload)
	}

	img := resp.Data[0]
	switch {
	case img.B64JSON != "":
		return provider.DataURI("image/png", img.B64JSON), nil
	case img.URL != "":
		return img.URL, nil
	}
	return "", provider.Fail(ID, provider.OpImage, provider.ErrNoImagePayload.Error(), provider.ErrNoImagePayload)
}

func (p *Provider) chatJSON(ctx context.Context, op, model string, temperature float64, system, user string) (domain.Content, error) {
	if !p.Configured() {
		return domain.Content{}, provider.Fail(ID, op, "OpenAI API key is not set", nil)
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return domain.Content{}, provider.Fail(ID, op, apiMessage(err, op+" generation failed"), err)
	}
	if len(resp.Choices) == 0 {
		return domain.Content{}, provider.Fail(ID, op, provider.ErrEmptyContent.Error(), provider.ErrEmptyContent)
	}

	content, err := provider.DecodeContent(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.Content{}, provider.Fail(ID, op, err.Error(), err)
	}
	return content, nil
}

// apiMessage prefers the backend's own error message.
func apiMessage(err error, fallback string) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if err != nil {
		return fallback + ": " + err.Error()
	}
	return fallback
}
