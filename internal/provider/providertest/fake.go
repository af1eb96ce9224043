// Package providertest offers a scriptable provider for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/provider"
)

// Fake is a Provider whose behaviour is set per operation. Unset operations
// fail with a ProviderError.
type Fake struct {
	Name  string
	Ready bool

	Text        func(ctx context.Context, topic string, style domain.Style, kw domain.Facets) (domain.Content, error)
	Image       func(ctx context.Context, prompt string, kw domain.Facets) (string, error)
	Inspiration func(ctx context.Context) (domain.Content, error)

	mu    sync.Mutex
	calls []string
}

var _ provider.Provider = (*Fake)(nil)

func (f *Fake) ID() string       { return f.Name }
func (f *Fake) Configured() bool { return f.Ready }

// Calls returns the operations invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *Fake) GenerateText(ctx context.Context, topic string, style domain.Style, kw domain.Facets) (domain.Content, error) {
	f.record(provider.OpText)
	if f.Text == nil {
		return domain.Content{}, provider.Fail(f.Name, provider.OpText, "not scripted", nil)
	}
	return f.Text(ctx, topic, style, kw)
}

func (f *Fake) GenerateImage(ctx context.Context, prompt string, kw domain.Facets) (string, error) {
	f.record(provider.OpImage)
	if f.Image == nil {
		return "", provider.Fail(f.Name, provider.OpImage, "not scripted", nil)
	}
	return f.Image(ctx, prompt, kw)
}

func (f *Fake) GenerateInspiration(ctx context.Context) (domain.Content, error) {
	f.record(provider.OpInspiration)
	if f.Inspiration == nil {
		return domain.Content{}, provider.Fail(f.Name, provider.OpInspiration, "not scripted", nil)
	}
	return f.Inspiration(ctx)
}

// ImageURL returns an Image func that always yields url.
func ImageURL(url string) func(context.Context, string, domain.Facets) (string, error) {
	return func(context.Context, string, domain.Facets) (string, error) { return url, nil }
}

// TextContent returns a Text func that always yields c.
func TextContent(c domain.Content) func(context.Context, string, domain.Style, domain.Facets) (domain.Content, error) {
	return func(context.Context, string, domain.Style, domain.Facets) (domain.Content, error) { return c, nil }
}
