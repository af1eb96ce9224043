// Package api exposes every user-facing operation as an envelope-returning
// call. Errors never escape as Go errors.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/orchestrator"
	"github.com/MrSnakeDoc/muse/internal/persist"
	"github.com/MrSnakeDoc/muse/internal/provider"
)

// Validation messages for the request boundary.
const (
	MsgStyleRequired  = "style is required"
	MsgPromptRequired = "prompt is required"
	MsgNoStore        = "history is not available in this mode"
)

type Service struct {
	orch  *orchestrator.Orchestrator
	store *persist.Store // nil when running without local state
	log   logger.Logger
}

func NewService(orch *orchestrator.Orchestrator, store *persist.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{orch: orch, store: store, log: log}
}

// Providers reports availability per provider id.
func (s *Service) Providers() map[string]bool {
	return s.orch.Status()
}

// FallbackOrder lists the configured providers in the order they are tried.
func (s *Service) FallbackOrder() []string {
	available := s.orch.Available()
	ids := make([]string, 0, len(available))
	for _, p := range available {
		ids = append(ids, p.ID())
	}
	return ids
}

// GenerateText writes a piece for topic in style.
func (s *Service) GenerateText(ctx context.Context, topic string, style domain.Style, keywords domain.Facets) envelope.Response[domain.Content] {
	if style == "" {
		return envelope.FromError[domain.Content](domain.NewValidationError("style", MsgStyleRequired))
	}
	if !style.Valid() {
		return envelope.FromError[domain.Content](domain.NewValidationError("style", fmt.Sprintf("unknown style %q", style)))
	}

	content, err := orchestrator.Each(ctx, s.orch, provider.OpText,
		func(ctx context.Context, p provider.Provider) (domain.Content, error) {
			return p.GenerateText(ctx, topic, style, keywords)
		})
	return s.respond(provider.OpText, content, err)
}

// GenerateImage draws prompt. The content carries the image and the prompt
// as its description.
func (s *Service) GenerateImage(ctx context.Context, prompt string, keywords domain.Facets) envelope.Response[domain.Content] {
	if strings.TrimSpace(prompt) == "" && !keywords.HasAny() {
		return envelope.FromError[domain.Content](domain.NewValidationError("prompt", MsgPromptRequired))
	}

	url, err := orchestrator.Each(ctx, s.orch, provider.OpImage,
		func(ctx context.Context, p provider.Provider) (string, error) {
			return p.GenerateImage(ctx, prompt, keywords)
		})
	return s.respond(provider.OpImage, domain.Content{ImageURL: url, Description: prompt}, err)
}

// GenerateInspiration produces a short prompt idea.
func (s *Service) GenerateInspiration(ctx context.Context) envelope.Response[domain.Content] {
	content, err := orchestrator.Each(ctx, s.orch, provider.OpInspiration,
		func(ctx context.Context, p provider.Provider) (domain.Content, error) {
			return p.GenerateInspiration(ctx)
		})
	return s.respond(provider.OpInspiration, content, err)
}

func (s *Service) respond(op string, content domain.Content, err error) envelope.Response[domain.Content] {
	if err != nil {
		s.log.Error("generation failed", logger.String("op", op), logger.Error(err))
		return envelope.FromError[domain.Content](err)
	}
	return envelope.OK(content)
}

// UserHistory returns the persisted history. An unreadable store yields an
// empty history rather than a failure.
func (s *Service) UserHistory(ctx context.Context) envelope.Response[[]domain.HistoryItem] {
	if s.store == nil {
		return envelope.Fail[[]domain.HistoryItem](http.StatusNotImplemented, MsgNoStore)
	}
	history, err := s.store.History(ctx)
	if err != nil {
		s.log.Warn("history unreadable, returning empty list", logger.Error(err))
	}
	return envelope.OK(history)
}

// ToggleFavorite pins or unpins item and persists the change before
// returning the updated favorites.
func (s *Service) ToggleFavorite(ctx context.Context, item domain.HistoryItem) envelope.Response[[]domain.FavoriteItem] {
	if s.store == nil {
		return envelope.Fail[[]domain.FavoriteItem](http.StatusNotImplemented, MsgNoStore)
	}
	if item.ID == "" {
		return envelope.FromError[[]domain.FavoriteItem](domain.NewValidationError("id", "item id is required"))
	}

	favs, added, err := s.store.ToggleFavorite(ctx, item)
	if err != nil {
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			s.log.Error("failed to persist favorite", logger.String("id", item.ID), logger.Error(err))
		}
		return envelope.FromError[[]domain.FavoriteItem](err)
	}

	s.log.Debug("favorite toggled", logger.String("id", item.ID), logger.Bool("added", added))
	return envelope.OK(favs)
}
