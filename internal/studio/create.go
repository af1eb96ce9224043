package studio

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/state"
)

// Create runs one generation for the active kind with the current inputs.
//
// Invalid input fails before anything else happens. Otherwise loading is
// raised and the current result cleared, the backend is called, and on
// success the result is shown and prepended to history. Loading is lowered
// on every exit path. Overlapping calls each work on their own inputs and the
// last one to finish wins the displayed result.
func (s *Studio) Create(ctx context.Context) (domain.HistoryItem, error) {
	in := s.State()

	if err := domain.ValidateRequest(in.ActiveType, in.Prompt, in.Keywords, in.ImageKeywords); err != nil {
		s.Dispatch(ctx, state.SetError{Message: err.Error()})
		return domain.HistoryItem{}, err
	}

	s.Dispatch(ctx, state.SetLoading{Loading: true}, state.SetResult{}, state.SetError{})
	defer s.Dispatch(context.WithoutCancel(ctx), state.SetLoading{Loading: false})

	resp := s.call(ctx, in)
	if !resp.Success || resp.Data == nil {
		msg := resp.Error
		if msg == "" {
			msg = envelope.MsgNetworkFailure
		}
		s.Dispatch(ctx, state.SetError{Message: msg})
		return domain.HistoryItem{}, errors.New(msg)
	}

	now := s.now()
	item := domain.HistoryItem{
		ID:        s.ids.New(now),
		Kind:      in.ActiveType,
		Prompt:    in.Prompt,
		Content:   *resp.Data,
		Timestamp: now.UnixMilli(),
	}
	switch in.ActiveType {
	case domain.KindWriting:
		item.Style = in.ActiveStyle
		item.Keywords = in.Keywords.Clone()
	case domain.KindDrawing:
		item.ImageKeywords = in.ImageKeywords.Clone()
	}

	s.Dispatch(ctx, state.SetResult{Item: &item}, state.AddHistory{Item: item})
	s.log.Info("created",
		logger.String("id", item.ID),
		logger.String("type", string(item.Kind)),
	)
	return item, nil
}

// call invokes the backend for the active kind. A panic is turned into the
// generic network failure envelope.
func (s *Studio) call(ctx context.Context, in state.State) (resp envelope.Response[domain.Content]) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("generation panicked", logger.String("panic", fmt.Sprint(r)))
			resp = envelope.FromError[domain.Content](nil)
		}
	}()

	switch in.ActiveType {
	case domain.KindWriting:
		return s.backend.GenerateText(ctx, in.Prompt, in.ActiveStyle, in.Keywords)
	case domain.KindDrawing:
		return s.backend.GenerateImage(ctx, in.Prompt, in.ImageKeywords)
	default:
		return s.backend.GenerateInspiration(ctx)
	}
}
