// Package orchestrator runs one generation request against the configured
// providers in priority order, falling through on failure.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/provider"
)

// Thunk performs one provider's version of an operation.
type Thunk[T any] func(ctx context.Context) (T, error)

type Orchestrator struct {
	providers []provider.Provider
	timeout   time.Duration
	log       logger.Logger
}

// New keeps providers in the given order. A zero timeout disables the
// per-call deadline.
func New(providers []provider.Provider, timeout time.Duration, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{providers: providers, timeout: timeout, log: log}
}

// Available returns the configured providers in priority order.
func (o *Orchestrator) Available() []provider.Provider {
	out := make([]provider.Provider, 0, len(o.providers))
	for _, p := range o.providers {
		if p.Configured() {
			out = append(out, p)
		}
	}
	return out
}

// Status maps every known provider id to its availability.
func (o *Orchestrator) Status() map[string]bool {
	out := make(map[string]bool, len(o.providers))
	for _, p := range o.providers {
		out[p.ID()] = p.Configured()
	}
	return out
}

// Run invokes thunks in provider priority order and returns the first
// success. Providers without a thunk are skipped. When every candidate fails
// the error is an *AllProvidersFailedError carrying the last failure.
func Run[T any](ctx context.Context, o *Orchestrator, op string, thunks map[string]Thunk[T]) (T, error) {
	var zero T

	candidates := make([]string, 0, len(thunks))
	for _, p := range o.Available() {
		if _, ok := thunks[p.ID()]; ok {
			candidates = append(candidates, p.ID())
		}
	}
	if len(candidates) == 0 {
		return zero, domain.ErrNoProviderConfigured
	}

	var last error
	for i, id := range candidates {
		res, err := call(ctx, o, id, op, thunks[id])
		if err == nil {
			return res, nil
		}
		last = err

		if ctx.Err() != nil {
			return zero, &domain.AllProvidersFailedError{Attempts: candidates[:i+1], Last: last}
		}
		if i < len(candidates)-1 {
			o.log.Warn("provider failed, falling back",
				logger.String("provider", id),
				logger.String("next", candidates[i+1]),
				logger.String("op", op),
				logger.Error(err),
			)
		}
	}

	o.log.Error("all providers failed",
		logger.Strings("providers", candidates),
		logger.String("op", op),
		logger.Error(last),
	)
	return zero, &domain.AllProvidersFailedError{Attempts: candidates, Last: last}
}

// Each runs fn against every available provider in order, first success wins.
func Each[T any](ctx context.Context, o *Orchestrator, op string, fn func(ctx context.Context, p provider.Provider) (T, error)) (T, error) {
	thunks := make(map[string]Thunk[T], len(o.providers))
	for _, p := range o.providers {
		thunks[p.ID()] = func(ctx context.Context) (T, error) { return fn(ctx, p) }
	}
	return Run(ctx, o, op, thunks)
}

type result[T any] struct {
	val T
	err error
}

// call runs one thunk under the per-provider deadline. A thunk that ignores
// its context is abandoned when the deadline passes.
func call[T any](ctx context.Context, o *Orchestrator, id, op string, thunk Thunk[T]) (T, error) {
	var zero T

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if o.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
	}
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		v, err := thunk(callCtx)
		done <- result[T]{val: v, err: err}
	}()

	res := await(callCtx, done)
	if res.err == nil {
		return res.val, nil
	}
	return zero, normalize(id, op, res.err, callCtx, ctx, o.timeout)
}

// await returns the thunk's result, or the context error once ctx is done.
// A result that is already delivered when the deadline fires wins.
func await[T any](ctx context.Context, done <-chan result[T]) result[T] {
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		select {
		case res := <-done:
			return res
		default:
			return result[T]{err: ctx.Err()}
		}
	}
}

// normalize turns any failure into a *ProviderError.
func normalize(id, op string, err error, callCtx, parent context.Context, timeout time.Duration) error {
	if parent.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return provider.Fail(id, op, fmt.Sprintf("timed out after %s", timeout), context.DeadlineExceeded)
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return provider.Fail(id, op, err.Error(), err)
}
