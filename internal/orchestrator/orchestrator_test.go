package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/provider"
	"github.com/MrSnakeDoc/muse/internal/provider/providertest"
)

func twoProviders(aReady, bReady bool) *Orchestrator {
	return New([]provider.Provider{
		&providertest.Fake{Name: "a", Ready: aReady},
		&providertest.Fake{Name: "b", Ready: bReady},
	}, time.Second, logger.NewNop())
}

func counted(n *atomic.Int32, val string, err error) Thunk[string] {
	return func(context.Context) (string, error) {
		n.Add(1)
		return val, err
	}
}

func TestRunFallback(t *testing.T) {
	o := twoProviders(true, true)
	var a, b atomic.Int32

	got, err := Run(t.Context(), o, provider.OpText, map[string]Thunk[string]{
		"a": counted(&a, "", errors.New("boom")),
		"b": counted(&b, "from b", nil),
	})

	require.NoError(t, err)
	assert.Equal(t, "from b", got)
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestRunShortCircuit(t *testing.T) {
	o := twoProviders(true, true)
	var a, b atomic.Int32

	got, err := Run(t.Context(), o, provider.OpText, map[string]Thunk[string]{
		"a": counted(&a, "from a", nil),
		"b": counted(&b, "from b", nil),
	})

	require.NoError(t, err)
	assert.Equal(t, "from a", got)
	assert.Equal(t, int32(0), b.Load(), "b must never run after a succeeded")
}

func TestRunNoProviderConfigured(t *testing.T) {
	o := twoProviders(false, false)
	var a atomic.Int32

	_, err := Run(t.Context(), o, provider.OpImage, map[string]Thunk[string]{
		"a": counted(&a, "x", nil),
	})

	assert.ErrorIs(t, err, domain.ErrNoProviderConfigured)
	assert.Equal(t, int32(0), a.Load())
}

func TestRunSkipsUnconfigured(t *testing.T) {
	o := twoProviders(false, true)
	var a, b atomic.Int32

	got, err := Run(t.Context(), o, provider.OpText, map[string]Thunk[string]{
		"a": counted(&a, "from a", nil),
		"b": counted(&b, "from b", nil),
	})

	require.NoError(t, err)
	assert.Equal(t, "from b", got)
	assert.Equal(t, int32(0), a.Load())
}

func TestRunAllFailSurfacesLast(t *testing.T) {
	o := twoProviders(true, true)

	_, err := Run(t.Context(), o, provider.OpInspiration, map[string]Thunk[string]{
		"a": func(context.Context) (string, error) { return "", provider.Fail("a", provider.OpInspiration, "first", nil) },
		"b": func(context.Context) (string, error) { return "", errors.New("second") },
	})

	var all *domain.AllProvidersFailedError
	require.True(t, errors.As(err, &all))
	assert.Equal(t, []string{"a", "b"}, all.Attempts)
	assert.Equal(t, "b inspiration: second", err.Error())

	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe), "plain errors are normalized")
	assert.Equal(t, "b", pe.Provider)
}

func TestRunTimeoutFallsThrough(t *testing.T) {
	o := New([]provider.Provider{
		&providertest.Fake{Name: "a", Ready: true},
		&providertest.Fake{Name: "b", Ready: true},
	}, 20*time.Millisecond, logger.NewNop())

	hang := make(chan struct{})
	defer close(hang)

	got, err := Run(t.Context(), o, provider.OpImage, map[string]Thunk[string]{
		"a": func(context.Context) (string, error) {
			<-hang // ignores its context
			return "late", nil
		},
		"b": func(context.Context) (string, error) { return "from b", nil },
	})

	require.NoError(t, err)
	assert.Equal(t, "from b", got)
}

func TestRunTimeoutIsProviderError(t *testing.T) {
	o := New([]provider.Provider{&providertest.Fake{Name: "a", Ready: true}}, 10*time.Millisecond, logger.NewNop())

	_, err := Run(t.Context(), o, provider.OpText, map[string]Thunk[int]{
		"a": func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	})

	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunParentCancelledStops(t *testing.T) {
	o := twoProviders(true, true)
	ctx, cancel := context.WithCancel(t.Context())
	var b atomic.Int32

	_, err := Run(ctx, o, provider.OpText, map[string]Thunk[string]{
		"a": func(context.Context) (string, error) {
			cancel()
			return "", errors.New("cancelled")
		},
		"b": counted(&b, "from b", nil),
	})

	require.Error(t, err)
	assert.Equal(t, int32(0), b.Load())
}

func TestRunRecoversPanic(t *testing.T) {
	o := twoProviders(true, true)

	got, err := Run(t.Context(), o, provider.OpText, map[string]Thunk[string]{
		"a": func(context.Context) (string, error) { panic("kaboom") },
		"b": func(context.Context) (string, error) { return "ok", nil },
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestAwaitPrefersDeliveredResult(t *testing.T) {
	expired, cancel := context.WithCancel(t.Context())
	cancel()

	for range 100 {
		done := make(chan result[string], 1)
		done <- result[string]{val: "ok"}
		res := await(expired, done)
		require.NoError(t, res.err)
		assert.Equal(t, "ok", res.val)
	}

	res := await(expired, make(chan result[string], 1))
	assert.ErrorIs(t, res.err, context.Canceled)
}

func TestEach(t *testing.T) {
	a := &providertest.Fake{Name: "a", Ready: true}
	b := &providertest.Fake{
		Name:  "b",
		Ready: true,
		Image: providertest.ImageURL("data:image/png;base64,AAA"),
	}
	o := New([]provider.Provider{a, b}, time.Second, nil)

	got, err := Each(t.Context(), o, provider.OpImage, func(ctx context.Context, p provider.Provider) (string, error) {
		return p.GenerateImage(ctx, "a garden at dusk", nil)
	})

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA", got)
	assert.Equal(t, []string{"image"}, a.Calls())
	assert.Equal(t, []string{"image"}, b.Calls())
}

func TestAvailableAndStatus(t *testing.T) {
	o := twoProviders(false, true)

	avail := o.Available()
	require.Len(t, avail, 1)
	assert.Equal(t, "b", avail[0].ID())
	assert.Equal(t, map[string]bool{"a": false, "b": true}, o.Status())
}
