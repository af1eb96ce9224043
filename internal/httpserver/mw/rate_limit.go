package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/muse/internal/envelope"
)

const msgTooManyRequests = "Too many generation requests, please wait a moment"

// RateLimitConfig sizes the per-client token buckets guarding the generate
// routes, where every accepted request costs a provider call.
type RateLimitConfig struct {
	Burst      int // requests a client may fire back to back
	PerMinute  int // tokens refilled per client per minute
	MaxClients int // tracked clients before idle ones are evicted, 0 = unbounded
	IdleTTL    time.Duration
	TrustProxy bool
	Now        func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clients maps a client IP to its limiter.
type clients struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu    sync.Mutex
	byIP  map[string]*client
	swept time.Time
}

func newClients(cfg RateLimitConfig) *clients {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.PerMinute = max(cfg.PerMinute, 1)
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &clients{
		cfg:   cfg,
		every: rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		byIP:  make(map[string]*client),
		swept: cfg.Now(),
	}
}

func (c *clients) get(ip string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	full := c.cfg.MaxClients > 0 && len(c.byIP) >= c.cfg.MaxClients
	if full || now.Sub(c.swept) >= c.cfg.IdleTTL {
		c.evictIdle(now)
	}

	cl, ok := c.byIP[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(c.every, c.cfg.Burst)}
		c.byIP[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// evictIdle drops clients unseen for IdleTTL. Their buckets would be full
// again by then, so forgetting them changes nothing.
func (c *clients) evictIdle(now time.Time) {
	for ip, cl := range c.byIP {
		if now.Sub(cl.lastSeen) > c.cfg.IdleTTL {
			delete(c.byIP, ip)
		}
	}
	c.swept = now
}

func (c *clients) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byIP)
}

// take spends one token for ip. When none is left it returns the wait
// until the next one.
func (c *clients) take(ip string) (remaining int, wait time.Duration) {
	now := c.cfg.Now()
	lim := c.get(ip, now)

	res := lim.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return 0, d
	}
	return int(math.Floor(lim.TokensAt(now))), 0
}

// RateLimit rejects clients that exhausted their bucket with a 429 envelope.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	c := newClients(cfg)
	limit := strconv.Itoa(c.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, wait := c.take(clientIP(r, c.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
			if wait > 0 {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				envelope.Write(w, envelope.Fail[struct{}](http.StatusTooManyRequests, msgTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
