package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	httpresponse "dadosabertos/relatorio/internal/infrastructure/http"
	"dadosabertos/relatorio/internal/infrastructure/metrics"
)

// RateLimitConfig configures the per-client limiter.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client address.
type RateLimiter struct {
	cfg     RateLimitConfig
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter creates a limiter allowing cfg.PerMinute requests per client with
// bursts up to cfg.Burst.
func NewRateLimiter(cfg RateLimitConfig, log *slog.Logger, m *metrics.Metrics) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether client may proceed now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.cfg.IdleTTL {
		for key, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.cfg.IdleTTL {
				delete(rl.clients, key)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[client]
	if !ok {
		every := time.Minute / time.Duration(rl.cfg.PerMinute)
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), rl.cfg.Burst)}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if rl.Allow(client) {
			next.ServeHTTP(w, r)
			return
		}

		rl.metrics.IncRateLimited()
		if rl.log != nil {
			rl.log.Warn("Rate limit exceeded", "client", client, "path", r.URL.Path)
		}
		retryAfter := int((time.Minute / time.Duration(rl.cfg.PerMinute)).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		httpresponse.WriteError(w, http.StatusTooManyRequests, "Muitas solicitações",
			[]string{"Aguarde alguns instantes antes de gerar outro relatório"}, rl.log)
	})
}

// clientKey uses the host part of RemoteAddr, which chi's RealIP has already
// rewritten from forwarding headers.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
