package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/util"
)

// SettingsProvider exposes the current runtime toggles to middleware.
type SettingsProvider interface {
	CurrentSettings() model.Settings
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles per client IP. Stale limiters are evicted in the
// background so the map does not grow with every visitor ever seen.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	log      *logger.Logger
	settings SettingsProvider
}

func NewRateLimiter(requestsPerMinute int, log *logger.Logger, settings SettingsProvider) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	rl := &RateLimiter{
		clients:  map[string]*clientLimiter{},
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
		log:      log,
		settings: settings,
	}

	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.settings != nil && !rl.settings.CurrentSettings().RateLimit {
			next.ServeHTTP(w, r)
			return
		}

		identity := IdentityFromRequest(r)
		if !rl.allow(identity.IP) {
			rl.log.Security(identity, "rate_limited", "request rejected by rate limiter", map[string]any{
				"path": r.URL.Path,
			})
			w.Header().Set("Retry-After", "60")
			util.WriteJSON(w, http.StatusTooManyRequests, model.APIResponse{
				Success: false,
				Error:   &model.APIError{Code: "RATE_LIMITED", Message: "too many requests"},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)

		rl.mu.Lock()
		for ip, client := range rl.clients {
			if client.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}
