package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks requests per IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// ipLimiter is a per-IP fixed-window counter.
type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{entries: make(map[string]*windowEntry), limit: limit, window: window}
	registerForPurge(l)
	return l
}

// allow counts one request for ip and reports whether it is within the limit
// plus the end of the current window.
func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *ipLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

func (l *ipLimiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		ok, windowEnd := l.allow(c.ClientIP(), now)
		if !ok {
			secs := int(windowEnd.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.WithCode(apierror.CodeRateLimited, msg))
			return
		}
		c.Next()
	}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login and password-reset attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute).handler("Demasiados intentos. Intente nuevamente en 1 minuto.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter returns a general-purpose per-IP limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window).handler("Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically drops expired entries so IPs that never return do not pile up.

const purgeInterval = 5 * time.Minute

var (
	limiters   []*ipLimiter
	limitersMu sync.Mutex
	purgeOnce  sync.Once
)

func registerForPurge(l *ipLimiter) {
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	purgeOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitersMu.Lock()
		purged := 0
		for _, l := range limiters {
			purged += l.purge(now)
		}
		limitersMu.Unlock()
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter entries purged")
		}
	}
}
