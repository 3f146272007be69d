package api

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client budget of the HTTP API.
type RateLimitConfig struct {
	RequestsPerSecond float64       // Sustained requests per client
	Burst             int           // Requests a client may send at once
	IdleTTL           time.Duration // Budgets unused this long are dropped. Zero keeps them.
}

// DefaultRateLimitConfig fits a page polling /api/state and a frame image
// while forwarding key presses.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 30,
	Burst:             60,
	IdleTTL:           10 * time.Minute,
}

// Each WebSocket connection gets its own budget for commands. Key repeat
// on a held arrow is the busiest sender.
const (
	wsCommandsPerSecond = 60
	wsCommandBurst      = 120
)

type clientBudget struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Idle buckets
// are swept on the request path, at most once per IdleTTL.
type IPRateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	budgets   map[string]*clientBudget
	lastSweep time.Time
}

// NewIPRateLimiter creates a limiter with cfg.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	return &IPRateLimiter{
		cfg:     cfg,
		now:     time.Now,
		budgets: make(map[string]*clientBudget),
	}
}

// Allow spends one token of ip's budget.
func (rl *IPRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	rl.sweep(now)
	c, ok := rl.budgets[ip]
	if !ok {
		c = &clientBudget{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.budgets[ip] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func (rl *IPRateLimiter) sweep(now time.Time) {
	ttl := rl.cfg.IdleTTL
	if ttl <= 0 || now.Sub(rl.lastSweep) < ttl {
		return
	}
	rl.lastSweep = now
	for ip, c := range rl.budgets {
		if now.Sub(c.lastSeen) >= ttl {
			delete(rl.budgets, ip)
		}
	}
}

// clients returns how many client budgets are held.
func (rl *IPRateLimiter) clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.budgets)
}

// Middleware rejects requests over the client's budget with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the peer address. The server is a local control surface with
// no proxy in front, so forwarding headers are not trusted.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// connLimiter caps concurrent WebSocket connections per client address.
type connLimiter struct {
	mu    sync.Mutex
	perIP int
	open  map[string]int
}

func newConnLimiter(perIP int) *connLimiter {
	return &connLimiter{perIP: perIP, open: make(map[string]int)}
}

// Acquire reserves a connection slot for ip.
func (c *connLimiter) Acquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[ip] >= c.perIP {
		return false
	}
	c.open[ip]++
	return true
}

// Release returns a slot. Addresses with no open connections are forgotten.
func (c *connLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[ip] <= 1 {
		delete(c.open, ip)
		return
	}
	c.open[ip]--
}

// AllowedOrigins lists the exact origins accepted for WebSocket upgrades
// besides localhost on any port. ALLOWED_ORIGINS adds a comma separated list.
var AllowedOrigins = loadAllowedOrigins()

func loadAllowedOrigins() []string {
	origins := []string{
		"http://127.0.0.1",
		"http://localhost",
	}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsAllowedOrigin checks if an origin is in the allowed list
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
