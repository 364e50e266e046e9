package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"roombook/config"
	h "roombook/internal/delivery/http/helpers"
	"roombook/internal/metrics"
)

// Limiter backends, used as the metrics label.
const (
	BackendRedis = "redis"
	BackendLocal = "local"
)

// maxLocalBuckets bounds the in-process fallback; the map is reset when exceeded.
const maxLocalBuckets = 10000

// tokenBucketScript refills the bucket in whole intervals and takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimiter is a per-key token bucket. Buckets live in Redis when a client is configured;
// if Redis is absent or failing, an in-process x/time/rate limiter takes over.
type RateLimiter struct {
	cfg     config.RateLimitConfig
	rdb     *redis.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter returns a limiter. rdb and m may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, m *metrics.Metrics, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		rdb:     rdb,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		local:   make(map[string]*rate.Limiter),
	}
}

type decision struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
	backend    string
}

// Limit wraps next with the limiter. Use it inside RequireAuth so the bucket key includes the
// caller; unauthenticated requests share the "anon" user.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	if !l.cfg.Enabled {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		d := l.take(r.Context(), key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		if d.backend == BackendRedis {
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
		}
		if !d.allowed {
			secs := int(math.Ceil(d.retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			l.metrics.IncRateLimited(d.backend)
			l.logger.DebugContext(r.Context(), "rate limited", "key", key, "backend", d.backend, "retry_after", secs)
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) take(ctx context.Context, key string) decision {
	if l.rdb != nil {
		d, err := l.takeRedis(ctx, key)
		if err == nil {
			return d
		}
		l.logger.WarnContext(ctx, "redis rate limiter unavailable, using local buckets", "err", err)
	}
	return l.takeLocal(key)
}

func (l *RateLimiter) takeRedis(ctx context.Context, key string) (decision, error) {
	args := []any{
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL / time.Second),
	}
	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{key}, args...).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, fmt.Errorf("unexpected script result %v", vals)
	}
	return decision{
		allowed:    vals[0] == 1,
		remaining:  vals[1],
		retryAfter: time.Duration(vals[2]) * time.Millisecond,
		backend:    BackendRedis,
	}, nil
}

func (l *RateLimiter) takeLocal(key string) decision {
	l.mu.Lock()
	lim, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalBuckets {
			l.local = make(map[string]*rate.Limiter)
		}
		every := l.cfg.RefillInterval / time.Duration(l.cfg.RefillTokens)
		lim = rate.NewLimiter(rate.Every(every), l.cfg.Capacity)
		l.local[key] = lim
	}
	l.mu.Unlock()

	now := l.now()
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return decision{backend: BackendLocal, retryAfter: l.cfg.RefillInterval}
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return decision{backend: BackendLocal, retryAfter: delay}
	}
	return decision{allowed: true, backend: BackendLocal}
}

// key builds prefix:ip:user:route. The route is the matched ServeMux pattern when available.
func (l *RateLimiter) key(r *http.Request) string {
	user, ok := UserIDFromContext(r.Context())
	if !ok {
		user = "anon"
	}
	route := r.Pattern
	if route == "" {
		route = r.Method + " " + r.URL.Path
	}
	return strings.Join([]string{l.cfg.Prefix, clientIP(r), user, route}, ":")
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
