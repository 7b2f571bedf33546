package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginRateLimiter throttles usernames with too many recent failed login
// attempts. Successful attempts never count; a success clears the counter.
type LoginRateLimiter interface {
	Blocked(username string) bool
	RecordFailure(username string)
	Reset(username string)
}

const redisLoginFailScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisLoginRateLimiter struct {
	client redisLoginClient
	window time.Duration
	max    int
	prefix string
}

type redisLoginClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:rl:",
	}
}

// Blocked fails open: a redis outage must not lock everyone out.
func (l *redisLoginRateLimiter) Blocked(username string) bool {
	key := loginRateKey(username)
	if key == "" {
		return false
	}
	ctx, cancel := l.opContext()
	defer cancel()

	raw, err := l.client.Get(ctx, l.prefix+key).Result()
	if err != nil {
		// redis.Nil means no failures recorded yet.
		return false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return count >= l.max
}

func (l *redisLoginRateLimiter) RecordFailure(username string) {
	key := loginRateKey(username)
	if key == "" {
		return
	}
	ctx, cancel := l.opContext()
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	l.client.Eval(ctx, redisLoginFailScript, []string{l.prefix + key}, seconds)
}

func (l *redisLoginRateLimiter) Reset(username string) {
	key := loginRateKey(username)
	if key == "" {
		return
	}
	ctx, cancel := l.opContext()
	defer cancel()

	l.client.Del(ctx, l.prefix+key)
}

func (l *redisLoginRateLimiter) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 500*time.Millisecond)
}

type memoryLoginRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	counts map[string]*failureWindow
}

type failureWindow struct {
	count   int
	resetAt time.Time
}

// NewMemoryLoginRateLimiter backs the limiter without redis. Counts reset
// when their window elapses or when a login succeeds.
func NewMemoryLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryLoginRateLimiter{
		window: window,
		max:    max,
		counts: make(map[string]*failureWindow),
	}
}

func (l *memoryLoginRateLimiter) Blocked(username string) bool {
	key := loginRateKey(username)
	if key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.counts[key]
	if !ok {
		return false
	}
	if time.Now().UTC().After(w.resetAt) {
		delete(l.counts, key)
		return false
	}
	return w.count >= l.max
}

func (l *memoryLoginRateLimiter) RecordFailure(username string) {
	key := loginRateKey(username)
	if key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	w, ok := l.counts[key]
	if !ok || now.After(w.resetAt) {
		l.counts[key] = &failureWindow{count: 1, resetAt: now.Add(l.window)}
		return
	}
	w.count++
}

func (l *memoryLoginRateLimiter) Reset(username string) {
	key := loginRateKey(username)
	if key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}

func loginRateKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
