package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InFlightGuard permite una sola respuesta en curso por clave (conversación).
type InFlightGuard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

type memoryInFlightGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryInFlightGuard() InFlightGuard {
	return &memoryInFlightGuard{held: make(map[string]struct{})}
}

func (g *memoryInFlightGuard) Acquire(_ context.Context, key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return func() {}, false
	}
	g.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true
}

// Solo borra la clave si sigue siendo nuestra; otro proceso pudo tomarla tras el TTL.
const redisInFlightReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisInFlightGuard struct {
	client redisLocker
	ttl    time.Duration
	prefix string
}

// NewRedisInFlightGuard comparte el lock entre réplicas. El TTL acota locks huérfanos.
func NewRedisInFlightGuard(client *redis.Client, ttl time.Duration) InFlightGuard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisInFlightGuard{
		client: client,
		ttl:    ttl,
		prefix: "chat:inflight:",
	}
}

func (g *redisInFlightGuard) Acquire(ctx context.Context, key string) (func(), bool) {
	noop := func() {}
	if g == nil || g.client == nil {
		return noop, true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return noop, false
	}

	redisKey := g.prefix + key
	token := uuid.NewString()

	setCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	acquired, err := g.client.SetNX(setCtx, redisKey, token, g.ttl).Result()
	if err != nil {
		// Fail-open: sin Redis no bloqueamos el chat.
		return noop, true
	}
	if !acquired {
		return noop, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			relCtx, relCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer relCancel()
			_ = g.client.Eval(relCtx, redisInFlightReleaseScript, []string{redisKey}, token).Err()
		})
	}, true
}
