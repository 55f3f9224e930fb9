package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyGenerateUser = "promptinvoice:generate:user:%s"
	keyGenerateLock = "promptinvoice:generate:lock:%s"

	defaultLockTTL = 2 * time.Minute
)

// Guard gates invoice generation per user.
type Guard interface {
	// Allow spends one generation token for userID.
	Allow(ctx context.Context, userID string) (*Result, error)
	// Acquire takes the user's in-flight slot. ok is false when another
	// generation for the same user is still running.
	Acquire(ctx context.Context, userID string) (release func(), ok bool, err error)
}

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// GenerationGuard combines the per-user token bucket with the in-flight lock.
// Without Redis it keeps locks in memory and does not rate limit.
type GenerationGuard struct {
	log     *zap.Logger
	bucket  *TokenBucket
	locker  Locker
	rate    float64
	burst   int
	lockTTL time.Duration
}

var _ Guard = (*GenerationGuard)(nil)

func NewGenerationGuard(p Params) (*GenerationGuard, error) {
	log := p.Log.Named("ratelimit")
	limitCfg := p.Cfg.RateLimit

	lockTTL := time.Duration(limitCfg.GenerationLockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	if !limitCfg.Enabled {
		log.Info("rate limiting disabled, using in-process generation lock")
		return NewLocalGenerationGuard(lockTTL), nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.GenerateRate <= 0 || limitCfg.GenerateBurst <= 0 {
		return nil, errors.New("generate rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	log.Info("rate limiting enabled",
		zap.String("redis_addr", addr),
		zap.Float64("generate_rate", limitCfg.GenerateRate),
		zap.Int("generate_burst", limitCfg.GenerateBurst),
	)

	return &GenerationGuard{
		log:     log,
		bucket:  NewTokenBucket(client),
		locker:  NewRedisLocker(client),
		rate:    limitCfg.GenerateRate,
		burst:   limitCfg.GenerateBurst,
		lockTTL: lockTTL,
	}, nil
}

func NewLocalGenerationGuard(lockTTL time.Duration) *GenerationGuard {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &GenerationGuard{
		log:     zap.NewNop(),
		locker:  NewLocalLocker(),
		lockTTL: lockTTL,
	}
}

func (g *GenerationGuard) Allow(ctx context.Context, userID string) (*Result, error) {
	if g.bucket == nil {
		return &Result{Allowed: true}, nil
	}
	return g.bucket.Allow(ctx, fmt.Sprintf(keyGenerateUser, strings.TrimSpace(userID)), g.rate, g.burst)
}

func (g *GenerationGuard) Acquire(ctx context.Context, userID string) (func(), bool, error) {
	key := fmt.Sprintf(keyGenerateLock, strings.TrimSpace(userID))
	token, ok, err := g.locker.TryLock(ctx, key, g.lockTTL)
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release := func() {
		if err := g.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			g.log.Warn("generation lock release failed", zap.Error(err))
		}
	}
	return release, true, nil
}
