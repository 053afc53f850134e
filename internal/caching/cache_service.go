package caching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrGateMiss is returned when no cached gate value exists for the tenant.
var ErrGateMiss = errors.New("tenant gate not cached")

// TenantGateCache caches the per-tenant write gate (the derived "active"
// flag). License transitions invalidate it so a restricted tenant loses
// write access within one cache TTL at worst.
type TenantGateCache interface {
	IsActive(ctx context.Context, tenantID uuid.UUID) (bool, error)
	SetActive(ctx context.Context, tenantID uuid.UUID, active bool, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

type redisGateCache struct {
	client *redis.Client
}

func NewRedisGateCache(addr, password string, db int) TenantGateCache {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisGateCache{client: client}
}

func gateKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:gate", tenantID.String())
}

func (c *redisGateCache) IsActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	val, err := c.client.Get(ctx, gateKey(tenantID)).Result()
	if err == redis.Nil {
		return false, ErrGateMiss
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

func (c *redisGateCache) SetActive(ctx context.Context, tenantID uuid.UUID, active bool, ttl time.Duration) error {
	val := "0"
	if active {
		val = "1"
	}
	return c.client.Set(ctx, gateKey(tenantID), val, ttl).Err()
}

func (c *redisGateCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, gateKey(tenantID)).Err()
}
