package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"vetly/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Tenant caching
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenant(ctx context.Context, tenantID uuid.UUID) error

	// Usage stats caching (read path of the limit enforcer)
	GetUsageStats(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageStats, error)
	SetUsageStats(ctx context.Context, stats *models.TenantUsageStats, ttl time.Duration) error
	DeleteUsageStats(ctx context.Context, tenantID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Refresh-token sessions
	SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
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

	return &redisCacheService{client: client}
}

func tenantKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s", tenantID)
}

func usageKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:usage", tenantID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *redisCacheService) getJSON(ctx context.Context, key string, dst any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (s *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *redisCacheService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	if err := s.getJSON(ctx, tenantKey(tenantID), tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *redisCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	return s.setJSON(ctx, tenantKey(tenant.ID), tenant, ttl)
}

func (s *redisCacheService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	return s.client.Del(ctx, tenantKey(tenantID)).Err()
}

func (s *redisCacheService) GetUsageStats(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageStats, error) {
	stats := &models.TenantUsageStats{}
	if err := s.getJSON(ctx, usageKey(tenantID), stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *redisCacheService) SetUsageStats(ctx context.Context, stats *models.TenantUsageStats, ttl time.Duration) error {
	return s.setJSON(ctx, usageKey(stats.TenantID), stats, ttl)
}

func (s *redisCacheService) DeleteUsageStats(ctx context.Context, tenantID uuid.UUID) error {
	return s.client.Del(ctx, usageKey(tenantID)).Err()
}

func (s *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return s.client.Del(ctx, tenantKey(tenantID), usageKey(tenantID)).Err()
}

func (s *redisCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

func (s *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	return s.client.Get(ctx, sessionKey(sessionID)).Result()
}

func (s *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (s *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Get(ctx, fmt.Sprintf("ratelimit:%s", key)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (s *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	rkey := fmt.Sprintf("ratelimit:%s", key)
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, rkey)
	pipe.Expire(ctx, rkey, window)
	_, err := pipe.Exec(ctx)
	return err
}
