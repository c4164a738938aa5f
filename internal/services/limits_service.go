package services

import (
	"context"
	"fmt"
	"time"

	"vetly/internal/caching"
	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
)

// Resource names checked against plan limits.
const (
	ResourcePets          = "pets"
	ResourceUsers         = "users"
	ResourceCashRegisters = "cash_registers"
	ResourceWhatsApp      = "whatsapp_messages"
	ResourceStorage       = "storage"
)

const usageCacheTTL = 2 * time.Minute

// UsageInfo reports the current usage and limit for a resource.
type UsageInfo struct {
	Resource string `json:"resource"`
	Current  int64  `json:"current"`
	Limit    int64  `json:"limit"`
	Allowed  bool   `json:"allowed"`
}

// LimitsService is the feature gate: it decides whether a tenant may add
// one more unit of a resource under its current plan.
type LimitsService interface {
	CheckResource(ctx context.Context, tenantID uuid.UUID, resource string) (*UsageInfo, error)
	RecordUsage(ctx context.Context, tenantID uuid.UUID, counter string, delta int64) error
}

type limitsService struct {
	subscriptionRepo repositories.SubscriptionRepository
	statsRepo        repositories.UsageStatsRepository
	cacheSvc         caching.CacheService
}

func NewLimitsService(subscriptionRepo repositories.SubscriptionRepository, statsRepo repositories.UsageStatsRepository, cacheSvc caching.CacheService) LimitsService {
	return &limitsService{
		subscriptionRepo: subscriptionRepo,
		statsRepo:        statsRepo,
		cacheSvc:         cacheSvc,
	}
}

func (s *limitsService) CheckResource(ctx context.Context, tenantID uuid.UUID, resource string) (*UsageInfo, error) {
	sub, err := s.subscriptionRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	plan, err := PlanByKey(sub.PlanKey)
	if err != nil {
		return nil, err
	}

	stats, err := s.loadStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	current, limit, err := resolveResource(resource, stats, plan.Limits)
	if err != nil {
		return nil, err
	}

	return &UsageInfo{
		Resource: resource,
		Current:  current,
		Limit:    limit,
		Allowed:  WithinLimit(current, limit),
	}, nil
}

func (s *limitsService) RecordUsage(ctx context.Context, tenantID uuid.UUID, counter string, delta int64) error {
	if err := s.statsRepo.Increment(ctx, tenantID, counter, delta); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.DeleteUsageStats(ctx, tenantID)
	}
	return nil
}

func (s *limitsService) loadStats(ctx context.Context, tenantID uuid.UUID) (*models.TenantUsageStats, error) {
	if s.cacheSvc != nil {
		if stats, err := s.cacheSvc.GetUsageStats(ctx, tenantID); err == nil {
			return stats, nil
		}
	}
	stats, err := s.statsRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage stats: %w", err)
	}
	if s.cacheSvc != nil {
		_ = s.cacheSvc.SetUsageStats(ctx, stats, usageCacheTTL)
	}
	return stats, nil
}

func resolveResource(resource string, stats *models.TenantUsageStats, limits PlanLimits) (current, limit int64, err error) {
	switch resource {
	case ResourcePets:
		return stats.TotalPets, limits.MaxPets, nil
	case ResourceUsers:
		return stats.TotalUsers, limits.MaxUsers, nil
	case ResourceCashRegisters:
		return stats.TotalCashRegisters, limits.MaxCashRegisters, nil
	case ResourceWhatsApp:
		return stats.WhatsAppMessagesSent, limits.MaxWhatsAppMessages, nil
	case ResourceStorage:
		// Storage limit is in GB, usage tracked in MB
		if limits.MaxStorageGB == Unlimited {
			return stats.StorageUsedMB, Unlimited, nil
		}
		return stats.StorageUsedMB, limits.MaxStorageGB * 1024, nil
	default:
		return 0, 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
