package services

import (
	"context"

	"vetly/internal/repositories"

	"github.com/google/uuid"
)

// RBACService answers role-membership questions for route guards.
type RBACService interface {
	UserHasRole(ctx context.Context, userID, tenantID uuid.UUID, roleKey string) (bool, error)
	UserRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

type rbacService struct {
	userRoleRepo repositories.UserRoleRepository
}

func NewRBACService(userRoleRepo repositories.UserRoleRepository) RBACService {
	return &rbacService{userRoleRepo: userRoleRepo}
}

func (s *rbacService) UserHasRole(ctx context.Context, userID, tenantID uuid.UUID, roleKey string) (bool, error) {
	keys, err := s.userRoleRepo.GetRoleKeys(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if key == roleKey {
			return true, nil
		}
	}
	return false, nil
}

func (s *rbacService) UserRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	return s.userRoleRepo.GetRoleKeys(ctx, userID, tenantID)
}
