package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetly/internal/caching"
	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID) (*models.TokenResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
}

type authService struct {
	jwtSecret []byte
	cacheSvc  caching.CacheService
	userRepo  repositories.UserRepository
}

func NewAuthService(jwtSecret string, cacheSvc caching.CacheService, userRepo repositories.UserRepository) AuthService {
	return &authService{jwtSecret: []byte(jwtSecret), cacheSvc: cacheSvc, userRepo: userRepo}
}

func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID, tenantID *uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	}
	if tenantID != nil {
		claims["tid"] = tenantID.String()
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	if err := s.cacheSvc.SetSession(ctx, refreshToken, userID.String(), refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	userIDStr, err := s.cacheSvc.GetSession(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid or expired refresh token")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("corrupt refresh session")
	}

	// One-shot refresh tokens: the old one is revoked before reissuing.
	_ = s.cacheSvc.DeleteSession(ctx, refreshToken)

	// Re-read the user so a clinic created since login lands in the new token.
	var tenantID *uuid.UUID
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		tenantID = user.TenantID
	}

	return s.GenerateTokens(ctx, userID, tenantID)
}
