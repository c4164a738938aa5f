package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
)

type PetService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreatePetRequest) (*models.Pet, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Pet, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdatePetRequest) (*models.Pet, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Pet, error)
	Search(ctx context.Context, tenantID uuid.UUID, term string) ([]*models.Pet, error)
}

type CreatePetRequest struct {
	Name       string     `json:"name" validate:"required"`
	Species    string     `json:"species" validate:"required"`
	Breed      *string    `json:"breed"`
	OwnerName  string     `json:"owner_name" validate:"required"`
	OwnerPhone *string    `json:"owner_phone"`
	BirthDate  *time.Time `json:"birth_date"`
}

type UpdatePetRequest struct {
	Name       string     `json:"name" validate:"required"`
	Species    string     `json:"species" validate:"required"`
	Breed      *string    `json:"breed"`
	OwnerName  string     `json:"owner_name" validate:"required"`
	OwnerPhone *string    `json:"owner_phone"`
	BirthDate  *time.Time `json:"birth_date"`
	Status     string     `json:"status"`
}

type petService struct {
	petRepo   repositories.PetRepository
	limitsSvc LimitsService
}

func NewPetService(petRepo repositories.PetRepository, limitsSvc LimitsService) PetService {
	return &petService{petRepo: petRepo, limitsSvc: limitsSvc}
}

func (s *petService) Create(ctx context.Context, tenantID uuid.UUID, req *CreatePetRequest) (*models.Pet, error) {
	if req.Name == "" || req.Species == "" || req.OwnerName == "" {
		return nil, errors.New("name, species and owner name are required")
	}

	usage, err := s.limitsSvc.CheckResource(ctx, tenantID, ResourcePets)
	if err != nil {
		return nil, err
	}
	if !usage.Allowed {
		return nil, fmt.Errorf("%w: %d of %d pets used", ErrLimitExceeded, usage.Current, usage.Limit)
	}

	pet := &models.Pet{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       req.Name,
		Species:    req.Species,
		Breed:      req.Breed,
		OwnerName:  req.OwnerName,
		OwnerPhone: req.OwnerPhone,
		BirthDate:  req.BirthDate,
		Status:     "active",
	}
	if err := s.petRepo.Create(ctx, pet); err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	if err := s.limitsSvc.RecordUsage(ctx, tenantID, "total_pets", 1); err != nil {
		return nil, fmt.Errorf("failed to record pet usage: %w", err)
	}

	return pet, nil
}

func (s *petService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Pet, error) {
	return s.petRepo.GetByID(ctx, tenantID, id)
}

func (s *petService) Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdatePetRequest) (*models.Pet, error) {
	pet, err := s.petRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	pet.Name = req.Name
	pet.Species = req.Species
	pet.Breed = req.Breed
	pet.OwnerName = req.OwnerName
	pet.OwnerPhone = req.OwnerPhone
	pet.BirthDate = req.BirthDate
	if req.Status != "" {
		pet.Status = req.Status
	}

	if err := s.petRepo.Update(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func (s *petService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Pet, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.petRepo.List(ctx, tenantID, limit, offset)
}

func (s *petService) Search(ctx context.Context, tenantID uuid.UUID, term string) ([]*models.Pet, error) {
	if term == "" {
		return nil, errors.New("search term is required")
	}
	return s.petRepo.Search(ctx, tenantID, term, 20)
}
