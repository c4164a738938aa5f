package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
)

const attachmentURLExpiry = 24 * time.Hour

type MedicalRecordService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreateMedicalRecordRequest) (*models.MedicalRecord, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MedicalRecord, error)
	ListByPet(ctx context.Context, tenantID, petID uuid.UUID, limit, offset int) ([]*models.MedicalRecord, error)
	AttachDocument(ctx context.Context, tenantID, recordID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
}

type CreateMedicalRecordRequest struct {
	PetID          uuid.UUID  `json:"pet_id" validate:"required"`
	VeterinarianID uuid.UUID  `json:"veterinarian_id" validate:"required"`
	Diagnosis      string     `json:"diagnosis" validate:"required"`
	Treatment      *string    `json:"treatment"`
	WeightKg       *float64   `json:"weight_kg"`
	Vaccinations   *string    `json:"vaccinations"`
	VisitedAt      *time.Time `json:"visited_at"`
}

type medicalRecordService struct {
	recordRepo repositories.MedicalRecordRepository
	petRepo    repositories.PetRepository
	storageSvc StorageService
	limitsSvc  LimitsService
}

func NewMedicalRecordService(recordRepo repositories.MedicalRecordRepository, petRepo repositories.PetRepository, storageSvc StorageService, limitsSvc LimitsService) MedicalRecordService {
	return &medicalRecordService{
		recordRepo: recordRepo,
		petRepo:    petRepo,
		storageSvc: storageSvc,
		limitsSvc:  limitsSvc,
	}
}

func (s *medicalRecordService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateMedicalRecordRequest) (*models.MedicalRecord, error) {
	if req.Diagnosis == "" {
		return nil, errors.New("diagnosis is required")
	}
	if req.WeightKg != nil && *req.WeightKg <= 0 {
		return nil, errors.New("weight must be positive")
	}

	if _, err := s.petRepo.GetByID(ctx, tenantID, req.PetID); err != nil {
		return nil, fmt.Errorf("pet not found: %w", err)
	}

	visitedAt := time.Now().UTC()
	if req.VisitedAt != nil {
		visitedAt = *req.VisitedAt
	}

	record := &models.MedicalRecord{
		ID:             uuid.New(),
		TenantID:       tenantID,
		PetID:          req.PetID,
		VeterinarianID: req.VeterinarianID,
		Diagnosis:      req.Diagnosis,
		Treatment:      req.Treatment,
		WeightKg:       req.WeightKg,
		Vaccinations:   req.Vaccinations,
		VisitedAt:      visitedAt,
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	return record, nil
}

func (s *medicalRecordService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MedicalRecord, error) {
	return s.recordRepo.GetByID(ctx, tenantID, id)
}

func (s *medicalRecordService) ListByPet(ctx context.Context, tenantID, petID uuid.UUID, limit, offset int) ([]*models.MedicalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.recordRepo.ListByPet(ctx, tenantID, petID, limit, offset)
}

// AttachDocument uploads a file for a record and stores a presigned URL.
// Upload size counts against the plan's storage limit.
func (s *medicalRecordService) AttachDocument(ctx context.Context, tenantID, recordID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if _, err := s.recordRepo.GetByID(ctx, tenantID, recordID); err != nil {
		return "", fmt.Errorf("medical record not found: %w", err)
	}

	usage, err := s.limitsSvc.CheckResource(ctx, tenantID, ResourceStorage)
	if err != nil {
		return "", err
	}
	if !usage.Allowed {
		return "", fmt.Errorf("%w: storage quota reached", ErrLimitExceeded)
	}

	objectName := fmt.Sprintf("%s/%s/%s", tenantID, recordID, filename)
	if err := s.storageSvc.Upload(ctx, BucketAttachments, objectName, contentType, reader, size); err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	url, err := s.storageSvc.GetPresignedURL(BucketAttachments, objectName, attachmentURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}

	if err := s.recordRepo.SetAttachment(ctx, tenantID, recordID, url); err != nil {
		return "", fmt.Errorf("failed to save attachment url: %w", err)
	}

	sizeMB := size / (1024 * 1024)
	if sizeMB > 0 {
		_ = s.limitsSvc.RecordUsage(ctx, tenantID, "storage_used_mb", sizeMB)
	}

	return url, nil
}
