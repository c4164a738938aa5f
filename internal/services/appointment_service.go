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

type AppointmentService interface {
	Schedule(ctx context.Context, tenantID uuid.UUID, req *ScheduleAppointmentRequest) (*models.Appointment, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Appointment, error)
	Reschedule(ctx context.Context, tenantID, id uuid.UUID, startsAt, endsAt time.Time) (*models.Appointment, error)
	ListByDay(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Appointment, error)
}

type ScheduleAppointmentRequest struct {
	PetID          uuid.UUID `json:"pet_id" validate:"required"`
	VeterinarianID uuid.UUID `json:"veterinarian_id" validate:"required"`
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	EndsAt         time.Time `json:"ends_at" validate:"required"`
	Reason         string    `json:"reason"`
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	petRepo         repositories.PetRepository
}

func NewAppointmentService(appointmentRepo repositories.AppointmentRepository, petRepo repositories.PetRepository) AppointmentService {
	return &appointmentService{appointmentRepo: appointmentRepo, petRepo: petRepo}
}

func (s *appointmentService) Schedule(ctx context.Context, tenantID uuid.UUID, req *ScheduleAppointmentRequest) (*models.Appointment, error) {
	if req.PetID == uuid.Nil || req.VeterinarianID == uuid.Nil {
		return nil, errors.New("pet and veterinarian are required")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, errors.New("appointment end must be after start")
	}
	if req.StartsAt.Before(time.Now()) {
		return nil, errors.New("appointment cannot start in the past")
	}

	// The pet must belong to this tenant.
	if _, err := s.petRepo.GetByID(ctx, tenantID, req.PetID); err != nil {
		return nil, fmt.Errorf("pet not found: %w", err)
	}

	overlapping, err := s.appointmentRepo.CountOverlapping(ctx, tenantID, req.VeterinarianID, req.StartsAt, req.EndsAt, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrAppointmentOverlap
	}

	appt := &models.Appointment{
		ID:             uuid.New(),
		TenantID:       tenantID,
		PetID:          req.PetID,
		VeterinarianID: req.VeterinarianID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Reason:         req.Reason,
		Status:         models.AppointmentStatusScheduled,
	}
	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	return s.appointmentRepo.GetByID(ctx, tenantID, id)
}

var validStatusTransitions = map[string][]string{
	models.AppointmentStatusScheduled: {models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled},
	models.AppointmentStatusConfirmed: {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled},
}

func (s *appointmentService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[appt.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", appt.Status, status)
	}

	appt.Status = status
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, tenantID, id uuid.UUID, startsAt, endsAt time.Time) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.AppointmentStatusCompleted || appt.Status == models.AppointmentStatusCancelled {
		return nil, fmt.Errorf("cannot reschedule a %s appointment", appt.Status)
	}
	if !endsAt.After(startsAt) {
		return nil, errors.New("appointment end must be after start")
	}

	overlapping, err := s.appointmentRepo.CountOverlapping(ctx, tenantID, appt.VeterinarianID, startsAt, endsAt, appt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrAppointmentOverlap
	}

	appt.StartsAt = startsAt
	appt.EndsAt = endsAt
	if err := s.appointmentRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) ListByDay(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Appointment, error) {
	return s.appointmentRepo.ListByDay(ctx, tenantID, day)
}
