package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"vetly/internal/repositories"
	"vetly/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "reminder:appointment"

type AppointmentReminderPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	PetName       string    `json:"pet_name"`
	OwnerPhone    string    `json:"owner_phone"`
	StartsAt      string    `json:"starts_at"`
}

func NewAppointmentReminderTask(payload *AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	return asynq.NewTask(TypeAppointmentReminder, data, asynq.MaxRetry(3), asynq.Queue("reminders")), nil
}

// ReminderProcessor consumes reminder tasks. Sends are gated by the
// tenant's WhatsApp message limit and recorded against usage.
type ReminderProcessor struct {
	appointmentRepo repositories.AppointmentRepository
	limitsSvc       services.LimitsService
}

func NewReminderProcessor(appointmentRepo repositories.AppointmentRepository, limitsSvc services.LimitsService) *ReminderProcessor {
	return &ReminderProcessor{appointmentRepo: appointmentRepo, limitsSvc: limitsSvc}
}

func (p *ReminderProcessor) HandleAppointmentReminder(ctx context.Context, t *asynq.Task) error {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	usage, err := p.limitsSvc.CheckResource(ctx, payload.TenantID, services.ResourceWhatsApp)
	if err != nil {
		return err
	}
	if !usage.Allowed {
		// Quota exhausted for the month; drop rather than retry.
		log.Printf("skipping reminder for appointment %s: whatsapp quota reached (%d/%d)",
			payload.AppointmentID, usage.Current, usage.Limit)
		return nil
	}

	if err := sendWhatsAppReminder(ctx, &payload); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	if err := p.limitsSvc.RecordUsage(ctx, payload.TenantID, "whatsapp_messages_sent", 1); err != nil {
		log.Printf("failed to record whatsapp usage for tenant %s: %v", payload.TenantID, err)
	}
	return p.appointmentRepo.MarkReminderSent(ctx, payload.AppointmentID)
}

// TODO: wire the WhatsApp Business API client once the account is approved.
func sendWhatsAppReminder(_ context.Context, payload *AppointmentReminderPayload) error {
	log.Printf("reminder: %s has an appointment at %s (notify %s)",
		payload.PetName, payload.StartsAt, payload.OwnerPhone)
	return nil
}

// NewReminderMux registers all asynq handlers.
func NewReminderMux(processor *ReminderProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentReminder, processor.HandleAppointmentReminder)
	return mux
}
