package background

import (
	"context"
	"log"
	"time"

	"vetly/internal/jobs"
	"vetly/internal/models"
	"vetly/internal/repositories"
	"vetly/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
)

// JobScheduler runs the periodic sweeps: expiring overdue trials and
// enqueueing appointment reminders onto the asynq queue.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	billingSvc      services.BillingService
	appointmentRepo repositories.AppointmentRepository
	petRepo         repositories.PetRepository
	asynqClient     *asynq.Client
	lookahead       time.Duration
}

func NewJobScheduler(billingSvc services.BillingService, appointmentRepo repositories.AppointmentRepository, petRepo repositories.PetRepository, asynqClient *asynq.Client, lookahead time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		billingSvc:      billingSvc,
		appointmentRepo: appointmentRepo,
		petRepo:         petRepo,
		asynqClient:     asynqClient,
		lookahead:       lookahead,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(js.sweepExpiredTrials, context.Background()),
		gocron.WithName("trial-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.enqueueDueReminders, context.Background()),
		gocron.WithName("appointment-reminder-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) sweepExpiredTrials(ctx context.Context) {
	expired, err := js.billingSvc.ExpireOverdueTrials(ctx)
	if err != nil {
		log.Printf("trial expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("trial expiry sweep: expired %d tenants", expired)
	}
}

func (js *JobScheduler) enqueueDueReminders(ctx context.Context) {
	appts, err := js.appointmentRepo.ListDueReminders(ctx, js.lookahead)
	if err != nil {
		log.Printf("reminder sweep failed: %v", err)
		return
	}

	for _, appt := range appts {
		payload := &jobs.AppointmentReminderPayload{
			AppointmentID: appt.ID,
			TenantID:      appt.TenantID,
			StartsAt:      appt.StartsAt.Format(time.RFC3339),
		}
		if pet, err := js.petRepo.GetByID(ctx, appt.TenantID, appt.PetID); err == nil {
			payload.PetName = pet.Name
			if pet.OwnerPhone != nil {
				payload.OwnerPhone = *pet.OwnerPhone
			}
		}
		js.enqueueReminder(appt, payload)
	}
}

func (js *JobScheduler) enqueueReminder(appt *models.Appointment, payload *jobs.AppointmentReminderPayload) {
	task, err := jobs.NewAppointmentReminderTask(payload)
	if err != nil {
		log.Printf("failed to build reminder task for appointment %s: %v", appt.ID, err)
		return
	}
	if _, err := js.asynqClient.Enqueue(task); err != nil {
		log.Printf("failed to enqueue reminder for appointment %s: %v", appt.ID, err)
	}
}
