package repositories

import (
	"context"
	"time"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	CountOverlapping(ctx context.Context, tenantID, vetID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) (int64, error)
	ListByDay(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Appointment, error)
	ListDueReminders(ctx context.Context, window time.Duration) ([]*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type appointmentRepo struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) AppointmentRepository {
	return &appointmentRepo{db: db}
}

const appointmentColumns = `id, tenant_id, pet_id, veterinarian_id, starts_at, ends_at, reason, status, reminder_sent, created_at, updated_at`

func (r *appointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	query := `
		INSERT INTO appointments (id, tenant_id, pet_id, veterinarian_id, starts_at, ends_at, reason, status, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, appt.ID, appt.TenantID, appt.PetID, appt.VeterinarianID, appt.StartsAt, appt.EndsAt, appt.Reason, appt.Status, appt.ReminderSent)
	return err
}

func (r *appointmentRepo) scan(row interface{ Scan(dest ...any) error }) (*models.Appointment, error) {
	appt := &models.Appointment{}
	err := row.Scan(&appt.ID, &appt.TenantID, &appt.PetID, &appt.VeterinarianID, &appt.StartsAt, &appt.EndsAt, &appt.Reason, &appt.Status, &appt.ReminderSent, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE tenant_id = $1 AND id = $2`
	return r.scan(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *appointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	query := `
		UPDATE appointments
		SET starts_at = $1, ends_at = $2, reason = $3, status = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, appt.StartsAt, appt.EndsAt, appt.Reason, appt.Status, appt.TenantID, appt.ID)
	return err
}

// CountOverlapping counts non-cancelled appointments for the same
// veterinarian whose time range intersects [startsAt, endsAt). excludeID
// keeps a rescheduled appointment from colliding with itself; pass
// uuid.Nil when not rescheduling.
func (r *appointmentRepo) CountOverlapping(ctx context.Context, tenantID, vetID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE tenant_id = $1 AND veterinarian_id = $2
		  AND status != $3
		  AND id != $4
		  AND starts_at < $5 AND ends_at > $6
	`
	err := r.db.QueryRow(ctx, query, tenantID, vetID, models.AppointmentStatusCancelled, excludeID, endsAt, startsAt).Scan(&count)
	return count, err
}

func (r *appointmentRepo) ListByDay(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE tenant_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*models.Appointment
	for rows.Next() {
		appt, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepo) ListDueReminders(ctx context.Context, window time.Duration) ([]*models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE reminder_sent = FALSE
		  AND status IN ($1, $2)
		  AND starts_at BETWEEN NOW() AND NOW() + $3::interval
	`
	rows, err := r.db.Query(ctx, query, models.AppointmentStatusScheduled, models.AppointmentStatusConfirmed, window.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*models.Appointment
	for rows.Next() {
		appt, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepo) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE appointments SET reminder_sent = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
