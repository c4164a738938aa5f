package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type MedicalRecordRepository interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MedicalRecord, error)
	SetAttachment(ctx context.Context, tenantID, id uuid.UUID, url string) error
	ListByPet(ctx context.Context, tenantID, petID uuid.UUID, limit, offset int) ([]*models.MedicalRecord, error)
}

type medicalRecordRepo struct {
	db DBTX
}

func NewMedicalRecordRepository(db DBTX) MedicalRecordRepository {
	return &medicalRecordRepo{db: db}
}

const medicalRecordColumns = `id, tenant_id, pet_id, veterinarian_id, diagnosis, treatment, weight_kg, vaccinations, attachment_url, visited_at, created_at, updated_at`

func (r *medicalRecordRepo) Create(ctx context.Context, record *models.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, tenant_id, pet_id, veterinarian_id, diagnosis, treatment, weight_kg, vaccinations, attachment_url, visited_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, record.ID, record.TenantID, record.PetID, record.VeterinarianID, record.Diagnosis, record.Treatment, record.WeightKg, record.Vaccinations, record.AttachmentURL, record.VisitedAt)
	return err
}

func (r *medicalRecordRepo) scan(row interface{ Scan(dest ...any) error }) (*models.MedicalRecord, error) {
	record := &models.MedicalRecord{}
	err := row.Scan(&record.ID, &record.TenantID, &record.PetID, &record.VeterinarianID, &record.Diagnosis, &record.Treatment, &record.WeightKg, &record.Vaccinations, &record.AttachmentURL, &record.VisitedAt, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *medicalRecordRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MedicalRecord, error) {
	query := `SELECT ` + medicalRecordColumns + ` FROM medical_records WHERE tenant_id = $1 AND id = $2`
	return r.scan(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *medicalRecordRepo) SetAttachment(ctx context.Context, tenantID, id uuid.UUID, url string) error {
	query := `UPDATE medical_records SET attachment_url = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, url, tenantID, id)
	return err
}

func (r *medicalRecordRepo) ListByPet(ctx context.Context, tenantID, petID uuid.UUID, limit, offset int) ([]*models.MedicalRecord, error) {
	query := `
		SELECT ` + medicalRecordColumns + `
		FROM medical_records
		WHERE tenant_id = $1 AND pet_id = $2
		ORDER BY visited_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, petID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.MedicalRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
