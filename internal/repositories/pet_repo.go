package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Pet, error)
	Update(ctx context.Context, pet *models.Pet) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Pet, error)
	Search(ctx context.Context, tenantID uuid.UUID, term string, limit int) ([]*models.Pet, error)
}

type petRepo struct {
	db DBTX
}

func NewPetRepository(db DBTX) PetRepository {
	return &petRepo{db: db}
}

const petColumns = `id, tenant_id, name, species, breed, owner_name, owner_phone, birth_date, status, created_at, updated_at`

func (r *petRepo) Create(ctx context.Context, pet *models.Pet) error {
	query := `
		INSERT INTO pets (id, tenant_id, name, species, breed, owner_name, owner_phone, birth_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, pet.ID, pet.TenantID, pet.Name, pet.Species, pet.Breed, pet.OwnerName, pet.OwnerPhone, pet.BirthDate, pet.Status)
	return err
}

func (r *petRepo) scan(row interface{ Scan(dest ...any) error }) (*models.Pet, error) {
	pet := &models.Pet{}
	err := row.Scan(&pet.ID, &pet.TenantID, &pet.Name, &pet.Species, &pet.Breed, &pet.OwnerName, &pet.OwnerPhone, &pet.BirthDate, &pet.Status, &pet.CreatedAt, &pet.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return pet, nil
}

func (r *petRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE tenant_id = $1 AND id = $2`
	return r.scan(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *petRepo) Update(ctx context.Context, pet *models.Pet) error {
	query := `
		UPDATE pets
		SET name = $1, species = $2, breed = $3, owner_name = $4, owner_phone = $5, birth_date = $6, status = $7, updated_at = NOW()
		WHERE tenant_id = $8 AND id = $9
	`
	_, err := r.db.Exec(ctx, query, pet.Name, pet.Species, pet.Breed, pet.OwnerName, pet.OwnerPhone, pet.BirthDate, pet.Status, pet.TenantID, pet.ID)
	return err
}

func (r *petRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Pet, error) {
	query := `
		SELECT ` + petColumns + `
		FROM pets
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pets []*models.Pet
	for rows.Next() {
		pet, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, pet)
	}
	return pets, rows.Err()
}

func (r *petRepo) Search(ctx context.Context, tenantID uuid.UUID, term string, limit int) ([]*models.Pet, error) {
	query := `
		SELECT ` + petColumns + `
		FROM pets
		WHERE tenant_id = $1 AND (name ILIKE '%' || $2 || '%' OR owner_name ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pets []*models.Pet
	for rows.Next() {
		pet, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, pet)
	}
	return pets, rows.Err()
}
