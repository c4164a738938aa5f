package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	ListByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]*models.Sale, error)
}

type saleRepo struct {
	db DBTX
}

func NewSaleRepository(db DBTX) SaleRepository {
	return &saleRepo{db: db}
}

func (r *saleRepo) Create(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (id, tenant_id, cash_shift_id, description, amount, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, sale.ID, sale.TenantID, sale.CashShiftID, sale.Description, sale.Amount, sale.PaymentMethod)
	return err
}

func (r *saleRepo) ListByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]*models.Sale, error) {
	query := `
		SELECT id, tenant_id, cash_shift_id, description, amount, payment_method, created_at
		FROM sales
		WHERE tenant_id = $1 AND cash_shift_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		sale := &models.Sale{}
		if err := rows.Scan(&sale.ID, &sale.TenantID, &sale.CashShiftID, &sale.Description, &sale.Amount, &sale.PaymentMethod, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
