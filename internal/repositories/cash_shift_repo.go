package repositories

import (
	"context"

	"vetly/internal/models"

	"github.com/google/uuid"
)

type CashShiftRepository interface {
	Create(ctx context.Context, shift *models.CashShift) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CashShift, error)
	GetOpenByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.CashShift, error)
	CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error)
	AddSaleTotals(ctx context.Context, shiftID uuid.UUID, cashDelta, cardDelta float64) error
	AddWithdrawal(ctx context.Context, shiftID uuid.UUID, amount float64) error
	Close(ctx context.Context, shift *models.CashShift) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CashShift, error)
}

type cashShiftRepo struct {
	db DBTX
}

func NewCashShiftRepository(db DBTX) CashShiftRepository {
	return &cashShiftRepo{db: db}
}

const cashShiftColumns = `id, tenant_id, opened_by, opening_balance, cash_sales, card_sales, withdrawals, expected_balance, counted_balance, difference, reconciliation, status, receipt_url, opened_at, closed_at`

func (r *cashShiftRepo) Create(ctx context.Context, shift *models.CashShift) error {
	query := `
		INSERT INTO cash_shifts (id, tenant_id, opened_by, opening_balance, cash_sales, card_sales, withdrawals, status, opened_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, shift.ID, shift.TenantID, shift.OpenedBy, shift.OpeningBalance, shift.Status)
	return err
}

func (r *cashShiftRepo) scan(row interface{ Scan(dest ...any) error }) (*models.CashShift, error) {
	shift := &models.CashShift{}
	err := row.Scan(&shift.ID, &shift.TenantID, &shift.OpenedBy, &shift.OpeningBalance, &shift.CashSales, &shift.CardSales, &shift.Withdrawals, &shift.ExpectedBalance, &shift.CountedBalance, &shift.Difference, &shift.Reconciliation, &shift.Status, &shift.ReceiptURL, &shift.OpenedAt, &shift.ClosedAt)
	if err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *cashShiftRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CashShift, error) {
	query := `SELECT ` + cashShiftColumns + ` FROM cash_shifts WHERE tenant_id = $1 AND id = $2`
	return r.scan(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *cashShiftRepo) GetOpenByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.CashShift, error) {
	query := `
		SELECT ` + cashShiftColumns + `
		FROM cash_shifts
		WHERE tenant_id = $1 AND opened_by = $2 AND status = $3
	`
	return r.scan(r.db.QueryRow(ctx, query, tenantID, userID, models.CashShiftStatusOpen))
}

func (r *cashShiftRepo) CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM cash_shifts WHERE tenant_id = $1 AND status = $2`
	err := r.db.QueryRow(ctx, query, tenantID, models.CashShiftStatusOpen).Scan(&count)
	return count, err
}

func (r *cashShiftRepo) AddSaleTotals(ctx context.Context, shiftID uuid.UUID, cashDelta, cardDelta float64) error {
	query := `UPDATE cash_shifts SET cash_sales = cash_sales + $1, card_sales = card_sales + $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, cashDelta, cardDelta, shiftID)
	return err
}

func (r *cashShiftRepo) AddWithdrawal(ctx context.Context, shiftID uuid.UUID, amount float64) error {
	query := `UPDATE cash_shifts SET withdrawals = withdrawals + $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, amount, shiftID)
	return err
}

func (r *cashShiftRepo) Close(ctx context.Context, shift *models.CashShift) error {
	query := `
		UPDATE cash_shifts
		SET expected_balance = $1, counted_balance = $2, difference = $3, reconciliation = $4, status = $5, receipt_url = $6, closed_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	_, err := r.db.Exec(ctx, query, shift.ExpectedBalance, shift.CountedBalance, shift.Difference, shift.Reconciliation, shift.Status, shift.ReceiptURL, shift.TenantID, shift.ID)
	return err
}

func (r *cashShiftRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CashShift, error) {
	query := `
		SELECT ` + cashShiftColumns + `
		FROM cash_shifts
		WHERE tenant_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []*models.CashShift
	for rows.Next() {
		shift, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}
