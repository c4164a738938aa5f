package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"vetly/internal/models"
	"vetly/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const receiptURLExpiry = 7 * 24 * time.Hour

// CashDrawerService manages point-of-sale shifts: opening with a counted
// float, registering sales and withdrawals, and closing with a
// reconciliation of expected versus counted cash.
type CashDrawerService interface {
	OpenShift(ctx context.Context, tenantID, userID uuid.UUID, openingBalance float64) (*models.CashShift, error)
	RegisterSale(ctx context.Context, tenantID, userID uuid.UUID, req *RegisterSaleRequest) (*models.Sale, error)
	RegisterWithdrawal(ctx context.Context, tenantID, userID uuid.UUID, amount float64) error
	CloseShift(ctx context.Context, tenantID, userID uuid.UUID, countedBalance float64) (*models.CashShift, error)
	GetShift(ctx context.Context, tenantID, id uuid.UUID) (*models.CashShift, error)
	ListShifts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CashShift, error)
}

type RegisterSaleRequest struct {
	Description   string  `json:"description" validate:"required"`
	Amount        float64 `json:"amount" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
}

type cashDrawerService struct {
	shiftRepo  repositories.CashShiftRepository
	saleRepo   repositories.SaleRepository
	limitsSvc  LimitsService
	storageSvc StorageService
}

func NewCashDrawerService(shiftRepo repositories.CashShiftRepository, saleRepo repositories.SaleRepository, limitsSvc LimitsService, storageSvc StorageService) CashDrawerService {
	return &cashDrawerService{
		shiftRepo:  shiftRepo,
		saleRepo:   saleRepo,
		limitsSvc:  limitsSvc,
		storageSvc: storageSvc,
	}
}

func (s *cashDrawerService) OpenShift(ctx context.Context, tenantID, userID uuid.UUID, openingBalance float64) (*models.CashShift, error) {
	if openingBalance < 0 {
		return nil, errors.New("opening balance cannot be negative")
	}

	if _, err := s.shiftRepo.GetOpenByUser(ctx, tenantID, userID); err == nil {
		return nil, ErrShiftAlreadyOpen
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check open shifts: %w", err)
	}

	// One open shift per register; plan caps concurrent registers.
	usage, err := s.limitsSvc.CheckResource(ctx, tenantID, ResourceCashRegisters)
	if err != nil {
		return nil, err
	}
	open, err := s.shiftRepo.CountOpen(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count open shifts: %w", err)
	}
	if !WithinLimit(open, usage.Limit) {
		return nil, fmt.Errorf("%w: %d of %d cash registers in use", ErrLimitExceeded, open, usage.Limit)
	}

	shift := &models.CashShift{
		ID:             uuid.New(),
		TenantID:       tenantID,
		OpenedBy:       userID,
		OpeningBalance: openingBalance,
		Status:         models.CashShiftStatusOpen,
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}
	return shift, nil
}

func (s *cashDrawerService) RegisterSale(ctx context.Context, tenantID, userID uuid.UUID, req *RegisterSaleRequest) (*models.Sale, error) {
	if req.Amount <= 0 {
		return nil, errors.New("sale amount must be positive")
	}
	if req.PaymentMethod != models.PaymentMethodCash && req.PaymentMethod != models.PaymentMethodCard {
		return nil, errors.New("payment method must be cash or card")
	}

	shift, err := s.shiftRepo.GetOpenByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotOpen
		}
		return nil, err
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CashShiftID:   shift.ID,
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to register sale: %w", err)
	}

	cashDelta, cardDelta := 0.0, 0.0
	if req.PaymentMethod == models.PaymentMethodCash {
		cashDelta = req.Amount
	} else {
		cardDelta = req.Amount
	}
	if err := s.shiftRepo.AddSaleTotals(ctx, shift.ID, cashDelta, cardDelta); err != nil {
		return nil, fmt.Errorf("failed to update shift totals: %w", err)
	}

	return sale, nil
}

func (s *cashDrawerService) RegisterWithdrawal(ctx context.Context, tenantID, userID uuid.UUID, amount float64) error {
	if amount <= 0 {
		return errors.New("withdrawal amount must be positive")
	}
	shift, err := s.shiftRepo.GetOpenByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrShiftNotOpen
		}
		return err
	}
	return s.shiftRepo.AddWithdrawal(ctx, shift.ID, amount)
}

func (s *cashDrawerService) CloseShift(ctx context.Context, tenantID, userID uuid.UUID, countedBalance float64) (*models.CashShift, error) {
	if countedBalance < 0 {
		return nil, errors.New("counted balance cannot be negative")
	}

	shift, err := s.shiftRepo.GetOpenByUser(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotOpen
		}
		return nil, err
	}

	expected, difference, label := Reconcile(shift.OpeningBalance, shift.CashSales, shift.Withdrawals, countedBalance)

	now := time.Now().UTC()
	shift.ExpectedBalance = &expected
	shift.CountedBalance = &countedBalance
	shift.Difference = &difference
	shift.Reconciliation = &label
	shift.Status = models.CashShiftStatusClosed
	shift.ClosedAt = &now

	if s.storageSvc != nil {
		if url, err := s.uploadReceipt(ctx, shift); err == nil {
			shift.ReceiptURL = &url
		}
		// A failed receipt upload does not block closing the shift.
	}

	if err := s.shiftRepo.Close(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to close shift: %w", err)
	}
	return shift, nil
}

// Reconcile computes the closing arithmetic for a shift. Card sales never
// touch the drawer, so they are excluded from the expected cash balance.
func Reconcile(openingBalance, cashSales, withdrawals, countedBalance float64) (expected, difference float64, label string) {
	expected = math.Round((openingBalance+cashSales-withdrawals)*100) / 100
	difference = math.Round((countedBalance-expected)*100) / 100
	switch {
	case difference == 0:
		label = models.CashShiftBalanced
	case difference > 0:
		label = models.CashShiftOver
	default:
		label = models.CashShiftShort
	}
	return expected, difference, label
}

func (s *cashDrawerService) uploadReceipt(ctx context.Context, shift *models.CashShift) (string, error) {
	pdf, err := renderShiftReceipt(shift)
	if err != nil {
		return "", err
	}
	objectName := fmt.Sprintf("%s/%s.pdf", shift.TenantID, shift.ID)
	if err := s.storageSvc.Upload(ctx, BucketReceipts, objectName, "application/pdf", bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		return "", err
	}
	return s.storageSvc.GetPresignedURL(BucketReceipts, objectName, receiptURLExpiry)
}

func (s *cashDrawerService) GetShift(ctx context.Context, tenantID, id uuid.UUID) (*models.CashShift, error) {
	return s.shiftRepo.GetByID(ctx, tenantID, id)
}

func (s *cashDrawerService) ListShifts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CashShift, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.shiftRepo.List(ctx, tenantID, limit, offset)
}
