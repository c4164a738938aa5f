package services

import (
	"context"
	"testing"

	"vetly/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockCashShiftRepository struct {
	mock.Mock
}

func (m *MockCashShiftRepository) Create(ctx context.Context, shift *models.CashShift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

func (m *MockCashShiftRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CashShift, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CashShift), args.Error(1)
}

func (m *MockCashShiftRepository) GetOpenByUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.CashShift, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CashShift), args.Error(1)
}

func (m *MockCashShiftRepository) CountOpen(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCashShiftRepository) AddSaleTotals(ctx context.Context, shiftID uuid.UUID, cashDelta, cardDelta float64) error {
	args := m.Called(ctx, shiftID, cashDelta, cardDelta)
	return args.Error(0)
}

func (m *MockCashShiftRepository) AddWithdrawal(ctx context.Context, shiftID uuid.UUID, amount float64) error {
	args := m.Called(ctx, shiftID, amount)
	return args.Error(0)
}

func (m *MockCashShiftRepository) Close(ctx context.Context, shift *models.CashShift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

func (m *MockCashShiftRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.CashShift, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.CashShift), args.Error(1)
}

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) ListByShift(ctx context.Context, tenantID, shiftID uuid.UUID) ([]*models.Sale, error) {
	args := m.Called(ctx, tenantID, shiftID)
	return args.Get(0).([]*models.Sale), args.Error(1)
}

type MockLimitsService struct {
	mock.Mock
}

func (m *MockLimitsService) CheckResource(ctx context.Context, tenantID uuid.UUID, resource string) (*UsageInfo, error) {
	args := m.Called(ctx, tenantID, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UsageInfo), args.Error(1)
}

func (m *MockLimitsService) RecordUsage(ctx context.Context, tenantID uuid.UUID, counter string, delta int64) error {
	args := m.Called(ctx, tenantID, counter, delta)
	return args.Error(0)
}

type CashDrawerServiceTestSuite struct {
	suite.Suite
	shiftRepo *MockCashShiftRepository
	saleRepo  *MockSaleRepository
	limitsSvc *MockLimitsService
	service   CashDrawerService
	ctx       context.Context
	tenantID  uuid.UUID
	userID    uuid.UUID
}

func (suite *CashDrawerServiceTestSuite) SetupTest() {
	suite.shiftRepo = &MockCashShiftRepository{}
	suite.saleRepo = &MockSaleRepository{}
	suite.limitsSvc = &MockLimitsService{}
	suite.shiftRepo.Test(suite.T())
	suite.saleRepo.Test(suite.T())
	suite.limitsSvc.Test(suite.T())
	suite.service = NewCashDrawerService(suite.shiftRepo, suite.saleRepo, suite.limitsSvc, nil)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
}

func (suite *CashDrawerServiceTestSuite) TearDownTest() {
	suite.shiftRepo.AssertExpectations(suite.T())
	suite.saleRepo.AssertExpectations(suite.T())
	suite.limitsSvc.AssertExpectations(suite.T())
}

func TestCashDrawerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CashDrawerServiceTestSuite))
}

func (suite *CashDrawerServiceTestSuite) TestOpenShift_Success() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.limitsSvc.On("CheckResource", suite.ctx, suite.tenantID, ResourceCashRegisters).
		Return(&UsageInfo{Resource: ResourceCashRegisters, Current: 0, Limit: 2, Allowed: true}, nil)
	suite.shiftRepo.On("CountOpen", suite.ctx, suite.tenantID).Return(int64(1), nil)
	suite.shiftRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.CashShift")).Return(nil)

	shift, err := suite.service.OpenShift(suite.ctx, suite.tenantID, suite.userID, 500.0)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CashShiftStatusOpen, shift.Status)
	assert.Equal(suite.T(), 500.0, shift.OpeningBalance)
	assert.Equal(suite.T(), suite.userID, shift.OpenedBy)
}

func (suite *CashDrawerServiceTestSuite) TestOpenShift_AlreadyOpen() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).
		Return(&models.CashShift{ID: uuid.New(), Status: models.CashShiftStatusOpen}, nil)

	shift, err := suite.service.OpenShift(suite.ctx, suite.tenantID, suite.userID, 500.0)
	assert.ErrorIs(suite.T(), err, ErrShiftAlreadyOpen)
	assert.Nil(suite.T(), shift)
}

func (suite *CashDrawerServiceTestSuite) TestOpenShift_RegisterLimitReached() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.limitsSvc.On("CheckResource", suite.ctx, suite.tenantID, ResourceCashRegisters).
		Return(&UsageInfo{Resource: ResourceCashRegisters, Current: 1, Limit: 1, Allowed: false}, nil)
	suite.shiftRepo.On("CountOpen", suite.ctx, suite.tenantID).Return(int64(1), nil)

	shift, err := suite.service.OpenShift(suite.ctx, suite.tenantID, suite.userID, 500.0)
	assert.ErrorIs(suite.T(), err, ErrLimitExceeded)
	assert.Nil(suite.T(), shift)
}

func (suite *CashDrawerServiceTestSuite) TestOpenShift_UnlimitedPlanIgnoresCount() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.limitsSvc.On("CheckResource", suite.ctx, suite.tenantID, ResourceCashRegisters).
		Return(&UsageInfo{Resource: ResourceCashRegisters, Current: 40, Limit: Unlimited, Allowed: true}, nil)
	suite.shiftRepo.On("CountOpen", suite.ctx, suite.tenantID).Return(int64(40), nil)
	suite.shiftRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.CashShift")).Return(nil)

	_, err := suite.service.OpenShift(suite.ctx, suite.tenantID, suite.userID, 100.0)
	assert.NoError(suite.T(), err)
}

func (suite *CashDrawerServiceTestSuite) TestRegisterSale_CashGoesToDrawer() {
	shiftID := uuid.New()
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).
		Return(&models.CashShift{ID: shiftID, TenantID: suite.tenantID, Status: models.CashShiftStatusOpen}, nil)
	suite.saleRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(nil)
	suite.shiftRepo.On("AddSaleTotals", suite.ctx, shiftID, 250.0, 0.0).Return(nil)

	sale, err := suite.service.RegisterSale(suite.ctx, suite.tenantID, suite.userID, &RegisterSaleRequest{
		Description:   "Consulta general",
		Amount:        250.0,
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), shiftID, sale.CashShiftID)
}

func (suite *CashDrawerServiceTestSuite) TestRegisterSale_CardDoesNotTouchDrawer() {
	shiftID := uuid.New()
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).
		Return(&models.CashShift{ID: shiftID, TenantID: suite.tenantID, Status: models.CashShiftStatusOpen}, nil)
	suite.saleRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(nil)
	suite.shiftRepo.On("AddSaleTotals", suite.ctx, shiftID, 0.0, 180.0).Return(nil)

	_, err := suite.service.RegisterSale(suite.ctx, suite.tenantID, suite.userID, &RegisterSaleRequest{
		Description:   "Vacuna antirrábica",
		Amount:        180.0,
		PaymentMethod: models.PaymentMethodCard,
	})
	assert.NoError(suite.T(), err)
}

func (suite *CashDrawerServiceTestSuite) TestRegisterSale_NoOpenShift() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(nil, pgx.ErrNoRows)

	sale, err := suite.service.RegisterSale(suite.ctx, suite.tenantID, suite.userID, &RegisterSaleRequest{
		Description:   "Consulta",
		Amount:        100.0,
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(suite.T(), err, ErrShiftNotOpen)
	assert.Nil(suite.T(), sale)
}

func (suite *CashDrawerServiceTestSuite) TestRegisterSale_InvalidPaymentMethod() {
	sale, err := suite.service.RegisterSale(suite.ctx, suite.tenantID, suite.userID, &RegisterSaleRequest{
		Description:   "Consulta",
		Amount:        100.0,
		PaymentMethod: "cheque",
	})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), sale)
}

func (suite *CashDrawerServiceTestSuite) TestCloseShift_ReconcilesAndCloses() {
	shift := &models.CashShift{
		ID:             uuid.New(),
		TenantID:       suite.tenantID,
		OpenedBy:       suite.userID,
		OpeningBalance: 500.0,
		CashSales:      1250.0,
		CardSales:      900.0,
		Withdrawals:    200.0,
		Status:         models.CashShiftStatusOpen,
	}
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(shift, nil)
	suite.shiftRepo.On("Close", suite.ctx, shift).Return(nil)

	closed, err := suite.service.CloseShift(suite.ctx, suite.tenantID, suite.userID, 1540.0)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CashShiftStatusClosed, closed.Status)
	assert.Equal(suite.T(), 1550.0, *closed.ExpectedBalance)
	assert.Equal(suite.T(), -10.0, *closed.Difference)
	assert.Equal(suite.T(), models.CashShiftShort, *closed.Reconciliation)
	assert.NotNil(suite.T(), closed.ClosedAt)
}

func (suite *CashDrawerServiceTestSuite) TestCloseShift_NoOpenShift() {
	suite.shiftRepo.On("GetOpenByUser", suite.ctx, suite.tenantID, suite.userID).Return(nil, pgx.ErrNoRows)

	closed, err := suite.service.CloseShift(suite.ctx, suite.tenantID, suite.userID, 100.0)
	assert.ErrorIs(suite.T(), err, ErrShiftNotOpen)
	assert.Nil(suite.T(), closed)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name           string
		opening        float64
		cashSales      float64
		withdrawals    float64
		counted        float64
		wantExpected   float64
		wantDifference float64
		wantLabel      string
	}{
		{"balanced", 500, 1000, 300, 1200, 1200, 0, models.CashShiftBalanced},
		{"over", 500, 1000, 300, 1250.50, 1200, 50.50, models.CashShiftOver},
		{"short", 500, 1000, 300, 1150, 1200, -50, models.CashShiftShort},
		{"empty shift", 0, 0, 0, 0, 0, 0, models.CashShiftBalanced},
		{"rounding", 100, 0.1, 0.2, 99.9, 99.9, 0, models.CashShiftBalanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, difference, label := Reconcile(tt.opening, tt.cashSales, tt.withdrawals, tt.counted)
			assert.Equal(t, tt.wantExpected, expected)
			assert.Equal(t, tt.wantDifference, difference)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}
