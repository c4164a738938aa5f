package services

import (
	"context"
	"testing"
	"time"

	"vetly/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) CountOverlapping(ctx context.Context, tenantID, vetID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, vetID, startsAt, endsAt, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) ListByDay(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.Appointment, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListDueReminders(ctx context.Context, window time.Duration) ([]*models.Appointment, error) {
	args := m.Called(ctx, window)
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) Create(ctx context.Context, pet *models.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *MockPetRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Pet, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetRepository) Update(ctx context.Context, pet *models.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *MockPetRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Pet, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Pet), args.Error(1)
}

func (m *MockPetRepository) Search(ctx context.Context, tenantID uuid.UUID, term string, limit int) ([]*models.Pet, error) {
	args := m.Called(ctx, tenantID, term, limit)
	return args.Get(0).([]*models.Pet), args.Error(1)
}

type AppointmentServiceTestSuite struct {
	suite.Suite
	apptRepo *MockAppointmentRepository
	petRepo  *MockPetRepository
	service  AppointmentService
	ctx      context.Context
	tenantID uuid.UUID
	petID    uuid.UUID
	vetID    uuid.UUID
}

func (suite *AppointmentServiceTestSuite) SetupTest() {
	suite.apptRepo = &MockAppointmentRepository{}
	suite.petRepo = &MockPetRepository{}
	suite.apptRepo.Test(suite.T())
	suite.petRepo.Test(suite.T())
	suite.service = NewAppointmentService(suite.apptRepo, suite.petRepo)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.petID = uuid.New()
	suite.vetID = uuid.New()
}

func (suite *AppointmentServiceTestSuite) TearDownTest() {
	suite.apptRepo.AssertExpectations(suite.T())
	suite.petRepo.AssertExpectations(suite.T())
}

func TestAppointmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AppointmentServiceTestSuite))
}

func (suite *AppointmentServiceTestSuite) validRequest() *ScheduleAppointmentRequest {
	start := time.Now().Add(24 * time.Hour)
	return &ScheduleAppointmentRequest{
		PetID:          suite.petID,
		VeterinarianID: suite.vetID,
		StartsAt:       start,
		EndsAt:         start.Add(30 * time.Minute),
		Reason:         "Vacunación anual",
	}
}

func (suite *AppointmentServiceTestSuite) TestSchedule_Success() {
	req := suite.validRequest()
	suite.petRepo.On("GetByID", suite.ctx, suite.tenantID, suite.petID).
		Return(&models.Pet{ID: suite.petID, TenantID: suite.tenantID}, nil)
	suite.apptRepo.On("CountOverlapping", suite.ctx, suite.tenantID, suite.vetID, req.StartsAt, req.EndsAt, uuid.Nil).
		Return(int64(0), nil)
	suite.apptRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Appointment")).Return(nil)

	appt, err := suite.service.Schedule(suite.ctx, suite.tenantID, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AppointmentStatusScheduled, appt.Status)
	assert.Equal(suite.T(), suite.vetID, appt.VeterinarianID)
}

func (suite *AppointmentServiceTestSuite) TestSchedule_OverlapRejected() {
	req := suite.validRequest()
	suite.petRepo.On("GetByID", suite.ctx, suite.tenantID, suite.petID).
		Return(&models.Pet{ID: suite.petID, TenantID: suite.tenantID}, nil)
	suite.apptRepo.On("CountOverlapping", suite.ctx, suite.tenantID, suite.vetID, req.StartsAt, req.EndsAt, uuid.Nil).
		Return(int64(1), nil)

	appt, err := suite.service.Schedule(suite.ctx, suite.tenantID, req)
	assert.ErrorIs(suite.T(), err, ErrAppointmentOverlap)
	assert.Nil(suite.T(), appt)
}

func (suite *AppointmentServiceTestSuite) TestSchedule_PastStartRejected() {
	req := suite.validRequest()
	req.StartsAt = time.Now().Add(-time.Hour)
	req.EndsAt = req.StartsAt.Add(30 * time.Minute)

	appt, err := suite.service.Schedule(suite.ctx, suite.tenantID, req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), appt)
}

func (suite *AppointmentServiceTestSuite) TestSchedule_EndBeforeStartRejected() {
	req := suite.validRequest()
	req.EndsAt = req.StartsAt.Add(-10 * time.Minute)

	appt, err := suite.service.Schedule(suite.ctx, suite.tenantID, req)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), appt)
}

func (suite *AppointmentServiceTestSuite) TestUpdateStatus_ValidTransition() {
	apptID := uuid.New()
	suite.apptRepo.On("GetByID", suite.ctx, suite.tenantID, apptID).
		Return(&models.Appointment{ID: apptID, TenantID: suite.tenantID, Status: models.AppointmentStatusScheduled}, nil)
	suite.apptRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Appointment")).Return(nil)

	appt, err := suite.service.UpdateStatus(suite.ctx, suite.tenantID, apptID, models.AppointmentStatusConfirmed)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.AppointmentStatusConfirmed, appt.Status)
}

func (suite *AppointmentServiceTestSuite) TestUpdateStatus_InvalidTransition() {
	apptID := uuid.New()
	suite.apptRepo.On("GetByID", suite.ctx, suite.tenantID, apptID).
		Return(&models.Appointment{ID: apptID, TenantID: suite.tenantID, Status: models.AppointmentStatusCompleted}, nil)

	appt, err := suite.service.UpdateStatus(suite.ctx, suite.tenantID, apptID, models.AppointmentStatusScheduled)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), appt)
}

func (suite *AppointmentServiceTestSuite) TestReschedule_ExcludesOwnSlot() {
	apptID := uuid.New()
	old := time.Now().Add(48 * time.Hour)
	appt := &models.Appointment{
		ID:             apptID,
		TenantID:       suite.tenantID,
		PetID:          suite.petID,
		VeterinarianID: suite.vetID,
		StartsAt:       old,
		EndsAt:         old.Add(30 * time.Minute),
		Status:         models.AppointmentStatusScheduled,
	}
	newStart := old.Add(15 * time.Minute)
	newEnd := newStart.Add(30 * time.Minute)

	suite.apptRepo.On("GetByID", suite.ctx, suite.tenantID, apptID).Return(appt, nil)
	// The appointment's own row is excluded from the overlap check, so
	// moving it to a slot that overlaps its old one is allowed.
	suite.apptRepo.On("CountOverlapping", suite.ctx, suite.tenantID, suite.vetID, newStart, newEnd, apptID).
		Return(int64(0), nil)
	suite.apptRepo.On("Update", suite.ctx, appt).Return(nil)

	updated, err := suite.service.Reschedule(suite.ctx, suite.tenantID, apptID, newStart, newEnd)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newStart, updated.StartsAt)
}

func (suite *AppointmentServiceTestSuite) TestReschedule_CancelledRejected() {
	apptID := uuid.New()
	suite.apptRepo.On("GetByID", suite.ctx, suite.tenantID, apptID).
		Return(&models.Appointment{ID: apptID, Status: models.AppointmentStatusCancelled}, nil)

	updated, err := suite.service.Reschedule(suite.ctx, suite.tenantID, apptID, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), updated)
}
