package repositories

import (
	"context"
	"testing"
	"time"

	"vetly/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UsageStatsRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     UsageStatsRepository
	tenantID uuid.UUID
	ctx      context.Context
}

func (suite *UsageStatsRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewUsageStatsRepository(mock)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *UsageStatsRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestUsageStatsRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UsageStatsRepoTestSuite))
}

func (suite *UsageStatsRepoTestSuite) TestIncrement_AllowedCounters() {
	for _, counter := range []string{
		"total_users", "total_pets", "total_cash_registers",
		"storage_used_mb", "whatsapp_messages_sent",
	} {
		suite.mock.ExpectExec(`UPDATE tenant_usage_stats\s+SET ` + counter).
			WithArgs(int64(1), suite.tenantID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(suite.T(), suite.repo.Increment(suite.ctx, suite.tenantID, counter, 1))
	}
}

func (suite *UsageStatsRepoTestSuite) TestIncrement_RejectsUnknownCounter() {
	// No query may reach the database for a counter outside the allowlist.
	err := suite.repo.Increment(suite.ctx, suite.tenantID, "total_users; DROP TABLE tenants", 1)
	assert.Error(suite.T(), err)
}

func (suite *UsageStatsRepoTestSuite) TestGetByTenantID() {
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "total_users", "total_pets", "total_cash_registers",
		"storage_used_mb", "whatsapp_messages_sent", "updated_at",
	}).AddRow(uuid.New(), suite.tenantID, int64(3), int64(125), int64(1), int64(480), int64(52), time.Now())

	suite.mock.ExpectQuery(`FROM tenant_usage_stats\s+WHERE tenant_id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	stats, err := suite.repo.GetByTenantID(suite.ctx, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(125), stats.TotalPets)
	assert.Equal(suite.T(), int64(3), stats.TotalUsers)
}

func (suite *UsageStatsRepoTestSuite) TestCreate() {
	stats := &models.TenantUsageStats{
		ID:         uuid.New(),
		TenantID:   suite.tenantID,
		TotalUsers: 1,
	}

	suite.mock.ExpectExec(`INSERT INTO tenant_usage_stats`).
		WithArgs(stats.ID, stats.TenantID, stats.TotalUsers, stats.TotalPets,
			stats.TotalCashRegisters, stats.StorageUsedMB, stats.WhatsAppMessagesSent).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.ctx, stats))
}
