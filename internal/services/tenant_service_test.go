package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
)

func TestChangePlan_AdjustsSeatCap(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())
	company := seedCompany(t, db, models.PlanSolo)

	updated, err := svc.ChangePlan(company.ID, models.PlanElite)
	require.NoError(t, err)
	assert.Equal(t, models.PlanElite, updated.Plan)
	assert.Equal(t, 10, updated.MaxUsers)
}

func TestChangePlan_DowngradeKeepsExistingUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())
	company := seedCompany(t, db, models.PlanTeam)
	seedUser(t, db, company.ID, "one@example.com", models.RoleOwner)
	seedUser(t, db, company.ID, "two@example.com", models.RoleSalesRep)

	_, err := svc.ChangePlan(company.ID, models.PlanSolo)
	require.NoError(t, err)

	count, err := svc.CountActiveUsers(company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSetAccountStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())
	company := seedCompany(t, db, models.PlanSolo)

	require.NoError(t, svc.SetAccountStatus(company.ID, models.AccountStatusDisabled))

	reloaded, err := svc.GetCompany(company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusDisabled, reloaded.AccountStatus)
}

func TestRequestCancellation_StampsTimestamp(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())
	company := seedCompany(t, db, models.PlanTeam)

	require.NoError(t, svc.RequestCancellation(company.ID))

	reloaded, err := svc.GetCompany(company.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.CancellationRequestedAt)
}

func TestGetCompany_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())

	_, err := svc.GetCompany(9999)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCountActiveUsers_IgnoresInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, testLogger())
	company := seedCompany(t, db, models.PlanTeam)
	seedUser(t, db, company.ID, "active@example.com", models.RoleOwner)
	inactive := seedUser(t, db, company.ID, "inactive@example.com", models.RoleSalesRep)

	require.NoError(t, svc.SetUserStatus(inactive.ID, models.UserStatusInactive))

	count, err := svc.CountActiveUsers(company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
