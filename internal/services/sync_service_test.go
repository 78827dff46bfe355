package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
)

func newSyncFixture(t *testing.T) (database.Database, *fakeGHL, *SyncService, *models.Company, *models.User) {
	t.Helper()
	db := newTestDB(t)
	encryption := NewEncryptionService("test-secret")
	integrations := NewIntegrationService(db, encryption, testLogger())
	ghl := newFakeGHL()
	sync := NewSyncService(db, ghl, integrations, testLogger())

	company := seedCompany(t, db, models.PlanTeam)
	user := seedUser(t, db, company.ID, "rep@example.com", models.RoleSalesRep)
	seedIntegration(t, db, encryption, company.ID, "ghl-key-1234567890abcdef")

	return db, ghl, sync, company, user
}

func TestImportAllContacts_NoIntegrationIsSilentNoOp(t *testing.T) {
	db := newTestDB(t)
	encryption := NewEncryptionService("test-secret")
	integrations := NewIntegrationService(db, encryption, testLogger())
	sync := NewSyncService(db, newFakeGHL(), integrations, testLogger())

	company := seedCompany(t, db, models.PlanSolo)
	user := seedUser(t, db, company.ID, "solo@example.com", models.RoleOwner)

	summary, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 0, summary.TotalFound)
}

func TestImportAllContacts_DerivesRevenue(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	closeDate := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ghl.contactPages = [][]GHLContact{{
		{ID: "c-1", Name: "Alice Buyer", Email: "alice@example.com"},
	}}
	ghl.transactions["c-1"] = []GHLTransaction{
		{ID: "t-1", ContactID: "c-1", Amount: 100, Status: "succeeded", LiveMode: true, SourceName: "Coaching Subscription", CreatedAt: closeDate.Add(48 * time.Hour)},
		{ID: "t-2", ContactID: "c-1", Amount: 50, Status: "succeeded", LiveMode: true, SourceName: "Setup Fee", CreatedAt: closeDate},
	}

	summary, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.TotalFound)

	var client models.Client
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&client))
	assert.Equal(t, "Alice Buyer", client.Name)
	assert.Equal(t, models.StageClosed, client.Stage)
	assert.True(t, client.TotalRevenue.Equal(decimal.NewFromInt(150)), "total %s", client.TotalRevenue)
	assert.True(t, client.RecurringRevenue.Equal(decimal.NewFromInt(100)))
	assert.True(t, client.OneTimeRevenue.Equal(decimal.NewFromInt(50)))
	assert.True(t, client.MonthlyContractValue.Equal(decimal.NewFromInt(100)))
	assert.True(t, client.AnnualContractValue.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, client.CloseDate)
	assert.True(t, client.CloseDate.Equal(closeDate), "close date should be earliest transaction")
	assert.True(t, client.IsSynced())
}

func TestImportAllContacts_NoTransactionsStaysNew(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	ghl.contactPages = [][]GHLContact{{
		{ID: "c-1", FirstName: "Bob", LastName: "Prospect"},
	}}

	_, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)

	var client models.Client
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&client))
	assert.Equal(t, "Bob Prospect", client.Name)
	assert.Equal(t, models.StageNew, client.Stage)
	assert.True(t, client.TotalRevenue.IsZero())

	// Without a transaction history the close date defaults to the import day.
	require.NotNil(t, client.CloseDate)
	assert.Equal(t, time.Now().UTC().Truncate(24*time.Hour), client.CloseDate.UTC().Truncate(24*time.Hour))
}

func TestImportAllContacts_NameFallsBackToUnknown(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	ghl.contactPages = [][]GHLContact{{{ID: "c-anon"}}}

	_, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)

	var client models.Client
	require.NoError(t, db.Where("company_id = ?", company.ID).First(&client))
	assert.Equal(t, "Unknown Contact", client.Name)
}

func TestImportAllContacts_SkipsExistingContacts(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	contactID := "c-existing"
	existing := &models.Client{
		CompanyID:    company.ID,
		UserID:       user.ID,
		Name:         "Locally Edited Name",
		GHLContactID: &contactID,
	}
	require.NoError(t, db.Create(existing))

	ghl.contactPages = [][]GHLContact{{
		{ID: contactID, Name: "Remote Name"},
		{ID: "c-new", Name: "Fresh Contact"},
	}}

	summary, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	// The existing record is never touched by a re-import.
	var unchanged models.Client
	require.NoError(t, db.First(&unchanged, existing.ID))
	assert.Equal(t, "Locally Edited Name", unchanged.Name)
}

func TestImportAllContacts_OneFailureDoesNotAbortBatch(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	ghl.contactPages = [][]GHLContact{{
		{ID: "c-1", Name: "One"},
		{ID: "c-2", Name: "Two"},
		{ID: "c-3", Name: "Three"},
		{ID: "c-4", Name: "Four"},
		{ID: "c-5", Name: "Five"},
	}}
	ghl.failTransactions["c-3"] = true

	summary, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 5, summary.TotalFound)

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Where("company_id = ?", company.ID).Count(&count))
	assert.Equal(t, int64(4), count)
}

func TestImportAllContacts_WalksAllPages(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	ghl.contactPages = [][]GHLContact{
		{{ID: "p1-a", Name: "A"}, {ID: "p1-b", Name: "B"}},
		{{ID: "p2-a", Name: "C"}},
	}

	summary, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Where("company_id = ?", company.ID).Count(&count))
	assert.Equal(t, int64(3), count)
}

func TestImportAllContacts_StampsLastSync(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)
	ghl.contactPages = [][]GHLContact{{{ID: "c-1", Name: "One"}}}

	_, err := sync.ImportAllContacts(context.Background(), company.ID, user.ID)
	require.NoError(t, err)

	var integration models.GHLIntegration
	require.NoError(t, db.Where("company_id = ? AND is_active = ?", company.ID, true).First(&integration))
	assert.NotNil(t, integration.LastSyncAt)
}

func TestSyncClient_CreatesContactAndLinksIt(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Unsent", Email: "unsent@example.com"}
	require.NoError(t, db.Create(client))

	ok, err := sync.SyncClient(context.Background(), company.ID, client.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var synced models.Client
	require.NoError(t, db.First(&synced, client.ID))
	assert.True(t, synced.IsSynced())
	require.NotNil(t, synced.SyncStatus)
	assert.Equal(t, models.SyncStatusSynced, *synced.SyncStatus)
	assert.Len(t, ghl.createdContacts, 1)
}

func TestSyncClient_UpdatesWhenAlreadyLinked(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	contactID := "c-linked"
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Linked", GHLContactID: &contactID}
	require.NoError(t, db.Create(client))

	ok, err := sync.SyncClient(context.Background(), company.ID, client.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ghl.createdContacts)
	require.Len(t, ghl.updatedContacts, 1)
	assert.Equal(t, contactID, ghl.updatedContacts[0].ID)
}

func TestSyncClient_NoIntegrationIsSilentNoOp(t *testing.T) {
	db := newTestDB(t)
	encryption := NewEncryptionService("test-secret")
	integrations := NewIntegrationService(db, encryption, testLogger())
	ghl := newFakeGHL()
	sync := NewSyncService(db, ghl, integrations, testLogger())

	company := seedCompany(t, db, models.PlanSolo)
	user := seedUser(t, db, company.ID, "solo@example.com", models.RoleOwner)
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Offline"}
	require.NoError(t, db.Create(client))

	ok, err := sync.SyncClient(context.Background(), company.ID, client.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, ghl.createdContacts)
}

func TestSyncActivity_PostsFormattedNote(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	contactID := "c-noted"
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Noted", GHLContactID: &contactID}
	require.NoError(t, db.Create(client))
	loggedAt := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	activity := &models.Activity{CompanyID: company.ID, ClientID: client.ID, UserID: user.ID, Type: "meeting", Notes: "Quarterly review", LoggedAt: loggedAt}
	require.NoError(t, db.Create(activity))

	ok, err := sync.SyncActivity(context.Background(), company.ID, activity.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, ghl.notes[contactID], 1)
	assert.Equal(t, "[MAT] MEETING logged on 2025-06-02\n\nQuarterly review", ghl.notes[contactID][0])
}

func TestSyncActivity_UnsyncedClientFails(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Local Only"}
	require.NoError(t, db.Create(client))
	activity := &models.Activity{CompanyID: company.ID, ClientID: client.ID, UserID: user.ID, Type: "call", Notes: "Intro", LoggedAt: time.Now()}
	require.NoError(t, db.Create(activity))

	_, err := sync.SyncActivity(context.Background(), company.ID, activity.ID)
	assert.ErrorIs(t, err, ErrClientNotSynced)
	assert.Empty(t, ghl.notes)
}

func TestLogActivity_MirrorsNoteForSyncedClient(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	contactID := "c-noted"
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Noted", GHLContactID: &contactID}
	require.NoError(t, db.Create(client))

	activity, err := sync.LogActivity(context.Background(), company.ID, client.ID, user.ID, "call", "Left a voicemail")
	require.NoError(t, err)
	assert.Equal(t, "call", activity.Type)

	require.Len(t, ghl.notes[contactID], 1)
	note := ghl.notes[contactID][0]
	assert.Contains(t, note, "[MAT] CALL logged on "+activity.LoggedAt.Format("2006-01-02"))
	assert.Contains(t, note, "Left a voicemail")
}

func TestLogActivity_UnsyncedClientSkipsNote(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Local Only"}
	require.NoError(t, db.Create(client))

	_, err := sync.LogActivity(context.Background(), company.ID, client.ID, user.ID, "email", "Sent intro")
	require.NoError(t, err)
	assert.Empty(t, ghl.notes)

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count))
	assert.Equal(t, int64(1), count)
}

func TestCreateAppointment_BooksOnFirstCalendar(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)
	ghl.calendars = []GHLCalendar{{ID: "cal-1", Name: "Main"}, {ID: "cal-2", Name: "Spare"}}

	contactID := "c-booked"
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Booked", GHLContactID: &contactID}
	require.NoError(t, db.Create(client))

	start := time.Now().Add(24 * time.Hour)
	appointment, err := sync.CreateAppointment(context.Background(), company.ID, client.ID, user.ID, "Demo", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, appointment.GHLEventID)
	assert.Equal(t, 1, ghl.appointments)
}

func TestCreateAppointment_UnsyncedClientFails(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)
	ghl.calendars = []GHLCalendar{{ID: "cal-1"}}

	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Unsynced"}
	require.NoError(t, db.Create(client))

	start := time.Now().Add(24 * time.Hour)
	_, err := sync.CreateAppointment(context.Background(), company.ID, client.ID, user.ID, "Demo", start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrClientNotSynced)
}

func TestCreateAppointment_NoCalendars(t *testing.T) {
	db, _, sync, company, user := newSyncFixture(t)

	contactID := "c-nocal"
	client := &models.Client{CompanyID: company.ID, UserID: user.ID, Name: "No Calendar", GHLContactID: &contactID}
	require.NoError(t, db.Create(client))

	start := time.Now().Add(24 * time.Hour)
	_, err := sync.CreateAppointment(context.Background(), company.ID, client.ID, user.ID, "Demo", start, start.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNoCalendarsFound)
}

func TestSyncPendingClients_RetriesFailedAndPending(t *testing.T) {
	db, ghl, sync, company, user := newSyncFixture(t)

	pending := models.SyncStatusPending
	errored := models.SyncStatusError
	synced := models.SyncStatusSynced
	contactID := "c-done"

	require.NoError(t, db.Create(&models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Pending", SyncStatus: &pending}))
	require.NoError(t, db.Create(&models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Errored", SyncStatus: &errored}))
	require.NoError(t, db.Create(&models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Never Tried"}))
	require.NoError(t, db.Create(&models.Client{CompanyID: company.ID, UserID: user.ID, Name: "Done", SyncStatus: &synced, GHLContactID: &contactID}))

	count, err := sync.SyncPendingClients(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, ghl.createdContacts, 3)
}
