package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Client{},
		&models.Activity{},
		&models.Appointment{},
		&models.GHLIntegration{},
		&models.WebhookEvent{},
	))

	return database.NewGormAdapter(db)
}

func testLogger() utils.Logger {
	return utils.GetLogger()
}

// fakeIdentity is an in-memory IdentityProvider.
type fakeIdentity struct {
	mu          sync.Mutex
	users       map[string]*IdentityUser
	confirmed   map[string]bool
	createErr   error
	deleteErr   error
	deleteCalls []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:     make(map[string]*IdentityUser),
		confirmed: make(map[string]bool),
	}
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password string, emailConfirmed bool) (*IdentityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	user := &IdentityUser{ID: uuid.New().String(), Email: email}
	f.users[user.ID] = user
	f.confirmed[user.ID] = emailConfirmed
	return user, nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, userID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeIdentity) GetUserByEmail(ctx context.Context, email string) (*IdentityUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// fakeGHL is an in-memory GHLClient. Pages are served from contactPages;
// failTransactions lists contact ids whose transaction fetch errors.
type fakeGHL struct {
	mu               sync.Mutex
	contactPages     [][]GHLContact
	transactions     map[string][]GHLTransaction
	failTransactions map[string]bool
	calendars        []GHLCalendar
	createdContacts  []GHLContact
	updatedContacts  []GHLContact
	notes            map[string][]string
	appointments     int
}

func newFakeGHL() *fakeGHL {
	return &fakeGHL{
		transactions:     make(map[string][]GHLTransaction),
		failTransactions: make(map[string]bool),
		notes:            make(map[string][]string),
	}
}

func (f *fakeGHL) GetContacts(ctx context.Context, apiKey string, page int) ([]GHLContact, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, p := range f.contactPages {
		total += len(p)
	}
	if page < 1 || page > len(f.contactPages) {
		return nil, total, nil
	}
	return f.contactPages[page-1], total, nil
}

func (f *fakeGHL) GetTransactions(ctx context.Context, apiKey, contactID string) ([]GHLTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTransactions[contactID] {
		return nil, fmt.Errorf("transactions unavailable for %s", contactID)
	}
	return f.transactions[contactID], nil
}

func (f *fakeGHL) CreateContact(ctx context.Context, apiKey string, contact *GHLContact) (*GHLContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *contact
	created.ID = uuid.New().String()
	f.createdContacts = append(f.createdContacts, created)
	return &created, nil
}

func (f *fakeGHL) UpdateContact(ctx context.Context, apiKey string, contact *GHLContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedContacts = append(f.updatedContacts, *contact)
	return nil
}

func (f *fakeGHL) CreateNote(ctx context.Context, apiKey, contactID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[contactID] = append(f.notes[contactID], body)
	return nil
}

func (f *fakeGHL) GetCalendars(ctx context.Context, apiKey string) ([]GHLCalendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calendars, nil
}

func (f *fakeGHL) CreateAppointment(ctx context.Context, apiKey, calendarID, contactID, title string, start, end time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments++
	return "evt-" + uuid.New().String(), nil
}

func seedCompany(t *testing.T, db database.Database, plan models.PlanTier) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:             "Test Co",
		OwnerID:          uuid.New().String(),
		Plan:             plan,
		MaxUsers:         plan.MaxUsers(),
		SubscriptionType: "paid",
		AccountStatus:    models.AccountStatusActive,
	}
	require.NoError(t, db.Create(company))
	return company
}

func seedUser(t *testing.T, db database.Database, companyID uint, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Email:     email,
		Name:      "Test User",
		Role:      role,
		Status:    models.UserStatusActive,
	}
	require.NoError(t, db.Create(user))
	return user
}

func seedIntegration(t *testing.T, db database.Database, encryption *EncryptionService, companyID uint, apiKey string) *models.GHLIntegration {
	t.Helper()
	encrypted, err := encryption.Encrypt(apiKey)
	require.NoError(t, err)
	integration := &models.GHLIntegration{
		CompanyID:  companyID,
		APIKey:     encrypted,
		LocationID: "loc-1",
		IsActive:   true,
	}
	require.NoError(t, db.Create(integration))
	return integration
}
