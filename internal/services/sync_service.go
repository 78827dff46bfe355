package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// ImportSummary reports the outcome of a full contact import.
type ImportSummary struct {
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	TotalFound int `json:"totalFound"`
}

// SyncService orchestrates two-way traffic between the pipeline and
// GoHighLevel. Every operation checks the integration gate first; a company
// without an active integration gets a silent no-op, never an error.
type SyncService struct {
	db           database.Database
	ghl          GHLClient
	integrations *IntegrationService
	logger       utils.Logger
}

func NewSyncService(db database.Database, ghl GHLClient, integrations *IntegrationService, logger utils.Logger) *SyncService {
	return &SyncService{db: db, ghl: ghl, integrations: integrations, logger: logger}
}

// ImportAllContacts pulls every contact from the connected location into the
// pipeline. Contacts already imported are skipped, never updated, so local
// edits survive re-imports. A failure on one contact is logged and the
// import moves on; a batch never aborts partway.
func (s *SyncService) ImportAllContacts(ctx context.Context, companyID uint, userID string) (*ImportSummary, error) {
	summary := &ImportSummary{}

	if !s.integrations.IsIntegrationActive(companyID) {
		return summary, nil
	}

	apiKey, err := s.integrations.ResolveAPIKey(companyID)
	if err != nil {
		return nil, err
	}

	page := 1
	for {
		contacts, total, err := s.ghl.GetContacts(ctx, apiKey, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch contacts page %d: %w", page, err)
		}
		if summary.TotalFound == 0 {
			summary.TotalFound = total
		}
		if len(contacts) == 0 {
			break
		}

		for i := range contacts {
			contact := &contacts[i]
			if contact.ID == "" {
				summary.Skipped++
				continue
			}
			imported, err := s.importContact(ctx, apiKey, companyID, userID, contact)
			if err != nil {
				summary.Skipped++
				s.logger.Warn("contact import failed, skipping", utils.LogFields{
					"company_id": companyID,
					"contact_id": contact.ID,
					"error":      err.Error(),
				})
				continue
			}
			if imported {
				summary.Imported++
			} else {
				summary.Skipped++
			}
		}

		page++
	}

	if err := s.integrations.TouchLastSync(companyID); err != nil {
		s.logger.Warn("failed to stamp last sync", utils.LogFields{
			"company_id": companyID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("contact import finished", utils.LogFields{
		"company_id":  companyID,
		"imported":    summary.Imported,
		"skipped":     summary.Skipped,
		"total_found": summary.TotalFound,
	})
	return summary, nil
}

func (s *SyncService) importContact(ctx context.Context, apiKey string, companyID uint, userID string, contact *GHLContact) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Client{}).
		Where("company_id = ? AND ghl_contact_id = ?", companyID, contact.ID).
		Count(&count); err != nil {
		return false, fmt.Errorf("failed to check existing client: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	transactions, err := s.ghl.GetTransactions(ctx, apiKey, contact.ID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	client := s.buildClient(companyID, userID, contact, transactions)
	if err := s.db.Create(client); err != nil {
		return false, fmt.Errorf("failed to create client: %w", err)
	}

	return true, nil
}

// buildClient derives the pipeline record from a contact and its transaction
// history. Revenue classification keys off the transaction source: anything
// mentioning a recurring product or subscription counts as recurring, the
// rest as one-time.
func (s *SyncService) buildClient(companyID uint, userID string, contact *GHLContact, transactions []GHLTransaction) *models.Client {
	total := decimal.Zero
	recurring := decimal.Zero
	var earliest *time.Time

	for _, tx := range transactions {
		amount := decimal.NewFromFloat(tx.Amount)
		total = total.Add(amount)
		if isRecurringTransaction(tx) {
			recurring = recurring.Add(amount)
		}
		if !tx.CreatedAt.IsZero() && (earliest == nil || tx.CreatedAt.Before(*earliest)) {
			txDate := tx.CreatedAt
			earliest = &txDate
		}
	}

	monthly := recurring
	annual := monthly.Mul(decimal.NewFromInt(12))

	client := &models.Client{
		CompanyID:            companyID,
		UserID:               userID,
		Name:                 contactDisplayName(contact),
		Email:                contact.Email,
		Phone:                contact.Phone,
		Stage:                models.StageNew,
		TotalRevenue:         total,
		RecurringRevenue:     recurring,
		OneTimeRevenue:       total.Sub(recurring),
		MonthlyContractValue: monthly,
		AnnualContractValue:  annual,
	}

	contactID := contact.ID
	client.GHLContactID = &contactID
	synced := models.SyncStatusSynced
	client.SyncStatus = &synced

	if len(transactions) > 0 {
		client.Stage = models.StageClosed
	}
	if earliest != nil {
		client.CloseDate = earliest
	} else {
		now := time.Now()
		client.CloseDate = &now
	}

	return client
}

func isRecurringTransaction(tx GHLTransaction) bool {
	source := strings.ToLower(tx.Source + " " + tx.SourceName)
	return strings.Contains(source, "recurring") || strings.Contains(source, "subscription")
}

func contactDisplayName(contact *GHLContact) string {
	if name := strings.TrimSpace(contact.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(contact.FirstName + " " + contact.LastName); name != "" {
		return name
	}
	return "Unknown Contact"
}

// SyncClient pushes one pipeline record out to GoHighLevel, creating or
// updating the linked contact. Returns false without error when the company
// has no active integration. The sync status records the attempt outcome.
func (s *SyncService) SyncClient(ctx context.Context, companyID uint, clientID uint) (bool, error) {
	if !s.integrations.IsIntegrationActive(companyID) {
		return false, nil
	}

	var client models.Client
	if err := s.db.Where("id = ? AND company_id = ?", clientID, companyID).First(&client); err != nil {
		return false, fmt.Errorf("failed to load client: %w", err)
	}

	apiKey, err := s.integrations.ResolveAPIKey(companyID)
	if err != nil {
		return false, err
	}

	if err := s.pushClient(ctx, apiKey, &client); err != nil {
		errStatus := models.SyncStatusError
		client.SyncStatus = &errStatus
		if saveErr := s.db.Save(&client); saveErr != nil {
			s.logger.Error("failed to record sync error", utils.LogFields{
				"client_id": client.ID,
				"error":     saveErr.Error(),
			})
		}
		return false, err
	}

	synced := models.SyncStatusSynced
	client.SyncStatus = &synced
	if err := s.db.Save(&client); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SyncService) pushClient(ctx context.Context, apiKey string, client *models.Client) error {
	contact := &GHLContact{
		Name:  client.Name,
		Email: client.Email,
		Phone: client.Phone,
	}

	if client.IsSynced() {
		contact.ID = *client.GHLContactID
		return s.ghl.UpdateContact(ctx, apiKey, contact)
	}

	created, err := s.ghl.CreateContact(ctx, apiKey, contact)
	if err != nil {
		return err
	}
	client.GHLContactID = &created.ID
	return nil
}

// SyncPendingClients retries every client whose last sync attempt is pending
// or failed, plus records never attempted. Individual failures are logged
// and skipped; the count of successful syncs is returned.
func (s *SyncService) SyncPendingClients(ctx context.Context, companyID uint) (int, error) {
	if !s.integrations.IsIntegrationActive(companyID) {
		return 0, nil
	}

	var clients []models.Client
	err := s.db.Where("company_id = ? AND (sync_status IS NULL OR sync_status IN ?)",
		companyID, []models.SyncStatus{models.SyncStatusPending, models.SyncStatusError}).
		Find(&clients)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending clients: %w", err)
	}

	synced := 0
	for i := range clients {
		ok, err := s.SyncClient(ctx, companyID, clients[i].ID)
		if err != nil {
			s.logger.Warn("client sync failed, skipping", utils.LogFields{
				"company_id": companyID,
				"client_id":  clients[i].ID,
				"error":      err.Error(),
			})
			continue
		}
		if ok {
			synced++
		}
	}

	return synced, nil
}

// SyncActivity mirrors a logged activity onto the linked contact's timeline
// as a note. The client must already be linked; returns false without error
// when the integration is inactive.
func (s *SyncService) SyncActivity(ctx context.Context, companyID uint, activityID uint) (bool, error) {
	if !s.integrations.IsIntegrationActive(companyID) {
		return false, nil
	}

	var activity models.Activity
	if err := s.db.Where("id = ? AND company_id = ?", activityID, companyID).First(&activity); err != nil {
		return false, fmt.Errorf("failed to load activity: %w", err)
	}

	var client models.Client
	if err := s.db.Where("id = ?", activity.ClientID).First(&client); err != nil {
		return false, fmt.Errorf("failed to load client: %w", err)
	}
	if !client.IsSynced() {
		return false, ErrClientNotSynced
	}

	apiKey, err := s.integrations.ResolveAPIKey(companyID)
	if err != nil {
		return false, err
	}

	note := formatActivityNote(activity.Type, activity.LoggedAt, activity.Notes)
	if err := s.ghl.CreateNote(ctx, apiKey, *client.GHLContactID, note); err != nil {
		return false, fmt.Errorf("failed to post note: %w", err)
	}
	return true, nil
}

func formatActivityNote(activityType string, loggedAt time.Time, notes string) string {
	return fmt.Sprintf("[MAT] %s logged on %s\n\n%s",
		strings.ToUpper(activityType), loggedAt.Format("2006-01-02"), notes)
}

// SyncAppointment books a locally created appointment onto the location's
// first calendar and stores the returned event id. The client must already
// be linked; returns false without error when the integration is inactive.
func (s *SyncService) SyncAppointment(ctx context.Context, companyID uint, appointmentID uint) (bool, error) {
	if !s.integrations.IsIntegrationActive(companyID) {
		return false, nil
	}

	var appointment models.Appointment
	if err := s.db.Where("id = ? AND company_id = ?", appointmentID, companyID).First(&appointment); err != nil {
		return false, fmt.Errorf("failed to load appointment: %w", err)
	}

	var client models.Client
	if err := s.db.Where("id = ?", appointment.ClientID).First(&client); err != nil {
		return false, fmt.Errorf("failed to load client: %w", err)
	}
	if !client.IsSynced() {
		return false, ErrClientNotSynced
	}

	apiKey, err := s.integrations.ResolveAPIKey(companyID)
	if err != nil {
		return false, err
	}

	calendars, err := s.ghl.GetCalendars(ctx, apiKey)
	if err != nil {
		return false, fmt.Errorf("failed to fetch calendars: %w", err)
	}
	if len(calendars) == 0 {
		return false, ErrNoCalendarsFound
	}

	eventID, err := s.ghl.CreateAppointment(ctx, apiKey, calendars[0].ID, *client.GHLContactID, appointment.Title, appointment.StartTime, appointment.EndTime)
	if err != nil {
		return false, fmt.Errorf("failed to book appointment: %w", err)
	}

	if eventID != "" {
		appointment.GHLEventID = &eventID
		if err := s.db.Save(&appointment); err != nil {
			return false, fmt.Errorf("failed to persist event id: %w", err)
		}
	}
	return true, nil
}

// LogActivity records a touch on a client and mirrors it to the linked
// contact when possible. The mirror is best-effort; the local record is the
// source of truth.
func (s *SyncService) LogActivity(ctx context.Context, companyID uint, clientID uint, userID, activityType, notes string) (*models.Activity, error) {
	var client models.Client
	if err := s.db.Where("id = ? AND company_id = ?", clientID, companyID).First(&client); err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	activity := &models.Activity{
		CompanyID: companyID,
		ClientID:  clientID,
		UserID:    userID,
		Type:      activityType,
		Notes:     notes,
		LoggedAt:  time.Now(),
	}
	if err := s.db.Create(activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	if client.IsSynced() {
		if _, err := s.SyncActivity(ctx, companyID, activity.ID); err != nil {
			s.logger.Warn("activity note mirror failed", utils.LogFields{
				"client_id":   clientID,
				"activity_id": activity.ID,
				"error":       err.Error(),
			})
		}
	}

	return activity, nil
}

// CreateAppointment stores an appointment locally and books it externally
// when the client is linked and an integration is active.
func (s *SyncService) CreateAppointment(ctx context.Context, companyID uint, clientID uint, userID, title string, start, end time.Time) (*models.Appointment, error) {
	var client models.Client
	if err := s.db.Where("id = ? AND company_id = ?", clientID, companyID).First(&client); err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	appointment := &models.Appointment{
		CompanyID: companyID,
		ClientID:  clientID,
		UserID:    userID,
		Title:     title,
		StartTime: start,
		EndTime:   end,
	}
	if err := s.db.Create(appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if s.integrations.IsIntegrationActive(companyID) {
		if _, err := s.SyncAppointment(ctx, companyID, appointment.ID); err != nil {
			return appointment, err
		}
		if err := s.db.Where("id = ?", appointment.ID).First(appointment); err != nil {
			return nil, fmt.Errorf("failed to reload appointment: %w", err)
		}
	}

	return appointment, nil
}
