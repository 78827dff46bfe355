package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// GHLContact is a contact record from the GoHighLevel API.
type GHLContact struct {
	ID          string `json:"id"`
	Name        string `json:"contactName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateAdded   string `json:"dateAdded"`
	LocationID  string `json:"locationId"`
	CompanyName string `json:"companyName"`
}

// GHLTransaction is a payment transaction attached to a contact.
type GHLTransaction struct {
	ID         string    `json:"_id"`
	ContactID  string    `json:"contactId"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	LiveMode   bool      `json:"liveMode"`
	Source     string    `json:"entitySourceType"`
	SourceName string    `json:"entitySourceName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GHLCalendar is a bookable calendar in a location.
type GHLCalendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GHLClient is the GoHighLevel API surface used by the sync orchestrator.
type GHLClient interface {
	GetContacts(ctx context.Context, apiKey string, page int) ([]GHLContact, int, error)
	GetTransactions(ctx context.Context, apiKey, contactID string) ([]GHLTransaction, error)
	CreateContact(ctx context.Context, apiKey string, contact *GHLContact) (*GHLContact, error)
	UpdateContact(ctx context.Context, apiKey string, contact *GHLContact) error
	CreateNote(ctx context.Context, apiKey, contactID, body string) error
	GetCalendars(ctx context.Context, apiKey string) ([]GHLCalendar, error)
	CreateAppointment(ctx context.Context, apiKey, calendarID, contactID, title string, start, end time.Time) (string, error)
}

type ghlClient struct {
	baseURL    string
	pageSize   int
	maxRetries int
	httpClient *http.Client
	logger     utils.Logger
}

func NewGHLClient(cfg *config.GHLConfig, logger utils.Logger) GHLClient {
	return &ghlClient{
		baseURL:    cfg.BaseURL,
		pageSize:   cfg.PageSize,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// GetContacts returns one page of contacts and the total count reported by
// the API. Paging starts at 1.
func (c *ghlClient) GetContacts(ctx context.Context, apiKey string, page int) ([]GHLContact, int, error) {
	path := "/contacts/?limit=" + strconv.Itoa(c.pageSize) + "&page=" + strconv.Itoa(page)

	body, err := c.executeWithRetry(ctx, apiKey, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}

	var result struct {
		Contacts []GHLContact `json:"contacts"`
		Meta     struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode contacts response: %w", err)
	}

	return result.Contacts, result.Meta.Total, nil
}

// GetTransactions returns the contact's successful live-mode transactions.
// Test-mode and failed transactions are filtered out here so callers never
// derive revenue from them.
func (c *ghlClient) GetTransactions(ctx context.Context, apiKey, contactID string) ([]GHLTransaction, error) {
	path := "/payments/transactions?contactId=" + url.QueryEscape(contactID)

	body, err := c.executeWithRetry(ctx, apiKey, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []GHLTransaction `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode transactions response: %w", err)
	}

	filtered := make([]GHLTransaction, 0, len(result.Data))
	for _, tx := range result.Data {
		if tx.LiveMode && tx.Status == "succeeded" {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

func (c *ghlClient) CreateContact(ctx context.Context, apiKey string, contact *GHLContact) (*GHLContact, error) {
	payload := map[string]interface{}{
		"firstName": contact.FirstName,
		"lastName":  contact.LastName,
		"name":      contact.Name,
		"email":     contact.Email,
		"phone":     contact.Phone,
	}

	body, err := c.executeWithRetry(ctx, apiKey, http.MethodPost, "/contacts/", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Contact GHLContact `json:"contact"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode contact response: %w", err)
	}
	if result.Contact.ID == "" {
		return nil, fmt.Errorf("contact response missing id")
	}

	return &result.Contact, nil
}

func (c *ghlClient) UpdateContact(ctx context.Context, apiKey string, contact *GHLContact) error {
	payload := map[string]interface{}{
		"name":  contact.Name,
		"email": contact.Email,
		"phone": contact.Phone,
	}

	_, err := c.executeWithRetry(ctx, apiKey, http.MethodPut, "/contacts/"+url.PathEscape(contact.ID), payload)
	return err
}

func (c *ghlClient) CreateNote(ctx context.Context, apiKey, contactID, noteBody string) error {
	payload := map[string]interface{}{"body": noteBody}
	_, err := c.executeWithRetry(ctx, apiKey, http.MethodPost, "/contacts/"+url.PathEscape(contactID)+"/notes/", payload)
	return err
}

func (c *ghlClient) GetCalendars(ctx context.Context, apiKey string) ([]GHLCalendar, error) {
	body, err := c.executeWithRetry(ctx, apiKey, http.MethodGet, "/calendars/services", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Calendars []GHLCalendar `json:"calendars"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode calendars response: %w", err)
	}

	return result.Calendars, nil
}

func (c *ghlClient) CreateAppointment(ctx context.Context, apiKey, calendarID, contactID, title string, start, end time.Time) (string, error) {
	payload := map[string]interface{}{
		"calendarId":        calendarID,
		"contactId":         contactID,
		"title":             title,
		"selectedSlot":      start.Format(time.RFC3339),
		"endTime":           end.Format(time.RFC3339),
		"appointmentStatus": "confirmed",
	}

	body, err := c.executeWithRetry(ctx, apiKey, http.MethodPost, "/appointments/", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode appointment response: %w", err)
	}

	return result.ID, nil
}

// executeWithRetry retries transient failures (network errors, 429, 5xx)
// with exponential backoff. 4xx responses other than 429 fail immediately.
func (c *ghlClient) executeWithRetry(ctx context.Context, apiKey, method, path string, payload interface{}) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, status, err := c.execute(ctx, apiKey, method, path, payload)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case status >= 200 && status < 300:
			return body, nil
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = fmt.Errorf("GHL API returned status %d", status)
			continue
		default:
			return nil, fmt.Errorf("GHL API returned status %d: %s", status, string(body))
		}
	}

	c.logger.Error("GHL request exhausted retries", utils.LogFields{
		"method": method,
		"path":   path,
		"error":  lastErr.Error(),
	})
	return nil, fmt.Errorf("GHL request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *ghlClient) execute(ctx context.Context, apiKey, method, path string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GHL request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read GHL response: %w", err)
	}

	return body, resp.StatusCode, nil
}
