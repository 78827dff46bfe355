package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/pkg/utils"
)

// IdentityUser is an account in the hosted identity provider.
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityProvider is the admin surface of the identity service used by
// provisioning. Implementations must be safe for concurrent use.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string, emailConfirmed bool) (*IdentityUser, error)
	DeleteUser(ctx context.Context, userID string) error
	GetUserByEmail(ctx context.Context, email string) (*IdentityUser, error)
}

type identityClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     utils.Logger
}

func NewIdentityClient(cfg *config.IdentityConfig, logger utils.Logger) IdentityProvider {
	return &identityClient{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *identityClient) CreateUser(ctx context.Context, email, password string, emailConfirmed bool) (*IdentityUser, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": emailConfirmed,
	}

	body, err := c.do(ctx, http.MethodPost, "/admin/users", payload)
	if err != nil {
		return nil, err
	}

	var user IdentityUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity response missing user id")
	}

	return &user, nil
}

func (c *identityClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil)
	return err
}

// GetUserByEmail returns nil without error when no account matches.
func (c *identityClient) GetUserByEmail(ctx context.Context, email string) (*IdentityUser, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/users?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Users []IdentityUser `json:"users"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	for i := range result.Users {
		if result.Users[i].Email == email {
			return &result.Users[i], nil
		}
	}
	return nil, nil
}

func (c *identityClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("identity API returned error", utils.LogFields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("identity API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
