package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shopmesh/internal/models"
)

// UserClient calls the user service's replication intake. It is used
// only by the auth service, fire-and-forget, after registration.
type UserClient struct {
	baseURL string
	http    *http.Client
}

// NewUserClient creates a client for the user service at baseURL.
func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type syncRequest struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SyncIdentity replicates a registered identity to the user service's
// mirror store. A non-2xx response counts as failure; the caller
// decides whether to swallow it.
func (c *UserClient) SyncIdentity(ctx context.Context, user models.PublicUser) error {
	body, err := json.Marshal(syncRequest{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sync request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("user service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("user service sync failed (status %d)", resp.StatusCode)
	}
	return nil
}
