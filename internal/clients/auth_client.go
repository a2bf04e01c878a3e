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

// AuthClient calls the auth service's token verification endpoint.
// It is the remote trust check every protected request performs;
// there is no local verification or caching of results.
type AuthClient struct {
	baseURL string
	http    *http.Client
}

// NewAuthClient creates a client for the auth service at baseURL. The
// timeout bounds the whole verification round trip.
func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool              `json:"valid"`
	User  models.PublicUser `json:"user"`
}

// VerifyToken asks the auth service to validate a bearer token and
// returns the confirmed identity. Any failure (transport error,
// non-2xx, an unconfirmed response) is an error: callers must fail
// closed.
func (c *AuthClient) VerifyToken(ctx context.Context, tokenString string) (*models.PublicUser, error) {
	body, err := json.Marshal(verifyRequest{Token: tokenString})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service rejected token (status %d)", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}
	if !out.Valid {
		return nil, fmt.Errorf("auth service did not confirm token validity")
	}
	return &out.User, nil
}
