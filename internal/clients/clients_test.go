package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmesh/internal/clients"
	"shopmesh/internal/models"
)

func TestAuthClient_VerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/verify", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "good-token", body["token"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"valid": true,
			"user":  models.PublicUser{ID: 7, Email: "alice@example.com", FirstName: "Alice"},
		})
	}))
	defer srv.Close()

	client := clients.NewAuthClient(srv.URL, time.Second)
	user, err := client.VerifyToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestAuthClient_VerifyToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired token"})
	}))
	defer srv.Close()

	client := clients.NewAuthClient(srv.URL, time.Second)
	_, err := client.VerifyToken(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestAuthClient_VerifyToken_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := clients.NewAuthClient(srv.URL, time.Second)
	_, err := client.VerifyToken(context.Background(), "any-token")
	assert.Error(t, err)
}

func TestAuthClient_VerifyToken_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := clients.NewAuthClient(srv.URL, 20*time.Millisecond)
	_, err := client.VerifyToken(context.Background(), "any-token")
	assert.Error(t, err)
}

func TestAuthClient_VerifyToken_UnconfirmedValidity(t *testing.T) {
	// A 200 without valid:true must still fail closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"valid": false})
	}))
	defer srv.Close()

	client := clients.NewAuthClient(srv.URL, time.Second)
	_, err := client.VerifyToken(context.Background(), "any-token")
	assert.Error(t, err)
}

func TestUserClient_SyncIdentity(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api/users/sync", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["id"])
		assert.Equal(t, "alice@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]string{"message": "User synced successfully"})
	}))
	defer srv.Close()

	client := clients.NewUserClient(srv.URL, time.Second)
	err := client.SyncIdentity(context.Background(), models.PublicUser{ID: 7, Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUserClient_SyncIdentity_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := clients.NewUserClient(srv.URL, time.Second)
	err := client.SyncIdentity(context.Background(), models.PublicUser{ID: 7, Email: "alice@example.com"})
	assert.Error(t, err)
}
