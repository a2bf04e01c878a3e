package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shopmesh/internal/clients"
	"shopmesh/internal/handlers"
	"shopmesh/internal/middleware"
	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/internal/services"
	"shopmesh/internal/token"
)

var dbSeq int

// openTestDB opens a named in-memory SQLite database. Each call gets
// its own database; shared cache keeps it stable across pooled
// connections.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

// localVerifier adapts the auth service for in-process token checks,
// standing in for the HTTP client the services use in production.
type localVerifier struct {
	auth *services.AuthService
}

func (v *localVerifier) VerifyToken(_ context.Context, tokenString string) (*models.PublicUser, error) {
	user, err := v.auth.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// localReplicator adapts the user service for in-process replication,
// standing in for the HTTP sync client.
type localReplicator struct {
	users *services.UserService
}

func (r *localReplicator) SyncIdentity(_ context.Context, user models.PublicUser) error {
	_, err := r.users.SyncUser(user.ID, user.Email, user.FirstName, user.LastName)
	return err
}

// mesh wires the three services together the way the deployment does,
// with in-memory stores and in-process replication/verification.
type mesh struct {
	authApp  *fiber.App
	userApp  *fiber.App
	orderApp *fiber.App

	authService *services.AuthService
	userService *services.UserService
}

func newMesh(t *testing.T, replicator services.IdentityReplicator) *mesh {
	t.Helper()

	authDB := openTestDB(t)
	require.NoError(t, authDB.AutoMigrate(&models.User{}))
	userDB := openTestDB(t)
	require.NoError(t, userDB.AutoMigrate(&models.MirrorUser{}))
	orderDB := openTestDB(t)
	require.NoError(t, orderDB.AutoMigrate(&models.Order{}))

	userService := services.NewUserService(repositories.NewGORMMirrorRepository(userDB))
	if replicator == nil {
		replicator = &localReplicator{users: userService}
	}

	codec := token.NewCodec("test_jwt_secret", time.Hour)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(authDB), codec, replicator)
	orderService := services.NewOrderService(repositories.NewGORMOrderRepository(orderDB), nil)

	auth := middleware.Authenticate(&localVerifier{auth: authService})

	authApp := fiber.New()
	handlers.NewAuthHandler(authService).RegisterRoutes(authApp.Group("/api"))

	userApp := fiber.New()
	handlers.NewUserHandler(userService).RegisterRoutes(userApp.Group("/api"), auth)

	orderApp := fiber.New()
	handlers.NewOrderHandler(orderService).RegisterRoutes(orderApp.Group("/api"), auth)

	return &mesh{
		authApp:     authApp,
		userApp:     userApp,
		orderApp:    orderApp,
		authService: authService,
		userService: userService,
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path, bearer string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	payload := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		json.Unmarshal(raw, &payload)
	}
	return resp, payload
}

func registerAndLogin(t *testing.T, m *mesh, email, password string) (string, uint) {
	t.Helper()

	resp, _ := doJSON(t, m.authApp, "POST", "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, m.authApp, "POST", "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tok := payload["token"].(string)
	user := payload["user"].(map[string]interface{})
	return tok, uint(user["id"].(float64))
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestRegisterLoginVerifyRoundtrip(t *testing.T) {
	m := newMesh(t, nil)

	resp, payload := doJSON(t, m.authApp, "POST", "/api/auth/register", "", fiber.Map{
		"email":     "alice@example.com",
		"password":  "secret123",
		"firstName": "Alice",
		"lastName":  "Smith",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	resp, payload = doJSON(t, m.authApp, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	tok := payload["token"].(string)
	require.NotEmpty(t, tok)

	resp, payload = doJSON(t, m.authApp, "POST", "/api/auth/verify", "", fiber.Map{"token": tok})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["valid"])
	verified := payload["user"].(map[string]interface{})
	assert.Equal(t, user["id"], verified["id"])
	assert.Equal(t, "alice@example.com", verified["email"])
}

func TestRegister_Validation(t *testing.T) {
	m := newMesh(t, nil)

	resp, _ := doJSON(t, m.authApp, "POST", "/api/auth/register", "", fiber.Map{"email": "alice@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, m.authApp, "POST", "/api/auth/register", "", fiber.Map{"password": "secret123"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegister_Duplicate(t *testing.T) {
	m := newMesh(t, nil)

	body := fiber.Map{"email": "alice@example.com", "password": "secret123"}
	resp, _ := doJSON(t, m.authApp, "POST", "/api/auth/register", "", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, m.authApp, "POST", "/api/auth/register", "", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User already exists", payload["error"])
}

func TestLogin_BadCredentials(t *testing.T) {
	m := newMesh(t, nil)
	registerAndLogin(t, m, "alice@example.com", "secret123")

	resp, wrongPass := doJSON(t, m.authApp, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, noUser := doJSON(t, m.authApp, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Unknown email and wrong password are indistinguishable.
	assert.Equal(t, wrongPass["error"], noUser["error"])
}

func TestReplication_MirrorsIdentity(t *testing.T) {
	m := newMesh(t, nil)
	tok, id := registerAndLogin(t, m, "alice@example.com", "secret123")

	// Replication runs off the registration path; the mirror row
	// appears within a bounded delay.
	require.Eventually(t, func() bool {
		_, err := m.userService.GetUserByID(id)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	resp, payload := doJSON(t, m.userApp, "GET", "/api/users/me", tok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(id), payload["id"])
	assert.Equal(t, "alice@example.com", payload["email"])
}

func TestReplication_UnreachableReplicaStillRegisters(t *testing.T) {
	// A real HTTP sync client pointed at a dead address: registration
	// must still succeed and the mirror row simply never appears.
	dead := clients.NewUserClient("http://localhost:1", 100*time.Millisecond)
	m := newMesh(t, dead)

	tok, id := registerAndLogin(t, m, "bob@example.com", "secret123")
	require.NotEmpty(t, tok)

	time.Sleep(300 * time.Millisecond)
	_, err := m.userService.GetUserByID(id)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUserSync_Idempotent(t *testing.T) {
	m := newMesh(t, nil)

	body := fiber.Map{"id": 42, "email": "carol@example.com", "firstName": "Carol"}
	resp, _ := doJSON(t, m.userApp, "POST", "/api/users/sync", "", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Replaying the sync converges instead of erroring.
	body["firstName"] = "Caroline"
	resp, payload := doJSON(t, m.userApp, "POST", "/api/users/sync", "", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "Caroline", user["first_name"])

	users, err := m.userService.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRoutes_RequireAuthentication(t *testing.T) {
	m := newMesh(t, nil)

	for _, path := range []string{"/api/users/me", "/api/users/1", "/api/users"} {
		resp, _ := doJSON(t, m.userApp, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "path %s", path)
	}

	resp, _ := doJSON(t, m.orderApp, "GET", "/api/orders/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUserUpdate_PartialFields(t *testing.T) {
	m := newMesh(t, nil)

	resp, _ := doJSON(t, m.userApp, "POST", "/api/users/sync", "", fiber.Map{
		"id": 5, "email": "dave@example.com", "firstName": "Dave", "lastName": "Jones",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tok, _ := registerAndLogin(t, m, "updater@example.com", "secret123")

	resp, payload := doJSON(t, m.userApp, "PUT", "/api/users/5", tok, fiber.Map{"firstName": "David"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := payload["user"].(map[string]interface{})
	assert.Equal(t, "David", user["first_name"])
	assert.Equal(t, "Jones", user["last_name"])
}

func TestOrderLifecycle(t *testing.T) {
	m := newMesh(t, nil)
	tok, _ := registerAndLogin(t, m, "alice@example.com", "secret123")

	// Create: pending, owned by the caller.
	resp, payload := doJSON(t, m.orderApp, "POST", "/api/orders/", tok, fiber.Map{
		"items":       []fiber.Map{{"sku": "X", "qty": 2}},
		"totalAmount": 20.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	order := payload["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	orderID := int(order["id"].(float64))

	// Ship it.
	resp, payload = doJSON(t, m.orderApp, "PUT", fmt.Sprintf("/api/orders/%d/status", orderID), tok, fiber.Map{"status": "shipped"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "shipped", payload["order"].(map[string]interface{})["status"])

	// Cancel, then try to edit: locked.
	resp, _ = doJSON(t, m.orderApp, "PUT", fmt.Sprintf("/api/orders/%d/status", orderID), tok, fiber.Map{"status": "cancelled"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, payload = doJSON(t, m.orderApp, "PUT", fmt.Sprintf("/api/orders/%d", orderID), tok, fiber.Map{
		"items":       []fiber.Map{{"sku": "Y", "qty": 1}},
		"totalAmount": 5.0,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot edit cancelled or delivered orders", payload["error"])
}

func TestOrderOwnership(t *testing.T) {
	m := newMesh(t, nil)
	aliceTok, _ := registerAndLogin(t, m, "alice@example.com", "secret123")
	bobTok, bobID := registerAndLogin(t, m, "bob@example.com", "secret456")

	resp, payload := doJSON(t, m.orderApp, "POST", "/api/orders/", aliceTok, fiber.Map{
		"items":       []fiber.Map{{"sku": "X", "qty": 1}},
		"totalAmount": 10.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	orderID := int(payload["order"].(map[string]interface{})["id"].(float64))

	// The owner reads it; anyone else is denied.
	resp, _ = doJSON(t, m.orderApp, "GET", fmt.Sprintf("/api/orders/%d", orderID), aliceTok, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, payload = doJSON(t, m.orderApp, "GET", fmt.Sprintf("/api/orders/%d", orderID), bobTok, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", payload["error"])

	// Absent orders are 404, issued before any ownership decision.
	resp, _ = doJSON(t, m.orderApp, "GET", "/api/orders/9999", aliceTok, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Listing another user's orders is denied outright.
	resp, _ = doJSON(t, m.orderApp, "GET", fmt.Sprintf("/api/orders/user/%d", bobID+100), bobTok, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOrderStatusValidation(t *testing.T) {
	m := newMesh(t, nil)
	tok, _ := registerAndLogin(t, m, "alice@example.com", "secret123")

	resp, payload := doJSON(t, m.orderApp, "POST", "/api/orders/", tok, fiber.Map{
		"items":       []fiber.Map{{"sku": "X", "qty": 1}},
		"totalAmount": 10.0,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	orderID := int(payload["order"].(map[string]interface{})["id"].(float64))

	resp, payload = doJSON(t, m.orderApp, "PUT", fmt.Sprintf("/api/orders/%d/status", orderID), tok, fiber.Map{"status": "teleported"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status", payload["error"])
}

func TestOrderCreate_RequiresItems(t *testing.T) {
	m := newMesh(t, nil)
	tok, _ := registerAndLogin(t, m, "alice@example.com", "secret123")

	resp, payload := doJSON(t, m.orderApp, "POST", "/api/orders/", tok, fiber.Map{"totalAmount": 10.0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Order items are required", payload["error"])
}
