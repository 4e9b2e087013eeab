package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/config"
	"github.com/example/storedash/internal/database"
	"github.com/example/storedash/internal/handlers"
	"github.com/example/storedash/internal/models"
	"github.com/example/storedash/internal/routes"
	"github.com/example/storedash/internal/utils"
)

// newTestApp builds the full route tree on an isolated in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppPort:      "0",
		JWTSecret:    "handler-test-secret",
		TokenExpires: time.Hour,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app, db, cfg)
	return app, db, cfg
}

// seedUser inserts an account directly and returns it with a valid token.
func seedUser(t *testing.T, db *gorm.DB, cfg *config.Config, username, role string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Avatar:       models.DefaultAvatar,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.Role, cfg.TokenExpires)
	require.NoError(t, err)
	return user, token
}

// seedCustomer inserts a customer record directly.
func seedCustomer(t *testing.T, db *gorm.DB, customerID int, name, email, number string) models.Customer {
	t.Helper()

	customer := models.Customer{
		CustomerID:     customerID,
		CustomerName:   name,
		CustomerEmail:  email,
		CustomerNumber: number,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

// doJSON performs a request and decodes the response body into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	status, raw := doRaw(t, app, method, path, payload, token)

	var body map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return status, body
}

// doRaw performs a request and returns the raw response body, for endpoints
// whose top-level JSON value is not an object.
func doRaw(t *testing.T, app *fiber.App, method, path string, payload interface{}, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func listLen(t *testing.T, body map[string]interface{}, key string) int {
	t.Helper()

	value, ok := body[key]
	require.True(t, ok, "missing %q in %v", key, body)
	if value == nil {
		return 0
	}
	items, ok := value.([]interface{})
	require.True(t, ok, "%q is not a list: %v", key, value)
	return len(items)
}
