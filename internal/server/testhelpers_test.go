package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/config"
	"github.com/abdanbarkaath/marketlink/internal/database"
	"github.com/abdanbarkaath/marketlink/internal/featureflags"
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/repository"
	"github.com/abdanbarkaath/marketlink/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// providerJSON is a flat decode target covering the summary, detail, and
// admin response shapes. Fields absent from a given shape decode to zero.
type providerJSON struct {
	ID             uint     `json:"id"`
	Slug           string   `json:"slug"`
	Email          string   `json:"email"`
	BusinessName   string   `json:"business_name"`
	Tagline        string   `json:"tagline"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Zip            string   `json:"zip"`
	Status         string   `json:"status"`
	DisabledReason *string  `json:"disabled_reason"`
	Verified       bool     `json:"verified"`
	Rating         float64  `json:"rating"`
	Services       []string `json:"services"`
	Notes          string   `json:"notes"`
	OwnerUserID    *uint    `json:"owner_user_id"`
}

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	cfg := &config.Config{
		Env:              "test",
		SessionSecret:    "test-secret-0123456789abcdef",
		SessionTTLHours:  1,
		MagicLinkTTLMins: 15,
		FeatureFlags:     "inquiries=on",
		BaseURL:          "http://localhost:8460",
	}

	s := &Server{
		config:          cfg,
		db:              db,
		userRepo:        repository.NewUserRepository(db),
		providerRepo:    repository.NewProviderRepository(db),
		sessionRepo:     repository.NewSessionRepository(db),
		inquiryRepo:     repository.NewInquiryRepository(db),
		adminActionRepo: repository.NewAdminActionRepository(db),
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}
	s.providerService = service.NewProviderService(s.providerRepo)
	s.moderationService = service.NewModerationService(db)
	s.inquiryService = service.NewInquiryService(s.inquiryRepo, s.providerRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

// createTestUser persists a user with a known password and an active session,
// returning the user and a Bearer-usable session token.
func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!long"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:    uuid.New().String() + "@example.com",
		Name:     "Test User",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)

	token := uuid.New().String() + uuid.New().String()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(session).Error)
	return user, token
}

func jsonRequest(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func createProviderRow(t *testing.T, db *gorm.DB, p models.Provider, services ...string) models.Provider {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	for _, name := range services {
		svc := models.ProviderService{ProviderID: p.ID, Name: name}
		require.NoError(t, db.Create(&svc).Error)
	}
	return p
}
