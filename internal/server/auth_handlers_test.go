package server

import (
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func TestSignup(t *testing.T) {
	t.Parallel()
	_, app, _ := setupTestServer(t)

	t.Run("creates account and session", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]any{
			"email":    "New.User@Example.com",
			"name":     "New User",
			"password": "Str0ng!password",
		}, ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body authResponse
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "new.user@example.com", body.User.Email)
		assert.Equal(t, models.UserRoleProvider, body.User.Role)

		// The returned token must be immediately usable.
		meResp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, body.Token))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, meResp.StatusCode)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		payload := map[string]any{
			"email":    "dupe@example.com",
			"password": "Str0ng!password",
		}
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", payload, ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", payload, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]any{
			"email":    "weak@example.com",
			"password": "short",
		}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// Sqlite ignores declared column lengths, so the issued token is checked
// against the gorm size tag that Postgres enforces at insert time.
func TestSessionTokenFitsColumn(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"email":    "width@example.com",
		"password": "Str0ng!password",
	}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body authResponse
	decodeBody(t, resp, &body)

	field, ok := reflect.TypeOf(models.Session{}).FieldByName("Token")
	require.True(t, ok)
	match := regexp.MustCompile(`size:(\d+)`).FindStringSubmatch(field.Tag.Get("gorm"))
	require.Len(t, match, 2)
	columnWidth, err := strconv.Atoi(match[1])
	require.NoError(t, err)

	var session models.Session
	require.NoError(t, db.Where("token = ?", body.Token).First(&session).Error)
	assert.LessOrEqual(t, len(session.Token), columnWidth)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	user, _ := createTestUser(t, db, models.UserRoleProvider)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    user.Email,
			"password": "Password123!long",
		}, ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body authResponse
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, user.ID, body.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    user.Email,
			"password": "not-the-password",
		}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "Password123!long",
		}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "Invalid credentials", body.Error)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	_, token := createTestUser(t, db, models.UserRoleProvider)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/logout", nil, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The session is revoked, not just the cookie cleared.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredSessionRejected(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	user, _ := createTestUser(t, db, models.UserRoleProvider)

	expired := &models.Session{
		Token:     "expired-token-expired-token-expired-token-expired-token-expired!",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(expired).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, expired.Token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Where("token = ?", expired.Token).Count(&count).Error)
	assert.Zero(t, count, "expired session should be purged on first use")
}

func TestMagicLink(t *testing.T) {
	t.Parallel()
	s, app, db := setupTestServer(t)
	user, _ := createTestUser(t, db, models.UserRoleProvider)

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Run("request never reveals account existence", func(t *testing.T) {
		for _, email := range []string{user.Email, "stranger@example.com"} {
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/magic-link",
				map[string]any{"email": email}, ""))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("redeem is single use", func(t *testing.T) {
		token, err := s.generateMagicLinkToken(user.ID)
		require.NoError(t, err)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/magic-link/redeem",
			map[string]any{"token": token}, ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body authResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, user.ID, body.User.ID)
		assert.NotEmpty(t, body.Token)

		resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/magic-link/redeem",
			map[string]any{"token": token}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/magic-link/redeem",
			map[string]any{"token": "not-a-jwt"}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("tampered signature rejected", func(t *testing.T) {
		token, err := s.generateMagicLinkToken(user.ID)
		require.NoError(t, err)
		tampered := token[:len(token)-2] + "xx"

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/magic-link/redeem",
			map[string]any{"token": tampered}, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
