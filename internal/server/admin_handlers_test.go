package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAccessControl(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	_, providerToken := createTestUser(t, db, models.UserRoleProvider)

	t.Run("anonymous is 401", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/providers", nil, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/providers", nil, providerToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAdminListProviders(t *testing.T) {
	t.Parallel()
	s, app, db := setupTestServer(t)
	_, adminToken := createTestUser(t, db, models.UserRoleAdmin)
	seedListingProviders(t, s)

	t.Run("sees every status", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/providers", nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body listingBody
		decodeBody(t, resp, &body)
		assert.EqualValues(t, 4, body.Meta.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet,
			"/api/admin/providers?status=pending", nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body listingBody
		decodeBody(t, resp, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "pending-co", body.Data[0].Slug)
		// unlike the public listing, admin rows carry contact and moderation fields
		assert.Equal(t, "3@e.com", body.Data[0].Email)
		assert.Equal(t, string(models.ProviderStatusPending), body.Data[0].Status)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet,
			"/api/admin/providers?status=limbo", nil, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestModerationLifecycle(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	admin, adminToken := createTestUser(t, db, models.UserRoleAdmin)

	pending := createProviderRow(t, db, models.Provider{
		Slug: "lifecycle-co", Email: "lc@e.com", BusinessName: "Lifecycle Co",
		City: "Austin", Status: models.ProviderStatusPending,
	}, "plumbing")

	adminPath := func(action string) string {
		return fmt.Sprintf("/api/admin/providers/%d/%s", pending.ID, action)
	}

	t.Run("approve activates and records prior status", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("approve"), nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.Equal(t, string(models.ProviderStatusActive), provider.Status)

		var actions []models.AdminAction
		require.NoError(t, db.Find(&actions, "provider_id = ?", pending.ID).Error)
		require.Len(t, actions, 1)
		assert.Equal(t, models.AdminActionApprove, actions[0].Action)
		require.NotNil(t, actions[0].AdminUserID)
		assert.Equal(t, admin.ID, *actions[0].AdminUserID)

		var meta struct {
			PriorStatus models.ProviderStatus `json:"prior_status"`
		}
		require.NoError(t, json.Unmarshal([]byte(actions[0].Metadata), &meta))
		assert.Equal(t, models.ProviderStatusPending, meta.PriorStatus)
	})

	t.Run("disable without reason is rejected with no audit row", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("disable"),
			map[string]any{"reason": "   "}, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.AdminAction{}).
			Where("provider_id = ? AND action = ?", pending.ID, models.AdminActionDisable).
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("disable with reason", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("disable"),
			map[string]any{"reason": "spam reports"}, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.Equal(t, string(models.ProviderStatusDisabled), provider.Status)
		require.NotNil(t, provider.DisabledReason)
		assert.Equal(t, "spam reports", *provider.DisabledReason)

		// Disabled providers vanish from the public surface.
		publicResp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/providers/lifecycle-co", nil, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, publicResp.StatusCode)
	})

	t.Run("enable restores and clears the reason", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("enable"), nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.Equal(t, string(models.ProviderStatusActive), provider.Status)
		assert.Nil(t, provider.DisabledReason)
	})

	t.Run("enable an already-active provider conflicts", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("enable"), nil, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("verify toggles on and off", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("verify"),
			map[string]any{"verified": true}, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.True(t, provider.Verified)

		resp, err = app.Test(jsonRequest(t, http.MethodPost, adminPath("verify"),
			map[string]any{"verified": false}, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		decodeBody(t, resp, &provider)
		assert.False(t, provider.Verified)

		var actions []models.AdminAction
		require.NoError(t, db.Order("id").Find(&actions, "provider_id = ? AND action IN ?",
			pending.ID, []models.AdminActionType{models.AdminActionVerifyOn, models.AdminActionVerifyOff}).Error)
		require.Len(t, actions, 2)
		assert.Equal(t, models.AdminActionVerifyOn, actions[0].Action)
		assert.Equal(t, models.AdminActionVerifyOff, actions[1].Action)
	})

	t.Run("pending pulls the listing back to review", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("pending"), nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.Equal(t, string(models.ProviderStatusPending), provider.Status)
		assert.Nil(t, provider.DisabledReason)

		var action models.AdminAction
		require.NoError(t, db.Where("provider_id = ? AND action = ?",
			pending.ID, models.AdminActionSetPending).First(&action).Error)

		var meta struct {
			PriorStatus models.ProviderStatus `json:"prior_status"`
		}
		require.NoError(t, json.Unmarshal([]byte(action.Metadata), &meta))
		assert.Equal(t, models.ProviderStatusActive, meta.PriorStatus)
	})

	t.Run("missing verified flag rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, adminPath("verify"),
			map[string]any{}, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown provider is 404", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/providers/999999/approve",
			nil, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminEditProvider(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	_, adminToken := createTestUser(t, db, models.UserRoleAdmin)

	target := createProviderRow(t, db, models.Provider{
		Slug: "edit-me", Email: "edit@e.com", BusinessName: "Edit Me",
		City: "Austin", Status: models.ProviderStatusActive,
	}, "plumbing")
	createProviderRow(t, db, models.Provider{
		Slug: "taken-slug", Email: "taken@e.com", BusinessName: "Taken",
		Status: models.ProviderStatusActive,
	})

	editPath := fmt.Sprintf("/api/admin/providers/%d", target.ID)

	t.Run("partial update records changed fields", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut, editPath, map[string]any{
			"tagline":  "Fixed up",
			"rating":   4.2,
			"services": []string{"hvac"},
		}, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var provider providerJSON
		decodeBody(t, resp, &provider)
		assert.Equal(t, "Fixed up", provider.Tagline)
		assert.InDelta(t, 4.2, provider.Rating, 0.001)
		assert.Equal(t, "edit-me", provider.Slug)
		assert.ElementsMatch(t, []string{"hvac"}, provider.Services)

		var action models.AdminAction
		require.NoError(t, db.Where("provider_id = ? AND action = ?",
			target.ID, models.AdminActionEdit).First(&action).Error)

		var meta struct {
			ChangedFields []string `json:"changed_fields"`
		}
		require.NoError(t, json.Unmarshal([]byte(action.Metadata), &meta))
		assert.ElementsMatch(t, []string{"tagline", "rating", "services"}, meta.ChangedFields)
	})

	t.Run("slug conflict is 409", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut, editPath,
			map[string]any{"slug": "taken-slug"}, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid slug is 400", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut, editPath,
			map[string]any{"slug": "Bad Slug!"}, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("out-of-range rating is 400", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPut, editPath,
			map[string]any{"rating": 7.5}, adminToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminActionLog(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	_, adminToken := createTestUser(t, db, models.UserRoleAdmin)

	first := createProviderRow(t, db, models.Provider{
		Slug: "log-one", Email: "l1@e.com", BusinessName: "Log One",
		Status: models.ProviderStatusPending,
	})
	second := createProviderRow(t, db, models.Provider{
		Slug: "log-two", Email: "l2@e.com", BusinessName: "Log Two",
		Status: models.ProviderStatusPending,
	})

	for _, id := range []uint{first.ID, second.ID} {
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/api/admin/providers/%d/approve", id), nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	t.Run("per-provider history", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet,
			fmt.Sprintf("/api/admin/providers/%d/actions", first.ID), nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
			Data []models.AdminAction `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.EqualValues(t, 1, body.Meta.Total)
		require.Len(t, body.Data, 1)
		assert.Equal(t, first.ID, body.Data[0].ProviderID)
	})

	t.Run("global log spans providers", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/actions", nil, adminToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
			Data []models.AdminAction `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.EqualValues(t, 2, body.Meta.Total)
	})
}

func TestGetFeatureFlagsEndpoint(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	_, adminToken := createTestUser(t, db, models.UserRoleAdmin)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/feature-flags", nil, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Flags map[string]string `json:"flags"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "on", body.Flags["inquiries"])
}
