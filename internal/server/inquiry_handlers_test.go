package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abdanbarkaath/marketlink/internal/featureflags"
	"github.com/abdanbarkaath/marketlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInquiry(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	createProviderRow(t, db, models.Provider{
		Slug: "active-co", Email: "a@e.com", BusinessName: "Active Co",
		Status: models.ProviderStatusActive,
	})
	createProviderRow(t, db, models.Provider{
		Slug: "pending-co", Email: "p@e.com", BusinessName: "Pending Co",
		Status: models.ProviderStatusPending,
	})

	inquiryBody := func() map[string]any {
		return map[string]any{
			"name":    "Jordan Visitor",
			"email":   "jordan@example.com",
			"message": "Do you service my area?",
		}
	}

	t.Run("against active provider", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			"/api/providers/active-co/inquiries", inquiryBody(), ""))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var inquiry models.Inquiry
		decodeBody(t, resp, &inquiry)
		assert.Equal(t, models.InquiryStatusNew, inquiry.Status)
		assert.Equal(t, "jordan@example.com", inquiry.Email)
	})

	t.Run("pending provider masked as missing", func(t *testing.T) {
		for _, slug := range []string{"pending-co", "no-such-co"} {
			resp, err := app.Test(jsonRequest(t, http.MethodPost,
				"/api/providers/"+slug+"/inquiries", inquiryBody(), ""))
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, "slug %s", slug)
		}
	})

	t.Run("missing message rejected", func(t *testing.T) {
		body := inquiryBody()
		body["message"] = "  "
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			"/api/providers/active-co/inquiries", body, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad email rejected", func(t *testing.T) {
		body := inquiryBody()
		body["email"] = "not-an-email"
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			"/api/providers/active-co/inquiries", body, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateInquiryFeatureFlagOff(t *testing.T) {
	t.Parallel()
	s, app, db := setupTestServer(t)
	s.featureFlags = featureflags.NewManager("inquiries=off")

	createProviderRow(t, db, models.Provider{
		Slug: "active-co", Email: "a@e.com", BusinessName: "Active Co",
		Status: models.ProviderStatusActive,
	})

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		"/api/providers/active-co/inquiries", map[string]any{
			"name":    "Jordan",
			"email":   "jordan@example.com",
			"message": "Hello",
		}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProviderInbox(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	owner, ownerToken := createTestUser(t, db, models.UserRoleProvider)
	other, otherToken := createTestUser(t, db, models.UserRoleProvider)

	mine := createProviderRow(t, db, models.Provider{
		Slug: "mine-co", Email: "m@e.com", BusinessName: "Mine Co",
		Status: models.ProviderStatusActive, OwnerUserID: &owner.ID,
	})
	theirs := createProviderRow(t, db, models.Provider{
		Slug: "theirs-co", Email: "t@e.com", BusinessName: "Theirs Co",
		Status: models.ProviderStatusActive, OwnerUserID: &other.ID,
	})

	newInquiry := func(providerID uint) models.Inquiry {
		inquiry := models.Inquiry{
			ProviderID: providerID,
			Name:       "Visitor",
			Email:      "visitor@example.com",
			Message:    "Hello",
			Status:     models.InquiryStatusNew,
		}
		require.NoError(t, db.Create(&inquiry).Error)
		return inquiry
	}
	first := newInquiry(mine.ID)
	newInquiry(mine.ID)
	foreign := newInquiry(theirs.ID)

	t.Run("inbox lists own inquiries only", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet,
			"/api/providers/me/inquiries", nil, ownerToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Meta struct {
				Total int64 `json:"total"`
			} `json:"meta"`
			Data []models.Inquiry `json:"data"`
		}
		decodeBody(t, resp, &body)
		assert.EqualValues(t, 2, body.Meta.Total)
		for _, inquiry := range body.Data {
			assert.Equal(t, mine.ID, inquiry.ProviderID)
		}
	})

	t.Run("status filter validates", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet,
			"/api/providers/me/inquiries?status=BOGUS", nil, ownerToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("mark read then archive", func(t *testing.T) {
		path := fmt.Sprintf("/api/inquiries/%d", first.ID)

		resp, err := app.Test(jsonRequest(t, http.MethodPatch, path,
			map[string]any{"status": "READ"}, ownerToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var inquiry models.Inquiry
		decodeBody(t, resp, &inquiry)
		assert.Equal(t, models.InquiryStatusRead, inquiry.Status)

		resp, err = app.Test(jsonRequest(t, http.MethodPatch, path,
			map[string]any{"status": "archived"}, ownerToken))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		decodeBody(t, resp, &inquiry)
		assert.Equal(t, models.InquiryStatusArchived, inquiry.Status)
	})

	t.Run("archived is terminal", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPatch,
			fmt.Sprintf("/api/inquiries/%d", first.ID),
			map[string]any{"status": "NEW"}, ownerToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("cross-tenant update masked as missing", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPatch,
			fmt.Sprintf("/api/inquiries/%d", foreign.ID),
			map[string]any{"status": "READ"}, ownerToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown status value rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPatch,
			fmt.Sprintf("/api/inquiries/%d", foreign.ID),
			map[string]any{"status": "DELETED"}, otherToken))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
