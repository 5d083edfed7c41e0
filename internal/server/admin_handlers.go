package server

import (
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListProviders handles GET /api/admin/providers
// @Summary List providers (admin)
// @Description Browse providers across all statuses with the same filters as the public listing, plus status
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status: pending, active, disabled"
// @Success 200 {object} object{meta=object,data=[]models.Provider}
// @Failure 400 {object} object{error=string}
// @Router /admin/providers [get]
func (s *Server) AdminListProviders(c *fiber.Ctx) error {
	q, err := parseProviderListQuery(c, true)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	page, err := s.providerService.List(c.Context(), q)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listingResponse(page, adminViewProviders(page.Providers)))
}

// AdminGetProvider handles GET /api/admin/providers/:id
// @Summary Get a provider by ID (admin)
// @Tags admin
// @Produce json
// @Param id path integer true "Provider ID"
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Router /admin/providers/{id} [get]
func (s *Server) AdminGetProvider(c *fiber.Ctx) error {
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	provider, getErr := s.providerRepo.GetByID(c.Context(), providerID)
	if getErr != nil {
		return models.RespondWithAppError(c, getErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// ApproveProvider handles POST /api/admin/providers/:id/approve
// @Summary Approve a provider
// @Description Move a provider to active and record the action
// @Tags admin
// @Produce json
// @Param id path integer true "Provider ID"
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Router /admin/providers/{id}/approve [post]
func (s *Server) ApproveProvider(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	provider, svcErr := s.moderationService.Approve(c.Context(), adminID, providerID)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// DisableProvider handles POST /api/admin/providers/:id/disable
// @Summary Disable a provider
// @Description Take a provider off the public listing; a reason is required
// @Tags admin
// @Accept json
// @Produce json
// @Param id path integer true "Provider ID"
// @Param request body object{reason=string} true "Takedown reason"
// @Success 200 {object} models.Provider
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/providers/{id}/disable [post]
func (s *Server) DisableProvider(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, svcErr := s.moderationService.Disable(c.Context(), adminID, providerID, req.Reason)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// EnableProvider handles POST /api/admin/providers/:id/enable
// @Summary Re-enable a disabled provider
// @Tags admin
// @Produce json
// @Param id path integer true "Provider ID"
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /admin/providers/{id}/enable [post]
func (s *Server) EnableProvider(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	provider, svcErr := s.moderationService.Enable(c.Context(), adminID, providerID)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// SetProviderPending handles POST /api/admin/providers/:id/pending
// @Summary Send a provider back to review
// @Description Move a provider to pending and record the action
// @Tags admin
// @Produce json
// @Param id path integer true "Provider ID"
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Router /admin/providers/{id}/pending [post]
func (s *Server) SetProviderPending(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	provider, svcErr := s.moderationService.SetPending(c.Context(), adminID, providerID)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// SetProviderVerified handles POST /api/admin/providers/:id/verify
// @Summary Grant or revoke the verified badge
// @Tags admin
// @Accept json
// @Produce json
// @Param id path integer true "Provider ID"
// @Param request body object{verified=boolean} true "Verified flag"
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Router /admin/providers/{id}/verify [post]
func (s *Server) SetProviderVerified(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.BodyParser(&req); err != nil || req.Verified == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A verified flag is required"))
	}

	provider, svcErr := s.moderationService.SetVerified(c.Context(), adminID, providerID, *req.Verified)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// AdminEditProvider handles PUT /api/admin/providers/:id
// @Summary Edit any provider field (admin)
// @Description Apply a partial update and record an EDIT action listing changed fields
// @Tags admin
// @Accept json
// @Produce json
// @Param id path integer true "Provider ID"
// @Param request body object{slug=string,email=string,business_name=string,tagline=string,city=string,state=string,zip=string,logo=string,notes=string,rating=number,services=[]string} true "Fields to update"
// @Success 200 {object} models.Provider
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /admin/providers/{id} [put]
func (s *Server) AdminEditProvider(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Slug         *string  `json:"slug"`
		Email        *string  `json:"email"`
		BusinessName *string  `json:"business_name"`
		Tagline      *string  `json:"tagline"`
		City         *string  `json:"city"`
		State        *string  `json:"state"`
		Zip          *string  `json:"zip"`
		Logo         *string  `json:"logo"`
		Notes        *string  `json:"notes"`
		Rating       *float64 `json:"rating"`
		Services     []string `json:"services"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, svcErr := s.moderationService.Edit(c.Context(), adminID, providerID, service.AdminEditInput{
		Slug:         req.Slug,
		Email:        req.Email,
		BusinessName: req.BusinessName,
		Tagline:      req.Tagline,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Logo:         req.Logo,
		Notes:        req.Notes,
		Rating:       req.Rating,
		Services:     req.Services,
	})
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(newAdminProviderView(*provider))
}

// GetProviderActions handles GET /api/admin/providers/:id/actions
// @Summary List moderation history for a provider
// @Tags admin
// @Produce json
// @Param id path integer true "Provider ID"
// @Success 200 {object} object{meta=object,data=[]models.AdminAction}
// @Router /admin/providers/{id}/actions [get]
func (s *Server) GetProviderActions(c *fiber.Ctx) error {
	providerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pag := parsePagination(c, 20)

	actions, total, listErr := s.adminActionRepo.ListForProvider(c.Context(), providerID, pag.Limit, pag.Offset)
	if listErr != nil {
		return models.RespondWithAppError(c, listErr)
	}
	return c.JSON(fiber.Map{
		"meta": fiber.Map{"total": total, "limit": pag.Limit, "offset": pag.Offset},
		"data": actions,
	})
}

// GetAdminActions handles GET /api/admin/actions
// @Summary List the full moderation audit log
// @Tags admin
// @Produce json
// @Success 200 {object} object{meta=object,data=[]models.AdminAction}
// @Router /admin/actions [get]
func (s *Server) GetAdminActions(c *fiber.Ctx) error {
	pag := parsePagination(c, 20)

	actions, total, err := s.adminActionRepo.List(c.Context(), pag.Limit, pag.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"meta": fiber.Map{"total": total, "limit": pag.Limit, "offset": pag.Offset},
		"data": actions,
	})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary View configured feature flags
// @Tags admin
// @Produce json
// @Success 200 {object} object{flags=object}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.Raw()})
}
