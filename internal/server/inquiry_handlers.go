package server

import (
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateInquiry handles POST /api/providers/:slug/inquiries
// @Summary Send an inquiry to a provider
// @Description Submit a visitor inquiry against an active provider
// @Tags inquiries
// @Accept json
// @Produce json
// @Param slug path string true "Provider slug"
// @Param request body object{name=string,email=string,phone=string,message=string} true "Inquiry"
// @Success 201 {object} models.Inquiry
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /providers/{slug}/inquiries [post]
func (s *Server) CreateInquiry(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled("inquiries", 0) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Resource", c.Path()))
	}

	slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	inquiry, err := s.inquiryService.Create(c.Context(), service.CreateInquiryInput{
		ProviderSlug: slug,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inquiry)
}

// GetMyInquiries handles GET /api/providers/me/inquiries
// @Summary List own inbox
// @Description List inquiries for the provider owned by the current user
// @Tags inquiries
// @Produce json
// @Param status query string false "Filter by status: NEW, READ, ARCHIVED"
// @Param limit query integer false "Page size" default(20)
// @Param offset query integer false "Offset" default(0)
// @Success 200 {object} object{meta=object,data=[]models.Inquiry}
// @Failure 404 {object} object{error=string}
// @Router /providers/me/inquiries [get]
func (s *Server) GetMyInquiries(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pag := parsePagination(c, 20)

	var status *models.InquiryStatus
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		switch st := models.InquiryStatus(raw); st {
		case models.InquiryStatusNew, models.InquiryStatusRead, models.InquiryStatusArchived:
			status = &st
		default:
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid status, expected NEW, READ, or ARCHIVED"))
		}
	}

	inquiries, total, err := s.inquiryService.ListForOwner(c.Context(), userID, status, pag.Limit, pag.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"meta": fiber.Map{
			"total":  total,
			"limit":  pag.Limit,
			"offset": pag.Offset,
		},
		"data": inquiries,
	})
}

// UpdateInquiryStatus handles PATCH /api/inquiries/:id
// @Summary Update inquiry status
// @Description Move an inquiry between NEW, READ, and ARCHIVED
// @Tags inquiries
// @Accept json
// @Produce json
// @Param id path integer true "Inquiry ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Inquiry
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /inquiries/{id} [patch]
func (s *Server) UpdateInquiryStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	inquiryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	status := models.InquiryStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case models.InquiryStatusNew, models.InquiryStatusRead, models.InquiryStatusArchived:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid status, expected NEW, READ, or ARCHIVED"))
	}

	inquiry, svcErr := s.inquiryService.SetStatus(c.Context(), userID, inquiryID, status)
	if svcErr != nil {
		return models.RespondWithAppError(c, svcErr)
	}
	return c.JSON(inquiry)
}
