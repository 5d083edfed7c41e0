package server

import (
	"strconv"
	"strings"

	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/repository"
	"github.com/abdanbarkaath/marketlink/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseProviderListQuery translates listing query parameters into a typed
// query. Unknown enum values (sort, order, match, status) are rejected;
// malformed numerics silently fall back to defaults so a sloppy page=abc
// still returns page one instead of an error.
func parseProviderListQuery(c *fiber.Ctx, privileged bool) (repository.ProviderListQuery, error) {
	q := repository.NewPublicListQuery()
	if privileged {
		q = repository.NewAdminListQuery()
	}

	if name := strings.TrimSpace(c.Query("name")); name != "" {
		q.Filters = append(q.Filters, repository.NameContains(name))
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		q.Filters = append(q.Filters, repository.CityPrefix(city))
	}

	if raw := strings.TrimSpace(c.Query("service")); raw != "" {
		mode := repository.MatchAny
		switch strings.ToLower(strings.TrimSpace(c.Query("match", "any"))) {
		case "any":
		case "all":
			mode = repository.MatchAll
		default:
			return q, models.NewValidationError("Invalid match mode, expected any or all")
		}
		q.Filters = append(q.Filters, repository.ServiceMatch{
			Mode: mode,
			Tags: strings.Split(raw, ","),
		})
	}

	if raw := c.Query("minRating"); raw != "" {
		if rating, err := strconv.ParseFloat(raw, 64); err == nil && rating > 0 {
			q.Filters = append(q.Filters, repository.RatingAtLeast(rating))
		}
	}
	if raw := c.Query("verified"); raw != "" {
		if verified, err := strconv.ParseBool(raw); err == nil {
			q.Filters = append(q.Filters, repository.VerifiedEquals(verified))
		}
	}

	if privileged {
		if raw := strings.ToLower(strings.TrimSpace(c.Query("status"))); raw != "" {
			switch models.ProviderStatus(raw) {
			case models.ProviderStatusPending, models.ProviderStatusActive, models.ProviderStatusDisabled:
				q.Filters = append(q.Filters, repository.StatusEquals(raw))
			default:
				return q, models.NewValidationError("Invalid status, expected pending, active, or disabled")
			}
		}
	}

	switch key := repository.ProviderSortKey(strings.ToLower(c.Query("sort", string(repository.SortNewest)))); key {
	case repository.SortNewest, repository.SortName, repository.SortRating, repository.SortVerified:
		q.Sort = key
	default:
		return q, models.NewValidationError("Invalid sort key, expected newest, name, rating, or verified")
	}

	if raw := strings.ToLower(strings.TrimSpace(c.Query("order"))); raw != "" {
		switch order := repository.SortOrder(raw); order {
		case repository.OrderAsc, repository.OrderDesc:
			q.Order = order
		default:
			return q, models.NewValidationError("Invalid order, expected asc or desc")
		}
	} else {
		q.Order = ""
	}

	q.Page = c.QueryInt("page", 1)
	q.Limit = c.QueryInt("limit", repository.DefaultPageLimit)
	return q.Normalize(), nil
}

func listingResponse(page *repository.ProviderPage, data any) fiber.Map {
	return fiber.Map{
		"meta": fiber.Map{
			"total":      page.Total,
			"page":       page.Page,
			"limit":      page.Limit,
			"totalPages": page.TotalPages(),
			"sort":       page.Sort,
			"order":      page.Order,
		},
		"data": data,
	}
}

// ListProviders handles GET /api/providers
// @Summary List providers
// @Description Browse active providers with filters, sorting, and pagination
// @Tags providers
// @Produce json
// @Param name query string false "Substring match on business name"
// @Param city query string false "Prefix match on city"
// @Param service query string false "Comma-separated service tags"
// @Param match query string false "Tag match mode: any or all" default(any)
// @Param minRating query number false "Minimum rating"
// @Param verified query boolean false "Filter by verified badge"
// @Param sort query string false "Sort key: newest, name, rating, verified" default(newest)
// @Param order query string false "Sort order: asc or desc" default(desc)
// @Param page query integer false "Page number" default(1)
// @Param limit query integer false "Page size, max 50" default(20)
// @Success 200 {object} object{meta=object,data=[]models.Provider}
// @Failure 400 {object} object{error=string}
// @Router /providers [get]
func (s *Server) ListProviders(c *fiber.Ctx) error {
	q, err := parseProviderListQuery(c, false)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	page, err := s.providerService.List(c.Context(), q)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listingResponse(page, summarizeProviders(page.Providers)))
}

// GetProviderBySlug handles GET /api/providers/:slug
// @Summary Get a provider by slug
// @Description Return the detail page data for an active provider; owners also see their own pending or disabled listing
// @Tags providers
// @Produce json
// @Param slug path string true "Provider slug"
// @Success 200 {object} object
// @Failure 404 {object} object{error=string}
// @Router /providers/{slug} [get]
func (s *Server) GetProviderBySlug(c *fiber.Ctx) error {
	slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug is required"))
	}

	provider, err := s.providerService.GetBySlug(c.Context(), slug, s.optionalUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newProviderDetail(*provider))
}

// OnboardProvider handles POST /api/providers
// @Summary Create a provider listing
// @Description Onboard a new provider in pending status for the current user
// @Tags providers
// @Accept json
// @Produce json
// @Param request body object{business_name=string,email=string,tagline=string,city=string,state=string,zip=string,logo=string,services=[]string} true "Provider details"
// @Success 201 {object} models.Provider
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /providers [post]
func (s *Server) OnboardProvider(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		BusinessName string   `json:"business_name"`
		Email        string   `json:"email"`
		Tagline      string   `json:"tagline"`
		City         string   `json:"city"`
		State        string   `json:"state"`
		Zip          string   `json:"zip"`
		Logo         string   `json:"logo"`
		Services     []string `json:"services"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, err := s.providerService.Onboard(c.Context(), service.OnboardProviderInput{
		OwnerUserID:  userID,
		BusinessName: req.BusinessName,
		Email:        req.Email,
		Tagline:      req.Tagline,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Logo:         req.Logo,
		Services:     req.Services,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProviderDetail(*provider))
}

// GetMyProvider handles GET /api/providers/me
// @Summary Get own provider listing
// @Tags providers
// @Produce json
// @Success 200 {object} models.Provider
// @Failure 404 {object} object{error=string}
// @Router /providers/me [get]
func (s *Server) GetMyProvider(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	provider, err := s.providerService.GetOwn(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newProviderDetail(*provider))
}

// UpdateMyProvider handles PUT /api/providers/me
// @Summary Update own provider listing
// @Description Edit owner-editable fields; status and verification stay untouched
// @Tags providers
// @Accept json
// @Produce json
// @Param request body object{business_name=string,tagline=string,city=string,state=string,zip=string,logo=string,services=[]string} true "Fields to update"
// @Success 200 {object} models.Provider
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /providers/me [put]
func (s *Server) UpdateMyProvider(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		BusinessName *string  `json:"business_name"`
		Tagline      *string  `json:"tagline"`
		City         *string  `json:"city"`
		State        *string  `json:"state"`
		Zip          *string  `json:"zip"`
		Logo         *string  `json:"logo"`
		Services     []string `json:"services"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, err := s.providerService.UpdateOwn(c.Context(), userID, service.UpdateOwnProviderInput{
		BusinessName: req.BusinessName,
		Tagline:      req.Tagline,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Logo:         req.Logo,
		Services:     req.Services,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(newProviderDetail(*provider))
}
