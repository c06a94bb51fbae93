package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/service"
)

// CatalogHandler serves the public package listings.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /v1/packages/:type. Filter criteria come in as query
// params; numeric ones are sanitized to digit strings before filtering so
// "Rs 500,000" and "500000" constrain identically.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pkgs, err := h.catalog.Load(c.Context(), variant)
	if err != nil {
		return fetchErrResponse(c, err)
	}

	criteria := domain.Criteria{
		PriceMax:          domain.SanitizeNumeric(c.Query("priceMax")),
		Duration:          domain.SanitizeNumeric(c.Query("duration")),
		DaysInMakkah:      domain.SanitizeNumeric(c.Query("daysInMakkah")),
		DaysInMadinah:     domain.SanitizeNumeric(c.Query("daysInMadinah")),
		DistanceMakkahMax: domain.SanitizeNumeric(c.Query("distanceMakkahMax")),
		VisaIncluded:      c.Query("visaIncluded"),
		Transport:         c.Query("transport"),
	}

	filtered := domain.Apply(pkgs, criteria)
	return c.JSON(fiber.Map{
		"packages": filtered,
		"total":    len(filtered),
	})
}

// Get handles GET /v1/packages/:type/:id
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pkg, err := h.catalog.Get(c.Context(), variant, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
		}
		return fetchErrResponse(c, err)
	}
	return c.JSON(pkg)
}

// fetchErrResponse maps the read-side error conditions onto HTTP statuses.
func fetchErrResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrFetchTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrFetchDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
}
