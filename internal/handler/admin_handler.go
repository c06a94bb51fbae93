package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/service"
)

// AdminHandler handles the authenticated package-management endpoints.
type AdminHandler struct {
	editors   *service.EditorService
	catalog   *service.CatalogService
	inquiries *service.InquiryService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(editors *service.EditorService, catalog *service.CatalogService, inquiries *service.InquiryService) *AdminHandler {
	return &AdminHandler{
		editors:   editors,
		catalog:   catalog,
		inquiries: inquiries,
	}
}

// Fields handles GET /v1/admin/packages/:type/fields and returns the
// ordered editor schema the form renders from.
func (h *AdminHandler) Fields(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"fields": domain.FieldsFor(variant)})
}

// Create handles POST /v1/admin/packages/:type. The body is a multipart
// form: text fields address draft fields, file fields carry hotel images.
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ed := h.editors.NewEditor()
	ed.Begin(variant)

	pkg, err := h.runEditor(c, ed)
	if err != nil {
		return saveErrResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

// Update handles PUT /v1/admin/packages/:type/:id. Only the fields present
// in the form change; everything else is carried over from the stored
// package, including its creation timestamp.
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	existing, err := h.catalog.Get(c.Context(), variant, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
		}
		return fetchErrResponse(c, err)
	}

	ed := h.editors.NewEditor()
	ed.Edit(existing)

	pkg, err := h.runEditor(c, ed)
	if err != nil {
		return saveErrResponse(c, err)
	}
	return c.JSON(pkg)
}

// Delete handles DELETE /v1/admin/packages/:type/:id
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.editors.Delete(c.Context(), variant, c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
		}
		return saveErrResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// Refresh handles POST /v1/admin/catalog/:type/refresh and forces a live
// re-read past the cache.
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	variant, err := domain.ParseVariant(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pkgs, err := h.catalog.Refresh(c.Context(), variant)
	if err != nil {
		return fetchErrResponse(c, err)
	}
	return c.JSON(fiber.Map{"packages": pkgs, "total": len(pkgs)})
}

// ListInquiries handles GET /v1/admin/inquiries
func (h *AdminHandler) ListInquiries(c *fiber.Ctx) error {
	inqs, err := h.inquiries.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"inquiries": inqs, "total": len(inqs)})
}

// runEditor feeds the multipart form through the editor and submits.
func (h *AdminHandler) runEditor(c *fiber.Ctx, ed *service.Editor) (*domain.Package, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, &domain.ValidationError{Field: "", Message: "expected multipart form body"}
	}

	for field, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		if err := ed.SetField(field, values[0]); err != nil {
			return nil, &domain.ValidationError{Field: field, Message: err.Error()}
		}
	}

	for field, headers := range form.File {
		madinah := field == "madinahHotelImages"
		if !madinah && field != "makkahHotelImages" {
			return nil, &domain.ValidationError{Field: field, Message: "unknown image field"}
		}
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				return nil, &domain.ValidationError{Field: field, Message: "unreadable upload"}
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, &domain.ValidationError{Field: field, Message: "unreadable upload"}
			}
			if err := ed.AttachImage(domain.PendingImage{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
				Madinah:     madinah,
			}); err != nil {
				return nil, err
			}
		}
	}

	return ed.Submit(c.Context())
}

// saveErrResponse maps the write-side error conditions onto HTTP statuses.
func saveErrResponse(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, domain.ErrSaveDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrSaveFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
