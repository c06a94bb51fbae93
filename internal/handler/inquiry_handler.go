package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/chichienterprises/safarbook/internal/service"
)

// InquiryHandler handles the public contact form.
type InquiryHandler struct {
	inquiries *service.InquiryService
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// Submit handles POST /v1/inquiries
func (h *InquiryHandler) Submit(c *fiber.Ctx) error {
	var req service.InquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	inq, err := h.inquiries.Submit(c.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": verr.Message,
				"field": verr.Field,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference_id": inq.ReferenceID,
		"message":      "Thank you! We will get back to you shortly.",
	})
}
