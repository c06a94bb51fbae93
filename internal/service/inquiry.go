package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chichienterprises/safarbook/internal/domain"
	"github.com/oklog/ulid/v2"
)

// InquiryService stores contact-form inquiries and relays them to the
// agency mailbox.
type InquiryService struct {
	repo   domain.InquiryRepository
	mailer domain.Mailer
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(repo domain.InquiryRepository, mailer domain.Mailer) *InquiryService {
	return &InquiryService{
		repo:   repo,
		mailer: mailer,
	}
}

// InquiryRequest is a visitor's contact-form submission.
type InquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit validates and persists the inquiry, then relays it by email. The
// relay is best effort: the inquiry is already stored, so a mail failure is
// logged rather than returned.
func (s *InquiryService) Submit(ctx context.Context, req InquiryRequest) (*domain.Inquiry, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return nil, &domain.ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, &domain.ValidationError{Field: "message", Message: "message is required"}
	}

	inq := &domain.Inquiry{
		ReferenceID: ulid.Make().String(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
	}

	if err := s.repo.Create(ctx, inq); err != nil {
		return nil, fmt.Errorf("failed to store inquiry: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendInquiry(ctx, inq); err != nil {
			log.Printf("Warning: failed to relay inquiry %s by email: %v", inq.ReferenceID, err)
		}
	}

	return inq, nil
}

// List returns stored inquiries, newest first.
func (s *InquiryService) List(ctx context.Context) ([]*domain.Inquiry, error) {
	return s.repo.List(ctx)
}
