package domain

import (
	"context"
	"time"
)

// Inquiry is a contact-form message from a visitor.
type Inquiry struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ReferenceID string    `bson:"reference_id" json:"referenceId"`
	Name        string    `bson:"name" json:"name"`
	Email       string    `bson:"email" json:"email"`
	Subject     string    `bson:"subject" json:"subject"`
	Message     string    `bson:"message" json:"message"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// InquiryRepository stores contact-form inquiries.
type InquiryRepository interface {
	Create(ctx context.Context, inq *Inquiry) error
	List(ctx context.Context) ([]*Inquiry, error)
}

// Mailer relays an inquiry to the agency mailbox.
type Mailer interface {
	SendInquiry(ctx context.Context, inq *Inquiry) error
}
