package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/chichienterprises/safarbook/internal/domain"
)

// Config holds the EmailJS REST API configuration. The relay delivers
// contact-form inquiries to the agency mailbox through a template; no SMTP
// credentials live in this service.
type Config struct {
	BaseURL    string // https://api.emailjs.com
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	ToEmail    string // agency mailbox the template delivers to
}

// Client relays inquiries through the EmailJS send endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
}

// sendRequest is the EmailJS /api/v1.0/email/send body.
type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewClient creates a new mail relay client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.emailjs.com"
	}
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendInquiry delivers one stored inquiry to the agency mailbox.
func (c *Client) SendInquiry(ctx context.Context, inq *domain.Inquiry) error {
	url := c.config.BaseURL + "/api/v1.0/email/send"

	reqBody := sendRequest{
		ServiceID:   c.config.ServiceID,
		TemplateID:  c.config.TemplateID,
		UserID:      c.config.PublicKey,
		AccessToken: c.config.PrivateKey,
		TemplateParams: map[string]string{
			"reference_id": inq.ReferenceID,
			"from_name":    inq.Name,
			"from_email":   inq.Email,
			"subject":      inq.Subject,
			"message":      inq.Message,
			"to_email":     c.config.ToEmail,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[mailrelay] Relaying inquiry %s to %s", inq.ReferenceID, c.config.ToEmail)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// EmailJS answers 200 with the literal body "OK".
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail relay error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
