package services

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService builds the sendgrid client from the environment. When no
// API key is configured the service is disabled and sends become no-ops.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return &EmailService{}
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Edudel"
	}

	return &EmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Enabled reports whether outgoing email is configured
func (s *EmailService) Enabled() bool {
	return s.client != nil
}

// SendWelcomeEmail greets a newly registered user. Best effort: failures are
// logged, never surfaced to the signup request.
func (s *EmailService) SendWelcomeEmail(userEmail, userName string) {
	if !s.Enabled() {
		return
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(userName, userEmail)
	subject := "Welcome to Edudel"
	plainContent := fmt.Sprintf("Hi %s, your Edudel account is ready.", userName)
	htmlContent := fmt.Sprintf("<p>Hi %s, your Edudel account is ready.</p>", userName)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	if _, err := s.client.Send(message); err != nil {
		log.Printf("failed to send welcome email to %s: %v", userEmail, err)
	}
}
