package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// mailer is the part of the Resend client used here
type mailer interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	config *config.Config
	mailer mailer
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config: cfg,
		mailer: client.Emails,
	}
}

// checkEmailPreconditions reports whether a message can be sent to the address.
// A missing API key or sender is a configuration error.
func (s *EmailService) checkEmailPreconditions(to, operation string) (bool, error) {
	if s.config.ResendAPIKey == "" {
		logger.Warn("Email skipped", "operation", operation, "reason", "RESEND_API_KEY is not set")
		return false, errors.New("RESEND_API_KEY is not set")
	}
	if s.config.FromEmail == "" {
		logger.Warn("Email skipped", "operation", operation, "reason", "FROM_EMAIL is not set")
		return false, errors.New("FROM_EMAIL is not set")
	}
	if strings.TrimSpace(to) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

// SendStatement mails a statement of account PDF to the customer
func (s *EmailService) SendStatement(ctx context.Context, customer *models.Customer, pdf []byte, filename, period string) error {
	to := strings.ToLower(customer.Email)
	if ok, err := s.checkEmailPreconditions(to, "statement"); !ok {
		return err
	}

	data := struct {
		Name         string
		Period       string
		BusinessName string
	}{
		Name:         customer.Name,
		Period:       period,
		BusinessName: s.config.BusinessName,
	}

	body, err := s.renderTemplate("statement.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Statement of Account - %s", s.config.BusinessName)
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
		Attachments: []*resend.Attachment{
			{Content: pdf, Filename: filename},
		},
	}
	if _, err := s.mailer.Send(params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

type lowStockRow struct {
	Item     string
	Category string
	Quantity int
	Unit     string
}

// SendLowStockAlert mails the list of items below the alert threshold
func (s *EmailService) SendLowStockAlert(ctx context.Context, to string, items []models.Item) error {
	if ok, err := s.checkEmailPreconditions(to, "low stock alert"); !ok {
		return err
	}

	rows := make([]lowStockRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, lowStockRow{
			Item:     item.Name,
			Category: item.Category,
			Quantity: item.Quantity,
			Unit:     item.UnitLabel(),
		})
	}

	data := struct {
		BusinessName string
		Threshold    int
		Items        []lowStockRow
	}{
		BusinessName: s.config.BusinessName,
		Threshold:    s.config.StockAlertThreshold,
		Items:        rows,
	}

	body, err := s.renderTemplate("low_stock_alert.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Low stock alert (%d items)", len(items))
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.mailer.Send(params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
