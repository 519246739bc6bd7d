package services

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeMailer) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "test"}, nil
}

func TestEmailService_checkEmailPreconditions(t *testing.T) {
	logger.Setup("test")

	// Configured and valid
	service := NewEmailService(&config.Config{ResendAPIKey: "test_key", FromEmail: "from@example.com"})
	ok, err := service.checkEmailPreconditions("test@example.com", "test operation")
	assert.True(t, ok, "Should return true when properly configured")
	assert.Nil(t, err)

	// Missing key
	service = NewEmailService(&config.Config{FromEmail: "from@example.com"})
	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RESEND_API_KEY is not set")

	// Missing sender
	service = NewEmailService(&config.Config{ResendAPIKey: "test_key"})
	ok, err = service.checkEmailPreconditions("test@example.com", "test operation")
	assert.False(t, ok)
	assert.EqualError(t, err, "FROM_EMAIL is not set")

	// Empty recipient
	service = NewEmailService(&config.Config{ResendAPIKey: "test_key", FromEmail: "from@example.com"})
	ok, err = service.checkEmailPreconditions("  ", "test operation")
	assert.False(t, ok)
	assert.Equal(t, "email address is empty", err.Error())
}

func TestEmailService_SendStatementAttachesPDF(t *testing.T) {
	fake := &fakeMailer{}
	service := NewEmailService(&config.Config{ResendAPIKey: "k", FromEmail: "shop@example.com", BusinessName: "Alpha CJ Solar"})
	service.mailer = fake

	customer := &models.Customer{Name: "JUAN DELA CRUZ", Email: "JUAN@EXAMPLE.COM"}
	err := service.SendStatement(context.Background(), customer, []byte("%PDF-1.3"), "statement_customer_1_JUAN_DELA_CRUZ.pdf", "2024-01-01 to 2024-01-31")
	require.NoError(t, err)

	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]
	assert.Equal(t, []string{"juan@example.com"}, msg.To)
	assert.Contains(t, msg.Html, "JUAN DELA CRUZ")
	assert.Contains(t, msg.Html, "2024-01-01 to 2024-01-31")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "statement_customer_1_JUAN_DELA_CRUZ.pdf", msg.Attachments[0].Filename)
}

func TestEmailService_SendLowStockAlert(t *testing.T) {
	fake := &fakeMailer{}
	service := NewEmailService(&config.Config{ResendAPIKey: "k", FromEmail: "shop@example.com", StockAlertThreshold: 2})
	service.mailer = fake

	items := []models.Item{{Name: "Battery 100Ah", Category: "Batteries", Quantity: 1}}
	require.NoError(t, service.SendLowStockAlert(context.Background(), "owner@example.com", items))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "Low stock alert (1 items)", fake.sent[0].Subject)
	assert.Contains(t, fake.sent[0].Html, "Battery 100Ah")

	fake.err = errors.New("rate limited")
	assert.Error(t, service.SendLowStockAlert(context.Background(), "owner@example.com", items))
}
