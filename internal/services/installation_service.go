package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

// InstallationInput describes units installed at a customer's site
type InstallationInput struct {
	CustomerID  uint
	ItemID      uint
	Quantity    int
	InstalledBy string
	Date        *time.Time
}

type InstallationService struct {
	repo repository.InstallationRepository
}

func NewInstallationService(repo repository.InstallationRepository) *InstallationService {
	return &InstallationService{repo: repo}
}

func (s *InstallationService) List(ctx context.Context, query *repository.InstallationQuery) ([]models.Installation, int64, error) {
	return s.repo.List(ctx, query)
}

// Record takes the installed units from stock and stores the installation.
// The returned message confirms what was recorded.
func (s *InstallationService) Record(ctx context.Context, in InstallationInput, user string) (*models.Installation, string, error) {
	if in.CustomerID == 0 {
		return nil, "", invalid("Customer is required.")
	}
	if in.ItemID == 0 {
		return nil, "", invalid("Item is required.")
	}
	if in.Quantity < 1 {
		return nil, "", invalid("Quantity must be at least 1.")
	}

	installedBy := strings.TrimSpace(in.InstalledBy)
	if installedBy == "" {
		installedBy = user
	}

	date := time.Now().UTC()
	if in.Date != nil {
		date = in.Date.UTC()
	}

	itemID := in.ItemID
	installation := &models.Installation{
		CustomerID:  in.CustomerID,
		ItemID:      &itemID,
		Quantity:    in.Quantity,
		InstalledBy: installedBy,
		Date:        date,
	}

	if err := s.repo.Record(ctx, installation, user); err != nil {
		var refErr *repository.MissingReferenceError
		if errors.As(err, &refErr) {
			return nil, "", notFound("%s", refErr.Error())
		}
		return nil, "", translate(err, "Item")
	}

	msg := fmt.Sprintf("Installation recorded: Item %d, Quantity %d, for Customer %d on %s by %s.",
		in.ItemID, in.Quantity, in.CustomerID, date.Format("2006-01-02"), installedBy)
	logger.Info(msg, "installation_id", installation.ID, "user", user)
	return installation, msg, nil
}

// Delete removes an installation record. Stock is not restored.
func (s *InstallationService) Delete(ctx context.Context, id uint) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", translate(err, fmt.Sprintf("Installation ID %d", id))
	}
	return fmt.Sprintf("Installation ID %d deleted successfully.", id), nil
}
