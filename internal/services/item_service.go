package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

// ConfirmationPhrase must be typed to run a bulk delete
const ConfirmationPhrase = "DELETE"

// ItemInput is an add-or-update request for one (item, category)
type ItemInput struct {
	Name         string
	Category     string
	Quantity     int
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	Unit         *string
}

type ItemService struct {
	repo     repository.ItemRepository
	emailSvc *EmailService
	cfg      *config.Config
}

func NewItemService(repo repository.ItemRepository, emailSvc *EmailService, cfg *config.Config) *ItemService {
	return &ItemService{repo: repo, emailSvc: emailSvc, cfg: cfg}
}

func (s *ItemService) List(ctx context.Context, query *repository.ListQuery) ([]models.Item, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *ItemService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *ItemService) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Item")
	}
	return item, nil
}

// LowStock lists items below threshold. A negative threshold uses the configured one.
func (s *ItemService) LowStock(ctx context.Context, threshold int) ([]models.Item, error) {
	if threshold < 0 {
		threshold = s.cfg.StockAlertThreshold
	}
	return s.repo.LowStock(ctx, threshold)
}

// AddOrUpdate inserts a new item or adds stock to an existing one, replacing its prices.
// It returns the stored item and the audit action taken.
func (s *ItemService) AddOrUpdate(ctx context.Context, in ItemInput, user string) (*models.Item, string, error) {
	item := &models.Item{
		Name:         in.Name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		SellingPrice: in.SellingPrice,
		Unit:         in.Unit,
	}
	item.Normalize()

	if err := validateItem(item); err != nil {
		return nil, "", err
	}
	if item.Quantity < 1 {
		return nil, "", invalid("Quantity must be at least 1.")
	}

	action, err := s.repo.Upsert(ctx, item, user)
	if err != nil {
		return nil, "", err
	}

	logger.Info("Item saved", "item", item.Name, "category", item.Category, "action", action, "user", user)
	return item, action, nil
}

// Delete removes an item and returns its last values
func (s *ItemService) Delete(ctx context.Context, id uint, user string) (*models.Item, error) {
	item, err := s.repo.Delete(ctx, id, user)
	if err != nil {
		return nil, translate(err, "Item")
	}
	logger.Info("Item deleted", "item", item.Name, "category", item.Category, "user", user)
	return item, nil
}

// DeleteAll empties the inventory when confirm equals ConfirmationPhrase
func (s *ItemService) DeleteAll(ctx context.Context, confirm, user string) (int64, error) {
	if confirm != ConfirmationPhrase {
		return 0, invalid("Type %s to confirm deleting all items.", ConfirmationPhrase)
	}
	deleted, err := s.repo.DeleteAll(ctx, user)
	if err != nil {
		return 0, err
	}
	logger.Warn("All items deleted", "count", deleted, "user", user)
	return deleted, nil
}

// CheckLowStock logs every item under the configured threshold and mails an alert
// when an alert address is set. It returns the number of low items.
func (s *ItemService) CheckLowStock(ctx context.Context) (int, error) {
	items, err := s.repo.LowStock(ctx, s.cfg.StockAlertThreshold)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		logger.Warn("Low stock", "item", item.Name, "category", item.Category, "quantity", item.Quantity)
	}

	if len(items) > 0 && s.cfg.AlertEmail != "" && s.emailSvc != nil {
		if err := s.emailSvc.SendLowStockAlert(ctx, s.cfg.AlertEmail, items); err != nil {
			return len(items), err
		}
	}
	return len(items), nil
}

// validateItem checks the fields shared by manual entry and imports
func validateItem(item *models.Item) error {
	if item.Name == "" {
		return invalid("Item name is required.")
	}
	if item.Category == "" {
		return invalid("Category is required.")
	}
	if item.Quantity < 0 {
		return invalid("Quantity cannot be negative.")
	}
	if item.UnitCost.IsNegative() || item.SellingPrice.IsNegative() {
		return invalid("Prices cannot be negative.")
	}
	return nil
}
