package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/pkg/logger"
	"gorm.io/gorm"
)

// SaleInput identifies the item either by ID or by name (plus category when the name is ambiguous)
type SaleInput struct {
	ItemID     uint
	ItemName   string
	Category   string
	Quantity   int
	CustomerID *uint
	Date       *time.Time
}

type SaleService struct {
	repo     repository.SaleRepository
	itemRepo repository.ItemRepository
}

func NewSaleService(repo repository.SaleRepository, itemRepo repository.ItemRepository) *SaleService {
	return &SaleService{repo: repo, itemRepo: itemRepo}
}

func (s *SaleService) List(ctx context.Context, query *repository.SaleQuery) ([]models.Sale, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *SaleService) FindByID(ctx context.Context, id uint) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Sale")
	}
	return sale, nil
}

// ForCustomer returns a customer's sales within period, oldest first
func (s *SaleService) ForCustomer(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error) {
	return s.repo.FindByCustomer(ctx, customerID, period)
}

// Record sells in.Quantity units. Stock is checked and decremented together with the
// sale insert and its audit entry; on insufficient stock nothing changes.
func (s *SaleService) Record(ctx context.Context, in SaleInput, user string) (*models.Sale, error) {
	if in.Quantity < 1 {
		return nil, invalid("Quantity must be at least 1.")
	}

	itemID, err := s.resolveItem(ctx, in)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if in.Date != nil {
		date = in.Date.UTC()
	}

	sale := &models.Sale{
		ItemID:     &itemID,
		Quantity:   in.Quantity,
		CustomerID: in.CustomerID,
		Date:       date,
		User:       user,
	}

	if err := s.repo.Record(ctx, sale); err != nil {
		var refErr *repository.MissingReferenceError
		if errors.As(err, &refErr) {
			return nil, notFound("%s", refErr.Error())
		}
		return nil, translate(err, "Item")
	}

	logger.Info("Sale recorded", "sale_id", sale.ID, "item", sale.ItemName, "quantity", sale.Quantity, "profit", sale.Profit.StringFixed(2), "user", user)
	return sale, nil
}

func (s *SaleService) resolveItem(ctx context.Context, in SaleInput) (uint, error) {
	if in.ItemID != 0 {
		return in.ItemID, nil
	}

	name := strings.TrimSpace(in.ItemName)
	if name == "" {
		return 0, invalid("Item is required.")
	}

	category := strings.TrimSpace(in.Category)
	if category != "" {
		item, err := s.itemRepo.FindByNameAndCategory(ctx, name, category)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, notFound("Item '%s' in category '%s' not found.", name, category)
		}
		if err != nil {
			return 0, err
		}
		return item.ID, nil
	}

	items, err := s.itemRepo.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	switch len(items) {
	case 0:
		return 0, notFound("Item '%s' not found.", name)
	case 1:
		return items[0].ID, nil
	}
	return 0, invalid("Item '%s' exists in %d categories; choose a category.", name, len(items))
}
