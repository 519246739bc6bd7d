package services

import (
	"context"
	"errors"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/pkg/logger"
	"gorm.io/gorm"
)

type CustomerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *CustomerService) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Customer")
	}
	return customer, nil
}

// Create adds a customer. Name, email and address are stored upper-cased.
func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	customer.Normalize()
	if customer.Name == "" {
		return invalid("Customer name is required.")
	}

	_, err := s.repo.FindByName(ctx, customer.Name)
	switch {
	case err == nil:
		return duplicate("Customer '%s' already exists.", customer.Name)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return duplicate("Customer '%s' already exists.", customer.Name)
		}
		return err
	}

	logger.Info("Customer created", "customer_id", customer.ID, "name", customer.Name)
	return nil
}

// Delete removes the customer and its installations. Its sales are kept unlinked.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "Customer")
	}
	logger.Info("Customer deleted", "customer_id", id)
	return nil
}

func (s *CustomerService) DeleteAll(ctx context.Context, confirm string) (int64, error) {
	if confirm != ConfirmationPhrase {
		return 0, invalid("Type %s to confirm deleting all customers.", ConfirmationPhrase)
	}
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Warn("All customers deleted", "count", deleted)
	return deleted, nil
}
