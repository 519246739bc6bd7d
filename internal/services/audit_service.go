package services

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
)

// AuditService reads the item audit trail. Entries are written by the item, sale and
// installation repositories inside their own transactions.
type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List retrieves audit entries, newest first
func (s *AuditService) List(ctx context.Context, query *repository.AuditQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
