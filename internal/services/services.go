package services

import (
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/jobs"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Item         *ItemService
	Sale         *SaleService
	Customer     *CustomerService
	Installation *InstallationService
	Audit        *AuditService
	Statement    *StatementService
	Report       *ReportService
	Export       *ExportService
	Import       *ImportService
	Image        *ImageService
	Email        *EmailService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config) *Services {
	emailSvc := NewEmailService(cfg)
	customerSvc := NewCustomerService(repos.Customer)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		Item:         NewItemService(repos.Item, emailSvc, cfg),
		Sale:         NewSaleService(repos.Sale, repos.Item),
		Customer:     customerSvc,
		Installation: NewInstallationService(repos.Installation),
		Audit:        NewAuditService(repos.Audit),
		Statement:    NewStatementService(repos.Customer, repos.Sale, emailSvc, storage, worker, cfg),
		Report:       NewReportService(repos.Report, cfg),
		Export:       NewExportService(repos.Item, repos.Sale, repos.Installation, repos.Audit),
		Import:       NewImportService(repos.Item, repos.Import, customerSvc, storage),
		Image:        NewImageService(storage),
		Email:        emailSvc,
		Job:          NewJobService(worker),
	}
}
