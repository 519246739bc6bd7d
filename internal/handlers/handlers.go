package handlers

import (
	"github.com/sjperalta/solarstock-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Item         *ItemHandler
	Sale         *SaleHandler
	Customer     *CustomerHandler
	Installation *InstallationHandler
	Report       *ReportHandler
	Audit        *AuditHandler
	Import       *ImportHandler
	Settings     *SettingsHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		Item:         NewItemHandler(svcs.Item, svcs.Export),
		Sale:         NewSaleHandler(svcs.Sale, svcs.Export),
		Customer:     NewCustomerHandler(svcs.Customer, svcs.Sale, svcs.Installation, svcs.Statement, svcs.Export),
		Installation: NewInstallationHandler(svcs.Installation, svcs.Export),
		Report:       NewReportHandler(svcs.Report),
		Audit:        NewAuditHandler(svcs.Audit, svcs.Export),
		Import:       NewImportHandler(svcs.Import),
		Settings:     NewSettingsHandler(svcs.Image),
		Job:          NewJobHandler(svcs.Job),
	}
}
