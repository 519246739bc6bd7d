package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/solarstock-api/internal/middleware"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
	"github.com/sjperalta/solarstock-api/internal/storage"
)

type InstallationHandler struct {
	installationService *services.InstallationService
	exportService       *services.ExportService
}

func NewInstallationHandler(installationService *services.InstallationService, exportService *services.ExportService) *InstallationHandler {
	return &InstallationHandler{installationService: installationService, exportService: exportService}
}

type InstallationRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"required"`
	ItemID      uint   `json:"item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	InstalledBy string `json:"installed_by"`
	Date        string `json:"date"`
}

// @Summary List Installations
// @Description Newest first, optionally filtered by customer and date range
// @Tags Installations
// @Produce json
// @Param customer_id query int false "Customer ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installations [get]
func (h *InstallationHandler) Index(c *gin.Context) {
	customerID, ok := optionalID(c, "customer_id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	query := listQuery(c)
	installations, total, err := h.installationService.List(c.Request.Context(), &repository.InstallationQuery{
		ListQuery:  query,
		CustomerID: customerID,
		Period:     period,
	})
	if err != nil {
		respondError(c, err, "Error loading installations")
		return
	}

	responses := make([]models.InstallationResponse, 0, len(installations))
	for i := range installations {
		responses = append(responses, installations[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"installations": responses, "pagination": pagination(query, total)})
}

// @Summary Record Installation
// @Description Takes the installed units from stock. installed_by defaults to the acting user.
// @Tags Installations
// @Accept json
// @Produce json
// @Param request body InstallationRequest true "Installation"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installations [post]
func (h *InstallationHandler) Create(c *gin.Context) {
	var req InstallationRequest
	if err := BindNestedOrFlat(c, "installation", &req); err != nil {
		badRequest(c, "Invalid installation payload")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	installation, msg, err := h.installationService.Record(c.Request.Context(), services.InstallationInput{
		CustomerID:  req.CustomerID,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		InstalledBy: req.InstalledBy,
		Date:        date,
	}, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err, "Error recording installation")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"installation": installation.ToResponse(), "message": msg})
}

// @Summary Delete Installation
// @Description Stock is not restored
// @Tags Installations
// @Produce json
// @Param installation_id path int true "Installation ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /installations/{installation_id} [delete]
func (h *InstallationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "installation_id")
	if !ok {
		return
	}
	msg, err := h.installationService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error deleting installation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// @Summary Export Installations
// @Tags Installations
// @Produce text/csv
// @Param customer_id query int false "Customer ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /installations/export [get]
func (h *InstallationHandler) Export(c *gin.Context) {
	customerID, ok := optionalID(c, "customer_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.InstallationsCSV(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err, "Error exporting installations")
		return
	}
	sendFile(c, data, filename, contentTypeCSV)
}

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// @Summary Dashboard
// @Description Inventory value, sales totals, stock per category and the daily profit trend
// @Tags Reports
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} models.Dashboard
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Error loading dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// @Summary Profit and Loss
// @Tags Reports
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} models.ProfitLossReport
// @Security BearerAuth
// @Router /reports/profit_loss [get]
func (h *ReportHandler) ProfitLoss(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	report, err := h.reportService.ProfitLoss(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Error loading report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Profit and Loss CSV
// @Tags Reports
// @Produce text/csv
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file "profit_loss.csv"
// @Security BearerAuth
// @Router /reports/profit_loss_csv [get]
func (h *ReportHandler) ProfitLossCSV(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	buf, err := h.reportService.ProfitLossCSV(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Error generating report")
		return
	}
	sendFile(c, buf.Bytes(), "profit_loss.csv", contentTypeCSV)
}

// @Summary Profit and Loss PDF
// @Tags Reports
// @Produce application/pdf
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file "profit_loss.pdf"
// @Security BearerAuth
// @Router /reports/profit_loss_pdf [get]
func (h *ReportHandler) ProfitLossPDF(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	buf, err := h.reportService.ProfitLossPDF(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Error generating report")
		return
	}
	sendFile(c, buf.Bytes(), "profit_loss.pdf", contentTypePDF)
}

type AuditHandler struct {
	auditService  *services.AuditService
	exportService *services.ExportService
}

func NewAuditHandler(auditService *services.AuditService, exportService *services.ExportService) *AuditHandler {
	return &AuditHandler{auditService: auditService, exportService: exportService}
}

func auditQuery(c *gin.Context) (*repository.AuditQuery, bool) {
	period, ok := parsePeriod(c)
	if !ok {
		return nil, false
	}
	return &repository.AuditQuery{ListQuery: listQuery(c), Action: c.Query("action"), Period: period}, true
}

// @Summary Audit Trail
// @Description Item changes, newest first
// @Tags Audit
// @Produce json
// @Param action query string false "Add, Update, Delete, Sale or Install"
// @Param search_term query string false "Search item or user"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audit_logs [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query, ok := auditQuery(c)
	if !ok {
		return
	}
	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error loading audit trail")
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs, "pagination": pagination(query.ListQuery, total)})
}

// @Summary Export Audit Trail
// @Tags Audit
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /audit_logs/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	query, ok := auditQuery(c)
	if !ok {
		return
	}
	data, filename, err := h.exportService.AuditCSV(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error exporting audit trail")
		return
	}
	sendFile(c, data, filename, contentTypeCSV)
}

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// @Summary Import Items
// @Description CSV or XLSX with item, category, quantity, unit_cost, selling_price and an optional unit. Quantities replace the current stock.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Inventory file"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /imports/items [post]
func (h *ImportHandler) Items(c *gin.Context) {
	h.upload(c, models.ImportKindItems)
}

// @Summary Import Customers
// @Description CSV or XLSX with name, phone, email and address
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Customer file"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /imports/customers [post]
func (h *ImportHandler) Customers(c *gin.Context) {
	h.upload(c, models.ImportKindCustomers)
}

func (h *ImportHandler) upload(c *gin.Context, kind string) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file is required")
		return
	}
	if file.Size > storage.MaxFileSize() {
		badRequest(c, "File exceeds the 10MB limit")
		return
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, err, "Error reading upload")
		return
	}
	defer f.Close()

	user := middleware.GetUsername(c)
	var result *services.ImportResult
	if kind == models.ImportKindCustomers {
		result, err = h.importService.ImportCustomers(c.Request.Context(), file.Filename, f, user)
	} else {
		result, err = h.importService.ImportItems(c.Request.Context(), file.Filename, f, user)
	}
	if err != nil {
		respondError(c, err, "Error importing file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"import":  result.Batch.ToResponse(),
		"added":   result.Added,
		"updated": result.Updated,
		"errors":  result.Errors,
	})
}

// @Summary List Imports
// @Tags Imports
// @Produce json
// @Param kind query string false "items or customers"
// @Param status query string false "Batch status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /imports [get]
func (h *ImportHandler) Index(c *gin.Context) {
	query := listQuery(c)
	query.Filters["kind"] = c.Query("kind")
	query.Filters["status"] = c.Query("status")

	batches, total, err := h.importService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error loading imports")
		return
	}
	responses := make([]models.ImportBatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, batches[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"imports": responses, "pagination": pagination(query, total)})
}

// @Summary Get Import
// @Tags Imports
// @Produce json
// @Param import_id path int true "Import ID"
// @Success 200 {object} models.ImportBatchResponse
// @Security BearerAuth
// @Router /imports/{import_id} [get]
func (h *ImportHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "import_id")
	if !ok {
		return
	}
	batch, err := h.importService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading import")
		return
	}
	c.JSON(http.StatusOK, gin.H{"import": batch.ToResponse()})
}

// @Summary Download Import File
// @Description The spreadsheet exactly as it was uploaded
// @Tags Imports
// @Produce octet-stream
// @Param import_id path int true "Import ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /imports/{import_id}/file [get]
func (h *ImportHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "import_id")
	if !ok {
		return
	}
	batch, f, size, err := h.importService.OpenFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading import file")
		return
	}
	defer f.Close()

	contentType := contentTypeCSV
	if strings.HasSuffix(strings.ToLower(batch.Filename), ".xlsx") {
		contentType = contentTypeXLSX
	}
	c.DataFromReader(http.StatusOK, size, contentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, batch.Filename),
	})
}

type SettingsHandler struct {
	imageService *services.ImageService
}

func NewSettingsHandler(imageService *services.ImageService) *SettingsHandler {
	return &SettingsHandler{imageService: imageService}
}

// @Summary Logo Status
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /settings/logo [get]
func (h *SettingsHandler) Logo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"has_logo": h.imageService.HasLogo()})
}

// @Summary Upload Logo
// @Description PNG or JPEG, scaled to fit the statement header
// @Tags Settings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Logo"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /settings/logo [post]
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "A file is required")
		return
	}
	if file.Size > storage.MaxFileSize() {
		badRequest(c, "File exceeds the 10MB limit")
		return
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, err, "Error reading upload")
		return
	}
	defer f.Close()

	if ct := file.Header.Get("Content-Type"); ct != "" && !storage.IsValidImageType(ct) {
		badRequest(c, "Logo must be a PNG or JPEG image")
		return
	}

	path, err := h.imageService.SaveLogo(f, file.Filename)
	if err != nil {
		respondError(c, err, "Error saving logo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logo uploaded successfully.", "path": path})
}

// @Summary Delete Logo
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /settings/logo [delete]
func (h *SettingsHandler) DeleteLogo(c *gin.Context) {
	if err := h.imageService.DeleteLogo(); err != nil {
		respondError(c, err, "Error deleting logo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logo removed."})
}
