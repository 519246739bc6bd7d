package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
)

type CustomerHandler struct {
	customerService     *services.CustomerService
	saleService         *services.SaleService
	installationService *services.InstallationService
	statementService    *services.StatementService
	exportService       *services.ExportService
}

func NewCustomerHandler(
	customerService *services.CustomerService,
	saleService *services.SaleService,
	installationService *services.InstallationService,
	statementService *services.StatementService,
	exportService *services.ExportService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService:     customerService,
		saleService:         saleService,
		installationService: installationService,
		statementService:    statementService,
		exportService:       exportService,
	}
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// @Summary List Customers
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search name, email or phone"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := listQuery(c)
	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error loading customers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "pagination": pagination(query, total)})
}

// @Summary Get Customer
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	customer, err := h.customerService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// @Summary Create Customer
// @Description Name, email and address are stored upper-cased; names are unique
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body CustomerRequest true "Customer"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := BindNestedOrFlat(c, "customer", &req); err != nil {
		badRequest(c, "Invalid customer payload")
		return
	}

	customer := &models.Customer{Name: req.Name, Phone: req.Phone, Email: req.Email, Address: req.Address}
	if err := h.customerService.Create(c.Request.Context(), customer); err != nil {
		respondError(c, err, "Error adding customer")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"customer": customer,
		"message":  fmt.Sprintf("Customer '%s' added.", customer.Name),
	})
}

// @Summary Delete Customer
// @Description Removes the customer and its installations; its sales stay unlinked
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error deleting customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Customer ID %d deleted.", id)})
}

// @Summary Delete All Customers
// @Description Admin only. Requires {"confirm": "DELETE"}.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [delete]
func (h *CustomerHandler) DeleteAll(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Confirmation is required")
		return
	}
	deleted, err := h.customerService.DeleteAll(c.Request.Context(), req.Confirm)
	if err != nil {
		respondError(c, err, "Error deleting customers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "message": fmt.Sprintf("%d customers deleted.", deleted)})
}

// @Summary Customer Sales
// @Description A customer's sales in the period, oldest first, with totals
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id}/sales [get]
func (h *CustomerHandler) Sales(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	if _, err := h.customerService.FindByID(c.Request.Context(), id); err != nil {
		respondError(c, err, "Error loading customer")
		return
	}

	sales, err := h.saleService.ForCustomer(c.Request.Context(), id, period)
	if err != nil {
		respondError(c, err, "Error loading sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales, "summary": models.Summarize(sales)})
}

// @Summary Customer Installations
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id}/installations [get]
func (h *CustomerHandler) Installations(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	query := listQuery(c)
	installations, total, err := h.installationService.List(c.Request.Context(), &repository.InstallationQuery{
		ListQuery:  query,
		CustomerID: &id,
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

// @Summary Export Customer Sales
// @Tags Customers
// @Produce text/csv
// @Param customer_id path int true "Customer ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /customers/{customer_id}/sales/export [get]
func (h *CustomerHandler) ExportSales(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	data, filename, err := h.exportService.SalesCSV(c.Request.Context(), &repository.SaleQuery{CustomerID: &id, Period: period})
	if err != nil {
		respondError(c, err, "Error exporting sales")
		return
	}
	sendFile(c, data, filename, contentTypeCSV)
}

// @Summary Export Customer Installations
// @Tags Customers
// @Produce text/csv
// @Param customer_id path int true "Customer ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /customers/{customer_id}/installations/export [get]
func (h *CustomerHandler) ExportInstallations(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.InstallationsCSV(c.Request.Context(), &id)
	if err != nil {
		respondError(c, err, "Error exporting installations")
		return
	}
	sendFile(c, data, filename, contentTypeCSV)
}

// @Summary Statement of Account
// @Description PDF of the customer's sales in the period
// @Tags Customers
// @Produce application/pdf
// @Param customer_id path int true "Customer ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /customers/{customer_id}/statement [get]
func (h *CustomerHandler) Statement(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	stmt, err := h.statementService.Generate(c.Request.Context(), id, period)
	if err != nil {
		respondError(c, err, "Error generating statement")
		return
	}
	sendFile(c, stmt.Data, stmt.Filename, contentTypePDF)
}

// @Summary Email Statement of Account
// @Description Queues the statement for delivery to the customer's e-mail address
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 202 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id}/statement/email [post]
func (h *CustomerHandler) EmailStatement(c *gin.Context) {
	id, ok := parseID(c, "customer_id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	if err := h.statementService.Email(c.Request.Context(), id, period); err != nil {
		respondError(c, err, "Error sending statement")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Statement queued for e-mail."})
}
