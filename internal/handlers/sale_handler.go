package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/solarstock-api/internal/middleware"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
)

type SaleHandler struct {
	saleService   *services.SaleService
	exportService *services.ExportService
}

func NewSaleHandler(saleService *services.SaleService, exportService *services.ExportService) *SaleHandler {
	return &SaleHandler{saleService: saleService, exportService: exportService}
}

// SaleRequest names the item by item_id, or by item (plus category when the name is shared)
type SaleRequest struct {
	ItemID     uint   `json:"item_id"`
	Item       string `json:"item"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity" binding:"required"`
	CustomerID *uint  `json:"customer_id"`
	Date       string `json:"date"`
}

// saleQuery reads customer_id, item_id and the period on top of the list params
func saleQuery(c *gin.Context) (*repository.SaleQuery, bool) {
	customerID, ok := optionalID(c, "customer_id")
	if !ok {
		return nil, false
	}
	itemID, ok := optionalID(c, "item_id")
	if !ok {
		return nil, false
	}
	period, ok := parsePeriod(c)
	if !ok {
		return nil, false
	}
	return &repository.SaleQuery{
		ListQuery:  listQuery(c),
		CustomerID: customerID,
		ItemID:     itemID,
		Period:     period,
	}, true
}

// @Summary List Sales
// @Description Newest first, optionally filtered by customer, item and date range (inclusive)
// @Tags Sales
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param customer_id query int false "Customer ID"
// @Param item_id query int false "Item ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sales [get]
func (h *SaleHandler) Index(c *gin.Context) {
	query, ok := saleQuery(c)
	if !ok {
		return
	}
	sales, total, err := h.saleService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error loading sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales, "pagination": pagination(query.ListQuery, total)})
}

// @Summary Get Sale
// @Tags Sales
// @Produce json
// @Param sale_id path int true "Sale ID"
// @Success 200 {object} models.Sale
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /sales/{sale_id} [get]
func (h *SaleHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "sale_id")
	if !ok {
		return
	}
	sale, err := h.saleService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading sale")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// @Summary Record Sale
// @Description Takes the quantity from stock and records the sale with its profit
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body SaleRequest true "Sale"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req SaleRequest
	if err := BindNestedOrFlat(c, "sale", &req); err != nil {
		badRequest(c, "Invalid sale payload")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.Record(c.Request.Context(), services.SaleInput{
		ItemID:     req.ItemID,
		ItemName:   req.Item,
		Category:   req.Category,
		Quantity:   req.Quantity,
		CustomerID: req.CustomerID,
		Date:       date,
	}, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err, "Error recording sale")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sale":    sale,
		"message": "Sale recorded. Profit: $" + sale.Profit.StringFixed(2),
	})
}

// @Summary Export Sales
// @Description CSV of the sales matching the list filters
// @Tags Sales
// @Produce text/csv
// @Param customer_id query int false "Customer ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /sales/export [get]
func (h *SaleHandler) Export(c *gin.Context) {
	query, ok := saleQuery(c)
	if !ok {
		return
	}
	data, filename, err := h.exportService.SalesCSV(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error exporting sales")
		return
	}
	sendFile(c, data, filename, contentTypeCSV)
}
