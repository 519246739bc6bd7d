package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/middleware"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/services"
)

type ItemHandler struct {
	itemService   *services.ItemService
	exportService *services.ExportService
}

func NewItemHandler(itemService *services.ItemService, exportService *services.ExportService) *ItemHandler {
	return &ItemHandler{itemService: itemService, exportService: exportService}
}

type ItemRequest struct {
	Item         string          `json:"item" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Unit         *string         `json:"unit"`
}

type ConfirmRequest struct {
	Confirm string `json:"confirm" binding:"required"`
}

// @Summary List Items
// @Description Inventory sorted by item name, optionally filtered by category
// @Tags Items
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search item or category"
// @Param category query string false "Category"
// @Param sort_by query string false "item, category, quantity, unit_cost, selling_price, updated_at"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /items [get]
func (h *ItemHandler) Index(c *gin.Context) {
	query := listQuery(c)
	query.Filters["category"] = c.Query("category")

	items, total, err := h.itemService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error loading items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "pagination": pagination(query, total)})
}

// @Summary Get Item
// @Tags Items
// @Produce json
// @Param item_id path int true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /items/{item_id} [get]
func (h *ItemHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	item, err := h.itemService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error loading item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// @Summary List Categories
// @Tags Items
// @Produce json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /items/categories [get]
func (h *ItemHandler) Categories(c *gin.Context) {
	categories, err := h.itemService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error loading categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// @Summary Low Stock Items
// @Description Items whose quantity is below the threshold (configured default when omitted)
// @Tags Items
// @Produce json
// @Param threshold query int false "Threshold"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /items/low_stock [get]
func (h *ItemHandler) LowStock(c *gin.Context) {
	threshold := -1
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, "Invalid threshold")
			return
		}
		threshold = v
	}

	items, err := h.itemService.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err, "Error loading low stock items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary Add or Update Item
// @Description Adds a new (item, category) or adds the quantity to the existing one, replacing its prices
// @Tags Items
// @Accept json
// @Produce json
// @Param request body ItemRequest true "Item"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /items [post]
func (h *ItemHandler) Upsert(c *gin.Context) {
	var req ItemRequest
	if err := BindNestedOrFlat(c, "item", &req); err != nil {
		badRequest(c, "Invalid item payload")
		return
	}

	item, action, err := h.itemService.AddOrUpdate(c.Request.Context(), services.ItemInput{
		Name:         req.Item,
		Category:     req.Category,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		SellingPrice: req.SellingPrice,
		Unit:         req.Unit,
	}, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err, "Error saving item")
		return
	}

	status := http.StatusOK
	msg := fmt.Sprintf("Item '%s' updated.", item.Name)
	if action == models.AuditActionAdd {
		status = http.StatusCreated
		msg = fmt.Sprintf("Item '%s' added.", item.Name)
	}
	c.JSON(status, gin.H{"item": item, "action": action, "message": msg})
}

// @Summary Delete Item
// @Tags Items
// @Produce json
// @Param item_id path int true "Item ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /items/{item_id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	item, err := h.itemService.Delete(c.Request.Context(), id, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err, "Error deleting item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Item '%s' deleted.", item.Name)})
}

// @Summary Delete All Items
// @Description Empties the inventory (admin). Requires {"confirm": "DELETE"}.
// @Tags Items
// @Accept json
// @Produce json
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /items [delete]
func (h *ItemHandler) DeleteAll(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Confirmation is required")
		return
	}
	deleted, err := h.itemService.DeleteAll(c.Request.Context(), req.Confirm, middleware.GetUsername(c))
	if err != nil {
		respondError(c, err, "Error deleting items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "message": fmt.Sprintf("%d items deleted.", deleted)})
}

// @Summary Export Inventory
// @Tags Items
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param category query string false "Category"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /items/export [get]
func (h *ItemHandler) Export(c *gin.Context) {
	category := c.Query("category")

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, filename, err = h.exportService.InventoryCSV(c.Request.Context(), category)
		contentType = contentTypeCSV
	case "xlsx":
		data, filename, err = h.exportService.InventoryXLSX(c.Request.Context(), category)
		contentType = contentTypeXLSX
	default:
		badRequest(c, "format must be csv or xlsx")
		return
	}
	if err != nil {
		respondError(c, err, "Error exporting inventory")
		return
	}
	sendFile(c, data, filename, contentType)
}
