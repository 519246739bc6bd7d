package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

var inventoryHeader = []string{"id", "item", "category", "quantity", "unit", "unit_cost", "selling_price", "stock_value"}

// ExportService dumps filtered row sets as CSV or XLSX downloads
type ExportService struct {
	itemRepo         repository.ItemRepository
	saleRepo         repository.SaleRepository
	installationRepo repository.InstallationRepository
	auditRepo        repository.AuditRepository
}

func NewExportService(
	itemRepo repository.ItemRepository,
	saleRepo repository.SaleRepository,
	installationRepo repository.InstallationRepository,
	auditRepo repository.AuditRepository,
) *ExportService {
	return &ExportService{
		itemRepo:         itemRepo,
		saleRepo:         saleRepo,
		installationRepo: installationRepo,
		auditRepo:        auditRepo,
	}
}

func inventoryRow(item models.Item) []string {
	return []string{
		strconv.FormatUint(uint64(item.ID), 10),
		item.Name,
		item.Category,
		strconv.Itoa(item.Quantity),
		item.UnitLabel(),
		item.UnitCost.StringFixed(2),
		item.SellingPrice.StringFixed(2),
		item.StockValue().StringFixed(2),
	}
}

// InventoryCSV exports items, optionally restricted to one category
func (s *ExportService) InventoryCSV(ctx context.Context, category string) ([]byte, string, error) {
	items, err := s.inventory(ctx, category)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, inventoryRow(item))
	}
	data, err := writeCSV(inventoryHeader, rows)
	return data, datedName("inventory", "csv"), err
}

// InventoryXLSX exports items to a single styled sheet
func (s *ExportService) InventoryXLSX(ctx context.Context, category string) ([]byte, string, error) {
	items, err := s.inventory(ctx, category)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	for col, title := range inventoryHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(inventoryHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i, item := range items {
		row := i + 2
		values := []interface{}{
			item.ID,
			item.Name,
			item.Category,
			item.Quantity,
			item.UnitLabel(),
			item.UnitCost.InexactFloat64(),
			item.SellingPrice.InexactFloat64(),
			item.StockValue().InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if len(items) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(inventoryHeader), len(items)+1)
		_ = f.SetCellStyle(sheet, "F2", last, moneyStyle)
	}
	_ = f.SetColWidth(sheet, "B", "C", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), datedName("inventory", "xlsx"), nil
}

// SalesCSV exports sales matching query; a customer filter names the file after the customer
func (s *ExportService) SalesCSV(ctx context.Context, query *repository.SaleQuery) ([]byte, string, error) {
	query.ListQuery = unpaged(query.ListQuery)
	sales, _, err := s.saleRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	header := []string{"id", "date", "item_id", "item", "quantity", "selling_price", "total_sale", "cost", "profit", "customer_id", "customer", "user"}
	rows := make([][]string, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(sale.ID), 10),
			sale.Date.Format("2006-01-02"),
			optionalID(sale.ItemID),
			sale.ItemName,
			strconv.Itoa(sale.Quantity),
			sale.SellingPrice.StringFixed(2),
			sale.TotalSale.StringFixed(2),
			sale.Cost.StringFixed(2),
			sale.Profit.StringFixed(2),
			optionalID(sale.CustomerID),
			customerName(sale.Customer),
			sale.User,
		})
	}

	name := datedName("sales", "csv")
	if query.CustomerID != nil {
		name = fmt.Sprintf("customer_%d_sales.csv", *query.CustomerID)
	}
	data, err := writeCSV(header, rows)
	return data, name, err
}

// InstallationsCSV exports installations, all or for one customer
func (s *ExportService) InstallationsCSV(ctx context.Context, customerID *uint) ([]byte, string, error) {
	installations, _, err := s.installationRepo.List(ctx, &repository.InstallationQuery{
		ListQuery:  repository.AllRows(),
		CustomerID: customerID,
	})
	if err != nil {
		return nil, "", err
	}

	header := []string{"id", "customer_id", "customer_name", "item_id", "item_name", "quantity", "installed_by", "date"}
	rows := make([][]string, 0, len(installations))
	for _, inst := range installations {
		r := inst.ToResponse()
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			strconv.FormatUint(uint64(r.CustomerID), 10),
			r.CustomerName,
			optionalID(r.ItemID),
			r.ItemName,
			strconv.Itoa(r.Quantity),
			r.InstalledBy,
			r.Date.Format("2006-01-02"),
		})
	}

	name := datedName("installations", "csv")
	if customerID != nil {
		name = fmt.Sprintf("customer_%d_installations.csv", *customerID)
	}
	data, err := writeCSV(header, rows)
	return data, name, err
}

// AuditCSV exports audit entries matching query
func (s *ExportService) AuditCSV(ctx context.Context, query *repository.AuditQuery) ([]byte, string, error) {
	query.ListQuery = unpaged(query.ListQuery)
	logs, _, err := s.auditRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	header := []string{"id", "timestamp", "action", "item", "category", "quantity", "unit_cost", "selling_price", "user"}
	rows := make([][]string, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.Timestamp.Format(time.RFC3339),
			entry.Action,
			entry.Item,
			entry.Category,
			strconv.Itoa(entry.Quantity),
			entry.UnitCost.StringFixed(2),
			entry.SellingPrice.StringFixed(2),
			entry.User,
		})
	}
	data, err := writeCSV(header, rows)
	return data, datedName("audit_log", "csv"), err
}

func (s *ExportService) inventory(ctx context.Context, category string) ([]models.Item, error) {
	query := repository.AllRows()
	if category != "" {
		query.Filters["category"] = category
	}
	items, _, err := s.itemRepo.List(ctx, query)
	return items, err
}

// unpaged keeps the caller's filters but drops paging
func unpaged(q *repository.ListQuery) *repository.ListQuery {
	if q == nil {
		return repository.AllRows()
	}
	q.Page, q.PerPage = 1, 0
	return q
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func datedName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("2006-01-02"), ext)
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
