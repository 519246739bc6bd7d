package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

type ReportService struct {
	reportRepo repository.ReportRepository
	cfg        *config.Config
}

func NewReportService(reportRepo repository.ReportRepository, cfg *config.Config) *ReportService {
	return &ReportService{reportRepo: reportRepo, cfg: cfg}
}

// Dashboard gathers inventory totals, sales totals and the daily profit trend
func (s *ReportService) Dashboard(ctx context.Context, period models.DateRange) (*models.Dashboard, error) {
	inv, err := s.reportRepo.InventoryTotals(ctx, s.cfg.StockAlertThreshold)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.reportRepo.StockByCategory(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.reportRepo.SalesTotals(ctx, period)
	if err != nil {
		return nil, err
	}
	sales, err := s.reportRepo.SalesInPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		TotalItems:      inv.TotalItems,
		TotalStockValue: inv.StockValue,
		TotalSales:      totals.TotalSales,
		TotalProfit:     totals.TotalProfit,
		LowStockCount:   inv.LowStockCount,
		LowStockLimit:   s.cfg.StockAlertThreshold,
		StockByCategory: byCategory,
		ProfitTrend:     profitTrend(sales),
		CurrencySymbol:  s.cfg.CurrencyPrefix,
	}, nil
}

// profitTrend sums sales and profit per calendar day (UTC)
func profitTrend(sales []models.Sale) []models.ProfitTrendPoint {
	byDay := make(map[string]*models.ProfitTrendPoint)
	for _, sale := range sales {
		day := sale.Date.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &models.ProfitTrendPoint{Date: day, TotalSales: decimal.Zero, Profit: decimal.Zero}
			byDay[day] = p
		}
		p.TotalSales = p.TotalSales.Add(sale.TotalSale)
		p.Profit = p.Profit.Add(sale.Profit)
	}

	points := make([]models.ProfitTrendPoint, 0, len(byDay))
	for _, p := range byDay {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// ProfitLoss returns the sales in period with their totals
func (s *ReportService) ProfitLoss(ctx context.Context, period models.DateRange) (*models.ProfitLossReport, error) {
	sales, err := s.reportRepo.SalesInPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	sum := models.Summarize(sales)
	return &models.ProfitLossReport{
		Start:       period.Start,
		End:         period.End,
		TotalSales:  sum.TotalSales,
		TotalCost:   sum.TotalCost,
		TotalProfit: sum.TotalProfit,
		TotalQty:    sum.TotalQty,
		Sales:       sales,
	}, nil
}

// ProfitLossCSV writes the report's sale rows followed by a totals row
func (s *ReportService) ProfitLossCSV(ctx context.Context, period models.DateRange) (*bytes.Buffer, error) {
	report, err := s.ProfitLoss(ctx, period)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"id", "date", "item", "customer", "quantity", "selling_price", "total_sale", "cost", "profit", "user"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, sale := range report.Sales {
		record := []string{
			strconv.FormatUint(uint64(sale.ID), 10),
			sale.Date.Format("2006-01-02"),
			sale.ItemName,
			customerName(sale.Customer),
			strconv.Itoa(sale.Quantity),
			sale.SellingPrice.StringFixed(2),
			sale.TotalSale.StringFixed(2),
			sale.Cost.StringFixed(2),
			sale.Profit.StringFixed(2),
			sale.User,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	totals := []string{"", "", "TOTAL", "", strconv.Itoa(report.TotalQty), "",
		report.TotalSales.StringFixed(2), report.TotalCost.StringFixed(2), report.TotalProfit.StringFixed(2), ""}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b, nil
}

type profitLossRow struct {
	Date     string
	Item     string
	Customer string
	Quantity int
	Total    string
	Cost     string
	Profit   string
}

// ProfitLossPDF renders the report through wkhtmltopdf
func (s *ReportService) ProfitLossPDF(ctx context.Context, period models.DateRange) (*bytes.Buffer, error) {
	html, err := s.profitLossHTML(ctx, period)
	if err != nil {
		return nil, err
	}
	return generatePDF(html)
}

func (s *ReportService) profitLossHTML(ctx context.Context, period models.DateRange) ([]byte, error) {
	report, err := s.ProfitLoss(ctx, period)
	if err != nil {
		return nil, err
	}

	money := func(v decimal.Decimal) string { return models.FormatCurrency(s.cfg.CurrencyPrefix, v) }
	rows := make([]profitLossRow, 0, len(report.Sales))
	for _, sale := range report.Sales {
		rows = append(rows, profitLossRow{
			Date:     sale.Date.Format("2006-01-02"),
			Item:     sale.ItemName,
			Customer: customerName(sale.Customer),
			Quantity: sale.Quantity,
			Total:    money(sale.TotalSale),
			Cost:     money(sale.Cost),
			Profit:   money(sale.Profit),
		})
	}

	start, end := periodLabels(period, report.Sales)
	data := map[string]interface{}{
		"BusinessName":    s.cfg.BusinessName,
		"BusinessAddress": s.cfg.BusinessAddress,
		"Period":          start + " to " + end,
		"GeneratedAt":     time.Now().Format("2006-01-02 15:04"),
		"TotalSales":      money(report.TotalSales),
		"TotalCost":       money(report.TotalCost),
		"TotalProfit":     money(report.TotalProfit),
		"Rows":            rows,
	}
	return renderReportTemplate("profit_loss.html", data)
}

func renderReportTemplate(name string, data interface{}) ([]byte, error) {
	tmpl, err := template.ParseFS(reportTemplates, "templates/reports/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// generatePDF converts rendered HTML to PDF with the wkhtmltopdf binary
func generatePDF(html []byte) (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

func customerName(c *models.Customer) string {
	if c == nil {
		return ""
	}
	return c.Name
}
