package services

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/jobs"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

// A4 portrait in points
const (
	soaPageWidth  = 595.0
	soaPageHeight = 842.0
	soaMargin     = 50.0
	soaRowHeight  = 20.0
	soaTableTop   = 160.0
	soaBottom     = soaPageHeight - 100
)

// Column anchors: Date, Item and Qty start at their x; Price and Total end at theirs.
const (
	soaColDate  = 50.0
	soaColItem  = 150.0
	soaColQty   = 250.0
	soaColPrice = 430.0
	soaColTotal = 530.0
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Statement is a rendered statement of account
type Statement struct {
	Filename   string
	Data       []byte
	Pages      int
	Summary    models.SaleSummary
	StoredPath string
}

type statementData struct {
	BusinessName    string
	BusinessAddress string
	CurrencyPrefix  string
	Logo            []byte
	CustomerID      uint
	CustomerName    string
	PeriodStart     string
	PeriodEnd       string
	Sales           []models.Sale
}

type StatementService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	emailSvc     *EmailService
	storage      *storage.LocalStorage
	worker       *jobs.Worker
	cfg          *config.Config
}

func NewStatementService(
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	emailSvc *EmailService,
	storage *storage.LocalStorage,
	worker *jobs.Worker,
	cfg *config.Config,
) *StatementService {
	return &StatementService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		emailSvc:     emailSvc,
		storage:      storage,
		worker:       worker,
		cfg:          cfg,
	}
}

// Generate renders the statement of account for a customer's sales within period and
// archives a copy under statements/.
func (s *StatementService) Generate(ctx context.Context, customerID uint, period models.DateRange) (*Statement, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, translate(err, "Customer")
	}

	sales, err := s.saleRepo.FindByCustomer(ctx, customerID, period)
	if err != nil {
		return nil, err
	}

	start, end := periodLabels(period, sales)
	data := statementData{
		BusinessName:    s.cfg.BusinessName,
		BusinessAddress: s.cfg.BusinessAddress,
		CurrencyPrefix:  s.cfg.CurrencyPrefix,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		PeriodStart:     start,
		PeriodEnd:       end,
		Sales:           sales,
	}
	if s.storage != nil && s.storage.Exists(storage.LogoPath) {
		if logo, err := s.storage.Read(storage.LogoPath); err == nil {
			data.Logo = logo
		}
	}

	pdf, pages, err := renderStatement(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}

	stmt := &Statement{
		Filename: StatementFilename(customer.ID, customer.Name),
		Data:     pdf,
		Pages:    pages,
		Summary:  models.Summarize(sales),
	}

	if s.storage != nil {
		path, err := s.storage.UploadFromBytes(pdf, stmt.Filename, storage.DirStatements)
		if err != nil {
			logger.Warn("Failed to archive statement", "customer_id", customer.ID, "error", err)
		} else {
			stmt.StoredPath = path
		}
	}

	logger.Info("Statement generated", "customer_id", customer.ID, "transactions", stmt.Summary.Transactions, "pages", pages)
	return stmt, nil
}

// Email queues the statement for delivery to the customer's e-mail address
func (s *StatementService) Email(ctx context.Context, customerID uint, period models.DateRange) error {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return translate(err, "Customer")
	}
	if ok, err := s.emailSvc.checkEmailPreconditions(customer.Email, "statement"); !ok {
		if customer.Email == "" {
			return invalid("Customer '%s' has no e-mail address.", customer.Name)
		}
		return err
	}

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		stmt, err := s.Generate(jobCtx, customerID, period)
		if err != nil {
			return err
		}
		start, end := periodLabels(period, nil)
		return s.emailSvc.SendStatement(jobCtx, customer, stmt.Data, stmt.Filename, start+" to "+end)
	})
	return nil
}

// StatementFilename is statement_customer_<id>_<name>.pdf with the name made file-safe
func StatementFilename(customerID uint, name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	return fmt.Sprintf("statement_customer_%d_%s.pdf", customerID, safe)
}

// periodLabels formats the requested range. Open ends fall back to the first sale date and today.
func periodLabels(period models.DateRange, sales []models.Sale) (string, string) {
	const layout = "2006-01-02"
	start, end := "", time.Now().UTC().Format(layout)
	if period.Start != nil {
		start = period.Start.Format(layout)
	} else if len(sales) > 0 {
		start = sales[0].Date.Format(layout)
	} else {
		start = end
	}
	if period.End != nil {
		end = period.End.Format(layout)
	}
	return start, end
}

// renderStatement draws the statement and returns the PDF bytes and page count
func renderStatement(data statementData) ([]byte, int, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: soaPageWidth, Ht: soaPageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(soaMargin, soaMargin, soaMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	logoName := ""
	if len(data.Logo) > 0 {
		logoName = "logo"
		pdf.RegisterImageOptionsReader(logoName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data.Logo))
		if pdf.Err() {
			// An unreadable logo should not block the statement
			pdf.ClearError()
			logoName = ""
		}
	}

	money := func(v decimal.Decimal) string {
		return models.FormatCurrency(data.CurrencyPrefix, v)
	}
	rightText := func(right, y float64, text string) {
		text = tr(text)
		pdf.Text(right-pdf.GetStringWidth(text), y, text)
	}

	newPage := func() float64 {
		pdf.AddPage()
		pdf.SetTextColor(0, 0, 0)

		if logoName != "" {
			pdf.ImageOptions(logoName, 50, 20, 100, 60, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(200, 40, tr(data.BusinessName))
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(200, 60, tr(data.BusinessAddress))

		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(soaMargin, 100, "Statement of Account")
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(soaMargin, 120, tr(fmt.Sprintf("Customer: %s (ID: %d)", data.CustomerName, data.CustomerID)))
		pdf.Text(soaMargin, 135, tr(fmt.Sprintf("Period: %s to %s", data.PeriodStart, data.PeriodEnd)))

		y := soaTableTop
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(soaColDate, y, "Date")
		pdf.Text(soaColItem, y, "Item")
		pdf.Text(soaColQty, y, "Qty")
		rightText(soaColPrice, y, "Price")
		rightText(soaColTotal, y, "Total")
		pdf.Line(soaColDate, y+15, soaColTotal, y+15)

		pdf.SetFont("Helvetica", "", 10)
		return y + soaRowHeight + 5
	}

	y := newPage()
	for _, sale := range data.Sales {
		if y+soaRowHeight > soaBottom {
			y = newPage()
		}
		pdf.Text(soaColDate, y, sale.Date.Format("2006-01-02"))
		pdf.Text(soaColItem, y, tr(truncate(sale.ItemName, 18)))
		pdf.Text(soaColQty, y, strconv.Itoa(sale.Quantity))
		rightText(soaColPrice, y, money(sale.SellingPrice))
		rightText(soaColTotal, y, money(sale.TotalSale))
		y += soaRowHeight
	}

	// Summary and total take two more lines
	if y+2*soaRowHeight > soaBottom {
		y = newPage()
	}
	summary := models.Summarize(data.Sales)

	y += 20
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(soaColDate, y, fmt.Sprintf("Transactions: %d | Total Qty: %d", summary.Transactions, summary.TotalQty))

	y += 20
	pdf.SetFont("Helvetica", "B", 12)
	rightText(soaColTotal, y, "Total: "+money(summary.TotalSales))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	pdf.Text(soaMargin, soaPageHeight-50, tr("Thank you for choosing "+data.BusinessName))

	pages := pdf.PageCount()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), pages, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "."
}
