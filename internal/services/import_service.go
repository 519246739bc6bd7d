package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/statemachine"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/sjperalta/solarstock-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ImportBatchSize is the number of item rows written per transaction
const ImportBatchSize = 500

var (
	itemColumns     = []string{"item", "category", "quantity", "unit_cost", "selling_price"}
	customerColumns = []string{"name", "phone", "email", "address"}

	nonNumericChars = regexp.MustCompile(`[^\d,.\-]`)
)

// ImportResult summarises one uploaded file
type ImportResult struct {
	Batch   *models.ImportBatch
	Added   int
	Updated int
	Errors  []string
}

type ImportService struct {
	itemRepo    repository.ItemRepository
	importRepo  repository.ImportRepository
	customerSvc *CustomerService
	storage     *storage.LocalStorage
}

func NewImportService(
	itemRepo repository.ItemRepository,
	importRepo repository.ImportRepository,
	customerSvc *CustomerService,
	storage *storage.LocalStorage,
) *ImportService {
	return &ImportService{
		itemRepo:    itemRepo,
		importRepo:  importRepo,
		customerSvc: customerSvc,
		storage:     storage,
	}
}

func (s *ImportService) List(ctx context.Context, query *repository.ListQuery) ([]models.ImportBatch, int64, error) {
	return s.importRepo.List(ctx, query)
}

func (s *ImportService) FindByID(ctx context.Context, id uint) (*models.ImportBatch, error) {
	batch, err := s.importRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Import")
	}
	return batch, nil
}

// OpenFile returns the archived upload of a batch with its size in bytes.
// The caller closes the file.
func (s *ImportService) OpenFile(ctx context.Context, id uint) (*models.ImportBatch, *os.File, int64, error) {
	batch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	if batch.StoredPath == "" || !s.storage.Exists(batch.StoredPath) {
		return nil, nil, 0, notFound("The file for import %d is no longer stored.", id)
	}

	size, err := s.storage.GetSize(batch.StoredPath)
	if err != nil {
		return nil, nil, 0, err
	}
	f, err := s.storage.Download(batch.StoredPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to open import file: %w", err)
	}
	return batch, f, size, nil
}

// sheet is a parsed upload: trimmed header names and the data rows below them
type sheet struct {
	header map[string]int
	names  []string
	rows   [][]string
}

func (sh *sheet) cell(row []string, column string) string {
	idx, ok := sh.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func (sh *sheet) require(columns []string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := sh.header[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return invalid("Missing required columns: %v. Found: %v", missing, sh.names)
	}
	return nil
}

// readSheet parses a .csv or the first worksheet of a .xlsx
func readSheet(filename string, data []byte) (*sheet, error) {
	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, invalid("Failed to read file: %v", err)
		}
		records = rows
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, invalid("Failed to read file: %v", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, invalid("Workbook has no sheets.")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, invalid("Failed to read file: %v", err)
		}
		records = rows
	default:
		return nil, invalid("Unsupported file type '%s'. Upload a .csv or .xlsx file.", ext)
	}

	if len(records) == 0 {
		return nil, invalid("File is empty.")
	}

	sh := &sheet{header: make(map[string]int)}
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		sh.names = append(sh.names, name)
		if _, dup := sh.header[name]; !dup {
			sh.header[name] = i
		}
	}
	for _, row := range records[1:] {
		if !blankRow(row) {
			sh.rows = append(sh.rows, row)
		}
	}
	return sh, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanText trims a cell and treats nan/none/null as empty
func cleanText(v string) string {
	s := strings.TrimSpace(v)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

// cleanNumber strips currency symbols and normalises separators:
// "1,234.50" is 1234.50 and "12,5" is 12.5
func cleanNumber(v string) string {
	s := cleanText(v)
	if s == "" {
		return ""
	}
	s = nonNumericChars.ReplaceAllString(s, "")
	hasComma, hasDot := strings.Contains(s, ","), strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ",", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

// parseAmount returns zero for anything unparsable
func parseAmount(v string) decimal.Decimal {
	d, err := decimal.NewFromString(cleanNumber(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseQuantity(v string) int {
	return int(parseAmount(v).RoundBank(0).IntPart())
}

// ImportItems reads a stock sheet and sets the quantity of every listed (item, category).
// Rows are written in batches of ImportBatchSize, each batch in one transaction.
func (s *ImportService) ImportItems(ctx context.Context, filename string, r io.Reader, user string) (*ImportResult, error) {
	data, sh, err := s.load(filename, r, itemColumns)
	if err != nil {
		return nil, err
	}

	_, hasUnit := sh.header["unit"]
	var items []models.Item
	var rowErrors []string
	for i, row := range sh.rows {
		rowNum := i + 1
		item := models.Item{
			Name:         cleanText(sh.cell(row, "item")),
			Category:     cleanText(sh.cell(row, "category")),
			Quantity:     parseQuantity(sh.cell(row, "quantity")),
			UnitCost:     parseAmount(sh.cell(row, "unit_cost")),
			SellingPrice: parseAmount(sh.cell(row, "selling_price")),
		}
		if hasUnit {
			if unit := cleanText(sh.cell(row, "unit")); unit != "" {
				item.Unit = &unit
			}
		}
		item.Normalize()

		switch {
		case item.Name == "":
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: Missing item name", rowNum))
			continue
		case item.Quantity < 0:
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s: quantity cannot be negative", rowNum, item.Name))
			continue
		}
		items = append(items, item)
	}

	result, fsm, err := s.begin(ctx, models.ImportKindItems, filename, data, len(sh.rows), user)
	if err != nil {
		return nil, err
	}
	result.Errors = rowErrors

	imported := 0
	for start := 0; start < len(items); start += ImportBatchSize {
		end := min(start+ImportBatchSize, len(items))
		chunk := items[start:end]

		added, updated, err := s.itemRepo.ReplaceStock(ctx, chunk, user)
		if err == nil {
			result.Added += added
			result.Updated += updated
			imported += len(chunk)
			continue
		}
		if ctx.Err() != nil {
			return nil, s.fail(ctx, result.Batch, fsm, ctx.Err())
		}

		logger.Warn("Import batch failed, retrying per row", "guid", result.Batch.GUID, "offset", start, "error", err)
		for i := range chunk {
			added, updated, err := s.itemRepo.ReplaceStock(ctx, chunk[i:i+1], user)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Item %s (%s): %v", chunk[i].Name, chunk[i].Category, err))
				continue
			}
			result.Added += added
			result.Updated += updated
			imported++
		}
	}

	if err := s.finish(ctx, result, fsm, imported); err != nil {
		return nil, err
	}
	logger.Info("Items imported", "guid", result.Batch.GUID, "added", result.Added, "updated", result.Updated, "errors", len(result.Errors))
	return result, nil
}

// ImportCustomers adds every row through CustomerService.Create. Duplicates are reported per row.
func (s *ImportService) ImportCustomers(ctx context.Context, filename string, r io.Reader, user string) (*ImportResult, error) {
	data, sh, err := s.load(filename, r, customerColumns)
	if err != nil {
		return nil, err
	}

	result, fsm, err := s.begin(ctx, models.ImportKindCustomers, filename, data, len(sh.rows), user)
	if err != nil {
		return nil, err
	}

	imported := 0
	for i, row := range sh.rows {
		rowNum := i + 1
		customer := &models.Customer{
			Name:    cleanText(sh.cell(row, "name")),
			Phone:   cleanText(sh.cell(row, "phone")),
			Email:   cleanText(sh.cell(row, "email")),
			Address: cleanText(sh.cell(row, "address")),
		}
		if customer.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing customer name", rowNum))
			continue
		}

		err := s.customerSvc.Create(ctx, customer)
		var verr *ValidationError
		switch {
		case err == nil:
			imported++
			result.Added++
		case errors.Is(err, ErrDuplicate), errors.As(err, &verr):
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
		default:
			return nil, s.fail(ctx, result.Batch, fsm, err)
		}
	}

	if err := s.finish(ctx, result, fsm, imported); err != nil {
		return nil, err
	}
	logger.Info("Customers imported", "guid", result.Batch.GUID, "imported", imported, "errors", len(result.Errors))
	return result, nil
}

// load reads and validates the upload without touching the store
func (s *ImportService) load(filename string, r io.Reader, required []string) ([]byte, *sheet, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !storage.ValidImportExtensions()[ext] {
		return nil, nil, invalid("Unsupported file type '%s'. Upload a .csv or .xlsx file.", ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, storage.MaxFileSize()+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > storage.MaxFileSize() {
		return nil, nil, invalid("File exceeds the %d MB limit.", storage.MaxFileSize()>>20)
	}

	sh, err := readSheet(filename, data)
	if err != nil {
		return nil, nil, err
	}
	if err := sh.require(required); err != nil {
		return nil, nil, err
	}
	return data, sh, nil
}

// begin archives the upload and records a batch in processing state
func (s *ImportService) begin(ctx context.Context, kind, filename string, data []byte, total int, user string) (*ImportResult, *statemachine.ImportFSM, error) {
	batch := &models.ImportBatch{
		GUID:      uuid.New().String(),
		Kind:      kind,
		Filename:  filepath.Base(filename),
		Status:    models.ImportStatusPending,
		TotalRows: total,
		CreatedBy: user,
	}

	if s.storage != nil {
		path, err := s.storage.UploadFromBytes(data, filename, storage.DirImports)
		if err != nil {
			logger.Warn("Failed to archive import file", "filename", filename, "error", err)
		} else {
			batch.StoredPath = path
		}
	}

	if err := s.importRepo.Create(ctx, batch); err != nil {
		return nil, nil, err
	}

	fsm := statemachine.NewImportFSM(batch)
	if err := fsm.Start(ctx); err != nil {
		return nil, nil, err
	}
	if err := s.importRepo.Update(ctx, batch); err != nil {
		return nil, nil, err
	}
	return &ImportResult{Batch: batch}, fsm, nil
}

func (s *ImportService) finish(ctx context.Context, result *ImportResult, fsm *statemachine.ImportFSM, imported int) error {
	if err := fsm.Complete(ctx, imported, result.Errors); err != nil {
		return err
	}
	return s.importRepo.Update(ctx, result.Batch)
}

// fail records the batch as failed and returns cause
func (s *ImportService) fail(ctx context.Context, batch *models.ImportBatch, fsm *statemachine.ImportFSM, cause error) error {
	if err := fsm.Fail(ctx, cause); err != nil {
		logger.Error("Failed to mark import failed", "guid", batch.GUID, "error", err)
		return cause
	}
	// The request context may be gone; the failure still has to be stored.
	if err := s.importRepo.Update(context.WithoutCancel(ctx), batch); err != nil {
		logger.Error("Failed to save import status", "guid", batch.GUID, "error", err)
	}
	logger.Error("Import failed", "guid", batch.GUID, "kind", batch.Kind, "error", cause)
	return cause
}
