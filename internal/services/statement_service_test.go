package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockCustomerRepo struct {
	repository.CustomerRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Customer, error)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	return m.mockFindByID(ctx, id)
}

type mockSaleRepo struct {
	repository.SaleRepository
	mockFindByCustomer func(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error)
}

func (m *mockSaleRepo) FindByCustomer(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error) {
	return m.mockFindByCustomer(ctx, customerID, period)
}

func makeSales(n int) []models.Sale {
	sales := make([]models.Sale, n)
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := range sales {
		sales[i] = models.Sale{
			ItemName:     "Panel A",
			Quantity:     2,
			SellingPrice: decimal.NewFromInt(1500),
			TotalSale:    decimal.NewFromInt(3000),
			Date:         day.AddDate(0, 0, i),
		}
	}
	return sales
}

func testStatementData(rows int) statementData {
	return statementData{
		BusinessName:   "Alpha CJ Solar",
		CurrencyPrefix: "PHP",
		CustomerID:     4,
		CustomerName:   "JUAN",
		PeriodStart:    "2024-05-01",
		PeriodEnd:      "2024-07-31",
		Sales:          makeSales(rows),
	}
}

func TestRenderStatement_Pagination(t *testing.T) {
	cases := []struct {
		rows  int
		pages int
	}{
		{0, 1},
		{10, 1},
		{25, 1},
		{27, 2}, // rows fit page one, the summary does not
		{28, 2},
		{60, 3},
	}

	for _, tc := range cases {
		pdf, pages, err := renderStatement(testStatementData(tc.rows))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")), "rows=%d", tc.rows)
		assert.Equal(t, tc.pages, pages, "rows=%d", tc.rows)
	}
}

func TestRenderStatement_WithLogo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 18))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var logo bytes.Buffer
	require.NoError(t, png.Encode(&logo, img))

	data := testStatementData(3)
	data.Logo = logo.Bytes()
	_, pages, err := renderStatement(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	// A broken logo is skipped
	data.Logo = []byte("not an image")
	_, _, err = renderStatement(data)
	assert.NoError(t, err)
}

func TestStatementFilename(t *testing.T) {
	assert.Equal(t, "statement_customer_12_JUAN_DELA_CRUZ.pdf", StatementFilename(12, "JUAN DELA CRUZ"))
	assert.Equal(t, "statement_customer_3_ACME_INC_.pdf", StatementFilename(3, "ACME, INC."))
}

func TestStatementService_Generate(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	customers := &mockCustomerRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
		return &models.Customer{ID: id, Name: "MARIA SANTOS"}, nil
	}}
	sales := &mockSaleRepo{mockFindByCustomer: func(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error) {
		return makeSales(3), nil
	}}
	cfg := &config.Config{BusinessName: "Alpha CJ Solar", CurrencyPrefix: "PHP"}
	service := NewStatementService(customers, sales, nil, store, nil, cfg)

	stmt, err := service.Generate(context.Background(), 9, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "statement_customer_9_MARIA_SANTOS.pdf", stmt.Filename)
	assert.Equal(t, 3, stmt.Summary.Transactions)
	assert.Equal(t, 6, stmt.Summary.TotalQty)
	assert.Equal(t, "9000", stmt.Summary.TotalSales.String())
	assert.NotEmpty(t, stmt.StoredPath)
	assert.True(t, store.Exists(stmt.StoredPath))
}

func TestStatementService_Generate_UnknownCustomer(t *testing.T) {
	customers := &mockCustomerRepo{mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
		return nil, gorm.ErrRecordNotFound
	}}
	service := NewStatementService(customers, &mockSaleRepo{}, nil, nil, nil, &config.Config{})

	_, err := service.Generate(context.Background(), 1, models.DateRange{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Customer not found.", err.Error())
}

func TestPeriodLabels(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	from, to := periodLabels(models.DateRange{Start: &start, End: &end}, nil)
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, "2024-01-31", to)

	from, _ = periodLabels(models.DateRange{}, makeSales(2))
	assert.Equal(t, "2024-05-01", from)
}
