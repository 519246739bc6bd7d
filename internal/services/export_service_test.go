package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFixture(t *testing.T) (*ExportService, *models.Customer) {
	t.Helper()
	repos := newTestRepos(t)
	ctx := context.Background()

	for _, item := range []*models.Item{
		{Name: "Panel A", Category: "Panels", Quantity: 10, UnitCost: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(150)},
		{Name: "Inverter", Category: "Inverters", Quantity: 2, UnitCost: decimal.NewFromInt(900), SellingPrice: decimal.NewFromInt(1200)},
	} {
		_, err := repos.Item.Upsert(ctx, item, "admin")
		require.NoError(t, err)
	}

	customer := &models.Customer{Name: "JUAN"}
	require.NoError(t, repos.Customer.Create(ctx, customer))

	panel, err := repos.Item.FindByNameAndCategory(ctx, "Panel A", "Panels")
	require.NoError(t, err)

	sale := &models.Sale{Quantity: 3, Date: time.Now(), CustomerID: &customer.ID, User: "admin"}
	sale.ApplyPricing(panel)
	require.NoError(t, repos.Sale.Record(ctx, sale))

	inst := &models.Installation{CustomerID: customer.ID, ItemID: &panel.ID, Quantity: 2, InstalledBy: "tech", Date: time.Now()}
	require.NoError(t, repos.Installation.Record(ctx, inst, "admin"))

	return NewExportService(repos.Item, repos.Sale, repos.Installation, repos.Audit), customer
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportService_Inventory(t *testing.T) {
	service, _ := newExportFixture(t)
	ctx := context.Background()

	data, name, err := service.InventoryCSV(ctx, "Panels")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "inventory_"))

	records := readCSV(t, data)
	require.Len(t, records, 2)
	assert.Equal(t, inventoryHeader, records[0])
	assert.Equal(t, "Panel A", records[1][1])
	assert.Equal(t, "5", records[1][3]) // 10 - 3 sold - 2 installed
	assert.Equal(t, "500.00", records[1][7])

	data, name, err = service.InventoryXLSX(ctx, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "item", rows[0][1])
}

func TestExportService_CustomerFiles(t *testing.T) {
	service, customer := newExportFixture(t)
	ctx := context.Background()

	data, name, err := service.SalesCSV(ctx, &repository.SaleQuery{CustomerID: &customer.ID})
	require.NoError(t, err)
	assert.Equal(t, "customer_1_sales.csv", name)
	records := readCSV(t, data)
	require.Len(t, records, 2)
	assert.Equal(t, "450.00", records[1][6])
	assert.Equal(t, "150.00", records[1][8])

	data, name, err = service.InstallationsCSV(ctx, &customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer_1_installations.csv", name)
	records = readCSV(t, data)
	require.Len(t, records, 2)
	assert.Equal(t, "tech", records[1][6])
}

func TestExportService_AuditCSV(t *testing.T) {
	service, _ := newExportFixture(t)

	data, _, err := service.AuditCSV(context.Background(), &repository.AuditQuery{Action: models.AuditActionAdd})
	require.NoError(t, err)

	records := readCSV(t, data)
	require.Len(t, records, 3)
	for _, r := range records[1:] {
		assert.Equal(t, models.AuditActionAdd, r[2])
		assert.Equal(t, "admin", r[8])
	}
}
