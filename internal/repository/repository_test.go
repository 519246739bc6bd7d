package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/database"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedItem(t *testing.T, db *gorm.DB, name, category string, qty int, cost, price int64) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:         name,
		Category:     category,
		Quantity:     qty,
		UnitCost:     decimal.NewFromInt(cost),
		SellingPrice: decimal.NewFromInt(price),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func auditActions(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var actions []string
	require.NoError(t, db.Model(&models.AuditLog{}).Order("id").Pluck("action", &actions).Error)
	return actions
}

func TestItemRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()

	action, err := repo.Upsert(ctx, &models.Item{
		Name: "Panel A", Category: "Panels", Quantity: 10,
		UnitCost: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(150),
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionAdd, action)

	update := &models.Item{
		Name: "Panel A", Category: "Panels", Quantity: 5,
		UnitCost: decimal.NewFromInt(110), SellingPrice: decimal.NewFromInt(160),
	}
	action, err = repo.Upsert(ctx, update, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionUpdate, action)
	assert.Equal(t, 15, update.Quantity)

	stored, err := repo.FindByNameAndCategory(ctx, "Panel A", "Panels")
	require.NoError(t, err)
	assert.Equal(t, 15, stored.Quantity)
	assert.True(t, stored.UnitCost.Equal(decimal.NewFromInt(110)))

	// Same name in another category is a different item
	action, err = repo.Upsert(ctx, &models.Item{Name: "Panel A", Category: "Demo Units", Quantity: 1}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.AuditActionAdd, action)

	assert.Equal(t, []string{"Add", "Update", "Add"}, auditActions(t, db))
}

func TestItemRepository_Delete_LogsPriorValues(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	item := seedItem(t, db, "Inverter 5kW", "Inverters", 4, 20000, 26000)

	deleted, err := repo.Delete(context.Background(), item.ID, "staff1")
	require.NoError(t, err)
	assert.Equal(t, "Inverter 5kW", deleted.Name)

	var entry models.AuditLog
	require.NoError(t, db.Last(&entry).Error)
	assert.Equal(t, models.AuditActionDelete, entry.Action)
	assert.Equal(t, 4, entry.Quantity)
	assert.Equal(t, "Inverters", entry.Category)
	assert.True(t, entry.SellingPrice.Equal(decimal.NewFromInt(26000)))
	assert.Equal(t, "staff1", entry.User)

	_, err = repo.Delete(context.Background(), item.ID, "staff1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestItemRepository_DeleteAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	seedItem(t, db, "Panel A", "Panels", 10, 100, 150)
	seedItem(t, db, "Battery", "Batteries", 2, 5000, 7000)

	deleted, err := repo.DeleteAll(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	items, total, err := repo.List(context.Background(), NewListQuery())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), total)
	assert.Equal(t, []string{"Delete", "Delete"}, auditActions(t, db))
}

func TestItemRepository_ListFiltersAndLowStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	ctx := context.Background()
	seedItem(t, db, "Panel A", "Panels", 10, 100, 150)
	seedItem(t, db, "Panel B", "Panels", 0, 120, 170)
	seedItem(t, db, "MC4 Connector", "Accessories", 50, 20, 35)

	q := NewListQuery()
	q.Filters["category"] = "Panels"
	items, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Panel A", items[0].Name)

	q = NewListQuery()
	q.Search = "mc4"
	items, _, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Accessories", items[0].Category)

	low, err := repo.LowStock(ctx, 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Panel B", low[0].Name)

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Accessories", "Panels"}, categories)
}

func TestItemRepository_ReplaceStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	seedItem(t, db, "Panel A", "Panels", 10, 100, 150)

	added, updated, err := repo.ReplaceStock(context.Background(), []models.Item{
		{Name: "Panel A", Category: "Panels", Quantity: 3, UnitCost: decimal.NewFromInt(90), SellingPrice: decimal.NewFromInt(140)},
		{Name: "Rail 2m", Category: "Mounting", Quantity: 40, UnitCost: decimal.NewFromInt(300), SellingPrice: decimal.NewFromInt(420)},
	}, "import")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, updated)

	item, err := repo.FindByNameAndCategory(context.Background(), "Panel A", "Panels")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, []string{"Update", "Add"}, auditActions(t, db))
}

func TestSaleRepository_Record(t *testing.T) {
	db := newTestDB(t)
	repo := NewSaleRepository(db)
	item := seedItem(t, db, "Panel A", "Panels", 10, 100, 150)

	sale := &models.Sale{ItemID: &item.ID, Quantity: 3, Date: time.Now().UTC(), User: "cashier"}
	require.NoError(t, repo.Record(context.Background(), sale))

	assert.NotZero(t, sale.ID)
	assert.Equal(t, "150.00", sale.Profit.StringFixed(2))
	assert.Equal(t, "450.00", sale.TotalSale.StringFixed(2))

	var stored models.Item
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 7, stored.Quantity)

	var entry models.AuditLog
	require.NoError(t, db.Last(&entry).Error)
	assert.Equal(t, models.AuditActionSale, entry.Action)
	assert.Equal(t, 3, entry.Quantity)
	assert.Equal(t, "cashier", entry.User)
}

func TestSaleRepository_Record_InsufficientStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewSaleRepository(db)
	item := seedItem(t, db, "Panel A", "Panels", 2, 100, 150)

	err := repo.Record(context.Background(), &models.Sale{ItemID: &item.ID, Quantity: 3, Date: time.Now().UTC()})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Current)
	assert.Equal(t, 3, stockErr.Requested)

	var stored models.Item
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 2, stored.Quantity)

	var sales, audits int64
	db.Model(&models.Sale{}).Count(&sales)
	db.Model(&models.AuditLog{}).Count(&audits)
	assert.Zero(t, sales)
	assert.Zero(t, audits)
}

func TestSaleRepository_Record_MissingReferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()

	missing := uint(999)
	err := repo.Record(ctx, &models.Sale{ItemID: &missing, Quantity: 1, Date: time.Now().UTC()})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	item := seedItem(t, db, "Panel A", "Panels", 5, 100, 150)
	err = repo.Record(ctx, &models.Sale{ItemID: &item.ID, CustomerID: &missing, Quantity: 1, Date: time.Now().UTC()})
	var refErr *MissingReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "Customer", refErr.Entity)

	var stored models.Item
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 5, stored.Quantity)
}

func TestSaleRepository_ListByCustomerAndPeriod(t *testing.T) {
	db := newTestDB(t)
	repo := NewSaleRepository(db)
	ctx := context.Background()
	item := seedItem(t, db, "Panel A", "Panels", 100, 100, 150)
	customer := &models.Customer{Name: "JUAN"}
	require.NoError(t, db.Create(customer).Error)

	march := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Record(ctx, &models.Sale{ItemID: &item.ID, CustomerID: &customer.ID, Quantity: 1, Date: march}))
	require.NoError(t, repo.Record(ctx, &models.Sale{ItemID: &item.ID, CustomerID: &customer.ID, Quantity: 2, Date: april}))
	require.NoError(t, repo.Record(ctx, &models.Sale{ItemID: &item.ID, Quantity: 4, Date: march}))

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	sales, err := repo.FindByCustomer(ctx, customer.ID, models.DateRange{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 1, sales[0].Quantity)

	all, total, err := repo.List(ctx, &SaleQuery{ListQuery: NewListQuery(), CustomerID: &customer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 2, all[0].Quantity, "newest first")
	require.NotNil(t, all[0].Customer)
	assert.Equal(t, "JUAN", all[0].Customer.Name)
}

func TestInstallationRepository_Record(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstallationRepository(db)
	ctx := context.Background()
	item := seedItem(t, db, "Inverter 5kW", "Inverters", 3, 20000, 26000)
	customer := &models.Customer{Name: "MARIA"}
	require.NoError(t, db.Create(customer).Error)

	inst := &models.Installation{CustomerID: customer.ID, ItemID: &item.ID, Quantity: 2, InstalledBy: "Tech Team", Date: time.Now().UTC()}
	require.NoError(t, repo.Record(ctx, inst, "admin"))
	assert.Equal(t, "Inverter 5kW", inst.ItemName)

	var stored models.Item
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, 1, stored.Quantity)
	assert.Equal(t, []string{"Installation"}, auditActions(t, db))

	err := repo.Record(ctx, &models.Installation{CustomerID: customer.ID, ItemID: &item.ID, Quantity: 5, Date: time.Now().UTC()}, "admin")
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Current)

	list, total, err := repo.List(ctx, &InstallationQuery{ListQuery: NewListQuery(), CustomerID: &customer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	resp := list[0].ToResponse()
	assert.Equal(t, "MARIA", resp.CustomerName)
	assert.Equal(t, "Inverter 5kW", resp.ItemName)

	require.NoError(t, repo.Delete(ctx, inst.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, inst.ID), gorm.ErrRecordNotFound))
}

func TestCustomerRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()
	item := seedItem(t, db, "Panel A", "Panels", 10, 100, 150)
	customer := &models.Customer{Name: "PEDRO"}
	require.NoError(t, repo.Create(ctx, customer))

	require.NoError(t, NewSaleRepository(db).Record(ctx, &models.Sale{ItemID: &item.ID, CustomerID: &customer.ID, Quantity: 1, Date: time.Now().UTC()}))
	require.NoError(t, NewInstallationRepository(db).Record(ctx, &models.Installation{CustomerID: customer.ID, ItemID: &item.ID, Quantity: 1, Date: time.Now().UTC()}, "admin"))

	require.NoError(t, repo.Delete(ctx, customer.ID))

	var installations int64
	db.Model(&models.Installation{}).Count(&installations)
	assert.Zero(t, installations)

	var sale models.Sale
	require.NoError(t, db.First(&sale).Error)
	assert.Nil(t, sale.CustomerID)

	_, err := repo.FindByID(ctx, customer.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCustomerRepository_DuplicateNameAndDeleteAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Customer{Name: "ANA"}))
	require.NoError(t, repo.Create(ctx, &models.Customer{Name: "BEN"}))
	assert.Error(t, repo.Create(ctx, &models.Customer{Name: "ANA"}))

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, total, err := repo.List(ctx, NewListQuery())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAuditRepository_ListByPeriod(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	old := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.AuditLog{Item: "Panel A", Action: "Add", Timestamp: old}))
	require.NoError(t, repo.Create(ctx, &models.AuditLog{Item: "Panel A", Action: "Sale", Timestamp: recent}))

	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	logs, total, err := repo.List(ctx, &AuditQuery{ListQuery: NewListQuery(), Period: models.DateRange{Start: &start, End: &start}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Sale", logs[0].Action)
}

func TestReportRepository_Totals(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()
	item := seedItem(t, db, "Panel A", "Panels", 10, 100, 150)
	seedItem(t, db, "Battery", "Batteries", 0, 5000, 7000)

	require.NoError(t, NewSaleRepository(db).Record(ctx, &models.Sale{ItemID: &item.ID, Quantity: 3, Date: time.Now().UTC()}))

	inv, err := repo.InventoryTotals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inv.TotalItems)
	assert.Equal(t, "700.00", inv.StockValue.StringFixed(2))
	assert.Equal(t, int64(1), inv.LowStockCount)

	sales, err := repo.SalesTotals(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sales.Transactions)
	assert.Equal(t, "450.00", sales.TotalSales.StringFixed(2))
	assert.Equal(t, "150.00", sales.TotalProfit.StringFixed(2))

	byCategory, err := repo.StockByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryStock{{Category: "Batteries", Quantity: 0}, {Category: "Panels", Quantity: 7}}, byCategory)
}
