package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// ReportRepository runs the aggregate queries behind the dashboard and reports
type ReportRepository interface {
	InventoryTotals(ctx context.Context, lowStockThreshold int) (*InventoryTotals, error)
	StockByCategory(ctx context.Context) ([]models.CategoryStock, error)
	SalesTotals(ctx context.Context, period models.DateRange) (*SalesTotals, error)
	SalesInPeriod(ctx context.Context, period models.DateRange) ([]models.Sale, error)
}

// InventoryTotals are the stock figures shown on the dashboard
type InventoryTotals struct {
	TotalItems    int64
	StockValue    decimal.Decimal
	LowStockCount int64
}

// SalesTotals are summed sale columns for a period
type SalesTotals struct {
	Transactions int64
	TotalQty     int64
	TotalSales   decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) InventoryTotals(ctx context.Context, lowStockThreshold int) (*InventoryTotals, error) {
	var row struct {
		TotalItems int64
		StockValue decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("COUNT(*) AS total_items, COALESCE(SUM(quantity * unit_cost), 0) AS stock_value").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &InventoryTotals{TotalItems: row.TotalItems, StockValue: row.StockValue}
	err = r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("quantity < ?", lowStockThreshold).
		Count(&totals.LowStockCount).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *reportRepository) StockByCategory(ctx context.Context) ([]models.CategoryStock, error) {
	var rows []models.CategoryStock
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("category, COALESCE(SUM(quantity), 0) AS quantity").
		Group("category").
		Order("category").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) SalesTotals(ctx context.Context, period models.DateRange) (*SalesTotals, error) {
	var totals SalesTotals
	db := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select(`COUNT(*) AS transactions,
			COALESCE(SUM(quantity), 0) AS total_qty,
			COALESCE(SUM(total_sale), 0) AS total_sales,
			COALESCE(SUM(cost), 0) AS total_cost,
			COALESCE(SUM(profit), 0) AS total_profit`)
	err := withPeriod(db, "date", period).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *reportRepository) SalesInPeriod(ctx context.Context, period models.DateRange) ([]models.Sale, error) {
	var sales []models.Sale
	db := r.db.WithContext(ctx).Preload("Customer")
	err := withPeriod(db, "date", period).
		Order("date ASC, id ASC").
		Find(&sales).Error
	return sales, err
}
