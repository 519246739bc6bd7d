package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dashboard holds the headline inventory and sales figures
type Dashboard struct {
	TotalItems      int64              `json:"total_items"`
	TotalStockValue decimal.Decimal    `json:"total_stock_value"`
	TotalSales      decimal.Decimal    `json:"total_sales"`
	TotalProfit     decimal.Decimal    `json:"total_profit"`
	LowStockCount   int64              `json:"low_stock_count"`
	LowStockLimit   int                `json:"low_stock_threshold"`
	StockByCategory []CategoryStock    `json:"stock_by_category"`
	ProfitTrend     []ProfitTrendPoint `json:"profit_trend"`
	CurrencySymbol  string             `json:"currency_symbol"`
}

// CategoryStock is the quantity on hand for one category
type CategoryStock struct {
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
}

// ProfitTrendPoint is one day of sales and profit
type ProfitTrendPoint struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
	Profit     decimal.Decimal `json:"profit"`
}

// ProfitLossReport summarizes sales within a period
type ProfitLossReport struct {
	Start       *time.Time      `json:"start"`
	End         *time.Time      `json:"end"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	TotalQty    int             `json:"total_qty"`
	Sales       []Sale          `json:"sales"`
}
