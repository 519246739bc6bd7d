package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSale_ApplyPricing(t *testing.T) {
	item := &Item{
		ID:           7,
		Name:         "Panel A",
		Category:     "Panels",
		Quantity:     10,
		UnitCost:     decimal.NewFromInt(100),
		SellingPrice: decimal.NewFromInt(150),
	}

	sale := &Sale{Quantity: 3}
	sale.ApplyPricing(item)

	assert.Equal(t, uint(7), *sale.ItemID)
	assert.Equal(t, "Panel A", sale.ItemName)
	assert.True(t, sale.TotalSale.Equal(decimal.NewFromInt(450)))
	assert.True(t, sale.Cost.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "150.00", sale.Profit.StringFixed(2))
}

func TestSummarize(t *testing.T) {
	sales := []Sale{
		{Quantity: 2, TotalSale: decimal.NewFromInt(300), Cost: decimal.NewFromInt(200), Profit: decimal.NewFromInt(100)},
		{Quantity: 1, TotalSale: decimal.RequireFromString("99.50"), Cost: decimal.NewFromInt(50), Profit: decimal.RequireFromString("49.50")},
	}

	sum := Summarize(sales)
	assert.Equal(t, 2, sum.Transactions)
	assert.Equal(t, 3, sum.TotalQty)
	assert.Equal(t, "399.50", sum.TotalSales.StringFixed(2))
	assert.Equal(t, "149.50", sum.TotalProfit.StringFixed(2))

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Transactions)
	assert.True(t, empty.TotalSales.IsZero())
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "PHP0.00"},
		{"12.5", "PHP12.50"},
		{"999.999", "PHP1,000.00"},
		{"1234.5", "PHP1,234.50"},
		{"1234567.891", "PHP1,234,567.89"},
		{"-2500", "-PHP2,500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency("PHP", decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestCustomer_Normalize(t *testing.T) {
	c := &Customer{Name: "  juan dela cruz ", Phone: " 0917 ", Email: "juan@mail.ph", Address: "cebu city"}
	c.Normalize()

	assert.Equal(t, "JUAN DELA CRUZ", c.Name)
	assert.Equal(t, "0917", c.Phone)
	assert.Equal(t, "JUAN@MAIL.PH", c.Email)
	assert.Equal(t, "CEBU CITY", c.Address)
}

func TestItem_Normalize(t *testing.T) {
	blank := "  "
	item := &Item{Name: " Inverter 5kW ", Category: " Inverters", Unit: &blank}
	item.Normalize()

	assert.Equal(t, "Inverter 5kW", item.Name)
	assert.Equal(t, "Inverters", item.Category)
	assert.Nil(t, item.Unit)
	assert.Equal(t, "", item.UnitLabel())
}

func TestItem_HasStock(t *testing.T) {
	item := &Item{Quantity: 5}
	assert.True(t, item.HasStock(5))
	assert.False(t, item.HasStock(6))
	assert.False(t, item.HasStock(0))
}

func TestDateRange_Bounds(t *testing.T) {
	start := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)

	from, to := DateRange{Start: &start, End: &end}.Bounds()
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *to)

	from, to = DateRange{}.Bounds()
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestImportBatch_ErrorList(t *testing.T) {
	b := &ImportBatch{}
	assert.Equal(t, []string{}, b.ErrorList())

	b.SetErrors([]string{"row 2: missing item", "row 5: missing item"})
	assert.Equal(t, []string{"row 2: missing item", "row 5: missing item"}, b.ErrorList())
}
