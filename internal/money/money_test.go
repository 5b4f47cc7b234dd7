package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceTotal(t *testing.T) {
	items := []models.LineItem{
		{Description: "Borehole drilling", Quantity: d("2"), Rate: d("100")},
		{Description: "Pump installation", Quantity: d("1"), Rate: d("150")},
	}

	t.Run("tax applied to subtotal", func(t *testing.T) {
		total := InvoiceTotal(items, d("10"), decimal.Zero)
		require.True(t, total.Equal(d("385")), "got %s", total)
	})

	t.Run("discount comes off before tax", func(t *testing.T) {
		total := InvoiceTotal(items, d("10"), d("50"))
		require.True(t, total.Equal(d("330")), "got %s", total)
	})

	t.Run("no items yields zero", func(t *testing.T) {
		total := InvoiceTotal(nil, d("10"), decimal.Zero)
		require.True(t, total.IsZero(), "got %s", total)
	})
}

func TestTotalPaid(t *testing.T) {
	require.True(t, TotalPaid(nil).IsZero())

	paid := TotalPaid([]models.Payment{
		{Amount: d("100.50")},
		{Amount: d("49.50")},
	})
	require.True(t, paid.Equal(d("150")), "got %s", paid)
}

func TestBalance(t *testing.T) {
	inv := &models.Invoice{
		LineItems:  []models.LineItem{{Quantity: d("1"), Rate: d("500")}},
		AmountPaid: d("200"),
	}
	balance := Balance(inv)
	require.True(t, balance.Equal(d("300")), "got %s", balance)
}
