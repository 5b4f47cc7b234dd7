// Package money holds the arithmetic shared by the ledger engine, the
// reports and the CLI so that every caller computes identical figures.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// InvoiceTotal computes an invoice total from its parts:
// (sum of quantity*rate - discount) * (1 + taxRate/100).
// Negative inputs are the caller's problem; validation happens before writes.
func InvoiceTotal(lineItems []models.LineItem, taxRate, discountAmount decimal.Decimal) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range lineItems {
		subtotal = subtotal.Add(item.Quantity.Mul(item.Rate))
	}
	net := subtotal.Sub(discountAmount)
	return net.Mul(decimal.NewFromInt(1).Add(taxRate.Div(oneHundred)))
}

// TotalPaid sums the payment amounts. A nil or empty list yields zero.
func TotalPaid(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Balance is the outstanding amount on a stored invoice, computed from the
// persisted paid figure.
func Balance(inv *models.Invoice) decimal.Decimal {
	return Total(inv).Sub(inv.AmountPaid)
}

// Total is InvoiceTotal applied to an invoice record.
func Total(inv *models.Invoice) decimal.Decimal {
	return InvoiceTotal(inv.LineItems, inv.TaxRate, inv.DiscountAmount)
}
