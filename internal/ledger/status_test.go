package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveStatus(t *testing.T) {
	t.Run("draft is sticky regardless of payments", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeStandard, Status: models.InvoiceStatusDraft}
		status, paid := DeriveStatus(inv, d("1000"), d("1000"))
		require.Equal(t, models.InvoiceStatusDraft, status)
		require.True(t, paid.Equal(d("1000")))
	})

	t.Run("proforma moves to awaiting final payment at 75 percent", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeProforma, Status: models.InvoiceStatusSent}
		status, _ := DeriveStatus(inv, d("1000"), d("750"))
		require.Equal(t, models.InvoiceStatusAwaitingFinalPayment, status)

		inv.Status = models.InvoiceStatusPartiallyPaid
		status, _ = DeriveStatus(inv, d("1000"), d("900"))
		require.Equal(t, models.InvoiceStatusAwaitingFinalPayment, status)
	})

	t.Run("proforma below threshold keeps its status", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeProforma, Status: models.InvoiceStatusSent}
		status, _ := DeriveStatus(inv, d("1000"), d("749.99"))
		require.Equal(t, models.InvoiceStatusSent, status)
	})

	t.Run("proforma fully covered does not use the threshold status", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeProforma, Status: models.InvoiceStatusSent}
		status, _ := DeriveStatus(inv, d("1000"), d("1000"))
		require.Equal(t, models.InvoiceStatusSent, status)
	})

	t.Run("standard invoice never gets the proforma status", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeStandard, Status: models.InvoiceStatusSent}
		status, _ := DeriveStatus(inv, d("1000"), d("800"))
		require.Equal(t, models.InvoiceStatusSent, status)
	})

	t.Run("paid normalizes the stored figure to the total", func(t *testing.T) {
		inv := &models.Invoice{Type: models.InvoiceTypeStandard, Status: models.InvoiceStatusPaid}
		status, paid := DeriveStatus(inv, d("385"), d("300"))
		require.Equal(t, models.InvoiceStatusPaid, status)
		require.True(t, paid.Equal(d("385")), "got %s", paid)
	})
}

func TestAdvanceProjectStatus(t *testing.T) {
	t.Run("planned moves to in_progress on first receipt", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusPlanned, TotalBudget: d("1000"), AmountReceived: d("1")}
		AdvanceProjectStatus(p)
		require.Equal(t, models.ProjectStatusInProgress, p.Status)
	})

	t.Run("in_progress completes when receipts cover the budget", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusInProgress, TotalBudget: d("1000"), AmountReceived: d("1000")}
		AdvanceProjectStatus(p)
		require.Equal(t, models.ProjectStatusCompleted, p.Status)
	})

	t.Run("on_hold is never advanced", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusOnHold, TotalBudget: d("100"), AmountReceived: d("500")}
		AdvanceProjectStatus(p)
		require.Equal(t, models.ProjectStatusOnHold, p.Status)
	})

	t.Run("completed never regresses when receipts drop", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusCompleted, TotalBudget: d("1000"), AmountReceived: d("200")}
		AdvanceProjectStatus(p)
		require.Equal(t, models.ProjectStatusCompleted, p.Status)
	})

	t.Run("zero budget completes as soon as anything arrives", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusPlanned, TotalBudget: decimal.Zero, AmountReceived: d("50")}
		AdvanceProjectStatus(p)
		require.Equal(t, models.ProjectStatusCompleted, p.Status)
	})
}
