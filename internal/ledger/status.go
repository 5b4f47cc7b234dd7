package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

var awaitingFinalThreshold = decimal.NewFromFloat(0.75)

// DeriveStatus applies the write-time status rules to an invoice and returns
// the status to persist together with the paid figure to store, which may be
// normalized upward.
//
// Rules in priority order:
//  1. Draft is sticky; leaving it takes an explicit user action.
//  2. A proforma that is sent or partially paid moves to
//     awaiting_final_payment once at least 75% of the total is paid but the
//     total is not yet covered.
//  3. A paid invoice has its stored paid figure forced to the total.
//  4. Anything else keeps the caller's status. There is no automatic
//     regression from paid, and overdue is never derived here; it is a
//     read-time comparison against the due date.
func DeriveStatus(inv *models.Invoice, total, paid decimal.Decimal) (models.InvoiceStatus, decimal.Decimal) {
	if inv.Status == models.InvoiceStatusDraft {
		return models.InvoiceStatusDraft, paid
	}

	if inv.Type == models.InvoiceTypeProforma &&
		(inv.Status == models.InvoiceStatusSent || inv.Status == models.InvoiceStatusPartiallyPaid) &&
		paid.GreaterThanOrEqual(total.Mul(awaitingFinalThreshold)) &&
		paid.LessThan(total) {
		return models.InvoiceStatusAwaitingFinalPayment, paid
	}

	if inv.Status == models.InvoiceStatusPaid {
		return models.InvoiceStatusPaid, total
	}

	return inv.Status, paid
}

// AdvanceProjectStatus applies the one-way progress ratchet: planned moves to
// in_progress as soon as anything has been received, and in_progress moves to
// completed once receipts cover the budget. On-hold and manually set states
// are never overridden, and a status never moves backwards even if receipts
// later drop below a threshold.
func AdvanceProjectStatus(p *models.Project) {
	if p.Status == models.ProjectStatusPlanned && p.AmountReceived.IsPositive() {
		p.Status = models.ProjectStatusInProgress
	}
	if p.Status == models.ProjectStatusInProgress && p.AmountReceived.GreaterThanOrEqual(p.TotalBudget) {
		p.Status = models.ProjectStatusCompleted
	}
}
