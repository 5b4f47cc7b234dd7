// Package report builds read-only rollups over the ledger entities. Nothing
// here mutates; every money figure goes through the same arithmetic the
// ledger engine uses so the two can never disagree.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/models"
	"github.com/barlow-drilling/drillbooks/internal/money"
)

// DateRange is an inclusive calendar-day range: Start is 00:00:00.000 of the
// from date, End the last instant of the to date.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses YYYY-MM-DD bounds. Empty strings widen the range to
// everything.
func NewDateRange(fromDate, toDate string) (DateRange, error) {
	r := DateRange{
		Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2099, 12, 31, 23, 59, 59, 0, time.Local),
	}
	if fromDate != "" {
		start, err := time.ParseInLocation("2006-01-02", fromDate, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid from date, expected YYYY-MM-DD: %w", err)
		}
		r.Start = start
	}
	if toDate != "" {
		end, err := time.ParseInLocation("2006-01-02", toDate, time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid to date, expected YYYY-MM-DD: %w", err)
		}
		r.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	return r, nil
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Aggregator reads entity sets from the store and produces typed report
// rows.
type Aggregator struct {
	store database.Store
}

func NewAggregator(store database.Store) *Aggregator {
	return &Aggregator{store: store}
}

// EffectiveStatus derives overdue at read time: an unpaid, non-draft invoice
// past its due date reports as overdue without that ever being persisted.
func EffectiveStatus(inv *models.Invoice, now time.Time) models.InvoiceStatus {
	switch inv.Status {
	case models.InvoiceStatusSent, models.InvoiceStatusPartiallyPaid, models.InvoiceStatusAwaitingFinalPayment:
		if !inv.DueDate.IsZero() && inv.DueDate.Before(now) {
			return models.InvoiceStatusOverdue
		}
	}
	return inv.Status
}

// --- financial report ---

type FinancialRow struct {
	Date        time.Time
	Description string
	Category    string
	Type        models.TransactionType
	// Amount is signed: income positive, expense negative.
	Amount decimal.Decimal
}

type FinancialReport struct {
	Rows          []FinancialRow
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
}

func (a *Aggregator) Financial(ctx context.Context, r DateRange) (*FinancialReport, error) {
	transactions, err := a.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	rep := &FinancialReport{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, t := range transactions {
		if !r.Contains(t.Date) {
			continue
		}
		amount := t.Amount
		if t.Type == models.TransactionTypeExpense {
			amount = amount.Neg()
			rep.TotalExpenses = rep.TotalExpenses.Add(t.Amount)
		} else {
			rep.TotalIncome = rep.TotalIncome.Add(t.Amount)
		}
		rep.Rows = append(rep.Rows, FinancialRow{
			Date:        t.Date,
			Description: t.Description,
			Category:    t.Category,
			Type:        t.Type,
			Amount:      amount,
		})
	}
	rep.Net = rep.TotalIncome.Sub(rep.TotalExpenses)
	return rep, nil
}

// --- profit & loss ---

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

type ProfitLossReport struct {
	TotalIncome   decimal.Decimal
	Expenses      []CategoryTotal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
}

func (a *Aggregator) ProfitLoss(ctx context.Context, r DateRange) (*ProfitLossReport, error) {
	transactions, err := a.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	rep := &ProfitLossReport{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if !r.Contains(t.Date) {
			continue
		}
		if t.Type == models.TransactionTypeIncome {
			rep.TotalIncome = rep.TotalIncome.Add(t.Amount)
			continue
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		rep.TotalExpenses = rep.TotalExpenses.Add(t.Amount)
	}

	for category, total := range byCategory {
		rep.Expenses = append(rep.Expenses, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(rep.Expenses, func(i, j int) bool { return rep.Expenses[i].Category < rep.Expenses[j].Category })

	rep.NetProfit = rep.TotalIncome.Sub(rep.TotalExpenses)
	return rep, nil
}

// --- project profitability ---

type ProjectProfitRow struct {
	ProjectID      string
	ProjectName    string
	ClientName     string
	Status         models.ProjectStatus
	MaterialsCost  decimal.Decimal
	StaffCost      decimal.Decimal
	OtherExpenses  decimal.Decimal
	TotalCost      decimal.Decimal
	AmountReceived decimal.Decimal
	Net            decimal.Decimal
}

func (a *Aggregator) ProjectProfitability(ctx context.Context) ([]ProjectProfitRow, error) {
	projects, err := a.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ProjectProfitRow, 0, len(projects))
	for _, p := range projects {
		materials := decimal.Zero
		for _, m := range p.Materials {
			materials = materials.Add(m.Cost())
		}
		staff := decimal.Zero
		for _, sa := range p.Staff {
			staff = staff.Add(sa.Payment)
		}
		other := decimal.Zero
		for _, ex := range p.OtherExpenses {
			other = other.Add(ex.Amount)
		}
		total := materials.Add(staff).Add(other)
		rows = append(rows, ProjectProfitRow{
			ProjectID:      p.ID,
			ProjectName:    p.Name,
			ClientName:     p.ClientName,
			Status:         p.Status,
			MaterialsCost:  materials,
			StaffCost:      staff,
			OtherExpenses:  other,
			TotalCost:      total,
			AmountReceived: p.AmountReceived,
			Net:            p.AmountReceived.Sub(total),
		})
	}
	return rows, nil
}

// --- invoice summary ---

type InvoiceSummaryRow struct {
	InvoiceNumber string
	ClientName    string
	ProjectName   string
	Date          time.Time
	DueDate       time.Time
	Status        models.InvoiceStatus
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Balance       decimal.Decimal
}

func (a *Aggregator) InvoiceSummary(ctx context.Context, r DateRange, now time.Time) ([]InvoiceSummaryRow, error) {
	invoices, err := a.store.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	var rows []InvoiceSummaryRow
	for _, inv := range invoices {
		if !r.Contains(inv.Date) {
			continue
		}
		total := money.Total(inv)
		rows = append(rows, InvoiceSummaryRow{
			InvoiceNumber: inv.InvoiceNumber,
			ClientName:    inv.ClientName,
			ProjectName:   inv.ProjectName,
			Date:          inv.Date,
			DueDate:       inv.DueDate,
			Status:        EffectiveStatus(inv, now),
			Total:         total,
			Paid:          inv.AmountPaid,
			Balance:       total.Sub(inv.AmountPaid),
		})
	}
	return rows, nil
}

// --- client statement ---

type StatementEntry struct {
	Date      time.Time
	Reference string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

type ClientStatement struct {
	ClientID       string
	ClientName     string
	Entries        []StatementEntry
	ClosingBalance decimal.Decimal
}

// ClientStatement merges one client's invoices (debits at the invoice date)
// and payments (credits at the payment date) into a chronological list with
// a running balance.
func (a *Aggregator) ClientStatement(ctx context.Context, clientID string, r DateRange) (*ClientStatement, error) {
	client, err := a.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	invoices, err := a.store.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	st := &ClientStatement{ClientID: client.ID, ClientName: client.Name}
	for _, inv := range invoices {
		if inv.ClientID == nil || *inv.ClientID != clientID {
			continue
		}
		if r.Contains(inv.Date) {
			st.Entries = append(st.Entries, StatementEntry{
				Date:      inv.Date,
				Reference: fmt.Sprintf("Invoice #%s", inv.InvoiceNumber),
				Debit:     money.Total(inv),
				Credit:    decimal.Zero,
			})
		}
		for _, p := range inv.Payments {
			if !r.Contains(p.Date) {
				continue
			}
			st.Entries = append(st.Entries, StatementEntry{
				Date:      p.Date,
				Reference: fmt.Sprintf("Payment on Invoice #%s", inv.InvoiceNumber),
				Debit:     decimal.Zero,
				Credit:    p.Amount,
			})
		}
	}

	sort.SliceStable(st.Entries, func(i, j int) bool { return st.Entries[i].Date.Before(st.Entries[j].Date) })

	balance := decimal.Zero
	for i := range st.Entries {
		balance = balance.Add(st.Entries[i].Debit).Sub(st.Entries[i].Credit)
		st.Entries[i].Balance = balance
	}
	st.ClosingBalance = balance
	return st, nil
}
