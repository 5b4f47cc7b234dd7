package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeStandard InvoiceType = "invoice"
	InvoiceTypeProforma InvoiceType = "proforma"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft                InvoiceStatus = "draft"
	InvoiceStatusSent                 InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid        InvoiceStatus = "partially_paid"
	InvoiceStatusAwaitingFinalPayment InvoiceStatus = "awaiting_final_payment"
	InvoiceStatusPaid                 InvoiceStatus = "paid"
	// InvoiceStatusOverdue is derived at read time by comparing the due date
	// against "now"; it is never written to the store.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type Client struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Employee struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Role      string         `json:"role" db:"role"`
	Status    EmployeeStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Material is a priced material line on a project. Its ID doubles as the
// source id of the mirrored expense transaction.
type Material struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func (m Material) Cost() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost)
}

// StaffAssignment links an employee to a project with an agreed payment.
// Assignments have no row id of their own; the mirrored transaction is keyed
// by StaffSourceID(projectID, employeeID). EmployeeName is a snapshot taken
// when the assignment is created.
type StaffAssignment struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Payment      decimal.Decimal `json:"payment"`
}

// Expense is a free-form project cost line (fuel, permits, rig transport).
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Project tracks a drilling job. AmountReceived is derived from linked
// invoices and never hand-edited. ClientName is a save-time snapshot.
type Project struct {
	ID             string            `json:"id" db:"id"`
	Name           string            `json:"name" db:"name"`
	ClientID       *string           `json:"client_id,omitempty" db:"client_id"`
	ClientName     string            `json:"client_name" db:"client_name"`
	TotalBudget    decimal.Decimal   `json:"total_budget" db:"total_budget"`
	AmountReceived decimal.Decimal   `json:"amount_received" db:"amount_received"`
	Status         ProjectStatus     `json:"status" db:"status"`
	Materials      []Material        `json:"materials"`
	Staff          []StaffAssignment `json:"staff"`
	OtherExpenses  []Expense         `json:"other_expenses"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// TotalCost sums materials, staff payments and other expenses.
func (p *Project) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, m := range p.Materials {
		total = total.Add(m.Cost())
	}
	for _, s := range p.Staff {
		total = total.Add(s.Payment)
	}
	for _, e := range p.OtherExpenses {
		total = total.Add(e.Amount)
	}
	return total
}

type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type Payment struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	CheckNumber *string         `json:"check_number,omitempty"`
}

// Invoice owns its line items and payments. ClientName and ProjectName are
// save-time snapshots and are never backfilled when the referenced entity is
// later renamed.
type Invoice struct {
	ID             string          `json:"id" db:"id"`
	InvoiceNumber  string          `json:"invoice_number" db:"invoice_number"`
	Type           InvoiceType     `json:"type" db:"type"`
	Status         InvoiceStatus   `json:"status" db:"status"`
	ClientID       *string         `json:"client_id,omitempty" db:"client_id"`
	ClientName     string          `json:"client_name" db:"client_name"`
	ProjectID      *string         `json:"project_id,omitempty" db:"project_id"`
	ProjectName    string          `json:"project_name" db:"project_name"`
	Date           time.Time       `json:"date" db:"date"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	LineItems      []LineItem      `json:"line_items"`
	TaxRate        decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	Payments       []Payment       `json:"payments"`
	// AmountPaid is derived from Payments on every save. It normally equals
	// the payment sum; when the status is paid it is normalized to the
	// invoice total.
	AmountPaid decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Transaction is a row in the company ledger. Rows with a SourceID are
// system-managed mirrors of an invoice's payment stream or a project cost
// line and carry ReadOnly=true; rows without one are manual entries.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	Date        time.Time       `json:"date" db:"date"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	SourceID    *string         `json:"source_id,omitempty" db:"source_id"`
	ReadOnly    bool            `json:"is_read_only" db:"is_read_only"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// StaffSourceID is the synthetic source id for the expense transaction
// mirroring a staff assignment.
func StaffSourceID(projectID, employeeID string) string {
	return fmt.Sprintf("staff-%s-%s", projectID, employeeID)
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
