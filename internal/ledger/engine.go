package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/logger"
	"github.com/barlow-drilling/drillbooks/internal/models"
	"github.com/barlow-drilling/drillbooks/internal/money"
)

const (
	categoryClientPayment  = "Client Payment"
	categoryMaterials      = "Materials"
	categoryStaffWages     = "Staff Wages"
	categoryProjectExpense = "Project Expense"
)

// Engine keeps invoices, payments, projects and transactions mutually
// consistent. Every mutation reads the state it aggregates over, computes
// derived values and applies the full set of writes inside one store
// transaction; the mutex serializes operations so two saves touching the
// same project cannot interleave their read-recompute-write cycles.
type Engine struct {
	mu            sync.Mutex
	store         database.Store
	invoicePrefix string
	log           zerolog.Logger
}

func NewEngine(store database.Store, invoicePrefix string) *Engine {
	return &Engine{
		store:         store,
		invoicePrefix: invoicePrefix,
		log:           logger.WithComponent("ledger"),
	}
}

// ChangeSet reports every entity an operation touched so callers can refresh
// their view without re-fetching the world.
type ChangeSet struct {
	Clients      []*models.Client
	Employees    []*models.Employee
	Projects     []*models.Project
	Invoices     []*models.Invoice
	Transactions []*models.Transaction

	DeletedClientIDs      []string
	DeletedEmployeeIDs    []string
	DeletedProjectIDs     []string
	DeletedInvoiceIDs     []string
	DeletedTransactionIDs []string
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
	}
	return err
}

// --- invoices ---

// SaveInvoice creates or replaces an invoice and propagates the change:
// the stored paid figure and status are derived, the mirrored income
// transaction is regenerated from scratch, and the linked project's receipts
// are re-summed over all of its invoices.
func (e *Engine) SaveInvoice(ctx context.Context, inv models.Invoice) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveInvoiceLocked(ctx, inv)
}

func (e *Engine) saveInvoiceLocked(ctx context.Context, inv models.Invoice) (*ChangeSet, error) {
	if err := validateInvoice(&inv); err != nil {
		return nil, err
	}

	now := time.Now()
	if inv.ID == "" {
		inv.ID = models.NewUUID()
		inv.CreatedAt = now
	} else if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	for i := range inv.LineItems {
		if inv.LineItems[i].ID == "" {
			inv.LineItems[i].ID = models.NewUUID()
		}
	}
	for i := range inv.Payments {
		if inv.Payments[i].ID == "" {
			inv.Payments[i].ID = models.NewUUID()
		}
	}

	cs := &ChangeSet{}
	err := e.store.InTx(ctx, func(tx database.Store) error {
		// The previously stored project link must be recomputed too when an
		// edit moves the invoice to a different project or clears the link.
		var prevProjectID *string
		prev, err := tx.GetInvoice(ctx, inv.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if prev != nil {
			prevProjectID = prev.ProjectID
		}

		if inv.InvoiceNumber == "" {
			all, err := tx.ListInvoices(ctx)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = NextInvoiceNumber(all, e.invoicePrefix, now)
		}
		if inv.ClientID != nil {
			client, err := tx.GetClient(ctx, *inv.ClientID)
			if err != nil {
				return notFound(err, "client %s", *inv.ClientID)
			}
			inv.ClientName = client.Name
		}
		if inv.ProjectID != nil {
			project, err := tx.GetProject(ctx, *inv.ProjectID)
			if err != nil {
				return notFound(err, "project %s", *inv.ProjectID)
			}
			inv.ProjectName = project.Name
		}

		total := money.Total(&inv)
		paid := money.TotalPaid(inv.Payments)
		inv.Status, inv.AmountPaid = DeriveStatus(&inv, total, paid)

		if err := tx.UpsertInvoice(ctx, &inv); err != nil {
			return err
		}
		cs.Invoices = append(cs.Invoices, &inv)

		deleted, err := e.deleteTransactionsBySource(ctx, tx, map[string]bool{inv.ID: true})
		if err != nil {
			return err
		}
		cs.DeletedTransactionIDs = append(cs.DeletedTransactionIDs, deleted...)

		if inv.AmountPaid.IsPositive() {
			mirror := &models.Transaction{
				ID:          models.NewUUID(),
				Date:        inv.Date,
				Description: fmt.Sprintf("Payment for Invoice #%s", inv.InvoiceNumber),
				Category:    categoryClientPayment,
				Type:        models.TransactionTypeIncome,
				Amount:      inv.AmountPaid,
				SourceID:    &inv.ID,
				ReadOnly:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.UpsertTransaction(ctx, mirror); err != nil {
				return err
			}
			cs.Transactions = append(cs.Transactions, mirror)
		}

		if inv.ProjectID != nil {
			project, err := e.recomputeProjectReceipts(ctx, tx, *inv.ProjectID, now)
			if err != nil {
				return err
			}
			if project != nil {
				cs.Projects = append(cs.Projects, project)
			}
		}
		if prevProjectID != nil && (inv.ProjectID == nil || *inv.ProjectID != *prevProjectID) {
			project, err := e.recomputeProjectReceipts(ctx, tx, *prevProjectID, now)
			if err != nil {
				return err
			}
			if project != nil {
				cs.Projects = append(cs.Projects, project)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("status", string(inv.Status)).
		Str("amount_paid", inv.AmountPaid.String()).
		Msg("invoice saved")
	return cs, nil
}

// DeleteInvoice removes an invoice, its mirrored transaction, and re-sums the
// linked project's receipts. The project status is deliberately not reverted
// if receipts drop below a threshold that advanced it.
func (e *Engine) DeleteInvoice(ctx context.Context, invoiceID string) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inv, err := e.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err, "invoice %s", invoiceID)
	}

	cs := &ChangeSet{DeletedInvoiceIDs: []string{inv.ID}}
	err = e.store.InTx(ctx, func(tx database.Store) error {
		if err := tx.DeleteInvoice(ctx, inv.ID); err != nil {
			return err
		}
		deleted, err := e.deleteTransactionsBySource(ctx, tx, map[string]bool{inv.ID: true})
		if err != nil {
			return err
		}
		cs.DeletedTransactionIDs = append(cs.DeletedTransactionIDs, deleted...)

		if inv.ProjectID != nil {
			project, err := e.recomputeProjectReceipts(ctx, tx, *inv.ProjectID, time.Now())
			if err != nil {
				return err
			}
			if project != nil {
				cs.Projects = append(cs.Projects, project)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("invoice_id", inv.ID).Msg("invoice deleted")
	return cs, nil
}

// ReceivePayment appends a payment to an invoice and re-runs the full save
// pipeline; receiving a payment is not a special case, it is "edit invoice,
// payments changed". An amount above the current balance is allowed but only
// once the caller confirms; the amount is recorded as given, never clamped.
func (e *Engine) ReceivePayment(ctx context.Context, invoiceID string, payment models.Payment, confirmedOverpayment bool) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validatePayment(&payment); err != nil {
		return nil, err
	}

	inv, err := e.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err, "invoice %s", invoiceID)
	}

	balance := money.Total(inv).Sub(money.TotalPaid(inv.Payments))
	if payment.Amount.GreaterThan(balance) && !confirmedOverpayment {
		return nil, fmt.Errorf("%w: amount %s exceeds balance %s on invoice #%s",
			ErrOverpayment, payment.Amount, balance, inv.InvoiceNumber)
	}

	payment.ID = models.NewUUID()
	inv.Payments = append(inv.Payments, payment)
	return e.saveInvoiceLocked(ctx, *inv)
}

// --- projects ---

// SaveProject is the simple field-edit path: name, client, budget and status
// change without touching cost lines or mirrors. Derived receipts and the
// cost lists are carried over from the stored record.
func (e *Engine) SaveProject(ctx context.Context, p models.Project) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateProject(&p); err != nil {
		return nil, err
	}

	now := time.Now()
	if p.ID == "" {
		p.ID = models.NewUUID()
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	cs := &ChangeSet{}
	err := e.store.InTx(ctx, func(tx database.Store) error {
		prev, err := tx.GetProject(ctx, p.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if prev != nil {
			p.CreatedAt = prev.CreatedAt
			p.AmountReceived = prev.AmountReceived
			p.Materials = prev.Materials
			p.Staff = prev.Staff
			p.OtherExpenses = prev.OtherExpenses
		} else {
			p.AmountReceived = decimal.Zero
		}
		if err := e.snapshotProjectClient(ctx, tx, &p); err != nil {
			return err
		}
		AdvanceProjectStatus(&p)
		if err := tx.UpsertProject(ctx, &p); err != nil {
			return err
		}
		cs.Projects = append(cs.Projects, &p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("project_id", p.ID).Str("status", string(p.Status)).Msg("project saved")
	return cs, nil
}

// SaveProjectDetails is the ledger path for project edits: the material,
// staff and expense lists are reconciled against their mirrored expense
// transactions by set difference on source ids. Lines that disappeared lose
// their mirrors; every line still present has its mirror regenerated from
// the current data, so re-saving the same payload is idempotent.
func (e *Engine) SaveProjectDetails(ctx context.Context, p models.Project) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateProject(&p); err != nil {
		return nil, err
	}

	now := time.Now()
	if p.ID == "" {
		p.ID = models.NewUUID()
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	for i := range p.Materials {
		if p.Materials[i].ID == "" {
			p.Materials[i].ID = models.NewUUID()
		}
	}
	for i := range p.OtherExpenses {
		if p.OtherExpenses[i].ID == "" {
			p.OtherExpenses[i].ID = models.NewUUID()
		}
	}

	cs := &ChangeSet{}
	err := e.store.InTx(ctx, func(tx database.Store) error {
		prev, err := tx.GetProject(ctx, p.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if prev != nil {
			p.CreatedAt = prev.CreatedAt
			p.AmountReceived = prev.AmountReceived
		} else {
			p.AmountReceived = decimal.Zero
		}
		if err := e.snapshotProjectClient(ctx, tx, &p); err != nil {
			return err
		}
		for i := range p.Staff {
			if p.Staff[i].EmployeeName != "" {
				continue
			}
			emp, err := tx.GetEmployee(ctx, p.Staff[i].EmployeeID)
			if err != nil {
				return notFound(err, "employee %s", p.Staff[i].EmployeeID)
			}
			p.Staff[i].EmployeeName = emp.Name
		}
		AdvanceProjectStatus(&p)

		currentIDs := projectSourceIDs(&p)
		if prev != nil {
			stale := map[string]bool{}
			for id := range projectSourceIDs(prev) {
				if !currentIDs[id] {
					stale[id] = true
				}
			}
			deleted, err := e.deleteTransactionsBySource(ctx, tx, stale)
			if err != nil {
				return err
			}
			cs.DeletedTransactionIDs = append(cs.DeletedTransactionIDs, deleted...)
		}

		mirrors, err := e.regenerateProjectMirrors(ctx, tx, &p, now)
		if err != nil {
			return err
		}
		cs.Transactions = append(cs.Transactions, mirrors...)

		if err := tx.UpsertProject(ctx, &p); err != nil {
			return err
		}
		cs.Projects = append(cs.Projects, &p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("project_id", p.ID).
		Int("materials", len(p.Materials)).
		Int("staff", len(p.Staff)).
		Int("other_expenses", len(p.OtherExpenses)).
		Msg("project details saved")
	return cs, nil
}

// DeleteProject removes the project and every mirrored cost transaction, and
// unlinks the project from its invoices without touching their amounts.
func (e *Engine) DeleteProject(ctx context.Context, projectID string) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project %s", projectID)
	}

	cs := &ChangeSet{DeletedProjectIDs: []string{p.ID}}
	err = e.store.InTx(ctx, func(tx database.Store) error {
		deleted, err := e.deleteTransactionsBySource(ctx, tx, projectSourceIDs(p))
		if err != nil {
			return err
		}
		cs.DeletedTransactionIDs = append(cs.DeletedTransactionIDs, deleted...)

		if err := tx.DeleteProject(ctx, p.ID); err != nil {
			return err
		}

		invoices, err := tx.ListInvoices(ctx)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			if inv.ProjectID == nil || *inv.ProjectID != p.ID {
				continue
			}
			inv.ProjectID = nil
			inv.ProjectName = ""
			inv.UpdatedAt = time.Now()
			if err := tx.UpsertInvoice(ctx, inv); err != nil {
				return err
			}
			cs.Invoices = append(cs.Invoices, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("project_id", p.ID).Int("unlinked_invoices", len(cs.Invoices)).Msg("project deleted")
	return cs, nil
}

// --- employees ---

func (e *Engine) SaveEmployee(ctx context.Context, emp models.Employee) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateEmployee(&emp); err != nil {
		return nil, err
	}

	now := time.Now()
	if emp.ID == "" {
		emp.ID = models.NewUUID()
		emp.CreatedAt = now
	} else if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	if err := e.store.UpsertEmployee(ctx, &emp); err != nil {
		return nil, err
	}
	e.log.Info().Str("employee_id", emp.ID).Msg("employee saved")
	return &ChangeSet{Employees: []*models.Employee{&emp}}, nil
}

// DeleteEmployee removes the employee from every project staffing list,
// deletes each assignment's mirrored wage transaction, then removes the
// employee record. All projects are processed inside the same unit of work.
func (e *Engine) DeleteEmployee(ctx context.Context, employeeID string) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	emp, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, notFound(err, "employee %s", employeeID)
	}

	cs := &ChangeSet{DeletedEmployeeIDs: []string{emp.ID}}
	err = e.store.InTx(ctx, func(tx database.Store) error {
		projects, err := tx.ListProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			kept := p.Staff[:0]
			removed := false
			for _, sa := range p.Staff {
				if sa.EmployeeID == emp.ID {
					removed = true
					continue
				}
				kept = append(kept, sa)
			}
			if !removed {
				continue
			}
			p.Staff = kept

			deleted, err := e.deleteTransactionsBySource(ctx, tx,
				map[string]bool{models.StaffSourceID(p.ID, emp.ID): true})
			if err != nil {
				return err
			}
			cs.DeletedTransactionIDs = append(cs.DeletedTransactionIDs, deleted...)

			p.UpdatedAt = time.Now()
			if err := tx.UpsertProject(ctx, p); err != nil {
				return err
			}
			cs.Projects = append(cs.Projects, p)
		}
		return tx.DeleteEmployee(ctx, emp.ID)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("employee_id", emp.ID).Int("projects_touched", len(cs.Projects)).Msg("employee deleted")
	return cs, nil
}

// --- transactions (manual entries only) ---

func (e *Engine) SaveTransaction(ctx context.Context, t models.Transaction) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.SourceID != nil || t.ReadOnly {
		return nil, fmt.Errorf("%w: mirrored transactions cannot be written directly", ErrReadOnly)
	}
	if err := validateTransaction(&t); err != nil {
		return nil, err
	}

	now := time.Now()
	if t.ID == "" {
		t.ID = models.NewUUID()
		t.CreatedAt = now
	} else {
		existing, err := e.store.GetTransaction(ctx, t.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if existing != nil {
			if existing.ReadOnly {
				return nil, fmt.Errorf("%w: transaction %s", ErrReadOnly, t.ID)
			}
			t.CreatedAt = existing.CreatedAt
		} else {
			t.CreatedAt = now
		}
	}
	t.UpdatedAt = now

	if err := e.store.UpsertTransaction(ctx, &t); err != nil {
		return nil, err
	}
	e.log.Info().Str("transaction_id", t.ID).Str("type", string(t.Type)).Msg("transaction saved")
	return &ChangeSet{Transactions: []*models.Transaction{&t}}, nil
}

func (e *Engine) DeleteTransaction(ctx context.Context, transactionID string) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, notFound(err, "transaction %s", transactionID)
	}
	if t.ReadOnly {
		return nil, fmt.Errorf("%w: transaction %s", ErrReadOnly, t.ID)
	}
	if err := e.store.DeleteTransaction(ctx, t.ID); err != nil {
		return nil, err
	}
	e.log.Info().Str("transaction_id", t.ID).Msg("transaction deleted")
	return &ChangeSet{DeletedTransactionIDs: []string{t.ID}}, nil
}

// --- clients ---

func (e *Engine) SaveClient(ctx context.Context, c models.Client) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateClient(&c); err != nil {
		return nil, err
	}

	now := time.Now()
	if c.ID == "" {
		c.ID = models.NewUUID()
		c.CreatedAt = now
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if err := e.store.UpsertClient(ctx, &c); err != nil {
		return nil, err
	}
	e.log.Info().Str("client_id", c.ID).Msg("client saved")
	return &ChangeSet{Clients: []*models.Client{&c}}, nil
}

// DeleteClient unlinks the client from projects and invoices and removes the
// record. Nothing else is deleted; the denormalized name snapshots stay for
// historical display.
func (e *Engine) DeleteClient(ctx context.Context, clientID string) (*ChangeSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, notFound(err, "client %s", clientID)
	}

	cs := &ChangeSet{DeletedClientIDs: []string{c.ID}}
	err = e.store.InTx(ctx, func(tx database.Store) error {
		projects, err := tx.ListProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if p.ClientID == nil || *p.ClientID != c.ID {
				continue
			}
			p.ClientID = nil
			p.UpdatedAt = time.Now()
			if err := tx.UpsertProject(ctx, p); err != nil {
				return err
			}
			cs.Projects = append(cs.Projects, p)
		}

		invoices, err := tx.ListInvoices(ctx)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			if inv.ClientID == nil || *inv.ClientID != c.ID {
				continue
			}
			inv.ClientID = nil
			inv.UpdatedAt = time.Now()
			if err := tx.UpsertInvoice(ctx, inv); err != nil {
				return err
			}
			cs.Invoices = append(cs.Invoices, inv)
		}

		return tx.DeleteClient(ctx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("client_id", c.ID).Msg("client deleted")
	return cs, nil
}

// --- shared helpers ---

func (e *Engine) snapshotProjectClient(ctx context.Context, tx database.Store, p *models.Project) error {
	if p.ClientID == nil {
		return nil
	}
	client, err := tx.GetClient(ctx, *p.ClientID)
	if err != nil {
		return notFound(err, "client %s", *p.ClientID)
	}
	p.ClientName = client.Name
	return nil
}

// recomputeProjectReceipts re-sums paid amounts over every invoice linked to
// the project. It must scan the full invoice set because several invoices
// can fund one project. A missing project is not an error here; the invoice
// simply carries a stale link.
func (e *Engine) recomputeProjectReceipts(ctx context.Context, tx database.Store, projectID string, now time.Time) (*models.Project, error) {
	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	invoices, err := tx.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	received := decimal.Zero
	for _, inv := range invoices {
		if inv.ProjectID != nil && *inv.ProjectID == projectID {
			received = received.Add(inv.AmountPaid)
		}
	}

	project.AmountReceived = received
	AdvanceProjectStatus(project)
	project.UpdatedAt = now
	if err := tx.UpsertProject(ctx, project); err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("project_id", projectID).
		Str("amount_received", received.String()).
		Str("status", string(project.Status)).
		Msg("project receipts recomputed")
	return project, nil
}

func (e *Engine) deleteTransactionsBySource(ctx context.Context, tx database.Store, sourceIDs map[string]bool) ([]string, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	transactions, err := tx.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, t := range transactions {
		if t.SourceID == nil || !sourceIDs[*t.SourceID] {
			continue
		}
		if err := tx.DeleteTransaction(ctx, t.ID); err != nil {
			return nil, err
		}
		deleted = append(deleted, t.ID)
	}
	return deleted, nil
}

// projectSourceIDs collects the mirror keys for every cost line on a
// project: material and expense lines use their own ids, staff assignments
// use the composite staff-<projectID>-<employeeID> key.
func projectSourceIDs(p *models.Project) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range p.Materials {
		ids[m.ID] = true
	}
	for _, sa := range p.Staff {
		ids[models.StaffSourceID(p.ID, sa.EmployeeID)] = true
	}
	for _, ex := range p.OtherExpenses {
		ids[ex.ID] = true
	}
	return ids
}

// regenerateProjectMirrors upserts one read-only expense transaction per
// cost line, keyed by source id. Description and amount are rebuilt from the
// current line data every time; an existing mirror keeps its row id and date
// so the ledger does not churn, everything else is replaced.
func (e *Engine) regenerateProjectMirrors(ctx context.Context, tx database.Store, p *models.Project, now time.Time) ([]*models.Transaction, error) {
	transactions, err := tx.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]*models.Transaction)
	for _, t := range transactions {
		if t.SourceID != nil {
			existing[*t.SourceID] = t
		}
	}

	upsert := func(sourceID, description, category string, amount decimal.Decimal) (*models.Transaction, error) {
		mirror, ok := existing[sourceID]
		if !ok {
			sid := sourceID
			mirror = &models.Transaction{
				ID:        models.NewUUID(),
				Date:      now,
				SourceID:  &sid,
				CreatedAt: now,
			}
		}
		mirror.Description = description
		mirror.Category = category
		mirror.Type = models.TransactionTypeExpense
		mirror.Amount = amount
		mirror.ReadOnly = true
		mirror.UpdatedAt = now
		if err := tx.UpsertTransaction(ctx, mirror); err != nil {
			return nil, err
		}
		return mirror, nil
	}

	var mirrors []*models.Transaction
	for _, m := range p.Materials {
		mirror, err := upsert(m.ID,
			fmt.Sprintf("Material for %s: %s", p.Name, m.Name),
			categoryMaterials, m.Cost())
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, mirror)
	}
	for _, sa := range p.Staff {
		mirror, err := upsert(models.StaffSourceID(p.ID, sa.EmployeeID),
			fmt.Sprintf("Staff payment for %s on %s", sa.EmployeeName, p.Name),
			categoryStaffWages, sa.Payment)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, mirror)
	}
	for _, ex := range p.OtherExpenses {
		mirror, err := upsert(ex.ID,
			fmt.Sprintf("%s (%s)", ex.Description, p.Name),
			categoryProjectExpense, ex.Amount)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, mirror)
	}
	return mirrors, nil
}
