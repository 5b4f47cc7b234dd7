package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/barlow-drilling/drillbooks/internal/config"
	"github.com/barlow-drilling/drillbooks/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	address TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	client_id TEXT,
	client_name TEXT NOT NULL DEFAULT '',
	total_budget TEXT NOT NULL,
	amount_received TEXT NOT NULL,
	status TEXT NOT NULL,
	materials TEXT NOT NULL DEFAULT '[]',
	staff TEXT NOT NULL DEFAULT '[]',
	other_expenses TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	invoice_number TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	client_id TEXT,
	client_name TEXT NOT NULL DEFAULT '',
	project_id TEXT,
	project_name TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	due_date DATETIME NOT NULL,
	line_items TEXT NOT NULL DEFAULT '[]',
	tax_rate TEXT NOT NULL,
	discount_amount TEXT NOT NULL,
	payments TEXT NOT NULL DEFAULT '[]',
	amount_paid TEXT NOT NULL DEFAULT '0',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	type TEXT NOT NULL,
	amount TEXT NOT NULL,
	source_id TEXT,
	is_read_only INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_project_id ON invoices(project_id);
CREATE INDEX IF NOT EXISTS idx_transactions_source_id ON transactions(source_id);
`

// queryer is satisfied by both *sql.DB and *sql.Tx so the same query code
// serves plain calls and calls inside InTx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteStore struct {
	conn *sql.DB
	q    queryer
}

func NewStore(cfg *config.Config) (*SQLiteStore, error) {
	conn, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{conn: conn, q: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// InTx runs fn inside a database transaction. The Store passed to fn shares
// the connection but routes every statement through the transaction.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		// Already transactional, reuse the ambient transaction.
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &SQLiteStore{conn: s.conn, q: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// --- clients ---

func (s *SQLiteStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, email, phone, address, created_at, updated_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	row := s.q.QueryRowContext(ctx, `SELECT id, name, email, phone, address, created_at, updated_at FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) UpsertClient(ctx context.Context, c *models.Client) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, ptrToNullString(c.Email), ptrToNullString(c.Phone), ptrToNullString(c.Address), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteClient(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// --- employees ---

func (s *SQLiteStore) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, role, status, created_at, updated_at FROM employees ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, &e)
	}
	return employees, rows.Err()
}

func (s *SQLiteStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee
	err := s.q.QueryRowContext(ctx, `SELECT id, name, role, status, created_at, updated_at FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (s *SQLiteStore) UpsertEmployee(ctx context.Context, e *models.Employee) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		e.ID, e.Name, e.Role, e.Status, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEmployee(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// --- projects ---

const projectColumns = `id, name, client_id, client_name, total_budget, amount_received, status, materials, staff, other_expenses, created_at, updated_at`

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpsertProject(ctx context.Context, p *models.Project) error {
	materials, err := json.Marshal(p.Materials)
	if err != nil {
		return fmt.Errorf("failed to encode materials: %w", err)
	}
	staff, err := json.Marshal(p.Staff)
	if err != nil {
		return fmt.Errorf("failed to encode staff: %w", err)
	}
	expenses, err := json.Marshal(p.OtherExpenses)
	if err != nil {
		return fmt.Errorf("failed to encode other expenses: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client_id = excluded.client_id,
			client_name = excluded.client_name,
			total_budget = excluded.total_budget,
			amount_received = excluded.amount_received,
			status = excluded.status,
			materials = excluded.materials,
			staff = excluded.staff,
			other_expenses = excluded.other_expenses,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, ptrToNullString(p.ClientID), p.ClientName, p.TotalBudget.String(), p.AmountReceived.String(),
		p.Status, string(materials), string(staff), string(expenses), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// --- invoices ---

const invoiceColumns = `id, invoice_number, type, status, client_id, client_name, project_id, project_name, date, due_date, line_items, tax_rate, discount_amount, payments, amount_paid, created_at, updated_at`

func (s *SQLiteStore) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

func (s *SQLiteStore) UpsertInvoice(ctx context.Context, inv *models.Invoice) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	payments, err := json.Marshal(inv.Payments)
	if err != nil {
		return fmt.Errorf("failed to encode payments: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			invoice_number = excluded.invoice_number,
			type = excluded.type,
			status = excluded.status,
			client_id = excluded.client_id,
			client_name = excluded.client_name,
			project_id = excluded.project_id,
			project_name = excluded.project_name,
			date = excluded.date,
			due_date = excluded.due_date,
			line_items = excluded.line_items,
			tax_rate = excluded.tax_rate,
			discount_amount = excluded.discount_amount,
			payments = excluded.payments,
			amount_paid = excluded.amount_paid,
			updated_at = excluded.updated_at`,
		inv.ID, inv.InvoiceNumber, inv.Type, inv.Status, ptrToNullString(inv.ClientID), inv.ClientName,
		ptrToNullString(inv.ProjectID), inv.ProjectName, inv.Date, inv.DueDate, string(lineItems),
		inv.TaxRate.String(), inv.DiscountAmount.String(), string(payments), inv.AmountPaid.String(), inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert invoice: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteInvoice(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// --- transactions ---

const transactionColumns = `id, date, description, category, type, amount, source_id, is_read_only, created_at, updated_at`

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpsertTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			category = excluded.category,
			type = excluded.type,
			amount = excluded.amount,
			source_id = excluded.source_id,
			is_read_only = excluded.is_read_only,
			updated_at = excluded.updated_at`,
		t.ID, t.Date, t.Description, t.Category, t.Type, t.Amount.String(),
		ptrToNullString(t.SourceID), t.ReadOnly, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var email, phone, address sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &email, &phone, &address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	c.Email = nullStringToPtr(email)
	c.Phone = nullStringToPtr(phone)
	c.Address = nullStringToPtr(address)
	return &c, nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var clientID sql.NullString
	var budget, received string
	var materials, staff, expenses string
	if err := row.Scan(&p.ID, &p.Name, &clientID, &p.ClientName, &budget, &received, &p.Status,
		&materials, &staff, &expenses, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	p.ClientID = nullStringToPtr(clientID)

	var err error
	if p.TotalBudget, err = decimal.NewFromString(budget); err != nil {
		return nil, fmt.Errorf("invalid total_budget for project %s: %w", p.ID, err)
	}
	if p.AmountReceived, err = decimal.NewFromString(received); err != nil {
		return nil, fmt.Errorf("invalid amount_received for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(materials), &p.Materials); err != nil {
		return nil, fmt.Errorf("failed to decode materials for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(staff), &p.Staff); err != nil {
		return nil, fmt.Errorf("failed to decode staff for project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(expenses), &p.OtherExpenses); err != nil {
		return nil, fmt.Errorf("failed to decode other expenses for project %s: %w", p.ID, err)
	}
	return &p, nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	var clientID, projectID sql.NullString
	var taxRate, discount, amountPaid string
	var lineItems, payments string
	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.Type, &inv.Status, &clientID, &inv.ClientName,
		&projectID, &inv.ProjectName, &inv.Date, &inv.DueDate, &lineItems, &taxRate, &discount,
		&payments, &amountPaid, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	inv.ClientID = nullStringToPtr(clientID)
	inv.ProjectID = nullStringToPtr(projectID)

	var err error
	if inv.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return nil, fmt.Errorf("invalid tax_rate for invoice %s: %w", inv.ID, err)
	}
	if inv.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("invalid discount_amount for invoice %s: %w", inv.ID, err)
	}
	if inv.AmountPaid, err = decimal.NewFromString(amountPaid); err != nil {
		return nil, fmt.Errorf("invalid amount_paid for invoice %s: %w", inv.ID, err)
	}
	if err := json.Unmarshal([]byte(lineItems), &inv.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items for invoice %s: %w", inv.ID, err)
	}
	if err := json.Unmarshal([]byte(payments), &inv.Payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments for invoice %s: %w", inv.ID, err)
	}
	return &inv, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var sourceID sql.NullString
	var amount string
	if err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Category, &t.Type, &amount,
		&sourceID, &t.ReadOnly, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	t.SourceID = nullStringToPtr(sourceID)

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount for transaction %s: %w", t.ID, err)
	}
	return &t, nil
}

func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func ptrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
