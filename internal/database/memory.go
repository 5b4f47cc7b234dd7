package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

// MemoryStore keeps everything in maps. It backs tests and the
// DATABASE_DRIVER=memory escape hatch; semantics match SQLiteStore,
// including sql.ErrNoRows on misses and rollback-on-error inside InTx.
type MemoryStore struct {
	mu           sync.Mutex
	clients      map[string]*models.Client
	employees    map[string]*models.Employee
	projects     map[string]*models.Project
	invoices     map[string]*models.Invoice
	transactions map[string]*models.Transaction
	inTx         bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:      make(map[string]*models.Client),
		employees:    make(map[string]*models.Employee),
		projects:     make(map[string]*models.Project),
		invoices:     make(map[string]*models.Invoice),
		transactions: make(map[string]*models.Transaction),
	}
}

func (m *MemoryStore) Close() error { return nil }

// InTx snapshots all maps and restores them if fn fails, so a partial
// multi-entity write is never observable.
func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	if m.inTx {
		m.mu.Unlock()
		return fn(m)
	}

	snapshot, err := m.snapshot()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.inTx = true
	m.mu.Unlock()

	txErr := fn(m)

	m.mu.Lock()
	m.inTx = false
	if txErr != nil {
		m.restore(snapshot)
	}
	m.mu.Unlock()
	return txErr
}

type memSnapshot struct {
	Clients      map[string]*models.Client
	Employees    map[string]*models.Employee
	Projects     map[string]*models.Project
	Invoices     map[string]*models.Invoice
	Transactions map[string]*models.Transaction
}

func (m *MemoryStore) snapshot() (*memSnapshot, error) {
	raw, err := json.Marshal(memSnapshot{
		Clients:      m.clients,
		Employees:    m.employees,
		Projects:     m.projects,
		Invoices:     m.invoices,
		Transactions: m.transactions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot store: %w", err)
	}
	var snap memSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return &snap, nil
}

func (m *MemoryStore) restore(snap *memSnapshot) {
	m.clients = snap.Clients
	m.employees = snap.Employees
	m.projects = snap.Projects
	m.invoices = snap.Invoices
	m.transactions = snap.Transactions
}

func copyOf[T any](v *T) *T {
	out := *v
	return &out
}

// deepCopy round-trips through JSON so projects and invoices do not share
// their nested slices with callers.
func deepCopy[T any](v *T) *T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

func (m *MemoryStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, copyOf(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyOf(c), nil
}

func (m *MemoryStore) UpsertClient(ctx context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = copyOf(c)
	return nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, id)
	return nil
}

func (m *MemoryStore) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, copyOf(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyOf(e), nil
}

func (m *MemoryStore) UpsertEmployee(ctx context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = copyOf(e)
	return nil
}

func (m *MemoryStore) DeleteEmployee(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

func (m *MemoryStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, deepCopy(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return deepCopy(p), nil
}

func (m *MemoryStore) UpsertProject(ctx context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = deepCopy(p)
	return nil
}

func (m *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func (m *MemoryStore) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, deepCopy(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return deepCopy(inv), nil
}

func (m *MemoryStore) UpsertInvoice(ctx context.Context, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = deepCopy(inv)
	return nil
}

func (m *MemoryStore) DeleteInvoice(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, id)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, copyOf(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyOf(t), nil
}

func (m *MemoryStore) UpsertTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = copyOf(t)
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transactions, id)
	return nil
}
