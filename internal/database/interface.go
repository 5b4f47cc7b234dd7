package database

import (
	"context"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

// Store is the repository surface the ledger engine runs against. Lookups
// that miss return sql.ErrNoRows regardless of backend.
//
// InTx runs fn against a view of the store where every write is part of one
// atomic unit: either all of fn's writes become visible or none do. Multi
// entity ledger operations always go through it.
type Store interface {
	Close() error
	InTx(ctx context.Context, fn func(Store) error) error

	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	UpsertClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id string) error

	ListEmployees(ctx context.Context) ([]*models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	UpsertEmployee(ctx context.Context, employee *models.Employee) error
	DeleteEmployee(ctx context.Context, id string) error

	ListProjects(ctx context.Context) ([]*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpsertProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id string) error

	ListInvoices(ctx context.Context) ([]*models.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	UpsertInvoice(ctx context.Context, invoice *models.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error

	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpsertTransaction(ctx context.Context, transaction *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}
