package main

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barlow-drilling/drillbooks/internal/config"
	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/ledger"
	"github.com/barlow-drilling/drillbooks/internal/report"
)

func newTestApp() *app {
	cfg := &config.Config{
		DatabaseDriver: "memory",
		InvoicePrefix:  "INV",
		DefaultTaxRate: "0",
		CompanyName:    "Barlow Drilling Co.",
	}
	store := database.NewMemoryStore()
	return &app{
		cfg:     cfg,
		store:   store,
		engine:  ledger.NewEngine(store, cfg.InvoicePrefix),
		reports: report.NewAggregator(store),
	}
}

// runCmd executes one CLI invocation against a and captures stdout. A fresh
// command tree per call keeps flag state from leaking between invocations.
func runCmd(t *testing.T, a *app, args ...string) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	execErr := cmd.Execute()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, execErr, "command %v failed, output: %s", args, out)
	return string(out)
}

func runCmdErr(t *testing.T, a *app, args ...string) error {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	execErr := cmd.Execute()

	w.Close()
	os.Stdout = old
	_, _ = io.ReadAll(r)
	return execErr
}

func TestCLIFlow(t *testing.T) {
	a := newTestApp()
	ctx := context.Background()

	out := runCmd(t, a, "clients", "create", "--name", "Acme Farms", "--email", "office@acme.test")
	assert.Contains(t, out, "Created client Acme Farms")

	clients, err := a.store.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	clientID := clients[0].ID

	out = runCmd(t, a, "projects", "create", "--name", "Irrigation bore", "--client", clientID, "--budget", "1000")
	assert.Contains(t, out, "Created project Irrigation bore")

	projects, err := a.store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	projectID := projects[0].ID

	out = runCmd(t, a, "invoices", "create",
		"--item", "Borehole drilling:1:500",
		"--client", clientID,
		"--project", projectID,
		"--status", "sent")
	assert.Contains(t, out, "total $500.00")

	invoices, err := a.store.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	invoiceID := invoices[0].ID

	t.Run("overpayment needs confirmation", func(t *testing.T) {
		err := runCmdErr(t, a, "invoices", "pay", invoiceID, "--amount", "600")
		require.ErrorIs(t, err, ledger.ErrOverpayment)
	})

	out = runCmd(t, a, "invoices", "pay", invoiceID, "--amount", "200")
	assert.Contains(t, out, "paid $200.00 of $500.00")

	t.Run("payment mirrors into the ledger", func(t *testing.T) {
		out := runCmd(t, a, "transactions", "list")
		assert.Contains(t, out, "Payment for Invoice #")
		assert.Contains(t, out, "managed automatically")
	})

	t.Run("receipts roll up to the project", func(t *testing.T) {
		out := runCmd(t, a, "projects", "list")
		assert.Contains(t, out, "received $200.00")
		assert.Contains(t, out, "in_progress")
	})

	t.Run("profit and loss reflects the mirror", func(t *testing.T) {
		out := runCmd(t, a, "reports", "pl")
		assert.Contains(t, out, "Income: $200.00")
	})

	t.Run("client statement shows the running balance", func(t *testing.T) {
		out := runCmd(t, a, "reports", "statement", clientID)
		assert.Contains(t, out, "Closing balance: $300.00")
	})

	t.Run("mirrored entries cannot be deleted", func(t *testing.T) {
		transactions, err := a.store.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		err = runCmdErr(t, a, "transactions", "delete", transactions[0].ID)
		require.ErrorIs(t, err, ledger.ErrReadOnly)
	})

	t.Run("deleting the invoice clears the ledger and receipts", func(t *testing.T) {
		runCmd(t, a, "invoices", "delete", invoiceID)

		transactions, err := a.store.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, transactions)

		p, err := a.store.GetProject(ctx, projectID)
		require.NoError(t, err)
		assert.True(t, p.AmountReceived.IsZero())
	})
}
