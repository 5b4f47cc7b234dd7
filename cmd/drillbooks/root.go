package main

import (
	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/config"
	"github.com/barlow-drilling/drillbooks/internal/database"
	"github.com/barlow-drilling/drillbooks/internal/ledger"
	"github.com/barlow-drilling/drillbooks/internal/report"
)

// app bundles the shared collaborators every command needs.
type app struct {
	cfg     *config.Config
	store   database.Store
	engine  *ledger.Engine
	reports *report.Aggregator
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drillbooks",
		Short: "Business management for a drilling company",
		Long: `Manage clients, employees, projects, invoices and the company ledger.
Invoices, payments, projects and transactions are kept mutually consistent:
payments mirror into the ledger, project receipts roll up from their
invoices, and project cost lines mirror into read-only expense entries.`,
	}

	rootCmd.AddCommand(
		newClientsCmd(a),
		newEmployeesCmd(a),
		newProjectsCmd(a),
		newInvoicesCmd(a),
		newTransactionsCmd(a),
		newReportsCmd(a),
	)

	return rootCmd
}
