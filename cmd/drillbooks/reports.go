package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/report"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Financial reports over the ledger",
	}

	cmd.AddCommand(
		newReportsFinancialCmd(a),
		newReportsProfitLossCmd(a),
		newReportsProjectsCmd(a),
		newReportsInvoicesCmd(a),
		newReportsStatementCmd(a),
	)
	return cmd
}

// csvOutput opens csvPath for writing when set. The returned bool reports
// whether CSV output was requested.
func csvOutput(csvPath string) (*os.File, bool, error) {
	if csvPath == "" {
		return nil, false, nil
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", csvPath, err)
	}
	return f, true, nil
}

func newReportsFinancialCmd(a *app) *cobra.Command {
	var fromDate, toDate, csvPath string

	cmd := &cobra.Command{
		Use:   "financial",
		Short: "List all ledger entries with income and expense totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewDateRange(fromDate, toDate)
			if err != nil {
				return err
			}
			rep, err := a.reports.Financial(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("failed to build financial report: %w", err)
			}

			if f, ok, err := csvOutput(csvPath); err != nil {
				return err
			} else if ok {
				defer f.Close()
				if err := report.WriteFinancialCSV(f, rep); err != nil {
					return fmt.Errorf("failed to write csv: %w", err)
				}
				fmt.Printf("Wrote %s\n", csvPath)
				return nil
			}

			for _, row := range rep.Rows {
				fmt.Printf("%s | %s | %s | %s | %s\n",
					row.Date.Format("2006-01-02"), row.Type, row.Category,
					formatMoney(row.Amount), row.Description)
			}
			fmt.Printf("\nIncome:   %s\n", formatMoney(rep.TotalIncome))
			fmt.Printf("Expenses: %s\n", formatMoney(rep.TotalExpenses))
			fmt.Printf("Net:      %s\n", formatMoney(rep.Net))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead of printing")
	return cmd
}

func newReportsProfitLossCmd(a *app) *cobra.Command {
	var fromDate, toDate, csvPath string

	cmd := &cobra.Command{
		Use:   "pl",
		Short: "Profit and loss with expenses grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewDateRange(fromDate, toDate)
			if err != nil {
				return err
			}
			rep, err := a.reports.ProfitLoss(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("failed to build profit and loss report: %w", err)
			}

			if f, ok, err := csvOutput(csvPath); err != nil {
				return err
			} else if ok {
				defer f.Close()
				if err := report.WriteProfitLossCSV(f, rep); err != nil {
					return fmt.Errorf("failed to write csv: %w", err)
				}
				fmt.Printf("Wrote %s\n", csvPath)
				return nil
			}

			fmt.Printf("Income: %s\n\nExpenses:\n", formatMoney(rep.TotalIncome))
			for _, e := range rep.Expenses {
				fmt.Printf("  %-24s %s\n", e.Category, formatMoney(e.Total))
			}
			fmt.Printf("\nTotal expenses: %s\n", formatMoney(rep.TotalExpenses))
			fmt.Printf("Net profit:     %s\n", formatMoney(rep.NetProfit))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead of printing")
	return cmd
}

func newReportsProjectsCmd(a *app) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Per-project cost, receipts and net position",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.reports.ProjectProfitability(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to build project report: %w", err)
			}

			if f, ok, err := csvOutput(csvPath); err != nil {
				return err
			} else if ok {
				defer f.Close()
				if err := report.WriteProjectProfitabilityCSV(f, rows); err != nil {
					return fmt.Errorf("failed to write csv: %w", err)
				}
				fmt.Printf("Wrote %s\n", csvPath)
				return nil
			}

			for _, row := range rows {
				fmt.Printf("%s (%s) | cost %s | received %s | net %s\n",
					row.ProjectName, row.Status,
					formatMoney(row.TotalCost), formatMoney(row.AmountReceived), formatMoney(row.Net))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead of printing")
	return cmd
}

func newReportsInvoicesCmd(a *app) *cobra.Command {
	var fromDate, toDate, csvPath string

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice totals, paid amounts and effective statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewDateRange(fromDate, toDate)
			if err != nil {
				return err
			}
			rows, err := a.reports.InvoiceSummary(cmd.Context(), r, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build invoice summary: %w", err)
			}

			if f, ok, err := csvOutput(csvPath); err != nil {
				return err
			} else if ok {
				defer f.Close()
				if err := report.WriteInvoiceSummaryCSV(f, rows); err != nil {
					return fmt.Errorf("failed to write csv: %w", err)
				}
				fmt.Printf("Wrote %s\n", csvPath)
				return nil
			}

			for _, row := range rows {
				fmt.Printf("%s | %s | %s | total %s | paid %s | balance %s\n",
					row.InvoiceNumber, row.ClientName, row.Status,
					formatMoney(row.Total), formatMoney(row.Paid), formatMoney(row.Balance))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead of printing")
	return cmd
}

func newReportsStatementCmd(a *app) *cobra.Command {
	var fromDate, toDate, csvPath string

	cmd := &cobra.Command{
		Use:   "statement <client-id>",
		Short: "Chronological statement of a client's invoices and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewDateRange(fromDate, toDate)
			if err != nil {
				return err
			}
			st, err := a.reports.ClientStatement(cmd.Context(), args[0], r)
			if err != nil {
				return fmt.Errorf("failed to build client statement: %w", err)
			}

			if f, ok, err := csvOutput(csvPath); err != nil {
				return err
			} else if ok {
				defer f.Close()
				if err := report.WriteClientStatementCSV(f, st); err != nil {
					return fmt.Errorf("failed to write csv: %w", err)
				}
				fmt.Printf("Wrote %s\n", csvPath)
				return nil
			}

			fmt.Printf("Statement for %s\n\n", st.ClientName)
			for _, e := range st.Entries {
				fmt.Printf("%s | %-32s | debit %s | credit %s | balance %s\n",
					e.Date.Format("2006-01-02"), e.Reference,
					formatMoney(e.Debit), formatMoney(e.Credit), formatMoney(e.Balance))
			}
			fmt.Printf("\nClosing balance: %s\n", formatMoney(st.ClosingBalance))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write CSV to this file instead of printing")
	return cmd
}
