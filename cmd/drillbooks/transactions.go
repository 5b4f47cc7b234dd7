package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/models"
	"github.com/barlow-drilling/drillbooks/internal/report"
)

func newTransactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Manage manual ledger entries",
	}

	cmd.AddCommand(newTransactionsAddCmd(a), newTransactionsListCmd(a), newTransactionsDeleteCmd(a))
	return cmd
}

func newTransactionsAddCmd(a *app) *cobra.Command {
	var description, category, txType, amount, dateStr string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual ledger entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			date, err := parseDate(dateStr, time.Now())
			if err != nil {
				return err
			}
			cs, err := a.engine.SaveTransaction(cmd.Context(), models.Transaction{
				Date:        date,
				Description: description,
				Category:    category,
				Type:        models.TransactionType(txType),
				Amount:      amt,
			})
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}
			t := cs.Transactions[0]
			fmt.Printf("Added %s of %s (%s)\n", t.Type, formatMoney(t.Amount), t.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category, e.g. Fuel, Office (required)")
	cmd.Flags().StringVarP(&txType, "type", "t", "expense", "Type: income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "Date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newTransactionsListCmd(a *app) *cobra.Command {
	var fromDate, toDate string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries, mirrored and manual",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.NewDateRange(fromDate, toDate)
			if err != nil {
				return err
			}
			transactions, err := a.store.ListTransactions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			shown := 0
			for _, t := range transactions {
				if !r.Contains(t.Date) {
					continue
				}
				marker := " "
				if t.ReadOnly {
					marker = "*"
				}
				fmt.Printf("%s %s | %s | %s | %s | %s | %s\n",
					marker, t.ID, t.Date.Format("2006-01-02"), t.Type, t.Category,
					formatMoney(t.Amount), t.Description)
				shown++
			}
			if shown == 0 {
				fmt.Println("No transactions found.")
			} else {
				fmt.Println("\nEntries marked * are managed automatically and cannot be edited.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	return cmd
}

func newTransactionsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a manual ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.engine.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
			fmt.Printf("Deleted transaction %s\n", args[0])
			return nil
		},
	}
}
