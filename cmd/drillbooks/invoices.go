package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/barlow-drilling/drillbooks/internal/models"
	"github.com/barlow-drilling/drillbooks/internal/money"
	"github.com/barlow-drilling/drillbooks/internal/report"
)

func newInvoicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices and their payments",
	}

	cmd.AddCommand(
		newInvoicesCreateCmd(a),
		newInvoicesListCmd(a),
		newInvoicesShowCmd(a),
		newInvoicesStatusCmd(a),
		newInvoicesPayCmd(a),
		newInvoicesDeleteCmd(a),
		newInvoicesPDFCmd(a),
	)
	return cmd
}

func newInvoicesCreateCmd(a *app) *cobra.Command {
	var (
		items                              []string
		clientID, projectID                string
		dateStr, dueStr                    string
		taxRate, discount, invType, status string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lineItems := make([]models.LineItem, 0, len(items))
			for _, raw := range items {
				item, err := parseLineItem(raw)
				if err != nil {
					return err
				}
				lineItems = append(lineItems, item)
			}

			date, err := parseDate(dateStr, time.Now())
			if err != nil {
				return err
			}
			due, err := parseDate(dueStr, date.AddDate(0, 0, 30))
			if err != nil {
				return err
			}
			tax, err := parseAmount(taxRate)
			if err != nil {
				return err
			}
			disc, err := parseAmount(discount)
			if err != nil {
				return err
			}

			cs, err := a.engine.SaveInvoice(cmd.Context(), models.Invoice{
				Type:           models.InvoiceType(invType),
				Status:         models.InvoiceStatus(status),
				ClientID:       ptrOrNil(clientID),
				ProjectID:      ptrOrNil(projectID),
				Date:           date,
				DueDate:        due,
				LineItems:      lineItems,
				TaxRate:        tax,
				DiscountAmount: disc,
			})
			if err != nil {
				return fmt.Errorf("failed to create invoice: %w", err)
			}
			inv := cs.Invoices[0]
			fmt.Printf("Created invoice %s (%s), total %s\n",
				inv.InvoiceNumber, inv.ID, formatMoney(money.Total(inv)))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Line item as description:quantity:rate (repeatable)")
	cmd.Flags().StringVarP(&clientID, "client", "c", "", "Client id")
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project id")
	cmd.Flags().StringVar(&dateStr, "date", "", "Invoice date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&dueStr, "due", "", "Due date (YYYY-MM-DD, default date+30d)")
	cmd.Flags().StringVar(&taxRate, "tax", a.cfg.DefaultTaxRate, "Tax rate percentage")
	cmd.Flags().StringVar(&discount, "discount", "0", "Discount amount")
	cmd.Flags().StringVarP(&invType, "type", "t", "invoice", "Type: invoice or proforma")
	cmd.Flags().StringVarP(&status, "status", "s", "draft", "Initial status")
	cmd.MarkFlagRequired("item")

	return cmd
}

func newInvoicesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			invoices, err := a.store.ListInvoices(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list invoices: %w", err)
			}
			if len(invoices) == 0 {
				fmt.Println("No invoices found.")
				return nil
			}
			now := time.Now()
			for _, inv := range invoices {
				fmt.Printf("%s | %s | %s | %s | total %s | paid %s\n",
					inv.ID, inv.InvoiceNumber, inv.ClientName,
					report.EffectiveStatus(inv, now),
					formatMoney(money.Total(inv)), formatMoney(inv.AmountPaid))
			}
			return nil
		},
	}
}

func newInvoicesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show an invoice's line items and payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.store.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}

			fmt.Printf("%s (%s) | %s\n", inv.InvoiceNumber, inv.ID, inv.Type)
			fmt.Printf("Client: %s", inv.ClientName)
			if inv.ProjectName != "" {
				fmt.Printf("  Project: %s", inv.ProjectName)
			}
			fmt.Println()
			fmt.Printf("Date: %s  Due: %s  Status: %s\n",
				inv.Date.Format("2006-01-02"), inv.DueDate.Format("2006-01-02"),
				report.EffectiveStatus(inv, time.Now()))

			fmt.Println("\nLine items:")
			for _, item := range inv.LineItems {
				fmt.Printf("  %s | %s x %s = %s\n",
					item.Description, item.Quantity.String(), formatMoney(item.Rate),
					formatMoney(item.Quantity.Mul(item.Rate)))
			}
			if inv.DiscountAmount.IsPositive() {
				fmt.Printf("Discount: -%s\n", formatMoney(inv.DiscountAmount))
			}
			if inv.TaxRate.IsPositive() {
				fmt.Printf("Tax rate: %s%%\n", inv.TaxRate.String())
			}
			fmt.Printf("Total: %s  Paid: %s  Balance: %s\n",
				formatMoney(money.Total(inv)), formatMoney(inv.AmountPaid), formatMoney(money.Balance(inv)))

			if len(inv.Payments) > 0 {
				fmt.Println("\nPayments:")
				for _, p := range inv.Payments {
					check := ""
					if p.CheckNumber != nil {
						check = " (check #" + *p.CheckNumber + ")"
					}
					fmt.Printf("  %s | %s | %s%s\n",
						p.Date.Format("2006-01-02"), formatMoney(p.Amount), p.Method, check)
				}
			}
			return nil
		},
	}
}

func newInvoicesStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <invoice-id> <status>",
		Short: "Change an invoice's status",
		Long: `Change an invoice's status. Overdue cannot be assigned; it is derived
from the due date whenever the invoice is displayed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.store.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}
			inv.Status = models.InvoiceStatus(args[1])
			cs, err := a.engine.SaveInvoice(cmd.Context(), *inv)
			if err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}
			fmt.Printf("Invoice %s is now %s\n", cs.Invoices[0].InvoiceNumber, cs.Invoices[0].Status)
			return nil
		},
	}
}

func newInvoicesPayCmd(a *app) *cobra.Command {
	var amount, method, checkNumber, dateStr string
	var confirmOverpayment bool

	cmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			date, err := parseDate(dateStr, time.Now())
			if err != nil {
				return err
			}

			cs, err := a.engine.ReceivePayment(cmd.Context(), args[0], models.Payment{
				Date:        date,
				Amount:      amt,
				Method:      models.PaymentMethod(method),
				CheckNumber: ptrOrNil(checkNumber),
			}, confirmOverpayment)
			if err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}
			inv := cs.Invoices[0]
			fmt.Printf("Recorded %s against invoice %s (paid %s of %s)\n",
				formatMoney(amt), inv.InvoiceNumber,
				formatMoney(inv.AmountPaid), formatMoney(money.Total(inv)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Payment amount (required)")
	cmd.Flags().StringVarP(&method, "method", "m", "bank_transfer", "Method: cash, bank_transfer or check")
	cmd.Flags().StringVar(&checkNumber, "check-number", "", "Check number, required for check payments")
	cmd.Flags().StringVar(&dateStr, "date", "", "Payment date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&confirmOverpayment, "confirm-overpayment", false, "Accept a payment exceeding the outstanding balance")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newInvoicesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <invoice-id>",
		Short: "Delete an invoice and its mirrored ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := a.engine.DeleteInvoice(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete invoice: %w", err)
			}
			fmt.Printf("Deleted invoice %s (removed %d mirrored transactions)\n",
				args[0], len(cs.DeletedTransactionIDs))
			return nil
		},
	}
}

func newInvoicesPDFCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <invoice-id>",
		Short: "Render an invoice to a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.store.GetInvoice(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}
			fileName := output
			if fileName == "" {
				fileName = inv.InvoiceNumber + ".pdf"
			}
			if err := report.RenderInvoicePDF(fileName, inv, a.cfg); err != nil {
				return fmt.Errorf("failed to render pdf: %w", err)
			}
			fmt.Printf("Wrote %s\n", fileName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name (default <invoice-number>.pdf)")
	return cmd
}
