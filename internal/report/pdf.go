package report

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/barlow-drilling/drillbooks/internal/config"
	"github.com/barlow-drilling/drillbooks/internal/models"
	"github.com/barlow-drilling/drillbooks/internal/money"
)

// RenderInvoicePDF writes a printable invoice to fileName.
func RenderInvoicePDF(fileName string, inv *models.Invoice, cfg *config.Config) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "Invoice"
	if inv.Type == models.InvoiceTypeProforma {
		title = "Proforma Invoice"
	}
	pdf.Cell(120, 10, fmt.Sprintf("%s %s", title, inv.InvoiceNumber))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 6, cfg.CompanyName)
	pdf.Ln(6)
	if cfg.CompanyAddress != "" {
		pdf.Cell(95, 6, cfg.CompanyAddress)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if inv.ClientName != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Bill To:")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(95, 6, inv.ClientName)
		pdf.Ln(6)
		if inv.ProjectName != "" {
			pdf.Cell(95, 6, fmt.Sprintf("Project: %s", inv.ProjectName))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 6, fmt.Sprintf("Date: %s", inv.Date.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(95, 6, fmt.Sprintf("Due: %s", inv.DueDate.Format("2006-01-02")))
	pdf.Ln(10)

	// Line item table
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range inv.LineItems {
		desc := item.Description
		if len(desc) > 52 {
			desc = strings.TrimSpace(desc[:49]) + "..."
		}
		pdf.CellFormat(90, 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, "$"+item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, "$"+item.Quantity.Mul(item.Rate).StringFixed(2), "1", 1, "R", false, 0, "")
	}

	total := money.Total(inv)
	balance := total.Sub(inv.AmountPaid)

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	if inv.DiscountAmount.IsPositive() {
		pdf.Cell(150, 7, "Discount:")
		pdf.CellFormat(40, 7, "-$"+inv.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if inv.TaxRate.IsPositive() {
		pdf.Cell(150, 7, fmt.Sprintf("Tax (%s%%):", inv.TaxRate.String()))
		pdf.CellFormat(40, 7, "", "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(150, 8, "Total:")
	pdf.CellFormat(40, 8, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(150, 7, "Paid:")
	pdf.CellFormat(40, 7, "$"+inv.AmountPaid.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 8, "Balance Due:")
	pdf.CellFormat(40, 8, "$"+balance.StringFixed(2), "", 1, "R", false, 0, "")

	if len(inv.Payments) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 8, "Payments Received:")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 9)
		for _, p := range inv.Payments {
			method := string(p.Method)
			if p.Method == models.PaymentMethodCheck && p.CheckNumber != nil {
				method = fmt.Sprintf("check #%s", *p.CheckNumber)
			}
			pdf.Cell(150, 6, fmt.Sprintf("%s (%s)", p.Date.Format("2006-01-02"), method))
			pdf.CellFormat(40, 6, "$"+p.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if cfg.BillingBank != "" || cfg.BillingAccountNumber != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 8, "Payment Details:")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		if cfg.BillingBank != "" {
			pdf.Cell(95, 6, fmt.Sprintf("Bank: %s", cfg.BillingBank))
			pdf.Ln(6)
		}
		if cfg.BillingAccountName != "" {
			pdf.Cell(95, 6, fmt.Sprintf("Account Name: %s", cfg.BillingAccountName))
			pdf.Ln(6)
		}
		if cfg.BillingAccountNumber != "" {
			pdf.Cell(95, 6, fmt.Sprintf("Account Number: %s", cfg.BillingAccountNumber))
			pdf.Ln(6)
		}
	}

	return pdf.OutputFileAndClose(fileName)
}
