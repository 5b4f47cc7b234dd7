package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

const csvDateFormat = "2006-01-02"

func writeAll(w io.Writer, records [][]string) error {
	writer := csv.NewWriter(w)
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteFinancialCSV(w io.Writer, rep *FinancialReport) error {
	records := [][]string{{"Date", "Description", "Category", "Type", "Amount"}}
	for _, row := range rep.Rows {
		records = append(records, []string{
			row.Date.Format(csvDateFormat),
			row.Description,
			row.Category,
			string(row.Type),
			row.Amount.StringFixed(2),
		})
	}
	records = append(records,
		[]string{"", "", "", "Total Income", rep.TotalIncome.StringFixed(2)},
		[]string{"", "", "", "Total Expenses", rep.TotalExpenses.StringFixed(2)},
		[]string{"", "", "", "Net", rep.Net.StringFixed(2)},
	)
	return writeAll(w, records)
}

func WriteProfitLossCSV(w io.Writer, rep *ProfitLossReport) error {
	records := [][]string{
		{"Line", "Amount"},
		{"Total Income", rep.TotalIncome.StringFixed(2)},
	}
	for _, e := range rep.Expenses {
		records = append(records, []string{fmt.Sprintf("Expenses: %s", e.Category), e.Total.StringFixed(2)})
	}
	records = append(records,
		[]string{"Total Expenses", rep.TotalExpenses.StringFixed(2)},
		[]string{"Net Profit", rep.NetProfit.StringFixed(2)},
	)
	return writeAll(w, records)
}

func WriteProjectProfitabilityCSV(w io.Writer, rows []ProjectProfitRow) error {
	records := [][]string{{"Project", "Client", "Status", "Materials", "Staff", "Other Expenses", "Total Cost", "Amount Received", "Net"}}
	for _, row := range rows {
		records = append(records, []string{
			row.ProjectName,
			row.ClientName,
			string(row.Status),
			row.MaterialsCost.StringFixed(2),
			row.StaffCost.StringFixed(2),
			row.OtherExpenses.StringFixed(2),
			row.TotalCost.StringFixed(2),
			row.AmountReceived.StringFixed(2),
			row.Net.StringFixed(2),
		})
	}
	return writeAll(w, records)
}

func WriteInvoiceSummaryCSV(w io.Writer, rows []InvoiceSummaryRow) error {
	records := [][]string{{"Invoice", "Client", "Project", "Date", "Due Date", "Status", "Total", "Paid", "Balance"}}
	for _, row := range rows {
		records = append(records, []string{
			row.InvoiceNumber,
			row.ClientName,
			row.ProjectName,
			row.Date.Format(csvDateFormat),
			row.DueDate.Format(csvDateFormat),
			string(row.Status),
			row.Total.StringFixed(2),
			row.Paid.StringFixed(2),
			row.Balance.StringFixed(2),
		})
	}
	return writeAll(w, records)
}

func WriteClientStatementCSV(w io.Writer, st *ClientStatement) error {
	records := [][]string{{"Date", "Reference", "Debit", "Credit", "Balance"}}
	for _, e := range st.Entries {
		records = append(records, []string{
			e.Date.Format(csvDateFormat),
			e.Reference,
			e.Debit.StringFixed(2),
			e.Credit.StringFixed(2),
			e.Balance.StringFixed(2),
		})
	}
	records = append(records, []string{"", "Closing Balance", "", "", st.ClosingBalance.StringFixed(2)})
	return writeAll(w, records)
}
