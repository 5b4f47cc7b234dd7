package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

// NextInvoiceNumber produces the next sequential invoice number scoped to
// the calendar year of now, e.g. INV-2026-008. Numbers from other years are
// ignored, as are numbers whose suffix is not numeric; the sequence restarts
// at 001 each year.
func NextInvoiceNumber(existing []*models.Invoice, prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "INV"
	}
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, now.Year())

	max := 0
	for _, inv := range existing {
		suffix, ok := strings.CutPrefix(inv.InvoiceNumber, yearPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("%s%03d", yearPrefix, max+1)
}
