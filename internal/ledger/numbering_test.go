package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func TestNextInvoiceNumber(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("first invoice of the year", func(t *testing.T) {
		require.Equal(t, "INV-2024-001", NextInvoiceNumber(nil, "INV", now))
	})

	t.Run("continues from the highest number in the current year", func(t *testing.T) {
		existing := []*models.Invoice{
			{InvoiceNumber: "INV-2024-001"},
			{InvoiceNumber: "INV-2024-007"},
			{InvoiceNumber: "INV-2024-003"},
		}
		require.Equal(t, "INV-2024-008", NextInvoiceNumber(existing, "INV", now))
	})

	t.Run("other years do not bleed into the sequence", func(t *testing.T) {
		existing := []*models.Invoice{
			{InvoiceNumber: "INV-2023-099"},
			{InvoiceNumber: "INV-2024-002"},
		}
		require.Equal(t, "INV-2024-003", NextInvoiceNumber(existing, "INV", now))
	})

	t.Run("malformed suffixes are ignored", func(t *testing.T) {
		existing := []*models.Invoice{
			{InvoiceNumber: "INV-2024-DRAFT"},
			{InvoiceNumber: "INV-2024-004"},
			{InvoiceNumber: "legacy-17"},
		}
		require.Equal(t, "INV-2024-005", NextInvoiceNumber(existing, "INV", now))
	})

	t.Run("sequence widens past three digits", func(t *testing.T) {
		existing := []*models.Invoice{{InvoiceNumber: "INV-2024-999"}}
		require.Equal(t, "INV-2024-1000", NextInvoiceNumber(existing, "INV", now))
	})

	t.Run("empty prefix falls back to INV", func(t *testing.T) {
		require.Equal(t, "INV-2024-001", NextInvoiceNumber(nil, "", now))
	})

	t.Run("custom prefix", func(t *testing.T) {
		existing := []*models.Invoice{{InvoiceNumber: "BARLOW-2024-011"}}
		require.Equal(t, "BARLOW-2024-012", NextInvoiceNumber(existing, "BARLOW", now))
	})
}
