package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barlow-drilling/drillbooks/internal/models"
)

func parseDate(dateStr string, fallback time.Time) (time.Time, error) {
	if dateStr == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// parseLineItem parses a "description:quantity:rate" flag value. The last
// two fields are split off from the right so the description itself may
// contain colons.
func parseLineItem(s string) (models.LineItem, error) {
	last := strings.LastIndex(s, ":")
	if last < 0 {
		return models.LineItem{}, fmt.Errorf("invalid line item %q, expected description:quantity:rate", s)
	}
	mid := strings.LastIndex(s[:last], ":")
	if mid < 0 || s[:mid] == "" {
		return models.LineItem{}, fmt.Errorf("invalid line item %q, expected description:quantity:rate", s)
	}
	quantity, err := decimal.NewFromString(s[mid+1 : last])
	if err != nil {
		return models.LineItem{}, fmt.Errorf("invalid quantity in line item %q: %w", s, err)
	}
	rate, err := decimal.NewFromString(s[last+1:])
	if err != nil {
		return models.LineItem{}, fmt.Errorf("invalid rate in line item %q: %w", s, err)
	}
	return models.LineItem{Description: s[:mid], Quantity: quantity, Rate: rate}, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func ptrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
