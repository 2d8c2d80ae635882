package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linksignis/navledger/ledger"
)

// parseMoney parses a currency amount as exported by spreadsheets: optional
// dollar sign, thousands separators, surrounding whitespace. Empty and
// NaN-ish cells yield nil without error.
func parseMoney(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return nil, nil
	}

	clean := strings.NewReplacer("$", "", ",", "").Replace(s)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse amount %q", s)
	}
	return &v, nil
}

// parseBool treats true/1/yes/y (any case) as true, everything else as
// false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

var dateLayouts = []string{
	ledger.DateLayout,
	"2006-01-02",
	"January 2, 2006",
}

// parseFlexibleDate accepts the formats seen in transaction exports:
// MM/DD/YYYY, ISO, and the long statement-period form.
func parseFlexibleDate(s string) (ledger.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ledger.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
		}
	}
	return ledger.Date{}, fmt.Errorf("cannot parse date %q", s)
}
