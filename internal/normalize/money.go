// Package normalize converts vendor-formatted text fragments into canonical
// values. Every function here is total: bad input yields nil (field absent),
// never a zero value and never an error.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var moneyRe = regexp.MustCompile(`\$?\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,5})?|[0-9]+(?:\.[0-9]{1,5})?)`)

// Money parses a vendor money fragment ("$1,234.56", "7.84", "FREE") into a
// decimal. Absent or unparsable input returns nil; "absent" and "0.00" stay
// distinct for downstream aggregation.
func Money(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "free") {
		z := decimal.Zero
		return &z
	}
	m := moneyRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &d
}

// Int parses a quantity fragment into an integer, tolerating float renderings
// like "2.00". Unparsable input returns nil.
func Int(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil
	}
	n := d.IntPart()
	return &n
}

// DecimalPtr is a convenience for tests and literals.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
