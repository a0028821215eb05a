package vendors

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/normalize"
)

// Arduino parses store invoices and cash-sale receipts. Rows are single
// lines once whitespace is collapsed, bracketed by a fixed header and the
// totals banner.
type Arduino struct{}

func (Arduino) Vendor() constants.Vendor { return constants.VendorArduino }

func (Arduino) Detect(pageOneText string) bool {
	up := strings.ToUpper(pageOneText)
	if !strings.Contains(up, "ARDUINO") {
		return false
	}
	return strings.Contains(up, "ARDUINO.CC") ||
		strings.Contains(up, "STORE-") ||
		strings.Contains(up, "CASH SALE") ||
		strings.Contains(up, "INVOICE")
}

var (
	ardInvoiceRe   = regexp.MustCompile(`(?:CASH SALE n\.|INVOICE n\.)\s*([A-Z0-9/]+)`)
	ardSalesOrdRe  = regexp.MustCompile(`Sales Order\s*#\s*([A-Z0-9]+)`)
	ardRcptDateRe  = regexp.MustCompile(`Receipt Date:\s*([0-9/]+)`)
	ardInvDateRe   = regexp.MustCompile(`Invoice Date:\s*([0-9/]+)`)
	ardTotalsRe    = regexp.MustCompile(`Total Value\s+Shipping Cost\s+Total Tax\s+Final Amount\s*\n\$\s*([0-9]+\.[0-9]{2})\s+\$\s*([0-9]+\.[0-9]{2})\s+\$\s*([0-9]+\.[0-9]{2})\s+\$\s*([0-9]+\.[0-9]{2})`)
	ardItemRowRe   = regexp.MustCompile(`^([A-Z]{3}\d{5})\s+(.*?)\s+(\d+(?:\.\d+)?)\s+\$\s*([0-9]+\.[0-9]{2})\s+\$\s*([0-9]+\.[0-9]{2})(?:\s+\d+%?)?\s*$`)
	ardCOOLineRe   = regexp.MustCompile(`^COO:\s*(.+)$`)
	ardTableHeader = "SKU Description Qty Unit Price Total Value Tax"
	ardTableFooter = "Total Value Shipping Cost Total Tax Final Amount"
)

func (a Arduino) ParseOrder(fullText string) OrderFields {
	out := OrderFields{Vendor: a.Vendor()}
	collapsed := strings.Join(textLines(fullText), "\n")

	out.Invoice = findFirst(ardInvoiceRe, collapsed)
	out.PurchaseOrder = findFirst(ardSalesOrdRe, collapsed)
	out.OrderDate = findFirst(ardRcptDateRe, collapsed)
	if out.OrderDate == "" {
		out.OrderDate = findFirst(ardInvDateRe, collapsed)
	}

	if m := ardTotalsRe.FindStringSubmatch(collapsed); m != nil {
		out.Merchandise = normalize.Money(m[1])
		out.Shipping = normalize.Money(m[2])
		out.Tax = normalize.Money(m[3])
		out.Total = normalize.Money(m[4])
	}
	return out
}

func (a Arduino) ParseLineItems(fullText string) []LineItemFields {
	lines := textLines(fullText)
	var items []LineItemFields
	seen := map[string]bool{}
	inTable := false

	for _, ln := range lines {
		if strings.HasPrefix(ln, ardTableHeader) {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}
		if strings.HasPrefix(ln, ardTableFooter) {
			break
		}
		if m := ardCOOLineRe.FindStringSubmatch(ln); m != nil && len(items) > 0 {
			items[len(items)-1].CountryOfOrigin = strings.TrimSpace(m[1])
			continue
		}
		m := ardItemRowRe.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		sku := m[1]
		qty := ardQty(m[3])
		key := fmt.Sprintf("%s|%s|%s|%s", sku, m[3], m[4], m[5])
		if seen[key] {
			continue
		}
		seen[key] = true
		it := LineItemFields{
			SKU:           sku,
			Description:   strings.TrimSpace(m[2]),
			Manufacturer:  "Arduino",
			MfgPartNumber: sku,
			Ordered:       qty,
			Shipped:       qty,
			Balance:       ardZero(),
			UnitPrice:     normalize.Money(m[4]),
			LineTotal:     normalize.Money(m[5]),
		}
		items = append(items, it)
	}
	return items
}

// ardQty rounds the store's decimal quantities ("2.00") to whole units.
func ardQty(s string) *int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int64(math.Round(f))
	return &v
}

func ardZero() *int64 {
	z := int64(0)
	return &z
}
