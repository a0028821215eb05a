package vendors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/normalize"
)

// DigiKey parses PO acknowledgment / invoice PDFs. The item table interleaves
// PART, MFG, COO and DESC lines per row, so parsing is a line-walking state
// machine keyed on the PART anchor rather than a single row regex.
type DigiKey struct{}

func (DigiKey) Vendor() constants.Vendor { return constants.VendorDigiKey }

func (DigiKey) Detect(pageOneText string) bool {
	up := strings.ToUpper(pageOneText)
	return strings.Contains(up, "DIGI-KEY ELECTRONICS") ||
		strings.Contains(up, "WWW.DIGIKEY.COM") ||
		strings.Contains(up, "DIGIKEY")
}

var (
	dkPOAckRe     = regexp.MustCompile(`(?i)PO\s+Acknowledg(?:e)?ment[:\s]+(\d+)`)
	dkWebOrderRe  = regexp.MustCompile(`(?i)WEB\s+ORDER\s+ID[:\s]+(\d+)`)
	dkOrderDateRe = regexp.MustCompile(`(?i)Order\s+Date[:\s]+([0-9]{2}-[A-Z]{3}-[0-9]{4})`)

	dkItemStartRe = regexp.MustCompile(`(?i)\b(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s+PART:\s*([A-Z0-9-]+)\b`)
	dkDescTailRe  = regexp.MustCompile(`^(.*)\s+(\d+\.\d{5})\s+(\d+\.\d{2})\s*$`)
	dkBareMoney   = regexp.MustCompile(`^\d+\.\d{2}$`)
	dkLineMoney   = regexp.MustCompile(`(\d+(?:,\d{3})*\.\d{2})`)
)

func (d DigiKey) ParseOrder(fullText string) OrderFields {
	lines := textLines(fullText)
	out := OrderFields{Vendor: d.Vendor()}

	out.Invoice = findFirst(dkPOAckRe, fullText)
	out.PurchaseOrder = findFirst(dkWebOrderRe, fullText)
	out.OrderDate = findFirst(dkOrderDateRe, fullText)

	out.Merchandise = dkMoneyAfterLabel(lines, "sales amount")
	out.Shipping = dkMoneyAfterLabel(lines, "shipping charges applied")
	out.Tax = dkMoneyAfterLabel(lines, "sales tax")
	out.Total = dkMoneyAfterLabel(lines, "total")
	return out
}

// dkMoneyAfterLabel finds the first line starting with label (case folded)
// and takes the amount on it, or a bare amount on the following line. The
// totals block prints labels and values in separate text columns, so either
// shape shows up depending on how the page text reassembles.
func dkMoneyAfterLabel(lines []string, label string) *decimal.Decimal {
	for i, ln := range lines {
		low := strings.ToLower(ln)
		if !strings.HasPrefix(low, label) {
			continue
		}
		rest := strings.TrimSpace(ln[len(label):])
		if m := dkLineMoney.FindStringSubmatch(rest); m != nil {
			return normalize.Money(m[1])
		}
		if i+1 < len(lines) && dkBareMoney.MatchString(lines[i+1]) {
			return normalize.Money(lines[i+1])
		}
		return nil
	}
	return nil
}

func (d DigiKey) ParseLineItems(fullText string) []LineItemFields {
	lines := textLines(fullText)
	var items []LineItemFields
	var cur *LineItemFields
	var descParts []string
	seen := map[string]bool{}

	flush := func() {
		if cur == nil {
			return
		}
		if len(descParts) > 0 && cur.Description == "" {
			cur.Description = strings.Join(descParts, " ")
		}
		// Extraction overlap can repeat a whole item block; the line number
		// differs between copies, so it stays out of the key.
		var qty int64
		if cur.Shipped != nil {
			qty = *cur.Shipped
		}
		key := fmt.Sprintf("%s|%d|%v|%v", cur.SKU, qty, cur.UnitPrice, cur.LineTotal)
		if !seen[key] {
			seen[key] = true
			items = append(items, *cur)
		}
		cur = nil
		descParts = nil
	}

	for _, ln := range lines {
		if m := dkItemStartRe.FindStringSubmatch(ln); m != nil {
			flush()
			cur = &LineItemFields{SKU: m[5]}
			cur.Line = dkInt(m[1])
			cur.Ordered = dkInt(m[2])
			cur.Shipped = dkInt(m[3])
			cur.Balance = dkInt(m[4])
			continue
		}
		if cur == nil {
			continue
		}
		up := strings.ToUpper(ln)
		switch {
		case strings.HasPrefix(up, "MFG"):
			rhs := dkAfterColon(ln)
			if slash := strings.Index(rhs, "/"); slash >= 0 {
				cur.Manufacturer = strings.TrimSpace(rhs[:slash])
				cur.MfgPartNumber = strings.TrimSpace(rhs[slash+1:])
			} else {
				cur.Manufacturer = rhs
			}
		case strings.HasPrefix(up, "COO"):
			coo := dkAfterColon(ln)
			for _, marker := range []string{"ECCN", "HTSUS", "ROHS", "REACH"} {
				if idx := strings.Index(strings.ToUpper(coo), marker); idx >= 0 {
					coo = coo[:idx]
				}
			}
			cur.CountryOfOrigin = strings.TrimSpace(coo)
		case strings.HasPrefix(up, "DESC"):
			rhs := dkAfterColon(ln)
			if m := dkDescTailRe.FindStringSubmatch(rhs); m != nil {
				descParts = append(descParts, strings.TrimSpace(m[1]))
				cur.UnitPrice = normalize.Money(m[2])
				cur.LineTotal = normalize.Money(m[3])
			} else if rhs != "" {
				descParts = append(descParts, rhs)
			}
		default:
			// Description wrap lines carry the price tail when DESC: itself
			// ran long; otherwise ignore boilerplate between rows.
			if cur.UnitPrice == nil && len(descParts) > 0 {
				if m := dkDescTailRe.FindStringSubmatch(ln); m != nil {
					if head := strings.TrimSpace(m[1]); head != "" {
						descParts = append(descParts, head)
					}
					cur.UnitPrice = normalize.Money(m[2])
					cur.LineTotal = normalize.Money(m[3])
				}
			}
		}
	}
	flush()
	return items
}

func dkAfterColon(ln string) string {
	if idx := strings.Index(ln, ":"); idx >= 0 {
		return strings.TrimSpace(ln[idx+1:])
	}
	return ""
}

func dkInt(s string) *int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
