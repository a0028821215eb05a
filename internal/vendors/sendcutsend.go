package vendors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/normalize"
)

// SendCutSend parses fabrication invoices. There is no SKU: each line item
// is a CAD file cut from a material, so the uploaded filename stands in for
// the part number and the description is assembled from material, dimensions
// and the requested operations. Their PDFs embed NUL bytes where "(" glyphs
// belong, which sendcutsendClean repairs before any pattern runs.
type SendCutSend struct{}

func (SendCutSend) Vendor() constants.Vendor { return constants.VendorSendCutSend }

func (SendCutSend) Detect(pageOneText string) bool {
	low := strings.ToLower(pageOneText)
	return strings.Contains(low, "sendcutsend") ||
		strings.Contains(low, "support@sendcutsend.com")
}

var (
	scsInvoiceRe  = regexp.MustCompile(`\b(S[A-Z0-9]{7})\b`)
	scsInvDateRe  = regexp.MustCompile(`Invoice\s*Date:\s*([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)
	scsAnyDateRe  = regexp.MustCompile(`\b([A-Za-z]{3,9}\s+\d{1,2},\s*\d{4}(?:\s+\d{1,2}:\d{2}\s*[AP]M)?)\b`)
	scsSubtotalRe = regexp.MustCompile(`(?i)Subtotal:\s*\$?([0-9,]+\.\d{2})`)
	scsTaxRe      = regexp.MustCompile(`(?i)\bTax:\s*\$?([0-9,]+\.\d{2})`)
	scsShippingRe = regexp.MustCompile(`(?i)Shipping\s*(?:\+|and)?\s*Handling:\s*(FREE|\$?[0-9,]+\.\d{2})`)
	scsCardRe     = regexp.MustCompile(`(?i)\b(MasterCard|Visa|Discover|American\s*Express|AmEx)\s*\(x(\d{4})`)

	scsTotalLineRe = regexp.MustCompile(`(?i)^Total:\s*\$?([0-9,]+\.\d{2})`)
	scsItemTotalRe = regexp.MustCompile(`(?i)Item\s*total:\s*\$?([0-9,]+\.\d{2})`)
	scsQtyRe       = regexp.MustCompile(`\bQty:\s*(\d+)\b`)
	scsCADFileRe   = regexp.MustCompile(`(?i)([A-Za-z0-9][A-Za-z0-9_\-.]{0,240}\.(?:step|stp|dxf|dwg|iges|igs|sldprt|sldasm|pdf))`)
	scsLineNumRe   = regexp.MustCompile(`^\d+$`)
	scsDimsRe      = regexp.MustCompile(`(?i)^[\d.]+\s*(?:in|mm|")\s*[x×]\s*[\d.]+`)
)

// operation keywords stripped from the material line and reported separately.
var scsOps = []string{
	"Bending", "Tapping", "Deburring", "Countersink",
	"Welding", "Forming", "Powder", "Anodize", "Finish",
}

// sendcutsendClean replaces embedded NULs: a NUL directly before a digit was
// an open paren in the source glyph stream, any other NUL was a space.
func sendcutsendClean(text string) string {
	b := []byte(text)
	for i := range b {
		if b[i] != 0 {
			continue
		}
		if i+1 < len(b) && b[i+1] >= '0' && b[i+1] <= '9' {
			b[i] = '('
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}

func (s SendCutSend) ParseOrder(fullText string) OrderFields {
	text := sendcutsendClean(fullText)
	lines := textLines(text)
	out := OrderFields{Vendor: s.Vendor()}

	out.Invoice = findFirst(scsInvoiceRe, text)
	out.OrderDate = findFirst(scsInvDateRe, text)
	if out.OrderDate == "" {
		out.OrderDate = findFirst(scsAnyDateRe, text)
	}
	out.Merchandise = normalize.Money(findFirst(scsSubtotalRe, text))
	out.Tax = normalize.Money(findFirst(scsTaxRe, text))
	if ship := findFirst(scsShippingRe, text); ship != "" {
		out.Shipping = normalize.Money(ship)
	}

	// The grand total and per-item totals share the word "Total"; only a
	// line starting with it is the order total.
	for _, ln := range lines {
		if m := scsTotalLineRe.FindStringSubmatch(ln); m != nil {
			out.Total = normalize.Money(m[1])
			break
		}
	}

	if m := scsCardRe.FindStringSubmatch(text); m != nil {
		brand := collapseWS(m[1])
		out.PaymentInstrument = fmt.Sprintf("%s (x%s)", brand, m[2])
	}
	return out
}

func (s SendCutSend) ParseLineItems(fullText string) []LineItemFields {
	lines := textLines(sendcutsendClean(fullText))
	var items []LineItemFields

	// Item blocks start after the lone "Line" column header.
	i := 0
	for ; i < len(lines); i++ {
		if strings.EqualFold(lines[i], "line") {
			i++
			break
		}
	}
	for i < len(lines) {
		low := strings.ToLower(lines[i])
		if strings.HasPrefix(low, "ship to:") || strings.HasPrefix(low, "bill to:") ||
			strings.HasPrefix(low, "subtotal:") {
			break
		}
		// Each block opens with a material line; skip page furniture.
		if scsLineNumRe.MatchString(lines[i]) || strings.Contains(low, "invoice") {
			i++
			continue
		}
		item, next := scsParseBlock(lines, i)
		if item == nil {
			i++
			continue
		}
		items = append(items, *item)
		i = next
	}

	for idx := range items {
		if items[idx].SKU == "" {
			items[idx].SKU = fmt.Sprintf("sendcutsend_line_%d", idx+1)
		}
	}
	return items
}

// scsParseBlock consumes one item block starting at the material line and
// ending at its "Item total:" line. Returns nil when no item total is found
// within the block window.
func scsParseBlock(lines []string, start int) (*LineItemFields, int) {
	var (
		material string
		dims     string
		filename string
		lineNum  *int64
		qty      int64 = 1
		total    *decimal.Decimal
	)

	material = lines[start]
	if m := scsQtyRe.FindStringSubmatch(material); m != nil {
		qty = scsAtoi(m[1], 1)
	}

	i := start + 1
	end := -1
	for ; i < len(lines); i++ {
		ln := lines[i]
		low := strings.ToLower(ln)
		if strings.HasPrefix(low, "ship to:") || strings.HasPrefix(low, "bill to:") ||
			strings.HasPrefix(low, "subtotal:") {
			break
		}
		if m := scsItemTotalRe.FindStringSubmatch(ln); m != nil {
			total = normalize.Money(m[1])
			end = i
			break
		}
		if dims == "" && scsDimsRe.MatchString(ln) {
			dims = ln
			continue
		}
		if lineNum == nil && i-start <= 3 && scsLineNumRe.MatchString(ln) {
			n := scsAtoi(ln, 0)
			lineNum = &n
			continue
		}
		if m := scsQtyRe.FindStringSubmatch(ln); m != nil {
			qty = scsAtoi(m[1], qty)
		}
		if m := scsCADFileRe.FindStringSubmatch(ln); m != nil && filename == "" {
			filename = m[1]
		}
	}
	if total == nil {
		return nil, start + 1
	}

	materialClean, ops := scsSplitOps(material)

	var descParts []string
	if materialClean != "" {
		descParts = append(descParts, materialClean)
	}
	if dims != "" {
		descParts = append(descParts, dims)
	}
	if len(ops) > 0 {
		descParts = append(descParts, "Ops: "+strings.Join(ops, "; "))
	}
	if filename != "" {
		descParts = append(descParts, filename)
	}

	qv := qty
	zero := int64(0)
	item := &LineItemFields{
		Line:        lineNum,
		SKU:         filename,
		Description: strings.Join(descParts, "\n"),
		Ordered:     &qv,
		Shipped:     &qv,
		Balance:     &zero,
		LineTotal:   total,
	}
	if qty > 0 {
		unit := total.Div(decimal.NewFromInt(qty)).Round(2)
		item.UnitPrice = &unit
	}
	return item, end + 1
}

// scsSplitOps strips Qty and operation keywords from the material line and
// returns the cleaned material plus the deduplicated operations found.
func scsSplitOps(material string) (string, []string) {
	clean := scsQtyRe.ReplaceAllString(material, "")
	var ops []string
	seen := map[string]bool{}
	for _, op := range scsOps {
		re := regexp.MustCompile(`(?i)\b` + op + `\w*\b`)
		if re.MatchString(clean) {
			clean = re.ReplaceAllString(clean, "")
			if !seen[op] {
				seen[op] = true
				ops = append(ops, op)
			}
		}
	}
	clean = collapseWS(strings.Trim(clean, " ,;-"))
	return clean, ops
}

func scsAtoi(s string, def int64) int64 {
	var v int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		v = v*10 + int64(r-'0')
	}
	if s == "" {
		return def
	}
	return v
}
