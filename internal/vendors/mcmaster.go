package vendors

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/studio-inventory/constants"
	"github.com/joseph-ayodele/studio-inventory/internal/normalize"
)

// McMaster parses McMaster-Carr receipt PDFs. Order fields come from labeled
// anchors scattered across the pages; line items come from the first page's
// item table, parsed by column position under the table header.
type McMaster struct{}

func (McMaster) Vendor() constants.Vendor { return constants.VendorMcMaster }

func (McMaster) Detect(pageOneText string) bool {
	return strings.Contains(strings.ToLower(pageOneText), "mcmaster")
}

var (
	mcInvoiceRe   = regexp.MustCompile(`(?i)\bInvoice\b\s*([A-Z0-9-]+)\b`)
	mcPORe        = regexp.MustCompile(`(?i)\bPurchase\s+Order\b\s*([A-Z0-9-]+)\b`)
	mcInvDateRe   = regexp.MustCompile(`(?i)\bInvoice\s+Date\b\s*([0-9]{1,2}/[0-9]{1,2}/[0-9]{2,4})\b`)
	mcAccountRe   = regexp.MustCompile(`(?i)\bYour\s+Account\b\s*([A-Z0-9-]+)\b`)
	mcCardRe      = regexp.MustCompile(`(?i)\bCredit\s+Card\s+([A-Za-z]+)\s+Ending-\s*([0-9]{4})\b`)
	mcPayRecvRe   = regexp.MustCompile(`(?i)\bPayment\s+Received\b\s+([0-9]{1,2}/[0-9]{1,2}/[0-9]{2,4})\b`)
	mcPayWindowRe = regexp.MustCompile(`(?i)\bDate\b\s*([0-9]{1,2}/[0-9]{1,2}/[0-9]{2,4})\b`)
)

func (m McMaster) ParseOrder(fullText string) OrderFields {
	out := OrderFields{Vendor: m.Vendor()}

	collapsed := collapseWS(strings.ReplaceAll(fullText, "\n", " \n "))
	out.Invoice = findFirst(mcInvoiceRe, collapsed)
	// The bare "Invoice" anchor can grab the word after "Invoice Date" when
	// the number appears later in the text; prefer a numeric-looking token.
	if strings.EqualFold(out.Invoice, "date") {
		if m := mcInvoiceRe.FindAllStringSubmatch(collapsed, -1); len(m) > 1 {
			out.Invoice = strings.TrimSpace(m[1][1])
		}
	}
	out.PurchaseOrder = findFirst(mcPORe, collapsed)
	out.OrderDate = findFirst(mcInvDateRe, collapsed)
	out.AccountNumber = findFirst(mcAccountRe, collapsed)

	if cc := mcCardRe.FindStringSubmatch(collapsed); cc != nil {
		out.PaymentInstrument = titleCase(cc[1]) + " ****" + cc[2]
	}

	out.PaymentDate = findFirst(mcPayRecvRe, collapsed)
	if out.PaymentDate == "" {
		low := strings.ToLower(collapsed)
		if idx := strings.Index(low, "information about your payment"); idx != -1 {
			end := idx + 500
			if end > len(collapsed) {
				end = len(collapsed)
			}
			out.PaymentDate = findFirst(mcPayWindowRe, collapsed[idx:end])
		}
	}

	// Totals: first matching labeled line wins, scanning all pages.
	for _, ln := range textLines(fullText) {
		low := strings.ToLower(ln)
		switch {
		case out.Merchandise == nil && strings.HasPrefix(low, "merchandise"):
			out.Merchandise = normalize.Money(ln)
		case out.Shipping == nil && (strings.HasPrefix(low, "shipping") || strings.HasPrefix(low, "freight")):
			out.Shipping = normalize.Money(ln)
		case out.Tax == nil && strings.Contains(low, "sales tax"):
			out.Tax = normalize.Money(ln)
		case out.Total == nil && strings.HasPrefix(low, "total"):
			out.Total = normalize.Money(ln)
		}
	}
	return out
}

// Item-table geometry. The header row anchors six columns; rows below are
// sliced at the header tokens' text offsets. Price and total amounts can land
// on either side of their shared gap, so the boundary between those two
// columns sits at the midpoint of the "Price" and "Total" header anchors —
// the same rule the column extraction has always used.
type mcBounds struct {
	ordered, shipped, balance, price, split int
}

var (
	mcRowRe    = regexp.MustCompile(`^\s*(\d+)\s+([A-Z0-9]+)\s*(.*)$`)
	mcMoneyish = regexp.MustCompile(`^\$?\d+(?:,\d{3})*(?:\.\d{2})?$`)
)

func mcFindBounds(line string) *mcBounds {
	low := strings.ToLower(line)
	if !strings.Contains(low, "line") {
		return nil
	}
	idx := func(tok string) int { return strings.Index(low, tok) }
	b := mcBounds{
		ordered: idx("ordered"),
		shipped: idx("shipped"),
		balance: idx("balance"),
		price:   idx("price"),
	}
	total := idx("total")
	if b.ordered < 0 || b.shipped < 0 || b.balance < 0 || b.price < 0 || total < 0 {
		return nil
	}
	b.split = (b.price + total) / 2
	return &b
}

func slice(line string, from, to int) string {
	if from > len(line) {
		return ""
	}
	if to < 0 || to > len(line) {
		to = len(line)
	}
	if from < 0 {
		from = 0
	}
	return strings.TrimSpace(line[from:to])
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (m McMaster) ParseLineItems(fullText string) []LineItemFields {
	var items []LineItemFields
	var current *LineItemFields
	var bounds *mcBounds

	for _, raw := range strings.Split(fullText, "\n") {
		if bounds == nil {
			bounds = mcFindBounds(raw)
			continue
		}

		low := strings.ToLower(collapseWS(raw))
		if low == "" {
			continue
		}
		// Everything at or below the totals/packing-list block is not a row.
		if strings.Contains(low, "packing list") || strings.HasPrefix(low, "merchandise") {
			break
		}

		text := slice(raw, 0, bounds.ordered)
		ordered := slice(raw, bounds.ordered, bounds.shipped)
		shipped := slice(raw, bounds.shipped, bounds.balance)
		balance := slice(raw, bounds.balance, bounds.price)
		price := slice(raw, bounds.price, bounds.split)
		total := slice(raw, bounds.split, -1)

		row := mcRowRe.FindStringSubmatch(text)
		if row == nil {
			// Continuation line: wrapped description text under the last row.
			if current != nil && text != "" {
				current.Description = strings.TrimSpace(current.Description + " " + text)
			}
			continue
		}

		if balance != "" {
			balance = lastToken(balance)
		}
		// If the total landed just left of the split, the price column holds
		// the only money token; copy it across.
		if total == "" && price != "" && mcMoneyish.MatchString(lastToken(price)) {
			total = lastToken(price)
			price = lastToken(price)
		}

		items = append(items, LineItemFields{
			Line:        normalize.Int(row[1]),
			SKU:         row[2],
			Description: strings.TrimSpace(row[3]),
			Ordered:     normalize.Int(ordered),
			Shipped:     normalize.Int(shipped),
			Balance:     normalize.Int(balance),
			UnitPrice:   normalize.Money(price),
			LineTotal:   normalize.Money(total),
		})
		current = &items[len(items)-1]
	}
	return items
}
