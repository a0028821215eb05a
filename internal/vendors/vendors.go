// Package vendors holds one extractor per supported receipt source plus the
// priority-ordered registry that dispatches a document to the first extractor
// whose detector matches. Layouts are fixed per vendor; each extractor is a
// set of anchored patterns tuned against captured real invoices.
package vendors

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/studio-inventory/constants"
)

// OrderFields is the raw order-level parse result. String fields are "" when
// the document does not carry them; money fields are nil, never zero.
// Dates are the vendor's own formatting; the orchestrator normalizes them.
type OrderFields struct {
	Vendor            constants.Vendor
	Invoice           string
	PurchaseOrder     string
	OrderDate         string
	AccountNumber     string
	PaymentDate       string
	PaymentInstrument string
	Merchandise       *decimal.Decimal
	Shipping          *decimal.Decimal
	Tax               *decimal.Decimal
	Total             *decimal.Decimal
}

// LineItemFields is one raw row of an order's item table.
type LineItemFields struct {
	Line            *int64
	SKU             string
	Description     string
	Manufacturer    string
	MfgPartNumber   string
	CountryOfOrigin string
	Ordered         *int64
	Shipped         *int64
	Balance         *int64
	UnitPrice       *decimal.Decimal
	LineTotal       *decimal.Decimal
}

// Extractor is the per-vendor contract. Detect must be conservative: a false
// positive routes the PDF to the wrong parser and corrupts its fields.
type Extractor interface {
	Vendor() constants.Vendor
	Detect(pageOneText string) bool
	ParseOrder(fullText string) OrderFields
	ParseLineItems(fullText string) []LineItemFields
}

// Registry tries extractors in a fixed priority order. Specificity decreases
// down the list: McMaster's detector (a bare company-name match) goes last.
type Registry struct {
	extractors []Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: []Extractor{
		&StepperOnline{},
		&SendCutSend{},
		&Arduino{},
		&DigiKey{},
		&McMaster{},
	}}
}

// Pick returns the first extractor whose detector matches, or nil when no
// vendor matches — the caller decides whether to skip or report the file.
// A panicking detector counts as a non-match.
func (r *Registry) Pick(pageOneText string) (picked Extractor) {
	for _, ex := range r.extractors {
		if detects(ex, pageOneText) {
			return ex
		}
	}
	return nil
}

func detects(ex Extractor, text string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return ex.Detect(text)
}

// --- shared text helpers ---

var wsRun = regexp.MustCompile(`[ \t]+`)

// collapseWS squeezes runs of spaces/tabs so anchors tuned against
// single-spaced extractions also match layout-padded text.
func collapseWS(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// textLines returns the document's non-empty lines with whitespace collapsed.
func textLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if c := collapseWS(ln); c != "" {
			lines = append(lines, c)
		}
	}
	return lines
}

// titleCase uppercases the first rune and lowercases the rest.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// findFirst returns the first capture group of the first match, trimmed.
func findFirst(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
