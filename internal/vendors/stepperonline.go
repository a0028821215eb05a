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

// StepperOnline parses OMC Corporation order confirmations. A row spans two
// lines: a "N x <name>" line introduces quantity and product name, and a
// later model/price line finishes it. Shipping is the sum of the carrier
// charge and the packing fee.
type StepperOnline struct{}

func (StepperOnline) Vendor() constants.Vendor { return constants.VendorStepperOnline }

func (StepperOnline) Detect(pageOneText string) bool {
	up := strings.ToUpper(pageOneText)
	return strings.Contains(up, "OMC CORPORATION LIMITED") ||
		strings.Contains(up, "STEPPERONLINE")
}

var (
	soDateRe     = regexp.MustCompile(`Date Added:\s*([0-9/]+)`)
	soOrderIDRe  = regexp.MustCompile(`Order ID:\s*(\d+)`)
	soSubTotalRe = regexp.MustCompile(`Sub-Total:\s*\$?([0-9,]+\.\d{2})`)
	soUSPSRe     = regexp.MustCompile(`USPS Ground:\s*\$?([0-9,]+\.\d{2})`)
	soPackingRe  = regexp.MustCompile(`Packing Fee:\s*\$?([0-9,]+\.\d{2})`)
	soTotalRe    = regexp.MustCompile(`^Total:\s*\$?([0-9,]+\.\d{2})`)

	soHeaderRe   = regexp.MustCompile(`^Product Name\s+Model\s+Price\s+Total ex\. tax$`)
	soStopRe     = regexp.MustCompile(`^Sub-Total:`)
	soQtyDescRe  = regexp.MustCompile(`^(\d+)\s*x\s+(.+)$`)
	soShipFromRe = regexp.MustCompile(`Ships from:\s*(.+)`)
	soPriceTail  = regexp.MustCompile(`\$(\d+(?:,\d{3})*\.\d{2})\s+\$(\d+(?:,\d{3})*\.\d{2})\s*$`)
)

func (s StepperOnline) ParseOrder(fullText string) OrderFields {
	lines := textLines(fullText)
	out := OrderFields{Vendor: s.Vendor()}

	out.OrderDate = findFirst(soDateRe, fullText)
	if id := findFirst(soOrderIDRe, fullText); id != "" {
		out.Invoice = id
		out.PurchaseOrder = id
	}
	out.Merchandise = normalize.Money(findFirst(soSubTotalRe, fullText))

	ship := decimal.Zero
	shipSeen := false
	if v := normalize.Money(findFirst(soUSPSRe, fullText)); v != nil {
		ship = ship.Add(*v)
		shipSeen = true
	}
	if v := normalize.Money(findFirst(soPackingRe, fullText)); v != nil {
		ship = ship.Add(*v)
		shipSeen = true
	}
	if shipSeen {
		out.Shipping = &ship
	}

	// "Total:" must be line-anchored or it also grabs "Sub-Total:".
	for _, ln := range lines {
		if m := soTotalRe.FindStringSubmatch(ln); m != nil {
			out.Total = normalize.Money(m[1])
			break
		}
	}
	return out
}

func (s StepperOnline) ParseLineItems(fullText string) []LineItemFields {
	lines := textLines(fullText)
	var items []LineItemFields
	seen := map[string]bool{}

	inTable := false
	var pendingQty int64 = 1
	var pendingDesc, pendingCOO string

	for _, ln := range lines {
		if !inTable {
			if soHeaderRe.MatchString(ln) {
				inTable = true
			}
			continue
		}
		if soStopRe.MatchString(ln) {
			break
		}
		if m := soQtyDescRe.FindStringSubmatch(ln); m != nil {
			q, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				q = 1
			}
			pendingQty = q
			pendingDesc = strings.TrimSpace(m[2])
			continue
		}
		if m := soShipFromRe.FindStringSubmatch(ln); m != nil {
			pendingCOO = strings.TrimSpace(m[1])
			continue
		}
		m := soPriceTail.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		head := strings.TrimSpace(ln[:len(ln)-len(m[0])])
		fields := strings.Fields(head)
		if len(fields) == 0 {
			continue
		}
		sku := fields[len(fields)-1]
		suffix := strings.TrimSpace(strings.TrimSuffix(head, sku))
		desc := strings.TrimSpace(strings.Join([]string{pendingDesc, suffix}, " "))

		unit := normalize.Money(m[1])
		ext := normalize.Money(m[2])
		key := fmt.Sprintf("%s|%d|%v|%v|%s", sku, pendingQty, unit, ext, desc)
		if seen[key] {
			continue
		}
		seen[key] = true

		qty := pendingQty
		zero := int64(0)
		items = append(items, LineItemFields{
			SKU:             sku,
			Description:     desc,
			Manufacturer:    "StepperOnline",
			MfgPartNumber:   sku,
			CountryOfOrigin: pendingCOO,
			Ordered:         &qty,
			Shipped:         &qty,
			Balance:         &zero,
			UnitPrice:       unit,
			LineTotal:       ext,
		})
		pendingQty, pendingDesc, pendingCOO = 1, "", ""
	}
	return items
}
