package entity

import "github.com/shopspring/decimal"

// LineItem is one row within an order's parsed item table. Immutable after
// creation; deleted only when its order is purged.
type LineItem struct {
	LineItemUID   string
	OrderUID      string
	Vendor        string
	Invoice       string
	PurchaseOrder string
	PartKey       string

	Line          *int64 // 1-based position, nil when the extractor can't recover it
	SKU           string
	Manufacturer  string
	MfgPartNumber string
	CountryOfOrig string
	Description   string // raw, possibly multi-line
	DescClean     string // pack-size phrases stripped

	Ordered   *int64
	Shipped   *int64
	Balance   *int64
	UnitPrice *decimal.Decimal
	LineTotal *decimal.Decimal

	PackQty       int64
	UnitsReceived decimal.Decimal // shipped x pack qty

	LabelLine1  string
	LabelLine2  string
	LabelShort  string
	PurchaseURL string
	AirtableURL string
	QRTargetURL string

	FileHash   string
	UpdatedUTC string
}
