package entity

import "github.com/shopspring/decimal"

// PartReceived aggregates every non-voided receipt of one part key.
// Descriptive fields are first-seen-wins.
type PartReceived struct {
	PartKey     string
	Vendor      string
	SKU         string
	Description string
	DescClean   string
	LabelLine1  string
	LabelLine2  string
	LabelShort  string
	PurchaseURL string
	AirtableURL string
	QRTargetURL string

	UnitsReceived decimal.Decimal
	TotalSpend    decimal.Decimal
	LastInvoice   string
	AvgUnitCost   *decimal.Decimal // nil while units received is zero
	UpdatedUTC    string
}

// RemovalEvent is an append-only record of stock leaving inventory, either a
// manual removal or the reversal generated by voiding an order.
type RemovalEvent struct {
	RemovalUID string
	PartKey    string
	QtyRemoved decimal.Decimal // always > 0; the on-hand effect is subtraction
	TsUTC      string
	Project    string // "order_void" sentinel for void-generated rows
	Note       string
	OrderUID   string // set on void-generated rows
	FileHash   string
	Reason     string // "order_void" for void-generated rows
	UpdatedUTC string
}

// InventoryRow is one row of the computed on-hand view:
// on_hand = units_received - units_removed.
type InventoryRow struct {
	PartKey       string
	Vendor        string
	SKU           string
	Description   string
	DescClean     string
	LabelLine1    string
	LabelLine2    string
	LabelShort    string
	PurchaseURL   string
	AirtableURL   string
	QRTargetURL   string
	UnitsReceived decimal.Decimal
	UnitsRemoved  decimal.Decimal
	OnHand        decimal.Decimal
	AvgUnitCost   *decimal.Decimal
	TotalSpend    decimal.Decimal
	LastInvoice   string
}

// IngestedFile is one row of the duplicate registry.
type IngestedFile struct {
	FileHash     string
	FirstSeenUTC string
	OriginalPath string
	Vendor       string
	OrderRef     string
	IsVoided     bool
}
