// Package entity holds the domain structs shared by repositories and
// services. Money fields are pointers: nil means the receipt did not carry
// the field, which is distinct from 0.00 everywhere downstream.
package entity

import "github.com/shopspring/decimal"

// Order is one purchase/invoice from one vendor, parsed from one PDF.
type Order struct {
	OrderUID          string
	Vendor            string
	Invoice           string
	PurchaseOrder     string
	OrderRef          string // invoice-or-PO natural key used for identity
	OrderDate         string // ISO date, "" when unknown
	AccountNumber     string
	PaymentDate       string // ISO date, "" when unknown
	PaymentInstrument string // masked, e.g. "Amex ****2008"
	Merchandise       *decimal.Decimal
	Shipping          *decimal.Decimal
	Tax               *decimal.Decimal
	Total             *decimal.Decimal
	SourceFile        string
	SourcePath        string
	FileHash          string
	IsVoided          bool
	VoidedUTC         string // ISO timestamp, "" when not voided
	UpdatedUTC        string
}
