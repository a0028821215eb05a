package repository

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// decArg binds an optional money value: nil stays NULL, never 0.
func decArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func decValArg(d decimal.Decimal) string {
	return d.String()
}

func intArg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanDecPtr(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func scanDec(ns sql.NullString) decimal.Decimal {
	if d := scanDecPtr(ns); d != nil {
		return *d
	}
	return decimal.Zero
}

func scanIntPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func scanStr(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
