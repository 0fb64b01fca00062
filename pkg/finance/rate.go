package finance

import "github.com/shopspring/decimal"

// ResolveRate returns the effective hourly rate: the user's own rate when set, otherwise the project default.
// A project without a default rate yields zero.
func ResolveRate(userRate decimal.NullDecimal, projectRate decimal.Decimal) decimal.Decimal {
	if userRate.Valid {
		return userRate.Decimal
	}
	return projectRate
}
