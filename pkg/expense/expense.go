package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	Id        int
	ProjectId int
	Amount    decimal.Decimal
	// Type is a free-form category such as "Software" or "Travel".
	Type        string
	Description string
	Date        time.Time
}

// Amounts returns the amount of every expense, in order.
func Amounts(expenses []Expense) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(expenses))
	for _, e := range expenses {
		amounts = append(amounts, e.Amount)
	}
	return amounts
}
