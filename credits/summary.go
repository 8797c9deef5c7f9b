package credits

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Summary holds the figures shown on the credit detail view.
type Summary struct {
	// TotalPaid is the sum of values of completed payments.
	TotalPaid decimal.Decimal
	// Total is the sum of values of all payments.
	Total decimal.Decimal
	// Remaining is the debt reported by the API, not recomputed.
	Remaining decimal.Decimal
	// Progress is TotalPaid/Total as a percentage with one decimal place.
	Progress decimal.Decimal
}

func Summarize(c FullCredit) Summary {
	s := Summary{Remaining: c.Debt}
	for _, p := range c.Payments {
		s.Total = s.Total.Add(p.Value)
		if p.Status == PaymentCompleted {
			s.TotalPaid = s.TotalPaid.Add(p.Value)
		}
	}
	if !s.Total.IsZero() {
		s.Progress = s.TotalPaid.Mul(hundred).DivRound(s.Total, 4).Round(1)
	}
	return s
}

// DisplayValue is the amount a payment currently asks for. Delayed payments
// ask for their delayed value and completed ones ask for nothing.
func DisplayValue(p Payment) (decimal.Decimal, bool) {
	switch p.Status {
	case PaymentCompleted:
		return decimal.Zero, false
	case PaymentDelayed:
		return p.ValueDelayed, true
	default:
		return p.Value, true
	}
}
