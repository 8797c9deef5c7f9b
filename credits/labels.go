package credits

import (
	"strings"

	"github.com/shopspring/decimal"
)

var statusLabels = map[Status]string{
	StatusActive:    "Activo",
	StatusCompleted: "Completado",
	StatusStarted:   "Iniciado",
	StatusInReview:  "En revisión",
	StatusRejected:  "Rechazado",
}

var paymentLabels = map[PaymentStatus]string{
	PaymentPending:   "Pendiente",
	PaymentCompleted: "Completado",
	PaymentDelayed:   "Retrasado",
}

// Label is the Spanish name of the status. Unknown statuses are shown verbatim.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s PaymentStatus) Label() string {
	if l, ok := paymentLabels[s]; ok {
		return l
	}
	return string(s)
}

// FormatCOP renders an amount the Colombian way: "$ 1.500.000,00".
func FormatCOP(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "$ " + b.String() + "," + frac
}

// FormatPercent renders a progress value as "75.0%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
