package credits_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/credits"
)

func payment(value, delayed string, status credits.PaymentStatus) credits.Payment {
	return credits.Payment{
		Value:        dec(value),
		ValueDelayed: dec(delayed),
		Status:       status,
		Paid:         status == credits.PaymentCompleted,
	}
}

func TestSummarize(t *testing.T) {
	full := credits.FullCredit{
		Credit: credits.Credit{Debt: dec("150000.00")},
		Payments: []credits.Payment{
			payment("150000.00", "165000.00", credits.PaymentCompleted),
			payment("150000.00", "165000.00", credits.PaymentCompleted),
			payment("150000.00", "165000.00", credits.PaymentCompleted),
			payment("150000.00", "165000.00", credits.PaymentPending),
		},
	}

	s := credits.Summarize(full)
	require.True(t, s.TotalPaid.Equal(dec("450000")))
	require.True(t, s.Total.Equal(dec("600000")))
	require.True(t, s.Remaining.Equal(dec("150000")))
	require.True(t, s.Progress.Equal(dec("75.0")))
	require.Equal(t, "75.0%", credits.FormatPercent(s.Progress))
}

func TestSummarizeRoundsProgress(t *testing.T) {
	full := credits.FullCredit{Payments: []credits.Payment{
		payment("100", "110", credits.PaymentCompleted),
		payment("100", "110", credits.PaymentDelayed),
		payment("100", "110", credits.PaymentPending),
	}}
	require.Equal(t, "33.3%", credits.FormatPercent(credits.Summarize(full).Progress))
}

func TestSummarizeWithoutPayments(t *testing.T) {
	s := credits.Summarize(credits.FullCredit{})
	require.True(t, s.Total.IsZero())
	require.True(t, s.Progress.IsZero())
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		status  credits.PaymentStatus
		want    string
		payable bool
	}{
		{status: credits.PaymentDelayed, want: "110", payable: true},
		{status: credits.PaymentCompleted, want: "0", payable: false},
		{status: credits.PaymentPending, want: "100", payable: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, payable := credits.DisplayValue(payment("100", "110", tt.status))
			require.Equal(t, tt.payable, payable)
			require.True(t, got.Equal(dec(tt.want)), got.String())
		})
	}
}

func TestFormatCOP(t *testing.T) {
	tests := map[string]string{
		"0":          "$ 0,00",
		"150":        "$ 150,00",
		"1500":       "$ 1.500,00",
		"150000.5":   "$ 150.000,50",
		"1500000":    "$ 1.500.000,00",
		"-2300000.1": "-$ 2.300.000,10",
	}
	for in, want := range tests {
		require.Equal(t, want, credits.FormatCOP(decimal.RequireFromString(in)), in)
	}
}

func TestLabels(t *testing.T) {
	require.Equal(t, "Retrasado", credits.PaymentDelayed.Label())
	require.Equal(t, "Pendiente", credits.PaymentPending.Label())
	require.Equal(t, "Completado", credits.PaymentCompleted.Label())
	require.Equal(t, "Activo", credits.StatusActive.Label())
	require.Equal(t, "En revisión", credits.StatusInReview.Label())
	require.Equal(t, "archived", credits.Status("archived").Label())
}
