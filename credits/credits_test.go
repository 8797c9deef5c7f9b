package credits_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/credits"
	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/fakeapi"
	"github.com/jrsteele09/credibuy-console/sessions"
)

func setup(t *testing.T) (*fakeapi.Server, *credits.Service) {
	t.Helper()
	srv := fakeapi.New(t)
	c, _ := srv.Session(t)
	return srv, credits.NewService(c)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestList(t *testing.T) {
	srv, svc := setup(t)

	page, err := svc.List(context.Background(), api.Query{Ordering: credits.OrderByDebt, Filters: map[string]string{"status": "active"}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)

	c := page.Results[0]
	require.Equal(t, "Ana Gómez", c.ClientName)
	require.Equal(t, credits.StatusActive, c.Status)
	require.True(t, c.Debt.Equal(dec("150")))
	require.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), c.CreatedAt.UTC())

	require.Equal(t, "ordering=debt&status=active", srv.RequestsTo("/credit/")[0].Query)
}

func TestDetailKeepsPaymentOrder(t *testing.T) {
	srv, svc := setup(t)

	full, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, full.ID)
	require.Len(t, full.Payments, 3)
	require.Equal(t, []int{1, 2, 3}, []int{full.Payments[0].ID, full.Payments[1].ID, full.Payments[2].ID})
	require.Equal(t, credits.PaymentDelayed, full.Payments[1].Status)
	require.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), full.Payments[1].DueDate.Time)

	require.Len(t, srv.RequestsTo("/credit/1"), 1)
	require.Len(t, srv.RequestsTo("/payments/by-credit/1"), 1)
}

func TestGetMissingCredit(t *testing.T) {
	_, svc := setup(t)
	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

// An expired access token on /credit/5 is refreshed and the GET retried
// with the new token; the caller only sees the result.
func TestGetRetriesAfterRefresh(t *testing.T) {
	srv := fakeapi.New(t)
	c, store := srv.Session(t)
	svc := credits.NewService(c)
	srv.ExpireAccess()

	_, err := svc.Get(context.Background(), 5)
	require.ErrorIs(t, err, errors.ErrNotFound)

	reqs := srv.RequestsTo("/credit/5")
	require.Len(t, reqs, 2)
	s, err := sessions.Load(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer " + s.AccessToken}, reqs[1].Authorization)
	require.Equal(t, 1, srv.RefreshCalls())
}

func TestMarkPayment(t *testing.T) {
	srv, svc := setup(t)

	p, err := svc.MarkPayment(context.Background(), 3, true)
	require.NoError(t, err)
	require.True(t, p.Paid)
	require.Equal(t, credits.PaymentCompleted, p.Status)
	require.JSONEq(t, `{"paid":true}`, srv.RequestsTo("/payments/3/")[0].Body)

	c, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, c.Debt.Equal(dec("100")))
}

func TestCreate(t *testing.T) {
	srv, svc := setup(t)

	c, err := svc.Create(context.Background(), credits.NewCredit{Client: 2, Product: 1, TotalPayments: 3})
	require.NoError(t, err)
	require.Equal(t, 2, c.ID)
	require.Equal(t, credits.StatusActive, c.Status)
	require.True(t, c.Debt.Equal(dec("1500000")))
	require.JSONEq(t, `{"client":2,"product":1,"total_payments":3}`, srv.RequestsTo("/credits/create/")[0].Body)
}

func TestCreateRejectedByAPI(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Create(context.Background(), credits.NewCredit{Client: 1, Product: 2, TotalPayments: 12})
	var statusErr *errors.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "No products in stock")
}

func TestCreateValidation(t *testing.T) {
	srv, svc := setup(t)

	_, err := svc.Create(context.Background(), credits.NewCredit{Client: 1, Product: 1, TotalPayments: 0})
	require.ErrorIs(t, err, errors.ErrValidation)

	var fields errors.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, "El número de pagos debe ser al menos 1", fields["total_payments"])
	require.Empty(t, srv.Requests())
}
