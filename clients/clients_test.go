package clients_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/fakeapi"
)

func setup(t *testing.T) (*fakeapi.Server, *clients.Service) {
	t.Helper()
	srv := fakeapi.New(t)
	c, _ := srv.Session(t)
	return srv, clients.NewService(c)
}

func TestList(t *testing.T) {
	srv, svc := setup(t)

	page, err := svc.List(context.Background(), api.Query{
		Search:   "ana",
		PageSize: 10,
		Ordering: clients.OrderByFirstName,
		Filters:  map[string]string{"is_active": "true"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.Equal(t, "Ana Gómez", page.Results[0].FullName())
	require.False(t, page.HasNext())

	reqs := srv.RequestsTo("/clients/")
	require.Len(t, reqs, 1)
	require.Equal(t, "is_active=true&ordering=first_name&page_size=10&search=ana", reqs[0].Query)
}

func TestSearchNeedsTwoCharacters(t *testing.T) {
	srv, svc := setup(t)

	page, err := svc.Search(context.Background(), "a")
	require.NoError(t, err)
	require.Empty(t, page.Results)
	require.Empty(t, srv.RequestsTo("/clients/"))

	page, err = svc.Search(context.Background(), "pé")
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "luis@example.co", page.Results[0].Email)
}

func TestCreate(t *testing.T) {
	srv, svc := setup(t)

	created, err := svc.Create(context.Background(), clients.NewClient{
		FirstName: " Marta ",
		LastName:  "Ríos",
		Email:     "marta@example.co",
		IsActive:  true,
		Address:   "Calle 1",
		Phone:     "3000000000",
	})
	require.NoError(t, err)
	require.Equal(t, 3, created.ID)
	require.Equal(t, "Marta", created.FirstName)

	reqs := srv.RequestsTo("/clients/")
	require.Len(t, reqs, 1)
	require.JSONEq(t, `{"first_name":"Marta","last_name":"Ríos","email":"marta@example.co","is_active":true,"address":"Calle 1","phone":"3000000000"}`, reqs[0].Body)
}

func TestCreateValidationNeverReachesAPI(t *testing.T) {
	srv, svc := setup(t)

	_, err := svc.Create(context.Background(), clients.NewClient{FirstName: "Marta", Email: "not-an-email"})
	require.ErrorIs(t, err, errors.ErrValidation)

	var fields errors.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, errors.FieldErrors{
		"last_name": "El apellido es requerido",
		"email":     "Email inválido",
		"address":   "La dirección es requerida",
		"phone":     "El teléfono es requerido",
	}, fields)
	require.Empty(t, srv.Requests())
}
