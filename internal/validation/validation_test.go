package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/validation"
)

type form struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Payments int    `json:"total_payments" validate:"gte=1"`
}

func TestStructValid(t *testing.T) {
	require.NoError(t, validation.Struct(form{Name: "Ana", Email: "ana@example.co", Payments: 1}, nil))
}

func TestStructReportsWireNames(t *testing.T) {
	err := validation.Struct(form{Email: "nope"}, validation.Messages{"name.required": "El nombre es requerido"})
	require.ErrorIs(t, err, errors.ErrValidation)

	var fields errors.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Equal(t, errors.FieldErrors{
		"name":           "El nombre es requerido",
		"email":          "Email inválido",
		"total_payments": "total_payments debe ser al menos 1",
	}, fields)
}
