package middleware

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleLine struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

type sampleRequest struct {
	Name     string          `json:"name" binding:"required,max=5"`
	Discount decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
	Kind     string          `json:"kind" binding:"omitempty,oneof=PAYMENT REFUND"`
	Lines    []sampleLine    `json:"lines" binding:"required,min=1,dive"`
}

func newTestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestValidation_DecimalRules(t *testing.T) {
	v := newTestValidator()

	ok := sampleRequest{
		Name:     "abc",
		Discount: decimal.RequireFromString("12.5"),
		Lines:    []sampleLine{{Amount: decimal.RequireFromString("0.01")}},
	}
	require.NoError(t, v.Struct(ok))

	bad := sampleRequest{
		Name:     "abc",
		Discount: decimal.RequireFromString("100.5"),
		Lines:    []sampleLine{{Amount: decimal.Zero}},
	}
	details := ValidationDetails(v.Struct(bad))
	require.Len(t, details, 2)

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be less than or equal to 100", fields["discount_percent"])
	assert.Equal(t, "Must be greater than 0", fields["amount"])
}

func TestValidation_Messages(t *testing.T) {
	v := newTestValidator()

	details := ValidationDetails(v.Struct(sampleRequest{Name: "toolongname", Kind: "CASH"}))
	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at most 5 characters", fields["name"])
	assert.Equal(t, "Must be one of: PAYMENT REFUND", fields["kind"])
	assert.Equal(t, "This field is required", fields["lines"])
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("boom")))
}
