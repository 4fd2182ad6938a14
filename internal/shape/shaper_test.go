package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestShapeCopiesKnownFields(t *testing.T) {
	rec := Shape(map[string]any{
		"business_name": "Corner Deli",
		"date":          "2024-03-01",
		"subtotal":      120.0,
		"tax_amount":    23.40,
		"total_amount":  143.40,
		"items": []any{
			map[string]any{"name": "Sandwich", "quantity": 2.0, "unit_price": 60.0, "total_price": 120.0},
		},
	})

	require.NotNil(t, rec.BusinessName)
	assert.Equal(t, "Corner Deli", *rec.BusinessName)
	require.NotNil(t, rec.TotalAmount)
	assert.Equal(t, 143.40, *rec.TotalAmount)
	require.Len(t, rec.Items, 1)
	require.NotNil(t, rec.Items[0].Quantity)
	assert.Equal(t, 2.0, *rec.Items[0].Quantity)
	assert.Nil(t, rec.PaymentMethod)
}

func TestShapeIsTotalOnGarbage(t *testing.T) {
	cases := []map[string]any{
		nil,
		{},
		{"items": "not an array"},
		{"total_amount": []any{1, 2}},
		{"business_name": 12.0},
	}
	for _, in := range cases {
		rec := Shape(in)
		require.NotNil(t, rec)
		assert.NotNil(t, rec.Items)
	}
}

func TestShapeCoercesStringNumbers(t *testing.T) {
	rec := Shape(map[string]any{
		"total_amount": "143.40",
		"tax_amount":   "$23.40",
		"discount":     "not a number",
	})

	require.NotNil(t, rec.TotalAmount)
	assert.Equal(t, 143.40, *rec.TotalAmount)
	require.NotNil(t, rec.TaxAmount)
	assert.Equal(t, 23.40, *rec.TaxAmount)
	assert.Nil(t, rec.Discount)
}

func TestShapeCoercesNumericBillNumber(t *testing.T) {
	rec := Shape(map[string]any{"bill_number": 4711.0})
	require.NotNil(t, rec.BillNumber)
	assert.Equal(t, "4711", *rec.BillNumber)
}

func TestShapeDropsBlankStrings(t *testing.T) {
	rec := Shape(map[string]any{"business_name": "   "})
	assert.Nil(t, rec.BusinessName)
}

func TestFallbackHasExactKeySetAndNullValues(t *testing.T) {
	m := keysOf(t, Fallback())

	want := []string{
		"business_name", "business_address", "business_phone", "bill_number",
		"date", "time", "items", "subtotal", "tax_amount", "tax_percentage",
		"discount", "total_amount", "payment_method", "customer_info",
	}
	assert.Len(t, m, len(want))
	for _, k := range want {
		require.Contains(t, m, k)
		if k == "items" {
			assert.Equal(t, []any{}, m[k], "items must be an empty array, not null")
			continue
		}
		assert.Nil(t, m[k], k)
	}
}

func TestShapedRecordSerializesWithSameKeySetAsFallback(t *testing.T) {
	shaped := keysOf(t, Shape(map[string]any{"total_amount": 1.0, "unknown_key": "x"}))
	fallback := keysOf(t, Fallback())

	assert.Len(t, shaped, len(fallback))
	for k := range fallback {
		assert.Contains(t, shaped, k)
	}
	assert.NotContains(t, shaped, "unknown_key")
}
