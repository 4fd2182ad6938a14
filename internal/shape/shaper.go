package shape

import (
	"strconv"
	"strings"

	"github.com/scanwise/invoice-extractor/internal/models"
)

// Shape converts the model's raw JSON payload into a fully-keyed
// InvoiceRecord. It is a total function: whatever the input looks like, the
// output has every schema field, nil scalars for anything absent or
// uninterpretable, and a non-nil Items slice. It never invents values.
func Shape(raw map[string]any) *models.InvoiceRecord {
	rec := Fallback()
	if raw == nil {
		return rec
	}

	rec.BusinessName = stringField(raw, "business_name")
	rec.BusinessAddress = stringField(raw, "business_address")
	rec.BusinessPhone = stringField(raw, "business_phone")
	rec.BillNumber = stringField(raw, "bill_number")
	rec.Date = stringField(raw, "date")
	rec.Time = stringField(raw, "time")
	rec.Subtotal = numberField(raw, "subtotal")
	rec.TaxAmount = numberField(raw, "tax_amount")
	rec.TaxPercentage = numberField(raw, "tax_percentage")
	rec.Discount = numberField(raw, "discount")
	rec.TotalAmount = numberField(raw, "total_amount")
	rec.PaymentMethod = stringField(raw, "payment_method")
	rec.CustomerInfo = stringField(raw, "customer_info")

	if items, ok := raw["items"].([]any); ok {
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			rec.Items = append(rec.Items, models.LineItem{
				Name:       stringField(obj, "name"),
				Quantity:   numberField(obj, "quantity"),
				UnitPrice:  numberField(obj, "unit_price"),
				TotalPrice: numberField(obj, "total_price"),
			})
		}
	}

	return rec
}

// Fallback returns the all-null record used when any stage after validation
// fails. The client-visible JSON shape is identical to a genuine result.
func Fallback() *models.InvoiceRecord {
	return &models.InvoiceRecord{Items: []models.LineItem{}}
}

func stringField(m map[string]any, key string) *string {
	switch v := m[key].(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return &s
	case float64:
		// Bill numbers and similar sometimes come back as JSON numbers.
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

func numberField(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(v, "$"))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}
