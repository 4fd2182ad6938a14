package models

// LineItem is a single purchased item on the bill.
type LineItem struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

// InvoiceRecord is the canonical extraction output. Every field is present in
// the serialized JSON; scalars are null when the model could not determine
// them and Items is never nil so clients always see an array.
type InvoiceRecord struct {
	BusinessName    *string    `json:"business_name"`
	BusinessAddress *string    `json:"business_address"`
	BusinessPhone   *string    `json:"business_phone"`
	BillNumber      *string    `json:"bill_number"`
	Date            *string    `json:"date"`
	Time            *string    `json:"time"`
	Items           []LineItem `json:"items"`
	Subtotal        *float64   `json:"subtotal"`
	TaxAmount       *float64   `json:"tax_amount"`
	TaxPercentage   *float64   `json:"tax_percentage"`
	Discount        *float64   `json:"discount"`
	TotalAmount     *float64   `json:"total_amount"`
	PaymentMethod   *string    `json:"payment_method"`
	CustomerInfo    *string    `json:"customer_info"`
}
