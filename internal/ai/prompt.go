package ai

import "fmt"

// extractionPrompt names every InvoiceRecord field and its type. The model is
// instructed to answer with bare JSON; parse.go still strips markdown fences
// because models add them anyway.
const extractionPrompt = `Extract ALL relevant information from this bill/invoice and return ONLY a valid JSON object with the following structure:

{
    "business_name": "Name of the business/store",
    "business_address": "Complete address",
    "business_phone": "Phone number if available",
    "bill_number": "Invoice/bill number",
    "date": "Date in YYYY-MM-DD format",
    "time": "Time if available",
    "items": [
        {
            "name": "Item name",
            "quantity": number,
            "unit_price": number,
            "total_price": number
        }
    ],
    "subtotal": number,
    "tax_amount": number,
    "tax_percentage": number,
    "discount": number,
    "total_amount": number,
    "payment_method": "Cash/Card/UPI etc",
    "customer_info": "Customer details if available"
}

Use null for any field that is not present on the bill.

Bill Text:
%s

Return ONLY the JSON object, no explanation or markdown formatting.`

// BuildPrompt embeds the OCR text into the fixed instruction prompt.
func BuildPrompt(ocrText string) string {
	return fmt.Sprintf(extractionPrompt, ocrText)
}
