package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/scanwise/invoice-extractor/internal/pipeline"
)

// recordSchema is deliberately lenient: every field is optional and numeric
// fields also accept strings, because models return "12.50" as often as
// 12.50. It exists to reject grossly wrong shapes (top-level arrays, items
// that are not objects) before the shaper trusts the data.
const recordSchema = `{
  "type": "object",
  "properties": {
    "business_name":    {"type": ["string", "null"]},
    "business_address": {"type": ["string", "null"]},
    "business_phone":   {"type": ["string", "null"]},
    "bill_number":      {"type": ["string", "number", "null"]},
    "date":             {"type": ["string", "null"]},
    "time":             {"type": ["string", "null"]},
    "items": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "name":        {"type": ["string", "null"]},
          "quantity":    {"type": ["number", "string", "null"]},
          "unit_price":  {"type": ["number", "string", "null"]},
          "total_price": {"type": ["number", "string", "null"]}
        }
      }
    },
    "subtotal":       {"type": ["number", "string", "null"]},
    "tax_amount":     {"type": ["number", "string", "null"]},
    "tax_percentage": {"type": ["number", "string", "null"]},
    "discount":       {"type": ["number", "string", "null"]},
    "total_amount":   {"type": ["number", "string", "null"]},
    "payment_method": {"type": ["string", "null"]},
    "customer_info":  {"type": ["string", "null"]}
  }
}`

var compiledSchema = jsonschema.MustCompileString("invoice.schema.json", recordSchema)

// ParseRecord extracts the JSON object from the model's response text and
// validates its shape. The returned map is the raw, schema-checked payload;
// the shaper converts it into a fully-keyed InvoiceRecord.
func ParseRecord(text string) (map[string]any, error) {
	cleaned := stripFences(text)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &pipeline.StageError{
			Stage:  pipeline.StageAI,
			Reason: pipeline.ReasonMalformedResponse,
			Err:    fmt.Errorf("no JSON object found in response"),
			Raw:    text,
		}
	}

	var payload any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return nil, &pipeline.StageError{
			Stage:  pipeline.StageAI,
			Reason: pipeline.ReasonMalformedResponse,
			Err:    fmt.Errorf("invalid JSON in response: %w", err),
			Raw:    text,
		}
	}

	obj, ok := payload.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, &pipeline.StageError{
			Stage:  pipeline.StageAI,
			Reason: pipeline.ReasonMalformedResponse,
			Err:    fmt.Errorf("response is not a non-empty JSON object"),
			Raw:    text,
		}
	}

	if err := compiledSchema.Validate(payload); err != nil {
		return nil, &pipeline.StageError{
			Stage:  pipeline.StageAI,
			Reason: pipeline.ReasonMalformedResponse,
			Err:    fmt.Errorf("response failed schema validation: %w", err),
			Raw:    text,
		}
	}

	return obj, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
