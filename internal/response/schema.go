package response

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "bill_extraction_response.json"

const schemaSource = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "oneOf": [
    {
      "type": "object",
      "required": ["is_success", "data"],
      "properties": {
        "is_success": {"const": true},
        "data": {
          "type": "object",
          "required": ["pagewise_line_items", "total_item_count", "reconciled_amount"],
          "properties": {
            "pagewise_line_items": {
              "type": "array",
              "minItems": 1,
              "items": {
                "type": "object",
                "required": ["page_no", "bill_items"],
                "properties": {
                  "page_no": {"type": "string", "minLength": 1},
                  "bill_items": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "required": ["item_name", "item_amount", "item_rate", "item_quantity"],
                      "properties": {
                        "item_name": {"type": "string"},
                        "item_amount": {"type": "number"},
                        "item_rate": {"type": "number"},
                        "item_quantity": {"type": "number"}
                      }
                    }
                  }
                }
              }
            },
            "total_item_count": {"type": "integer", "minimum": 0},
            "reconciled_amount": {"type": "number"}
          }
        }
      }
    },
    {
      "type": "object",
      "required": ["is_success", "error"],
      "properties": {
        "is_success": {"const": false},
        "error": {"type": "string"}
      }
    }
  ]
}`

var schema = jsonschema.MustCompileString(schemaURL, schemaSource)

// Validate checks a serialized response against the mandatory contract, including
// that total_item_count matches the number of emitted items.
func Validate(payload []byte) error {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}

	var resp struct {
		Data *struct {
			Pages []struct {
				Items []json.RawMessage `json:"bill_items"`
			} `json:"pagewise_line_items"`
			Count int `json:"total_item_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("unmarshal response data: %w", err)
	}
	if resp.Data == nil {
		return nil
	}
	n := 0
	for _, p := range resp.Data.Pages {
		n += len(p.Items)
	}
	if n != resp.Data.Count {
		return fmt.Errorf("total_item_count %d does not match %d emitted items", resp.Data.Count, n)
	}
	return nil
}

// ValidateResponse serializes resp and validates it.
func ValidateResponse(resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return Validate(b)
}
