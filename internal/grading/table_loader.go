package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const tableSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["min", "max", "label"],
    "additionalProperties": false,
    "properties": {
      "min":   {"type": "number", "minimum": 0, "maximum": 100},
      "max":   {"type": "number", "minimum": 0, "maximum": 100},
      "label": {"type": "string", "minLength": 1},
      "tier":  {"type": "string"}
    }
  }
}`

var compiledTableSchema = jsonschema.MustCompileString("grade-table.schema.json", tableSchema)

// ParseTable decodes a JSON grade table, checks it against the table schema
// and then against the range invariants.
func ParseTable(raw []byte) ([]Range, error) {
	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGradeTable, err)
	}

	if err := compiledTableSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGradeTable, err)
	}

	var table []Range
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGradeTable, err)
	}

	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	return table, nil
}

// LoadTable reads a grade table from path. An empty path yields DefaultTable.
func LoadTable(path string) ([]Range, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grade table: %w", err)
	}

	return ParseTable(raw)
}
