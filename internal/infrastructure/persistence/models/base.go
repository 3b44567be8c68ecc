package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a JSON object column (jsonb on PostgreSQL, text on SQLite)
type JSONMap map[string]any

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("models: failed to encode JSON column: %w", err)
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface. Numbers are kept as json.Number.
func (m *JSONMap) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan type %T into JSONMap", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	// Numbers decode as json.Number so large IDs survive the round trip
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("models: failed to decode JSON column: %w", err)
	}
	*m = out
	return nil
}
