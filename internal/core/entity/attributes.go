package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes stores custom entity fields as a JSONB column.
type Attributes map[string]any

// Value implements driver.Valuer for database serialization.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database deserialization.
func (a *Attributes) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Attributes: %T", value)
	}

	if len(data) == 0 {
		*a = nil
		return nil
	}

	return json.Unmarshal(data, a)
}
