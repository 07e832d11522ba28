// Package models defines the bun table models for the Postgres store.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	domain "github.com/dagflow-io/dagflow/pkg/models"
)

// JSONBMap is a custom type for JSONB object columns.
type JSONBMap map[string]any

// Value implements the driver.Valuer interface for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (j *JSONBMap) Scan(value any) error {
	if value == nil {
		*j = make(JSONBMap)
		return nil
	}

	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*j = make(JSONBMap)
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// JSONBValue is a custom type for JSONB columns holding arbitrary values.
type JSONBValue struct {
	V any
}

// Value implements the driver.Valuer interface.
func (j JSONBValue) Value() (driver.Value, error) {
	if j.V == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface.
func (j *JSONBValue) Scan(value any) error {
	if value == nil {
		j.V = nil
		return nil
	}

	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		j.V = nil
		return nil
	}

	return json.Unmarshal(bytes, &j.V)
}

// JSONBNodeResults is a custom type for the per-node result map column.
type JSONBNodeResults map[string]*domain.NodeResult

// Value implements the driver.Valuer interface.
func (j JSONBNodeResults) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface.
func (j *JSONBNodeResults) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

func jsonbBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("failed to scan JSONB column: unexpected type")
	}
}
