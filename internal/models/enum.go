package models

import (
	"database/sql/driver"
	"fmt"
)

// enumText extracts the stored label from a database value.
func enumText(src interface{}) (string, bool, error) {
	switch v := src.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("unsupported enum source type %T", src)
	}
}

// enumLookup maps a label back to its value.
func enumLookup[T comparable](names map[T]string, label string) (T, bool) {
	for value, name := range names {
		if name == label {
			return value, true
		}
	}
	var zero T
	return zero, false
}

// enumValue renders a required enum column.
func enumValue[T comparable](names map[T]string, v T, kind string) (driver.Value, error) {
	name, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("invalid %s %v", kind, v)
	}
	return name, nil
}
