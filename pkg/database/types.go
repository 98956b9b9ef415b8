package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a string slice portably across PostgreSQL, MySQL
// and SQLite. Values are written as JSON; reads also accept the native
// PostgreSQL array literal form for pre-existing rows.
type StringArray []string

// Scan implements the sql.Scanner interface.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.scanBytes(v)
	case string:
		return a.scanBytes([]byte(v))
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) scanBytes(data []byte) error {
	str := string(data)

	if strings.HasPrefix(str, "[") {
		return json.Unmarshal(data, a)
	}

	// PostgreSQL array literal: {item1,item2}
	if strings.HasPrefix(str, "{") && strings.HasSuffix(str, "}") {
		str = strings.TrimSuffix(strings.TrimPrefix(str, "{"), "}")
		if str == "" {
			*a = []string{}
			return nil
		}
		*a = parsePostgresArray(str)
		return nil
	}

	*a = []string{str}
	return nil
}

func parsePostgresArray(s string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range s {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '"':
			inQuotes = !inQuotes
		case ',':
			if inQuotes {
				current.WriteRune(r)
			} else {
				result = append(result, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// Value implements the driver.Valuer interface.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}
