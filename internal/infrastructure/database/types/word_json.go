package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a JSONB array of strings, used for word examples and tags.
type StringList []string

// Scan implements sql.Scanner for StringList.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			*l = nil
			return nil
		}
		return json.Unmarshal(data, l)
	case string:
		if data == "" {
			*l = nil
			return nil
		}
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("StringList: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer for StringList.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return b, nil
}
