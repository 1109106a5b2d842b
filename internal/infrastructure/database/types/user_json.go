package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// UserStats stores the gamification aggregate as a JSONB document.
type UserStats entity.VocabularyStats

// Scan implements sql.Scanner for UserStats.
func (s *UserStats) Scan(src any) error {
	switch data := src.(type) {
	case nil:
		*s = UserStats{}
		return nil
	case []byte:
		if len(data) == 0 {
			*s = UserStats{}
			return nil
		}
		return json.Unmarshal(data, s)
	case string:
		if data == "" {
			*s = UserStats{}
			return nil
		}
		return json.Unmarshal([]byte(data), s)
	default:
		return fmt.Errorf("UserStats: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer for UserStats.
func (s UserStats) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UserSettings stores per-user preferences as a JSONB document.
type UserSettings entity.UserSettings

// Scan implements sql.Scanner for UserSettings.
func (s *UserSettings) Scan(src any) error {
	switch data := src.(type) {
	case nil:
		*s = UserSettings{}
		return nil
	case []byte:
		if len(data) == 0 {
			*s = UserSettings{}
			return nil
		}
		return json.Unmarshal(data, s)
	case string:
		if data == "" {
			*s = UserSettings{}
			return nil
		}
		return json.Unmarshal([]byte(data), s)
	default:
		return fmt.Errorf("UserSettings: unsupported src type %T", src)
	}
}

// Value implements driver.Valuer for UserSettings.
func (s UserSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}
