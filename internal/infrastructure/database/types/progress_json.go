package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// ReviewHistoryEntry is the stored shape of one element of a progress
// record's append-only history column.
type ReviewHistoryEntry struct {
	ReviewedAt time.Time `json:"reviewed_at"`
	Result     string    `json:"result"`
	EaseFactor float64   `json:"ease_factor"`
	Interval   int32     `json:"interval"`
	DurationMs int64     `json:"duration_ms"`
}

// ReviewHistory is the JSONB document stored in word_progress.history.
type ReviewHistory []ReviewHistoryEntry

// Scan implements sql.Scanner for ReviewHistory.
func (h *ReviewHistory) Scan(src any) error {
	if src == nil {
		*h = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			*h = nil
			return nil
		}
		if err := json.Unmarshal(data, h); err != nil {
			return err
		}
	case string:
		if data == "" {
			*h = nil
			return nil
		}
		if err := json.Unmarshal([]byte(data), h); err != nil {
			return err
		}
	default:
		return fmt.Errorf("ReviewHistory: unsupported src type %T", src)
	}
	h.repair()
	return nil
}

// repair coerces malformed stored numbers so downstream arithmetic never
// sees negative or non-finite ease factors.
func (h ReviewHistory) repair() {
	for i := range h {
		h[i].EaseFactor = entity.RepairFloat(h[i].EaseFactor)
	}
}

// Value implements driver.Valuer for ReviewHistory.
func (h ReviewHistory) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return b, nil
}
