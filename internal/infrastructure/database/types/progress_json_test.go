package types

import (
	"testing"
)

func TestReviewHistoryScanRepairsEaseFactor(t *testing.T) {
	doc := `[
		{"reviewed_at":"2024-01-02T10:00:00Z","result":"success","ease_factor":2.6,"interval":6},
		{"reviewed_at":"2024-01-03T10:00:00Z","result":"failure","ease_factor":-1.5,"interval":1}
	]`

	var h ReviewHistory
	if err := h.Scan([]byte(doc)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(h) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(h))
	}
	if h[0].EaseFactor != 2.6 {
		t.Errorf("expected valid ease factor untouched, got %v", h[0].EaseFactor)
	}
	if h[1].EaseFactor != 0 {
		t.Errorf("expected negative ease factor repaired to 0, got %v", h[1].EaseFactor)
	}
}

func TestReviewHistoryScanEmpty(t *testing.T) {
	var h ReviewHistory
	if err := h.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil history, got %v", h)
	}
	if err := h.Scan(""); err != nil {
		t.Fatalf("Scan empty string: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil history, got %v", h)
	}
}

func TestReviewHistoryScanUnsupportedType(t *testing.T) {
	var h ReviewHistory
	if err := h.Scan(42); err == nil {
		t.Fatal("expected error for unsupported src type")
	}
}

func TestReviewHistoryValueNilIsEmptyArray(t *testing.T) {
	var h ReviewHistory
	v, err := h.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Fatalf("expected empty array, got %s", v)
	}
}
