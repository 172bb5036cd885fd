package services

import (
	"strconv"
	"testing"

	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(utils.LevelError) }

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"52", 52, true},
		{"52.5", 52.5, true},
		{"₹52,00,000", 5200000, true},
		{"85 approx", 85, true},
		{"1,200.50", 1200.50, true},
		{"", 0, false},
		{"negotiable", 0, false},
		{"...", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseNumber(%q) = %.2f, %v; want %.2f, %v",
				tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestUnitMultiplier(t *testing.T) {
	tests := []struct {
		unit string
		want float64
	}{
		{"lakh", 100000},
		{"Lakhs", 100000},
		{"LAKH (₹)", 100000},
		{"thousand", 1000},
		{"crore", 10000000},
		{"Crores", 10000000},
		{"", 1},
		{"rupees", 1},
	}

	for _, tt := range tests {
		if got := UnitMultiplier(tt.unit); got != tt.want {
			t.Errorf("UnitMultiplier(%q) = %.0f; want %.0f", tt.unit, got, tt.want)
		}
	}
}

func TestCanonical(t *testing.T) {
	got, ok := Canonical("52", "lakh")
	if !ok || got != 5200000 {
		t.Errorf("Canonical(52, lakh) = %.0f, %v; want 5200000, true", got, ok)
	}

	if _, ok := Canonical("ask owner", "lakh"); ok {
		t.Error("Canonical of unparseable text should report not-ok, not zero")
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	tests := []struct {
		raw  string
		unit string
	}{
		{"52", "lakh"},
		{"1.5", "crore"},
		{"750", "thousand"},
		{"95000", ""},
	}

	for _, tt := range tests {
		first, ok := Canonical(tt.raw, tt.unit)
		if !ok {
			t.Fatalf("Canonical(%q, %q) unexpectedly failed", tt.raw, tt.unit)
		}
		second, ok := Canonical(strconv.FormatFloat(first, 'f', -1, 64), "")
		if !ok || second != first {
			t.Errorf("Canonical not idempotent for (%q, %q): %.2f then %.2f",
				tt.raw, tt.unit, first, second)
		}
	}
}

func TestNormalizeBuyersDerivesBudget(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	uploaded := []models.Record{
		{"id": "buyer-001", "budget_raw": "52", "budget_unit": "lakh"},
		{"id": "buyer-002", "budget": "1.2", "budget_unit": "crore"},
		{"id": "buyer-003", "budget_raw": "call me"},
	}

	out := n.NormalizeBuyers(uploaded)
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}

	if v, ok := out[0].Num("budget_rupees"); !ok || v != 5200000 {
		t.Errorf("budget_rupees[0] = %.0f, %v; want 5200000, true", v, ok)
	}
	if v, ok := out[1].Num("budget_rupees"); !ok || v != 12000000 {
		t.Errorf("budget_rupees[1] = %.0f, %v; want 12000000, true", v, ok)
	}
	if _, ok := out[2].Num("budget_rupees"); ok {
		t.Error("unparseable budget must leave canonical value absent")
	}

	// uploads are cloned, not mutated
	if _, exists := uploaded[0]["budget_rupees"]; exists {
		t.Error("NormalizeBuyers must not mutate its input records")
	}
}

func TestNormalizeListingsDerivesPrice(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	uploaded := []models.Record{
		{"id": "listing-001", "price_raw": "85", "price_unit": "lakh", "area": "1200 sq ft"},
		{"id": "listing-002", "price_raw": "price on request"},
		nil,
	}

	out := n.NormalizeListings(uploaded)
	if len(out) != 2 {
		t.Fatalf("expected nil record skipped, got %d records", len(out))
	}

	if v, ok := out[0].Num("price"); !ok || v != 8500000 {
		t.Errorf("price[0] = %.0f, %v; want 8500000, true", v, ok)
	}
	if v, ok := out[0].Num("area"); !ok || v != 1200 {
		t.Errorf("area[0] = %.0f, %v; want 1200, true", v, ok)
	}
	if out[0].Str("area_unit") != "Sq Mt" {
		t.Errorf("area_unit default: got %q, want %q", out[0].Str("area_unit"), "Sq Mt")
	}
	if _, ok := out[1].Num("price"); ok {
		t.Error("unparseable price must leave canonical value absent")
	}
}
