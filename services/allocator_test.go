package services

import (
	"testing"

	"github.com/Tn-Hub-777/rematcher/models"
)

func TestNextIDSequential(t *testing.T) {
	existing := []models.Record{
		{"id": "buyer-001"},
		{"id": "buyer-002"},
		{"id": "buyer-003"},
	}

	if got := NextID("buyer", existing); got != "buyer-004" {
		t.Errorf("NextID = %q; want buyer-004", got)
	}
}

func TestNextIDEmptyCollections(t *testing.T) {
	if got := NextID("listing"); got != "listing-001" {
		t.Errorf("NextID with no collections = %q; want listing-001", got)
	}
	if got := NextID("listing", nil, []models.Record{}); got != "listing-001" {
		t.Errorf("NextID with empty collections = %q; want listing-001", got)
	}
}

func TestNextIDScansAllCollections(t *testing.T) {
	base := []models.Record{{"id": "buyer-002"}}
	uploaded := []models.Record{{"id": "buyer-007"}, nil, {"id": "not-a-buyer-id"}}

	if got := NextID("buyer", base, uploaded); got != "buyer-008" {
		t.Errorf("NextID across collections = %q; want buyer-008", got)
	}
}

func TestNextIDIgnoresForeignPatterns(t *testing.T) {
	existing := []models.Record{
		{"id": "listing-005"},
		{"id": "buyer-abc"},
		{"id": "buyerX-009"},
		{"id": "buyer-3-extra"},
	}

	if got := NextID("buyer", existing); got != "buyer-001" {
		t.Errorf("NextID = %q; want buyer-001 when no id matches the prefix pattern", got)
	}
}

func TestNextIDPadding(t *testing.T) {
	if got := NextID("buyer", []models.Record{{"id": "buyer-0009"}}); got != "buyer-010" {
		t.Errorf("NextID = %q; want buyer-010", got)
	}
	if got := NextID("buyer", []models.Record{{"id": "buyer-999"}}); got != "buyer-1000" {
		t.Errorf("NextID = %q; want buyer-1000 (padding is a minimum, not a cap)", got)
	}
}

func TestEnsureUniqueIDKeepsFreshSupplied(t *testing.T) {
	existing := []models.Record{{"id": "buyer-001"}}

	if got := EnsureUniqueID("buyer", "crm-import-77", existing); got != "crm-import-77" {
		t.Errorf("EnsureUniqueID = %q; want the supplied id kept verbatim", got)
	}
}

func TestEnsureUniqueIDReallocatesOnCollision(t *testing.T) {
	existing := []models.Record{{"id": "buyer-001"}, {"id": "buyer-002"}}

	if got := EnsureUniqueID("buyer", "buyer-001", existing); got != "buyer-003" {
		t.Errorf("EnsureUniqueID = %q; want buyer-003 when supplied id collides", got)
	}
	if got := EnsureUniqueID("buyer", "", existing); got != "buyer-003" {
		t.Errorf("EnsureUniqueID = %q; want buyer-003 when no id supplied", got)
	}
}

func TestEnsureUniqueIDDeterministic(t *testing.T) {
	existing := []models.Record{{"id": "buyer-004"}, {"id": "buyer-002"}}

	first := EnsureUniqueID("buyer", "", existing)
	second := EnsureUniqueID("buyer", "", existing)
	if first != second || first != "buyer-005" {
		t.Errorf("EnsureUniqueID not deterministic: %q then %q; want buyer-005 both times", first, second)
	}
}
