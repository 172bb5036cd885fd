package services

import (
	"testing"

	"github.com/Tn-Hub-777/rematcher/models"
)

func TestMergeBuyersIdentityDedup(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{
		{"id": "buyer-001", "name": "Asha", "city": "Pune"},
		{"id": "buyer-002", "name": "Ravi", "city": "Delhi"},
	}
	uploaded := []models.Record{
		{"id": "buyer-002", "name": "Ravi Kumar", "city": "Delhi"},
		{"id": "buyer-003", "name": "Meera", "city": "Mumbai"},
	}

	out := m.MergeBuyers(base, uploaded)
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	// base record wins over the uploaded duplicate
	if out[1].Str("name") != "Ravi" {
		t.Errorf("base record must be preserved unchanged, got name %q", out[1].Str("name"))
	}
	if out[2].ID() != "buyer-003" {
		t.Errorf("new uploaded record should append, got %q", out[2].ID())
	}
}

func TestMergeBuyersCompositeFallback(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{
		{"id": "buyer-001", "name": "Asha", "city": "Pune", "mobile": "9800000001"},
	}
	uploaded := []models.Record{
		{"name": "ASHA", "city": "pune", "mobile": "9800000001"},
		{"name": "Asha", "city": "Pune", "mobile": "9800000002"},
	}

	out := m.MergeBuyers(base, uploaded)
	if len(out) != 2 {
		t.Fatalf("expected composite duplicate dropped, got %d records", len(out))
	}
	if out[1].Str("mobile") != "9800000002" {
		t.Errorf("wrong record survived: %v", out[1])
	}
}

func TestMergeListingsURLIdentity(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{
		{"id": "listing-001", "url": "https://portal.example/p/1", "address": "12 MG Road"},
	}
	uploaded := []models.Record{
		{"url": "https://portal.example/p/1", "address": "different text, same url"},
		{"url": "https://portal.example/p/2", "address": "44 FC Road"},
		{"address": "12 MG Road", "locality": "", "price": ""},
	}

	out := m.MergeListings(base, uploaded)
	// same-url record is an identity duplicate; the url-less record
	// collides with the base record's address|locality|price composite
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[1].Str("url") != "https://portal.example/p/2" {
		t.Errorf("expected p/2 appended second, got %v", out[1])
	}
}

func TestMergeIsAppendOnlyAndOrdered(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{
		{"id": "buyer-003"},
		{"id": "buyer-001"},
	}
	uploaded := []models.Record{
		{"id": "buyer-004"},
		nil,
		{"id": "buyer-002"},
	}

	out := m.MergeBuyers(base, uploaded)

	wantOrder := []string{"buyer-003", "buyer-001", "buyer-004", "buyer-002"}
	if len(out) != len(wantOrder) {
		t.Fatalf("expected %d records, got %d", len(wantOrder), len(out))
	}
	for i, want := range wantOrder {
		if out[i].ID() != want {
			t.Errorf("position %d: got %q, want %q", i, out[i].ID(), want)
		}
	}
}

func TestMergeSupersetBound(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{{"id": "buyer-001"}, {"id": "buyer-002"}}
	uploaded := []models.Record{{"id": "buyer-002"}, {"id": "buyer-003"}, {"id": "buyer-003"}}

	out := m.MergeBuyers(base, uploaded)
	if len(out) > len(base)+len(uploaded) {
		t.Errorf("merge output larger than inputs combined: %d", len(out))
	}

	seen := map[string]int{}
	for _, r := range out {
		seen[r.ID()]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("identity %q appears %d times; want exactly once", id, n)
		}
	}
}

func TestMergeDeterministic(t *testing.T) {
	m := NewMerger(newTestLogger())

	base := []models.Record{{"id": "buyer-001", "name": "Asha"}}
	uploaded := []models.Record{
		{"name": "Walk-in", "city": "Pune", "mobile": "98"},
		{"id": "buyer-009"},
	}

	first := m.MergeBuyers(base, uploaded)
	second := m.MergeBuyers(base, uploaded)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic merge: %d vs %d records", len(first), len(second))
	}
	for i := range first {
		if first[i].ID() != second[i].ID() {
			t.Errorf("position %d differs between runs", i)
		}
	}
}
