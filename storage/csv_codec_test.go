package storage

import (
	"strings"
	"testing"

	"github.com/Tn-Hub-777/rematcher/models"
)

func TestDecodeHeaderAndRows(t *testing.T) {
	text := "id,name,city\nbuyer-001,Asha,Pune\n\nbuyer-002,Ravi,Delhi\n"

	records, header, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(header) != 3 || header[0] != "id" {
		t.Errorf("header = %v; want [id name city]", header)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (empty line skipped), got %d", len(records))
	}
	if records[0].Str("name") != "Asha" || records[1].Str("city") != "Delhi" {
		t.Errorf("decoded records wrong: %v", records)
	}
}

func TestDecodeShortRowPadded(t *testing.T) {
	text := "id,name,city\nbuyer-001,Asha\n"

	records, _, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Str("city") != "" {
		t.Errorf("missing trailing field should decode as empty, got %q", records[0].Str("city"))
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	records, header, err := Decode("")
	if err != nil || records != nil || header != nil {
		t.Errorf("Decode(\"\") = %v, %v, %v; want all nil", records, header, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	text := "id,name,city\nbuyer-001,Asha,Pune\nbuyer-002,Ravi,Delhi\n"

	records, header, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	encoded, err := Encode(records, header)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded != text {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", encoded, text)
	}
}

func TestEncodeAbsentFieldsEmpty(t *testing.T) {
	records := []models.Record{
		{"id": "listing-001", "price": float64(5200000)},
	}

	encoded, err := Encode(records, []string{"id", "price", "locality"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(encoded), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[1] != "listing-001,5200000," {
		t.Errorf("row = %q; want %q", lines[1], "listing-001,5200000,")
	}
}

func TestColumnsFromFirstRecord(t *testing.T) {
	records := []models.Record{
		{"name": "Asha", "id": "buyer-001", "city": "Pune"},
	}

	cols := Columns(records)
	want := []string{"city", "id", "name"}
	if len(cols) != len(want) {
		t.Fatalf("Columns = %v; want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns = %v; want sorted %v", cols, want)
		}
	}

	if Columns(nil) != nil {
		t.Error("Columns of empty input should be nil")
	}
}
