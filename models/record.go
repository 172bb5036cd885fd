package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Record is a dynamic field bag. Buyers, listings and matches all travel
// through the engine as Records so the filter engine and CSV codec can
// operate on arbitrary columns. Values are string, float64 or absent.
type Record map[string]any

// Str returns the string form of a field, or "" when the field is
// absent or nil.
func (r Record) Str(col string) string {
	if r == nil {
		return ""
	}
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Num returns a field as a number. The second return is false when the
// field is absent, nil, or not numeric — callers must treat that as
// "unknown", not zero.
func (r Record) Num(col string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ID returns the record's identifier field as a string.
func (r Record) ID() string {
	return r.Str("id")
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Match is one scored buyer/listing pairing produced by the matcher.
// Matches have no independent lifecycle: every matcher run recomputes
// the full set from the buyer and listing collections.
type Match struct {
	BuyerID         string
	BuyerName       string
	ListingID       string
	ListingTitle    string
	ListingPrice    float64
	ListingLocation string
	ListingURL      string
	Score           int
}

// Record converts the match to a dynamic Record so it can flow through
// the filter engine and the CSV codec like any other collection.
func (m *Match) Record() Record {
	return Record{
		"buyer_id":         m.BuyerID,
		"buyer_name":       m.BuyerName,
		"listing_id":       m.ListingID,
		"listing_title":    m.ListingTitle,
		"listing_price":    m.ListingPrice,
		"listing_location": m.ListingLocation,
		"listing_url":      m.ListingURL,
		"score":            float64(m.Score),
	}
}

// FilterRule is one user-defined predicate over a record column.
// Rules are ephemeral — built per session, never persisted.
type FilterRule struct {
	Column          string
	Op              string
	Value           string
	CaseInsensitive bool
}

// UploadBatch records the outcome of ingesting one uploaded CSV into a
// table: how many rows the file held and how many survived the merge.
type UploadBatch struct {
	ID          uuid.UUID
	Filename    string
	Table       string
	Total       int
	Added       int
	Skipped     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewUploadBatch starts bookkeeping for one CSV ingest.
func NewUploadBatch(filename, table string) *UploadBatch {
	return &UploadBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Table:     table,
		StartedAt: time.Now(),
	}
}

// Finish stamps the batch with its final counts.
func (b *UploadBatch) Finish(total, added int) {
	b.Total = total
	b.Added = added
	b.Skipped = total - added
	b.CompletedAt = time.Now()
}
