package services

import (
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

// Merger combines a persisted base collection with an uploaded batch into
// one deduplicated collection. Merging is append-only: base records are
// never mutated, removed or re-ordered.
type Merger struct {
	logger *utils.Logger
}

// NewMerger creates a Merger with the given logger.
func NewMerger(logger *utils.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge appends each uploaded record to a copy of base unless it is a
// duplicate. A record carrying a non-empty identityKey value is a
// duplicate when that value was already seen; a record without one falls
// back to a composite key built by lower-casing and joining
// compositeFields with "|". Nil records are skipped.
func (m *Merger) Merge(base, uploaded []models.Record, identityKey string, compositeFields []string) []models.Record {
	out := make([]models.Record, 0, len(base)+len(uploaded))
	identities := make(map[string]struct{}, len(base))
	composites := make(map[string]struct{}, len(base))

	for _, rec := range base {
		out = append(out, rec)
		if rec == nil {
			continue
		}
		identities[rec.Str(identityKey)] = struct{}{}
		composites[compositeKey(rec, compositeFields)] = struct{}{}
	}

	added := 0
	for _, rec := range uploaded {
		if rec == nil {
			continue
		}
		identity := rec.Str(identityKey)
		if identity != "" {
			if _, dup := identities[identity]; dup {
				m.logger.Debug("[merger] Duplicate %s skipped: %s", identityKey, identity)
				continue
			}
			identities[identity] = struct{}{}
		} else {
			key := compositeKey(rec, compositeFields)
			if _, dup := composites[key]; dup {
				m.logger.Debug("[merger] Duplicate composite key skipped: %s", key)
				continue
			}
		}
		composites[compositeKey(rec, compositeFields)] = struct{}{}
		out = append(out, rec)
		added++
	}

	utils.RecordsMerged.Add(float64(added))
	m.logger.Info("[merger] Merged %d base + %d uploaded → %d records (%d added)",
		len(base), len(uploaded), len(out), added)
	return out
}

// MergeBuyers merges buyer collections: identity on id, composite
// fallback on name|city|mobile.
func (m *Merger) MergeBuyers(base, uploaded []models.Record) []models.Record {
	return m.Merge(base, uploaded, "id", []string{"name", "city", "mobile"})
}

// MergeListings merges listing collections: identity on url, composite
// fallback on address|locality|price.
func (m *Merger) MergeListings(base, uploaded []models.Record) []models.Record {
	return m.Merge(base, uploaded, "url", []string{"address", "locality", "price"})
}

func compositeKey(rec models.Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = rec.Str(f)
	}
	return strings.ToLower(strings.Join(parts, "|"))
}
