package services

import (
	"fmt"
	"regexp"

	"github.com/Tn-Hub-777/rematcher/models"
)

// NextID scans every record across the given collections for identifiers
// of the form <prefix>-<digits> and returns the next one in sequence,
// zero-padded to at least three digits. An empty scan yields <prefix>-001.
func NextID(prefix string, collections ...[]models.Record) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	max := 0
	for _, coll := range collections {
		for _, rec := range coll {
			if rec == nil {
				continue
			}
			m := pattern.FindStringSubmatch(rec.ID())
			if m == nil {
				continue
			}
			var n int
			if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}

	return fmt.Sprintf("%s-%03d", prefix, max+1)
}

// EnsureUniqueID returns suppliedID when it is non-empty and not already
// used as an id anywhere in the given collections, otherwise allocates a
// fresh sequential identifier. Deterministic for identical inputs; callers
// sharing a persisted store must treat allocate+insert as one step, or
// rely on the store's primary-key constraint to reject a lost race.
func EnsureUniqueID(prefix, suppliedID string, collections ...[]models.Record) string {
	if suppliedID != "" && !idExists(suppliedID, collections) {
		return suppliedID
	}
	return NextID(prefix, collections...)
}

func idExists(id string, collections [][]models.Record) bool {
	for _, coll := range collections {
		for _, rec := range coll {
			if rec != nil && rec.ID() == id {
				return true
			}
		}
	}
	return false
}
