package services

import (
	"math"
	"sort"
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

// Matcher scores every buyer against every listing and returns the
// ranked pairings above a minimum score. It never mutates its inputs and
// recomputes the full match set on every run.
type Matcher struct {
	logger *utils.Logger
}

// NewMatcher creates a Matcher with the given logger.
func NewMatcher(logger *utils.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// scoredListing carries the per-run precomputed listing signals so the
// text blob and price are derived once per listing, not once per pair.
type scoredListing struct {
	rec   models.Record
	blob  string
	price float64
}

// buyerProfile carries the per-buyer derived signals.
type buyerProfile struct {
	budget   float64
	location string
	keywords []string
}

// Match scores all buyer/listing pairs and returns matches with a capped
// score of at least minScore, sorted by buyer id ascending then score
// descending (stable on input order for ties).
func (m *Matcher) Match(buyers, listings []models.Record, minScore int) []models.Match {
	utils.MatcherRuns.Inc()

	prepared := make([]scoredListing, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		blob := strings.ToLower(l.Str("description") + " " + l.Str("address") + " " +
			l.Str("project") + " " + l.Str("locality"))
		prepared = append(prepared, scoredListing{
			rec:   l,
			blob:  blob,
			price: firstNumeric(l, "price", "price_raw"),
		})
	}

	var out []models.Match
	for _, b := range buyers {
		if b == nil {
			continue
		}
		profile := buyerProfile{
			budget:   firstNumeric(b, "budget_rupees", "budget_raw"),
			location: strings.ToLower(firstNonEmpty(b, "city", "locality", "state", "preferred_localities")),
		}
		if src := firstNonEmpty(b, "preferred_localities", "preferred_projects", "property_type", "specific"); src != "" {
			for _, kw := range strings.Split(strings.ToLower(src), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					profile.keywords = append(profile.keywords, kw)
				}
			}
		}

		for _, l := range prepared {
			raw := m.scorePair(&profile, &l)
			if raw <= 0 {
				continue
			}
			score := int(math.Round(raw))
			if score > 100 {
				score = 100
			}
			if score < minScore {
				continue
			}
			out = append(out, models.Match{
				BuyerID:         b.ID(),
				BuyerName:       b.Str("name"),
				ListingID:       l.rec.ID(),
				ListingTitle:    firstNonEmpty(l.rec, "project", "address", "description"),
				ListingPrice:    l.price,
				ListingLocation: firstNonEmpty(l.rec, "locality", "state"),
				ListingURL:      l.rec.Str("url"),
				Score:           score,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BuyerID != out[j].BuyerID {
			return out[i].BuyerID < out[j].BuyerID
		}
		return out[i].Score > out[j].Score
	})

	utils.MatchesEmitted.Add(float64(len(out)))
	m.logger.Info("[matcher] %d buyers × %d listings → %d matches (min score %d)",
		len(buyers), len(listings), len(out), minScore)
	return out
}

// scorePair sums the independent pairing signals: price proximity (0–50),
// location containment (+25) and keyword hits (+20 each).
func (m *Matcher) scorePair(b *buyerProfile, l *scoredListing) float64 {
	var score float64

	lp, minP := l.price, b.budget
	switch {
	case lp != 0 && minP != 0:
		diff := math.Abs(lp - minP)
		if diff/math.Max(1, minP) < 0.2 {
			score += 50
		} else {
			score += math.Max(0, 50-(diff/math.Max(1, math.Max(lp, minP)))*50)
		}
	case lp != 0:
		// priced listing, no buyer budget: flat 10; a price-less
		// listing contributes nothing regardless of budget
		score += 10
	}

	if b.location != "" {
		haystack := strings.ToLower(l.rec.Str("locality") + " " + l.rec.Str("address") + " " + l.rec.Str("state"))
		if strings.Contains(haystack, b.location) {
			score += 25
		}
	}

	for _, kw := range b.keywords {
		if strings.Contains(l.blob, kw) {
			score += 20
		}
	}

	return score
}

// firstNumeric returns the first listed column holding a non-zero
// numeric value, trying the stored number first and then a free-text
// parse of the string form. Zero when nothing parses.
func firstNumeric(r models.Record, cols ...string) float64 {
	for _, c := range cols {
		if v, ok := r.Num(c); ok && v != 0 {
			return v
		}
		if v, ok := ParseNumber(r.Str(c)); ok && v != 0 {
			return v
		}
	}
	return 0
}
