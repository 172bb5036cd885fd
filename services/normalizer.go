package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

var (
	// nonNumericRegexp strips everything but digits and the decimal point
	nonNumericRegexp = regexp.MustCompile(`[^0-9.]`)
	// leadingFloatRegexp captures the longest numeric prefix of a stripped value
	leadingFloatRegexp = regexp.MustCompile(`^[0-9]+(?:\.[0-9]*)?|^\.[0-9]+`)
)

// ParseNumber extracts a numeric amount from free text. All characters
// except digits and "." are stripped before parsing; values like
// "₹52,00,000" or "52 lakh" yield their leading numeric part. The second
// return is false when no finite number can be extracted.
func ParseNumber(raw string) (float64, bool) {
	cleaned := nonNumericRegexp.ReplaceAllString(raw, "")
	match := leadingFloatRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// UnitMultiplier resolves a magnitude unit to its multiplier. Matching is
// case-insensitive and substring-based: "Lakhs", "lakh (₹)" and "lakh"
// all resolve the same way. Unknown or empty units multiply by 1.
func UnitMultiplier(unit string) float64 {
	u := strings.ToLower(unit)
	switch {
	case strings.Contains(u, "lakh"):
		return 100000
	case strings.Contains(u, "thousand"):
		return 1000
	case strings.Contains(u, "crore"):
		return 10000000
	default:
		return 1
	}
}

// Canonical converts a raw amount plus magnitude unit into the base
// currency denomination. False means the raw value was unparseable —
// callers must treat that as unknown, never as zero.
func Canonical(raw, unit string) (float64, bool) {
	n, ok := ParseNumber(raw)
	if !ok {
		return 0, false
	}
	return n * UnitMultiplier(unit), true
}

// Normalizer derives canonical numeric fields on uploaded records.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeBuyers returns a copy of the uploaded buyers with the
// canonical budget_rupees field derived from budget_raw (or budget) and
// budget_unit. Unparseable budgets leave the canonical field absent.
func (n *Normalizer) NormalizeBuyers(uploaded []models.Record) []models.Record {
	out := make([]models.Record, 0, len(uploaded))
	for _, rec := range uploaded {
		if rec == nil {
			continue
		}
		b := rec.Clone()
		raw := firstNonEmpty(b, "budget_raw", "budget")
		unit := b.Str("budget_unit")
		if unit == "" {
			unit = "lakh"
		}
		if v, ok := Canonical(raw, unit); ok {
			b["budget_rupees"] = v
		} else {
			b["budget_rupees"] = nil
		}
		out = append(out, b)
	}
	n.logger.Debug("[normalizer] Normalized %d buyer records", len(out))
	return out
}

// NormalizeListings returns a copy of the uploaded listings with
// canonical price, deposit and area fields derived from their raw
// value/unit pairs.
func (n *Normalizer) NormalizeListings(uploaded []models.Record) []models.Record {
	out := make([]models.Record, 0, len(uploaded))
	for _, rec := range uploaded {
		if rec == nil {
			continue
		}
		l := rec.Clone()

		priceRaw := firstNonEmpty(l, "price_raw", "price")
		priceUnit := l.Str("price_unit")
		if priceUnit == "" {
			priceUnit = "lakh"
		}
		if v, ok := Canonical(priceRaw, priceUnit); ok {
			l["price"] = v
		} else {
			l["price"] = nil
		}

		if depositRaw := firstNonEmpty(l, "deposit_raw", "deposit"); depositRaw != "" {
			depositUnit := l.Str("deposit_unit")
			if depositUnit == "" {
				depositUnit = "lakh"
			}
			if v, ok := Canonical(depositRaw, depositUnit); ok {
				l["deposit"] = v
			} else {
				l["deposit"] = nil
			}
		}

		if areaRaw := l.Str("area"); areaRaw != "" {
			if v, ok := ParseNumber(areaRaw); ok {
				l["area"] = v
			} else {
				l["area"] = nil
			}
		}
		if l.Str("area_unit") == "" {
			l["area_unit"] = "Sq Mt"
		}

		out = append(out, l)
	}
	n.logger.Debug("[normalizer] Normalized %d listing records", len(out))
	return out
}

// firstNonEmpty returns the string form of the first listed column that
// holds a non-empty value.
func firstNonEmpty(r models.Record, cols ...string) string {
	for _, c := range cols {
		if v := r.Str(c); v != "" {
			return v
		}
	}
	return ""
}
