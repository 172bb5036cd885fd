package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
)

// Operator is the closed set of filter comparison kinds. The zero value
// is OpUnknown, whose predicate always evaluates false.
type Operator int

const (
	OpUnknown Operator = iota
	OpContains
	OpEquals
	OpStarts
	OpEnds
	OpGt
	OpLt
	OpGte
	OpLte
)

// ParseOperator maps a rule's wire name to an Operator. Unrecognized
// names map to OpUnknown.
func ParseOperator(s string) Operator {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contains":
		return OpContains
	case "equals":
		return OpEquals
	case "starts":
		return OpStarts
	case "ends":
		return OpEnds
	case "gt":
		return OpGt
	case "lt":
		return OpLt
	case "gte":
		return OpGte
	case "lte":
		return OpLte
	default:
		return OpUnknown
	}
}

// Mode combines multiple rule predicates.
type Mode int

const (
	ModeAnd Mode = iota
	ModeOr
)

// ParseMode maps "and"/"or" to a Mode, defaulting to ModeAnd.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "or") {
		return ModeOr
	}
	return ModeAnd
}

// comparableRegexp strips everything but digits, "." and "-" before the
// numeric-coercion attempt on filter operands.
var comparableRegexp = regexp.MustCompile(`[^0-9.\-]`)

// Predicate builds the evaluation function for one rule. The left
// operand is the string form of the record's column (empty when absent),
// the right operand the rule value. Ordering operators compare
// numerically when both operands coerce to numbers, lexicographically
// otherwise; the text operators always compare strings. A malformed rule
// never panics — it just matches nothing.
func Predicate(rule models.FilterRule) func(models.Record) bool {
	op := ParseOperator(rule.Op)

	return func(rec models.Record) bool {
		left := rec.Str(rule.Column)
		right := rule.Value
		if rule.CaseInsensitive {
			left = strings.ToLower(left)
			right = strings.ToLower(right)
		}

		leftNum, leftOK := coerceNumber(left)
		rightNum, rightOK := coerceNumber(right)
		numeric := leftOK && rightOK

		switch op {
		case OpContains:
			return strings.Contains(left, right)
		case OpEquals:
			return left == right
		case OpStarts:
			return strings.HasPrefix(left, right)
		case OpEnds:
			return strings.HasSuffix(left, right)
		case OpGt:
			if numeric {
				return leftNum > rightNum
			}
			return left > right
		case OpLt:
			if numeric {
				return leftNum < rightNum
			}
			return left < right
		case OpGte:
			if numeric {
				return leftNum >= rightNum
			}
			return left >= right
		case OpLte:
			if numeric {
				return leftNum <= rightNum
			}
			return left <= right
		case OpUnknown:
			return false
		default:
			return false
		}
	}
}

// ApplyFilters evaluates the rules against every record and returns the
// retained records in their original relative order. An empty rule set
// returns the input unchanged.
func ApplyFilters(records []models.Record, rules []models.FilterRule, mode Mode) []models.Record {
	if len(rules) == 0 {
		return records
	}

	preds := make([]func(models.Record) bool, len(rules))
	for i, r := range rules {
		preds[i] = Predicate(r)
	}

	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, preds, mode) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec models.Record, preds []func(models.Record) bool, mode Mode) bool {
	if mode == ModeOr {
		for _, p := range preds {
			if p(rec) {
				return true
			}
		}
		return false
	}
	for _, p := range preds {
		if !p(rec) {
			return false
		}
	}
	return true
}

// FilterByScore keeps matches whose score lies in [min, max].
func FilterByScore(matches []models.Match, min, max float64) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if s := float64(m.Score); s >= min && s <= max {
			out = append(out, m)
		}
	}
	return out
}

// signedFloatRegexp captures the leading, optionally negated numeric
// prefix of a stripped operand.
var signedFloatRegexp = regexp.MustCompile(`^-?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)`)

// coerceNumber attempts the fuzzy numeric coercion used by the ordering
// operators: strip to digits, "." and "-", then take the leading float.
func coerceNumber(s string) (float64, bool) {
	cleaned := comparableRegexp.ReplaceAllString(s, "")
	m := signedFloatRegexp.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
