package browse

import (
	"slices"
	"strings"

	"github.com/nazbav/spoolshelf/internal/domain"
)

// Matches reports whether the filament satisfies every active constraint of the selection.
// A record missing a field required by an active constraint never matches.
func Matches(f domain.Filament, sel domain.Selection) bool {
	return matchesQuery(f, sel.Query) &&
		matchesSet(f.Type, sel.Materials) &&
		matchesSet(f.Manufacturer, sel.Manufacturers) &&
		matchesWeight(f.Weight, sel.Weights) &&
		matchesRating(f.Rating, sel.MinRating)
}

// Filter returns the records matching sel, preserving input order.
func Filter(items []domain.Filament, sel domain.Selection) []domain.Filament {
	out := make([]domain.Filament, 0, len(items))
	for _, f := range items {
		if Matches(f, sel) {
			out = append(out, f)
		}
	}
	return out
}

func matchesQuery(f domain.Filament, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return containsFold(f.Name, q) || containsFold(f.Manufacturer, q)
}

func containsFold(value, lowerQuery string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), lowerQuery)
}

func isWildcard(values []string) bool {
	return len(values) == 0 || slices.Contains(values, domain.Wildcard)
}

func matchesSet(value string, allowed []string) bool {
	if isWildcard(allowed) {
		return true
	}
	if value == "" {
		return false
	}
	return slices.Contains(allowed, value)
}

func matchesWeight(w domain.Weight, buckets []domain.WeightBucket) bool {
	active := make([]domain.WeightBucket, 0, len(buckets))
	for _, b := range buckets {
		if string(b) == domain.Wildcard {
			return true
		}
		if b.Valid() {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		return true
	}
	if !w.Present() {
		return false
	}
	if w.Numeric {
		return slices.Contains(active, BucketFor(w.Grams))
	}
	for _, b := range active {
		if textMatchesBucket(w.Raw, b) {
			return true
		}
	}
	return false
}

// BucketFor maps a weight in grams onto its bucket.
func BucketFor(grams float64) domain.WeightBucket {
	switch {
	case grams <= 500:
		return domain.WeightUpTo500
	case grams <= 750:
		return domain.WeightUpTo750
	case grams <= 1000:
		return domain.WeightUpTo1000
	default:
		return domain.WeightOver1000
	}
}

// textMatchesBucket is the loose fallback for weights that carry no leading number,
// e.g. "катушка 750 г". It only looks for the canonical gram values.
func textMatchesBucket(raw string, b domain.WeightBucket) bool {
	switch b {
	case domain.WeightUpTo500:
		return strings.Contains(raw, "500")
	case domain.WeightUpTo750:
		return strings.Contains(raw, "750")
	case domain.WeightUpTo1000:
		return strings.Contains(raw, "1000")
	case domain.WeightOver1000:
		return strings.Contains(raw, "2000") || strings.Contains(raw, "2500")
	default:
		return false
	}
}

func matchesRating(rating *float64, minRating int) bool {
	if minRating <= 0 {
		return true
	}
	return rating != nil && *rating >= float64(minRating)
}
