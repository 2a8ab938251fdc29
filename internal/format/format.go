// Package format renders catalog values for the Russian-language views.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nazbav/spoolshelf/internal/domain"
)

// Placeholder is shown for values the dataset does not carry.
const Placeholder = "-"

// nbsp keeps digit groups and units on one line.
const nbsp = "\u00a0"

// Star is one position of a five-star rating bar.
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// Price formats a price in roubles. Digit groups are separated by non-breaking spaces.
func Price(p *float64) string {
	if p == nil || *p <= 0 {
		return Placeholder
	}
	return thousandSep(int64(math.Round(*p))) + nbsp + "₽"
}

func thousandSep(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Rating formats a rating with one decimal place, or Placeholder when absent.
func Rating(r *float64) string {
	if r == nil || *r <= 0 {
		return Placeholder
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

// Stars lays a rating out over five positions. A fractional part of at least
// one half renders as a half star.
func Stars(r *float64) []Star {
	stars := make([]Star, 5)
	value := 0.0
	if r != nil {
		value = *r
	}
	full := int(math.Floor(value))
	half := value-math.Floor(value) >= 0.5
	for i := range stars {
		switch {
		case i < full:
			stars[i] = StarFull
		case i == full && half:
			stars[i] = StarHalf
		default:
			stars[i] = StarEmpty
		}
	}
	return stars
}

// Weight renders numeric weights in grams or kilograms and keeps text weights as written.
func Weight(w domain.Weight) string {
	if !w.Present() {
		return Placeholder
	}
	if !w.Numeric || w.Raw != strconv.FormatFloat(w.Grams, 'f', -1, 64) {
		return w.Raw
	}
	if w.Grams >= 1000 {
		kg := strconv.FormatFloat(w.Grams/1000, 'f', -1, 64)
		return strings.Replace(kg, ".", ",", 1) + nbsp + "кг"
	}
	return strconv.FormatFloat(w.Grams, 'f', -1, 64) + nbsp + "г"
}

// Millimetres renders a length in millimetres.
func Millimetres(v *float64) string {
	if v == nil || *v <= 0 {
		return Placeholder
	}
	return strings.Replace(strconv.FormatFloat(*v, 'f', -1, 64), ".", ",", 1) + nbsp + "мм"
}

// Grams renders a mass in grams.
func Grams(v *float64) string {
	if v == nil || *v <= 0 {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + nbsp + "г"
}

// DateTime formats a timestamp the way ru-RU locales show it.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("02.01.2006 15:04")
}

// LinkLabel names a marketplace link for display.
func LinkLabel(t domain.LinkType) string {
	switch t {
	case domain.LinkOzon:
		return "Ozon"
	case domain.LinkWildberries:
		return "Wildberries"
	case domain.LinkAli:
		return "AliExpress"
	case domain.LinkWebsite:
		return "Сайт производителя"
	default:
		return "Магазин"
	}
}

// WeightBucketLabel names a weight filter range.
func WeightBucketLabel(b domain.WeightBucket) string {
	switch b {
	case domain.WeightUpTo500:
		return "до 0,5 кг"
	case domain.WeightUpTo750:
		return "до 0,75 кг"
	case domain.WeightUpTo1000:
		return "до 1 кг"
	case domain.WeightOver1000:
		return "более 1 кг"
	default:
		return string(b)
	}
}

// SortLabel names a sort key.
func SortLabel(k domain.SortKey) string {
	switch k {
	case domain.SortNameAsc:
		return "По названию (А-Я)"
	case domain.SortNameDesc:
		return "По названию (Я-А)"
	case domain.SortPriceAsc:
		return "Сначала дешевле"
	case domain.SortPriceDesc:
		return "Сначала дороже"
	case domain.SortRatingAsc:
		return "Рейтинг по возрастанию"
	case domain.SortRatingDesc:
		return "Сначала с высоким рейтингом"
	default:
		return string(k)
	}
}
