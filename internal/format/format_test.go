package format

import (
	"testing"
	"time"

	"github.com/nazbav/spoolshelf/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestPrice(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, Placeholder},
		{ptr(0), Placeholder},
		{ptr(990), "990\u00a0₽"},
		{ptr(1290.4), "1\u00a0290\u00a0₽"},
		{ptr(1234567), "1\u00a0234\u00a0567\u00a0₽"},
	}
	for _, tc := range cases {
		if got := Price(tc.in); got != tc.want {
			t.Fatalf("Price(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRatingAndStars(t *testing.T) {
	if got := Rating(ptr(4)); got != "4.0" {
		t.Fatalf("Rating(4) = %q", got)
	}
	if got := Rating(nil); got != Placeholder {
		t.Fatalf("Rating(nil) = %q", got)
	}

	got := Stars(ptr(3.5))
	want := []Star{StarFull, StarFull, StarFull, StarHalf, StarEmpty}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Stars(3.5)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	for i, s := range Stars(nil) {
		if s != StarEmpty {
			t.Fatalf("Stars(nil)[%d] = %s", i, s)
		}
	}
}

func TestWeight(t *testing.T) {
	cases := []struct {
		in   domain.Weight
		want string
	}{
		{domain.Weight{}, Placeholder},
		{domain.WeightFromGrams(750), "750\u00a0г"},
		{domain.WeightFromGrams(1000), "1\u00a0кг"},
		{domain.WeightFromGrams(2500), "2,5\u00a0кг"},
		{domain.ParseWeight("1 кг"), "1 кг"},
	}
	for _, tc := range cases {
		if got := Weight(tc.in); got != tc.want {
			t.Fatalf("Weight(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)
	if got := DateTime(ts); got != "07.03.2024 09:05" {
		t.Fatalf("DateTime = %q", got)
	}
	if got := DateTime(time.Time{}); got != Placeholder {
		t.Fatalf("zero DateTime = %q", got)
	}
}

func TestLabels(t *testing.T) {
	for _, k := range domain.SortKeys {
		if SortLabel(k) == string(k) {
			t.Fatalf("missing label for sort %s", k)
		}
	}
	for _, b := range domain.WeightBuckets {
		if WeightBucketLabel(b) == string(b) {
			t.Fatalf("missing label for bucket %s", b)
		}
	}
	if LinkLabel(domain.NormalizeLinkType("wb")) != "Wildberries" {
		t.Fatalf("wb should normalize to Wildberries")
	}
}
