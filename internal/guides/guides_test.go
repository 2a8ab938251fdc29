package guides

import (
	"context"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestHintsFor(t *testing.T) {
	pla := HintsFor("pla")
	require.Len(t, pla.Slicers, 2)
	assert.Equal(t, "PrusaSlicer", pla.Slicers[0].Slicer)
	assert.Equal(t, "190-210°C", pla.Slicers[0].NozzleTemp)
	assert.Equal(t, "55-65°C", pla.Slicers[1].BedTemp)
	assert.Equal(t, "80-100%", pla.Slicers[0].Cooling)

	abs := HintsFor("ABS")
	assert.Equal(t, "Отключено или 0-20%", abs.Slicers[1].Cooling)
	assert.Equal(t, "95-115°C", abs.Slicers[1].BedTemp)

	nylon := HintsFor("Nylon")
	assert.Equal(t, "200-230°C", nylon.Slicers[0].NozzleTemp)
	assert.Equal(t, "40-60 мм/с", nylon.Slicers[0].Speed)
}

func TestSlugFor(t *testing.T) {
	assert.Equal(t, "pla", SlugFor(" PLA "))
	assert.Equal(t, "pla-plus", SlugFor("PLA+"))
	assert.Equal(t, "silk-pla", SlugFor("Silk PLA"))
	assert.Equal(t, "etc", SlugFor("../../etc/"))
	assert.Equal(t, "", SlugFor("!!!"))
}

func TestEmbeddedGuides(t *testing.T) {
	lib := NewLibrary(Options{})
	g, err := lib.Get(context.Background(), "PETG")
	require.NoError(t, err)
	assert.Equal(t, "PETG", g.Title)
	assert.Equal(t, "235-255°C", g.Hints.Slicers[1].NozzleTemp)
	require.Len(t, g.Profiles, 1)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(g.HTML)))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("h2").Length())

	all, err := lib.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, lib.Has("abs"))
	assert.False(t, lib.Has("wood"))
}

func TestGuideSanitizesAndOverrides(t *testing.T) {
	override := fstest.MapFS{
		"pla.md": {Data: []byte("---\ntitle: Свой PLA\nprofiles:\n  - name: bad\n    url: javascript:alert(1)\n---\n# Заголовок\n\n<script>alert(1)</script>\n\n[ссылка](https://example.com)\n")},
	}
	base := fstest.MapFS{"pla.md": {Data: []byte("# base")}}
	lib := newLibrary([]fs.FS{override, base}, Options{})

	g, err := lib.Get(context.Background(), "pla")
	require.NoError(t, err)
	assert.Equal(t, "Свой PLA", g.Title)
	assert.Equal(t, "PLA", g.Material)
	assert.Empty(t, g.Profiles)
	assert.NotContains(t, string(g.HTML), "<script")
	assert.Contains(t, string(g.HTML), `rel="nofollow"`)
}

func TestGuideCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := fstest.MapFS{"pla.md": {Data: []byte("first")}}
	lib := newLibrary([]fs.FS{src}, Options{CacheTTL: time.Minute, Clock: func() time.Time { return now }})

	g, err := lib.Get(context.Background(), "pla")
	require.NoError(t, err)
	assert.Contains(t, string(g.HTML), "first")

	src["pla.md"] = &fstest.MapFile{Data: []byte("second")}
	g, _ = lib.Get(context.Background(), "pla")
	assert.Contains(t, string(g.HTML), "first")

	now = now.Add(2 * time.Minute)
	g, _ = lib.Get(context.Background(), "pla")
	assert.Contains(t, string(g.HTML), "second")
}

func TestGetUnknown(t *testing.T) {
	lib := NewLibrary(Options{})
	_, err := lib.Get(context.Background(), "wood")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = lib.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingCounter struct {
	noop.Int64Counter
	mu       sync.Mutex
	outcomes []string
}

func (c *countingCounter) Add(_ context.Context, _ int64, opts ...metric.AddOption) {
	cfg := metric.NewAddConfig(opts)
	attrs := cfg.Attributes()
	v, _ := attrs.Value("outcome")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, v.AsString())
}

type countingMeter struct {
	noop.Meter
	counter *countingCounter
}

func (m countingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return m.counter, nil
}

func TestGuideLookupsAreCounted(t *testing.T) {
	counter := &countingCounter{}
	src := fstest.MapFS{"pla.md": {Data: []byte("# PLA")}}
	lib := newLibrary([]fs.FS{src}, Options{Meter: countingMeter{counter: counter}})

	_, err := lib.Get(context.Background(), "pla")
	require.NoError(t, err)
	_, err = lib.Get(context.Background(), "pla")
	require.NoError(t, err)
	_, err = lib.Get(context.Background(), "nylon")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"miss", "hit", "not_found"}, counter.outcomes)
}
