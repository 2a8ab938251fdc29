// Package guides serves per-material printing guides written in markdown.
package guides

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed content/*.md
var embedded embed.FS

// ErrNotFound indicates no guide exists for the slug.
var ErrNotFound = errors.New("guides: not found")

const (
	defaultCacheTTL = 5 * time.Minute
	metricNamespace = "github.com/nazbav/spoolshelf/internal/guides"
)

// Guide is a rendered material guide.
type Guide struct {
	Slug     string
	Title    string
	Material string
	Summary  string
	Hints    Hints
	Profiles []ProfileLink
	HTML     template.HTML
}

// ProfileLink points at a downloadable slicer profile.
type ProfileLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type frontMatter struct {
	Title    string        `yaml:"title"`
	Material string        `yaml:"material"`
	Summary  string        `yaml:"summary"`
	Profiles []ProfileLink `yaml:"profiles"`
}

// Options configure a Library.
type Options struct {
	// OverrideDir holds markdown files that take precedence over the built-in guides.
	OverrideDir string
	CacheTTL    time.Duration
	Clock       func() time.Time
	// Meter records cache lookups and render latency. Defaults to the global provider.
	Meter metric.Meter
}

type cacheEntry struct {
	guide   Guide
	expires time.Time
}

// Library loads, renders and caches guides.
type Library struct {
	sources []fs.FS
	ttl     time.Duration
	clock   func() time.Time
	md      goldmark.Markdown
	policy  *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry

	lookups       metric.Int64Counter
	renderLatency metric.Float64Histogram
}

// NewLibrary builds a library over the embedded guides and an optional override directory.
func NewLibrary(opts Options) *Library {
	sources := make([]fs.FS, 0, 2)
	if dir := strings.TrimSpace(opts.OverrideDir); dir != "" {
		sources = append(sources, os.DirFS(dir))
	}
	content, _ := fs.Sub(embedded, "content")
	sources = append(sources, content)
	return newLibrary(sources, opts)
}

func newLibrary(sources []fs.FS, opts Options) *Library {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	lookups, err := meter.Int64Counter(
		"guides.cache.lookups",
		metric.WithDescription("Guide lookups by cache outcome"),
	)
	if err != nil {
		lookups = nil
	}
	renderLatency, err := meter.Float64Histogram(
		"guides.render.latency",
		metric.WithDescription("Markdown rendering latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		renderLatency = nil
	}
	return &Library{
		sources:       sources,
		ttl:           ttl,
		clock:         clock,
		md:            goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:        newGuideHTMLPolicy(),
		cache:         make(map[string]cacheEntry),
		lookups:       lookups,
		renderLatency: renderLatency,
	}
}

func newGuideHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "table")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Get returns the guide for slug, e.g. "pla".
func (l *Library) Get(ctx context.Context, slug string) (Guide, error) {
	slug = SlugFor(slug)
	if slug == "" {
		return Guide{}, ErrNotFound
	}
	if g, ok := l.cached(slug); ok {
		l.recordLookup(ctx, "hit")
		return g, nil
	}
	if err := ctx.Err(); err != nil {
		return Guide{}, err
	}
	started := time.Now()
	g, err := l.load(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.recordLookup(ctx, "not_found")
		}
		return Guide{}, err
	}
	l.recordLookup(ctx, "miss")
	if l.renderLatency != nil {
		l.renderLatency.Record(ctx, float64(time.Since(started))/float64(time.Millisecond),
			metric.WithAttributes(attribute.String("slug", slug)))
	}
	l.store(slug, g)
	return cloneGuide(g), nil
}

// List returns every available guide ordered by title.
func (l *Library) List(ctx context.Context) ([]Guide, error) {
	var slugs []string
	for _, src := range l.sources {
		matches, err := fs.Glob(src, "*.md")
		if err != nil {
			continue
		}
		for _, m := range matches {
			slug := strings.TrimSuffix(path.Base(m), ".md")
			if !slices.Contains(slugs, slug) {
				slugs = append(slugs, slug)
			}
		}
	}
	out := make([]Guide, 0, len(slugs))
	for _, slug := range slugs {
		g, err := l.Get(ctx, slug)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, g)
	}
	col := collate.New(language.Russian)
	slices.SortFunc(out, func(a, b Guide) int { return col.CompareString(a.Title, b.Title) })
	return out, nil
}

// Has reports whether a guide exists for material without rendering it.
func (l *Library) Has(material string) bool {
	slug := SlugFor(material)
	if slug == "" {
		return false
	}
	for _, src := range l.sources {
		if _, err := fs.Stat(src, slug+".md"); err == nil {
			return true
		}
	}
	return false
}

// SlugFor maps a material name onto a guide slug: "PLA+" becomes "pla-plus".
func SlugFor(material string) string {
	material = strings.ToLower(strings.TrimSpace(material))
	var sb strings.Builder
	for _, r := range material {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+':
			sb.WriteString("-plus")
		case r == '-' || r == '_' || r == ' ':
			sb.WriteByte('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}

func (l *Library) load(slug string) (Guide, error) {
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, slug+".md")
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Guide{}, fmt.Errorf("guides: read %s: %w", slug, err)
		}
		return l.render(slug, data)
	}
	return Guide{}, ErrNotFound
}

func (l *Library) render(slug string, data []byte) (Guide, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Guide{}, fmt.Errorf("guides: parse front matter %s: %w", slug, err)
		}
	}
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Guide{}, fmt.Errorf("guides: render %s: %w", slug, err)
	}
	material := firstNonEmpty(front.Material, strings.ToUpper(slug))
	profiles := make([]ProfileLink, 0, len(front.Profiles))
	for _, p := range front.Profiles {
		if strings.HasPrefix(p.URL, "https://") || strings.HasPrefix(p.URL, "http://") {
			profiles = append(profiles, ProfileLink{Name: strings.TrimSpace(p.Name), URL: p.URL})
		}
	}
	return Guide{
		Slug:     slug,
		Title:    firstNonEmpty(front.Title, material),
		Material: material,
		Summary:  strings.TrimSpace(front.Summary),
		Hints:    HintsFor(material),
		Profiles: profiles,
		HTML:     template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
	}, nil
}

func (l *Library) recordLookup(ctx context.Context, outcome string) {
	if l.lookups == nil {
		return
	}
	l.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (l *Library) cached(slug string) (Guide, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.cache[slug]
	if !ok || l.clock().After(entry.expires) {
		return Guide{}, false
	}
	return cloneGuide(entry.guide), true
}

func (l *Library) store(slug string, g Guide) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[slug] = cacheEntry{guide: g, expires: l.clock().Add(l.ttl)}
}

func cloneGuide(g Guide) Guide {
	g.Profiles = slices.Clone(g.Profiles)
	g.Hints.Slicers = slices.Clone(g.Hints.Slicers)
	return g
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
