package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/domain"
)

const (
	// UntitledName is used when a record carries neither a name nor a manufacturer.
	UntitledName = "Без названия"
	// DefaultMaterial is used when a record carries no type.
	DefaultMaterial = "PLA"

	maxDatasetSize = 32 << 20
)

// SynthesisMode controls how missing prices and ratings are filled in.
type SynthesisMode string

const (
	// SynthesisOmit leaves absent prices and ratings absent.
	SynthesisOmit SynthesisMode = "omit"
	// SynthesisSeeded fills absent prices and ratings with reproducible pseudo-random values.
	SynthesisSeeded SynthesisMode = "seeded"
)

// SynthesisPolicy configures placeholder generation for absent prices and ratings.
type SynthesisPolicy struct {
	Mode SynthesisMode
	Seed uint64
}

// Options customise how a dataset is turned into a Store.
type Options struct {
	Synthesis SynthesisPolicy
	// PriceOverrides supplies prices for records whose dataset entry has none.
	PriceOverrides map[int]float64
	Logger         *zap.Logger
	HTTPClient     *http.Client
}

type rawDataset struct {
	Filaments []rawFilament `json:"filaments"`
}

type rawFilament struct {
	ID                 *json.Number          `json:"id"`
	Name               string                `json:"name"`
	Manufacturer       string                `json:"manufacturer"`
	Brand              string                `json:"brand"`
	Type               string                `json:"type"`
	Weight             domain.Weight         `json:"weight"`
	WeightG            *float64              `json:"weight_g"`
	Price              *float64              `json:"price"`
	Rating             *float64              `json:"rating"`
	Links              []rawLink             `json:"links"`
	PrintProfiles      []domain.PrintProfile `json:"printProfiles"`
	DiameterMM         *float64              `json:"diameter_mm"`
	WidthMM            *float64              `json:"width_mm"`
	InnerDiameterMM    *float64              `json:"inner_diameter_mm"`
	FilamentDiameterMM *float64              `json:"filament_diameter_mm"`
	Notes              string                `json:"notes"`
}

type rawLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// LoadFile reads the dataset once from a local path or an http(s) URL.
func LoadFile(ctx context.Context, location string, opts Options) (*Store, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: dataset location is empty", ErrUnavailable)
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return loadRemote(ctx, location, opts)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()
	return Decode(f, opts)
}

func loadRemote(ctx context.Context, endpoint string, opts Options) (*Store, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: remote status %d", ErrUnavailable, resp.StatusCode)
	}
	return Decode(resp.Body, opts)
}

// Decode parses a dataset that is either a top-level array of records or an
// object wrapping them under "filaments".
func Decode(r io.Reader, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := io.ReadAll(io.LimitReader(r, maxDatasetSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\ufeff")))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrUnavailable)
	}

	var raws []rawFilament
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	case '{':
		var wrapped rawDataset
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		raws = wrapped.Filaments
	default:
		return nil, fmt.Errorf("%w: dataset must be a JSON array or object", ErrUnavailable)
	}

	synth := newSynthesizer(opts.Synthesis)
	items := make([]domain.Filament, 0, len(raws))
	seen := make(map[int]struct{}, len(raws))
	for i, raw := range raws {
		f, ok := normalize(raw, synth, opts.PriceOverrides)
		if !ok {
			logger.Warn("skipping record without numeric id", zap.Int("index", i))
			continue
		}
		if _, dup := seen[f.ID]; dup {
			logger.Warn("duplicate filament id, keeping first", zap.Int("id", f.ID), zap.Int("index", i))
			continue
		}
		seen[f.ID] = struct{}{}
		if len(f.Defaulted) > 0 {
			logger.Debug("filled missing fields", zap.Int("id", f.ID), zap.Strings("fields", f.Defaulted))
		}
		items = append(items, f)
	}

	logger.Info("catalog loaded", zap.Int("records", len(items)), zap.Int("skipped", len(raws)-len(items)))
	return NewStore(items), nil
}

func normalize(raw rawFilament, synth *synthesizer, overrides map[int]float64) (domain.Filament, bool) {
	if raw.ID == nil {
		return domain.Filament{}, false
	}
	id, err := raw.ID.Int64()
	if err != nil {
		return domain.Filament{}, false
	}

	f := domain.Filament{
		ID:                 int(id),
		Name:               strings.TrimSpace(raw.Name),
		Manufacturer:       firstNonEmpty(raw.Manufacturer, raw.Brand),
		Type:               strings.TrimSpace(raw.Type),
		Weight:             raw.Weight,
		SpoolWeightG:       positive(raw.WeightG),
		SpoolDiameterMM:    positive(raw.DiameterMM),
		SpoolWidthMM:       positive(raw.WidthMM),
		InnerDiameterMM:    positive(raw.InnerDiameterMM),
		FilamentDiameterMM: positive(raw.FilamentDiameterMM),
		Notes:              strings.TrimSpace(raw.Notes),
		Profiles:           raw.PrintProfiles,
	}

	if f.Name == "" {
		f.Name = firstNonEmpty(f.Manufacturer, UntitledName)
		f.Defaulted = append(f.Defaulted, "name")
	}
	if f.Type == "" {
		f.Type = DefaultMaterial
		f.Defaulted = append(f.Defaulted, "type")
	}
	f.Price = positive(raw.Price)
	if f.Price == nil {
		if v, ok := overrides[f.ID]; ok && v > 0 {
			f.Price = &v
			f.Defaulted = append(f.Defaulted, "price")
		} else if v, ok := synth.price(); ok {
			f.Price = &v
			f.Defaulted = append(f.Defaulted, "price")
		}
	}

	f.Rating = clampRating(raw.Rating)
	if f.Rating == nil {
		if v, ok := synth.rating(); ok {
			f.Rating = &v
			f.Defaulted = append(f.Defaulted, "rating")
		}
	}

	for _, l := range raw.Links {
		url := strings.TrimSpace(l.URL)
		if url == "" {
			continue
		}
		f.Links = append(f.Links, domain.Link{Type: domain.NormalizeLinkType(l.Type), URL: url})
	}
	return f, true
}

type synthesizer struct {
	rng *rand.Rand
}

func newSynthesizer(policy SynthesisPolicy) *synthesizer {
	if policy.Mode != SynthesisSeeded {
		return &synthesizer{}
	}
	return &synthesizer{rng: rand.New(rand.NewPCG(policy.Seed, policy.Seed^0x9e3779b97f4a7c15))}
}

// price mirrors the placeholder range of the demo data: 500–2500 ₽.
func (s *synthesizer) price() (float64, bool) {
	if s == nil || s.rng == nil {
		return 0, false
	}
	return math.Round(s.rng.Float64()*2000 + 500), true
}

// rating mirrors the placeholder range of the demo data: 3.0–5.0, one decimal.
func (s *synthesizer) rating() (float64, bool) {
	if s == nil || s.rng == nil {
		return 0, false
	}
	return math.Round((s.rng.Float64()*2+3)*10) / 10, true
}

func clampRating(v *float64) *float64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) {
		return nil
	}
	r := math.Min(*v, 5)
	return &r
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) {
		return nil
	}
	out := *v
	return &out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
