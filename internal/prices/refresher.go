// Package prices looks filaments up on marketplace search pages and records
// the first hit's price and link.
package prices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nazbav/spoolshelf/internal/domain"
)

// ErrNoResult indicates a search page carried no product hit.
var ErrNoResult = errors.New("prices: no search result")

var errWaitAborted = errors.New("prices: throttle wait aborted")

const maxPageSize = 8 << 20

// Options configure a Refresher.
type Options struct {
	// Interval is the minimum spacing between requests to one marketplace.
	Interval     time.Duration
	Concurrency  int
	Timeout      time.Duration
	UserAgent    string
	Client       *http.Client
	Marketplaces []Marketplace
	Logger       *zap.Logger
}

// Refresher queries marketplaces for every filament.
type Refresher struct {
	client       *http.Client
	interval     time.Duration
	limitersMu   sync.Mutex
	limiters     map[string]*rate.Limiter
	concurrency  int
	timeout      time.Duration
	userAgent    string
	marketplaces []Marketplace
	logger       *zap.Logger
}

// NewRefresher builds a refresher with defaults for zero options.
func NewRefresher(opts Options) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Marketplaces == nil {
		opts.Marketplaces = DefaultMarketplaces
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Refresher{
		client:       opts.Client,
		interval:     opts.Interval,
		limiters:     make(map[string]*rate.Limiter),
		concurrency:  opts.Concurrency,
		timeout:      opts.Timeout,
		userAgent:    opts.UserAgent,
		marketplaces: opts.Marketplaces,
		logger:       opts.Logger,
	}
}

// SearchQuery builds the marketplace query for a filament: manufacturer, type and grams.
func SearchQuery(f domain.Filament) string {
	parts := []string{f.Manufacturer, f.Type}
	switch {
	case f.SpoolWeightG != nil:
		parts = append(parts, strconv.FormatFloat(*f.SpoolWeightG, 'f', -1, 64)+"г")
	case f.Weight.Numeric:
		parts = append(parts, strconv.FormatFloat(f.Weight.Grams, 'f', -1, 64)+"г")
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Refresh looks every filament up on every marketplace. Failed lookups are
// logged and recorded as nil quotes; only cancellation aborts the run.
func (r *Refresher) Refresh(ctx context.Context, items []domain.Filament) (Table, error) {
	table := make(Table, len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, f := range items {
		g.Go(func() error {
			query := SearchQuery(f)
			entry := make(Entry, len(r.marketplaces))
			for _, m := range r.marketplaces {
				quote, err := r.Lookup(gctx, m, query)
				if err != nil {
					if gctx.Err() != nil || errors.Is(err, errWaitAborted) {
						return err
					}
					level := r.logger.Warn
					if errors.Is(err, ErrNoResult) {
						level = r.logger.Debug
					}
					level("price lookup failed",
						zap.Int("id", f.ID),
						zap.String("marketplace", m.Name),
						zap.String("query", query),
						zap.Error(err))
				}
				entry[m.Name] = quote
			}
			mu.Lock()
			table[f.ID] = entry
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return table, err
	}
	r.logger.Info("prices refreshed", zap.Int("filaments", len(table)))
	return table, nil
}

// limiterFor returns the throttle of one marketplace, creating it on first use.
func (r *Refresher) limiterFor(name string) *rate.Limiter {
	r.limitersMu.Lock()
	defer r.limitersMu.Unlock()
	l, ok := r.limiters[name]
	if !ok {
		l = rate.NewLimiter(rate.Every(r.interval), 1)
		r.limiters[name] = l
	}
	return l
}

// Lookup fetches one search page and extracts the first hit.
func (r *Refresher) Lookup(ctx context.Context, m Marketplace, query string) (*Quote, error) {
	if err := r.limiterFor(m.Name).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", errWaitAborted, err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.searchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("prices: build %s request: %w", m.Name, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prices: %s request: %w", m.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("prices: %s responded %d", m.Name, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("prices: parse %s page: %w", m.Name, err)
	}
	return m.extract(doc)
}
