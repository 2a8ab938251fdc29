package prices

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Marketplace describes how to find the first search hit and its price on a
// storefront search page.
type Marketplace struct {
	Name string
	// SearchURL holds a single %s verb that receives the escaped query.
	SearchURL string
	// Origin prefixes relative product links.
	Origin        string
	LinkSelector  string
	PriceSelector string
	// Scale converts the listed price to rubles.
	Scale float64
}

// DefaultMarketplaces are the storefronts queried by default.
var DefaultMarketplaces = []Marketplace{
	{
		Name:          "ozon",
		SearchURL:     "https://www.ozon.ru/search/?text=%s",
		Origin:        "https://ozon.ru",
		LinkSelector:  "a[href*='/product/']",
		PriceSelector: "span[class*='price']",
		Scale:         1,
	},
	{
		Name:          "wb",
		SearchURL:     "https://www.wildberries.ru/catalog/0/search.aspx?search=%s",
		Origin:        "https://www.wildberries.ru",
		LinkSelector:  "a.product-card__main",
		PriceSelector: "ins.price__lower-price",
		Scale:         1,
	},
	{
		Name:          "aliexpress",
		SearchURL:     "https://www.aliexpress.com/wholesale?SearchText=%s",
		Origin:        "https:",
		LinkSelector:  "a[href*='/item/']",
		PriceSelector: "div[class*=manhattan--price]",
		Scale:         90,
	},
}

func (m Marketplace) searchURL(query string) string {
	return fmt.Sprintf(m.SearchURL, url.QueryEscape(query))
}

// extract reads the first product hit from a parsed search page.
func (m Marketplace) extract(doc *goquery.Document) (*Quote, error) {
	item := doc.Find(m.LinkSelector).First()
	if item.Length() == 0 {
		return nil, ErrNoResult
	}
	href := strings.TrimSpace(item.AttrOr("href", ""))
	if href == "" {
		return nil, ErrNoResult
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		href = m.Origin + href
	}
	quote := &Quote{URL: href}
	if text := item.Find(m.PriceSelector).First().Text(); text != "" {
		if v, ok := parsePrice(text, m.Scale); ok {
			quote.Value = &v
		}
	}
	return quote, nil
}

// parsePrice reads "1 290 ₽", "$12,50" or "$1,299.00" style labels. A comma
// is the decimal mark only when it is the sole separator; next to a dot, or
// repeated, commas group thousands.
func parsePrice(text string, scale float64) (float64, bool) {
	decimalComma := !strings.Contains(text, ".") && strings.Count(text, ",") == 1
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		case r == ',' && decimalComma:
			return '.'
		default:
			return -1
		}
	}, text)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if scale <= 0 {
		scale = 1
	}
	return float64(int64(v*scale + 0.5)), true
}
