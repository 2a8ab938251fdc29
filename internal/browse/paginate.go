package browse

import "github.com/nazbav/spoolshelf/internal/domain"

const (
	// DefaultPageSize is the number of cards per page.
	DefaultPageSize = 12
	// DefaultVisiblePageLinks is the width of the numbered window in the pagination bar.
	DefaultVisiblePageLinks = 5
)

// Paginate slices items into the requested page. The page is clamped into
// [1, TotalPages] and TotalPages is never below 1.
func Paginate[T any](items []T, pageSize, requestedPage int) ([]T, domain.PageState) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	current := min(max(requestedPage, 1), totalPages)

	state := domain.PageState{
		PageSize:    pageSize,
		CurrentPage: current,
		TotalItems:  total,
		TotalPages:  totalPages,
	}

	start := (current - 1) * pageSize
	if start >= total {
		return []T{}, state
	}
	end := min(start+pageSize, total)
	return items[start:end:end], state
}

// PageLinks builds the pagination bar for the given state: prev, an optional
// first page with ellipsis, a window of up to visible pages around the current
// one, an optional ellipsis with last page, and next. No bar is produced for a
// single page.
func PageLinks(current, totalPages, visible int) []domain.PageLink {
	if totalPages <= 1 {
		return nil
	}
	if visible <= 0 {
		visible = DefaultVisiblePageLinks
	}
	current = min(max(current, 1), totalPages)

	half := visible / 2
	start := max(1, current-half)
	end := min(totalPages, start+visible-1)
	start = max(1, end-visible+1)

	links := make([]domain.PageLink, 0, visible+6)
	links = append(links, domain.PageLink{
		Kind:     domain.PageLinkPrev,
		Page:     max(current-1, 1),
		Disabled: current == 1,
	})
	if start > 1 {
		links = append(links, domain.PageLink{Kind: domain.PageLinkNumber, Page: 1})
		if start > 2 {
			links = append(links, domain.PageLink{Kind: domain.PageLinkEllipsis})
		}
	}
	for p := start; p <= end; p++ {
		links = append(links, domain.PageLink{
			Kind:   domain.PageLinkNumber,
			Page:   p,
			Active: p == current,
		})
	}
	if end < totalPages {
		if end < totalPages-1 {
			links = append(links, domain.PageLink{Kind: domain.PageLinkEllipsis})
		}
		links = append(links, domain.PageLink{Kind: domain.PageLinkNumber, Page: totalPages})
	}
	links = append(links, domain.PageLink{
		Kind:     domain.PageLinkNext,
		Page:     min(current+1, totalPages),
		Disabled: current == totalPages,
	})
	return links
}
