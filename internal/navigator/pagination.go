package navigator

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/state"
)

// PaginationType selects how further pages of a directory are reached.
type PaginationType string

const (
	PaginationClassic  PaginationType = "pagination"
	PaginationLoadMore PaginationType = "load_more"
	PaginationAuto     PaginationType = "auto_load_more"
)

// ParsePaginationType maps a site or config value to a type. Anything
// unrecognized is classic pagination.
func ParsePaginationType(s string) PaginationType {
	switch PaginationType(strings.TrimSpace(s)) {
	case PaginationLoadMore:
		return PaginationLoadMore
	case PaginationAuto:
		return PaginationAuto
	default:
		return PaginationClassic
	}
}

// PaginationConfig is the site's pagination setting.
type PaginationConfig struct {
	Type PaginationType
	Size int
}

// PaginationFromSettings builds a config from the public site settings,
// letting non-empty local overrides win.
func PaginationFromSettings(settings *models.PublicSettings, typeOverride string, sizeOverride int) PaginationConfig {
	cfg := PaginationConfig{Type: PaginationClassic, Size: constants.DefaultPageSize}
	if settings != nil {
		cfg.Type = ParsePaginationType(settings.PaginationType)
		if n, err := strconv.Atoi(strings.TrimSpace(settings.DefaultPageSize)); err == nil && n > 0 {
			cfg.Size = n
		}
	}
	if typeOverride != "" {
		cfg.Type = ParsePaginationType(typeOverride)
	}
	if sizeOverride > 0 {
		cfg.Size = sizeOverride
	}
	return cfg
}

// ClampPageSize picks the page size for a list request: the explicit size,
// else (classic pagination only) the query hint, else the configured size,
// else constants.DefaultPageSize. The result lies in [MinPageSize, MaxPageSize].
func ClampPageSize(explicit, query int, cfg PaginationConfig) int {
	raw := explicit
	if raw <= 0 && cfg.Type == PaginationClassic {
		raw = query
	}
	if raw <= 0 {
		raw = cfg.Size
	}
	if raw <= 0 {
		raw = constants.DefaultPageSize
	}
	return lo.Clamp(raw, constants.MinPageSize, constants.MaxPageSize)
}

// Strategy is the pagination control attached to a folder view.
type Strategy interface {
	Type() PaginationType
}

// SelectStrategy returns the control for cfg.Type.
func SelectStrategy(cfg PaginationConfig, nav *Navigator) Strategy {
	switch cfg.Type {
	case PaginationLoadMore:
		return &LoadMoreButton{nav: nav}
	case PaginationAuto:
		return &AutoLoader{nav: nav}
	default:
		return &ClassicPager{nav: nav}
	}
}

// ClassicPager drives numbered pages through the page/per_page query hints.
type ClassicPager struct {
	nav *Navigator
}

func (p *ClassicPager) Type() PaginationType { return PaginationClassic }

// GoToPage shows page of the current directory, discarding any remembered
// view of that page first.
func (p *ClassicPager) GoToPage(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	path := p.nav.CurrentPath()
	p.nav.session.History.Clear(path, page)
	_, perPage := p.nav.Query()
	p.nav.SetQuery(page, perPage)
	p.nav.Navigate(ctx, path, NavigateOptions{Page: page})
}

// SetPageSize changes the page size and returns to page 1.
func (p *ClassicPager) SetPageSize(ctx context.Context, size int) {
	path := p.nav.CurrentPath()
	p.nav.session.History.Clear(path, 1)
	p.nav.SetQuery(1, size)
	p.nav.Navigate(ctx, path, NavigateOptions{Page: 1, PageSize: size})
}

// Current returns the page being shown.
func (p *ClassicPager) Current() int {
	page, _ := p.nav.listing.Page()
	return page
}

// PageCount returns the number of pages for the current total.
func (p *ClassicPager) PageCount() int {
	_, perPage := p.nav.listing.Page()
	if perPage <= 0 {
		perPage = p.nav.PageSize()
	}
	total := p.nav.listing.Total()
	if total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// SizeOptions returns the page sizes a user may pick.
func (p *ClassicPager) SizeOptions() []int {
	return lo.Filter(constants.PageSizeOptions, func(n int, _ int) bool {
		return n >= constants.MinPageSize && n <= constants.MaxPageSize
	})
}

// LoadMoreButton appends the next page on each click.
type LoadMoreButton struct {
	nav *Navigator
}

func (b *LoadMoreButton) Type() PaginationType { return PaginationLoadMore }

// Visible reports whether the button should be shown.
func (b *LoadMoreButton) Visible() bool {
	return !b.nav.AllLoaded()
}

// Loading reports whether an append is in flight.
func (b *LoadMoreButton) Loading() bool {
	return b.nav.listing.State() == state.FetchingMore
}

// Click loads one more page.
func (b *LoadMoreButton) Click(ctx context.Context) {
	b.nav.LoadMore(ctx)
}

// AutoLoader appends pages whenever a sentinel below the listing becomes
// visible, until everything is loaded.
type AutoLoader struct {
	nav *Navigator
}

func (a *AutoLoader) Type() PaginationType { return PaginationAuto }

// Observe consumes visibility changes of the sentinel. Every true value
// triggers LoadMore. It returns nil once all pages are loaded or the
// sentinel channel is closed, and ctx.Err() when ctx ends first.
func (a *AutoLoader) Observe(ctx context.Context, sentinel <-chan bool) error {
	if a.nav.AllLoaded() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case visible, ok := <-sentinel:
			if !ok {
				return nil
			}
			if !visible {
				continue
			}
			a.nav.LoadMore(ctx)
			if a.nav.AllLoaded() {
				return nil
			}
		}
	}
}
