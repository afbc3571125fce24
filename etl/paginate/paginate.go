// Package paginate walks paged listings behind a small interface
// so the scrapers don't each reimplement the stop conditions.
package paginate

import (
	"context"
	"fmt"
)

// Source yields one page of rows at a time. Page returns the rows
// of the current page and an opaque token for the next page, empty
// when this is the last one. Advance moves the source to the page
// the token names.
type Source[T any] interface {
	Page(ctx context.Context) (rows []T, next string, err error)
	Advance(ctx context.Context, token string) error
}

type Options struct {
	// hard page bound, 0 means DefaultMaxPages
	MaxPages int
}

// DefaultMaxPages bounds a walk when the caller doesn't. The
// upcoming events listing has never exceeded a handful of pages,
// anything past this is a paging loop.
const DefaultMaxPages = 20

// Walk collects every row the source yields. It stops when the
// source reports no next page, when a page token repeats, or at
// the page bound. A page fetch error returns the rows collected
// so far along with the error.
func Walk[T any](ctx context.Context, src Source[T], opts Options) ([]T, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var out []T
	seen := map[string]bool{}

	for page := 1; ; page++ {
		rows, next, err := src.Page(ctx)
		out = append(out, rows...)
		if err != nil {
			return out, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if next == "" {
			return out, nil
		}
		if seen[next] {
			return out, nil
		}
		seen[next] = true

		if page >= maxPages {
			return out, nil
		}

		err = src.Advance(ctx, next)
		if err != nil {
			return out, fmt.Errorf("advance to page %d: %w", page+1, err)
		}
	}
}
