// Package paging walks paginated API collections.
package paging

import (
	"context"
	"iter"
)

// Page is one page of a paginated collection. Next is empty on the last page.
type Page[T any] struct {
	Items []T
	Next  string
}

// Fetch returns the page starting at cursor; the empty cursor is the first page.
type Fetch[T any] func(ctx context.Context, cursor string) (Page[T], error)

// All yields every item across all pages. Each range over the returned
// sequence starts again from the first page. A fetch error is yielded once
// and ends the sequence.
func All[T any](ctx context.Context, fetch Fetch[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		cursor := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			if page.Next == "" || page.Next == cursor {
				return
			}
			cursor = page.Next
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
