// Package paging accumulates an offset-paginated backend resource page by
// page, the way the feed and tracker lists scroll.
package paging

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// FetchFunc loads one page
type FetchFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// List holds the accumulated pages of one resource. At most one fetch is in
// flight at a time; a Reset supersedes whatever was loading before it.
type List[T any] struct {
	name     string
	pageSize int
	fetch    FetchFunc[T]
	onError  func(error)

	mu          sync.Mutex
	items       []T
	hasMore     bool
	loading     bool // first page after a reset
	loadingMore bool
	generation  uint64
	requests    int
	closed      bool
}

// New builds a list; onError is called once per failed fetch and may be nil
func New[T any](name string, pageSize int, fetch FetchFunc[T], onError func(error)) *List[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &List[T]{
		name:     name,
		pageSize: pageSize,
		fetch:    fetch,
		onError:  onError,
		hasMore:  true,
	}
}

// Reset discards everything loaded so far and fetches from offset 0.
// Pages still in flight from before the reset are dropped on arrival.
func (l *List[T]) Reset(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.generation++
	gen := l.generation
	l.items = nil
	l.hasMore = true
	l.loading = true
	l.loadingMore = false
	l.requests++
	l.mu.Unlock()

	page, err := l.fetch(ctx, l.pageSize, 0)

	l.mu.Lock()
	if l.closed || gen != l.generation {
		l.mu.Unlock()
		return nil
	}
	l.loading = false
	if err != nil {
		l.mu.Unlock()
		l.fail(err)
		return err
	}
	l.items = append([]T(nil), page...)
	if len(page) < l.pageSize {
		l.hasMore = false
	}
	l.mu.Unlock()
	return nil
}

// LoadMore fetches the next page. It is the end-of-list trigger and does
// nothing (returning false) while another fetch is running, after the last
// page has been seen, or once the list is closed.
func (l *List[T]) LoadMore(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.closed || !l.hasMore || l.loading || l.loadingMore {
		l.mu.Unlock()
		return false, nil
	}
	l.loadingMore = true
	gen := l.generation
	offset := len(l.items)
	l.requests++
	l.mu.Unlock()

	page, err := l.fetch(ctx, l.pageSize, offset)

	l.mu.Lock()
	if l.closed || gen != l.generation {
		l.mu.Unlock()
		return false, nil
	}
	l.loadingMore = false
	if err != nil {
		l.mu.Unlock()
		l.fail(err)
		return true, err
	}
	l.items = append(l.items, page...)
	if len(page) < l.pageSize {
		l.hasMore = false
	}
	l.mu.Unlock()
	return true, nil
}

// Update rewrites items in place, e.g. after a local edit of one row
func (l *List[T]) Update(fn func(items []T)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.items)
}

// Clear empties the list without fetching and cancels interest in any
// in-flight page
func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.items = nil
	l.hasMore = true
	l.loading = false
	l.loadingMore = false
}

// Close unmounts the list; responses that arrive afterwards are ignored
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// Items returns a copy of the accumulated items in server order
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T{}, l.items...)
}

// State is a point-in-time view of the list flags
type State struct {
	Count       int  `json:"count"`
	HasMore     bool `json:"hasMore"`
	Loading     bool `json:"loading"`
	LoadingMore bool `json:"loadingMore"`
	Requests    int  `json:"requests"`
}

func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Count:       len(l.items),
		HasMore:     l.hasMore,
		Loading:     l.loading,
		LoadingMore: l.loadingMore,
		Requests:    l.requests,
	}
}

func (l *List[T]) fail(err error) {
	log.Error().Err(err).Str("list", l.name).Msg("Failed to load page")
	if l.onError != nil {
		l.onError(err)
	}
}
