package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hostelhub/hostelctl/internal/logging"
)

// ErrSuperseded is returned by a load whose result was discarded because a
// newer LoadInitial, Refresh or Reset started while it was in flight.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Page is the window requested from the source
type Page struct {
	Offset int
	Limit  int
}

// FetchFunc fetches one page of items. It must return at most page.Limit items.
type FetchFunc[T any] func(ctx context.Context, page Page) ([]T, error)

// Config holds the page sizes of a loader
type Config struct {
	// Name identifies the loader in logs (e.g., "businesses")
	Name string

	// InitialPageSize is the limit of the first page
	InitialPageSize int

	// LoadMorePageSize is the limit of every following page
	LoadMorePageSize int
}

// Validate checks that both page sizes are usable
func (c Config) Validate() error {
	if c.InitialPageSize < 1 {
		return fmt.Errorf("initial page size must be at least 1, got %d", c.InitialPageSize)
	}
	if c.LoadMorePageSize < 1 {
		return fmt.Errorf("load-more page size must be at least 1, got %d", c.LoadMorePageSize)
	}
	return nil
}

// State is a point-in-time snapshot of a loader
type State[T any] struct {
	Items       []T
	HasMore     bool
	Loading     bool
	LoadingMore bool
	Error       string
	Err         error
}

// Loader accumulates items from a paged source. Items are only ever
// appended in fetch order; the offset of the next page is always the
// number of items already held.
//
// A Loader is safe for concurrent use. No lock is held while fetching.
type Loader[T any] struct {
	fetch FetchFunc[T]
	cfg   Config

	mu          sync.Mutex
	items       []T
	hasMore     bool
	loading     bool
	loadingMore bool
	err         error

	// generation is bumped by LoadInitial, Refresh and Reset. A fetch
	// applies its result only if the generation it started under is
	// still current.
	generation uint64
}

// New creates a loader. It returns an error if cfg is invalid.
func New[T any](fetch FetchFunc[T], cfg Config) (*Loader[T], error) {
	if fetch == nil {
		return nil, errors.New("fetch function is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "items"
	}
	return &Loader[T]{fetch: fetch, cfg: cfg}, nil
}

// LoadInitial fetches the first page and replaces the held items with it.
// On failure the held items are left untouched and the error is recorded.
func (l *Loader[T]) LoadInitial(ctx context.Context) error {
	return l.loadInitial(ctx, false)
}

func (l *Loader[T]) loadInitial(ctx context.Context, clear bool) error {
	l.mu.Lock()
	if clear {
		l.items = nil
		l.hasMore = false
	}
	l.generation++
	gen := l.generation
	l.loading = true
	l.loadingMore = false
	l.err = nil
	size := l.cfg.InitialPageSize
	l.mu.Unlock()

	items, err := l.fetch(ctx, Page{Offset: 0, Limit: size})

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return ErrSuperseded
	}
	l.loading = false

	if err != nil {
		l.err = err
		return fmt.Errorf("load %s: %w", l.cfg.Name, err)
	}

	l.items = append(make([]T, 0, len(items)), items...)
	l.hasMore = len(items) == size
	logging.LogPageLoaded(l.cfg.Name, 0, len(items), l.hasMore)
	return nil
}

// LoadMore fetches the page after the held items and appends it.
// It does nothing when a load-more or initial load is already in flight or
// when the source is known to be exhausted.
func (l *Loader[T]) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loadingMore || l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	gen := l.generation
	l.loadingMore = true
	l.err = nil
	offset := len(l.items)
	size := l.cfg.LoadMorePageSize
	l.mu.Unlock()

	items, err := l.fetch(ctx, Page{Offset: offset, Limit: size})

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return ErrSuperseded
	}
	l.loadingMore = false

	if err != nil {
		l.err = err
		return fmt.Errorf("load more %s: %w", l.cfg.Name, err)
	}

	l.items = append(l.items, items...)
	l.hasMore = len(items) > 0 && len(items) == size
	logging.LogPageLoaded(l.cfg.Name, offset, len(items), l.hasMore)
	return nil
}

// Refresh drops every held item and loads the first page again
func (l *Loader[T]) Refresh(ctx context.Context) error {
	return l.loadInitial(ctx, true)
}

// Reset returns the loader to its freshly constructed state. Loads still
// in flight are discarded when they complete.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	l.items = nil
	l.hasMore = false
	l.loading = false
	l.loadingMore = false
	l.err = nil
}

// State returns a snapshot of the loader
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := State[T]{
		HasMore:     l.hasMore,
		Loading:     l.loading,
		LoadingMore: l.loadingMore,
		Err:         l.err,
	}
	if l.items != nil {
		s.Items = append(make([]T, 0, len(l.items)), l.items...)
	}
	if l.err != nil {
		s.Error = l.err.Error()
	}
	return s
}

// Items returns a copy of the held items
func (l *Loader[T]) Items() []T {
	return l.State().Items
}

// Len returns the number of held items, which is also the offset of the next page
func (l *Loader[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// HasMore reports whether another page is expected
func (l *Loader[T]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}
