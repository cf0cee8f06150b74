package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/pager"
)

// businessSource serves total businesses and records the pages asked for
type businessSource struct {
	mu    sync.Mutex
	total int
	err   error
	pages []pager.Page
}

func (s *businessSource) fetch(ctx context.Context, page pager.Page) ([]apiclient.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, page)
	if s.err != nil {
		return nil, s.err
	}
	var out []apiclient.Business
	for i := page.Offset; i < s.total && len(out) < page.Limit; i++ {
		out = append(out, apiclient.Business{ID: fmt.Sprintf("b%d", i), Name: fmt.Sprintf("Business %d", i)})
	}
	return out, nil
}

func newBrowser(t *testing.T, src *businessSource) BrowserModel {
	t.Helper()
	loader, err := pager.New(src.fetch, pager.Config{Name: "businesses", InitialPageSize: 3, LoadMorePageSize: 3})
	if err != nil {
		t.Fatal(err)
	}
	m := NewBrowserModel(context.Background(), loader, "Hostels", "http://hostel.test")
	tm, _ := run(t, m, m.Init())
	return tm.(BrowserModel)
}

func TestBrowserFirstPage(t *testing.T) {
	m := newBrowser(t, &businessSource{total: 7})

	if got := len(m.Items()); got != 3 {
		t.Fatalf("loaded %d items, want 3", got)
	}
	if got := m.Status(); got != "3 loaded, more available" {
		t.Errorf("status = %q", got)
	}
	if !strings.Contains(m.View(), "Business 0") {
		t.Error("view does not list the first business")
	}
}

func TestBrowserLoadMoreUntilEnd(t *testing.T) {
	src := &businessSource{total: 7}
	m := newBrowser(t, src)

	tm, _ := press(t, m, "m")
	m = tm.(BrowserModel)
	if got := len(m.Items()); got != 6 {
		t.Fatalf("after m: %d items, want 6", got)
	}

	// moving past the last item fetches the next page
	m.list.Select(len(m.list.Items()) - 1)
	tm, _ = press(t, m, "down")
	m = tm.(BrowserModel)
	if got := len(m.Items()); got != 7 {
		t.Fatalf("after scrolling: %d items, want 7", got)
	}
	if got := m.Status(); got != "end of list (7)" {
		t.Errorf("status = %q", got)
	}

	// exhausted: nothing more is requested
	before := len(src.pages)
	tm, cmd := m.Update(keyMsg("m"))
	if cmd != nil {
		t.Error("load more dispatched on an exhausted list")
	}
	if len(src.pages) != before {
		t.Error("source was queried again")
	}
	m = tm.(BrowserModel)

	want := []pager.Page{{Offset: 0, Limit: 3}, {Offset: 3, Limit: 3}, {Offset: 6, Limit: 3}}
	if fmt.Sprint(src.pages) != fmt.Sprint(want) {
		t.Errorf("pages = %v, want %v", src.pages, want)
	}
}

func TestBrowserStatusWhilePending(t *testing.T) {
	m := newBrowser(t, &businessSource{total: 10})

	tm, cmd := m.Update(keyMsg("m"))
	m = tm.(BrowserModel)
	if cmd == nil {
		t.Fatal("no load dispatched")
	}
	if got := m.Status(); got != "loading more…" {
		t.Errorf("status = %q, want loading more…", got)
	}

	// a second request while one is pending is dropped
	if _, again := m.Update(keyMsg("m")); again != nil {
		t.Error("second load more dispatched while pending")
	}

	tm, _ = run(t, m, cmd)
	if got := tm.(BrowserModel).Status(); got != "6 loaded, more available" {
		t.Errorf("status = %q", got)
	}
}

func TestBrowserRefresh(t *testing.T) {
	src := &businessSource{total: 10}
	m := newBrowser(t, src)
	tm, _ := press(t, m, "m")
	m = tm.(BrowserModel)

	src.mu.Lock()
	src.total = 2
	src.mu.Unlock()

	tm, _ = press(t, m, "r")
	m = tm.(BrowserModel)
	if got := len(m.Items()); got != 2 {
		t.Fatalf("after refresh: %d items, want 2", got)
	}
	if got := m.Status(); got != "end of list (2)" {
		t.Errorf("status = %q", got)
	}
}

func TestBrowserEmptyAndError(t *testing.T) {
	tests := []struct {
		name string
		src  *businessSource
		want string
	}{
		{name: "empty", src: &businessSource{}, want: "no businesses"},
		{name: "error", src: &businessSource{err: apiclient.NewHTTPError(503, "maintenance")}, want: "error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBrowser(t, tt.src)
			if got := m.Status(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("status = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowser(t, &businessSource{total: 1})
	if _, quit := press(t, m, "q"); !quit {
		t.Error("q did not quit")
	}
}
