package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/pager"
)

type pageKind int

const (
	pageNone pageKind = iota
	pageInitial
	pageMore
)

type pageLoadedMsg struct {
	kind pageKind
	err  error
}

// businessItem wraps a Business for use with bubbles/list
type businessItem struct {
	business apiclient.Business
}

func (b businessItem) Title() string { return b.business.Name }

func (b businessItem) Description() string {
	var parts []string
	for _, p := range []string{b.business.Address, b.business.Phone, b.business.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return b.business.ID
	}
	return strings.Join(parts, " • ")
}

func (b businessItem) FilterValue() string { return b.business.Name }

// BrowserModel pages through businesses with a pager.Loader. Moving past
// the last item or pressing m loads the next page; r refreshes.
type BrowserModel struct {
	ctx    context.Context
	loader *pager.Loader[apiclient.Business]
	title  string
	server string

	list    list.Model
	spinner spinner.Model
	pending pageKind
	state   pager.State[apiclient.Business]

	Width  int
	Height int
	Help   help.Model
	Keys   wizardKeyMap
}

// NewBrowserModel creates a browser over loader. title names the listing,
// e.g. the category being browsed.
func NewBrowserModel(ctx context.Context, loader *pager.Loader[apiclient.Business], title, server string) BrowserModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	l := newChoiceList()
	l.SetFilteringEnabled(false)

	return BrowserModel{
		ctx:     ctx,
		loader:  loader,
		title:   title,
		server:  server,
		list:    l,
		spinner: s,
		pending: pageInitial,
		Help:    help.New(),
		Keys:    newWizardKeyMap(),
	}
}

// Init loads the first page
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.load(pageInitial), m.spinner.Tick)
}

func (m BrowserModel) load(kind pageKind) tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		var err error
		if kind == pageMore {
			err = loader.LoadMore(ctx)
		} else {
			err = loader.Refresh(ctx)
		}
		return pageLoadedMsg{kind: kind, err: err}
	}
}

// Items returns the businesses loaded so far
func (m BrowserModel) Items() []apiclient.Business {
	return m.state.Items
}

func (m *BrowserModel) sync() {
	m.state = m.loader.State()
	items := make([]list.Item, len(m.state.Items))
	for i, b := range m.state.Items {
		items[i] = businessItem{business: b}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = 0
	}
	m.list.Select(idx)
}

// Update handles messages and updates the model
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(listSize(msg.Width, msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		if errors.Is(msg.err, pager.ErrSuperseded) {
			return m, nil
		}
		m.pending = pageNone
		m.sync()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Force), key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.Keys.Refresh):
			return m.startLoad(pageInitial)

		case key.Matches(msg, m.Keys.More):
			return m.startLoad(pageMore)
		}

		atEnd := len(m.list.Items()) > 0 && m.list.Index() == len(m.list.Items())-1
		if atEnd && key.Matches(msg, m.Keys.Down) {
			return m.startLoad(pageMore)
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startLoad dispatches a fetch. A load-more is dropped while anything is
// pending or when the last page was short; a refresh always goes out.
func (m BrowserModel) startLoad(kind pageKind) (tea.Model, tea.Cmd) {
	if kind == pageMore && (m.pending != pageNone || !m.state.HasMore) {
		return m, nil
	}
	m.pending = kind
	return m, tea.Batch(m.load(kind), m.spinner.Tick)
}

// Status is the line shown under the list
func (m BrowserModel) Status() string {
	switch {
	case m.pending == pageInitial:
		return "loading…"
	case m.pending == pageMore:
		return "loading more…"
	case m.state.Error != "":
		return "error: " + apiclient.ShortMessage(m.state.Err)
	case len(m.state.Items) == 0:
		return "no businesses"
	case !m.state.HasMore:
		return fmt.Sprintf("end of list (%d)", len(m.state.Items))
	default:
		return fmt.Sprintf("%d loaded, more available", len(m.state.Items))
	}
}

// View renders the browser
func (m BrowserModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle(m.title))
	b.WriteString("\n")

	if len(m.list.Items()) > 0 {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	status := m.Status()
	if m.pending != pageNone {
		status = m.spinner.View() + " " + status
	}
	if m.state.Error != "" && m.pending == pageNone {
		b.WriteString(RenderError(status))
	} else {
		b.WriteString(StatusStyle.Render(status))
	}
	b.WriteString("\n")

	k := m.Keys
	keys := helpKeys{k.Up, k.Down, k.More, k.Refresh, k.Quit}
	return RenderApplicationContainer(m.server, b.String(), m.Help.View(keys), m.Width, m.Height)
}
