package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hostelhub/hostelctl/internal/discovery"
	"github.com/hostelhub/hostelctl/internal/enrollment"
	"github.com/hostelhub/hostelctl/internal/payments"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery  Screen = "discovery"
	ScreenEnrollment Screen = "enrollment"
)

// Backend is what the wizard needs from an API server
type Backend interface {
	enrollment.Directory
	payments.Source
}

// ConnectFunc builds a backend for a server base URL
type ConnectFunc func(baseURL string) (Backend, error)

// AppOptions configures the top-level wizard
type AppOptions struct {
	// Discover starts at the server picker instead of the enrollment screens
	Discover    bool
	ScanTimeout time.Duration
	Scan        ScanFunc

	// BaseURL and Connect are used to reach the server; with Discover set
	// the picked server replaces BaseURL
	BaseURL string
	Connect ConnectFunc
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	ctx  context.Context
	opts AppOptions

	CurrentScreen  Screen
	PreviousScreen Screen

	DiscoveryModel  DiscoveryModel
	EnrollmentModel EnrollmentModel

	// SelectedServer is set once a server was picked on the discovery screen
	SelectedServer *discovery.Server
	LastError      error

	Width  int
	Height int
}

// NewAppModel creates the wizard starting at the screen the options ask for
func NewAppModel(ctx context.Context, opts AppOptions) (AppModel, error) {
	m := AppModel{ctx: ctx, opts: opts}
	if opts.Discover {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(ctx, opts.Scan, opts.ScanTimeout)
		return m, nil
	}

	em, err := m.connect(opts.BaseURL)
	if err != nil {
		return m, err
	}
	m.CurrentScreen = ScreenEnrollment
	m.EnrollmentModel = em
	return m, nil
}

func (m AppModel) connect(baseURL string) (EnrollmentModel, error) {
	if m.opts.Connect == nil {
		return EnrollmentModel{}, fmt.Errorf("no backend configured")
	}
	backend, err := m.opts.Connect(baseURL)
	if err != nil {
		return EnrollmentModel{}, fmt.Errorf("connect to %s: %w", baseURL, err)
	}
	return NewEnrollmentModel(m.ctx, enrollment.New(backend), backend, baseURL), nil
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenEnrollment:
		return m.EnrollmentModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		// only the active screen is initialised; the other picks the size
		// up on transition
		m.Width, m.Height = size.Width, size.Height
	}

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, cmd := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)

		if srv := m.DiscoveryModel.GetSelectedServer(); srv != nil {
			return m.transitionToEnrollment(srv)
		}
		return m, cmd

	case ScreenEnrollment:
		updated, cmd := m.EnrollmentModel.Update(msg)
		m.EnrollmentModel = updated.(EnrollmentModel)
		return m, cmd
	}
	return m, nil
}

func (m AppModel) transitionToEnrollment(srv *discovery.Server) (tea.Model, tea.Cmd) {
	em, err := m.connect(srv.BaseURL())
	if err != nil {
		// stay on the picker so another server can be chosen
		m.LastError = err
		m.DiscoveryModel.Selected = false
		m.DiscoveryModel.Err = err
		return m, nil
	}

	m.SelectedServer = srv
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = ScreenEnrollment
	em.Width, em.Height = m.Width, m.Height
	if m.Width > 0 {
		em.list.SetSize(listSize(m.Width, m.Height))
	}
	m.EnrollmentModel = em
	return m, em.Init()
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenEnrollment:
		return m.EnrollmentModel.View()
	default:
		return "Unknown screen"
	}
}
