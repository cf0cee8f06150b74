package tui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostelhub/hostelctl/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	servers []*discovery.Server
	err     error
}

// ScanFunc finds API servers; discovery.ScanForServers is the default
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]*discovery.Server, error)

// serverItem wraps a Server for use with bubbles/list
type serverItem struct {
	server *discovery.Server
	manual bool
}

func (s serverItem) Title() string {
	if s.manual {
		return "Manual: " + s.server.BaseURL()
	}
	if s.server.Instance != "" {
		return s.server.Instance
	}
	return s.server.Hostname
}

func (s serverItem) Description() string {
	v := s.server.Version
	if v == "" {
		v = "unknown"
	}
	return fmt.Sprintf("%s • API %s", s.server.BaseURL(), v)
}

func (s serverItem) FilterValue() string {
	return s.server.Instance + " " + s.server.IP + " " + s.server.Hostname
}

// DiscoveryModel scans the LAN for API servers and lets the user pick one
// or type a base URL
type DiscoveryModel struct {
	ctx     context.Context
	scan    ScanFunc
	timeout time.Duration

	Scanning   bool
	ServerList list.Model
	Selected   bool
	Err        error

	// QuitOnSelect ends the program once a server is picked
	QuitOnSelect bool

	ManualMode bool
	URLInput   textinput.Model
	inputErr   string

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	now           func() time.Time
	Help          help.Model
	Keys          wizardKeyMap
}

// NewDiscoveryModel creates the server picker. A nil scan uses mDNS.
func NewDiscoveryModel(ctx context.Context, scan ScanFunc, timeout time.Duration) DiscoveryModel {
	if scan == nil {
		scan = discovery.ScanForServers
	}
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	in := textinput.New()
	in.Placeholder = "http://192.168.1.20:8080"
	in.CharLimit = 200
	in.Width = 40

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	l := newChoiceList()
	l.SetShowTitle(true)
	l.Title = "Hostel API servers"
	l.Styles.Title = TitleStyle

	return DiscoveryModel{
		ctx:         ctx,
		scan:        scan,
		timeout:     timeout,
		ServerList:  l,
		URLInput:    in,
		Spinner:     s,
		ProgressBar: bar,
		now:         time.Now,
		Help:        help.New(),
		Keys:        newWizardKeyMap(),
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	scan, ctx, timeout := m.scan, m.ctx, m.timeout
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			servers, err := scan(ctx, timeout)
			return scanCompleteMsg{servers: servers, err: err}
		},
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.ServerList.SetSize(listSize(msg.Width, msg.Height))
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = m.now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.servers))
		for _, srv := range msg.servers {
			items = append(items, serverItem{server: srv})
		}
		m.ServerList.SetItems(items)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ServerList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.ServerList, cmd = m.ServerList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Force), key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.inputErr = ""
		m.URLInput.SetValue("")
		return m, m.URLInput.Focus()

	case m.Scanning:
		return m, nil

	case key.Matches(msg, m.Keys.Select):
		if m.ServerList.SelectedItem() == nil {
			return m, nil
		}
		m.Selected = true
		if m.QuitOnSelect {
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		m.ServerList.SetItems([]list.Item{})
		m.Err = nil
		return m, m.startScan()
	}

	var cmd tea.Cmd
	m.ServerList, cmd = m.ServerList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Force), key.Matches(msg, m.Keys.Back):
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.Keys.Select):
		srv, err := serverFromURL(m.URLInput.Value())
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		items := append([]list.Item{serverItem{server: srv, manual: true}}, m.ServerList.Items()...)
		m.ServerList.SetItems(items)
		m.ServerList.Select(0)
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// serverFromURL builds a Server from a typed base URL
func serverFromURL(raw string) (*discovery.Server, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("enter a URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("%q is not a valid URL", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	tls := u.Scheme == "https"
	port := 80
	if tls {
		port = 443
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		port = n
	}

	return &discovery.Server{
		Instance:     "manual",
		Hostname:     u.Hostname(),
		IP:           u.Hostname(),
		Port:         port,
		Path:         strings.TrimRight(u.Path, "/"),
		TLS:          tls,
		DiscoveredAt: time.Now(),
	}, nil
}

// GetSelectedServer returns the chosen server, nil until one is selected
func (m DiscoveryModel) GetSelectedServer() *discovery.Server {
	if !m.Selected {
		return nil
	}
	if item, ok := m.ServerList.SelectedItem().(serverItem); ok {
		return item.server
	}
	return nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = DefaultWidth
	}

	var content string
	var keys helpKeys
	k := m.Keys
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		keys = helpKeys{k.Select, k.Back}
	case m.Scanning:
		content = m.renderScanning(width)
		keys = helpKeys{k.Manual, k.Quit}
	case len(m.ServerList.Items()) > 0:
		content = m.ServerList.View()
		keys = helpKeys{k.Up, k.Down, k.Select, k.Rescan, k.Manual, k.Quit}
	default:
		content = m.renderEmpty()
		keys = helpKeys{k.Rescan, k.Manual, k.Quit}
	}

	return RenderApplicationContainer("", content, m.Help.View(keys), m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := m.now().Sub(m.ScanStartTime)
	pct := float64(elapsed) / float64(m.timeout)
	if pct > 1 {
		pct = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR HOSTEL API SERVERS"),
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(pct),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderEmpty() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("⚠ No API servers found on your network"))
	}
	b.WriteString("\n\n")
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Check the API server is running and advertising " + discovery.ServiceType + "\n")
	b.WriteString("    • Make sure you are on the same network segment\n")
	b.WriteString("    • Press u to enter the URL by hand\n")
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("Enter the API base URL"))
	b.WriteString("\n\n  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n")
	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(RenderError(m.inputErr))
		b.WriteString("\n")
	}
	return b.String()
}
