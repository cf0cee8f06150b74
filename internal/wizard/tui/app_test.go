package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hostelhub/hostelctl/internal/enrollment"
)

func TestNewAppModelRequiresBackend(t *testing.T) {
	if _, err := NewAppModel(context.Background(), AppOptions{BaseURL: "http://x"}); err == nil {
		t.Error("expected an error without a Connect function")
	}
}

func TestAppStartsAtEnrollment(t *testing.T) {
	fb := newFakeBackend()
	var dialed string
	app, err := NewAppModel(context.Background(), AppOptions{
		BaseURL: "http://hostel.test",
		Connect: func(baseURL string) (Backend, error) {
			dialed = baseURL
			return fb, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if dialed != "http://hostel.test" {
		t.Errorf("connected to %q", dialed)
	}

	tm, _ := run(t, app, app.Init())
	app = tm.(AppModel)
	if app.CurrentScreen != ScreenEnrollment {
		t.Fatalf("screen = %s", app.CurrentScreen)
	}
	if got := len(app.EnrollmentModel.state.Floors); got != 2 {
		t.Errorf("floors loaded = %d, want 2", got)
	}
}

func TestAppDiscoveryToEnrollment(t *testing.T) {
	fb := newFakeBackend()
	var dialed string
	app, err := NewAppModel(context.Background(), AppOptions{
		Discover:    true,
		ScanTimeout: time.Second,
		Scan:        fixedScan(testServers(), nil),
		Connect: func(baseURL string) (Backend, error) {
			dialed = baseURL
			return fb, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tm, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	tm, _ = run(t, tm, tm.Init())
	if got := tm.(AppModel).CurrentScreen; got != ScreenDiscovery {
		t.Fatalf("screen = %s before selection", got)
	}

	tm, _ = press(t, tm, "enter")
	app = tm.(AppModel)

	if app.CurrentScreen != ScreenEnrollment {
		t.Fatalf("screen = %s after selection, last error %v", app.CurrentScreen, app.LastError)
	}
	if dialed != "http://192.168.1.20:8080" {
		t.Errorf("connected to %q", dialed)
	}
	if app.SelectedServer == nil || app.SelectedServer.Instance != "Main hostel" {
		t.Errorf("selected server = %+v", app.SelectedServer)
	}
	if app.EnrollmentModel.Width != 100 {
		t.Errorf("enrollment width = %d, want the window size", app.EnrollmentModel.Width)
	}
	if app.EnrollmentModel.state.Step != enrollment.StepSelectFloor || len(app.EnrollmentModel.state.Floors) != 2 {
		t.Errorf("enrollment not started: %+v", app.EnrollmentModel.state)
	}
}

func TestAppConnectFailureStaysOnPicker(t *testing.T) {
	app, err := NewAppModel(context.Background(), AppOptions{
		Discover: true,
		Scan:     fixedScan(testServers(), nil),
		Connect: func(baseURL string) (Backend, error) {
			return nil, errors.New("refused")
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tm, _ := run(t, app, app.Init())
	tm, _ = press(t, tm, "enter")
	app = tm.(AppModel)

	if app.CurrentScreen != ScreenDiscovery {
		t.Fatalf("screen = %s, want discovery", app.CurrentScreen)
	}
	if app.LastError == nil || app.DiscoveryModel.Err == nil {
		t.Error("connect failure not recorded")
	}
	if app.DiscoveryModel.GetSelectedServer() != nil {
		t.Error("selection kept after a failed connect")
	}
}
