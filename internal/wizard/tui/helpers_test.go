package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hostelhub/hostelctl/internal/apiclient"
)

// run executes cmd and feeds every message it yields back into the model.
// Spinner ticks are dropped and commands that block (cursor blinks) are
// abandoned after a short wait.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) (tea.Model, bool) {
	t.Helper()
	quit := false
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := execCmd(c).(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			quit = true
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m, quit
}

func execCmd(c tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// press sends one key to the model and runs whatever it returns
func press(t *testing.T, m tea.Model, k string) (tea.Model, bool) {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	return run(t, next, cmd)
}

func keyMsg(k string) tea.KeyMsg {
	types := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"left":      tea.KeyLeft,
		"right":     tea.KeyRight,
		"ctrl+c":    tea.KeyCtrlC,
		"ctrl+r":    tea.KeyCtrlR,
		"ctrl+s":    tea.KeyCtrlS,
	}
	if kt, ok := types[k]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// fakeBackend serves a two-floor hostel
type fakeBackend struct {
	mu sync.Mutex

	floors []apiclient.Floor
	rooms  map[string][]apiclient.Room
	beds   map[string][]apiclient.Bed

	roomsErr    error
	paymentsErr error
	createErr   error
	created     []apiclient.StudentInput

	// createGate, when set, blocks CreateStudent until it is closed
	createGate  chan struct{}
	createCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		floors: []apiclient.Floor{
			{ID: "f1", Number: 1, TotalBeds: 4, AvailableBeds: 2},
			{ID: "f2", Number: 2, TotalBeds: 2, AvailableBeds: 1},
		},
		rooms: map[string][]apiclient.Room{
			"f1": {{ID: "r11", FloorID: "f1", RoomNumber: "101"}},
			"f2": {{ID: "r21", FloorID: "f2", RoomNumber: "201"}, {ID: "r22", FloorID: "f2", RoomNumber: "202"}},
		},
		beds: map[string][]apiclient.Bed{
			"r11": {{ID: "b111", RoomID: "r11", BedNumber: "A", Status: "available"}},
			"r21": {
				{ID: "b211", RoomID: "r21", BedNumber: "A", Status: "occupied"},
				{ID: "b212", RoomID: "r21", BedNumber: "B", Status: "available"},
			},
		},
	}
}

func (f *fakeBackend) ListFloors(ctx context.Context) ([]apiclient.Floor, error) {
	return f.floors, nil
}

func (f *fakeBackend) ListRooms(ctx context.Context, floorID string) ([]apiclient.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	return f.rooms[floorID], nil
}

func (f *fakeBackend) ListBeds(ctx context.Context, roomID string) ([]apiclient.Bed, error) {
	return f.beds[roomID], nil
}

func (f *fakeBackend) CreateStudent(ctx context.Context, in apiclient.StudentInput) (*apiclient.Student, error) {
	f.mu.Lock()
	gate := f.createGate
	f.createCalls++
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &apiclient.Student{ID: "s-1", Name: in.Name, BedID: in.BedID}, nil
}

func (f *fakeBackend) ListPaymentMethods(ctx context.Context) ([]apiclient.PaymentMethod, error) {
	if f.paymentsErr != nil {
		return nil, f.paymentsErr
	}
	return []apiclient.PaymentMethod{
		{ID: "card", Name: "Card"},
		{ID: "upi", Name: "UPI"},
	}, nil
}

var errOffline = errors.New("offline")
