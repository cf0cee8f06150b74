package enrollment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/logging"
)

// Step is the position of the workflow
type Step int

const (
	StepSelectFloor Step = iota + 1
	StepSelectRoom
	StepSelectBed
	StepEnterDetails
)

// String returns a human-readable step name
func (s Step) String() string {
	switch s {
	case StepSelectFloor:
		return "select floor"
	case StepSelectRoom:
		return "select room"
	case StepSelectBed:
		return "select bed"
	case StepEnterDetails:
		return "enter details"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	// ErrInvalidSelection is returned when an id is not among the loaded candidates
	ErrInvalidSelection = errors.New("selection is not one of the loaded candidates")

	// ErrBedUnavailable is returned when the chosen bed is already taken.
	// It wraps ErrInvalidSelection.
	ErrBedUnavailable = fmt.Errorf("bed is not available: %w", ErrInvalidSelection)

	// ErrWrongStep is returned when an operation is called outside its step
	ErrWrongStep = errors.New("operation not allowed at the current step")

	// ErrNoBedSelected is returned by CreateStudent without a selected bed
	ErrNoBedSelected = errors.New("no bed selected")

	// ErrSubmitInFlight is returned by CreateStudent while a submission is pending
	ErrSubmitInFlight = errors.New("a student submission is already in flight")

	// ErrSuperseded is returned by an operation whose result was discarded
	// because GoBack, Reset or a newer operation started while it was in flight
	ErrSuperseded = errors.New("result superseded by a newer operation")
)

// Directory is the remote collaborator of the workflow.
// *apiclient.Client satisfies it.
type Directory interface {
	ListFloors(ctx context.Context) ([]apiclient.Floor, error)
	ListRooms(ctx context.Context, floorID string) ([]apiclient.Room, error)
	ListBeds(ctx context.Context, roomID string) ([]apiclient.Bed, error)
	CreateStudent(ctx context.Context, in apiclient.StudentInput) (*apiclient.Student, error)
}

// State is a snapshot of the workflow
type State struct {
	Step Step

	Floors []apiclient.Floor
	Rooms  []apiclient.Room
	Beds   []apiclient.Bed

	SelectedFloor *apiclient.Floor
	SelectedRoom  *apiclient.Room
	SelectedBed   *apiclient.Bed

	Loading bool
	Error   string
	Err     error
}

func initialState() State {
	return State{Step: StepSelectFloor}
}

// Workflow walks a user from floor to room to bed to student details.
// It is safe for concurrent use; no lock is held during remote calls.
type Workflow struct {
	dir Directory

	mu         sync.Mutex
	state      State
	seq        uint64
	submitting bool
}

// New creates a workflow at the floor step
func New(dir Directory) *Workflow {
	return &Workflow{dir: dir, state: initialState()}
}

// begin starts an operation that will complete asynchronously.
// Callers must hold w.mu.
func (w *Workflow) begin() uint64 {
	w.seq++
	w.state.Loading = true
	w.state.Err = nil
	w.state.Error = ""
	return w.seq
}

// fail records err. Callers must hold w.mu.
func (w *Workflow) fail(err error) error {
	w.state.Err = err
	w.state.Error = err.Error()
	return err
}

// advance moves to the next step and logs the transition. Callers must hold w.mu.
func (w *Workflow) advance(to Step, op string) {
	from := w.state.Step
	w.state.Step = to
	logging.LogWorkflowTransition(from.String(), to.String(), op)
}

// LoadFloors fetches the floor candidates. The step does not change.
func (w *Workflow) LoadFloors(ctx context.Context) error {
	w.mu.Lock()
	seq := w.begin()
	w.mu.Unlock()

	floors, err := w.dir.ListFloors(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		return ErrSuperseded
	}
	w.state.Loading = false

	if err != nil {
		return w.fail(fmt.Errorf("load floors: %w", err))
	}
	w.state.Floors = floors
	return nil
}

// SelectFloor records the floor and fetches its rooms. The workflow advances
// to the room step only when the fetch succeeds.
func (w *Workflow) SelectFloor(ctx context.Context, floorID string) error {
	w.mu.Lock()
	if w.state.Step != StepSelectFloor {
		defer w.mu.Unlock()
		return w.fail(fmt.Errorf("select floor at step %q: %w", w.state.Step, ErrWrongStep))
	}
	floor, ok := findFloor(w.state.Floors, floorID)
	if !ok {
		defer w.mu.Unlock()
		return w.fail(fmt.Errorf("floor %q: %w", floorID, ErrInvalidSelection))
	}

	if w.state.SelectedFloor == nil || w.state.SelectedFloor.ID != floor.ID {
		w.state.Rooms = nil
		w.state.Beds = nil
		w.state.SelectedRoom = nil
		w.state.SelectedBed = nil
	}
	w.state.SelectedFloor = &floor
	seq := w.begin()
	w.mu.Unlock()

	rooms, err := w.dir.ListRooms(ctx, floor.ID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		return ErrSuperseded
	}
	w.state.Loading = false

	if err != nil {
		return w.fail(fmt.Errorf("load rooms of floor %q: %w", floor.ID, err))
	}
	w.state.Rooms = rooms
	if r := w.state.SelectedRoom; r != nil {
		if _, ok := findRoom(rooms, r.ID); !ok {
			w.state.SelectedRoom = nil
			w.state.Beds = nil
			w.state.SelectedBed = nil
		}
	}
	w.advance(StepSelectRoom, "select_floor")
	return nil
}

// SelectRoom records the room and fetches its beds. The workflow advances
// to the bed step only when the fetch succeeds.
func (w *Workflow) SelectRoom(ctx context.Context, roomID string) error {
	w.mu.Lock()
	if w.state.Step != StepSelectRoom {
		defer w.mu.Unlock()
		return w.fail(fmt.Errorf("select room at step %q: %w", w.state.Step, ErrWrongStep))
	}
	room, ok := findRoom(w.state.Rooms, roomID)
	if !ok {
		defer w.mu.Unlock()
		return w.fail(fmt.Errorf("room %q: %w", roomID, ErrInvalidSelection))
	}

	if w.state.SelectedRoom == nil || w.state.SelectedRoom.ID != room.ID {
		w.state.Beds = nil
		w.state.SelectedBed = nil
	}
	w.state.SelectedRoom = &room
	seq := w.begin()
	w.mu.Unlock()

	beds, err := w.dir.ListBeds(ctx, room.ID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.seq {
		return ErrSuperseded
	}
	w.state.Loading = false

	if err != nil {
		return w.fail(fmt.Errorf("load beds of room %q: %w", room.ID, err))
	}
	w.state.Beds = beds
	if b := w.state.SelectedBed; b != nil {
		if _, ok := findBed(beds, b.ID); !ok {
			w.state.SelectedBed = nil
		}
	}
	w.advance(StepSelectBed, "select_room")
	return nil
}

// SelectBed records the bed and advances to the details step.
// It makes no remote call.
func (w *Workflow) SelectBed(bedID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != StepSelectBed {
		return w.fail(fmt.Errorf("select bed at step %q: %w", w.state.Step, ErrWrongStep))
	}
	bed, ok := findBed(w.state.Beds, bedID)
	if !ok {
		return w.fail(fmt.Errorf("bed %q: %w", bedID, ErrInvalidSelection))
	}
	if !bed.Available() {
		return w.fail(fmt.Errorf("bed %q is %s: %w", bedID, bed.Status, ErrBedUnavailable))
	}

	w.seq++
	w.state.Loading = false
	w.state.Err = nil
	w.state.Error = ""
	w.state.SelectedBed = &bed
	w.advance(StepEnterDetails, "select_bed")
	return nil
}

// CreateStudent validates the form and submits it for the selected bed.
// On failure the error is recorded and the selection is kept so the caller
// can resubmit. The workflow is not reset on success.
//
// If GoBack or Reset runs while the request is in flight, the state is left
// alone and the error wraps ErrSuperseded. The returned student still
// reflects what the server created, if anything.
func (w *Workflow) CreateStudent(ctx context.Context, form StudentForm) (*apiclient.Student, error) {
	w.mu.Lock()
	if w.state.Step != StepEnterDetails {
		defer w.mu.Unlock()
		return nil, w.fail(fmt.Errorf("create student at step %q: %w", w.state.Step, ErrWrongStep))
	}
	if w.state.SelectedBed == nil {
		defer w.mu.Unlock()
		return nil, w.fail(ErrNoBedSelected)
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := form.Validate(); err != nil {
		defer w.mu.Unlock()
		return nil, w.fail(err)
	}

	in := form.input(w.state.SelectedBed.ID)
	seq := w.begin()
	w.submitting = true
	w.mu.Unlock()

	student, err := w.dir.CreateStudent(ctx, in)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if seq != w.seq {
		if err != nil {
			return nil, fmt.Errorf("create student: %w (%w)", ErrSuperseded, err)
		}
		return student, fmt.Errorf("create student: %w", ErrSuperseded)
	}
	w.state.Loading = false

	if err != nil {
		return nil, w.fail(fmt.Errorf("create student: %w", err))
	}
	logging.LogWorkflowTransition(w.state.Step.String(), "created", "create_student")
	return student, nil
}

// GoBack returns to the previous step, keeping every selection and
// candidate list. At the first step it does nothing to the step.
// Fetches still in flight are discarded when they complete.
func (w *Workflow) GoBack() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	w.state.Loading = false
	w.state.Err = nil
	w.state.Error = ""
	if w.state.Step > StepSelectFloor {
		w.advance(w.state.Step-1, "go_back")
	}
}

// Reset returns the workflow to the state it had when constructed.
// Fetches still in flight are discarded when they complete.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	from := w.state.Step
	w.seq++
	w.state = initialState()
	logging.LogWorkflowTransition(from.String(), w.state.Step.String(), "reset")
}

// State returns a snapshot of the workflow
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	s.Floors = cloneSlice(w.state.Floors)
	s.Rooms = cloneSlice(w.state.Rooms)
	s.Beds = cloneSlice(w.state.Beds)
	s.SelectedFloor = clonePtr(w.state.SelectedFloor)
	s.SelectedRoom = clonePtr(w.state.SelectedRoom)
	s.SelectedBed = clonePtr(w.state.SelectedBed)
	return s
}

// Step returns the current step
func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step
}

func findFloor(floors []apiclient.Floor, id string) (apiclient.Floor, bool) {
	for _, f := range floors {
		if f.ID == id {
			return f, true
		}
	}
	return apiclient.Floor{}, false
}

func findRoom(rooms []apiclient.Room, id string) (apiclient.Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return apiclient.Room{}, false
}

func findBed(beds []apiclient.Bed, id string) (apiclient.Bed, bool) {
	for _, b := range beds {
		if b.ID == id {
			return b, true
		}
	}
	return apiclient.Bed{}, false
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
