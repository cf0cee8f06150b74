package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/enrollment"
	"github.com/hostelhub/hostelctl/internal/payments"
	"github.com/hostelhub/hostelctl/internal/ui"
)

type stubDirectory struct {
	created []apiclient.StudentInput
}

func (d *stubDirectory) ListFloors(ctx context.Context) ([]apiclient.Floor, error) {
	return []apiclient.Floor{{ID: "f1", Number: 1}}, nil
}

func (d *stubDirectory) ListRooms(ctx context.Context, floorID string) ([]apiclient.Room, error) {
	return []apiclient.Room{{ID: "r1", FloorID: floorID, RoomNumber: "101"}}, nil
}

func (d *stubDirectory) ListBeds(ctx context.Context, roomID string) ([]apiclient.Bed, error) {
	return []apiclient.Bed{
		{ID: "b1", RoomID: roomID, BedNumber: "A", Status: apiclient.BedStatusAvailable},
		{ID: "b2", RoomID: roomID, BedNumber: "B", Status: apiclient.BedStatusOccupied},
	}, nil
}

func (d *stubDirectory) CreateStudent(ctx context.Context, in apiclient.StudentInput) (*apiclient.Student, error) {
	d.created = append(d.created, in)
	return &apiclient.Student{ID: "s1", Name: in.Name, BedID: in.BedID}, nil
}

func TestEnroll(t *testing.T) {
	tests := []struct {
		name      string
		floor     string
		room      string
		bed       string
		wantErr   error
		wantSteps int // steps reported complete
	}{
		{name: "success", floor: "f1", room: "r1", bed: "b1", wantSteps: 5},
		{name: "unknown floor", floor: "f9", room: "r1", bed: "b1", wantErr: enrollment.ErrInvalidSelection, wantSteps: 1},
		{name: "occupied bed", floor: "f1", room: "r1", bed: "b2", wantErr: enrollment.ErrBedUnavailable, wantSteps: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			studentFloor, studentRoom, studentBed = tt.floor, tt.room, tt.bed
			dir := &stubDirectory{}
			form := enrollment.StudentForm{Name: "Asha Rao", Phone: "5550100200"}

			completed := 0
			failed := 0
			onStep := func(n int, name string, status ui.StepStatus, msg string) {
				switch status {
				case ui.StepComplete:
					completed++
				case ui.StepFailed:
					failed++
				}
			}

			student, err := enroll(context.Background(), enrollment.New(dir), form, onStep)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if failed != 1 {
					t.Errorf("failed steps = %d, want 1", failed)
				}
				if len(dir.created) != 0 {
					t.Error("student created despite the error")
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				if student.BedID != "b1" {
					t.Errorf("bed = %q, want b1", student.BedID)
				}
			}
			if completed != tt.wantSteps {
				t.Errorf("completed steps = %d, want %d", completed, tt.wantSteps)
			}
		})
	}
}

func TestHasMethod(t *testing.T) {
	methods := []apiclient.PaymentMethod{{ID: "cash"}, {ID: "bank_transfer"}}

	if !hasMethod(methods, "CASH") {
		t.Error("lookup should ignore case")
	}
	if hasMethod(methods, "crypto") {
		t.Error("unknown method accepted")
	}
	if got := methodIDs(methods); got != "cash, bank_transfer" {
		t.Errorf("methodIDs = %q", got)
	}
}

func TestWarnFallback(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf)

	warnFallback(p, payments.Result{Methods: []apiclient.PaymentMethod{{ID: "cash"}}, Origin: payments.OriginLive})
	if buf.Len() != 0 {
		t.Errorf("live result printed a warning: %q", buf.String())
	}

	warnFallback(p, payments.Result{Methods: payments.Fallback(), Origin: payments.OriginFallback, Err: errors.New("offline")})
	out := buf.String()
	for _, want := range []string{"Using built-in payment methods", "offline", "cash"} {
		if !strings.Contains(out, want) {
			t.Errorf("warning missing %q:\n%s", want, out)
		}
	}
}
