package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/discovery"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableRender(t *testing.T) {
	tbl := &Table{
		Columns: []string{"ID", "NAME"},
		Rows: [][]string{
			{"f1", "Ground"},
			{"f2-long-id", "First"},
		},
		Note: "2 floors",
	}
	out := tbl.Render()

	for _, want := range []string{"ID", "NAME", "f1", "Ground", "f2-long-id", "First", "2 floors"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Ground") > strings.Index(out, "First") {
		t.Error("rows should render in order")
	}
	if tbl.Empty() {
		t.Error("Empty() = true for a table with rows")
	}
}

func TestBedsTableDefaultsStatus(t *testing.T) {
	tbl := BedsTable([]apiclient.Bed{
		{ID: "b1", BedNumber: "A"},
		{ID: "b2", BedNumber: "B", Status: "occupied", MonthlyRent: 120},
	})
	if got := tbl.Rows[0][2]; got != apiclient.BedStatusAvailable {
		t.Errorf("status = %q, want %q", got, apiclient.BedStatusAvailable)
	}
	if got := tbl.Rows[1][3]; got != "120.00" {
		t.Errorf("rent = %q, want 120.00", got)
	}
	if tbl.Note != "2 beds" {
		t.Errorf("Note = %q, want 2 beds", tbl.Note)
	}
}

func TestEntityTables(t *testing.T) {
	floors := FloorsTable([]apiclient.Floor{{ID: "f1", Number: 2, TotalRooms: 4, AvailableRooms: 1}})
	if floors.Rows[0][1] != "Floor 2" || floors.Rows[0][2] != "1/4" || floors.Note != "1 floor" {
		t.Errorf("FloorsTable row = %v note = %q", floors.Rows[0], floors.Note)
	}

	rooms := RoomsTable([]apiclient.Room{{ID: "r1", RoomNumber: "101", Capacity: 3}})
	if rooms.Rows[0][1] != "101" || rooms.Rows[0][5] != "-" {
		t.Errorf("RoomsTable row = %v", rooms.Rows[0])
	}

	biz := BusinessesTable([]apiclient.Business{{ID: "b1", Name: "Cafe"}}, true)
	if !strings.HasPrefix(biz.Note, "1 business") || !strings.Contains(biz.Note, "more available") {
		t.Errorf("BusinessesTable note = %q", biz.Note)
	}

	servers := ServersTable([]*discovery.Server{{Instance: "Main", IP: "10.0.0.2", Port: 8080, Version: "2"}})
	if servers.Rows[0][1] != "http://10.0.0.2:8080" {
		t.Errorf("ServersTable url = %q", servers.Rows[0][1])
	}
}

func TestPaymentMethodsTableFallbackNote(t *testing.T) {
	methods := []apiclient.PaymentMethod{{ID: "cash", Name: "Cash"}}

	if note := PaymentMethodsTable(methods, false).Note; note != "1 payment method" {
		t.Errorf("live note = %q", note)
	}
	if note := PaymentMethodsTable(methods, true).Note; !strings.Contains(note, "built-in defaults") {
		t.Errorf("fallback note = %q", note)
	}
}

func TestPrinterPrintList(t *testing.T) {
	data := []apiclient.Floor{{ID: "f1", Name: "Ground"}}

	var buf bytes.Buffer
	p := NewPrinter(&buf).WithFormat(FormatJSON)
	if err := p.PrintList(data, FloorsTable(data)); err != nil {
		t.Fatal(err)
	}
	var decoded []apiclient.Floor
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].ID != "f1" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	p = NewPrinter(&buf)
	if err := p.PrintList([]apiclient.Floor{}, FloorsTable(nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestPrinterHeaderSuppressedInJSON(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).WithFormat(FormatJSON).PrintHeader("Floors", "hostelctl floors")
	if buf.Len() != 0 {
		t.Errorf("JSON mode should not print a header, got %q", buf.String())
	}
}

func TestHeaderSkipsEmptyParams(t *testing.T) {
	out := NewHeader("Floors", "hostelctl floors", []Field{
		F("Server", "http://localhost:8080"),
		F("Profile", ""),
	}).SetWidth(80).Render()

	if !strings.Contains(out, "FLOORS") || !strings.Contains(out, "Server:") {
		t.Errorf("Render() = %s", out)
	}
	if strings.Contains(out, "Profile:") {
		t.Error("empty params should be skipped")
	}
}

func TestResultDetailsKeepOrder(t *testing.T) {
	out := NewSuccessResult("Student created", F("Student", "s1")).
		AddDetail("Bed", "b9").
		SetWidth(80).
		Render()

	i, j := strings.Index(out, "Student:"), strings.Index(out, "Bed:")
	if i < 0 || j < 0 || i > j {
		t.Errorf("details out of order:\n%s", out)
	}
}

func TestFailureResultIncludesTips(t *testing.T) {
	out := NewFailureResult("Create failed", errors.New("bed taken"), []string{"Pick another bed"}).
		SetWidth(80).
		Render()
	for _, want := range []string{"FAILED", "bed taken", "Troubleshooting:", "Pick another bed"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)
			if got := p.Confirm("Create student", []Field{F("Bed", "B-1")}); got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Bed:") {
				t.Error("summary lines should be printed")
			}
		})
	}
}

func TestPrompterAskSharesBuffer(t *testing.T) {
	p := NewPrompter(strings.NewReader("alice\n 555-1234 \n"), &bytes.Buffer{})

	name, err := p.Ask("Name")
	if err != nil || name != "alice" {
		t.Fatalf("Ask() = %q, %v", name, err)
	}
	phone, err := p.Ask("Phone")
	if err != nil || phone != "555-1234" {
		t.Fatalf("Ask() = %q, %v", phone, err)
	}
	if _, err := p.Ask("More"); err == nil {
		t.Error("Ask() at EOF should fail")
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress("Enrolling", 4).SetStepNames([]string{"floors", "rooms", "beds", "submit"})

	p.StartStep(1, "")
	if p.Current != 1 || p.Percent != 0 {
		t.Errorf("after start: current=%d percent=%v", p.Current, p.Percent)
	}
	p.CompleteStep(1, "3 floors")
	p.UpdateStep(2, StepSkipped, "")
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}
	p.FailStep(3, "timeout")
	if p.Percent != 0.5 {
		t.Errorf("a failed step should not count, Percent = %v", p.Percent)
	}

	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(9, StepComplete, "")

	out := p.Render()
	for _, want := range []string{"Enrolling", "floors", "(3 floors)", "(timeout)", "[1/4]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestStepRunnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewStepRunner(RunnerConfig{
		Title:     "Enroll student",
		Command:   "hostelctl student create",
		StepNames: []string{"Load floors", "Create student"},
		Output:    &buf,
	})

	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) ([]Field, error) {
		onStep(1, "", StepRunning, "")
		onStep(1, "", StepComplete, "2 floors")
		onStep(2, "Submit", StepComplete, "")
		onStep(7, "", StepComplete, "")
		return []Field{F("Student", "s-1")}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ENROLL STUDENT", "Load floors", "Submit", "Enroll student complete", "s-1", "Duration:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if r.Progress().Percent != 1 {
		t.Errorf("Percent = %v, want 1", r.Progress().Percent)
	}
}

func TestStepRunnerFailure(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("bed taken")
	r := NewStepRunner(RunnerConfig{
		Title:        "Enroll student",
		Output:       &buf,
		Troubleshoot: func(error) []string { return []string{"Choose another bed"} },
	})

	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) ([]Field, error) {
		onStep(1, "", StepRunning, "")
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if r.Progress() != nil {
		t.Error("Progress() should be nil without step names")
	}
	out := buf.String()
	if !strings.Contains(out, "Enroll student failed") || !strings.Contains(out, "Choose another bed") {
		t.Errorf("failure output:\n%s", out)
	}
}
