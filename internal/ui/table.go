package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/discovery"
)

// Table is a plain column layout for list commands
type Table struct {
	Columns []string
	Rows    [][]string
	Note    string // printed under the rows

	// CellStyle optionally styles a cell; widths are computed on the raw text
	CellStyle func(row, col int, value string) lipgloss.Style
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Render lays the table out with two spaces between columns
func (t *Table) Render() string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = TableHeaderStyle.Render(pad(c, widths[i]))
	}
	b.WriteString(strings.TrimRight(strings.Join(header, "  "), " "))
	b.WriteString("\n")

	for r, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			style := TableCellStyle
			if t.CellStyle != nil {
				style = t.CellStyle(r, i, value)
			}
			cells[i] = style.Render(pad(value, widths[i]))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}

	if t.Note != "" {
		b.WriteString("\n")
		b.WriteString(TableNoteStyle.Render(t.Note))
		b.WriteString("\n")
	}
	return b.String()
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func money(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func countNote(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// FloorsTable lists floors with their room and bed availability
func FloorsTable(floors []apiclient.Floor) *Table {
	t := &Table{
		Columns: []string{"ID", "FLOOR", "ROOMS FREE", "BEDS FREE"},
		Note:    countNote(len(floors), "floor"),
	}
	for _, f := range floors {
		t.Rows = append(t.Rows, []string{
			f.ID,
			f.Label(),
			fmt.Sprintf("%d/%d", f.AvailableRooms, f.TotalRooms),
			fmt.Sprintf("%d/%d", f.AvailableBeds, f.TotalBeds),
		})
	}
	return t
}

// RoomsTable lists the rooms of a floor
func RoomsTable(rooms []apiclient.Room) *Table {
	t := &Table{
		Columns: []string{"ID", "ROOM", "TYPE", "CAPACITY", "BEDS FREE", "RENT"},
		Note:    countNote(len(rooms), "room"),
	}
	for _, r := range rooms {
		t.Rows = append(t.Rows, []string{
			r.ID,
			r.RoomNumber,
			r.Type,
			strconv.Itoa(r.Capacity),
			fmt.Sprintf("%d/%d", r.AvailableBeds, r.TotalBeds),
			money(r.MonthlyRent),
		})
	}
	return t
}

// BedsTable lists the beds of a room, colouring the status column
func BedsTable(beds []apiclient.Bed) *Table {
	t := &Table{
		Columns: []string{"ID", "BED", "STATUS", "RENT"},
		Note:    countNote(len(beds), "bed"),
	}
	for _, b := range beds {
		status := b.Status
		if status == "" {
			status = apiclient.BedStatusAvailable
		}
		t.Rows = append(t.Rows, []string{b.ID, b.BedNumber, status, money(b.MonthlyRent)})
	}
	t.CellStyle = func(row, col int, value string) lipgloss.Style {
		if col != 2 {
			return TableCellStyle
		}
		if beds[row].Available() {
			return AvailableStyle
		}
		return UnavailableStyle
	}
	return t
}

// BusinessesTable lists a page of businesses. more adds a hint that
// further pages exist.
func BusinessesTable(businesses []apiclient.Business, more bool) *Table {
	t := &Table{
		Columns: []string{"ID", "NAME", "CATEGORY", "PHONE", "ADDRESS"},
		Note:    fmt.Sprintf("%d businesses", len(businesses)),
	}
	if len(businesses) == 1 {
		t.Note = "1 business"
	}
	if more {
		t.Note += " (more available, use --all or --pages)"
	}
	for _, b := range businesses {
		t.Rows = append(t.Rows, []string{b.ID, b.Name, b.CategoryID, b.Phone, b.Address})
	}
	return t
}

// PaymentMethodsTable lists payment methods. fallback marks a list that
// did not come from the server.
func PaymentMethodsTable(methods []apiclient.PaymentMethod, fallback bool) *Table {
	t := &Table{
		Columns: []string{"ID", "NAME", "DESCRIPTION"},
		Note:    countNote(len(methods), "payment method"),
	}
	if fallback {
		t.Note = WarningMarker + " server unavailable, showing built-in defaults"
	}
	for _, m := range methods {
		t.Rows = append(t.Rows, []string{m.ID, m.Name, m.Description})
	}
	return t
}

// ServersTable lists API servers found on the local network
func ServersTable(servers []*discovery.Server) *Table {
	t := &Table{
		Columns: []string{"NAME", "URL", "VERSION"},
		Note:    countNote(len(servers), "server"),
	}
	for _, s := range servers {
		t.Rows = append(t.Rows, []string{s.Instance, s.BaseURL(), s.Version})
	}
	return t
}
