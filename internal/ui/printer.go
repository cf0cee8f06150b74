package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects how list commands print their data
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" or "json", case-insensitive
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

// Printer writes UI components to a writer.
// Commands use it for everything they print to stdout.
type Printer struct {
	out    io.Writer
	width  int
	format Format
}

// NewPrinter creates a table-format Printer. If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		format: FormatTable,
	}
}

// WithFormat sets the output format
func (p *Printer) WithFormat(f Format) *Printer {
	p.format = f
	return p
}

// Format returns the output format
func (p *Printer) Format() Format {
	return p.format
}

// JSON reports whether machine-readable output was requested
func (p *Printer) JSON() bool {
	return p.format == FormatJSON
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box. Suppressed in JSON mode.
func (p *Printer) PrintHeader(title, command string, params ...Field) {
	if p.JSON() {
		return
	}
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Field) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Field) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintList prints data as JSON or t as a table depending on the format
func (p *Printer) PrintList(data any, t *Table) error {
	if p.JSON() {
		return p.PrintJSON(data)
	}
	if t.Empty() {
		p.Println(TableNoteStyle.Render("No results."))
		return nil
	}
	p.Print(t.Render())
	return nil
}
