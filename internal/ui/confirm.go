package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt needs a terminal and none is attached
var ErrNotInteractive = errors.New("stdin is not a terminal")

// Prompter asks line-oriented questions. One Prompter should own its reader
// for the life of a command so buffered input is not lost between questions.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	width int
}

// NewPrompter creates a prompter reading from in and writing to out.
// Nil arguments default to os.Stdin and os.Stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{in: bufio.NewReader(in), out: out, width: GetTerminalWidth()}
}

// Confirm renders a summary box and asks a yes/no question.
// Anything other than "y" or "yes" (case-insensitive) declines, as does EOF.
func (p *Prompter) Confirm(title string, lines []Field) bool {
	body := []string{
		"",
		WarningTitleStyle.Render(fmt.Sprintf("   %s  CONFIRM  ─  %s", WarningMarker, title)),
		"",
	}
	for _, l := range lines {
		body = append(body, ResultKeyStyle.Render("   "+l.Key+":")+" "+ResultValueStyle.Render(l.Value))
	}
	body = append(body, "")

	_, _ = fmt.Fprintln(p.out, boxStyle(WarningColor, clampWidth(p.width)).Render(strings.Join(body, "\n")))
	_, _ = fmt.Fprintln(p.out)

	prompt := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	answer, err := p.Ask(prompt.Render("Proceed? [y/N]"))
	if err != nil {
		_, _ = fmt.Fprintln(p.out)
		return false
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}

	_, _ = fmt.Fprintln(p.out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}

// Ask prints label and reads one trimmed line
func (p *Prompter) Ask(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label+": ")
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prompts on stderr and reads a line from the terminal without echo
func ReadPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotInteractive
	}

	_, _ = fmt.Fprint(os.Stderr, HeaderParamKeyStyle.Render(label+": "))
	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}
