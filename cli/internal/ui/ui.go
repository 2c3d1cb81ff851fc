// Package ui renders CLI output: styled messages, tables, markdown and
// prompts.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	InfoColor      = lipgloss.Color("#00D9FF")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	silent bool
)

// SetOutput redirects regular and error output. Nil writers restore
// os.Stdout and os.Stderr.
func SetOutput(stdout, stderr io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	out, errOut = stdout, stderr
}

// SetSilent suppresses everything except errors and data output
func SetSilent(s bool) {
	mu.Lock()
	defer mu.Unlock()
	silent = s
}

// Silent reports whether chatter is suppressed
func Silent() bool {
	mu.Lock()
	defer mu.Unlock()
	return silent
}

// Out returns the regular output writer
func Out() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

func say(s string) {
	mu.Lock()
	w, quiet := out, silent
	mu.Unlock()
	if !quiet {
		fmt.Fprintln(w, s)
	}
}

// PrintHeader prints the command title
func PrintHeader(title string, subtitle string) {
	say(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title),
		SecondaryStyle.Render(subtitle),
	) + "\n")
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	say(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message. Errors are printed in silent mode.
func PrintError(format string, args ...interface{}) {
	mu.Lock()
	w := errOut
	mu.Unlock()
	fmt.Fprintln(w, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	say(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	say(InfoStyle.Render("ℹ " + fmt.Sprintf(format, args...)))
}

// PrintStep prints a step indicator
func PrintStep(step int, total int, message string) {
	stepStyle := lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Render(fmt.Sprintf("[%d/%d]", step, total))
	say(fmt.Sprintf("%s %s", stepStyle, message))
}

// PrintSQL prints a statement indented under the current step
func PrintSQL(sql string) {
	lines := strings.Split(sql, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	say(SecondaryStyle.Render(strings.Join(lines, "\n")))
}

// PrintTable prints a table using pterm. Tables are data and are printed
// in silent mode.
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out(), s)
	return err
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	if Silent() {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	rendered, err := r.Render(content)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(Out(), rendered)
	return err
}

// Spinner shows progress on a terminal. It does nothing in silent mode.
type Spinner struct {
	p *pterm.SpinnerPrinter
}

// StartSpinner starts a spinner with message
func StartSpinner(message string) *Spinner {
	if Silent() {
		return &Spinner{}
	}
	p, err := pterm.DefaultSpinner.WithWriter(Out()).WithRemoveWhenDone(true).Start(message)
	if err != nil {
		return &Spinner{}
	}
	return &Spinner{p: p}
}

// Stop removes the spinner
func (s *Spinner) Stop() {
	if s.p != nil {
		_ = s.p.Stop()
	}
}

// DirectionColor returns the printer used for a migration direction
func DirectionColor(direction string) *color.Color {
	if direction == "down" {
		return color.New(color.FgYellow, color.Bold)
	}
	return color.New(color.FgGreen, color.Bold)
}

// StateColor returns the printer used for a version state
func StateColor(state string) *color.Color {
	switch state {
	case "applied":
		return color.New(color.FgGreen)
	case "pending":
		return color.New(color.FgCyan)
	case "reverted":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// Confirm asks a yes/no question on the terminal
var Confirm = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

// Select asks the user to pick one of options
var Select = func(message string, options []string, def string) (string, error) {
	answer := def
	err := survey.AskOne(&survey.Select{Message: message, Options: options, Default: def}, &answer)
	return answer, err
}

// Input asks for a line of text
var Input = func(message, def string) (string, error) {
	answer := def
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}
