package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// TextReporter prints run events one per line:
//
//	file successful: PATH
//	file unsuccessful: PATH
//	WARNING: MSG @ PATH
//	ERROR: MSG @ PATH
//
// It implements engine.Sink.
type TextReporter struct {
	W     io.Writer
	Level Level
	Color bool

	mu sync.Mutex
}

// NewTextReporter returns a reporter writing to w, colored when w is a
// terminal and noColor is unset.
func NewTextReporter(w io.Writer, level Level, noColor bool) *TextReporter {
	return &TextReporter{W: w, Level: level, Color: ColorEnabled(w, noColor)}
}

func (r *TextReporter) FileProcessed(path string, ok bool) {
	switch {
	case ok && r.Level >= LevelAll:
		r.printf("%s: %s\n", r.style(okStyle, "file successful"), path)
	case !ok && r.Level >= LevelErrors:
		r.printf("%s: %s\n", r.style(failStyle, "file unsuccessful"), path)
	}
}

func (r *TextReporter) Warning(msg, path string) {
	if r.Level >= LevelWarnings {
		r.printf("%s: %s @ %s\n", r.style(warnStyle, "WARNING"), msg, path)
	}
}

func (r *TextReporter) Error(msg, path string) {
	if r.Level >= LevelErrors {
		r.printf("%s: %s @ %s\n", r.style(errStyle, "ERROR"), msg, path)
	}
}

func (r *TextReporter) style(s lipgloss.Style, label string) string {
	if !r.Color {
		return label
	}
	return s.Render(label)
}

func (r *TextReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.W, format, args...)
}

// ColorEnabled reports whether output to w should be colored: never with
// noColor or NO_COLOR set, otherwise only when w is a terminal.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
