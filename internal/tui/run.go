package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Progress drives a progress line on a terminal from a background UI loop.
// Step may be called from the run loop; Finish stops the UI and waits for
// the final frame to be drawn.
type Progress struct {
	prog *tea.Program
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// StartProgress shows a progress line for total steps on out.
func StartProgress(out io.Writer, label string, total int) *Progress {
	p := &Progress{
		prog: tea.NewProgram(newModel(label, total), tea.WithOutput(out), tea.WithInput(nil)),
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.prog.Run(); err != nil {
			p.err = fmt.Errorf("error running progress view: %w", err)
		}
	}()
	return p
}

// Step advances the bar by one.
func (p *Progress) Step() { p.prog.Send(stepMsg{}) }

// Finish ends the UI loop and returns its error, if any.
func (p *Progress) Finish() error {
	p.once.Do(func() {
		p.prog.Send(doneMsg{})
		p.wg.Wait()
	})
	return p.err
}

// TextProgress returns a step function printing "\r[n/total] pct%" to w
// every tenth step and on the last one, for output that is not a terminal.
func TextProgress(w io.Writer, total int) func() {
	n := 0
	return func() {
		n++
		if total > 0 && (n%10 == 0 || n == total) {
			pct := float64(n) / float64(total) * 100
			_, _ = fmt.Fprintf(w, "\r[%d/%d] %.0f%%", n, total, pct)
			if n == total {
				_, _ = fmt.Fprintln(w)
			}
		}
	}
}
