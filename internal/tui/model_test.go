package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func step(m tea.Model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModel_Steps(t *testing.T) {
	m := newModel("verify", 3)
	m = step(m, stepMsg{})
	m = step(m, stepMsg{})
	assert.Equal(t, 2, m.done)
	assert.InDelta(t, 2.0/3.0, m.percent(), 1e-9)
	assert.Contains(t, m.View(), "[2/3]")
	assert.Contains(t, m.View(), "verify")

	// never runs past total
	m = step(m, stepMsg{})
	m = step(m, stepMsg{})
	assert.Equal(t, 3, m.done)
}

func TestModel_DoneQuits(t *testing.T) {
	m := newModel("update", 1)
	next, cmd := m.Update(doneMsg{})
	assert.True(t, next.(model).quit)
	assert.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestModel_EmptyTotal(t *testing.T) {
	assert.Equal(t, 1.0, newModel("x", 0).percent())
}

func TestModel_WindowResize(t *testing.T) {
	m := step(newModel("verify", 1), tea.WindowSizeMsg{Width: 200})
	assert.Equal(t, 60, m.bar.Width)
	m = step(m, tea.WindowSizeMsg{Width: 20})
	assert.Equal(t, 60, m.bar.Width)
}

func TestTextProgress(t *testing.T) {
	var buf bytes.Buffer
	f := TextProgress(&buf, 12)
	for i := 0; i < 12; i++ {
		f()
	}
	out := buf.String()
	assert.Contains(t, out, "\r[10/12] 83%")
	assert.True(t, strings.HasSuffix(out, "\r[12/12] 100%\n"))
}
