package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinks(t *testing.T) {
	var a, b Recorder
	var warned []string
	s := Multi(&a, nil, &b, SinkFuncs{OnWarning: func(msg, path string) { warned = append(warned, path) }})
	s.FileProcessed("/x", true)
	s.Warning("w", "/y")
	s.Error("e", "/z")

	want := []Event{
		{Kind: EventFileProcessed, Path: "/x", OK: true},
		{Kind: EventWarning, Path: "/y", Message: "w"},
		{Kind: EventError, Path: "/z", Message: "e"},
	}
	assert.Equal(t, want, a.Events())
	assert.Equal(t, want, b.Events())
	assert.Equal(t, []string{"/y"}, warned)
	assert.Len(t, a.Of(EventError), 1)

	assert.NotPanics(t, func() {
		Discard.FileProcessed("/x", false)
		Discard.Error("e", "/x")
	})
}

func TestChanSink(t *testing.T) {
	ch := make(chan Event, 3)
	s := Chan(ch)
	s.FileProcessed("/a", false)
	s.Warning("w", "/b")
	s.Error("e", "/c")
	close(ch)
	var kinds []EventKind
	for e := range ch {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventFileProcessed, EventWarning, EventError}, kinds)
	assert.Equal(t, "warning", EventWarning.String())
}

func TestResultStatus(t *testing.T) {
	assert.Equal(t, StatusOK, Result{Processed: 2, Succeeded: 2}.Status())
	assert.Equal(t, StatusFilesFailed, Result{Failed: 1}.Status())
	assert.Equal(t, StatusErrors, Result{Failed: 1, Errors: 1}.Status())
	assert.Equal(t, StatusErrors, Result{Errors: 1}.Status())
}
