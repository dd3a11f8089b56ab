package engine

import "sync"

// Sink receives run events. Implementations must not panic.
type Sink interface {
	// FileProcessed reports the outcome for one candidate. In updating modes
	// ok means the entry was written; in verify mode it means the digest
	// matched.
	FileProcessed(path string, ok bool)
	Warning(msg, path string)
	Error(msg, path string)
}

// SinkFuncs adapts optional callbacks to a Sink. A nil field drops the event.
type SinkFuncs struct {
	OnFileProcessed func(path string, ok bool)
	OnWarning       func(msg, path string)
	OnError         func(msg, path string)
}

func (s SinkFuncs) FileProcessed(path string, ok bool) {
	if s.OnFileProcessed != nil {
		s.OnFileProcessed(path, ok)
	}
}

func (s SinkFuncs) Warning(msg, path string) {
	if s.OnWarning != nil {
		s.OnWarning(msg, path)
	}
}

func (s SinkFuncs) Error(msg, path string) {
	if s.OnError != nil {
		s.OnError(msg, path)
	}
}

// Discard drops every event.
var Discard Sink = SinkFuncs{}

type multiSink []Sink

// Multi fans events out to every sink in order.
func Multi(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) FileProcessed(path string, ok bool) {
	for _, s := range m {
		s.FileProcessed(path, ok)
	}
}

func (m multiSink) Warning(msg, path string) {
	for _, s := range m {
		s.Warning(msg, path)
	}
}

func (m multiSink) Error(msg, path string) {
	for _, s := range m {
		s.Error(msg, path)
	}
}

// EventKind tells the variants of Event apart.
type EventKind int

const (
	EventFileProcessed EventKind = iota
	EventWarning
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventFileProcessed:
		return "processed"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one sink call captured as a value.
type Event struct {
	Kind    EventKind `json:"kind"`
	Path    string    `json:"path"`
	Message string    `json:"message,omitempty"`
	OK      bool      `json:"ok,omitempty"`
}

// Chan returns a Sink that sends every event on ch. Sends block, so the
// caller must drain ch while the operation runs.
func Chan(ch chan<- Event) Sink { return chanSink(ch) }

type chanSink chan<- Event

func (c chanSink) FileProcessed(path string, ok bool) {
	c <- Event{Kind: EventFileProcessed, Path: path, OK: ok}
}
func (c chanSink) Warning(msg, path string) { c <- Event{Kind: EventWarning, Path: path, Message: msg} }
func (c chanSink) Error(msg, path string)   { c <- Event{Kind: EventError, Path: path, Message: msg} }

// Recorder keeps every event in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) FileProcessed(path string, ok bool) {
	r.add(Event{Kind: EventFileProcessed, Path: path, OK: ok})
}
func (r *Recorder) Warning(msg, path string) { r.add(Event{Kind: EventWarning, Path: path, Message: msg}) }
func (r *Recorder) Error(msg, path string)   { r.add(Event{Kind: EventError, Path: path, Message: msg}) }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Of returns the recorded events of one kind.
func (r *Recorder) Of(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// tally counts events on their way to the caller's sink.
type tally struct {
	next Sink
	res  *Result
}

func (t tally) FileProcessed(path string, ok bool) {
	t.res.Processed++
	if ok {
		t.res.Succeeded++
	} else {
		t.res.Failed++
	}
	t.next.FileProcessed(path, ok)
}

func (t tally) Warning(msg, path string) {
	t.res.Warnings++
	t.next.Warning(msg, path)
}

func (t tally) Error(msg, path string) {
	t.res.Errors++
	t.next.Error(msg, path)
}
