package host

// Dispatcher receives the events the glue adapter raises. The production
// implementation lives in the host runtime; Recorder serves tests.
type Dispatcher interface {
	Raise(event string, args []Value) error
}

// RaisedEvent is one captured dispatch.
type RaisedEvent struct {
	Name string
	Args []Value
}

// Recorder is a Dispatcher that captures every raise in order.
type Recorder struct {
	Events []RaisedEvent
}

func (r *Recorder) Raise(event string, args []Value) error {
	r.Events = append(r.Events, RaisedEvent{Name: event, Args: args})
	return nil
}

// Named returns every captured event with the given name.
func (r *Recorder) Named(name string) []RaisedEvent {
	var out []RaisedEvent
	for _, ev := range r.Events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}
