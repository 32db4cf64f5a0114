// pkg/runstate/runstate.go

// Package runstate names the states a report run passes through.
package runstate

// State is one step of a run.
type State string

const (
	Fetching        State = "FETCHING"
	FetchFailed     State = "FETCH_FAILED"
	Fetched         State = "FETCHED"
	Serializing     State = "SERIALIZING"
	SerializeFailed State = "SERIALIZE_FAILED"
	FilesWritten    State = "FILES_WRITTEN"
	Sending         State = "SENDING"
	SendFailed      State = "SEND_FAILED"
	Sent            State = "SENT"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case FetchFailed, SerializeFailed, SendFailed, Sent:
		return true
	}
	return false
}

// Failed reports whether s is a terminal failure.
func (s State) Failed() bool {
	return s == FetchFailed || s == SerializeFailed || s == SendFailed
}

var transitions = map[State][]State{
	Fetching:     {FetchFailed, Fetched},
	Fetched:      {Serializing},
	Serializing:  {SerializeFailed, FilesWritten},
	FilesWritten: {Sending},
	Sending:      {SendFailed, Sent},
}

// Trail records the states of one run in order.
type Trail []State

// Current is the last recorded state, or "" for an empty trail.
func (t Trail) Current() State {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

// Advance appends next, panicking on a transition the run cannot take.
func (t *Trail) Advance(next State) {
	if cur := t.Current(); cur != "" && !allowed(cur, next) {
		panic("runstate: invalid transition " + string(cur) + " -> " + string(next))
	}
	*t = append(*t, next)
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
