// Package preview decides when the local estimate must be superseded by
// the pricing backend before a booking is committed.
//
// The Machine is a synchronous reducer. Network calls happen outside it:
// Begin* hands out a Ticket, and Resolve*/Fail* only apply when the ticket
// still matches the inputs generation it was issued for.
package preview

// Status is the coarse machine state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPreviewing Status = "previewing"
	StatusPreviewed  Status = "previewed"
	StatusCommitting Status = "committing"
	StatusCommitted  Status = "committed"
)

// ActionKind labels the terminal control of the pricing step.
type ActionKind string

const (
	ActionPreview ActionKind = "preview"
	ActionConfirm ActionKind = "confirm"
	ActionBusy    ActionKind = "busy"
	ActionDone    ActionKind = "done"
)

// Action describes how the terminal control renders.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Enabled bool       `json:"enabled"`
}

// Ticket ties an in-flight request to the inputs it was built from.
type Ticket struct {
	generation uint64
	commit     bool
}

// Result is the verdict of a preview round trip.
type Result struct {
	Valid    bool
	Summary  Summary
	Errors   []Issue
	Warnings []Issue
}

// State is a read-only copy of the machine for views.
type State struct {
	Status     Status   `json:"status"`
	Valid      bool     `json:"valid"`
	Summary    *Summary `json:"summary,omitempty"`
	Errors     []Issue  `json:"errors,omitempty"`
	Warnings   []Issue  `json:"warnings,omitempty"`
	LastError  string   `json:"lastError,omitempty"`
	BookingID  string   `json:"bookingId,omitempty"`
	Generation uint64   `json:"generation"`
	Action     Action   `json:"action"`
}

// Machine is the preview/confirm state machine of one form session.
type Machine struct {
	status     Status
	generation uint64
	result     *Result
	lastError  string
	bookingID  string
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{status: StatusIdle}
}

// Status returns the current status.
func (m *Machine) Status() Status { return m.status }

// Locked reports whether inputs may no longer change: a commit is in
// flight or already done.
func (m *Machine) Locked() bool {
	return m.status == StatusCommitting || m.status == StatusCommitted
}

// InputsChanged discards any preview and returns to Idle. In-flight
// previews become stale. It is refused while Locked.
func (m *Machine) InputsChanged() bool {
	if m.Locked() {
		return false
	}
	m.generation++
	m.status = StatusIdle
	m.result = nil
	m.lastError = ""
	return true
}

// BeginPreview moves Idle to Previewing. Any other state refuses, which
// makes a second submit during Previewing a no-op.
func (m *Machine) BeginPreview() (Ticket, bool) {
	if m.status != StatusIdle {
		return Ticket{}, false
	}
	m.status = StatusPreviewing
	m.lastError = ""
	return Ticket{generation: m.generation}, true
}

// ResolvePreview applies a server verdict. Stale tickets are discarded
// and reported as false.
func (m *Machine) ResolvePreview(t Ticket, r Result) bool {
	if !m.current(t, false, StatusPreviewing) {
		return false
	}
	m.status = StatusPreviewed
	m.result = &r
	return true
}

// FailPreview returns to Idle after a transport failure so the user can
// submit again.
func (m *Machine) FailPreview(t Ticket, err error) bool {
	if !m.current(t, false, StatusPreviewing) {
		return false
	}
	m.status = StatusIdle
	m.lastError = errorText(err)
	return true
}

// BeginCommit moves a valid preview to Committing and returns the
// server-confirmed summary the commit must send.
func (m *Machine) BeginCommit() (Ticket, Summary, bool) {
	if m.status != StatusPreviewed || m.result == nil || !m.result.Valid {
		return Ticket{}, Summary{}, false
	}
	m.status = StatusCommitting
	m.lastError = ""
	return Ticket{generation: m.generation, commit: true}, m.result.Summary, true
}

// ResolveCommit records the created or updated booking.
func (m *Machine) ResolveCommit(t Ticket, bookingID string) bool {
	if !m.current(t, true, StatusCommitting) {
		return false
	}
	m.status = StatusCommitted
	m.bookingID = bookingID
	return true
}

// FailCommit keeps the confirmed preview so the user can retry.
func (m *Machine) FailCommit(t Ticket, err error) bool {
	if !m.current(t, true, StatusCommitting) {
		return false
	}
	m.status = StatusPreviewed
	m.lastError = errorText(err)
	return true
}

// Action derives the terminal control.
func (m *Machine) Action() Action {
	switch m.status {
	case StatusPreviewing, StatusCommitting:
		return Action{Kind: ActionBusy}
	case StatusPreviewed:
		if m.result != nil && m.result.Valid {
			return Action{Kind: ActionConfirm, Enabled: true}
		}
		return Action{Kind: ActionPreview}
	case StatusCommitted:
		return Action{Kind: ActionDone}
	default:
		return Action{Kind: ActionPreview, Enabled: true}
	}
}

// State snapshots the machine.
func (m *Machine) State() State {
	s := State{
		Status:     m.status,
		LastError:  m.lastError,
		BookingID:  m.bookingID,
		Generation: m.generation,
		Action:     m.Action(),
	}
	if m.result != nil {
		summary := m.result.Summary
		s.Valid = m.result.Valid
		s.Summary = &summary
		s.Errors = append([]Issue(nil), m.result.Errors...)
		s.Warnings = append([]Issue(nil), m.result.Warnings...)
	}
	return s
}

func (m *Machine) current(t Ticket, commit bool, want Status) bool {
	return m.status == want && t.commit == commit && t.generation == m.generation
}

func errorText(err error) string {
	if err == nil {
		return "request failed"
	}
	return err.Error()
}
