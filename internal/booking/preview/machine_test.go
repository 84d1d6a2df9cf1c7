package preview

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validResult() Result {
	return Result{Valid: true, Summary: Summary{GrandTotal: decimal.NewFromInt(270)}}
}

func TestIdleSubmitStartsPreview(t *testing.T) {
	m := NewMachine()
	if got := m.Action(); got != (Action{Kind: ActionPreview, Enabled: true}) {
		t.Fatalf("unexpected idle action %+v", got)
	}

	ticket, ok := m.BeginPreview()
	if !ok || m.Status() != StatusPreviewing {
		t.Fatalf("expected previewing, got %s", m.Status())
	}
	if got := m.Action(); got != (Action{Kind: ActionBusy}) {
		t.Fatalf("expected busy action, got %+v", got)
	}

	if _, again := m.BeginPreview(); again {
		t.Fatalf("second submit while previewing must be a no-op")
	}

	if !m.ResolvePreview(ticket, validResult()) {
		t.Fatalf("expected resolve to apply")
	}
	if got := m.Action(); got != (Action{Kind: ActionConfirm, Enabled: true}) {
		t.Fatalf("expected confirm action, got %+v", got)
	}
}

func TestInvalidPreviewBlocksSubmit(t *testing.T) {
	m := NewMachine()
	ticket, _ := m.BeginPreview()
	m.ResolvePreview(ticket, Result{Valid: false, Errors: []Issue{{Message: "vehicle unavailable"}}})

	if got := m.Action(); got != (Action{Kind: ActionPreview}) {
		t.Fatalf("invalid preview must keep a disabled preview action, got %+v", got)
	}
	if _, ok := m.BeginPreview(); ok {
		t.Fatalf("invalid preview must block a new preview until inputs change")
	}
	if _, _, ok := m.BeginCommit(); ok {
		t.Fatalf("invalid preview must block commit")
	}
	if st := m.State(); len(st.Errors) != 1 || st.Errors[0].Message != "vehicle unavailable" {
		t.Fatalf("errors must be kept verbatim, got %+v", st.Errors)
	}

	m.InputsChanged()
	if _, ok := m.BeginPreview(); !ok {
		t.Fatalf("changed inputs must allow a new preview")
	}
}

func TestInputsChangedResetsFromEveryUnlockedState(t *testing.T) {
	setups := map[string]func(*Machine){
		"idle":       func(*Machine) {},
		"previewing": func(m *Machine) { m.BeginPreview() },
		"valid": func(m *Machine) {
			tk, _ := m.BeginPreview()
			m.ResolvePreview(tk, validResult())
		},
		"invalid": func(m *Machine) {
			tk, _ := m.BeginPreview()
			m.ResolvePreview(tk, Result{Errors: []Issue{{Message: "x"}}})
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			m := NewMachine()
			setup(m)
			if !m.InputsChanged() {
				t.Fatalf("expected reset")
			}
			st := m.State()
			if st.Status != StatusIdle || st.Summary != nil || st.Valid {
				t.Fatalf("expected clean idle, got %+v", st)
			}
		})
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	m := NewMachine()
	stale, _ := m.BeginPreview()
	m.InputsChanged()

	if m.ResolvePreview(stale, validResult()) {
		t.Fatalf("stale response must be discarded")
	}
	if m.Status() != StatusIdle {
		t.Fatalf("stale response moved machine to %s", m.Status())
	}

	fresh, _ := m.BeginPreview()
	if m.ResolvePreview(stale, validResult()) {
		t.Fatalf("stale ticket must not resolve a newer preview")
	}
	if m.FailPreview(stale, errors.New("late failure")) {
		t.Fatalf("stale failure must be discarded")
	}
	if !m.ResolvePreview(fresh, validResult()) {
		t.Fatalf("fresh ticket must resolve")
	}
}

func TestFailedPreviewReturnsToIdle(t *testing.T) {
	m := NewMachine()
	ticket, _ := m.BeginPreview()
	m.FailPreview(ticket, errors.New("connection refused"))

	st := m.State()
	if st.Status != StatusIdle || st.LastError != "connection refused" {
		t.Fatalf("unexpected state %+v", st)
	}
	if _, ok := m.BeginPreview(); !ok {
		t.Fatalf("user must be able to submit again")
	}
}

func TestCommitLifecycle(t *testing.T) {
	m := NewMachine()
	tk, _ := m.BeginPreview()
	m.ResolvePreview(tk, validResult())

	commit, summary, ok := m.BeginCommit()
	if !ok || !summary.GrandTotal.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("expected confirmed summary, got %+v ok=%v", summary, ok)
	}
	if !m.Locked() || m.InputsChanged() {
		t.Fatalf("inputs must be locked while committing")
	}
	if _, _, again := m.BeginCommit(); again {
		t.Fatalf("second commit must be refused")
	}

	m.FailCommit(commit, errors.New("502"))
	if m.Status() != StatusPreviewed || m.Action().Kind != ActionConfirm {
		t.Fatalf("failed commit must keep the confirmed preview, got %s", m.Status())
	}

	commit, _, _ = m.BeginCommit()
	if !m.ResolveCommit(commit, "BK-1001") {
		t.Fatalf("expected commit to resolve")
	}
	st := m.State()
	if st.Status != StatusCommitted || st.BookingID != "BK-1001" || st.Action != (Action{Kind: ActionDone}) {
		t.Fatalf("unexpected committed state %+v", st)
	}
}

func TestPreviewTicketCannotResolveCommit(t *testing.T) {
	m := NewMachine()
	tk, _ := m.BeginPreview()
	m.ResolvePreview(tk, validResult())
	m.BeginCommit()

	if m.ResolveCommit(tk, "BK-1") {
		t.Fatalf("preview ticket must not resolve a commit")
	}
}
