package session

import (
	"strings"
	"testing"

	"polyterm/internal/domain"
)

func openTestSession(m *Manager) {
	m.Open(domain.Event{ID: "e1", Title: "Will X happen?"})
}

func TestOpenSeedsGreeting(t *testing.T) {
	m := NewManager()
	openTestSession(m)

	if m.State() != Initialized {
		t.Fatalf("State = %v, want Initialized", m.State())
	}
	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(msgs))
	}
	if msgs[0].Role != domain.RoleAssistant {
		t.Errorf("greeting role = %q, want assistant", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "Will X happen?") {
		t.Errorf("greeting %q should reference the event title", msgs[0].Content)
	}
}

func TestOpenReplacesPriorSession(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	m.Send("first question")

	m.Open(domain.Event{ID: "e2", Title: "Other event"})

	if len(m.Messages()) != 1 {
		t.Errorf("replacement session should start with just the greeting, got %d messages", len(m.Messages()))
	}
	if m.Busy() {
		t.Error("replacement session should not inherit busy state")
	}
	ev, ok := m.Event()
	if !ok || ev.ID != "e2" {
		t.Errorf("bound event = %+v, want e2", ev)
	}
}

func TestSendAppendsAndGates(t *testing.T) {
	m := NewManager()
	openTestSession(m)

	req, ok := m.Send("hello")
	if !ok {
		t.Fatal("Send should succeed on an initialized session")
	}
	if m.State() != AwaitingResponse {
		t.Errorf("State = %v, want AwaitingResponse", m.State())
	}
	msgs := m.Messages()
	if len(msgs) != 2 || msgs[1].Role != domain.RoleUser || msgs[1].Content != "hello" {
		t.Errorf("user message not appended: %+v", msgs)
	}
	if req.EventID != "e1" {
		t.Errorf("req.EventID = %q, want e1", req.EventID)
	}
	if len(req.Messages) != 2 || req.Messages[1].Content != "hello" {
		t.Errorf("request history = %+v, want greeting + user message", req.Messages)
	}

	// A second send while awaiting is a no-op, not a queue.
	if _, ok := m.Send("again"); ok {
		t.Error("Send while AwaitingResponse should be rejected")
	}
	if len(m.Messages()) != 2 {
		t.Errorf("rejected send mutated the transcript: %d messages", len(m.Messages()))
	}
}

func TestSendRejectsBlankAndIdle(t *testing.T) {
	m := NewManager()

	if _, ok := m.Send("hello"); ok {
		t.Error("Send with no session should be rejected")
	}

	openTestSession(m)
	if _, ok := m.Send("   \t  "); ok {
		t.Error("Send with whitespace-only text should be rejected")
	}
	if len(m.Messages()) != 1 {
		t.Errorf("rejected send mutated the transcript: %d messages", len(m.Messages()))
	}
}

func TestResolveAppendsReply(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	req, _ := m.Send("hello")

	if !m.Resolve(req.Generation, "42% likely") {
		t.Fatal("Resolve with matching generation should apply")
	}
	msgs := m.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(msgs))
	}
	if msgs[2].Role != domain.RoleAssistant || msgs[2].Content != "42% likely" {
		t.Errorf("reply = %+v, want assistant 42%% likely verbatim", msgs[2])
	}
	if m.Busy() {
		t.Error("busy flag should clear after Resolve")
	}
	if m.State() != Initialized {
		t.Errorf("State = %v, want Initialized", m.State())
	}
}

func TestFailAppendsErrorReply(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	req, _ := m.Send("hello")

	if !m.Fail(req.Generation) {
		t.Fatal("Fail with matching generation should apply")
	}
	msgs := m.Messages()
	if msgs[len(msgs)-1].Content != ErrorReply {
		t.Errorf("last message = %q, want the fixed error reply", msgs[len(msgs)-1].Content)
	}
	if m.Busy() {
		t.Error("busy flag should clear after Fail")
	}

	// The session survives a failure and accepts a retry.
	if _, ok := m.Send("retry"); !ok {
		t.Error("session should accept a retry after a failure")
	}
}

func TestStaleReplyAfterClose(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	req, _ := m.Send("hello")

	m.Close()

	if m.Resolve(req.Generation, "too late") {
		t.Error("reply arriving after Close must not apply")
	}
	if m.State() != Idle {
		t.Errorf("State = %v, want Idle", m.State())
	}
	if len(m.Messages()) != 0 {
		t.Errorf("closed session retained messages: %+v", m.Messages())
	}
}

func TestStaleReplyAfterReopen(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	req, _ := m.Send("hello")

	// A different event is analyzed before the reply lands.
	m.Open(domain.Event{ID: "e2", Title: "Other event"})

	if m.Resolve(req.Generation, "from the old session") {
		t.Error("reply for a superseded session must not apply")
	}
	if m.Fail(req.Generation) {
		t.Error("failure for a superseded session must not apply")
	}
	if len(m.Messages()) != 1 {
		t.Errorf("new session transcript polluted: %+v", m.Messages())
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := NewManager()

	m.Close()
	if m.State() != Idle {
		t.Errorf("State = %v, want Idle", m.State())
	}

	openTestSession(m)
	m.Close()
	m.Close()
	if m.State() != Idle {
		t.Errorf("State after double close = %v, want Idle", m.State())
	}
}

func TestReopenStartsFreshHistory(t *testing.T) {
	m := NewManager()
	openTestSession(m)
	req, _ := m.Send("hello")
	m.Resolve(req.Generation, "reply")
	m.Close()

	openTestSession(m)
	if len(m.Messages()) != 1 {
		t.Errorf("reopened session should have a fresh greeting only, got %d messages", len(m.Messages()))
	}
}
