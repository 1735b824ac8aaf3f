// Package session implements the chat-session state machine: one
// conversation at a time, bound to a single event snapshot, with strictly
// ordered message appends and a stale-response guard for asynchronous
// replies.
package session

import (
	"fmt"
	"strings"

	"polyterm/internal/domain"
)

// ErrorReply is the assistant message appended when a chat send fails. The
// session stays usable; the user may simply retry.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// State describes where the active session (if any) is in its lifecycle.
type State int

const (
	// Idle: no session is open.
	Idle State = iota
	// Initialized: a session is open and ready to accept a message.
	Initialized
	// AwaitingResponse: a user message is appended and its request is
	// outstanding; further sends are ignored until it resolves.
	AwaitingResponse
)

// Request is the outbound chat call the caller must execute after a
// successful Send. It carries the session generation so the eventual result
// can be matched against the session that issued it.
type Request struct {
	Generation uint64
	EventID    string
	Messages   []domain.Message
}

// Manager owns the lifecycle of the active chat session. All methods are
// meant to be called from a single goroutine (the UI update loop); async
// results re-enter through Resolve/Fail with their generation tag.
type Manager struct {
	gen    uint64
	event  domain.Event
	msgs   []domain.Message
	active bool
	busy   bool
}

// NewManager creates a Manager with no active session.
func NewManager() *Manager {
	return &Manager{}
}

// Open starts a fresh session for the given event, replacing any active one.
// The prior session's messages are discarded, never merged, and any reply
// still in flight for it becomes stale. The new session holds an immutable
// snapshot of the event and exactly one seeded assistant greeting.
func (m *Manager) Open(ev domain.Event) {
	m.gen++
	m.event = ev
	m.active = true
	m.busy = false
	m.msgs = []domain.Message{{
		Role:    domain.RoleAssistant,
		Content: fmt.Sprintf("I'm ready to analyze \"%s\". What would you like to know about this event?", ev.Title),
	}}
}

// Close tears down the active session and returns to Idle. Closing with no
// active session is a no-op.
func (m *Manager) Close() {
	if !m.active {
		return
	}
	m.gen++
	m.active = false
	m.busy = false
	m.event = domain.Event{}
	m.msgs = nil
}

// Send appends a user message and returns the request to execute. It
// reports false — leaving all state untouched — when the text is blank
// after trimming, no session is active, or a request is already
// outstanding. A rejected send is silent by contract: input while busy is
// ignored, not queued.
func (m *Manager) Send(text string) (Request, bool) {
	if strings.TrimSpace(text) == "" || !m.active || m.busy {
		return Request{}, false
	}

	m.msgs = append(m.msgs, domain.Message{Role: domain.RoleUser, Content: text})
	m.busy = true

	history := make([]domain.Message, len(m.msgs))
	copy(history, m.msgs)

	return Request{
		Generation: m.gen,
		EventID:    m.event.ID,
		Messages:   history,
	}, true
}

// Resolve applies a successful reply for the request tagged gen. It appends
// exactly one assistant message and clears the busy flag. Replies whose
// generation no longer matches the active session are discarded; it reports
// whether the reply was applied.
func (m *Manager) Resolve(gen uint64, content string) bool {
	if !m.applies(gen) {
		return false
	}
	m.msgs = append(m.msgs, domain.Message{Role: domain.RoleAssistant, Content: content})
	m.busy = false
	return true
}

// Fail applies a failed send for the request tagged gen, appending the
// fixed error reply. The session is not torn down. Stale failures are
// discarded like stale replies.
func (m *Manager) Fail(gen uint64) bool {
	if !m.applies(gen) {
		return false
	}
	m.msgs = append(m.msgs, domain.Message{Role: domain.RoleAssistant, Content: ErrorReply})
	m.busy = false
	return true
}

// applies reports whether a result for generation gen belongs to the
// session currently awaiting one.
func (m *Manager) applies(gen uint64) bool {
	return m.active && m.busy && gen == m.gen
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	switch {
	case !m.active:
		return Idle
	case m.busy:
		return AwaitingResponse
	default:
		return Initialized
	}
}

// Active reports whether a session is open.
func (m *Manager) Active() bool {
	return m.active
}

// Busy reports whether a request is outstanding.
func (m *Manager) Busy() bool {
	return m.busy
}

// Event returns the snapshot of the event this session is bound to. The
// second return is false when no session is active.
func (m *Manager) Event() (domain.Event, bool) {
	return m.event, m.active
}

// Messages returns the session transcript in append order. The slice is
// owned by the Manager; callers must treat it as read-only.
func (m *Manager) Messages() []domain.Message {
	return m.msgs
}
