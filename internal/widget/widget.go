// Package widget implements the support chat widget engine: session
// handshake, message polling with server-authoritative reconciliation,
// optimistic sends, and the FAQ/chat mode switch. Rendering is decoupled:
// the engine holds pure state and pushes snapshots to subscribers.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/miniden/webchat/internal/client"
	"github.com/miniden/webchat/internal/models"
)

// DefaultPollInterval matches the web widget's 4-second message poll.
const DefaultPollInterval = 4 * time.Second

// backendErrorText is the fixed user-facing string rendered on any
// transport failure. Detailed errors go to the log, never to the user.
const backendErrorText = "Не удалось связаться с сервером. Попробуйте позже."

// Mode is the widget panel's display state. Only chat mode polls.
type Mode string

const (
	ModeFAQ  Mode = "faq"
	ModeChat Mode = "chat"
)

// SessionPhase tracks the client-side handshake lifecycle. Once the phase
// reaches active, the server-reported SessionStatus takes over.
type SessionPhase string

const (
	PhaseIdle    SessionPhase = "idle"
	PhasePending SessionPhase = "pending"
	PhaseActive  SessionPhase = "active"
)

// Sentinel errors returned by lifecycle methods.
var (
	ErrDisposed      = errors.New("widget: disposed")
	ErrSessionClosed = errors.New("widget: session is closed")
)

// Backend is the subset of the webchat API the widget consumes.
// *client.Client satisfies it; tests substitute a mock.
type Backend interface {
	StartSession(ctx context.Context, sessionKey, page string) (client.StartResult, error)
	Messages(ctx context.Context, sessionKey string, limit int) (client.MessagesResult, error)
	SendMessage(ctx context.Context, sessionKey, text string) error
}

// KeySource hands out the persisted client session key.
type KeySource interface {
	EnsureSessionKey() string
}

// State is an immutable snapshot of the widget pushed to subscribers.
type State struct {
	Mode      Mode
	Phase     SessionPhase
	Status    models.SessionStatus // empty until the handshake completes
	SessionID int64
	Messages  []models.Message
	Err       string // fixed user-facing error text, empty when healthy
}

// Widget is a single widget instance. All mutable fields live here, not in
// package-level state, so independent instances can coexist.
type Widget struct {
	backend  Backend
	keys     KeySource
	page     string
	interval time.Duration
	limit    int

	mu         sync.Mutex
	mode       Mode
	phase      SessionPhase
	status     models.SessionStatus
	sessionID  int64
	messages   []models.Message
	errText    string
	sessionKey string
	subs       []func(State)

	// generation invalidates in-flight fetch results: it is bumped on every
	// panel close, mode switch, and dispose, and every async result is
	// applied only if the generation it started under still matches.
	generation int
	cancelPoll context.CancelFunc
	disposed   bool

	wg sync.WaitGroup // poll loop + async sends
}

// Opts holds parameters for creating a Widget.
type Opts struct {
	Backend      Backend
	Keys         KeySource
	Page         string        // host page reported to /start; may be empty
	PollInterval time.Duration // defaults to DefaultPollInterval
	MessageLimit int           // defaults to client.DefaultMessageLimit
	OnState      func(State)   // optional initial subscriber
}

// New creates a Widget in FAQ mode with an idle session.
func New(opts Opts) (*Widget, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("widget: backend is required")
	}
	if opts.Keys == nil {
		return nil, fmt.Errorf("widget: key source is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	limit := opts.MessageLimit
	if limit <= 0 {
		limit = client.DefaultMessageLimit
	}
	w := &Widget{
		backend:  opts.Backend,
		keys:     opts.Keys,
		page:     opts.Page,
		interval: interval,
		limit:    limit,
		mode:     ModeFAQ,
		phase:    PhaseIdle,
	}
	if opts.OnState != nil {
		w.subs = append(w.subs, opts.OnState)
	}
	return w, nil
}

// Subscribe registers fn to receive state snapshots after every mutation.
func (w *Widget) Subscribe(fn func(State)) {
	w.mu.Lock()
	w.subs = append(w.subs, fn)
	w.mu.Unlock()
}

// Snapshot returns a copy of the current widget state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() State {
	msgs := make([]models.Message, len(w.messages))
	copy(msgs, w.messages)
	return State{
		Mode:      w.mode,
		Phase:     w.phase,
		Status:    w.status,
		SessionID: w.sessionID,
		Messages:  msgs,
		Err:       w.errText,
	}
}

// notify snapshots the state and delivers it to all subscribers outside
// the lock.
func (w *Widget) notify() {
	w.mu.Lock()
	st := w.snapshotLocked()
	subs := make([]func(State), len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

// ensureKeyLocked resolves the session key once per instance. Callers must
// hold w.mu.
func (w *Widget) ensureKeyLocked() string {
	if w.sessionKey == "" {
		w.sessionKey = w.keys.EnsureSessionKey()
	}
	return w.sessionKey
}
