package widget

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/miniden/webchat/internal/client"
	"github.com/miniden/webchat/internal/models"
)

// ---------------------------------------------------------------------------
// Mock backend and helpers
// ---------------------------------------------------------------------------

type mockBackend struct {
	mu sync.Mutex

	startCalls int
	startKey   string
	startPage  string
	startRes   client.StartResult
	startErr   error

	msgCalls int
	msgRes   client.MessagesResult
	msgErr   error
	msgGate  chan struct{} // when set, Messages blocks until the gate closes

	sendCalls int
	sendKeys  []string
	sendTexts []string
	sendErr   error
}

func (m *mockBackend) StartSession(_ context.Context, sessionKey, page string) (client.StartResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	m.startKey = sessionKey
	m.startPage = page
	if m.startErr != nil {
		return client.StartResult{}, m.startErr
	}
	return m.startRes, nil
}

func (m *mockBackend) Messages(_ context.Context, sessionKey string, limit int) (client.MessagesResult, error) {
	m.mu.Lock()
	gate := m.msgGate
	m.msgCalls++
	res, err := m.msgRes, m.msgErr
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return client.MessagesResult{}, err
	}
	return res, nil
}

func (m *mockBackend) SendMessage(_ context.Context, sessionKey, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls++
	m.sendKeys = append(m.sendKeys, sessionKey)
	m.sendTexts = append(m.sendTexts, text)
	return m.sendErr
}

func (m *mockBackend) messageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msgCalls
}

func (m *mockBackend) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCalls
}

func (m *mockBackend) setMessages(res client.MessagesResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgRes = res
	m.msgErr = nil
}

// staticKeys is a KeySource returning a fixed key.
type staticKeys string

func (k staticKeys) EnsureSessionKey() string { return string(k) }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", d)
}

func newTestWidget(t *testing.T, backend *mockBackend, interval time.Duration) *Widget {
	t.Helper()
	w, err := New(Opts{
		Backend:      backend,
		Keys:         staticKeys("K"),
		Page:         "/catalog",
		PollInterval: interval,
	})
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}
	t.Cleanup(w.Dispose)
	return w
}

func serverMessages(texts ...string) []models.Message {
	msgs := make([]models.Message, len(texts))
	for i, txt := range texts {
		msgs[i] = models.Message{
			Sender:    models.SenderManager,
			Text:      txt,
			CreatedAt: time.Date(2026, 8, 25, 12, 0, i, 0, time.UTC),
		}
	}
	return msgs
}

// ---------------------------------------------------------------------------
// New tests
// ---------------------------------------------------------------------------

func TestNew_NilBackend(t *testing.T) {
	_, err := New(Opts{Keys: staticKeys("K")})
	if err == nil {
		t.Fatal("expected error for nil backend")
	}
}

func TestNew_NilKeys(t *testing.T) {
	_, err := New(Opts{Backend: &mockBackend{}})
	if err == nil {
		t.Fatal("expected error for nil key source")
	}
}

func TestNew_Defaults(t *testing.T) {
	w, err := New(Opts{Backend: &mockBackend{}, Keys: staticKeys("K")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", w.interval, DefaultPollInterval)
	}
	if w.limit != client.DefaultMessageLimit {
		t.Errorf("limit = %d, want %d", w.limit, client.DefaultMessageLimit)
	}
	st := w.Snapshot()
	if st.Mode != ModeFAQ || st.Phase != PhaseIdle {
		t.Errorf("initial state = %s/%s, want faq/idle", st.Mode, st.Phase)
	}
}

// ---------------------------------------------------------------------------
// OpenChat tests
// ---------------------------------------------------------------------------

func TestOpenChat_Handshake(t *testing.T) {
	backend := &mockBackend{
		startRes: client.StartResult{SessionID: 42, Status: models.StatusOpen},
	}
	w := newTestWidget(t, backend, time.Hour)

	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	if backend.startKey != "K" {
		t.Errorf("start session key = %q, want K", backend.startKey)
	}
	if backend.startPage != "/catalog" {
		t.Errorf("start page = %q, want /catalog", backend.startPage)
	}
	st := w.Snapshot()
	if st.Mode != ModeChat {
		t.Errorf("mode = %s, want chat", st.Mode)
	}
	if st.Phase != PhaseActive {
		t.Errorf("phase = %s, want active", st.Phase)
	}
	if st.SessionID != 42 {
		t.Errorf("session id = %d, want 42", st.SessionID)
	}
	if st.Status != models.StatusOpen {
		t.Errorf("status = %s, want open", st.Status)
	}

	// Entering chat mode issues one immediate fetch.
	waitFor(t, time.Second, func() bool { return backend.messageCalls() >= 1 })
}

func TestOpenChat_DefaultsMissingStatusToOpen(t *testing.T) {
	backend := &mockBackend{startRes: client.StartResult{SessionID: 7}}
	w := newTestWidget(t, backend, time.Hour)

	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("open chat: %v", err)
	}
	if st := w.Snapshot(); st.Status != models.StatusOpen {
		t.Errorf("status = %q, want open", st.Status)
	}
}

func TestOpenChat_StartFailure(t *testing.T) {
	backend := &mockBackend{startErr: fmt.Errorf("boom")}
	w := newTestWidget(t, backend, 10*time.Millisecond)

	err := w.OpenChat(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	st := w.Snapshot()
	if st.Phase != PhaseIdle {
		t.Errorf("phase = %s, want idle (no transition on failure)", st.Phase)
	}
	if st.Err == "" {
		t.Error("expected user-facing error text")
	}

	// No polling starts after a failed handshake.
	time.Sleep(50 * time.Millisecond)
	if n := backend.messageCalls(); n != 0 {
		t.Errorf("message calls after failed start = %d, want 0", n)
	}
}

func TestOpenChat_RetryClearsError(t *testing.T) {
	backend := &mockBackend{startErr: fmt.Errorf("boom")}
	w := newTestWidget(t, backend, time.Hour)

	if err := w.OpenChat(context.Background()); err == nil {
		t.Fatal("expected first open to fail")
	}

	backend.mu.Lock()
	backend.startErr = nil
	backend.startRes = client.StartResult{SessionID: 1, Status: models.StatusOpen}
	backend.mu.Unlock()

	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("retry open: %v", err)
	}
	st := w.Snapshot()
	if st.Err != "" {
		t.Errorf("error text not cleared on retry: %q", st.Err)
	}
	if st.Phase != PhaseActive {
		t.Errorf("phase = %s, want active", st.Phase)
	}
}

func TestOpenChat_Disposed(t *testing.T) {
	w := newTestWidget(t, &mockBackend{}, time.Hour)
	w.Dispose()
	if err := w.OpenChat(context.Background()); err != ErrDisposed {
		t.Fatalf("err = %v, want ErrDisposed", err)
	}
}

// ---------------------------------------------------------------------------
// SendMessage tests
// ---------------------------------------------------------------------------

func TestSendMessage_EmptyInputNoop(t *testing.T) {
	backend := &mockBackend{}
	w := newTestWidget(t, backend, time.Hour)

	for _, input := range []string{"", "   ", "\t\n"} {
		if err := w.SendMessage(context.Background(), input); err != nil {
			t.Fatalf("send %q: %v", input, err)
		}
	}
	time.Sleep(20 * time.Millisecond)
	if n := backend.sentCount(); n != 0 {
		t.Errorf("network sends = %d, want 0", n)
	}
	if n := len(w.Snapshot().Messages); n != 0 {
		t.Errorf("optimistic messages = %d, want 0", n)
	}
}

func TestSendMessage_OptimisticEcho(t *testing.T) {
	backend := &mockBackend{
		startRes: client.StartResult{SessionID: 1, Status: models.StatusOpen},
	}
	w := newTestWidget(t, backend, time.Hour)
	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("open chat: %v", err)
	}
	// Let the immediate post-handshake poll settle so its (empty) replace
	// cannot race with the optimistic append below.
	waitFor(t, time.Second, func() bool { return backend.messageCalls() >= 1 })

	if err := w.SendMessage(context.Background(), "Здравствуйте"); err != nil {
		t.Fatalf("send: %v", err)
	}

	// The local echo is visible immediately, before the POST completes.
	st := w.Snapshot()
	if len(st.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(st.Messages))
	}
	if st.Messages[0].Sender != models.SenderUser || st.Messages[0].Text != "Здравствуйте" {
		t.Errorf("optimistic message = %+v", st.Messages[0])
	}

	waitFor(t, time.Second, func() bool { return backend.sentCount() == 1 })
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.sendKeys[0] != "K" || backend.sendTexts[0] != "Здравствуйте" {
		t.Errorf("sent (%q, %q), want (K, Здравствуйте)", backend.sendKeys[0], backend.sendTexts[0])
	}
}

func TestSendMessage_FailureKeepsLocalEcho(t *testing.T) {
	backend := &mockBackend{sendErr: fmt.Errorf("boom")}
	w := newTestWidget(t, backend, time.Hour)

	if err := w.SendMessage(context.Background(), "привет"); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, time.Second, func() bool { return w.Snapshot().Err != "" })

	st := w.Snapshot()
	if len(st.Messages) != 1 {
		t.Errorf("messages = %d, want 1 (no rollback)", len(st.Messages))
	}
}

func TestSendMessage_ClosedSessionRejected(t *testing.T) {
	backend := &mockBackend{
		startRes: client.StartResult{SessionID: 1, Status: models.StatusClosed},
	}
	w := newTestWidget(t, backend, time.Hour)
	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	err := w.SendMessage(context.Background(), "ещё вопрос")
	if err != ErrSessionClosed {
		t.Fatalf("err = %v, want ErrSessionClosed", err)
	}
	time.Sleep(20 * time.Millisecond)
	if n := backend.sentCount(); n != 0 {
		t.Errorf("network sends = %d, want 0", n)
	}
	if n := len(w.Snapshot().Messages); n != 0 {
		t.Errorf("optimistic messages = %d, want 0", n)
	}
}

// ---------------------------------------------------------------------------
// Subscriber tests
// ---------------------------------------------------------------------------

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	backend := &mockBackend{
		startRes: client.StartResult{SessionID: 5, Status: models.StatusWaitingManager},
	}
	w := newTestWidget(t, backend, time.Hour)

	var mu sync.Mutex
	var states []State
	w.Subscribe(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	if err := w.OpenChat(context.Background()); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, st := range states {
			if st.Phase == PhaseActive && st.Status == models.StatusWaitingManager {
				return true
			}
		}
		return false
	})
}
