package widget

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miniden/webchat/internal/models"
)

// OpenChat switches the widget to chat mode and performs the session
// handshake (POST /start, create-or-resume). On success it starts the poll
// loop: one immediate fetch, then one fetch per interval.
//
// On handshake failure the widget reverts to its previous phase, renders
// the fixed error text, and does not poll. Retry is implicit in the next
// user action (send attempt or panel reopen), never automatic.
func (w *Widget) OpenChat(ctx context.Context) error {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return ErrDisposed
	}
	w.mode = ModeChat
	prevPhase := w.phase
	w.phase = PhasePending
	w.errText = ""
	key := w.ensureKeyLocked()
	gen := w.generation
	w.mu.Unlock()
	w.notify()

	res, err := w.backend.StartSession(ctx, key, w.page)

	w.mu.Lock()
	if w.disposed || gen != w.generation {
		// Panel was closed while the handshake was in flight; drop the result.
		w.mu.Unlock()
		return nil
	}
	if err != nil {
		w.phase = prevPhase
		w.errText = backendErrorText
		w.mu.Unlock()
		w.notify()
		log.Printf("widget: start session: %v", err)
		return fmt.Errorf("widget: start session: %w", err)
	}
	w.phase = PhaseActive
	w.sessionID = res.SessionID
	w.status = res.Status
	if w.status == "" {
		// Optimistic initialization: a fresh session with no reported
		// status is treated as open.
		w.status = models.StatusOpen
	}
	w.mu.Unlock()
	w.notify()

	w.startPolling()
	return nil
}

// SendMessage submits a user message. Empty or whitespace-only input is a
// no-op: no optimistic entry, no network call. Otherwise the message is
// appended locally and subscribers notified before the POST fires on a
// goroutine, so rendering never waits on the network. On POST failure the
// error text is set and the optimistic entry stays; the next successful
// poll replaces local state with the server's history either way.
//
// Sending on a closed session is rejected with ErrSessionClosed before
// any network call.
func (w *Widget) SendMessage(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return ErrDisposed
	}
	if w.status == models.StatusClosed {
		w.mu.Unlock()
		return ErrSessionClosed
	}
	key := w.ensureKeyLocked()
	gen := w.generation
	w.messages = append(w.messages, models.Message{
		Sender:    models.SenderUser,
		Text:      trimmed,
		CreatedAt: time.Now(),
	})
	w.mu.Unlock()
	w.notify()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.backend.SendMessage(ctx, key, trimmed); err != nil {
			log.Printf("widget: send message: %v", err)
			w.mu.Lock()
			if w.disposed || gen != w.generation {
				w.mu.Unlock()
				return
			}
			w.errText = backendErrorText
			w.mu.Unlock()
			w.notify()
		}
	}()
	return nil
}

// SwitchToFAQ reverts the panel to FAQ mode and stops polling. Chat history
// and session state are kept for the next OpenChat.
func (w *Widget) SwitchToFAQ() {
	w.mu.Lock()
	w.mode = ModeFAQ
	w.generation++
	w.stopPollingLocked()
	w.mu.Unlock()
	w.notify()
}

// ClosePanel stops polling and invalidates in-flight fetches. The session
// itself is untouched: reopening the panel resumes it via /start.
func (w *Widget) ClosePanel() {
	w.mu.Lock()
	w.generation++
	w.stopPollingLocked()
	w.mu.Unlock()
}

// Dispose permanently shuts the widget down and waits for background work
// to finish. Further lifecycle calls return ErrDisposed.
func (w *Widget) Dispose() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.disposed = true
	w.generation++
	w.stopPollingLocked()
	w.mu.Unlock()
	w.wg.Wait()
}
