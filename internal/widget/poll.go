package widget

import (
	"context"
	"log"
	"time"
)

// startPolling installs the poll loop for the current generation. There is
// never more than one active loop per widget: any previous loop is
// cancelled before the new one is installed (cancellation happens-before
// restart), so repeated open/close cycles cannot accumulate timers.
func (w *Widget) startPolling() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.stopPollingLocked()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelPoll = cancel
	gen := w.generation
	key := w.ensureKeyLocked()
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop(ctx, gen, key)
}

// stopPollingLocked cancels the active poll loop, if any, and nils the
// handle. Callers must hold w.mu.
func (w *Widget) stopPollingLocked() {
	if w.cancelPoll != nil {
		w.cancelPoll()
		w.cancelPoll = nil
	}
}

// pollLoop fetches once immediately, then once per interval until cancelled.
func (w *Widget) pollLoop(ctx context.Context, gen int, key string) {
	defer w.wg.Done()

	w.pollOnce(ctx, gen, key)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx, gen, key)
		}
	}
}

// pollOnce fetches the full message list and reconciles local state.
// Reconciliation is a replace, not a merge: the server list becomes the
// local list wholesale, so the client can never diverge from server-held
// history. An optimistic local entry may briefly render twice until the
// server echoes it back.
func (w *Widget) pollOnce(ctx context.Context, gen int, key string) {
	res, err := w.backend.Messages(ctx, key, w.limit)

	w.mu.Lock()
	if w.disposed || gen != w.generation {
		// Stale result: the panel was closed or polling restarted after
		// this fetch began. Never let it overwrite newer state.
		w.mu.Unlock()
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			w.mu.Unlock()
			return
		}
		// Transport failure: surface the fixed error text but keep the
		// previously rendered history.
		w.errText = backendErrorText
		w.mu.Unlock()
		w.notify()
		log.Printf("widget: poll messages: %v", err)
		return
	}
	w.errText = ""
	w.messages = res.Messages
	if res.Status.Known() {
		w.status = res.Status
	}
	w.mu.Unlock()
	w.notify()
}
