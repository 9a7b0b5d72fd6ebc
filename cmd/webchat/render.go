package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/miniden/webchat/internal/models"
	"github.com/miniden/webchat/internal/widget"
)

// statusBanner maps a session status to its user-facing banner, matching
// the strings the web widget shows.
func statusBanner(s models.SessionStatus) string {
	switch s {
	case models.StatusOpen:
		return "Мы на связи..."
	case models.StatusWaitingManager:
		return "Ожидаем оператора..."
	case models.StatusClosed:
		return "Чат закрыт"
	}
	return ""
}

// senderLabel maps a message sender to its display label.
func senderLabel(s models.Sender) string {
	switch s {
	case models.SenderUser:
		return "Вы"
	case models.SenderManager:
		return "Оператор"
	case models.SenderSystem:
		return "Система"
	}
	return string(s)
}

// formatMessage renders one chat line: "[15:04] Вы: текст".
func formatMessage(m models.Message) string {
	return fmt.Sprintf("[%s] %s: %s", m.CreatedAt.Format("15:04"), senderLabel(m.Sender), m.Text)
}

// chatRenderer is the widget subscriber for the terminal. It prints deltas:
// new messages beyond what was already shown, status banner changes, and
// error text transitions (with the permanent Telegram escape hatch).
type chatRenderer struct {
	out    io.Writer
	tgLink string

	mu      sync.Mutex
	printed int
	status  models.SessionStatus
	lastErr string
}

func newChatRenderer(out io.Writer, tgLink string) *chatRenderer {
	return &chatRenderer{out: out, tgLink: tgLink}
}

// Render consumes one widget state snapshot.
func (r *chatRenderer) Render(st widget.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st.Status != r.status && st.Status != "" {
		fmt.Fprintf(r.out, "— %s\n", statusBanner(st.Status))
		r.status = st.Status
	}

	// Reconciliation replaces the whole list; if the server history is
	// shorter than what we printed, start over from its beginning.
	if len(st.Messages) < r.printed {
		r.printed = 0
	}
	for _, m := range st.Messages[r.printed:] {
		fmt.Fprintln(r.out, formatMessage(m))
	}
	r.printed = len(st.Messages)

	if st.Err != "" && st.Err != r.lastErr {
		fmt.Fprintf(r.out, "! %s\n", st.Err)
		if r.tgLink != "" {
			fmt.Fprintf(r.out, "  Связаться в Telegram: %s\n", r.tgLink)
		}
	}
	r.lastErr = st.Err
}
