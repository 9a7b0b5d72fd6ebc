package models

import "time"

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderManager Sender = "manager"
	SenderSystem  Sender = "system"
)

// Message is a single chat message as returned by the webchat backend.
// Messages are append-only: the client never mutates or deletes entries,
// and ordering follows created_at as the server returns it.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
