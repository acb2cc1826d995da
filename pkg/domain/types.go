package domain

import "time"

// ChatMode selects the scripted reply for a chat request.
type ChatMode string

const (
	// ModeEbook streams the staged ebook-generation script.
	ModeEbook ChatMode = "ebook"
)

// ChatTurn is one prior exchange in a conversation. Ephemeral; accepted as
// request input and never persisted.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. Message must be non-empty after
// trimming. Unrecognized modes fall back to the generic reply.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
	Mode    ChatMode   `json:"mode,omitempty"`
}

// EbookDraft is a persisted ebook draft. Title is the natural key: saving a
// draft with an existing title overwrites that document in place. UpdatedAt
// is stamped by the server on every save.
type EbookDraft struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Style     string    `json:"style"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updated_at"`
}
