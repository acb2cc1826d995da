package app

import (
	"errors"
	"strings"
	"testing"

	"plumeai/pkg/domain"
)

func TestChatReplyRejectsBlankMessage(t *testing.T) {
	a := New(Config{})
	for _, msg := range []string{"", "   ", "\n\t "} {
		if _, err := a.ChatReply(domain.ChatRequest{Message: msg, Mode: domain.ModeEbook}); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("message %q: err = %v, want ErrEmptyMessage", msg, err)
		}
	}
}

func TestChatReplyGenericEchoesMessage(t *testing.T) {
	a := New(Config{})
	reply, err := a.ChatReply(domain.ChatRequest{
		Message: "  Comment structurer mon livre ?  ",
		History: []domain.ChatTurn{{Role: "user", Content: "bonjour"}},
	})
	if err != nil {
		t.Fatalf("chat reply: %v", err)
	}
	if !strings.Contains(reply, "Comment structurer mon livre ?") {
		t.Fatalf("reply does not embed the trimmed message: %q", reply)
	}
}

func TestChatReplyUnknownModeFallsBackToGeneric(t *testing.T) {
	a := New(Config{})
	reply, err := a.ChatReply(domain.ChatRequest{Message: "salut", Mode: "poem"})
	if err != nil {
		t.Fatalf("chat reply: %v", err)
	}
	if strings.Contains(reply, "[progress:") {
		t.Fatalf("unknown mode should not produce the ebook script: %q", reply)
	}
	if !strings.Contains(reply, "salut") {
		t.Fatalf("generic reply should echo the message: %q", reply)
	}
}

func TestChatReplyEbookScript(t *testing.T) {
	a := New(Config{})
	reply, err := a.ChatReply(domain.ChatRequest{Message: "écris mon ebook", Mode: domain.ModeEbook})
	if err != nil {
		t.Fatalf("chat reply: %v", err)
	}

	markers := []string{"[progress:10]", "[progress:55]", "[progress:85]", "[progress:100]"}
	pos := -1
	for _, marker := range markers {
		idx := strings.Index(reply, marker)
		if idx < 0 {
			t.Fatalf("marker %q missing from script", marker)
		}
		if idx <= pos {
			t.Fatalf("marker %q out of order", marker)
		}
		pos = idx
	}
	if !strings.HasSuffix(reply, "[done]") {
		t.Fatalf("script should terminate with [done], got tail %q", reply[len(reply)-20:])
	}

	// Deterministic and independent of message and history.
	other, err := a.ChatReply(domain.ChatRequest{
		Message: "autre sujet",
		History: []domain.ChatTurn{{Role: "assistant", Content: "ok"}},
		Mode:    domain.ModeEbook,
	})
	if err != nil {
		t.Fatalf("chat reply: %v", err)
	}
	if other != reply {
		t.Fatalf("ebook script should be identical across requests")
	}
}
