package bot

import (
	"strings"
	"testing"

	"lavka.org/internal/auth"
)

func TestRenderPendingPageEmpty(t *testing.T) {
	text, keyboard := renderPendingPage(nil, 0, 0)
	if !strings.Contains(text, "No pending") {
		t.Fatalf("unexpected text: %q", text)
	}
	if keyboard != nil {
		t.Fatal("expected no keyboard for empty queue")
	}
}

func TestRenderPendingPageSingle(t *testing.T) {
	accounts := []*auth.Account{{
		ID:      "acct-1",
		Email:   "waiting@example.com",
		Phone:   "+700000001",
		Name:    "Aru",
		Surname: "Khan",
		Role:    auth.RolePending,
	}}

	text, keyboard := renderPendingPage(accounts, 1, 0)
	if !strings.Contains(text, "Aru Khan") || !strings.Contains(text, "waiting@example.com") {
		t.Fatalf("card missing fields: %q", text)
	}
	if !strings.Contains(text, "1 of 1") {
		t.Fatalf("expected position marker: %q", text)
	}
	if keyboard == nil {
		t.Fatal("expected keyboard")
	}
	// Approve/reject plus bulk row; no nav for a single entry.
	if len(keyboard.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(keyboard.InlineKeyboard))
	}
	if got := keyboard.InlineKeyboard[0][0].CallbackData; got != "approve acct-1" {
		t.Fatalf("unexpected approve callback: %q", got)
	}
	if got := keyboard.InlineKeyboard[0][1].CallbackData; got != "reject acct-1" {
		t.Fatalf("unexpected reject callback: %q", got)
	}
}

func TestRenderPendingPageNavigation(t *testing.T) {
	accounts := []*auth.Account{{
		ID:    "acct-2",
		Email: "second@example.com",
		Name:  "Second",
		Role:  auth.RolePending,
	}}

	// Middle page of three: both directions present.
	_, keyboard := renderPendingPage(accounts, 3, 1)
	if keyboard == nil {
		t.Fatal("expected keyboard")
	}
	if len(keyboard.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(keyboard.InlineKeyboard))
	}
	nav := keyboard.InlineKeyboard[1]
	if len(nav) != 2 {
		t.Fatalf("expected prev and next, got %d buttons", len(nav))
	}
	if nav[0].CallbackData != "page 0" || nav[1].CallbackData != "page 2" {
		t.Fatalf("unexpected nav callbacks: %q %q", nav[0].CallbackData, nav[1].CallbackData)
	}

	// First page: only forward.
	_, keyboard = renderPendingPage(accounts, 3, 0)
	nav = keyboard.InlineKeyboard[1]
	if len(nav) != 1 || nav[0].CallbackData != "page 1" {
		t.Fatalf("unexpected first-page nav: %+v", nav)
	}

	// Last page: only backward.
	_, keyboard = renderPendingPage(accounts, 3, 2)
	nav = keyboard.InlineKeyboard[1]
	if len(nav) != 1 || nav[0].CallbackData != "page 1" {
		t.Fatalf("unexpected last-page nav: %+v", nav)
	}
}
