package engine

import (
	"testing"
	"time"

	"chatcore/pkg/models"
)

// fixture ids shared by the engine tests
const (
	localID  = "u-local"
	ameliaID = "u-amelia"
	brunoID  = "u-bruno"
	chiomaID = "u-chioma"

	directID   = "c-direct"
	groupID    = "c-group"
	archivedID = "c-archived"
)

// newTestEngine builds an in-memory engine with short simulator delays and
// a small hydrated fixture: one direct chat, one group, one archived direct
// chat carrying unread messages.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Config{
		AckDelay:         10 * time.Millisecond,
		GroupCreateDelay: 10 * time.Millisecond,
	}, nil)

	users := []models.User{
		{ID: localID, Name: "You"},
		{ID: ameliaID, Name: "Amelia"},
		{ID: brunoID, Name: "Bruno"},
		{ID: chiomaID, Name: "Chioma"},
	}
	base := time.Now().UTC().UnixMilli() - 10_000
	m1 := models.Message{
		ID: "m-000000000000001-000001", Chat: directID, Sender: ameliaID,
		TS: base, Text: "hi", Direction: models.DirectionIncoming, Status: models.StatusRead,
	}
	m2 := models.Message{
		ID: "m-000000000000002-000002", Chat: archivedID, Sender: brunoID,
		TS: base + 1000, Text: "ping", Direction: models.DirectionIncoming,
	}
	chats := []models.Chat{
		{
			ID: directID, Kind: models.KindDirect, Name: "Amelia",
			Participants: []string{localID, ameliaID}, CreatedBy: localID,
			LastActivityTS: base, LastMessage: &m1, UnreadCount: 1,
		},
		{
			ID: groupID, Kind: models.KindGroup, Name: "Weekend Plans",
			Participants: []string{localID, brunoID, chiomaID},
			AdminIDs:     []string{localID}, CreatedBy: localID,
			LastActivityTS: base - 5000,
		},
		{
			ID: archivedID, Kind: models.KindDirect, Name: "Bruno",
			Participants: []string{localID, brunoID}, CreatedBy: localID,
			LastActivityTS: base + 1000, LastMessage: &m2,
			UnreadCount: 2, Archived: true,
		},
	}
	logs := map[string][]models.Message{
		directID:   {m1},
		archivedID: {m2},
	}
	if err := e.Hydrate(localID, users, chats, logs); err != nil {
		t.Fatalf("hydrate failed: %v", err)
	}
	return e
}

func mustChat(t *testing.T, e *Engine, id string) models.Chat {
	t.Helper()
	c, ok := e.Chat(id)
	if !ok {
		t.Fatalf("chat %s not found", id)
	}
	return c
}

func TestHydrate(t *testing.T) {
	t.Run("MissingLocalUserErrors", func(t *testing.T) {
		e := New(Config{}, nil)
		err := e.Hydrate("u-ghost", []models.User{{ID: "u-a", Name: "A"}}, nil, nil)
		if err == nil {
			t.Fatalf("expected error for missing local user record")
		}
	})

	t.Run("ResetsEphemeralState", func(t *testing.T) {
		e := newTestEngine(t)
		e.SelectChat(directID)
		e.OpenArchived()
		e.SetSearchTerm("bru")
		e.RequestConfirmation(Confirmation{Title: "Delete?"})

		if err := e.Hydrate(localID, e.Users(), e.Chats(), nil); err != nil {
			t.Fatalf("re-hydrate failed: %v", err)
		}
		if e.ActiveChatID() != "" {
			t.Fatalf("expected empty selection after hydrate, got %q", e.ActiveChatID())
		}
		if e.Mode() != ModeDefault {
			t.Fatalf("expected default mode after hydrate, got %s", e.Mode())
		}
		if e.SearchTerm() != "" {
			t.Fatalf("expected empty search term after hydrate")
		}
		if _, ok := e.PendingConfirmation(); ok {
			t.Fatalf("expected no pending confirmation after hydrate")
		}
	})
}

func TestLocalUser(t *testing.T) {
	e := newTestEngine(t)
	if got := e.LocalUser(); got.ID != localID || got.Name != "You" {
		t.Fatalf("unexpected local user: %+v", got)
	}
	users := e.Users()
	if len(users) != 4 {
		t.Fatalf("expected 4 directory entries, got %d", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i-1].Name > users[i].Name {
			t.Fatalf("directory not sorted by name: %q before %q", users[i-1].Name, users[i].Name)
		}
	}
}
