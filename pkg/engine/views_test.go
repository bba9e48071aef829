package engine

import (
	"testing"

	"chatcore/pkg/models"
)

func TestChatListDerivation(t *testing.T) {
	t.Run("ActiveExcludesArchived", func(t *testing.T) {
		e := newTestEngine(t)
		for _, c := range e.ActiveChats() {
			if c.Archived {
				t.Fatalf("archived chat %s leaked into the active list", c.ID)
			}
		}
		for _, c := range e.ArchivedChats() {
			if !c.Archived {
				t.Fatalf("active chat %s leaked into the archived list", c.ID)
			}
		}
	})

	t.Run("OrderedByActivityDesc", func(t *testing.T) {
		e := newTestEngine(t)
		chats := e.ActiveChats()
		for i := 1; i < len(chats); i++ {
			if chats[i-1].LastActivityTS < chats[i].LastActivityTS {
				t.Fatalf("list not ordered by activity: %s before %s", chats[i-1].ID, chats[i].ID)
			}
		}
	})

	t.Run("PinnedFirstRegardlessOfActivity", func(t *testing.T) {
		e := newTestEngine(t)
		// the group has the oldest activity; pinning lifts it to the top
		e.TogglePin(groupID)
		chats := e.ActiveChats()
		if len(chats) == 0 || chats[0].ID != groupID {
			t.Fatalf("pinned chat should lead the list")
		}
	})

	t.Run("PinningDoesNotAffectArchivedList", func(t *testing.T) {
		e := newTestEngine(t)
		e.TogglePin(archivedID)
		archived := e.ArchivedChats()
		if len(archived) != 1 || archived[0].ID != archivedID {
			t.Fatalf("unexpected archived list: %+v", archived)
		}
	})
}

func TestSearchFilter(t *testing.T) {
	e := newTestEngine(t)

	e.SetSearchTerm("weekend")
	chats := e.ActiveChats()
	if len(chats) != 1 || chats[0].ID != groupID {
		t.Fatalf("case-insensitive name filter failed: %+v", chats)
	}

	e.SetSearchTerm("  ")
	if len(e.ActiveChats()) != 2 {
		t.Fatalf("blank term must not filter")
	}

	// the filter only applies in list modes
	e.SelectChat(directID)
	e.OpenMediaGallery()
	e.SetSearchTerm("weekend")
	if len(e.ActiveChats()) != 2 {
		t.Fatalf("gallery mode must ignore the search term")
	}
}

func TestModeTransitions(t *testing.T) {
	t.Run("OverlaysClearSelectionAndSearch", func(t *testing.T) {
		e := newTestEngine(t)
		e.SelectChat(directID)
		e.SetSearchTerm("am")
		e.OpenStarred()
		if e.Mode() != ModeStarred || e.ActiveChatID() != "" || e.SearchTerm() != "" {
			t.Fatalf("overlay entry should reset selection and search")
		}
	})

	t.Run("MediaGalleryKeepsSelection", func(t *testing.T) {
		e := newTestEngine(t)
		e.SelectChat(directID)
		e.OpenMediaGallery()
		if e.Mode() != ModeMediaGallery || e.ActiveChatID() != directID {
			t.Fatalf("gallery should keep the open chat")
		}
	})

	t.Run("CloseOverlayReturnsToDefault", func(t *testing.T) {
		e := newTestEngine(t)
		e.OpenArchived()
		e.SetSearchTerm("bru")
		e.CloseOverlay()
		if e.Mode() != ModeDefault || e.SearchTerm() != "" {
			t.Fatalf("close should restore the default list")
		}
	})

	t.Run("ModesAreExclusive", func(t *testing.T) {
		e := newTestEngine(t)
		e.OpenNewChat()
		e.OpenCreateGroup()
		if e.Mode() != ModeCreateGroup {
			t.Fatalf("entering a mode must replace the previous one, got %s", e.Mode())
		}
	})
}

func TestContacts(t *testing.T) {
	e := newTestEngine(t)

	t.Run("AvailableExcludesLocal", func(t *testing.T) {
		for _, u := range e.AvailableContacts() {
			if u.ID == localID {
				t.Fatalf("local user leaked into contacts")
			}
		}
		if len(e.AvailableContacts()) != 3 {
			t.Fatalf("expected 3 contacts")
		}
	})

	t.Run("AddableExcludesParticipants", func(t *testing.T) {
		addable := e.AddableContacts(groupID)
		if len(addable) != 1 || addable[0].ID != ameliaID {
			t.Fatalf("expected only Amelia addable, got %+v", addable)
		}
	})

	t.Run("UnknownChatYieldsNothing", func(t *testing.T) {
		if got := e.AddableContacts("c-missing"); got != nil {
			t.Fatalf("expected nil for unknown chat, got %+v", got)
		}
	})
}

func TestArchivedUnreadBadge(t *testing.T) {
	e := newTestEngine(t)
	if got := e.ArchivedUnreadBadge(); got != 1 {
		t.Fatalf("expected badge 1, got %d", got)
	}
	e.OpenArchived()
	e.SelectChat(archivedID)
	if got := e.ArchivedUnreadBadge(); got != 0 {
		t.Fatalf("expected badge 0 after reading, got %d", got)
	}
}

func TestStarredMessagesChronological(t *testing.T) {
	e := newTestEngine(t)
	newer := e.ChatLog(archivedID)[0].ID
	older := e.ChatLog(directID)[0].ID
	e.ToggleStarMessage(newer)
	e.ToggleStarMessage(older)

	starred := e.StarredMessages()
	if len(starred) != 2 {
		t.Fatalf("expected 2 starred messages, got %d", len(starred))
	}
	if starred[0].ID != older || starred[1].ID != newer {
		t.Fatalf("starred list not chronological: %+v", starred)
	}
}

func TestMediaMessages(t *testing.T) {
	e := newTestEngine(t)
	e.SelectChat(directID)
	e.SendMessage(directID, Content{Media: &models.MediaRef{Kind: models.MediaImage, URL: "file:///a.png"}})
	e.SendMessage(directID, Content{Text: "no media here"})

	media := e.MediaMessages(directID)
	if len(media) != 1 || media[0].Media == nil {
		t.Fatalf("expected exactly the media entry, got %+v", media)
	}
	if got := e.MediaMessages(groupID); len(got) != 0 {
		t.Fatalf("expected no media in the group, got %d", len(got))
	}
}
