package engine

import (
	"testing"

	"chatcore/pkg/models"
)

func TestCreateGroup(t *testing.T) {
	t.Run("Lifecycle", func(t *testing.T) {
		e := newTestEngine(t)
		e.OpenCreateGroup()
		e.CreateGroup("  Trip Planning  ", []string{brunoID, brunoID, chiomaID, localID})
		if !e.CreatingGroup() {
			t.Fatalf("expected creation in flight")
		}
		waitFor(t, func() bool { return !e.CreatingGroup() })

		id := e.ActiveChatID()
		if id == "" {
			t.Fatalf("expected new group selected")
		}
		c := mustChat(t, e, id)
		if c.Kind != models.KindGroup || c.Name != "Trip Planning" {
			t.Fatalf("unexpected group shape: %+v", c)
		}
		if len(c.Participants) != 3 {
			t.Fatalf("expected local + 2 deduped members, got %v", c.Participants)
		}
		if !c.IsAdmin(localID) || len(c.AdminIDs) != 1 {
			t.Fatalf("creator should be the sole admin: %v", c.AdminIDs)
		}
		if c.CreatedBy != localID {
			t.Fatalf("expected creator %s, got %s", localID, c.CreatedBy)
		}
		if e.Mode() != ModeDefault {
			t.Fatalf("composer should close on completion, mode %s", e.Mode())
		}
	})

	t.Run("Validation", func(t *testing.T) {
		e := newTestEngine(t)
		before := len(e.Chats())

		e.CreateGroup("   ", []string{brunoID})
		e.CreateGroup("Ghosts", []string{"u-ghost"})
		e.CreateGroup("Just Me", []string{localID})
		if e.CreatingGroup() {
			t.Fatalf("rejected creations must not start the delay")
		}
		if len(e.Chats()) != before {
			t.Fatalf("rejected creations must not add chats")
		}
	})

	t.Run("SecondCreateWhileInFlightRejected", func(t *testing.T) {
		e := newTestEngine(t)
		e.CreateGroup("First", []string{brunoID})
		e.CreateGroup("Second", []string{chiomaID})
		waitFor(t, func() bool { return !e.CreatingGroup() })

		names := map[string]bool{}
		for _, c := range e.Chats() {
			names[c.Name] = true
		}
		if !names["First"] || names["Second"] {
			t.Fatalf("expected only the first creation to land: %v", names)
		}
	})
}

func TestAddParticipants(t *testing.T) {
	e := newTestEngine(t)
	e.AddParticipants(groupID, []string{ameliaID, brunoID, "u-ghost"})
	c := mustChat(t, e, groupID)
	if !c.HasParticipant(ameliaID) {
		t.Fatalf("new contact should be added")
	}
	if len(c.Participants) != 4 {
		t.Fatalf("duplicates and unknowns must be skipped, got %v", c.Participants)
	}

	t.Run("DirectChatRejected", func(t *testing.T) {
		e.AddParticipants(directID, []string{chiomaID})
		if len(mustChat(t, e, directID).Participants) != 2 {
			t.Fatalf("direct chat membership must not change")
		}
	})
}

func TestRemoveParticipant(t *testing.T) {
	t.Run("StripsAdminAndTyping", func(t *testing.T) {
		e := newTestEngine(t)
		e.PromoteToAdmin(groupID, brunoID)
		e.mu.Lock()
		e.startTypingLocked(groupID, brunoID)
		e.mu.Unlock()

		e.RemoveParticipant(groupID, brunoID)
		c := mustChat(t, e, groupID)
		if c.HasParticipant(brunoID) || c.IsAdmin(brunoID) {
			t.Fatalf("removal must strip membership and admin: %+v", c)
		}
		for _, id := range e.TypingUsers(groupID) {
			if id == brunoID {
				t.Fatalf("removal must clear the typing marker")
			}
		}
	})

	t.Run("EarlierSnapshotsKeepTheirMembership", func(t *testing.T) {
		e := newTestEngine(t)
		e.PromoteToAdmin(groupID, brunoID)
		before := mustChat(t, e, groupID)
		wantParticipants := append([]string(nil), before.Participants...)
		wantAdmins := append([]string(nil), before.AdminIDs...)

		e.RemoveParticipant(groupID, brunoID)
		e.DemoteAdmin(groupID, brunoID)

		if len(before.Participants) != len(wantParticipants) {
			t.Fatalf("snapshot participants resized: %v", before.Participants)
		}
		for i, id := range before.Participants {
			if id != wantParticipants[i] {
				t.Fatalf("snapshot participants mutated: %v", before.Participants)
			}
		}
		for i, id := range before.AdminIDs {
			if id != wantAdmins[i] {
				t.Fatalf("snapshot admins mutated: %v", before.AdminIDs)
			}
		}
	})

	t.Run("NonParticipantRejected", func(t *testing.T) {
		e := newTestEngine(t)
		e.RemoveParticipant(groupID, ameliaID)
		if len(mustChat(t, e, groupID).Participants) != 3 {
			t.Fatalf("membership must not change")
		}
	})
}

func TestAdminRoles(t *testing.T) {
	t.Run("PromoteIdempotent", func(t *testing.T) {
		e := newTestEngine(t)
		e.PromoteToAdmin(groupID, chiomaID)
		e.PromoteToAdmin(groupID, chiomaID)
		c := mustChat(t, e, groupID)
		if len(c.AdminIDs) != 2 {
			t.Fatalf("repeat promotion must not duplicate: %v", c.AdminIDs)
		}
	})

	t.Run("PromoteRequiresMembership", func(t *testing.T) {
		e := newTestEngine(t)
		e.PromoteToAdmin(groupID, ameliaID)
		if mustChat(t, e, groupID).IsAdmin(ameliaID) {
			t.Fatalf("non-participant must not become admin")
		}
	})

	t.Run("SelfDemotionRejected", func(t *testing.T) {
		e := newTestEngine(t)
		e.DemoteAdmin(groupID, localID)
		if !mustChat(t, e, groupID).IsAdmin(localID) {
			t.Fatalf("local user must keep admin through this path")
		}
	})

	t.Run("DemoteRemoves", func(t *testing.T) {
		e := newTestEngine(t)
		e.PromoteToAdmin(groupID, chiomaID)
		e.DemoteAdmin(groupID, chiomaID)
		if mustChat(t, e, groupID).IsAdmin(chiomaID) {
			t.Fatalf("expected admin revoked")
		}
	})
}

func TestUpdateGroupIdentity(t *testing.T) {
	e := newTestEngine(t)

	name := "  Saturday Crew  "
	e.UpdateGroupIdentity(groupID, &name, nil)
	c := mustChat(t, e, groupID)
	if c.Name != "Saturday Crew" {
		t.Fatalf("expected trimmed rename, got %q", c.Name)
	}
	if c.Description != "" {
		t.Fatalf("nil description must leave the field alone")
	}

	desc := "planning things"
	e.UpdateGroupIdentity(groupID, nil, &desc)
	if mustChat(t, e, groupID).Description != desc {
		t.Fatalf("description not applied")
	}

	blank := "   "
	e.UpdateGroupIdentity(groupID, &blank, nil)
	if mustChat(t, e, groupID).Name != "Saturday Crew" {
		t.Fatalf("whitespace rename must be ignored")
	}

	e.UpdateGroupIdentity(directID, &name, nil)
	if mustChat(t, e, directID).Name != "Amelia" {
		t.Fatalf("direct chats cannot be renamed")
	}
}
