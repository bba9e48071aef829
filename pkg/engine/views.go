package engine

import (
	"sort"
	"strings"

	"chatcore/pkg/models"
)

// Mode returns the current view mode.
func (e *Engine) Mode() ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SearchTerm returns the active chat-list search term.
func (e *Engine) SearchTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchTerm
}

// SetSearchTerm sets the chat-list filter; it never re-orders lists.
func (e *Engine) SetSearchTerm(term string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchTerm = term
}

// OpenArchived switches to the archived list, leaving any open chat.
func (e *Engine) OpenArchived() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterModeLocked(ModeArchived, true)
}

// OpenNewChat switches to the new-chat composer.
func (e *Engine) OpenNewChat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterModeLocked(ModeNewChat, true)
}

// OpenCreateGroup switches to the create-group composer.
func (e *Engine) OpenCreateGroup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterModeLocked(ModeCreateGroup, true)
}

// OpenStarred switches to the starred-messages list.
func (e *Engine) OpenStarred() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterModeLocked(ModeStarred, true)
}

// OpenMediaGallery drills into the active chat's media; the selection is
// kept since the gallery is opened from the chat's info panel.
func (e *Engine) OpenMediaGallery() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enterModeLocked(ModeMediaGallery, false)
}

// CloseOverlay returns to the default chat list.
func (e *Engine) CloseOverlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeDefault
	e.searchTerm = ""
}

// enterModeLocked applies the shared mode-entry effects: competing modes
// are replaced, the search term resets, and modes that are exclusive with
// chat viewing drop the selection.
func (e *Engine) enterModeLocked(m ViewMode, clearSelection bool) {
	e.mode = m
	e.searchTerm = ""
	if clearSelection {
		e.activeChatID = ""
	}
}

// Chats returns every chat ordered by activity, newest first.
func (e *Engine) Chats() []models.Chat {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Chat, 0, len(e.chats))
	for _, c := range e.chats {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivityTS > out[j].LastActivityTS })
	return out
}

// ActiveChats derives the non-archived list: pinned chats first, each
// partition ordered by activity descending, then the search filter.
func (e *Engine) ActiveChats() []models.Chat {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pinned, rest []models.Chat
	for _, c := range e.chats {
		if c.Archived {
			continue
		}
		if c.Pinned {
			pinned = append(pinned, *c)
		} else {
			rest = append(rest, *c)
		}
	}
	byActivity := func(s []models.Chat) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].LastActivityTS > s[j].LastActivityTS })
	}
	byActivity(pinned)
	byActivity(rest)
	return e.filterLocked(append(pinned, rest...))
}

// ArchivedChats derives the archived list ordered purely by activity;
// pinning has no effect here.
func (e *Engine) ArchivedChats() []models.Chat {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []models.Chat
	for _, c := range e.chats {
		if c.Archived {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivityTS > out[j].LastActivityTS })
	return e.filterLocked(out)
}

// filterLocked applies the case-insensitive name filter. The filter is
// only live in list modes; composer and gallery modes ignore the term.
func (e *Engine) filterLocked(chats []models.Chat) []models.Chat {
	term := strings.TrimSpace(e.searchTerm)
	if term == "" {
		return chats
	}
	if e.mode != ModeDefault && e.mode != ModeArchived {
		return chats
	}
	term = strings.ToLower(term)
	out := chats[:0]
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// AvailableContacts lists every known user except the local one, for the
// new-chat and create-group flows.
func (e *Engine) AvailableContacts() []models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contactsLocked(nil)
}

// AddableContacts lists contacts not yet participating in the given chat,
// for the add-participant flow.
func (e *Engine) AddableContacts(chatID string) []models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.chats[chatID]
	if !ok {
		return nil
	}
	return e.contactsLocked(c)
}

func (e *Engine) contactsLocked(exclude *models.Chat) []models.User {
	var out []models.User
	for id, u := range e.users {
		if id == e.localUserID {
			continue
		}
		if exclude != nil && exclude.HasParticipant(id) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ArchivedUnreadBadge counts archived chats holding unread messages (not
// the sum of their unread counts).
func (e *Engine) ArchivedUnreadBadge() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.chats {
		if c.Archived && c.UnreadCount > 0 {
			n++
		}
	}
	return n
}

// StarredMessages collects every starred message across all logs in
// chronological order.
func (e *Engine) StarredMessages() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.Message
	for _, log := range e.logs {
		for _, m := range log {
			if m.Starred {
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// MediaMessages lists a chat's log entries that carry a media reference,
// backing the media-gallery drill-down.
func (e *Engine) MediaMessages(chatID string) []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []models.Message
	for _, m := range e.logs[chatID] {
		if m.Media != nil {
			out = append(out, m)
		}
	}
	return out
}
