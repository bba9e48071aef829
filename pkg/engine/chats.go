package engine

import (
	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/telemetry"
	"chatcore/pkg/utils"
)

// SelectChat makes the chat the active one. When the viewer's current
// archived/active mode matches the chat's archived state, opening the chat
// consumes its unread count. Selecting a chat closes the new-chat composer.
func (e *Engine) SelectChat(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLocked(chatID)
}

func (e *Engine) selectLocked(chatID string) {
	c, ok := e.chatLocked("select_chat", chatID)
	if !ok {
		return
	}
	e.activeChatID = chatID
	if e.mode == ModeNewChat {
		e.mode = ModeDefault
	}
	if c.Archived == (e.mode == ModeArchived) && c.UnreadCount > 0 {
		c.UnreadCount = 0
		e.persistChat(c)
	}
	telemetry.IncOp("select_chat")
	logger.Debug("chat_selected", "chat", chatID)
}

// ActiveChat returns a copy of the currently selected chat.
func (e *Engine) ActiveChat() (models.Chat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.chats[e.activeChatID]
	if !ok {
		return models.Chat{}, false
	}
	return *c, true
}

// ActiveChatID returns the id of the selected chat, or empty.
func (e *Engine) ActiveChatID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeChatID
}

// ActiveLog returns a copy of the selected chat's message log.
func (e *Engine) ActiveLog() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Message(nil), e.logs[e.activeChatID]...)
}

// ToggleArchive moves a chat between the active and archived partitions.
// Archiving the selected chat clears the selection; unarchiving the last
// archived chat drops the viewer out of the archived list.
func (e *Engine) ToggleArchive(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("toggle_archive", chatID)
	if !ok {
		return
	}
	c.Archived = !c.Archived
	if e.activeChatID == chatID {
		e.activeChatID = ""
	}
	e.persistChat(c)
	if e.mode == ModeArchived && e.archivedCountLocked() == 0 {
		e.mode = ModeDefault
	}
	telemetry.IncOp("toggle_archive")
	logger.Info("chat_archive_toggled", "chat", chatID, "archived", c.Archived)
}

// ToggleMute flips a chat's mute flag.
func (e *Engine) ToggleMute(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("toggle_mute", chatID)
	if !ok {
		return
	}
	c.Muted = !c.Muted
	e.persistChat(c)
	telemetry.IncOp("toggle_mute")
	logger.Info("chat_mute_toggled", "chat", chatID, "muted", c.Muted)
}

// ToggleBlock flips the block flag on a direct chat. Groups cannot be
// blocked.
func (e *Engine) ToggleBlock(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("toggle_block", chatID)
	if !ok {
		return
	}
	if c.IsGroup() {
		e.reject("toggle_block", "not_direct_chat", "chat", chatID)
		return
	}
	c.Blocked = !c.Blocked
	e.persistChat(c)
	telemetry.IncOp("toggle_block")
	logger.Info("chat_block_toggled", "chat", chatID, "blocked", c.Blocked)
}

// TogglePin flips the pin flag controlling list ordering.
func (e *Engine) TogglePin(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("toggle_pin", chatID)
	if !ok {
		return
	}
	c.Pinned = !c.Pinned
	e.persistChat(c)
	telemetry.IncOp("toggle_pin")
	logger.Info("chat_pin_toggled", "chat", chatID, "pinned", c.Pinned)
}

// ToggleMarkUnread flips the manual unread marker. Unmarking also resets
// the unread count; marking never synthesizes one.
func (e *Engine) ToggleMarkUnread(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("toggle_mark_unread", chatID)
	if !ok {
		return
	}
	c.MarkedUnread = !c.MarkedUnread
	if !c.MarkedUnread {
		c.UnreadCount = 0
	}
	e.persistChat(c)
	telemetry.IncOp("toggle_mark_unread")
	logger.Info("chat_mark_unread_toggled", "chat", chatID, "marked", c.MarkedUnread)
}

// DeleteChat removes the chat and its whole log. The cascade clears the
// selection and backs out of the media gallery when it pointed at the
// deleted chat.
func (e *Engine) DeleteChat(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteLocked("delete_chat", chatID)
}

// ExitGroup discards the local view of a group. It is deliberately the
// same cascade as DeleteChat: leaving means dropping the chat, its log and
// any panel referencing it.
func (e *Engine) ExitGroup(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteLocked("exit_group", chatID)
}

func (e *Engine) deleteLocked(op, chatID string) {
	if _, ok := e.chatLocked(op, chatID); !ok {
		return
	}
	delete(e.chats, chatID)
	delete(e.logs, chatID)
	delete(e.typing, chatID)
	if e.activeChatID == chatID {
		e.activeChatID = ""
		if e.mode == ModeMediaGallery {
			e.mode = ModeDefault
		}
	}
	if err := e.persist.DeleteChat(chatID); err != nil {
		logger.Error("persist_delete_chat_failed", "chat", chatID, "error", err)
	}
	telemetry.IncOp(op)
	telemetry.SetChats(len(e.chats))
	logger.Info("chat_removed", "op", op, "chat", chatID)
}

// StartNewDirectChat opens a direct chat with the contact, reusing an
// existing one when present (idempotent) and creating it otherwise.
func (e *Engine) StartNewDirectChat(contactID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if contactID == e.localUserID {
		e.reject("start_direct_chat", "self_chat", "user", contactID)
		return
	}
	contact, ok := e.users[contactID]
	if !ok {
		e.reject("start_direct_chat", "invalid_target", "user", contactID)
		return
	}
	for _, c := range e.chats {
		if !c.IsGroup() && c.HasParticipant(contactID) {
			e.selectLocked(c.ID)
			return
		}
	}
	c := &models.Chat{
		ID:             utils.GenChatID(),
		Kind:           models.KindDirect,
		Name:           contact.Name,
		Avatar:         contact.Avatar,
		Participants:   []string{e.localUserID, contactID},
		CreatedBy:      e.localUserID,
		LastActivityTS: e.now().UnixMilli(),
	}
	e.chats[c.ID] = c
	e.persistChat(c)
	telemetry.IncOp("start_direct_chat")
	telemetry.SetChats(len(e.chats))
	logger.Info("direct_chat_created", "chat", c.ID, "contact", contactID)
	e.selectLocked(c.ID)
}

func (e *Engine) archivedCountLocked() int {
	n := 0
	for _, c := range e.chats {
		if c.Archived {
			n++
		}
	}
	return n
}
