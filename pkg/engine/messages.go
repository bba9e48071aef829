package engine

import (
	"strings"
	"time"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/telemetry"
	"chatcore/pkg/utils"
)

// Content is the payload of an outgoing message. A message with neither
// text nor a media reference is rejected.
type Content struct {
	Text    string
	Media   *models.MediaRef
	ReplyTo *models.ReplyContext
}

// appendLocked is the single primitive that grows a chat's log. It updates
// the denormalized summary and the activity timestamp in the same step so
// no code path can move one without the other, and it writes both records
// through to the persister.
func (e *Engine) appendLocked(c *models.Chat, m models.Message) {
	e.logs[c.ID] = append(e.logs[c.ID], m)
	cp := m
	c.LastMessage = &cp
	if m.TS > c.LastActivityTS {
		c.LastActivityTS = m.TS
	}
	e.persistMessage(c.ID, m)
	telemetry.IncMessage(m.Direction)
	logger.Info("message_appended", "chat", c.ID, "msg", m.ID, "direction", m.Direction)
}

// SendMessage appends an outgoing pending message to the active chat and
// schedules the simulated acknowledgment. Sends to a chat that is not the
// active one, to a blocked chat, or with an empty payload are rejected
// silently per the error policy.
func (e *Engine) SendMessage(chatID string, content Content) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("send_message", chatID)
	if !ok {
		return
	}
	if chatID != e.activeChatID {
		e.reject("send_message", "not_active_chat", "chat", chatID)
		return
	}
	if c.Blocked {
		e.reject("send_message", "blocked", "chat", chatID)
		return
	}
	m := models.Message{
		ID:        utils.GenMsgID(),
		Chat:      chatID,
		Sender:    e.localUserID,
		TS:        e.now().UnixMilli(),
		Text:      strings.TrimSpace(content.Text),
		Media:     content.Media,
		ReplyTo:   content.ReplyTo,
		Direction: models.DirectionOutgoing,
		Status:    models.StatusPending,
	}
	if !m.HasPayload() {
		e.reject("send_message", "empty_payload", "chat", chatID)
		return
	}

	wasArchived := c.Archived
	e.appendLocked(c, m)

	// a send self-unarchives and self-reads
	c.UnreadCount = 0
	c.Archived = false
	e.persistChat(c)

	// sending from the archived list drops the viewer back to the
	// active list, since the chat just left the archived partition
	if wasArchived && e.mode == ModeArchived {
		e.mode = ModeDefault
	}

	telemetry.IncOp("send_message")
	msgID := m.ID
	time.AfterFunc(e.cfg.AckDelay, func() { e.advanceDelivery(chatID, msgID) })
}

// advanceDelivery is the deferred half of the send protocol: it flips the
// exact message from pending to sent, and silently does nothing when the
// chat or message has been deleted or cleared in the interim.
func (e *Engine) advanceDelivery(chatID, msgID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chats[chatID]
	if !ok {
		logger.Debug("delivery_advance_skipped", "reason", "chat_gone", "chat", chatID, "msg", msgID)
		return
	}
	log := e.logs[chatID]
	for i := range log {
		if log[i].ID != msgID {
			continue
		}
		if log[i].Status != models.StatusPending {
			return
		}
		log[i].Status = models.StatusSent
		if c.LastMessage != nil && c.LastMessage.ID == msgID {
			cp := log[i]
			c.LastMessage = &cp
			e.persistChat(c)
		}
		e.persistMessage(chatID, log[i])
		logger.Info("delivery_advanced", "chat", chatID, "msg", msgID, "status", models.StatusSent)
		return
	}
	logger.Debug("delivery_advance_skipped", "reason", "message_gone", "chat", chatID, "msg", msgID)
}

// ForwardMessage copies a message's payload into each target chat. The
// copy drops reply context, is marked forwarded and skips the pending
// phase. Unlike a send, forwarding does not unarchive the target; its
// unread count grows unless the target is the active chat.
func (e *Engine) ForwardMessage(original models.Message, targetChatIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range targetChatIDs {
		c, ok := e.chats[id]
		if !ok {
			e.reject("forward_message", "invalid_target", "chat", id)
			continue
		}
		m := models.Message{
			ID:        utils.GenMsgID(),
			Chat:      id,
			Sender:    e.localUserID,
			TS:        e.now().UnixMilli(),
			Text:      original.Text,
			Media:     original.Media,
			Direction: models.DirectionOutgoing,
			Status:    models.StatusSent,
			Forwarded: true,
		}
		e.appendLocked(c, m)
		if id == e.activeChatID {
			c.UnreadCount = 0
		} else {
			c.UnreadCount++
		}
		e.persistChat(c)
		telemetry.IncOp("forward_message")
	}
}

// ClearChatMessages empties a chat's log and clears its summary without
// deleting the chat or touching its archive state. The activity timestamp
// stays where it was so ordering remains stable.
func (e *Engine) ClearChatMessages(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("clear_chat_messages", chatID)
	if !ok {
		return
	}
	e.logs[chatID] = nil
	c.LastMessage = nil
	if err := e.persist.ClearChatLog(chatID); err != nil {
		logger.Error("persist_clear_log_failed", "chat", chatID, "error", err)
	}
	e.persistChat(c)
	telemetry.IncOp("clear_chat_messages")
	logger.Info("chat_messages_cleared", "chat", chatID)
}

// ToggleStarMessage locates the message across all logs (active chat
// first) and flips its star. Chat summaries are left untouched.
func (e *Engine) ToggleStarMessage(messageID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeChatID != "" {
		if e.toggleStarInLog(e.activeChatID, messageID) {
			return
		}
	}
	for chatID := range e.logs {
		if chatID == e.activeChatID {
			continue
		}
		if e.toggleStarInLog(chatID, messageID) {
			return
		}
	}
	e.reject("toggle_star_message", "invalid_target", "msg", messageID)
}

func (e *Engine) toggleStarInLog(chatID, messageID string) bool {
	log := e.logs[chatID]
	for i := range log {
		if log[i].ID != messageID {
			continue
		}
		log[i].Starred = !log[i].Starred
		e.persistMessage(chatID, log[i])
		telemetry.IncOp("toggle_star_message")
		logger.Info("message_star_toggled", "chat", chatID, "msg", messageID, "starred", log[i].Starred)
		return true
	}
	return false
}
