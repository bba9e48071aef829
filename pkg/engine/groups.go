package engine

import (
	"strings"
	"time"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/telemetry"
	"chatcore/pkg/utils"
)

// CreateGroup validates the name and member selection, then runs the
// simulated backend creation delay before inserting and selecting the new
// group. CreatingGroup reports true while the delay is pending.
func (e *Engine) CreateGroup(name string, memberIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		e.reject("create_group", "empty_name")
		return
	}
	members := make([]string, 0, len(memberIDs))
	seen := map[string]struct{}{}
	for _, id := range memberIDs {
		if id == e.localUserID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, known := e.users[id]; !known {
			e.reject("create_group", "unknown_member", "user", id)
			return
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		e.reject("create_group", "no_members")
		return
	}
	if e.creatingGroup {
		e.reject("create_group", "creation_in_progress")
		return
	}

	e.creatingGroup = true
	logger.Info("group_creation_started", "name", name, "members", len(members))
	time.AfterFunc(e.cfg.GroupCreateDelay, func() {
		e.finishCreateGroup(name, members)
	})
}

func (e *Engine) finishCreateGroup(name string, members []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.creatingGroup = false
	c := &models.Chat{
		ID:             utils.GenChatID(),
		Kind:           models.KindGroup,
		Name:           name,
		Participants:   append([]string{e.localUserID}, members...),
		AdminIDs:       []string{e.localUserID},
		CreatedBy:      e.localUserID,
		LastActivityTS: e.now().UnixMilli(),
	}
	e.chats[c.ID] = c
	e.persistChat(c)
	e.mode = ModeDefault
	e.searchTerm = ""
	telemetry.IncOp("create_group")
	telemetry.SetChats(len(e.chats))
	logger.Info("group_created", "chat", c.ID, "name", name, "participants", len(c.Participants))
	e.selectLocked(c.ID)
}

// CreatingGroup reports whether a simulated group creation is in flight.
func (e *Engine) CreatingGroup() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.creatingGroup
}

// AddParticipants adds the given users to a group, skipping ids already
// present or unknown to the directory.
func (e *Engine) AddParticipants(chatID string, userIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("add_participants", chatID)
	if !ok {
		return
	}
	if !c.IsGroup() {
		e.reject("add_participants", "not_group", "chat", chatID)
		return
	}
	added := 0
	for _, id := range userIDs {
		if c.HasParticipant(id) {
			continue
		}
		if _, known := e.users[id]; !known {
			logger.Warn("add_participant_unknown_user", "chat", chatID, "user", id)
			continue
		}
		c.Participants = append(c.Participants, id)
		added++
	}
	if added == 0 {
		return
	}
	e.persistChat(c)
	telemetry.IncOp("add_participants")
	logger.Info("participants_added", "chat", chatID, "added", added)
}

// RemoveParticipant removes the user from the group's participant set and,
// atomically, from its admin set and typing markers. Emptying the group is
// permitted but flagged.
func (e *Engine) RemoveParticipant(chatID, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("remove_participant", chatID)
	if !ok {
		return
	}
	if !c.IsGroup() {
		e.reject("remove_participant", "not_group", "chat", chatID)
		return
	}
	if !c.HasParticipant(userID) {
		e.reject("remove_participant", "not_participant", "chat", chatID, "user", userID)
		return
	}
	c.Participants = removeID(c.Participants, userID)
	c.AdminIDs = removeID(c.AdminIDs, userID)
	if set := e.typing[chatID]; set != nil {
		delete(set, userID)
	}
	if len(c.Participants) == 0 {
		logger.Warn("group_emptied", "chat", chatID)
	}
	e.persistChat(c)
	telemetry.IncOp("remove_participant")
	logger.Info("participant_removed", "chat", chatID, "user", userID)
}

// PromoteToAdmin grants admin to a participant that does not have it yet.
func (e *Engine) PromoteToAdmin(chatID, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("promote_admin", chatID)
	if !ok {
		return
	}
	if !c.IsGroup() {
		e.reject("promote_admin", "not_group", "chat", chatID)
		return
	}
	if !c.HasParticipant(userID) {
		e.reject("promote_admin", "not_participant", "chat", chatID, "user", userID)
		return
	}
	if c.IsAdmin(userID) {
		return
	}
	c.AdminIDs = append(c.AdminIDs, userID)
	e.persistChat(c)
	telemetry.IncOp("promote_admin")
	logger.Info("admin_promoted", "chat", chatID, "user", userID)
}

// DemoteAdmin revokes admin. The acting local user cannot demote itself
// through this path; demoting the sole remaining admin is allowed but
// leaves the group adminless, which is flagged rather than blocked.
func (e *Engine) DemoteAdmin(chatID, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("demote_admin", chatID)
	if !ok {
		return
	}
	if !c.IsGroup() {
		e.reject("demote_admin", "not_group", "chat", chatID)
		return
	}
	if userID == e.localUserID {
		e.reject("demote_admin", "self_demotion", "chat", chatID)
		return
	}
	if !c.IsAdmin(userID) {
		return
	}
	c.AdminIDs = removeID(c.AdminIDs, userID)
	if len(c.AdminIDs) == 0 {
		logger.Warn("group_left_adminless", "chat", chatID)
	}
	e.persistChat(c)
	telemetry.IncOp("demote_admin")
	logger.Info("admin_demoted", "chat", chatID, "user", userID)
}

// UpdateGroupIdentity updates whichever of name/description is provided;
// nil leaves the field untouched.
func (e *Engine) UpdateGroupIdentity(chatID string, name, description *string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.chatLocked("update_group_identity", chatID)
	if !ok {
		return
	}
	if !c.IsGroup() {
		e.reject("update_group_identity", "not_group", "chat", chatID)
		return
	}
	changed := false
	if name != nil {
		if n := strings.TrimSpace(*name); n != "" {
			c.Name = n
			changed = true
		}
	}
	if description != nil {
		c.Description = *description
		changed = true
	}
	if !changed {
		return
	}
	e.persistChat(c)
	telemetry.IncOp("update_group_identity")
	logger.Info("group_identity_updated", "chat", chatID)
}

// removeID returns a fresh slice so snapshots handed out earlier keep
// their membership view.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
