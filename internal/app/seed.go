package app

import (
	"time"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
	"chatcore/pkg/utils"
)

// seed writes a small demo dataset into a fresh snapshot: the local user,
// a few contacts, one direct chat with history and one group. Real
// deployments overwrite nothing here; the seed only runs when no
// local-user record exists.
func (a *App) seed() error {
	localID := a.eff.Config.User.LocalID
	if localID == "" {
		localID = "u-local"
	}
	localName := a.eff.Config.User.LocalName
	if localName == "" {
		localName = "You"
	}

	users := []models.User{
		{ID: localID, Name: localName, About: "Hey there! I am using chatcore."},
		{ID: "u-amelia", Name: "Amelia Stone", About: "Busy"},
		{ID: "u-bruno", Name: "Bruno Keller", About: "At the gym"},
		{ID: "u-chioma", Name: "Chioma Obi", About: "Available"},
		{ID: "u-dario", Name: "Dario Fontana"},
	}
	for _, u := range users {
		if err := store.SaveUser(u); err != nil {
			return err
		}
	}
	if err := store.SetLocalUserID(localID); err != nil {
		return err
	}

	now := time.Now().UTC().UnixMilli()

	direct := models.Chat{
		ID:             utils.GenChatID(),
		Kind:           models.KindDirect,
		Name:           "Amelia Stone",
		Participants:   []string{localID, "u-amelia"},
		CreatedBy:      localID,
		LastActivityTS: now - 60_000,
		UnreadCount:    1,
	}
	hello := models.Message{
		ID:        utils.GenMsgID(),
		Chat:      direct.ID,
		Sender:    "u-amelia",
		TS:        now - 60_000,
		Text:      "Hey, are you around later?",
		Direction: models.DirectionIncoming,
	}
	direct.LastMessage = &hello
	if err := store.SaveChat(direct); err != nil {
		return err
	}
	if err := store.SaveMessage(direct.ID, hello); err != nil {
		return err
	}

	group := models.Chat{
		ID:             utils.GenChatID(),
		Kind:           models.KindGroup,
		Name:           "Weekend Plans",
		Participants:   []string{localID, "u-bruno", "u-chioma", "u-dario"},
		AdminIDs:       []string{localID},
		CreatedBy:      localID,
		Description:    "Figuring out Saturday",
		LastActivityTS: now - 3_600_000,
	}
	kickoff := models.Message{
		ID:        utils.GenMsgID(),
		Chat:      group.ID,
		Sender:    "u-bruno",
		TS:        now - 3_600_000,
		Text:      "Who's in for the hike?",
		Direction: models.DirectionIncoming,
	}
	group.LastMessage = &kickoff
	if err := store.SaveChat(group); err != nil {
		return err
	}
	if err := store.SaveMessage(group.ID, kickoff); err != nil {
		return err
	}

	logger.Info("snapshot_seeded", "users", len(users), "chats", 2, "local_user", localID)
	return nil
}
