package store

import "chatcore/pkg/models"

// Persist adapts this package's functions to the engine's Persister
// interface so the engine stays free of a direct store dependency.
type Persist struct{}

func (Persist) SaveChat(c models.Chat) error                      { return SaveChat(c) }
func (Persist) DeleteChat(chatID string) error                    { return DeleteChat(chatID) }
func (Persist) SaveMessage(chatID string, m models.Message) error { return SaveMessage(chatID, m) }
func (Persist) ClearChatLog(chatID string) error                  { return ClearChatLog(chatID) }
func (Persist) SaveUser(u models.User) error                      { return SaveUser(u) }
func (Persist) SetLocalUserID(id string) error                    { return SetLocalUserID(id) }
