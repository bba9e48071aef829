package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"

	"github.com/cockroachdb/pebble"
)

// Key layout:
//   chat:<chatID>:meta            chat summary record
//   chat:<chatID>:msg:<msgID>     log entry; msg ids sort in creation order
//   user:<userID>                 contact-directory entry
//   local:user                    id of the local user
const localUserKey = "local:user"

var (
	db     *pebble.DB
	dbPath string
)

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_snapshot_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("snapshot_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("snapshot_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("snapshot_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func chatMetaKey(chatID string) []byte { return []byte("chat:" + chatID + ":meta") }

func msgKey(chatID, msgID string) []byte {
	return []byte("chat:" + chatID + ":msg:" + msgID)
}

// SaveChat persists a chat summary record.
func SaveChat(c models.Chat) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	if err := db.Set(chatMetaKey(c.ID), data, pebble.Sync); err != nil {
		logger.Error("save_chat_failed", "chat", c.ID, "error", err)
		return err
	}
	return nil
}

// GetChat loads a single chat summary record.
func GetChat(chatID string) (models.Chat, error) {
	var c models.Chat
	if db == nil {
		return c, fmt.Errorf("snapshot not opened; call store.Open first")
	}
	v, closer, err := db.Get(chatMetaKey(chatID))
	if err != nil {
		return c, err
	}
	if closer != nil {
		defer closer.Close()
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("invalid chat record: %w", err)
	}
	return c, nil
}

// ListChats returns all persisted chat summary records.
func ListChats() ([]models.Chat, error) {
	if db == nil {
		return nil, fmt.Errorf("snapshot not opened; call store.Open first")
	}
	prefix := []byte("chat:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Chat
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !bytes.HasSuffix(iter.Key(), []byte(":meta")) {
			continue
		}
		var c models.Chat
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			logger.Error("list_chats_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, iter.Error()
}

// SaveMessage inserts or overwrites one log entry for a chat. Overwrites
// happen on star toggles and delivery-status advances.
func SaveMessage(chatID string, m models.Message) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := db.Set(msgKey(chatID, m.ID), data, pebble.Sync); err != nil {
		logger.Error("save_message_failed", "chat", chatID, "msg", m.ID, "error", err)
		return err
	}
	return nil
}

// ListMessages returns a chat's log in insertion order (message ids carry a
// sortable timestamp prefix).
func ListMessages(chatID string) ([]models.Message, error) {
	if db == nil {
		return nil, fmt.Errorf("snapshot not opened; call store.Open first")
	}
	prefix := []byte("chat:" + chatID + ":msg:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("list_messages_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// ClearChatLog deletes every log entry for a chat, leaving its summary
// record in place.
func ClearChatLog(chatID string) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	if err := deletePrefix([]byte("chat:" + chatID + ":msg:")); err != nil {
		logger.Error("clear_chat_log_failed", "chat", chatID, "error", err)
		return err
	}
	logger.Info("chat_log_cleared", "chat", chatID)
	return nil
}

// DeleteChat removes a chat's summary record and its whole log.
func DeleteChat(chatID string) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	if err := db.Delete(chatMetaKey(chatID), pebble.Sync); err != nil {
		logger.Error("delete_chat_failed", "chat", chatID, "error", err)
		return err
	}
	if err := deletePrefix([]byte("chat:" + chatID + ":msg:")); err != nil {
		logger.Error("delete_chat_log_failed", "chat", chatID, "error", err)
		return err
	}
	logger.Info("chat_deleted", "chat", chatID)
	return nil
}

// SaveUser persists a contact-directory entry.
func SaveUser(u models.User) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := db.Set([]byte("user:"+u.ID), data, pebble.Sync); err != nil {
		logger.Error("save_user_failed", "user", u.ID, "error", err)
		return err
	}
	return nil
}

// ListUsers returns the persisted contact directory.
func ListUsers() ([]models.User, error) {
	if db == nil {
		return nil, fmt.Errorf("snapshot not opened; call store.Open first")
	}
	prefix := []byte("user:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.User
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var u models.User
		if err := json.Unmarshal(iter.Value(), &u); err != nil {
			logger.Error("list_users_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, u)
	}
	return out, iter.Error()
}

// SetLocalUserID records which directory entry is the local user.
func SetLocalUserID(id string) error {
	if db == nil {
		return fmt.Errorf("snapshot not opened; call store.Open first")
	}
	return db.Set([]byte(localUserKey), []byte(id), pebble.Sync)
}

// LocalUserID returns the persisted local-user id, or empty when the store
// is fresh.
func LocalUserID() (string, error) {
	if db == nil {
		return "", fmt.Errorf("snapshot not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(localUserKey))
	if err == pebble.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if closer != nil {
		defer closer.Close()
	}
	return string(v), nil
}

// Stats summarizes the snapshot contents for the periodic sync sweep.
type Stats struct {
	Chats    int `json:"chats"`
	Messages int `json:"messages"`
	Users    int `json:"users"`
}

// Scan walks the whole snapshot, counting records and flagging entries
// that no longer parse. It is read-only.
func Scan() (Stats, error) {
	var st Stats
	if db == nil {
		return st, fmt.Errorf("snapshot not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return st, err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		k := string(iter.Key())
		switch {
		case bytes.HasSuffix(iter.Key(), []byte(":meta")):
			st.Chats++
			var c models.Chat
			if err := json.Unmarshal(iter.Value(), &c); err != nil {
				logger.Warn("scan_corrupt_chat", "key", k, "error", err)
			}
		case bytes.Contains(iter.Key(), []byte(":msg:")):
			st.Messages++
		case bytes.HasPrefix(iter.Key(), []byte("user:")):
			st.Users++
		}
	}
	return st, iter.Error()
}

func deletePrefix(prefix []byte) error {
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	var keys [][]byte
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Close(); err != nil {
		return err
	}
	for _, k := range keys {
		if err := db.Delete(k, pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}
