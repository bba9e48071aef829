// Package engine owns the chat entity model and every operation that may
// mutate it. All state lives behind one mutex; operations apply atomically
// and deferred timer work re-checks entity existence before writing, so a
// stale timer is a no-op rather than an error.
package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/telemetry"
)

// Persister receives write-through copies of the durable fields: chats,
// per-chat logs, the user directory and the local-user id. View modes,
// search terms, confirmations and typing markers are never persisted.
type Persister interface {
	SaveChat(c models.Chat) error
	DeleteChat(chatID string) error
	SaveMessage(chatID string, m models.Message) error
	ClearChatLog(chatID string) error
	SaveUser(u models.User) error
	SetLocalUserID(id string) error
}

type noopPersister struct{}

func (noopPersister) SaveChat(models.Chat) error { return nil }
func (noopPersister) DeleteChat(string) error { return nil }
func (noopPersister) SaveMessage(string, models.Message) error { return nil }
func (noopPersister) ClearChatLog(string) error { return nil }
func (noopPersister) SaveUser(models.User) error { return nil }
func (noopPersister) SetLocalUserID(string) error { return nil }

// Config holds the simulator knobs. Zero values fall back to defaults.
type Config struct {
	// AckDelay is how long a sent message stays pending before the
	// simulated backend acknowledges it.
	AckDelay time.Duration
	// GroupCreateDelay is the simulated backend latency for group creation.
	GroupCreateDelay time.Duration

	TypingInterval  time.Duration
	TypingStartProb float64
	TypingStopProb  float64
	TypingMinDur    time.Duration
	TypingMaxDur    time.Duration
	// TypingRate caps simulated typing starts per second across all chats.
	TypingRate float64
}

func (c *Config) applyDefaults() {
	if c.AckDelay <= 0 {
		c.AckDelay = 1500 * time.Millisecond
	}
	if c.GroupCreateDelay <= 0 {
		c.GroupCreateDelay = 1500 * time.Millisecond
	}
	if c.TypingInterval <= 0 {
		c.TypingInterval = time.Second
	}
	if c.TypingStartProb <= 0 {
		c.TypingStartProb = 0.04
	}
	if c.TypingStopProb <= 0 {
		c.TypingStopProb = 0.25
	}
	if c.TypingMinDur <= 0 {
		c.TypingMinDur = 1500 * time.Millisecond
	}
	if c.TypingMaxDur <= c.TypingMinDur {
		c.TypingMaxDur = c.TypingMinDur + 3*time.Second
	}
	if c.TypingRate <= 0 {
		c.TypingRate = 5
	}
}

// ViewMode is the mutually-exclusive UI context governing which derived
// list is shown. Exactly one mode is current at a time.
type ViewMode string

const (
	ModeDefault      ViewMode = "default"
	ModeArchived     ViewMode = "archived"
	ModeNewChat      ViewMode = "new_chat"
	ModeCreateGroup  ViewMode = "create_group"
	ModeStarred      ViewMode = "starred"
	ModeMediaGallery ViewMode = "media_gallery"
)

// Engine is the single source of truth for chats and messages. Construct
// isolated instances with New; there is no package-level singleton.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	now     func() time.Time
	rng     *rand.Rand
	limiter *rate.Limiter
	persist Persister

	localUserID string
	users       map[string]models.User
	chats       map[string]*models.Chat
	logs        map[string][]models.Message

	// ephemeral view state, reinitialized empty on restart
	activeChatID  string
	mode          ViewMode
	searchTerm    string
	creatingGroup bool
	pending       *Confirmation
	typing        map[string]map[string]struct{}
}

// New constructs an empty engine. A nil persister keeps all state in
// memory, which is what tests use.
func New(cfg Config, p Persister) *Engine {
	cfg.applyDefaults()
	if p == nil {
		p = noopPersister{}
	}
	return &Engine{
		cfg:     cfg,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		limiter: rate.NewLimiter(rate.Limit(cfg.TypingRate), 1),
		persist: p,
		users:   map[string]models.User{},
		chats:   map[string]*models.Chat{},
		logs:    map[string][]models.Message{},
		mode:    ModeDefault,
		typing:  map[string]map[string]struct{}{},
	}
}

// Hydrate loads the durable fields (typically from the snapshot store) and
// resets all ephemeral view state. It is the only entry point that returns
// an error: a missing local-user record is a programming error, not an
// expected precondition failure.
func (e *Engine) Hydrate(localUserID string, users []models.User, chats []models.Chat, logs map[string][]models.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir := make(map[string]models.User, len(users))
	for _, u := range users {
		dir[u.ID] = u
	}
	if _, ok := dir[localUserID]; !ok {
		return fmt.Errorf("local user record missing: %s", localUserID)
	}

	e.localUserID = localUserID
	e.users = dir
	e.chats = make(map[string]*models.Chat, len(chats))
	for i := range chats {
		c := chats[i]
		e.chats[c.ID] = &c
	}
	e.logs = make(map[string][]models.Message, len(logs))
	for id, msgs := range logs {
		e.logs[id] = append([]models.Message(nil), msgs...)
	}

	e.activeChatID = ""
	e.mode = ModeDefault
	e.searchTerm = ""
	e.creatingGroup = false
	e.pending = nil
	e.typing = map[string]map[string]struct{}{}

	telemetry.SetChats(len(e.chats))
	logger.Info("engine_hydrated", "chats", len(e.chats), "users", len(e.users), "local_user", localUserID)
	return nil
}

// LocalUser returns the local user's directory entry.
func (e *Engine) LocalUser() models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.users[e.localUserID]
}

// Users returns the full directory sorted by name.
func (e *Engine) Users() []models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.User, 0, len(e.users))
	for _, u := range e.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Chat returns a copy of one chat's summary record.
func (e *Engine) Chat(chatID string) (models.Chat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.chats[chatID]
	if !ok {
		return models.Chat{}, false
	}
	return *c, true
}

// ChatLog returns a copy of one chat's message log in insertion order.
func (e *Engine) ChatLog(chatID string) []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Message(nil), e.logs[chatID]...)
}

// reject records a precondition failure: diagnostic log plus counter,
// never a panic or error return.
func (e *Engine) reject(op, reason string, args ...any) {
	telemetry.IncReject(op, reason)
	logger.Warn(op+"_rejected", append([]any{"reason", reason}, args...)...)
}

// chatLocked resolves a chat id, logging an invalid-target reject when it
// no longer exists.
func (e *Engine) chatLocked(op, chatID string) (*models.Chat, bool) {
	c, ok := e.chats[chatID]
	if !ok {
		e.reject(op, "invalid_target", "chat", chatID)
		return nil, false
	}
	return c, true
}

func (e *Engine) persistChat(c *models.Chat) {
	if err := e.persist.SaveChat(*c); err != nil {
		logger.Error("persist_chat_failed", "chat", c.ID, "error", err)
	}
}

func (e *Engine) persistMessage(chatID string, m models.Message) {
	if err := e.persist.SaveMessage(chatID, m); err != nil {
		logger.Error("persist_message_failed", "chat", chatID, "msg", m.ID, "error", err)
	}
}
