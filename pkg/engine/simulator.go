package engine

import (
	"context"
	"sort"
	"time"

	"chatcore/pkg/logger"
	"chatcore/pkg/telemetry"
)

// StartSimulator runs the typing-activity loop until ctx is cancelled.
// Message acknowledgment needs no loop; SendMessage schedules it per
// message. The simulation is cosmetic: its only invariant is that typing
// markers reference current participants of their chat.
func (e *Engine) StartSimulator(ctx context.Context) {
	go e.typingLoop(ctx)
}

func (e *Engine) typingLoop(ctx context.Context) {
	t := time.NewTicker(e.cfg.TypingInterval)
	defer t.Stop()
	logger.Info("typing_sim_started", "interval", e.cfg.TypingInterval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("typing_sim_stopping")
			return
		case <-t.C:
			e.typingTick()
		}
	}
}

// typingTick rolls the dice once per non-local participant of every
// non-archived chat: idle participants may start typing, typing ones may
// stop early. Starts are bounded by the shared rate limiter.
func (e *Engine) typingTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.chats {
		if c.Archived {
			continue
		}
		for _, uid := range c.Participants {
			if uid == e.localUserID {
				continue
			}
			set := e.typing[c.ID]
			if _, active := set[uid]; active {
				if e.rng.Float64() < e.cfg.TypingStopProb {
					e.stopTypingLocked(c.ID, uid)
				}
				continue
			}
			if e.rng.Float64() < e.cfg.TypingStartProb && e.limiter.Allow() {
				e.startTypingLocked(c.ID, uid)
			}
		}
	}
}

// startTypingLocked adds the marker and arms its expiry. The expiry body
// re-checks existence under the lock, so a marker whose chat was deleted
// or whose user was removed in the interim clears as a no-op.
func (e *Engine) startTypingLocked(chatID, userID string) {
	set := e.typing[chatID]
	if set == nil {
		set = map[string]struct{}{}
		e.typing[chatID] = set
	}
	set[userID] = struct{}{}
	telemetry.IncTypingEvent()
	logger.Debug("typing_started", "chat", chatID, "user", userID)

	span := e.cfg.TypingMaxDur - e.cfg.TypingMinDur
	dur := e.cfg.TypingMinDur + time.Duration(e.rng.Int63n(int64(span)+1))
	time.AfterFunc(dur, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.stopTypingLocked(chatID, userID)
	})
}

func (e *Engine) stopTypingLocked(chatID, userID string) {
	set := e.typing[chatID]
	if set == nil {
		return
	}
	if _, ok := set[userID]; !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(e.typing, chatID)
	}
	logger.Debug("typing_stopped", "chat", chatID, "user", userID)
}

// TypingUsers returns the ids currently marked as typing in a chat.
func (e *Engine) TypingUsers(chatID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	set := e.typing[chatID]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
