package engine

import "chatcore/pkg/logger"

// Confirmation is a pending request for explicit user approval before a
// destructive action runs. The engine holds at most one at a time.
type Confirmation struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Destructive  bool
	OnConfirm    func()
	// OnCancel, when set, runs on dismissal in addition to clearing the slot.
	OnCancel func()
}

// RequestConfirmation installs a pending confirmation, replacing any
// existing one. There is no queue.
func (e *Engine) RequestConfirmation(c Confirmation) {
	e.mu.Lock()
	if e.pending != nil {
		logger.Debug("confirmation_replaced", "title", e.pending.Title)
	}
	e.pending = &c
	e.mu.Unlock()
	logger.Debug("confirmation_requested", "title", c.Title, "destructive", c.Destructive)
}

// PendingConfirmation returns a copy of the open confirmation, if any. The
// callbacks in the copy are live.
func (e *Engine) PendingConfirmation() (Confirmation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return Confirmation{}, false
	}
	return *e.pending, true
}

// Confirm runs the pending action and clears the slot. The callback runs
// outside the engine lock so it may invoke any operation.
func (e *Engine) Confirm() {
	e.mu.Lock()
	c := e.pending
	e.pending = nil
	e.mu.Unlock()
	if c == nil {
		return
	}
	if c.OnConfirm != nil {
		c.OnConfirm()
	}
	logger.Debug("confirmation_confirmed", "title", c.Title)
}

// CancelConfirmation dismisses the pending confirmation, running its
// cancel hook when present.
func (e *Engine) CancelConfirmation() {
	e.mu.Lock()
	c := e.pending
	e.pending = nil
	e.mu.Unlock()
	if c == nil {
		return
	}
	if c.OnCancel != nil {
		c.OnCancel()
	}
	logger.Debug("confirmation_cancelled", "title", c.Title)
}
