package models

const (
	KindDirect = "direct"
	KindGroup  = "group"
)

// Chat is the summary record for a conversation. Participants and admins
// are stored as user ids against the engine's user directory; AdminIDs is
// always a subset of Participants.
type Chat struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar,omitempty"`
	Participants []string `json:"participants"`
	AdminIDs     []string `json:"admin_ids,omitempty"`
	CreatedBy    string   `json:"created_by,omitempty"`
	Description  string   `json:"description,omitempty"`
	// LastMessage is a denormalized copy of the newest log entry; nil when
	// the log is empty or was cleared.
	LastMessage *Message `json:"last_message,omitempty"`
	// LastActivityTS (ms) is monotonically non-decreasing.
	LastActivityTS int64 `json:"last_activity_ts"`
	UnreadCount    int   `json:"unread_count"`
	Muted          bool  `json:"muted,omitempty"`
	Archived       bool  `json:"archived,omitempty"`
	Pinned         bool  `json:"pinned,omitempty"`
	// Blocked is meaningful only for direct chats.
	Blocked      bool `json:"blocked,omitempty"`
	MarkedUnread bool `json:"marked_unread,omitempty"`
}

func (c Chat) IsGroup() bool { return c.Kind == KindGroup }

// HasParticipant reports whether the user id is a participant.
func (c Chat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user id is a group admin.
func (c Chat) IsAdmin(id string) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}
