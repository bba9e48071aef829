package models

// Delivery status values for outgoing messages. Status only ever moves
// forward: pending -> sent -> delivered -> read.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Media kinds carried by MediaRef.
const (
	MediaImage    = "image"
	MediaDocument = "document"
	MediaAudio    = "audio"
	MediaVideo    = "video"
)

// MediaRef points at an attachment without owning its bytes.
type MediaRef struct {
	Kind            string  `json:"kind"`
	URL             string  `json:"url"`
	FileName        string  `json:"file_name,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// ReplyContext is the denormalized preview of the message being replied to.
type ReplyContext struct {
	MessageID   string `json:"message_id"`
	PreviewText string `json:"preview_text"`
	SenderName  string `json:"sender_name"`
}

type Message struct {
	ID     string `json:"id"`
	Chat   string `json:"chat"`
	Sender string `json:"sender"`
	// TS is the send timestamp (ms)
	TS        int64     `json:"ts"`
	Text      string    `json:"text,omitempty"`
	Media     *MediaRef `json:"media,omitempty"`
	Direction string    `json:"direction"`
	// Status is meaningful only for outgoing messages; empty for incoming.
	Status    string        `json:"status,omitempty"`
	ReplyTo   *ReplyContext `json:"reply_to,omitempty"`
	Forwarded bool          `json:"forwarded,omitempty"`
	Starred   bool          `json:"starred,omitempty"`
}

// HasPayload reports whether the message carries any content worth sending.
func (m *Message) HasPayload() bool { return m.Text != "" || m.Media != nil }
