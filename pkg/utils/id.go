package utils

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seq breaks ties when several messages share a millisecond timestamp and
// keeps ids creation-ordered within the process.
var seq uint64

// GenMsgID returns a message id that sorts lexicographically in creation
// order: m-<zero-padded unix-millis>-<seq>. Storage keys reuse the id
// directly so per-chat logs iterate in insertion order.
func GenMsgID() string {
	ts := time.Now().UTC().UnixMilli()
	s := atomic.AddUint64(&seq, 1)
	return fmt.Sprintf("m-%015d-%06d", ts, s)
}

// GenChatID returns a random chat id.
func GenChatID() string { return "c-" + uuid.NewString() }

// GenUserID returns a random user id.
func GenUserID() string { return "u-" + uuid.NewString() }
