package utils

import (
	"sort"
	"strings"
	"testing"
)

func TestGenMsgIDOrderedAndUnique(t *testing.T) {
	const n = 1000
	ids := make([]string, n)
	for i := range ids {
		ids[i] = GenMsgID()
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatalf("message ids must sort in creation order")
	}
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
		if !strings.HasPrefix(id, "m-") {
			t.Fatalf("unexpected id shape: %s", id)
		}
	}
}

func TestGenChatAndUserIDs(t *testing.T) {
	if id := GenChatID(); !strings.HasPrefix(id, "c-") {
		t.Fatalf("unexpected chat id: %s", id)
	}
	if id := GenUserID(); !strings.HasPrefix(id, "u-") {
		t.Fatalf("unexpected user id: %s", id)
	}
	if GenChatID() == GenChatID() {
		t.Fatalf("chat ids must be unique")
	}
}
