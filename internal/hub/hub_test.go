package hub

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quickbuzz/buzzer-backend/internal/room"
	"github.com/quickbuzz/buzzer-backend/internal/types"
)

func createRoom(t *testing.T, h *Hub) (*room.Room, string) {
	t.Helper()
	outbox := make(chan types.ServerMessage, 16)
	reply := make(chan *room.Room, 1)
	h.Inbox() <- CreateRoom{ClientID: "host-id", Outbox: outbox, Reply: reply}

	rm := <-reply
	if rm == nil {
		t.Fatalf("expected a room")
	}

	select {
	case msg := <-outbox:
		if msg.Type != "room_created" || len(msg.Code) != 6 {
			t.Fatalf("want room_created with 6-char code, got %+v", msg)
		}
		return rm, msg.Code
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for room_created")
		return nil, "" // unreachable
	}
}

func getRoom(h *Hub, code string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	return <-reply
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	rm, code := createRoom(t, h)
	if got := getRoom(h, code); got != rm {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_LookupIsCaseInsensitive(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	rm, code := createRoom(t, h)
	if got := getRoom(h, strings.ToLower(code)); got != rm {
		t.Fatalf("lowercase lookup should resolve %q", code)
	}
}

func TestHub_UnknownCodeIsNil(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	if got := getRoom(h, "ZZZZZZ"); got != nil {
		t.Fatalf("unknown code should resolve to nil, got %v", got)
	}
}

func TestHub_EmptyRoomIsRemoved(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())

	rm, code := createRoom(t, h)
	rm.Inbox() <- room.Leave{ClientID: "host-id"}

	// Removal flows room → hub asynchronously; poll briefly.
	deadline := time.Now().Add(time.Second)
	for getRoom(h, code) != nil {
		if time.Now().After(deadline) {
			t.Fatalf("room %q still resolvable after emptying", code)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
