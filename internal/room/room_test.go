package room

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quickbuzz/buzzer-backend/internal/game"
	"github.com/quickbuzz/buzzer-backend/internal/types"
)

// helper: receive one message with a timeout so tests never hang
func recvMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return types.ServerMessage{} // unreachable
	}
}

// helper: skip messages until one of the given type arrives
func recvType(t *testing.T, ch <-chan types.ServerMessage, msgType string, within time.Duration) types.ServerMessage {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatalf("outbox closed while waiting for %q", msgType)
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", msgType)
			return types.ServerMessage{} // unreachable
		}
	}
}

func recvNoType(t *testing.T, ch <-chan types.ServerMessage, msgType string, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				// channel closed → no further messages possible
				return
			}
			if msg.Type == msgType {
				t.Fatalf("expected no %q within %v, but got: %+v", msgType, within, msg)
			}
		case <-deadline:
			return // good
		}
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func newTestRoom(t *testing.T, onEmpty func(string)) (*Room, chan types.ServerMessage) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hostOut := make(chan types.ServerMessage, 16)
	r := New(ctx, zap.NewNop(), game.NewRoom("ABC123", "host-id"), hostOut, onEmpty)
	return r, hostOut
}

func TestRoom_CreateAnnouncesToHost(t *testing.T) {
	_, hostOut := newTestRoom(t, nil)

	created := recvMsg(t, hostOut, 100*time.Millisecond)
	if created.Type != "room_created" || created.Code != "ABC123" || created.Name != "Host" {
		t.Fatalf("want room_created for ABC123/Host, got %+v", created)
	}

	state := recvMsg(t, hostOut, 100*time.Millisecond)
	if state.Type != "state" || state.State == nil || len(state.State.Players) != 1 {
		t.Fatalf("want initial state with host only, got %+v", state)
	}
}

func TestRoom_JoinBroadcastsState(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}

	joined := recvType(t, playerOut, "joined_room", 100*time.Millisecond)
	if joined.Name != "Player1" {
		t.Fatalf("want assigned name Player1, got %q", joined.Name)
	}

	state := recvType(t, hostOut, "state", 200*time.Millisecond)
	for state.State == nil || len(state.State.Players) != 2 {
		state = recvType(t, hostOut, "state", 200*time.Millisecond)
	}
}

func TestRoom_ReadyThenFullRound(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}

	// Presses before the first round are ready signals.
	r.Inbox() <- Press{ClientID: "host-id"}
	r.Inbox() <- Press{ClientID: "p-id"}

	// Shorten the countdown so the test doesn't crawl.
	r.Inbox() <- SetCountdown{ClientID: "host-id", Seconds: float64(1)}
	r.Inbox() <- Reset{ClientID: "host-id"}

	start := recvType(t, hostOut, "countdown_start", 500*time.Millisecond)
	if start.CountdownSeconds != 1 || start.ServerTime == 0 {
		t.Fatalf("bad countdown_start: %+v", start)
	}

	end := recvType(t, hostOut, "countdown_end", 2*time.Second)
	if end.RoundStartTime == 0 {
		t.Fatalf("countdown_end must carry the authoritative round start")
	}

	r.Inbox() <- Press{ClientID: "p-id"}
	pressed := recvType(t, hostOut, "press_recorded", 500*time.Millisecond)
	if len(pressed.Presses) != 1 || pressed.Presses[0].Rank != 1 {
		t.Fatalf("want one rank-1 press, got %+v", pressed.Presses)
	}

	// Second press completes coverage: the round auto-ends.
	r.Inbox() <- Press{ClientID: "host-id"}
	ended := recvType(t, hostOut, "round_ended", 500*time.Millisecond)
	if ended.Winner != "Player1" || len(ended.Winners) != 1 {
		t.Fatalf("want Player1 as winner, got %+v", ended)
	}
}

func TestRoom_SupersededCountdownFiresOnce(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}
	r.Inbox() <- Press{ClientID: "host-id"}
	r.Inbox() <- Press{ClientID: "p-id"}
	r.Inbox() <- SetCountdown{ClientID: "host-id", Seconds: float64(1)}

	// Arm a countdown, then immediately supersede it with a second reset.
	r.Inbox() <- Reset{ClientID: "host-id"}
	r.Inbox() <- Reset{ClientID: "host-id"}

	_ = recvType(t, hostOut, "countdown_end", 2*time.Second)
	recvNoType(t, hostOut, "countdown_end", 1500*time.Millisecond)
}

func TestRoom_ShutdownStopsTimer(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}
	r.Inbox() <- Press{ClientID: "host-id"}
	r.Inbox() <- Press{ClientID: "p-id"}
	r.Inbox() <- SetCountdown{ClientID: "host-id", Seconds: float64(1)}
	r.Inbox() <- Reset{ClientID: "host-id"}
	r.Inbox() <- Shutdown{}

	recvNoType(t, hostOut, "countdown_end", 1500*time.Millisecond)
}

func TestRoom_HostLeaveMidCountdownStillStartsRound(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	otherOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}
	r.Inbox() <- Join{ClientID: "q-id", Outbox: otherOut}
	r.Inbox() <- Press{ClientID: "host-id"}
	r.Inbox() <- Press{ClientID: "p-id"}
	r.Inbox() <- SetCountdown{ClientID: "host-id", Seconds: float64(1)}
	r.Inbox() <- Reset{ClientID: "host-id"}

	_ = recvType(t, hostOut, "countdown_start", 500*time.Millisecond)
	r.Inbox() <- Leave{ClientID: "host-id"}

	// The pending round survives the host's departure; the elapse handler
	// re-validates instead of assuming cancellation.
	end := recvType(t, playerOut, "countdown_end", 2*time.Second)
	if end.RoundStartTime == 0 {
		t.Fatalf("round should still start for the remaining players")
	}

	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 500*time.Millisecond)
	if view.Room.HostID != "p-id" {
		t.Fatalf("want earliest-joined p-id promoted, got %q", view.Room.HostID)
	}
}

func TestRoom_LastLeaveEmptiesRoom(t *testing.T) {
	emptied := make(chan string, 1)
	r, hostOut := newTestRoom(t, func(code string) { emptied <- code })

	r.Inbox() <- Leave{ClientID: "host-id"}

	select {
	case code := <-emptied:
		if code != "ABC123" {
			t.Fatalf("want ABC123 reported empty, got %q", code)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("onEmpty was never called")
	}

	// Outbox drains then closes.
	for {
		if _, ok := <-hostOut; !ok {
			return
		}
	}
}

func TestRoom_RenameErrorsGoToSenderOnly(t *testing.T) {
	r, hostOut := newTestRoom(t, nil)

	playerOut := make(chan types.ServerMessage, 16)
	r.Inbox() <- Join{ClientID: "p-id", Outbox: playerOut}

	r.Inbox() <- Rename{ClientID: "p-id", NewName: "Host"}
	errMsg := recvType(t, playerOut, "error_msg", 500*time.Millisecond)
	if errMsg.Message != "Name already taken" {
		t.Fatalf("want name-taken error, got %+v", errMsg)
	}
	recvNoType(t, hostOut, "error_msg", 200*time.Millisecond)
}
