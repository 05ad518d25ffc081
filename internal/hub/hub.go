package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/quickbuzz/buzzer-backend/internal/game"
	"github.com/quickbuzz/buzzer-backend/internal/room"
	"github.com/quickbuzz/buzzer-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

// CreateRoom makes a fresh room with the requesting connection as host and
// its outbox already registered. The room announces itself (room_created,
// state) on that outbox.
type CreateRoom struct {
	ClientID string
	Outbox   chan types.ServerMessage
	Reply    chan *room.Room
}

// GetRoom resolves a code (case-insensitive) to a live room, or nil.
type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom drops a code from the registry. Room actors post this when
// their player set empties; the actor has already stopped itself.
type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the registry actor: it owns the code→room map and nothing else.
// Per-room work happens inside each room actor, so rooms stay independent.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.createRoom(msg)

			case GetRoom:
				msg.Reply <- h.rooms[game.NormalizeCode(msg.Code)] // May be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

func (h *Hub) createRoom(msg CreateRoom) *room.Room {
	code, err := h.freshCode()
	if err != nil {
		h.log.Error("code generation failed", zap.Error(err))
		return nil
	}

	rm := room.New(h.ctx, h.log, game.NewRoom(code, msg.ClientID), msg.Outbox, func(code string) {
		// Runs on the room's goroutine; the buffered inbox keeps it from
		// blocking this loop.
		h.inbox <- RemoveRoom{Code: code}
	})
	h.rooms[code] = rm
	return rm
}

// freshCode retries until an unused code turns up. The code space (16^6)
// dwarfs any realistic number of live rooms, so the loop is effectively
// bounded.
func (h *Hub) freshCode() (string, error) {
	for {
		code, err := game.GenerateCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		h.log.Debug("collision on code, regenerating")
	}
}
