package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quickbuzz/buzzer-backend/internal/game"
	"github.com/quickbuzz/buzzer-backend/internal/types"
)

// Extra wait past the configured countdown before the round goes live, so a
// client-rendered countdown never outruns the server's transition.
const countdownGrace = 100 * time.Millisecond

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Rename struct {
	ClientID string
	NewName  string
}

func (Rename) isRoomMsg() {}

type Press struct{ ClientID string }

func (Press) isRoomMsg() {}

type Reset struct{ ClientID string }

func (Reset) isRoomMsg() {}

type SetCountdown struct {
	ClientID string
	Seconds  any
}

func (SetCountdown) isRoomMsg() {}

// countdownElapsed is posted back into the inbox by the scheduled timer.
// Gen identifies which countdown armed it; a fire from a superseded
// countdown is dropped.
type countdownElapsed struct{ gen int }

func (countdownElapsed) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects internal state for tests without data races.
type View struct {
	NumClients int
	Room       game.Room
}

// Room is the actor owning one game session. Every operation against the
// session runs to completion inside loop() before the next is considered,
// which is what keeps rank assignment and host succession consistent under
// concurrent connections. Rooms share nothing, so separate rooms run in
// parallel freely.
type Room struct {
	inbox    chan Msg
	state    *game.Room
	clients  map[string]chan types.ServerMessage
	timer    *time.Timer
	timerGen int
	onEmpty  func(code string)
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// New starts the actor with the creator already registered. The creator gets
// room_created on its outbox, followed by the first state broadcast.
// onEmpty is called (from the actor goroutine) when the last player leaves;
// it may be nil.
func New(parent context.Context, log *zap.Logger, state *game.Room, hostOutbox chan types.ServerMessage, onEmpty func(code string)) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   state,
		clients: map[string]chan types.ServerMessage{state.HostID: hostOutbox},
		onEmpty: onEmpty,
		log:     log.With(zap.String("room", state.Code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	r.send(state.HostID, types.ServerMessage{Type: "room_created", Code: state.Code, Name: "Host"})
	r.broadcastState()
	r.log.Info("room created", zap.String("host", state.HostID))

	go r.loop()
	return r
}

// Inbox exposes the message channel to the transport layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Code is immutable after creation, safe to read from any goroutine.
func (r *Room) Code() string { return r.state.Code }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				if r.handleLeave(msg) {
					return
				}
			case Rename:
				r.handleRename(msg)
			case Press:
				r.handlePress(msg)
			case Reset:
				r.handleReset(msg)
			case SetCountdown:
				if r.state.UpdateCountdown(msg.ClientID, game.ParseCountdown(msg.Seconds)) {
					r.broadcastState()
					r.log.Info("countdown updated", zap.Int("seconds", r.state.CountdownSeconds))
				}
			case countdownElapsed:
				r.handleCountdownElapsed(msg)
			case GetState:
				msg.Reply <- View{NumClients: len(r.clients), Room: r.state.Clone()}
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	res := r.state.Join(msg.ClientID)
	r.clients[msg.ClientID] = msg.Outbox
	r.send(msg.ClientID, types.ServerMessage{Type: "joined_room", Name: res.Name})
	r.broadcastState()
	if !res.Rejoined {
		r.log.Info("player joined", zap.String("name", res.Name))
	}
}

// handleLeave reports whether the room emptied and the actor stopped.
func (r *Room) handleLeave(msg Leave) bool {
	if ch, ok := r.clients[msg.ClientID]; ok {
		close(ch)
		delete(r.clients, msg.ClientID)
	}
	res := r.state.Leave(msg.ClientID)

	if res.Empty {
		r.log.Info("room deleted (empty)")
		if r.onEmpty != nil {
			r.onEmpty(r.state.Code)
		}
		r.shutdown()
		return true
	}

	if res.HostChanged {
		r.log.Info("new host", zap.String("host", res.NewHostID))
	}
	r.broadcastState()
	return false
}

func (r *Room) handleRename(msg Rename) {
	if err := r.state.Rename(msg.ClientID, msg.NewName); err != nil {
		r.send(msg.ClientID, types.ServerMessage{Type: "error_msg", Message: renameError(err)})
		return
	}
	if p := playerName(r.state, msg.ClientID); p != "" {
		r.send(msg.ClientID, types.ServerMessage{Type: "name_changed", Name: p})
		r.log.Info("name changed", zap.String("name", p))
	}
	r.broadcastState()
}

func (r *Room) handlePress(msg Press) {
	res := r.state.Press(msg.ClientID, time.Now())

	if res.Readied {
		r.broadcastState()
		return
	}
	if !res.Accepted {
		return
	}

	r.broadcast(types.ServerMessage{Type: "press_recorded", Presses: r.pressesCopy()})
	r.log.Debug("press recorded",
		zap.String("player", playerName(r.state, msg.ClientID)),
		zap.Int("rank", len(r.state.Presses)))

	// Everyone has pressed: the round is already ended in state.
	if res.Ended {
		r.broadcastRoundEnded()
		r.broadcastState()
		r.log.Info("round auto-ended", zap.String("winner", r.state.CurrentWinner))
	}
}

func (r *Room) handleReset(msg Reset) {
	res := r.state.ResetRound(msg.ClientID, time.Now())
	switch res.Action {
	case game.ActionEnded:
		r.broadcastRoundEnded()
		r.broadcastState()
		r.log.Info("round ended", zap.String("winner", r.state.CurrentWinner))

	case game.ActionReset:
		r.broadcastState()
		r.broadcast(types.ServerMessage{
			Type:             "countdown_start",
			CountdownSeconds: res.CountdownSeconds,
			ServerTime:       time.Now().UnixMilli(),
		})
		r.startCountdown(res.CountdownSeconds)
		r.log.Info("round reset", zap.Int("countdown", res.CountdownSeconds))
	}
}

// startCountdown arms the round-start timer, superseding any pending one.
// The fire posts a message back into the inbox, so the transition runs on the
// actor goroutine like every other operation.
func (r *Room) startCountdown(seconds int) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(time.Duration(seconds)*time.Second+countdownGrace, func() {
		select {
		case r.inbox <- countdownElapsed{gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) handleCountdownElapsed(msg countdownElapsed) {
	// A stale fire: a newer countdown superseded this one, or the room moved
	// on (e.g. the round was ended while the message sat in the inbox).
	if msg.gen != r.timerGen || !r.state.IsCountingDown {
		return
	}
	r.state.BeginRound(time.Now())
	r.broadcast(types.ServerMessage{Type: "countdown_end", RoundStartTime: r.state.RoundStartTime})
	r.broadcastState()
	r.log.Info("round started")
}

func (r *Room) broadcastRoundEnded() {
	r.broadcast(types.ServerMessage{
		Type:    "round_ended",
		Winner:  r.state.CurrentWinner,
		Winners: append([]string{}, r.state.Winners...),
		Presses: r.pressesCopy(),
	})
}

func (r *Room) broadcastState() {
	st := game.Project(r.state)
	r.broadcast(types.ServerMessage{Type: "state", State: &st})
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) send(clientID string, msg types.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) pressesCopy() []game.Press {
	return append([]game.Press{}, r.state.Presses...)
}

func (r *Room) shutdown() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	for id, ch := range r.clients {
		close(ch) // Tell client no more messages
		delete(r.clients, id)
	}
	r.cancel()
}

func playerName(st *game.Room, playerID string) string {
	for _, p := range st.Players {
		if p.ID == playerID {
			return p.Name
		}
	}
	return ""
}

func renameError(err error) string {
	switch err {
	case game.ErrEmptyName:
		return "Name cannot be empty"
	case game.ErrNameTaken:
		return "Name already taken"
	default:
		return "Could not change name"
	}
}
