package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quickbuzz/buzzer-backend/internal/hub"
	"github.com/quickbuzz/buzzer-backend/internal/room"
	"github.com/quickbuzz/buzzer-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler bridges one websocket connection to the room actors. The
// connection id doubles as the player id for the lifetime of the socket, so
// a reconnect gets a fresh identity (matching the ephemeral registry).
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			hub:  h,
			log:  log,
		}
		defer c.leave()

		c.log.Debug("connected", zap.String("client", c.id))
		defer c.log.Debug("disconnected", zap.String("client", c.id))

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Clean close/going-away is normal; anything else just ends
				// the connection (leave happens in the defer either way).
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				c.sendDirect(r.Context(), types.ServerMessage{Type: "error_msg", Message: "bad json"})
				continue
			}
			c.dispatch(r.Context(), cm)
		}
	}
}

// client is the per-connection state: which room (if any) this socket is in
// and the outbox the room writes to. Only the reader loop touches it.
type client struct {
	id     string
	conn   *websocket.Conn
	hub    *hub.Hub
	log    *zap.Logger
	room   *room.Room
	outbox chan types.ServerMessage
}

func (c *client) dispatch(ctx context.Context, msg types.ClientMessage) {
	switch msg.Type {
	case "create_room":
		if c.room != nil {
			return
		}
		c.outbox = make(chan types.ServerMessage, 8)
		go c.writeLoop(ctx, c.outbox)

		reply := make(chan *room.Room, 1)
		c.hub.Inbox() <- hub.CreateRoom{ClientID: c.id, Outbox: c.outbox, Reply: reply}
		c.room = <-reply
		if c.room == nil {
			c.sendDirect(ctx, types.ServerMessage{Type: "error_msg", Message: "Could not create room"})
		}

	case "join_room":
		if c.room != nil {
			return
		}
		reply := make(chan *room.Room, 1)
		c.hub.Inbox() <- hub.GetRoom{Code: msg.Code, Reply: reply}
		rm := <-reply
		if rm == nil {
			c.sendDirect(ctx, types.ServerMessage{Type: "error_msg", Message: "Room not found"})
			return
		}
		c.outbox = make(chan types.ServerMessage, 8)
		go c.writeLoop(ctx, c.outbox)
		c.room = rm
		rm.Inbox() <- room.Join{ClientID: c.id, Outbox: c.outbox}

	case "leave_room":
		c.leave()

	case "change_name":
		if c.room != nil {
			c.room.Inbox() <- room.Rename{ClientID: c.id, NewName: msg.NewName}
		}

	case "press":
		if c.room != nil {
			c.room.Inbox() <- room.Press{ClientID: c.id}
		}

	case "reset":
		if c.room != nil {
			c.room.Inbox() <- room.Reset{ClientID: c.id}
		}

	case "update_countdown":
		if c.room != nil {
			c.room.Inbox() <- room.SetCountdown{ClientID: c.id, Seconds: msg.Seconds}
		}

	default:
		c.sendDirect(ctx, types.ServerMessage{Type: "error_msg", Message: "unknown type"})
	}
}

func (c *client) leave() {
	if c.room == nil {
		return
	}
	// The room closes the outbox, which ends the write loop.
	c.room.Inbox() <- room.Leave{ClientID: c.id}
	c.room = nil
	c.outbox = nil
}

// writeLoop drains one room membership's outbox onto the socket. It exits
// when the room closes the channel (leave, shutdown, or slow-client drop).
func (c *client) writeLoop(parent context.Context, out <-chan types.ServerMessage) {
	for msg := range out {
		payload, _ := json.Marshal(msg)
		ctx, cancel := context.WithTimeout(parent, writeTimeout)
		_ = c.conn.Write(ctx, websocket.MessageText, payload)
		cancel()
	}
}

func (c *client) sendDirect(ctx context.Context, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, payload)
}
