package game

// Player is one connection's membership in a room. ID is the durable
// identity; Name is a display label and may change.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Press is one buzz during a round. Rank is assigned in server arrival
// order, starting at 1.
type Press struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	PressTimeMs int64  `json:"pressTimeMs"`
	Rank        int    `json:"rank"`
}

// Room is the full server-side state of one game session. All mutation goes
// through the methods in game.go; callers must serialize access per room.
type Room struct {
	Code             string
	HostID           string
	Players          []Player
	ReadyPlayers     map[string]bool
	RequireReady     bool
	HasWinner        bool
	CurrentWinner    string
	Winners          []string
	CountdownSeconds int
	IsCountingDown   bool
	CountdownEndTime int64 // unix ms, 0 unless counting down
	RoundStartTime   int64 // unix ms, 0 unless a round is active
	Presses          []Press
}

const defaultCountdownSeconds = 3

// NewRoom creates a room with the given host as its only player, named
// "Host". RequireReady starts latched on and clears permanently once the
// first round launches.
func NewRoom(code, hostID string) *Room {
	return &Room{
		Code:             code,
		HostID:           hostID,
		Players:          []Player{{ID: hostID, Name: "Host"}},
		ReadyPlayers:     map[string]bool{},
		RequireReady:     true,
		CountdownSeconds: defaultCountdownSeconds,
		Winners:          []string{},
		Presses:          []Press{},
	}
}

func (r *Room) player(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// Clone returns a deep copy, used to hand room state across goroutine
// boundaries (test inspection hooks).
func (r *Room) Clone() Room {
	c := *r
	c.Players = append([]Player(nil), r.Players...)
	c.Winners = append([]string(nil), r.Winners...)
	c.Presses = append([]Press(nil), r.Presses...)
	c.ReadyPlayers = make(map[string]bool, len(r.ReadyPlayers))
	for id := range r.ReadyPlayers {
		c.ReadyPlayers[id] = true
	}
	return c
}
