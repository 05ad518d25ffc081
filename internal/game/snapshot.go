package game

// State is the client-visible projection of a Room. Other players are only
// ever exposed by name; ids stay server-side (HostID excepted, so a client
// can tell whether it holds the host controls).
type State struct {
	Code             string   `json:"code"`
	HostID           string   `json:"hostId"`
	HasWinner        bool     `json:"hasWinner"`
	CurrentWinner    string   `json:"currentWinner"`
	Winners          []string `json:"winners"`
	Players          []string `json:"players"`
	ReadyPlayers     []string `json:"readyPlayers"`
	AllReady         bool     `json:"allReady"`
	RequireReady     bool     `json:"requireReady"`
	CountdownSeconds int      `json:"countdownSeconds"`
	IsCountingDown   bool     `json:"isCountingDown"`
	CountdownEndTime int64    `json:"countdownEndTime"`
}

// Project derives the broadcast snapshot from room state. Pure: it never
// mutates the room and is recomputed on every broadcast rather than cached,
// so there is no second copy to drift.
func Project(r *Room) State {
	players := make([]string, 0, len(r.Players))
	ready := make([]string, 0, len(r.ReadyPlayers))
	for _, p := range r.Players {
		players = append(players, p.Name)
		if r.ReadyPlayers[p.ID] {
			ready = append(ready, p.Name)
		}
	}

	seconds := r.CountdownSeconds
	if seconds == 0 {
		seconds = defaultCountdownSeconds
	}

	return State{
		Code:             r.Code,
		HostID:           r.HostID,
		HasWinner:        r.HasWinner,
		CurrentWinner:    r.CurrentWinner,
		Winners:          append([]string{}, r.Winners...),
		Players:          players,
		ReadyPlayers:     ready,
		AllReady:         len(r.Players) > 0 && len(r.ReadyPlayers) == len(r.Players),
		RequireReady:     r.RequireReady,
		CountdownSeconds: seconds,
		IsCountingDown:   r.IsCountingDown,
		CountdownEndTime: r.CountdownEndTime,
	}
}
