package game

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyName = errors.New("name cannot be empty")
var ErrNameTaken = errors.New("name already taken")

type JoinResult struct {
	Name     string
	Rejoined bool
}

// Join adds playerID to the room under the lowest unused PlayerN name.
// Joining twice with the same id is a no-op that reports the existing name,
// so reconnects don't duplicate players.
func (r *Room) Join(playerID string) JoinResult {
	if p := r.player(playerID); p != nil {
		return JoinResult{Name: p.Name, Rejoined: true}
	}
	name := nextPlayerName(r.Players)
	r.Players = append(r.Players, Player{ID: playerID, Name: name})
	return JoinResult{Name: name}
}

type LeaveResult struct {
	Empty       bool
	HostChanged bool
	NewHostID   string
}

// Leave removes the player and their ready flag. When the host leaves and
// players remain, the earliest-joined remaining player is promoted. Empty is
// set when the last player left; the caller destroys the room.
func (r *Room) Leave(playerID string) LeaveResult {
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	r.Players = kept
	delete(r.ReadyPlayers, playerID)

	if r.HostID != playerID {
		return LeaveResult{}
	}
	if len(r.Players) == 0 {
		return LeaveResult{Empty: true}
	}
	r.HostID = r.Players[0].ID
	return LeaveResult{HostChanged: true, NewHostID: r.HostID}
}

// Rename changes a player's display name. Historical records (current
// winner, winner history, presses) are relabeled too: playerID is the durable
// identity, names are just labels, and history should track identity.
func (r *Room) Rename(playerID, newName string) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return ErrEmptyName
	}
	for _, p := range r.Players {
		if p.ID != playerID && p.Name == trimmed {
			return ErrNameTaken
		}
	}
	p := r.player(playerID)
	if p == nil {
		return nil
	}

	oldName := p.Name
	p.Name = trimmed
	if r.CurrentWinner == oldName {
		r.CurrentWinner = trimmed
	}
	for i, w := range r.Winners {
		if w == oldName {
			r.Winners[i] = trimmed
		}
	}
	for i := range r.Presses {
		if r.Presses[i].PlayerID == playerID {
			r.Presses[i].PlayerName = trimmed
		}
	}
	return nil
}

type PressResult struct {
	Accepted   bool
	FirstPress bool
	Readied    bool // press consumed as a ready signal (pre-first-round gate)
	Ended      bool // this press completed the round (everyone has pressed)
}

// Press records a buzz. Before the first round launches, presses double as
// ready signals (idempotent). During an active round the press time is the
// server-side elapsed time since round start; ranks follow arrival order.
// Client timestamps are never consulted.
func (r *Room) Press(playerID string, now time.Time) PressResult {
	if r.RequireReady && r.RoundStartTime == 0 && !r.IsCountingDown && !r.HasWinner {
		r.ReadyPlayers[playerID] = true
		return PressResult{Readied: true}
	}

	if r.RoundStartTime == 0 {
		return PressResult{}
	}
	for _, p := range r.Presses {
		if p.PlayerID == playerID {
			return PressResult{}
		}
	}
	p := r.player(playerID)
	if p == nil {
		return PressResult{}
	}

	press := Press{
		PlayerID:    playerID,
		PlayerName:  p.Name,
		PressTimeMs: now.UnixMilli() - r.RoundStartTime,
		Rank:        len(r.Presses) + 1,
	}
	r.Presses = append(r.Presses, press)

	res := PressResult{Accepted: true, FirstPress: len(r.Presses) == 1}
	if res.FirstPress {
		r.CurrentWinner = p.Name
	}
	if len(r.Presses) == len(r.Players) {
		r.endRound()
		res.Ended = true
	}
	return res
}

type ResetAction int

const (
	ActionNone ResetAction = iota
	ActionEnded
	ActionReset
)

type ResetResult struct {
	Action           ResetAction
	CountdownSeconds int
}

// ResetRound is host-only. Against an active round it ends it; otherwise it
// starts a new countdown. The first launch requires at least two ready
// players and permanently clears the ready gate.
func (r *Room) ResetRound(hostID string, now time.Time) ResetResult {
	if r.HostID != hostID {
		return ResetResult{}
	}

	if r.RoundStartTime != 0 && !r.IsCountingDown && !r.HasWinner {
		r.endRound()
		return ResetResult{Action: ActionEnded}
	}

	if r.RequireReady {
		if len(r.ReadyPlayers) < 2 {
			return ResetResult{}
		}
		r.RequireReady = false
	}

	r.HasWinner = false
	r.CurrentWinner = ""
	r.Presses = []Press{}
	if r.CountdownSeconds == 0 {
		r.CountdownSeconds = defaultCountdownSeconds
	}
	r.IsCountingDown = true
	r.CountdownEndTime = now.UnixMilli() + int64(r.CountdownSeconds)*1000
	return ResetResult{Action: ActionReset, CountdownSeconds: r.CountdownSeconds}
}

func (r *Room) endRound() {
	r.HasWinner = true
	r.RoundStartTime = 0
	if r.CurrentWinner != "" {
		r.Winners = append(r.Winners, r.CurrentWinner)
	}
}

// BeginRound stamps the authoritative round start time; called when the
// countdown elapses. The caller is responsible for verifying the countdown is
// still the one it scheduled.
func (r *Room) BeginRound(now time.Time) {
	r.IsCountingDown = false
	r.CountdownEndTime = 0
	r.RoundStartTime = now.UnixMilli()
}

// UpdateCountdown is host-only; out-of-range values clamp to [1,10].
func (r *Room) UpdateCountdown(hostID string, seconds int) bool {
	if r.HostID != hostID {
		return false
	}
	r.CountdownSeconds = clampCountdown(seconds)
	return true
}
