package types

import "github.com/quickbuzz/buzzer-backend/internal/game"

type ClientMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	NewName string `json:"newName,omitempty"`
	Seconds any    `json:"seconds,omitempty"` // number or string; parsed leniently
}

type ServerMessage struct {
	Type             string       `json:"type"`
	Code             string       `json:"code,omitempty"`
	Name             string       `json:"name,omitempty"`
	Message          string       `json:"message,omitempty"`
	State            *game.State  `json:"state,omitempty"`
	CountdownSeconds int          `json:"countdownSeconds,omitempty"`
	ServerTime       int64        `json:"serverTime,omitempty"`
	RoundStartTime   int64        `json:"roundStartTime,omitempty"`
	Winner           string       `json:"winner,omitempty"`
	Winners          []string     `json:"winners,omitempty"`
	Presses          []game.Press `json:"presses,omitempty"`
}
