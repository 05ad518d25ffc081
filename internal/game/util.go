package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// GenerateCode returns a 6-character uppercase hex room code (3 random
// bytes). Lookup is case-insensitive; codes are stored uppercase.
func GenerateCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizeCode maps user-supplied codes onto the stored form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// nextPlayerName picks the lowest unused PlayerN, so a freed slot is reused
// by the next joiner.
func nextPlayerName(players []Player) string {
	taken := make(map[string]bool, len(players))
	for _, p := range players {
		taken[p.Name] = true
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("Player%d", n)
		if !taken[name] {
			return name
		}
	}
}

// ParseCountdown turns an arbitrary decoded JSON scalar into a countdown
// length. Unparseable input falls back to the default before clamping, so a
// garbage payload lands on 3 rather than an error.
func ParseCountdown(v any) int {
	seconds := defaultCountdownSeconds
	switch x := v.(type) {
	case float64:
		seconds = int(x)
	case int:
		seconds = x
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err == nil {
			seconds = n
		}
	}
	return clampCountdown(seconds)
}

func clampCountdown(seconds int) int {
	if seconds < 1 {
		return 1
	}
	if seconds > 10 {
		return 10
	}
	return seconds
}
