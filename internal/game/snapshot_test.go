package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectExposesNamesNotIDs(t *testing.T) {
	r := NewRoom("ABC123", "host-id")
	r.Join("a-id")
	r.Press("a-id", t0) // readies Player1

	st := Project(r)

	assert.Equal(t, []string{"Host", "Player1"}, st.Players)
	assert.Equal(t, []string{"Player1"}, st.ReadyPlayers)
	assert.Equal(t, "host-id", st.HostID)
	assert.False(t, st.AllReady)
	assert.True(t, st.RequireReady)
	assert.Equal(t, 3, st.CountdownSeconds)
}

func TestProjectAllReady(t *testing.T) {
	r := NewRoom("ABC123", "host-id")
	r.Join("a-id")
	r.Press("a-id", t0)
	r.Press("host-id", t0)

	assert.True(t, Project(r).AllReady)
}

func TestProjectIsPure(t *testing.T) {
	r := NewRoom("ABC123", "host-id")
	r.Join("a-id")
	r.Winners = append(r.Winners, "Player1")

	first := Project(r)
	second := Project(r)
	assert.Equal(t, first, second)

	// Mutating a projection must not leak back into room state.
	first.Winners[0] = "changed"
	first.Players[0] = "changed"
	assert.Equal(t, "Player1", r.Winners[0])
	assert.Equal(t, "Host", r.Players[0].Name)
}
