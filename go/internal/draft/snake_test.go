package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSnakeTurnThreeTeams(t *testing.T) {
	// Boundary teams pick twice in a row at every turnaround.
	want := []int{1, 2, 2, 1, 0, 0, 1, 2, 2, 1, 0, 0}

	turn, dir := 0, 1
	var got []int
	for range want {
		turn, dir = NextSnakeTurn(turn, dir, 3)
		got = append(got, turn)
	}
	assert.Equal(t, want, got)
}

func TestNextSnakeTurnTwoTeams(t *testing.T) {
	want := []int{1, 1, 0, 0, 1, 1, 0, 0}

	turn, dir := 0, 1
	var got []int
	for range want {
		turn, dir = NextSnakeTurn(turn, dir, 2)
		got = append(got, turn)
	}
	assert.Equal(t, want, got)
}

func TestNextSnakeTurnFlips(t *testing.T) {
	tests := []struct {
		name      string
		turn, dir int
		teamCount int
		wantTurn  int
		wantDir   int
	}{
		{"forward mid-row", 1, 1, 4, 2, 1},
		{"forward at upper boundary", 3, 1, 4, 3, -1},
		{"backward mid-row", 2, -1, 4, 1, -1},
		{"backward at lower boundary", 0, -1, 4, 0, 1},
		{"single team stays put", 0, 1, 1, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, dir := NextSnakeTurn(tt.turn, tt.dir, tt.teamCount)
			assert.Equal(t, tt.wantTurn, turn)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestNextSnakeTurnNonPositiveTeamCount(t *testing.T) {
	turn, dir := NextSnakeTurn(5, -1, 0)
	assert.Equal(t, 0, turn)
	assert.Equal(t, -1, dir)

	turn, dir = NextSnakeTurn(5, 1, -3)
	assert.Equal(t, 0, turn)
	assert.Equal(t, 1, dir)
}
