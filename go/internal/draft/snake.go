package draft

// NextSnakeTurn advances the serpentine turn pointer. Direction flips at the
// boundary team, which therefore picks twice in a row: for three teams the
// order runs 0,1,2,2,1,0,0,1,2. A non-positive teamCount clamps to turn 0
// with the direction unchanged.
func NextSnakeTurn(turn, direction, teamCount int) (nextTurn, nextDirection int) {
	if teamCount <= 0 {
		return 0, direction
	}

	nextTurn = turn + direction
	nextDirection = direction
	if nextTurn > teamCount-1 {
		nextTurn = teamCount - 1
		nextDirection = -1
	} else if nextTurn < 0 {
		nextTurn = 0
		nextDirection = 1
	}
	return nextTurn, nextDirection
}
