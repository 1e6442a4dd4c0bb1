package domain

// ChitsPerEntity is the number of matching chits in circulation per active
// player slot; collecting a full set wins the round.
const ChitsPerEntity = 4

// EntityAt returns the entity name for slot i, cycling through the configured
// list when i exceeds the distinct count.
func EntityAt(entities []string, i int) string {
	return entities[i%len(entities)]
}

// BuildChitPool returns the unshuffled pool for a deal with numPlayers
// connected players: ChitsPerEntity copies of each of the first numPlayers
// entity names, cyclically extended.
func BuildChitPool(entities []string, numPlayers int) []string {
	pool := make([]string, 0, numPlayers*ChitsPerEntity)
	for i := 0; i < numPlayers; i++ {
		entity := EntityAt(entities, i)
		for j := 0; j < ChitsPerEntity; j++ {
			pool = append(pool, entity)
		}
	}
	return pool
}

// WinningEntity reports whether the hand is a complete matching set and, if
// so, which entity it matches. Pure over the hand; phase and turn state are
// checked by the caller.
func WinningEntity(hand []string) (string, bool) {
	if len(hand) != ChitsPerEntity {
		return "", false
	}
	for _, chit := range hand[1:] {
		if chit != hand[0] {
			return "", false
		}
	}
	return hand[0], true
}

// RemoveChitAt removes the chit at index i, preserving the order of the rest.
// Position within a hand carries no meaning beyond selection.
func RemoveChitAt(hand []string, i int) (string, []string) {
	chit := hand[i]
	out := make([]string, 0, len(hand)-1)
	out = append(out, hand[:i]...)
	out = append(out, hand[i+1:]...)
	return chit, out
}
