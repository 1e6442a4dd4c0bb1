package app

// MinPlayersToStart defines the minimum number of connected players required
// to deal a game. Keep this centralized so tests or local runs can adjust the
// rule without touching multiple call sites.
const MinPlayersToStart = 2

// DefaultPlayerName is used when a join request carries an empty name.
const DefaultPlayerName = "Player"
