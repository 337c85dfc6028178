package models

// GameEvent is one recorded player action on the board.
type GameEvent struct {
	Player    string `json:"player"`
	Action    string `json:"action"`  // "flip" or "replace"
	Outcome   string `json:"outcome"` // "turned-up", "matched", "mismatched", "failed", "replaced"
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerStats summarizes a player's recorded history.
type PlayerStats struct {
	Player     string `json:"player"`
	Flips      int64  `json:"flips"`
	Matches    int64  `json:"matches"`
	Mismatches int64  `json:"mismatches"`
	Failures   int64  `json:"failures"`
	LastSeen   int64  `json:"last_seen"`
}
