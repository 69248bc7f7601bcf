package model

// GameState is the second-generation session lifecycle phase.
type GameState string

// Session lifecycle phases. A session starts in Lobby, runs through
// Active/Paused, and ends in Finished, which is terminal.
const (
	StateLobby    GameState = "LOBBY"
	StateActive   GameState = "ACTIVE"
	StatePaused   GameState = "PAUSED"
	StateFinished GameState = "FINISHED"
)

// transitions is the allowed edge set. Same-state writes are not edges.
var transitions = map[GameState][]GameState{
	StateLobby:  {StateActive},
	StateActive: {StatePaused, StateFinished},
	StatePaused: {StateActive, StateFinished},
}

// Valid reports whether s is one of the four defined phases.
func (s GameState) Valid() bool {
	switch s {
	case StateLobby, StateActive, StatePaused, StateFinished:
		return true
	}
	return false
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s GameState) CanTransition(next GameState) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
