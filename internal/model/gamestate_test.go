package model

import "testing"

func TestGameState_Valid(t *testing.T) {
	t.Parallel()
	for _, s := range []GameState{StateLobby, StateActive, StatePaused, StateFinished} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if GameState("RUNNING").Valid() || GameState("").Valid() {
		t.Fatal("unknown states should be invalid")
	}
}

func TestGameState_CanTransition(t *testing.T) {
	t.Parallel()
	allowed := []struct{ from, to GameState }{
		{StateLobby, StateActive},
		{StateActive, StatePaused},
		{StatePaused, StateActive},
		{StateActive, StateFinished},
		{StatePaused, StateFinished},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Fatalf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to GameState }{
		{StateLobby, StatePaused},
		{StateLobby, StateFinished},
		{StateActive, StateLobby},
		{StateFinished, StateActive},
		{StateFinished, StateLobby},
		{StateActive, StateActive},
	}
	for _, tr := range denied {
		if tr.from.CanTransition(tr.to) {
			t.Fatalf("%s -> %s should be denied", tr.from, tr.to)
		}
	}
}
