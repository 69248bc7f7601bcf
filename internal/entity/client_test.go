package entity

import (
	"context"
	"testing"

	"github.com/and161185/geohunt/internal/model"
	"github.com/and161185/geohunt/internal/pathstore"
)

func TestClient_GetSetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewClient(pathstore.NewMemory())

	var absent model.Artifact
	ok, err := c.Get(ctx, ArtifactPath("a1"), &absent)
	if err != nil || ok {
		t.Fatalf("get absent: ok=%v err=%v", ok, err)
	}

	in := model.Artifact{Name: "idol", Latitude: 43.65, Longitude: -79.38, IsChallenge: true}
	if err := c.Set(ctx, ArtifactPath("a1"), in); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out model.Artifact
	ok, err = c.Get(ctx, ArtifactPath("a1"), &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Fatalf("round trip: got %+v, want %+v", out, in)
	}
}

func TestClient_KeysAbsentIsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewClient(pathstore.NewMemory())

	keys, err := c.Keys(ctx, ParticipantsPath("s1"))
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("absent collection should be empty, got %v", keys)
	}
}

func TestPathLayout(t *testing.T) {
	t.Parallel()
	cases := []struct{ got, want string }{
		{UserPath("u1"), "users/u1"},
		{CurrentSessionPath("u1"), "users/u1/currentSession"},
		{MembershipPath("u1", "s1"), "users/u1/sessionsJoined/s1"},
		{SessionPath("s1"), "sessions/s1"},
		{ParticipantPath("s1", "u1"), "sessions/s1/participants/u1"},
		{SessionArtifactPath("s1", "a1"), "sessions/s1/artifacts/a1"},
		{SessionTeamPath("s1", "t1"), "sessions/s1/teams/t1"},
		{TeamPath("t1"), "teams/t1"},
		{TeamMemberPath("t1", "u1"), "teams/t1/members/u1"},
		{ArtifactPath("a1"), "artifacts/a1"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("path = %q, want %q", c.got, c.want)
		}
	}
}
