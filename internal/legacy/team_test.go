package legacy

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/pathstore"
)

func newTestClient() *entity.Client {
	return entity.NewClient(pathstore.Namespace(pathstore.NewMemory(), "test"))
}

type fixture struct {
	users    *UserServiceImpl
	sessions *SessionServiceImpl
	teams    *TeamServiceImpl
}

func newFixture() fixture {
	ent := newTestClient()
	return fixture{
		users:    NewUserService(ent),
		sessions: NewSessionService(ent),
		teams:    NewTeamService(ent),
	}
}

func contains(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}

func TestTeamService_CreateGetDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.teams.Create(ctx, "t1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	team, err := f.teams.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if team.SessionID != "" || team.TeamName != "" {
		t.Fatalf("blank defaults: %+v", team)
	}
	if err := f.teams.Create(ctx, "t1"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("second create: %v", err)
	}
	if err := f.teams.SetName(ctx, "t1", "red"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	team, _ = f.teams.Get(ctx, "t1")
	if team.TeamName != "red" {
		t.Fatalf("name: %+v", team)
	}
}

func TestTeamService_MemberRequiresAttachedTeamAndParticipant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.teams.Create(ctx, "t1"); err != nil {
		t.Fatalf("create team: %v", err)
	}
	// Detached team cannot take members, and has none to remove.
	if err := f.teams.AddMember(ctx, "t1", "u1"); !errors.Is(err, errs.ErrInvariant) {
		t.Fatalf("add member to detached team: %v", err)
	}
	if err := f.teams.RemoveMember(ctx, "t1", "u1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("remove member from detached team: %v", err)
	}

	if err := f.sessions.Create(ctx, "s1", "creator"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := f.sessions.AddTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("add team: %v", err)
	}
	// Non-participants cannot join a team.
	if err := f.teams.AddMember(ctx, "t1", "u1"); !errors.Is(err, errs.ErrInvariant) {
		t.Fatalf("add non-participant: %v", err)
	}

	if err := f.users.Create(ctx, "u1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := f.users.AddToSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := f.teams.AddMember(ctx, "t1", "u1"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := f.teams.AddMember(ctx, "t1", "u1"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("double add: %v", err)
	}
	members, err := f.teams.ListMembers(ctx, "t1")
	if err != nil || !contains(members, "u1") {
		t.Fatalf("members = %v err=%v", members, err)
	}
}

func TestTeamLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.teams.Create(ctx, "t1"); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := f.sessions.Create(ctx, "s1", "creator"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := f.sessions.AddTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("attach empty team: %v", err)
	}
	if err := f.users.Create(ctx, "u1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := f.users.AddToSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := f.teams.AddMember(ctx, "t1", "u1"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	// Membership pins the team to the session.
	if err := f.sessions.RemoveTeam(ctx, "s1", "t1"); !errors.Is(err, errs.ErrReferenced) {
		t.Fatalf("detach with members: %v", err)
	}
	if err := f.teams.RemoveMember(ctx, "t1", "u1"); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if err := f.teams.RemoveMember(ctx, "t1", "u1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second remove: %v", err)
	}
	if err := f.sessions.RemoveTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("detach: %v", err)
	}

	team, _ := f.teams.Get(ctx, "t1")
	if team.SessionID != "" {
		t.Fatalf("sessionId after detach: %+v", team)
	}
	teams, _ := f.sessions.ListTeams(ctx, "s1")
	if len(teams) != 0 {
		t.Fatalf("registry after detach: %v", teams)
	}
}

func TestTeamService_AddMemberSwitchesTeams(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.sessions.Create(ctx, "s1", "creator"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, tid := range []string{"t1", "t2"} {
		if err := f.teams.Create(ctx, tid); err != nil {
			t.Fatalf("create %s: %v", tid, err)
		}
		if err := f.sessions.AddTeam(ctx, "s1", tid); err != nil {
			t.Fatalf("attach %s: %v", tid, err)
		}
	}
	if err := f.users.Create(ctx, "u1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := f.users.AddToSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := f.teams.AddMember(ctx, "t1", "u1"); err != nil {
		t.Fatalf("add to t1: %v", err)
	}
	if err := f.teams.AddMember(ctx, "t2", "u1"); err != nil {
		t.Fatalf("switch to t2: %v", err)
	}

	// The old member set must not keep listing the user.
	t1Members, _ := f.teams.ListMembers(ctx, "t1")
	t2Members, _ := f.teams.ListMembers(ctx, "t2")
	if len(t1Members) != 0 || !contains(t2Members, "u1") {
		t.Fatalf("members after switch: t1=%v t2=%v", t1Members, t2Members)
	}
	m, err := f.users.membership(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if m.TeamID != "t2" {
		t.Fatalf("teamId after switch: %+v", m)
	}
}

func TestTeamService_AttachConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.teams.Create(ctx, "t1"); err != nil {
		t.Fatalf("create team: %v", err)
	}
	for _, sid := range []string{"s1", "s2"} {
		if err := f.sessions.Create(ctx, sid, "creator"); err != nil {
			t.Fatalf("create %s: %v", sid, err)
		}
	}
	if err := f.sessions.AddTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := f.sessions.AddTeam(ctx, "s1", "t1"); !errors.Is(err, errs.ErrAlreadyJoined) {
		t.Fatalf("re-attach same session: %v", err)
	}
	// A team belongs to at most one session at a time.
	if err := f.sessions.AddTeam(ctx, "s2", "t1"); !errors.Is(err, errs.ErrInvariant) {
		t.Fatalf("attach to second session: %v", err)
	}
	if err := f.sessions.RemoveTeam(ctx, "s2", "t1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("detach from wrong session: %v", err)
	}
}

func TestTeamService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()

	if err := f.teams.Delete(ctx, "t1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("delete absent: %v", err)
	}
	if err := f.teams.Create(ctx, "t1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.sessions.Create(ctx, "s1", "creator"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := f.sessions.AddTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := f.teams.Delete(ctx, "t1"); !errors.Is(err, errs.ErrReferenced) {
		t.Fatalf("delete while attached: %v", err)
	}
	if err := f.sessions.RemoveTeam(ctx, "s1", "t1"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := f.teams.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.teams.Get(ctx, "t1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
