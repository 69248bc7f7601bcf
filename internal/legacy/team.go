package legacy

import (
	"context"
	"fmt"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// TeamService defines first-generation team lifecycle and membership
// operations. A team's membership may only change while the team is attached
// to a session, and the team must be empty both to attach and to detach.
type TeamService interface {
	// Create initializes a blank, unattached team.
	Create(ctx context.Context, id string) error
	// Get loads a team record.
	Get(ctx context.Context, id string) (*model.Team, error)
	// SetName updates the team name.
	SetName(ctx context.Context, id, name string) error
	// AddMember puts a participant of the team's session on the team.
	AddMember(ctx context.Context, teamID, userID string) error
	// RemoveMember takes a user off the team.
	RemoveMember(ctx context.Context, teamID, userID string) error
	// ListMembers returns the user ids on the team.
	ListMembers(ctx context.Context, id string) ([]string, error)
	// Delete removes the team once it is detached and empty.
	Delete(ctx context.Context, id string) error
}

type TeamServiceImpl struct {
	ent *entity.Client
}

var _ TeamService = (*TeamServiceImpl)(nil)

// NewTeamService constructs the team service over the store capability.
func NewTeamService(ent *entity.Client) *TeamServiceImpl {
	return &TeamServiceImpl{ent: ent}
}

// Create initializes a blank, unattached team.
func (s *TeamServiceImpl) Create(ctx context.Context, id string) error {
	path := entity.TeamPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("team %s: %w", id, errs.ErrAlreadyExists)
	}
	return s.ent.Set(ctx, path, model.Team{})
}

// Get loads a team record.
func (s *TeamServiceImpl) Get(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	ok, err := s.ent.Get(ctx, entity.TeamPath(id), &team)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, errs.ErrNotFound)
	}
	return &team, nil
}

// SetName updates the team name.
func (s *TeamServiceImpl) SetName(ctx context.Context, id, name string) error {
	team, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	team.TeamName = name
	return s.ent.Set(ctx, entity.TeamPath(id), team)
}

// AddMember puts a user on the team. The team must be attached to a session
// and the user must already participate in that session. If the user is on
// another team of that session, that membership is removed first. Writes run
// member set, session participant pointer, then the membership record's
// teamId, so a crashed call can be re-invoked.
func (s *TeamServiceImpl) AddMember(ctx context.Context, teamID, userID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.SessionID == "" {
		return fmt.Errorf("team %s not attached to a session: %w", teamID, errs.ErrInvariant)
	}
	var m model.Membership
	ok, err := s.ent.Get(ctx, entity.MembershipPath(userID, team.SessionID), &m)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s not a participant of session %s: %w", userID, team.SessionID, errs.ErrInvariant)
	}
	if m.TeamID == teamID {
		return fmt.Errorf("user %s on team %s: %w", userID, teamID, errs.ErrAlreadyExists)
	}
	if m.TeamID != "" {
		if err := s.ent.Remove(ctx, entity.TeamMemberPath(m.TeamID, userID)); err != nil {
			return err
		}
	}
	if err := s.ent.Set(ctx, entity.TeamMemberPath(teamID, userID), true); err != nil {
		return err
	}
	// The participant entry doubles as the user's current-team pointer.
	if err := s.ent.Set(ctx, entity.ParticipantPath(team.SessionID, userID), teamID); err != nil {
		return err
	}
	m.TeamID = teamID
	return s.ent.Set(ctx, entity.MembershipPath(userID, team.SessionID), &m)
}

// RemoveMember takes a user off the team, resetting the participant entry to
// the no-team marker. The membership record's teamId is cleared last. A
// detached team is always empty, so the membership lookup below reports any
// candidate as not a member.
func (s *TeamServiceImpl) RemoveMember(ctx context.Context, teamID, userID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	var m model.Membership
	ok, err := s.ent.Get(ctx, entity.MembershipPath(userID, team.SessionID), &m)
	if err != nil {
		return err
	}
	if !ok || m.TeamID != teamID {
		return fmt.Errorf("user %s not a member of team %s: %w", userID, teamID, errs.ErrNotFound)
	}
	if err := s.ent.Remove(ctx, entity.TeamMemberPath(teamID, userID)); err != nil {
		return err
	}
	if err := s.ent.Set(ctx, entity.ParticipantPath(team.SessionID, userID), ""); err != nil {
		return err
	}
	m.TeamID = ""
	return s.ent.Set(ctx, entity.MembershipPath(userID, team.SessionID), &m)
}

// ListMembers returns the user ids on the team, empty when none.
func (s *TeamServiceImpl) ListMembers(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.TeamMembersPath(id))
}

// Delete removes the team once it is detached and empty.
func (s *TeamServiceImpl) Delete(ctx context.Context, id string) error {
	team, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if team.SessionID != "" {
		return fmt.Errorf("team %s attached to session %s: %w", id, team.SessionID, errs.ErrReferenced)
	}
	members, err := s.ListMembers(ctx, id)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return fmt.Errorf("team %s has %d member(s): %w", id, len(members), errs.ErrReferenced)
	}
	return s.ent.Remove(ctx, entity.TeamPath(id))
}
