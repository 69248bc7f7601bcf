// Package legacy contains the superseded first-generation services. They
// share the store layout's entity paths with the current generation but keep
// scoring and discovery bookkeeping on the user's membership record and add
// a team registry to each session.
//
// The package is isolated so it can be tested and retired independently;
// nothing in the current generation imports it.
package legacy

import (
	"context"
	"fmt"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// SessionService defines first-generation session operations: an active
// flag instead of a state machine, and a team registry.
type SessionService interface {
	// Create initializes a blank, inactive session.
	Create(ctx context.Context, id, creatorID string) error
	// Get loads a session record.
	Get(ctx context.Context, id string) (*model.LegacySession, error)
	// SetName updates the session name.
	SetName(ctx context.Context, id, name string) error
	// SetTimes updates both time bounds; start must precede end.
	SetTimes(ctx context.Context, id string, start, end int64) error
	// SetActive flips the active flag.
	SetActive(ctx context.Context, id string, active bool) error
	// AddArtifact lists an existing artifact as available in the session.
	AddArtifact(ctx context.Context, sessionID, artifactID string) error
	// RemoveArtifact delists an artifact unless a participant has found it.
	RemoveArtifact(ctx context.Context, sessionID, artifactID string) error
	// AddTeam attaches an empty, unattached team to the session.
	AddTeam(ctx context.Context, sessionID, teamID string) error
	// RemoveTeam detaches a team once it has no members again.
	RemoveTeam(ctx context.Context, sessionID, teamID string) error
	// ListParticipants returns the user ids in the participant registry.
	ListParticipants(ctx context.Context, id string) ([]string, error)
	// ListArtifacts returns the artifact ids available in the session.
	ListArtifacts(ctx context.Context, id string) ([]string, error)
	// ListTeams returns the team ids attached to the session.
	ListTeams(ctx context.Context, id string) ([]string, error)
	// Delete removes the session once participants and teams are empty.
	Delete(ctx context.Context, id string) error
}

type SessionServiceImpl struct {
	ent *entity.Client
}

var _ SessionService = (*SessionServiceImpl)(nil)

// NewSessionService constructs the first-generation session service.
func NewSessionService(ent *entity.Client) *SessionServiceImpl {
	return &SessionServiceImpl{ent: ent}
}

// Create initializes a blank, inactive session.
func (s *SessionServiceImpl) Create(ctx context.Context, id, creatorID string) error {
	path := entity.SessionPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("session %s: %w", id, errs.ErrAlreadyExists)
	}
	return s.ent.Set(ctx, path, model.LegacySession{CreatorID: creatorID})
}

// Get loads a session record.
func (s *SessionServiceImpl) Get(ctx context.Context, id string) (*model.LegacySession, error) {
	var sess model.LegacySession
	ok, err := s.ent.Get(ctx, entity.SessionPath(id), &sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, errs.ErrNotFound)
	}
	return &sess, nil
}

func (s *SessionServiceImpl) mutate(ctx context.Context, id string, fn func(*model.LegacySession)) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(sess)
	return s.ent.Set(ctx, entity.SessionPath(id), sess)
}

func (s *SessionServiceImpl) SetName(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(sess *model.LegacySession) { sess.SessionName = name })
}

// SetTimes updates both time bounds together; start must precede end.
func (s *SessionServiceImpl) SetTimes(ctx context.Context, id string, start, end int64) error {
	if start >= end {
		return fmt.Errorf("start %d not before end %d: %w", start, end, errs.ErrInvariant)
	}
	return s.mutate(ctx, id, func(sess *model.LegacySession) {
		sess.StartTime = start
		sess.EndTime = end
	})
}

// SetActive flips the active flag. This generation has no transition rules.
func (s *SessionServiceImpl) SetActive(ctx context.Context, id string, active bool) error {
	return s.mutate(ctx, id, func(sess *model.LegacySession) { sess.IsActive = active })
}

// AddArtifact lists an artifact as available; the artifact entity must exist.
func (s *SessionServiceImpl) AddArtifact(ctx context.Context, sessionID, artifactID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	ok, err := s.ent.Exists(ctx, entity.ArtifactPath(artifactID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("artifact %s: %w", artifactID, errs.ErrNotFound)
	}
	path := entity.SessionArtifactPath(sessionID, artifactID)
	listed, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if listed {
		return fmt.Errorf("artifact %s in session %s: %w", artifactID, sessionID, errs.ErrAlreadyExists)
	}
	return s.ent.Set(ctx, path, true)
}

// RemoveArtifact delists an artifact. In this generation found-artifact
// bookkeeping is user-owned, so the check walks each participant's mirrored
// membership record. A missing record counts as nothing found.
func (s *SessionServiceImpl) RemoveArtifact(ctx context.Context, sessionID, artifactID string) error {
	path := entity.SessionArtifactPath(sessionID, artifactID)
	listed, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !listed {
		return fmt.Errorf("artifact %s not part of session %s: %w", artifactID, sessionID, errs.ErrNotFound)
	}
	participants, err := s.ListParticipants(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, uid := range participants {
		var m model.Membership
		ok, err := s.ent.Get(ctx, entity.MembershipPath(uid, sessionID), &m)
		if err != nil {
			return err
		}
		if ok && m.FoundArtifacts[artifactID] {
			return fmt.Errorf("artifact %s found by user %s: %w", artifactID, uid, errs.ErrReferenced)
		}
	}
	return s.ent.Remove(ctx, path)
}

// AddTeam attaches a team. The team must be unattached and empty: membership
// is established and torn down strictly while a team is inside a session.
func (s *SessionServiceImpl) AddTeam(ctx context.Context, sessionID, teamID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	var team model.Team
	ok, err := s.ent.Get(ctx, entity.TeamPath(teamID), &team)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("team %s: %w", teamID, errs.ErrNotFound)
	}
	if team.SessionID == sessionID {
		return fmt.Errorf("team %s in session %s: %w", teamID, sessionID, errs.ErrAlreadyJoined)
	}
	if team.SessionID != "" {
		return fmt.Errorf("team %s attached to session %s: %w", teamID, team.SessionID, errs.ErrInvariant)
	}
	members, err := s.ent.Keys(ctx, entity.TeamMembersPath(teamID))
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return fmt.Errorf("team %s has %d member(s): %w", teamID, len(members), errs.ErrInvariant)
	}
	team.SessionID = sessionID
	if err := s.ent.Set(ctx, entity.TeamPath(teamID), team); err != nil {
		return err
	}
	return s.ent.Set(ctx, entity.SessionTeamPath(sessionID, teamID), true)
}

// RemoveTeam detaches a team once it is empty again. The registry entry goes
// first and the team's sessionId last, so a retry after a crash still passes
// the attachment guard.
func (s *SessionServiceImpl) RemoveTeam(ctx context.Context, sessionID, teamID string) error {
	var team model.Team
	ok, err := s.ent.Get(ctx, entity.TeamPath(teamID), &team)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("team %s: %w", teamID, errs.ErrNotFound)
	}
	if team.SessionID != sessionID {
		return fmt.Errorf("team %s not attached to session %s: %w", teamID, sessionID, errs.ErrNotFound)
	}
	members, err := s.ent.Keys(ctx, entity.TeamMembersPath(teamID))
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return fmt.Errorf("team %s has %d member(s): %w", teamID, len(members), errs.ErrReferenced)
	}
	if err := s.ent.Remove(ctx, entity.SessionTeamPath(sessionID, teamID)); err != nil {
		return err
	}
	team.SessionID = ""
	return s.ent.Set(ctx, entity.TeamPath(teamID), team)
}

// ListParticipants returns the user ids in the participant registry.
func (s *SessionServiceImpl) ListParticipants(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.ParticipantsPath(id))
}

// ListArtifacts returns the artifact ids available in the session.
func (s *SessionServiceImpl) ListArtifacts(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.SessionArtifactsPath(id))
}

// ListTeams returns the team ids attached to the session.
func (s *SessionServiceImpl) ListTeams(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.SessionTeamsPath(id))
}

// Delete removes the session once both the participant registry and the
// team registry are empty.
func (s *SessionServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	participants, err := s.ListParticipants(ctx, id)
	if err != nil {
		return err
	}
	if len(participants) > 0 {
		return fmt.Errorf("session %s has %d participant(s): %w", id, len(participants), errs.ErrReferenced)
	}
	teams, err := s.ListTeams(ctx, id)
	if err != nil {
		return err
	}
	if len(teams) > 0 {
		return fmt.Errorf("session %s has %d team(s): %w", id, len(teams), errs.ErrReferenced)
	}
	return s.ent.Remove(ctx, entity.SessionPath(id))
}
