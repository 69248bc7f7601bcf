package legacy

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// UserService defines first-generation account and membership operations.
// Scoring, discovery bookkeeping, and the team pointer live on the user's
// per-session membership record in this generation.
type UserService interface {
	// Create initializes a blank user record under the given id.
	Create(ctx context.Context, id string) error
	// Get loads a user record.
	Get(ctx context.Context, id string) (*model.User, error)
	// SetDisplayName updates the display name.
	SetDisplayName(ctx context.Context, id, name string) error
	// SetEmail updates the email address.
	SetEmail(ctx context.Context, id, email string) error
	// SetAdmin updates the admin flag.
	SetAdmin(ctx context.Context, id string, admin bool) error
	// SetCurrentSession points the user at one of their joined sessions;
	// an empty id clears the pointer and always succeeds.
	SetCurrentSession(ctx context.Context, id, sessionID string) error
	// CurrentSession returns the pointer, or "" when unset.
	CurrentSession(ctx context.Context, id string) (string, error)
	// AddToSession joins the user to a session with a blank membership record.
	AddToSession(ctx context.Context, userID, sessionID string) error
	// RemoveFromSession leaves a session; the user must leave their team first.
	RemoveFromSession(ctx context.Context, userID, sessionID string) error
	// AssignToTeam puts the user on a team of a session they joined,
	// leaving any previous team in that session first.
	AssignToTeam(ctx context.Context, userID, sessionID, teamID string) error
	// RemoveFromTeam takes the user off their current team in the session.
	RemoveFromTeam(ctx context.Context, userID, sessionID string) error
	// AddFoundArtifact records a discovery on the membership record.
	AddFoundArtifact(ctx context.Context, userID, sessionID, artifactID string) error
	// RemoveFoundArtifact reverts a recorded discovery.
	RemoveFoundArtifact(ctx context.Context, userID, sessionID, artifactID string) error
	// AddFoundLocation records a visited location.
	AddFoundLocation(ctx context.Context, userID, sessionID, locationID string) error
	// RemoveFoundLocation reverts a recorded location.
	RemoveFoundLocation(ctx context.Context, userID, sessionID, locationID string) error
	// UpdatePoints overwrites the per-session point value.
	UpdatePoints(ctx context.Context, userID, sessionID string, points int64) error
	// ListSessions returns the ids of sessions the user has joined.
	ListSessions(ctx context.Context, userID string) ([]string, error)
	// Delete removes the user unless they still belong to any session.
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	ent *entity.Client
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService constructs the first-generation user service.
func NewUserService(ent *entity.Client) *UserServiceImpl {
	return &UserServiceImpl{ent: ent}
}

// Create initializes a blank user record under the given id.
func (s *UserServiceImpl) Create(ctx context.Context, id string) error {
	path := entity.UserPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("user %s: %w", id, errs.ErrAlreadyExists)
	}
	now := time.Now().UnixMilli()
	return s.ent.Set(ctx, path, model.User{CreatedAt: now, UpdatedAt: now})
}

// Get loads a user record.
func (s *UserServiceImpl) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	ok, err := s.ent.Get(ctx, entity.UserPath(id), &u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
	}
	return &u, nil
}

func (s *UserServiceImpl) mutate(ctx context.Context, id string, fn func(*model.User)) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(u)
	u.UpdatedAt = time.Now().UnixMilli()
	return s.ent.Set(ctx, entity.UserPath(id), u)
}

func (s *UserServiceImpl) SetDisplayName(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(u *model.User) { u.DisplayName = name })
}

func (s *UserServiceImpl) SetEmail(ctx context.Context, id, email string) error {
	return s.mutate(ctx, id, func(u *model.User) { u.Email = email })
}

func (s *UserServiceImpl) SetAdmin(ctx context.Context, id string, admin bool) error {
	return s.mutate(ctx, id, func(u *model.User) { u.IsAdmin = admin })
}

// SetCurrentSession points the user at one of their joined sessions.
func (s *UserServiceImpl) SetCurrentSession(ctx context.Context, id, sessionID string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if sessionID == "" {
		return s.ent.Remove(ctx, entity.CurrentSessionPath(id))
	}
	joined, err := s.ent.Exists(ctx, entity.MembershipPath(id, sessionID))
	if err != nil {
		return err
	}
	if !joined {
		return fmt.Errorf("user %s has not joined session %s: %w", id, sessionID, errs.ErrInvariant)
	}
	return s.ent.Set(ctx, entity.CurrentSessionPath(id), sessionID)
}

// CurrentSession returns the pointer, or "" when unset.
func (s *UserServiceImpl) CurrentSession(ctx context.Context, id string) (string, error) {
	var sid string
	ok, err := s.ent.Get(ctx, entity.CurrentSessionPath(id), &sid)
	if err != nil || !ok {
		return "", err
	}
	return sid, nil
}

// membership loads the per-session record, normalizing the collection maps.
// The schema never guaranteed them non-null at write time, so absent maps
// are treated as empty here.
func (s *UserServiceImpl) membership(ctx context.Context, userID, sessionID string) (*model.Membership, error) {
	var m model.Membership
	ok, err := s.ent.Get(ctx, entity.MembershipPath(userID, sessionID), &m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s not in session %s: %w", userID, sessionID, errs.ErrNotFound)
	}
	if m.FoundArtifacts == nil {
		m.FoundArtifacts = map[string]bool{}
	}
	if m.LocationsFound == nil {
		m.LocationsFound = map[string]bool{}
	}
	return &m, nil
}

func (s *UserServiceImpl) setMembership(ctx context.Context, userID, sessionID string, m *model.Membership) error {
	return s.ent.Set(ctx, entity.MembershipPath(userID, sessionID), m)
}

// AddToSession joins the user to a session: a blank membership record on the
// user side first, then the mirrored no-team participant entry.
func (s *UserServiceImpl) AddToSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	ok, err := s.ent.Exists(ctx, entity.SessionPath(sessionID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, errs.ErrNotFound)
	}
	joined, err := s.ent.Exists(ctx, entity.ParticipantPath(sessionID, userID))
	if err != nil {
		return err
	}
	if joined {
		return fmt.Errorf("user %s in session %s: %w", userID, sessionID, errs.ErrAlreadyJoined)
	}
	m := model.NewMembership()
	if err := s.setMembership(ctx, userID, sessionID, &m); err != nil {
		return err
	}
	// Participant entries double as current-team pointers; "" means no team.
	return s.ent.Set(ctx, entity.ParticipantPath(sessionID, userID), "")
}

// RemoveFromSession leaves a session. The team must be left first; the
// membership record is the last path removed so a crashed removal can be
// re-invoked.
func (s *UserServiceImpl) RemoveFromSession(ctx context.Context, userID, sessionID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if m.TeamID != "" {
		return fmt.Errorf("user %s still on team %s in session %s: %w", userID, m.TeamID, sessionID, errs.ErrOrdering)
	}
	current, err := s.CurrentSession(ctx, userID)
	if err != nil {
		return err
	}
	if current == sessionID {
		if err := s.ent.Remove(ctx, entity.CurrentSessionPath(userID)); err != nil {
			return err
		}
	}
	if err := s.ent.Remove(ctx, entity.ParticipantPath(sessionID, userID)); err != nil {
		return err
	}
	return s.ent.Remove(ctx, entity.MembershipPath(userID, sessionID))
}

// AssignToTeam puts the user on a team within a joined session. If the user
// is already on another team there, that membership is removed first. Writes
// run team member set, participant pointer, then the membership's teamId.
func (s *UserServiceImpl) AssignToTeam(ctx context.Context, userID, sessionID, teamID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
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
	if team.SessionID != sessionID {
		return fmt.Errorf("team %s not attached to session %s: %w", teamID, sessionID, errs.ErrInvariant)
	}
	if m.TeamID == teamID {
		return fmt.Errorf("user %s on team %s: %w", userID, teamID, errs.ErrAlreadyJoined)
	}
	if m.TeamID != "" {
		if err := s.ent.Remove(ctx, entity.TeamMemberPath(m.TeamID, userID)); err != nil {
			return err
		}
	}
	if err := s.ent.Set(ctx, entity.TeamMemberPath(teamID, userID), true); err != nil {
		return err
	}
	if err := s.ent.Set(ctx, entity.ParticipantPath(sessionID, userID), teamID); err != nil {
		return err
	}
	m.TeamID = teamID
	return s.setMembership(ctx, userID, sessionID, m)
}

// RemoveFromTeam takes the user off their current team in the session.
func (s *UserServiceImpl) RemoveFromTeam(ctx context.Context, userID, sessionID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if m.TeamID == "" {
		return fmt.Errorf("user %s not on a team in session %s: %w", userID, sessionID, errs.ErrNotFound)
	}
	if err := s.ent.Remove(ctx, entity.TeamMemberPath(m.TeamID, userID)); err != nil {
		return err
	}
	if err := s.ent.Set(ctx, entity.ParticipantPath(sessionID, userID), ""); err != nil {
		return err
	}
	m.TeamID = ""
	return s.setMembership(ctx, userID, sessionID, m)
}

// AddFoundArtifact records a discovery; the artifact must currently be
// listed in the session's availability set. Recording twice is a no-op.
func (s *UserServiceImpl) AddFoundArtifact(ctx context.Context, userID, sessionID, artifactID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	listed, err := s.ent.Exists(ctx, entity.SessionArtifactPath(sessionID, artifactID))
	if err != nil {
		return err
	}
	if !listed {
		return fmt.Errorf("artifact %s not available in session %s: %w", artifactID, sessionID, errs.ErrInvariant)
	}
	m.FoundArtifacts[artifactID] = true
	return s.setMembership(ctx, userID, sessionID, m)
}

// RemoveFoundArtifact reverts a discovery that is currently recorded.
func (s *UserServiceImpl) RemoveFoundArtifact(ctx context.Context, userID, sessionID, artifactID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !m.FoundArtifacts[artifactID] {
		return fmt.Errorf("artifact %s not recorded as found by user %s: %w", artifactID, userID, errs.ErrNotFound)
	}
	delete(m.FoundArtifacts, artifactID)
	return s.setMembership(ctx, userID, sessionID, m)
}

// AddFoundLocation records a visited location; independent bookkeeping with
// the same membership precondition.
func (s *UserServiceImpl) AddFoundLocation(ctx context.Context, userID, sessionID, locationID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	m.LocationsFound[locationID] = true
	return s.setMembership(ctx, userID, sessionID, m)
}

// RemoveFoundLocation reverts a recorded location.
func (s *UserServiceImpl) RemoveFoundLocation(ctx context.Context, userID, sessionID, locationID string) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !m.LocationsFound[locationID] {
		return fmt.Errorf("location %s not recorded for user %s: %w", locationID, userID, errs.ErrNotFound)
	}
	delete(m.LocationsFound, locationID)
	return s.setMembership(ctx, userID, sessionID, m)
}

// UpdatePoints overwrites the per-session point value. The write is
// absolute, not incremental.
func (s *UserServiceImpl) UpdatePoints(ctx context.Context, userID, sessionID string, points int64) error {
	m, err := s.membership(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	m.Points = points
	return s.setMembership(ctx, userID, sessionID, m)
}

// ListSessions returns the ids of sessions the user has joined.
func (s *UserServiceImpl) ListSessions(ctx context.Context, userID string) ([]string, error) {
	return s.ent.Keys(ctx, entity.MembershipsPath(userID))
}

// Delete removes the user unless they still belong to any session.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	joined, err := s.ListSessions(ctx, id)
	if err != nil {
		return err
	}
	if len(joined) > 0 {
		return fmt.Errorf("user %s still in %d session(s): %w", id, len(joined), errs.ErrReferenced)
	}
	return s.ent.Remove(ctx, entity.UserPath(id))
}
