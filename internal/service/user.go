package service

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// UserService defines account lifecycle and session membership operations.
// In this generation the per-session membership entry is a bare marker;
// scoring and discovery state live with the session.
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
	// SetCurrentSession points the user at one of their joined sessions.
	// An empty session id clears the pointer and always succeeds.
	SetCurrentSession(ctx context.Context, id, sessionID string) error
	// CurrentSession returns the pointer, or "" when unset.
	CurrentSession(ctx context.Context, id string) (string, error)
	// AddToSession joins the user to a session, writing the membership
	// marker and the mirrored participant record.
	AddToSession(ctx context.Context, userID, sessionID string) error
	// RemoveFromSession leaves a session, clearing both sides and a
	// matching current-session pointer.
	RemoveFromSession(ctx context.Context, userID, sessionID string) error
	// ListSessions returns the ids of sessions the user has joined.
	ListSessions(ctx context.Context, userID string) ([]string, error)
	// Delete removes the user unless they still belong to any session.
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	ent *entity.Client
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService constructs the user service over the store capability.
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

// mutate loads the record, applies fn, touches updatedAt, and writes it back.
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

// SetCurrentSession points the user at one of their joined sessions. An
// empty id clears the pointer; a non-empty id must be a joined session.
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

// AddToSession joins the user to a session. The user-side marker is written
// first and the mirrored participant record last, so a crash in between
// leaves only a forward entry that re-invoking the operation overwrites.
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
	if err := s.ent.Set(ctx, entity.MembershipPath(userID, sessionID), true); err != nil {
		return err
	}
	return s.ent.Set(ctx, entity.ParticipantPath(sessionID, userID), model.NewParticipant())
}

// RemoveFromSession leaves a session. The current-session pointer is cleared
// first and the user-side marker last, mirroring the join order, so a retry
// after a crash still passes the membership guard.
func (s *UserServiceImpl) RemoveFromSession(ctx context.Context, userID, sessionID string) error {
	joined, err := s.ent.Exists(ctx, entity.MembershipPath(userID, sessionID))
	if err != nil {
		return err
	}
	if !joined {
		return fmt.Errorf("user %s not in session %s: %w", userID, sessionID, errs.ErrNotFound)
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
