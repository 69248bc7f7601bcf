package service

import (
	"context"
	"fmt"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// SessionService defines game-instance lifecycle, the artifact availability
// registry, and session-owned per-participant scoring.
type SessionService interface {
	// Create initializes a blank session in the LOBBY state.
	Create(ctx context.Context, id, creatorID string) error
	// Get loads a session record.
	Get(ctx context.Context, id string) (*model.Session, error)
	// SetName updates the session name.
	SetName(ctx context.Context, id, name string) error
	// SetTimes updates both time bounds; start must precede end.
	SetTimes(ctx context.Context, id string, start, end int64) error
	// SetGameState advances the lifecycle phase along an allowed edge.
	SetGameState(ctx context.Context, id string, state model.GameState) error
	// AddArtifact lists an existing artifact as available in the session.
	AddArtifact(ctx context.Context, sessionID, artifactID string) error
	// RemoveArtifact delists an artifact unless a participant has found it.
	RemoveArtifact(ctx context.Context, sessionID, artifactID string) error
	// AddFoundArtifact records a discovery on the participant record.
	AddFoundArtifact(ctx context.Context, sessionID, userID, artifactID string) error
	// RemoveFoundArtifact reverts a recorded discovery.
	RemoveFoundArtifact(ctx context.Context, sessionID, userID, artifactID string) error
	// AddFoundLocation records a visited location on the participant record.
	AddFoundLocation(ctx context.Context, sessionID, userID, locationID string) error
	// RemoveFoundLocation reverts a recorded location.
	RemoveFoundLocation(ctx context.Context, sessionID, userID, locationID string) error
	// AddPoints adds delta to the participant's score.
	AddPoints(ctx context.Context, sessionID, userID string, delta int64) error
	// SetPoints overwrites the participant's score.
	SetPoints(ctx context.Context, sessionID, userID string, points int64) error
	// ListParticipants returns the user ids in the participant registry.
	ListParticipants(ctx context.Context, id string) ([]string, error)
	// ListArtifacts returns the artifact ids available in the session.
	ListArtifacts(ctx context.Context, id string) ([]string, error)
	// Delete removes the session once its participant registry is empty.
	Delete(ctx context.Context, id string) error
}

type SessionServiceImpl struct {
	ent *entity.Client
}

var _ SessionService = (*SessionServiceImpl)(nil)

// NewSessionService constructs the session service over the store capability.
func NewSessionService(ent *entity.Client) *SessionServiceImpl {
	return &SessionServiceImpl{ent: ent}
}

// Create initializes a blank session in the LOBBY state.
func (s *SessionServiceImpl) Create(ctx context.Context, id, creatorID string) error {
	path := entity.SessionPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("session %s: %w", id, errs.ErrAlreadyExists)
	}
	return s.ent.Set(ctx, path, model.Session{CreatorID: creatorID, GameState: model.StateLobby})
}

// Get loads a session record.
func (s *SessionServiceImpl) Get(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	ok, err := s.ent.Get(ctx, entity.SessionPath(id), &sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, errs.ErrNotFound)
	}
	return &sess, nil
}

func (s *SessionServiceImpl) mutate(ctx context.Context, id string, fn func(*model.Session) error) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	return s.ent.Set(ctx, entity.SessionPath(id), sess)
}

func (s *SessionServiceImpl) SetName(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(sess *model.Session) error {
		sess.SessionName = name
		return nil
	})
}

// SetTimes updates both time bounds together. A single bound cannot be moved
// on its own; callers re-supply the pair so the check is always complete.
func (s *SessionServiceImpl) SetTimes(ctx context.Context, id string, start, end int64) error {
	if start >= end {
		return fmt.Errorf("start %d not before end %d: %w", start, end, errs.ErrInvariant)
	}
	return s.mutate(ctx, id, func(sess *model.Session) error {
		sess.StartTime = start
		sess.EndTime = end
		return nil
	})
}

// SetGameState advances the lifecycle phase. Only the edges of the
// LOBBY -> ACTIVE <-> PAUSED -> FINISHED machine are allowed and FINISHED is
// terminal; same-state writes are rejected.
func (s *SessionServiceImpl) SetGameState(ctx context.Context, id string, state model.GameState) error {
	if !state.Valid() {
		return fmt.Errorf("unknown game state %q: %w", state, errs.ErrInvariant)
	}
	return s.mutate(ctx, id, func(sess *model.Session) error {
		if !sess.GameState.CanTransition(state) {
			return fmt.Errorf("game state %s -> %s: %w", sess.GameState, state, errs.ErrInvariant)
		}
		sess.GameState = state
		return nil
	})
}

// AddArtifact lists an artifact as available. The artifact entity must exist
// so the availability set never points at nothing.
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

// RemoveArtifact delists an artifact. It scans the participant registry and
// refuses while anyone still has the artifact recorded as found.
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
		p, err := s.participant(ctx, sessionID, uid)
		if err != nil {
			return err
		}
		if p.FoundArtifacts[artifactID] {
			return fmt.Errorf("artifact %s found by user %s: %w", artifactID, uid, errs.ErrReferenced)
		}
	}
	return s.ent.Remove(ctx, path)
}

// participant loads a participant record, failing NotFound when the user is
// not in the session's registry.
func (s *SessionServiceImpl) participant(ctx context.Context, sessionID, userID string) (*model.Participant, error) {
	var p model.Participant
	ok, err := s.ent.Get(ctx, entity.ParticipantPath(sessionID, userID), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %s not in session %s: %w", userID, sessionID, errs.ErrNotFound)
	}
	if p.FoundArtifacts == nil {
		p.FoundArtifacts = map[string]bool{}
	}
	if p.FoundLocations == nil {
		p.FoundLocations = map[string]bool{}
	}
	return &p, nil
}

func (s *SessionServiceImpl) mutateParticipant(ctx context.Context, sessionID, userID string, fn func(*model.Participant) error) error {
	p, err := s.participant(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return s.ent.Set(ctx, entity.ParticipantPath(sessionID, userID), p)
}

// AddFoundArtifact records a discovery. The artifact must currently be in
// the session's availability set. Recording twice is a no-op.
func (s *SessionServiceImpl) AddFoundArtifact(ctx context.Context, sessionID, userID, artifactID string) error {
	listed, err := s.ent.Exists(ctx, entity.SessionArtifactPath(sessionID, artifactID))
	if err != nil {
		return err
	}
	if !listed {
		return fmt.Errorf("artifact %s not available in session %s: %w", artifactID, sessionID, errs.ErrInvariant)
	}
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		p.FoundArtifacts[artifactID] = true
		return nil
	})
}

// RemoveFoundArtifact reverts a discovery that is currently recorded.
func (s *SessionServiceImpl) RemoveFoundArtifact(ctx context.Context, sessionID, userID, artifactID string) error {
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		if !p.FoundArtifacts[artifactID] {
			return fmt.Errorf("artifact %s not recorded as found by user %s: %w", artifactID, userID, errs.ErrNotFound)
		}
		delete(p.FoundArtifacts, artifactID)
		return nil
	})
}

// AddFoundLocation records a visited location. Locations are independent
// bookkeeping; only membership is required.
func (s *SessionServiceImpl) AddFoundLocation(ctx context.Context, sessionID, userID, locationID string) error {
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		p.FoundLocations[locationID] = true
		return nil
	})
}

// RemoveFoundLocation reverts a recorded location.
func (s *SessionServiceImpl) RemoveFoundLocation(ctx context.Context, sessionID, userID, locationID string) error {
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		if !p.FoundLocations[locationID] {
			return fmt.Errorf("location %s not recorded for user %s: %w", locationID, userID, errs.ErrNotFound)
		}
		delete(p.FoundLocations, locationID)
		return nil
	})
}

// AddPoints adds delta to the participant's score.
func (s *SessionServiceImpl) AddPoints(ctx context.Context, sessionID, userID string, delta int64) error {
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		p.Points += delta
		return nil
	})
}

// SetPoints overwrites the participant's score.
func (s *SessionServiceImpl) SetPoints(ctx context.Context, sessionID, userID string, points int64) error {
	return s.mutateParticipant(ctx, sessionID, userID, func(p *model.Participant) error {
		p.Points = points
		return nil
	})
}

// ListParticipants returns the user ids in the participant registry.
func (s *SessionServiceImpl) ListParticipants(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.ParticipantsPath(id))
}

// ListArtifacts returns the artifact ids available in the session.
func (s *SessionServiceImpl) ListArtifacts(ctx context.Context, id string) ([]string, error) {
	return s.ent.Keys(ctx, entity.SessionArtifactsPath(id))
}

// Delete removes the session once its participant registry is empty.
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
	return s.ent.Remove(ctx, entity.SessionPath(id))
}
