// Package service contains the current-generation domain services: artifact,
// user, and session lifecycle over the path store, with session-owned
// scoring and an explicit game-state machine.
//
// Services are stateless; every operation is a short sequence of store calls
// with all validation performed before the first write of each step. There is
// no cross-path atomicity: a failure between steps leaves earlier writes in
// place, and re-invoking the same operation is the recovery path.
package service

import (
	"context"
	"fmt"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
)

// ArtifactService defines lifecycle operations for discoverable objects.
// It is shared by both schema generations: the artifact subtree and the
// per-session availability sets have the same layout in each.
type ArtifactService interface {
	// Create initializes a blank artifact record under the given id.
	Create(ctx context.Context, id string) error
	// Get loads an artifact record.
	Get(ctx context.Context, id string) (*model.Artifact, error)
	// SetName updates the display name.
	SetName(ctx context.Context, id, name string) error
	// SetDescription updates the description.
	SetDescription(ctx context.Context, id, description string) error
	// SetLocationHint updates the hint shown to players.
	SetLocationHint(ctx context.Context, id, hint string) error
	// SetCoordinates updates the latitude/longitude pair.
	SetCoordinates(ctx context.Context, id string, lat, lng float64) error
	// SetImageURL updates the optional image reference.
	SetImageURL(ctx context.Context, id, url string) error
	// SetAudioURL updates the optional audio reference.
	SetAudioURL(ctx context.Context, id, url string) error
	// SetChallenge flags the artifact as a challenge objective.
	SetChallenge(ctx context.Context, id string, challenge bool) error
	// Delete removes the artifact unless any session still lists it.
	Delete(ctx context.Context, id string) error
}

type ArtifactServiceImpl struct {
	ent *entity.Client
}

var _ ArtifactService = (*ArtifactServiceImpl)(nil)

// NewArtifactService constructs the artifact service over the store capability.
func NewArtifactService(ent *entity.Client) *ArtifactServiceImpl {
	return &ArtifactServiceImpl{ent: ent}
}

// Create initializes a blank artifact record under the given id.
func (s *ArtifactServiceImpl) Create(ctx context.Context, id string) error {
	path := entity.ArtifactPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("artifact %s: %w", id, errs.ErrAlreadyExists)
	}
	return s.ent.Set(ctx, path, model.Artifact{})
}

// Get loads an artifact record.
func (s *ArtifactServiceImpl) Get(ctx context.Context, id string) (*model.Artifact, error) {
	var a model.Artifact
	ok, err := s.ent.Get(ctx, entity.ArtifactPath(id), &a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", id, errs.ErrNotFound)
	}
	return &a, nil
}

// mutate loads the record, applies fn, and writes it back.
func (s *ArtifactServiceImpl) mutate(ctx context.Context, id string, fn func(*model.Artifact)) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(a)
	return s.ent.Set(ctx, entity.ArtifactPath(id), a)
}

func (s *ArtifactServiceImpl) SetName(ctx context.Context, id, name string) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.Name = name })
}

func (s *ArtifactServiceImpl) SetDescription(ctx context.Context, id, description string) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.Description = description })
}

func (s *ArtifactServiceImpl) SetLocationHint(ctx context.Context, id, hint string) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.LocationHint = hint })
}

func (s *ArtifactServiceImpl) SetCoordinates(ctx context.Context, id string, lat, lng float64) error {
	return s.mutate(ctx, id, func(a *model.Artifact) {
		a.Latitude = lat
		a.Longitude = lng
	})
}

func (s *ArtifactServiceImpl) SetImageURL(ctx context.Context, id, url string) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.ImageURL = url })
}

func (s *ArtifactServiceImpl) SetAudioURL(ctx context.Context, id, url string) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.AudioURL = url })
}

func (s *ArtifactServiceImpl) SetChallenge(ctx context.Context, id string, challenge bool) error {
	return s.mutate(ctx, id, func(a *model.Artifact) { a.IsChallenge = challenge })
}

// Delete removes the artifact unless any session still lists it. The scan is
// O(sessions); artifact deletion is a rare administrative action.
func (s *ArtifactServiceImpl) Delete(ctx context.Context, id string) error {
	path := entity.ArtifactPath(id)
	ok, err := s.ent.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("artifact %s: %w", id, errs.ErrNotFound)
	}
	sessions, err := s.ent.Keys(ctx, entity.SessionsCollection)
	if err != nil {
		return err
	}
	for _, sid := range sessions {
		listed, err := s.ent.Exists(ctx, entity.SessionArtifactPath(sid, id))
		if err != nil {
			return err
		}
		if listed {
			return fmt.Errorf("artifact %s listed in session %s: %w", id, sid, errs.ErrReferenced)
		}
	}
	return s.ent.Remove(ctx, path)
}
