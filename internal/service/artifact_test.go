package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/errs"
	"github.com/and161185/geohunt/internal/model"
	"github.com/and161185/geohunt/internal/pathstore"
)

func newTestClient() *entity.Client {
	return entity.NewClient(pathstore.Namespace(pathstore.NewMemory(), "test"))
}

func TestArtifactService_CreateGetDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewArtifactService(newTestClient())

	if _, err := svc.Get(ctx, "a1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get before create: %v", err)
	}
	if err := svc.Create(ctx, "a1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	a, err := svc.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *a != (model.Artifact{}) {
		t.Fatalf("blank record, got %+v", a)
	}
	if err := svc.Create(ctx, "a1"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("second create: %v", err)
	}
}

func TestArtifactService_Setters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewArtifactService(newTestClient())

	if err := svc.SetName(ctx, "missing", "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("setter on absent artifact: %v", err)
	}

	if err := svc.Create(ctx, "a1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetName(ctx, "a1", "golden idol"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := svc.SetLocationHint(ctx, "a1", "under the old bridge"); err != nil {
		t.Fatalf("set hint: %v", err)
	}
	if err := svc.SetCoordinates(ctx, "a1", 43.65, -79.38); err != nil {
		t.Fatalf("set coords: %v", err)
	}
	if err := svc.SetChallenge(ctx, "a1", true); err != nil {
		t.Fatalf("set challenge: %v", err)
	}

	a, err := svc.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Name != "golden idol" || a.LocationHint != "under the old bridge" {
		t.Fatalf("text fields: %+v", a)
	}
	if a.Latitude != 43.65 || a.Longitude != -79.38 || !a.IsChallenge {
		t.Fatalf("coords/flag: %+v", a)
	}
}

func TestArtifactService_DeleteBlockedBySessionReference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ent := newTestClient()
	artifacts := NewArtifactService(ent)
	sessions := NewSessionService(ent)

	if err := artifacts.Delete(ctx, "a1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("delete absent: %v", err)
	}

	if err := artifacts.Create(ctx, "a1"); err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	if err := sessions.Create(ctx, "s1", "creator"); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.AddArtifact(ctx, "s1", "a1"); err != nil {
		t.Fatalf("add artifact: %v", err)
	}

	if err := artifacts.Delete(ctx, "a1"); !errors.Is(err, errs.ErrReferenced) {
		t.Fatalf("delete while listed: %v", err)
	}
	if err := sessions.RemoveArtifact(ctx, "s1", "a1"); err != nil {
		t.Fatalf("remove from session: %v", err)
	}
	if err := artifacts.Delete(ctx, "a1"); err != nil {
		t.Fatalf("delete after delist: %v", err)
	}
	if _, err := artifacts.Get(ctx, "a1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
