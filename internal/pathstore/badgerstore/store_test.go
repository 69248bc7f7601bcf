package badgerstore

import (
	"context"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if ok, err := s.Exists(ctx, "artifacts/a1"); err != nil || ok {
		t.Fatalf("exists on empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "artifacts/a1", []byte(`{"name":"idol"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := s.Get(ctx, "artifacts/a1")
	if err != nil || string(v) != `{"name":"idol"}` {
		t.Fatalf("get: v=%s err=%v", v, err)
	}
	if err := s.Remove(ctx, "artifacts/a1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if v, _ := s.Get(ctx, "artifacts/a1"); v != nil {
		t.Fatalf("get after remove: %s", v)
	}
}

func TestStore_ChildrenAndSubtreeRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_ = s.Set(ctx, "sessions/s1", []byte(`{}`))
	_ = s.Set(ctx, "sessions/s1/participants/u1", []byte(`""`))
	_ = s.Set(ctx, "sessions/s1/participants/u2", []byte(`""`))
	_ = s.Set(ctx, "sessions/s2", []byte(`{}`))

	got, err := s.Children(ctx, "sessions/s1/participants")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if want := []string{"u1", "u2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	if err := s.Remove(ctx, "sessions/s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.Exists(ctx, "sessions/s1/participants/u1"); ok {
		t.Fatal("subtree survived remove")
	}
	if ok, _ := s.Exists(ctx, "sessions/s2"); !ok {
		t.Fatal("sibling removed")
	}

	got, _ = s.Children(ctx, "sessions/s1/participants")
	if len(got) != 0 {
		t.Fatalf("children after remove = %v", got)
	}
}
