package registry

import (
	"errors"
	"testing"
	"time"
)

func TestSweepRemovesStalePeerAndFiles(t *testing.T) {
	svc, clock := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("alice", []string{"a.txt", "b.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	clock.Advance(DefaultTTL + time.Second)
	removed, err := svc.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 peer removed, got %d", removed)
	}

	if _, err := svc.Authenticate("alice", "s"); !errors.Is(err, ErrAuthFailed) {
		t.Fatal("peer row survived the sweep")
	}
	files, err := svc.FilesFor("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("file entries orphaned after sweep: %v", files)
	}
}

func TestSweepKeepsFreshPeers(t *testing.T) {
	svc, clock := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	clock.Advance(DefaultTTL - time.Second)
	removed, err := svc.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Fatalf("fresh peer was swept")
	}
	if _, err := svc.Authenticate("alice", "s"); err != nil {
		t.Fatalf("fresh peer gone: %v", err)
	}
}

func TestSweepIdempotent(t *testing.T) {
	svc, clock := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * DefaultTTL)
	if _, err := svc.Sweep(); err != nil {
		t.Fatal(err)
	}
	removed, err := svc.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Fatalf("second sweep removed %d peers from a clean state", removed)
	}
}

func TestSweepOnlyRemovesStale(t *testing.T) {
	svc, clock := setupTestService(t)
	if err := svc.Register("stale", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DefaultTTL + time.Second)
	if err := svc.Register("fresh", "s", "10.0.0.2", 7001); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected only the stale peer removed, got %d", removed)
	}
	if _, err := svc.Authenticate("fresh", "s"); err != nil {
		t.Fatalf("fresh peer swept: %v", err)
	}
}
