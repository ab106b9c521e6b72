package registry

import (
	"errors"
	"testing"
	"time"
)

func TestPublishReplacesNotMerges(t *testing.T) {
	svc, _ := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	if err := svc.Publish("alice", []string{"a.txt", "b.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("alice", []string{"c.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	files, err := svc.FilesFor("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Filename != "c.txt" {
		t.Fatalf("expected exactly {c.txt}, got %v", files)
	}
}

func TestPublishEmptyListClears(t *testing.T) {
	svc, _ := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("alice", []string{"a.txt", "b.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	// An empty shared folder publishes an empty list, which clears the
	// catalog rather than failing.
	if err := svc.Publish("alice", []string{}, "10.0.0.1", 7000); err != nil {
		t.Fatalf("empty publish should clear, got %v", err)
	}
	files, err := svc.FilesFor("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("stale entries survived an empty publish: %v", files)
	}

	// A nil list means the field was absent entirely.
	if err := svc.Publish("alice", nil, "10.0.0.1", 7000); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for nil list, got %v", err)
	}
}

func TestPublishValidation(t *testing.T) {
	svc, _ := setupTestService(t)
	cases := []struct {
		name     string
		username string
		files    []string
		ip       string
		port     int
	}{
		{"no username", "", []string{"a"}, "10.0.0.1", 7000},
		{"no files", "alice", nil, "10.0.0.1", 7000},
		{"no ip", "alice", []string{"a"}, "", 7000},
		{"no port", "alice", []string{"a"}, "10.0.0.1", 0},
	}
	for _, tc := range cases {
		if err := svc.Publish(tc.username, tc.files, tc.ip, tc.port); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestQueryFiltersStalePeersBeforeSweep(t *testing.T) {
	svc, clock := setupTestService(t)
	if err := svc.Register("stale", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("stale", []string{"old.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	clock.Advance(DefaultTTL + time.Second)
	if err := svc.Register("fresh", "s", "10.0.0.2", 7001); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("fresh", []string{"new.txt"}, "10.0.0.2", 7001); err != nil {
		t.Fatal(err)
	}

	// No sweep has run; the query-time filter alone must hide the stale peer.
	results, err := svc.QueryFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Filename != "new.txt" {
		t.Fatalf("expected only the fresh peer's file, got %v", results)
	}

	// A heartbeat brings the stale peer back without republishing.
	if err := svc.Heartbeat("stale", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	results, err = svc.QueryFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both files after heartbeat, got %v", results)
	}
}

func TestQueryCaseInsensitiveSubstring(t *testing.T) {
	svc, _ := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("alice", []string{"Quarterly-Report.PDF", "notes.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	results, err := svc.QueryFiles("report", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Filename != "Quarterly-Report.PDF" {
		t.Fatalf("case-insensitive filename match failed: %v", results)
	}

	results, err = svc.QueryFiles("", "ALI")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("case-insensitive username match failed: %v", results)
	}

	results, err = svc.QueryFiles("nosuchfile", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %v", results)
	}
}

func TestQueryOrderedBySharedTime(t *testing.T) {
	svc, clock := setupTestService(t)
	for _, u := range []string{"alice", "bob"} {
		if err := svc.Register(u, "s", "10.0.0.1", 7000); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Publish("alice", []string{"first.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	if err := svc.Publish("bob", []string{"second.txt"}, "10.0.0.2", 7001); err != nil {
		t.Fatal(err)
	}
	// Keep alice live past bob's publish.
	if err := svc.Heartbeat("alice", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}

	results, err := svc.QueryFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Filename != "first.txt" || results[1].Filename != "second.txt" {
		t.Fatalf("expected shared_time ascending order, got %v", results)
	}
}

func TestQueryReturnsPublishTimeAddressSnapshot(t *testing.T) {
	svc, _ := setupTestService(t)
	if err := svc.Register("alice", "s", "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	if err := svc.Publish("alice", []string{"a.txt"}, "10.0.0.1", 7000); err != nil {
		t.Fatal(err)
	}
	// The peer moves to a new port but does not republish.
	if err := svc.Heartbeat("alice", "10.0.0.1", 9999); err != nil {
		t.Fatal(err)
	}

	results, err := svc.QueryFiles("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].PeerPort != 7000 {
		t.Fatalf("expected publish-time port snapshot 7000, got %v", results)
	}
}
