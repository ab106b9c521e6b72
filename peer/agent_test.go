package peer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAgentLifecycle(t *testing.T) {
	client := startTestRegistry(t)
	ctx := context.Background()

	base := t.TempDir()
	sharedDir := filepath.Join(base, "shared_files")
	downloadsDir := filepath.Join(base, "downloads")

	agent, err := NewAgent(client, "carol", "pw", sharedDir, downloadsDir)
	if err != nil {
		t.Fatal(err)
	}
	// Directories are created up front, like the original app data layout.
	if _, err := os.Stat(sharedDir); err != nil {
		t.Fatalf("shared dir not created: %v", err)
	}

	if err := os.WriteFile(filepath.Join(sharedDir, "seed.txt"), []byte("seed"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := agent.Start(ctx, "127.0.0.1:0", true); err != nil {
		t.Fatalf("agent start failed: %v", err)
	}

	files, err := client.SearchFiles(ctx, "", "carol")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Filename != "seed.txt" {
		t.Fatalf("startup publish missing: %+v", files)
	}

	// Sharing a new file republishes the complete listing.
	extra := filepath.Join(base, "extra.txt")
	if err := os.WriteFile(extra, []byte("extra"), 0644); err != nil {
		t.Fatal(err)
	}
	copied, err := agent.AddFiles(ctx, []string{extra})
	if err != nil {
		t.Fatal(err)
	}
	if copied != 1 {
		t.Fatalf("expected 1 file copied, got %d", copied)
	}

	shared, err := agent.SharedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(shared) != 2 {
		t.Fatalf("expected 2 shared files, got %v", shared)
	}
	files, err = client.SearchFiles(ctx, "", "carol")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("republish after AddFiles missing: %+v", files)
	}

	// Emptying the shared dir and republishing clears the catalog, so the
	// peer never advertises files it can no longer serve.
	for _, name := range shared {
		if err := os.Remove(filepath.Join(sharedDir, name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := agent.PublishListing(ctx); err != nil {
		t.Fatalf("publish of empty listing failed: %v", err)
	}
	files, err = client.SearchFiles(ctx, "", "carol")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("stale entries advertised after shared dir emptied: %+v", files)
	}

	if err := agent.Stop(ctx); err != nil {
		t.Fatalf("agent stop failed: %v", err)
	}
	files, err = client.SearchFiles(ctx, "", "carol")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("files still advertised after stop: %+v", files)
	}
}
