package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jly61/knowledge-and-blog/internal/noteservice"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, im *Importer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = im.Watch(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func importedPaths(svc *noteservice.Service) map[string]string {
	m, _ := svc.ImportedChecksums(context.Background(), owner)
	return m
}

func TestWatcher_NewFileImported(t *testing.T) {
	im, svc := testImporter(t)
	startWatch(t, im)

	_ = os.WriteFile(filepath.Join(im.fs.Root(), "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := importedPaths(svc)["new.md"]
		return ok
	}, "new file not imported by watcher")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	im, svc := testImporter(t)
	startWatch(t, im)

	subDir := filepath.Join(im.fs.Root(), "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := importedPaths(svc)["subdir/deep.md"]
		return ok
	}, "file in new subdir not imported by watcher")
}

func TestWatcher_DeleteRemovesNote(t *testing.T) {
	im, svc := testImporter(t)
	writeFile(t, im, "del.md", "# Delete Me")
	if _, err := im.Sync(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	startWatch(t, im)

	_ = os.Remove(filepath.Join(im.fs.Root(), "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := importedPaths(svc)["del.md"]
		return !ok
	}, "deleted file still mirrored")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	im, svc := testImporter(t)
	writeFile(t, im, "old.md", "# Rename")
	if _, err := im.Sync(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	startWatch(t, im)

	_ = os.Rename(filepath.Join(im.fs.Root(), "old.md"), filepath.Join(im.fs.Root(), "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		paths := importedPaths(svc)
		_, hasOld := paths["old.md"]
		_, hasNew := paths["renamed.md"]
		return !hasOld && hasNew
	}, "rename reconciliation failed: old path should be removed and new path imported")
}

func TestWatcher_LinksResolveAfterSettle(t *testing.T) {
	im, svc := testImporter(t)
	startWatch(t, im)

	_ = os.WriteFile(filepath.Join(im.fs.Root(), "a.md"), []byte("# A\n[[B]]"), 0o644)
	time.Sleep(50 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(im.fs.Root(), "b.md"), []byte("# B"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		items, _, err := svc.ListNotes(context.Background(), owner, noteservice.ListOptions{})
		if err != nil || len(items) != 2 {
			return false
		}
		for _, it := range items {
			if it.Title != "A" {
				continue
			}
			n, err := svc.GetNote(context.Background(), owner, it.ID)
			return err == nil && len(n.Links) == 1
		}
		return false
	}, "forward link not resolved after watcher settle")
}

func TestSettle_ResolvesLinksOfAlreadyImportedFiles(t *testing.T) {
	ctx := context.Background()
	im, svc := testImporter(t)
	root := im.fs.Root()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A\n[[B]]"), 0o644))
	_, err := im.ImportFile(ctx, "a.md")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("# B"), 0o644))
	_, err = im.ImportFile(ctx, "b.md")
	require.NoError(t, err)

	a := noteByTitle(t, svc, owner, "A")
	require.Empty(t, a.Links)

	im.settle(ctx)

	a = noteByTitle(t, svc, owner, "A")
	require.Len(t, a.Links, 1)
	require.Equal(t, "B", a.Links[0].Title)
}
