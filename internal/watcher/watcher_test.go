package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CageChen/nativefs/internal/config"
	nfs "github.com/CageChen/nativefs/internal/fs"
)

func localFS(root string) nfs.FileSystem { return nfs.NewLocalFS(root) }

func startWatcher(t *testing.T, roots ...config.Root) (*Watcher, chan Event) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Roots = roots

	w, err := New(cfg, localFS)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	events := make(chan Event, 64)
	w.OnChange(func(e Event) { events <- e })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w, events
}

// waitFor returns the first event matching fn or fails after a timeout.
func waitFor(t *testing.T, events chan Event, fn func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if fn(e) {
				return e
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
			return Event{}
		}
	}
}

func TestCreateEventCarriesInfo(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatcher(t, config.Root{Path: dir, Alias: "work"})

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := waitFor(t, events, func(e Event) bool { return e.Rel == "a.txt" && e.Info != nil })
	if e.Alias != "work" || e.Backend != "local" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Info.Name != "a.txt" {
		t.Errorf("info = %+v", e.Info)
	}
}

func TestRemoveEventHasNoInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, events := startWatcher(t, config.Root{Path: dir, Alias: "work"})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	e := waitFor(t, events, func(e Event) bool { return e.Type == EventRemove })
	if e.Info != nil || e.Rel != "gone.txt" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	_, events := startWatcher(t, config.Root{Path: dir, Alias: "work"})

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, events, func(e Event) bool { return e.Rel == "sub" && e.Info != nil && e.Info.IsDir })

	if err := os.WriteFile(filepath.Join(sub, "b.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, events, func(e Event) bool { return e.Rel == "sub/b.txt" })
}

func TestExcludedDirectoriesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, _ := startWatcher(t, config.Root{Path: dir, Alias: "work"})

	for _, p := range w.watcher.WatchList() {
		if filepath.Base(p) == ".git" {
			t.Errorf("excluded directory is watched: %s", p)
		}
	}
}

func TestRootFor(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner")
	if err := os.Mkdir(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	w, _ := startWatcher(t,
		config.Root{Path: dir, Alias: "outer"},
		config.Root{Path: inner, Alias: "inner"},
	)

	r, rel, ok := w.rootFor(filepath.Join(inner, "x", "y.txt"))
	if !ok || r.Alias != "inner" || rel != "x/y.txt" {
		t.Errorf("rootFor = %s %q %v", r.Alias, rel, ok)
	}
	if _, _, ok := w.rootFor(filepath.Dir(dir)); ok {
		t.Error("parent of every root must not match")
	}

	w.RemoveRoot(inner)
	r, _, _ = w.rootFor(filepath.Join(inner, "y.txt"))
	if r.Alias != "outer" {
		t.Errorf("after removal rootFor = %s, want outer", r.Alias)
	}
}

func TestEventTypeString(t *testing.T) {
	if EventWrite.String() != "update" || EventType(42).String() != "unknown" {
		t.Error("unexpected event type names")
	}
}

func TestRemoveOuterRootKeepsNestedRoot(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner")
	other := filepath.Join(dir, "other")
	for _, d := range []string{inner, other} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	w, events := startWatcher(t,
		config.Root{Path: dir, Alias: "outer"},
		config.Root{Path: inner, Alias: "inner"},
	)

	w.RemoveRoot(dir)

	watched := map[string]bool{}
	for _, p := range w.watcher.WatchList() {
		watched[p] = true
	}
	if !watched[inner] {
		t.Errorf("nested root lost its watch: %v", w.watcher.WatchList())
	}
	if watched[dir] || watched[other] {
		t.Errorf("outer root still watched: %v", w.watcher.WatchList())
	}

	if err := os.WriteFile(filepath.Join(inner, "c.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	e := waitFor(t, events, func(e Event) bool { return e.Rel == "c.txt" })
	if e.Alias != "inner" {
		t.Errorf("alias = %s, want inner", e.Alias)
	}
}
