package dsl

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScript(t *testing.T, path, src string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.parley")
	writeScript(t, path, `INTENT a { when always then reply "v1"; }`)

	l := NewLoader(path)
	if l.Program() != nil {
		t.Fatal("Program() should be nil before Load")
	}
	prog, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if l.Program() != prog {
		t.Error("Program() should return the loaded program")
	}
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}
}

func TestLoaderKeepsProgramOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.parley")
	writeScript(t, path, `INTENT a { when always then reply "v1"; }`)

	l := NewLoader(path)
	good, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	writeScript(t, path, `INTENT a { when always then reply "v2" }`)
	if _, err := l.Load(); err == nil {
		t.Fatal("Load() of broken script should fail")
	}
	if l.Program() != good {
		t.Error("failed Load() replaced the current program")
	}
}

func TestLoaderWatchAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.parley")
	writeScript(t, path, `INTENT a { when always then reply "v1"; }`)

	l := NewLoader(path)
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	reloaded := make(chan *Program, 4)
	l.OnReload = func(p *Program) { reloaded <- p }

	done := make(chan struct{})
	errc := make(chan error, 1)
	go func() { errc <- l.WatchAndReload(done) }()
	defer func() {
		close(done)
		if err := <-errc; err != nil {
			t.Errorf("WatchAndReload() error: %v", err)
		}
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeScript(t, path, `INTENT a { when always then reply "v2"; }`)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-reloaded:
			// A write may be observed mid-way; wait for the final content.
			def, ok := p.Lookup("a")
			if ok && len(def.Rules) == 1 && def.Rules[0].Action.Value == "v2" {
				if l.Program() != p {
					t.Error("Program() should be the reloaded program")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
