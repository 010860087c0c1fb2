package dsl

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Loader loads a rule script and optionally hot-reloads it. Each reload
// swaps in a freshly parsed Program; programs already handed out are never
// modified.
type Loader struct {
	path    string
	parser  *Parser
	program atomic.Pointer[Program]

	// OnReload, if set, is called after every successful reload.
	OnReload func(*Program)
}

// NewLoader creates a loader for the script at path.
func NewLoader(path string) *Loader {
	return &Loader{
		path:   path,
		parser: NewParser(),
	}
}

// Path returns the script path.
func (l *Loader) Path() string {
	return l.path
}

// Load parses the script and makes it the current program. On error the
// current program is left unchanged.
func (l *Loader) Load() (*Program, error) {
	p, err := l.parser.ParseFile(l.path)
	if err != nil {
		return nil, err
	}
	l.program.Store(p)
	return p, nil
}

// Program returns the current program, or nil before the first Load.
func (l *Loader) Program() *Program {
	return l.program.Load()
}

// WatchAndReload watches the script's directory and reloads on change.
// A script that fails to parse is logged and the previous program stays
// active. This blocks until done is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors commonly replace
	// the file on save, which drops a file-level watch.
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}

	target := filepath.Clean(l.path)
	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			p, err := l.Load()
			if err != nil {
				slog.Warn("script reload failed, keeping previous program", "path", l.path, "error", err)
				continue
			}
			slog.Info("script reloaded", "path", l.path, "intents", len(p.Intents), "rules", p.RuleCount())
			if l.OnReload != nil {
				l.OnReload(p)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
