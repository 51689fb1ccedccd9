// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch turns edits in a local tree into version bumps.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/fileutil"
	"github.com/walteh/syncrc/pkg/lock"
	"github.com/walteh/syncrc/pkg/metadata"
	"github.com/walteh/syncrc/pkg/status"
)

// DefaultDebounce is how long a path must stay quiet before it is recorded.
const DefaultDebounce = 250 * time.Millisecond

// Recorder records a file that may have changed.
type Recorder interface {
	RecordIfChanged(ctx context.Context, filePath, metadataPath string) (metadata.FileRecord, bool, error)
}

// 👀 Watcher follows a tree and records settled edits
type Watcher struct {
	root         string
	metadataPath string
	recorder     Recorder
	reporter     status.Reporter
	clock        clockwork.Clock
	debounce     time.Duration
	ignore       []string
	skip         map[string]bool

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore drops events for paths matching any doublestar pattern. Patterns
// are matched against the slash-separated path relative to the root and
// against the base name.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) { w.ignore = append(w.ignore, patterns...) }
}

// WithSkipPaths drops events for these exact files.
func WithSkipPaths(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if p != "" {
				w.skip[filepath.Clean(p)] = true
			}
		}
	}
}

// WithReporter sets where recorded edits go.
func WithReporter(r status.Reporter) Option {
	return func(w *Watcher) { w.reporter = r }
}

// WithClock sets the clock used for debouncing.
func WithClock(c clockwork.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// 🏭 New creates a watcher over root that records edits into metadataPath
func New(root, metadataPath string, recorder Recorder, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:         filepath.Clean(root),
		metadataPath: filepath.Clean(metadataPath),
		recorder:     recorder,
		reporter:     status.NopReporter{},
		clock:        clockwork.NewRealClock(),
		debounce:     DefaultDebounce,
		skip:         map[string]bool{},
		watcher:      fw,
		pending:      map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(w)
	}

	w.skip[w.metadataPath] = true
	w.skip[w.metadataPath+metadata.TempSuffix] = true

	return w, nil
}

// 🏃 Run watches until ctx is cancelled. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	defer w.watcher.Close()

	if err := w.addTree(ctx, w.root); err != nil {
		return err
	}
	logger.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("watching for local edits")

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := w.clock.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logger.Error().Err(err).Msg("watcher error")

		case <-ticker.Chan():
			w.processSettled(ctx)
		}
	}
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Errorf("watching %s: %w", p, err)
		}
		zerolog.Ctx(ctx).Debug().Str("dir", p).Msg("watching directory")
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	p = filepath.Clean(p)
	if w.skip[p] {
		return true
	}

	base := filepath.Base(p)
	if base == lock.FileName || fileutil.IsTemp(base) {
		return true
	}

	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if w.ignored(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(ctx, event.Name); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("dir", event.Name).Msg("could not follow new directory")
			}
			// files created before the watch landed
			w.queueTree(event.Name)
		}
		return
	}

	w.queue(event.Name)
}

func (w *Watcher) queue(p string) {
	w.mu.Lock()
	w.pending[p] = w.clock.Now()
	w.mu.Unlock()
}

func (w *Watcher) queueTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() && !w.ignored(p) {
			w.queue(p)
		}
		return nil
	})
}

// Pending returns the number of queued paths.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Watcher) processSettled(ctx context.Context) {
	now := w.clock.Now()

	w.mu.Lock()
	settled := make([]string, 0)
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	for _, p := range settled {
		w.record(ctx, p)
	}
}

func (w *Watcher) record(ctx context.Context, p string) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	rec, changed, err := w.recorder.RecordIfChanged(ctx, p, w.metadataPath)
	if err != nil {
		logger.Error().Err(err).Str("file", p).Msg("recording edit failed")
		w.reporter.TrackFile(ctx, p, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
		return
	}
	if !changed {
		return
	}

	outcome := status.OutcomeModified
	if rec.Version == 1 {
		outcome = status.OutcomeNew
	}
	w.reporter.TrackFile(ctx, rec.Path, status.FileInfo{
		Outcome: outcome,
		Hash:    rec.Hash,
		Version: rec.Version,
	})
}
