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

// Package mirror copies the files named by a source metadata store into a
// destination tree and records what it wrote.
package mirror

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/fileutil"
	"github.com/walteh/syncrc/pkg/fingerprint"
	"github.com/walteh/syncrc/pkg/metadata"
	"github.com/walteh/syncrc/pkg/status"
)

// ErrUnsafePath is returned for a store key that is absolute or leaves the root.
var ErrUnsafePath = errors.Base("unsafe metadata path")

// 🪞 Engine replicates source files into a destination tree
type Engine struct {
	fs       afero.Fs
	clock    clockwork.Clock
	reporter status.Reporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for last_updated stamps.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithReporter sets where per-file outcomes go.
func WithReporter(r status.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// 🏭 New creates an engine over fs
func New(fs afero.Fs, opts ...Option) *Engine {
	e := &Engine{
		fs:       fs,
		clock:    clockwork.NewRealClock(),
		reporter: status.NopReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// 🔄 Sync walks sourceMeta in order and copies every file that destMeta lacks
// or holds with a different hash. Matching entries are left alone. destMeta is
// mutated in place and returned; saving it is up to the caller.
//
// The first failure stops the batch. The returned store then holds every
// entry completed before it, and the failing entry is left as it was.
func (e *Engine) Sync(ctx context.Context, sourceRoot, destRoot string, sourceMeta, destMeta *metadata.Store) (*metadata.Store, error) {
	if destMeta == nil {
		destMeta = metadata.New()
	}

	logger := zerolog.Ctx(ctx)
	paths := sourceMeta.Paths()

	e.reporter.StartOperation(ctx, len(paths))
	defer e.reporter.FinishOperation(ctx)

	for i, key := range paths {
		src, _ := sourceMeta.Get(key)
		dst, tracked := destMeta.Get(key)

		if tracked && dst.Hash == src.Hash {
			e.reporter.TrackFile(ctx, key, status.FileInfo{
				Outcome: status.OutcomeUnchanged,
				Hash:    dst.Hash,
				Version: dst.Version,
			})
			e.reporter.UpdateProgress(ctx, i+1)
			continue
		}

		rec, size, err := e.transfer(ctx, sourceRoot, destRoot, src)
		if err != nil {
			e.reporter.TrackFile(ctx, key, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
			return destMeta, errors.Errorf("syncing %s: %w", key, err)
		}
		destMeta.Set(key, rec)

		outcome := status.OutcomeNew
		if tracked {
			outcome = status.OutcomeModified
		}
		e.reporter.TrackFile(ctx, key, status.FileInfo{
			Outcome: outcome,
			Size:    size,
			Hash:    rec.Hash,
			Version: rec.Version,
		})
		e.reporter.UpdateProgress(ctx, i+1)

		logger.Debug().
			Str("path", key).
			Str("hash", rec.Hash).
			Int("version", rec.Version).
			Msg("transferred file")
	}

	return destMeta, nil
}

func (e *Engine) transfer(ctx context.Context, sourceRoot, destRoot string, src metadata.FileRecord) (metadata.FileRecord, int64, error) {
	srcPath, err := Resolve(sourceRoot, src.Path)
	if err != nil {
		return metadata.FileRecord{}, 0, err
	}
	dstPath, err := Resolve(destRoot, src.Path)
	if err != nil {
		return metadata.FileRecord{}, 0, err
	}

	size, err := fileutil.Copy(e.fs, srcPath, dstPath, fileutil.CopyOptions{})
	if err != nil {
		return metadata.FileRecord{}, 0, err
	}

	hash, err := fingerprint.File(e.fs, dstPath)
	if err != nil {
		return metadata.FileRecord{}, 0, errors.Errorf("hashing copy: %w", err)
	}

	if hash != src.Hash {
		zerolog.Ctx(ctx).Warn().
			Str("path", src.Path).
			Str("recorded_hash", src.Hash).
			Str("actual_hash", hash).
			Msg("source metadata is stale, recording the hash of the copied bytes")
	}

	return metadata.FileRecord{
		Version:     src.Version,
		Hash:        hash,
		LastUpdated: e.clock.Now(),
	}, size, nil
}

// 🧭 Resolve joins a slash-separated store key onto root. Empty, absolute and
// root-escaping keys are rejected with ErrUnsafePath.
func Resolve(root, key string) (string, error) {
	if key == "" || path.IsAbs(key) || filepath.IsAbs(key) || filepath.VolumeName(key) != "" {
		return "", errors.WithDetails(ErrUnsafePath, "path", key)
	}

	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.WithDetails(ErrUnsafePath, "path", key)
	}

	return filepath.Join(root, filepath.FromSlash(clean)), nil
}
