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

// Package tracker records local edits: it rehashes a file and bumps its
// version in the metadata document next to it.
package tracker

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/fingerprint"
	"github.com/walteh/syncrc/pkg/metadata"
)

// ErrOutsideRoot is returned for a file that does not live under the
// metadata document's directory.
var ErrOutsideRoot = errors.Base("file is outside the metadata root")

// 📝 Tracker bumps versions of locally edited files
type Tracker struct {
	fs    afero.Fs
	clock clockwork.Clock
}

// 🏭 New creates a tracker over fs. A nil clock uses the real clock.
func New(fs afero.Fs, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{fs: fs, clock: clock}
}

// ✍️ RecordLocalEdit hashes filePath and stores it under its path relative to
// the directory of metadataPath. A tracked file gets version+1; an untracked
// one starts at version 1. The whole document is rewritten.
func (t *Tracker) RecordLocalEdit(ctx context.Context, filePath, metadataPath string) (metadata.FileRecord, error) {
	rec, _, err := t.record(ctx, filePath, metadataPath, true)
	return rec, err
}

// ✍️ RecordIfChanged is RecordLocalEdit that leaves the document alone when
// the stored hash already matches the file.
func (t *Tracker) RecordIfChanged(ctx context.Context, filePath, metadataPath string) (metadata.FileRecord, bool, error) {
	return t.record(ctx, filePath, metadataPath, false)
}

func (t *Tracker) record(ctx context.Context, filePath, metadataPath string, always bool) (metadata.FileRecord, bool, error) {
	key, err := Key(filePath, metadataPath)
	if err != nil {
		return metadata.FileRecord{}, false, err
	}

	hash, err := fingerprint.File(t.fs, filePath)
	if err != nil {
		return metadata.FileRecord{}, false, errors.Errorf("hashing %s: %w", key, err)
	}

	store, err := metadata.Load(t.fs, metadataPath)
	if err != nil {
		return metadata.FileRecord{}, false, err
	}

	prev, tracked := store.Get(key)
	if tracked && !always && prev.Hash == hash {
		return prev, false, nil
	}

	version := 1
	if tracked {
		version = prev.Version + 1
	}

	store.Set(key, metadata.FileRecord{
		Version:     version,
		Hash:        hash,
		LastUpdated: t.clock.Now(),
	})

	if err := metadata.Save(t.fs, store, metadataPath); err != nil {
		return metadata.FileRecord{}, false, err
	}

	rec, _ := store.Get(key)
	zerolog.Ctx(ctx).Info().
		Str("path", key).
		Str("hash", hash).
		Int("version", version).
		Msg("recorded local edit")

	return rec, true, nil
}

// 🔑 Key returns the store key of filePath: its slash-separated path relative
// to the directory holding metadataPath.
func Key(filePath, metadataPath string) (string, error) {
	root, err := filepath.Abs(filepath.Dir(metadataPath))
	if err != nil {
		return "", errors.Errorf("resolving metadata root: %w", err)
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", filePath, err)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", errors.WithDetails(ErrOutsideRoot, "file", filePath, "root", root)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.WithDetails(ErrOutsideRoot, "file", filePath, "root", root)
	}

	return filepath.ToSlash(rel), nil
}
