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

// Package merge unions several private folders into one shared folder.
// The first folder to provide a name wins; existing files are never replaced.
package merge

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/fileutil"
	"github.com/walteh/syncrc/pkg/lock"
	"github.com/walteh/syncrc/pkg/status"
)

// 📦 Copied is one file placed into the shared folder
type Copied struct {
	Name   string
	Source string // folder it came from
	Size   int64
}

// 📊 Report is the outcome of a merge pass
type Report struct {
	Copied         []Copied
	Skipped        []string // names already present in the shared folder
	MissingSources []string
	Failed         []string
}

// 📁 Entry is one file visible in the shared folder
type Entry struct {
	Name    string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

// 🔀 Merger copies private folders into a shared one
type Merger struct {
	fs       afero.Fs
	ignore   []string
	reporter status.Reporter
}

// Option configures a Merger.
type Option func(*Merger)

// WithIgnore skips names matching any of the doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return func(m *Merger) { m.ignore = append(m.ignore, patterns...) }
}

// WithReporter sets where per-file outcomes go.
func WithReporter(r status.Reporter) Option {
	return func(m *Merger) { m.reporter = r }
}

// 🏭 New creates a merger over fs
func New(fs afero.Fs, opts ...Option) *Merger {
	m := &Merger{fs: fs, reporter: status.NopReporter{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidatePatterns checks that every pattern is a valid doublestar glob.
func ValidatePatterns(patterns ...string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid ignore pattern %q", p)
		}
	}
	return nil
}

func (m *Merger) ignored(name string) bool {
	if name == lock.FileName || fileutil.IsTemp(name) {
		return true
	}
	for _, p := range m.ignore {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// 🔀 MergeInto copies the top-level regular files of each source folder, in
// order, into shared. A name already present in shared is skipped, so the
// earliest folder wins. Missing sources are reported and skipped. Per-file
// failures do not stop the pass; they are joined into the returned error.
// Content, permissions and modification time are preserved.
func (m *Merger) MergeInto(ctx context.Context, sources []string, shared string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	report := &Report{}

	if err := m.fs.MkdirAll(shared, 0755); err != nil {
		return report, errors.Errorf("creating shared folder %s: %w", shared, err)
	}

	var errs []error

	for _, src := range sources {
		infos, err := afero.ReadDir(m.fs, src)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				logger.Warn().Str("source", src).Msg("source folder does not exist, skipping")
				report.MissingSources = append(report.MissingSources, src)
				continue
			}
			errs = append(errs, errors.Errorf("listing %s: %w", src, err))
			continue
		}

		m.reporter.StartOperation(ctx, len(infos))
		for i, info := range infos {
			name := info.Name()
			if !info.Mode().IsRegular() || m.ignored(name) {
				m.reporter.UpdateProgress(ctx, i+1)
				continue
			}

			dst := filepath.Join(shared, name)
			exists, err := afero.Exists(m.fs, dst)
			if err != nil {
				errs = append(errs, errors.Errorf("checking %s: %w", dst, err))
				report.Failed = append(report.Failed, name)
				m.reporter.TrackFile(ctx, name, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
				m.reporter.UpdateProgress(ctx, i+1)
				continue
			}
			if exists {
				report.Skipped = append(report.Skipped, name)
				m.reporter.TrackFile(ctx, name, status.FileInfo{Outcome: status.OutcomeSkipped})
				m.reporter.UpdateProgress(ctx, i+1)
				continue
			}

			n, err := fileutil.Copy(m.fs, filepath.Join(src, name), dst, fileutil.CopyOptions{PreserveModTime: true})
			if err != nil {
				logger.Error().Err(err).Str("source", src).Str("name", name).Msg("copy failed, continuing")
				errs = append(errs, errors.Errorf("copying %s from %s: %w", name, src, err))
				report.Failed = append(report.Failed, name)
				m.reporter.TrackFile(ctx, name, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
				m.reporter.UpdateProgress(ctx, i+1)
				continue
			}

			report.Copied = append(report.Copied, Copied{Name: name, Source: src, Size: n})
			m.reporter.TrackFile(ctx, name, status.FileInfo{Outcome: status.OutcomeNew, Size: n})
			m.reporter.UpdateProgress(ctx, i+1)
			logger.Debug().Str("source", src).Str("name", name).Int64("size", n).Msg("copied into shared folder")
		}
		m.reporter.FinishOperation(ctx)
	}

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// 📋 ListShared returns the regular files of shared, sorted by name. The lock
// file, in-flight copies and ignored names are left out.
func (m *Merger) ListShared(ctx context.Context, shared string) ([]Entry, error) {
	infos, err := afero.ReadDir(m.fs, shared)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", shared, err)
	}

	out := []Entry{}
	for _, info := range infos {
		if !info.Mode().IsRegular() || m.ignored(info.Name()) {
			continue
		}
		out = append(out, Entry{
			Name:    info.Name(),
			Size:    info.Size(),
			Mode:    info.Mode(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
