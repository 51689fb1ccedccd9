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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is what happened to a single file during an operation
type Outcome int

const (
	OutcomeUnknown   Outcome = iota
	OutcomeNew               // File didn't exist at the target
	OutcomeModified          // File existed, content differed
	OutcomeUnchanged         // Content matched, nothing written
	OutcomeSkipped           // Deliberately not written
	OutcomeFailed            // Write attempted and failed
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeModified:
		return "modified"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo describes one tracked file
type FileInfo struct {
	Path    string  // Relative path to the file
	Outcome Outcome // What happened
	Size    int64   // Bytes written, 0 when nothing was written
	Hash    string  // Content hash after the operation, if known
	Version int     // Recorded version, if any
	Error   error   // Set when Outcome is OutcomeFailed
}

// 📈 Reporter tracks file outcomes and reports progress
type Reporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements Reporter, keeping outcomes in arrival order
type Manager struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu    sync.RWMutex
	order []string
	files map[string]FileInfo

	total     int
	processed int
}

var _ Reporter = (*Manager)(nil)

// 🏭 New creates a new status manager. A nil logger falls back to the
// logger carried by each call's context.
func New(logger *zerolog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// WithFormatter swaps the message formatter.
func (m *Manager) WithFormatter(f FileFormatter) *Manager {
	m.formatter = f
	return m
}

func (m *Manager) log(ctx context.Context) *zerolog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return zerolog.Ctx(ctx)
}

func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = path
	if _, ok := m.files[path]; !ok {
		m.order = append(m.order, path)
	}
	m.files[path] = info

	if info.Error != nil {
		m.log(ctx).Error().Err(info.Error).Str("path", path).Msg(m.formatter.FormatError(path, info.Error))
		return
	}

	ev := m.log(ctx).Info()
	if info.Outcome == OutcomeUnchanged || info.Outcome == OutcomeSkipped {
		ev = m.log(ctx).Debug()
	}
	ev.Str("path", path).
		Str("outcome", info.Outcome.String()).
		Str("hash", info.Hash).
		Int("version", info.Version).
		Msg(m.formatter.FormatFileOperation(path, info.Outcome))
}

// GetFileInfo returns the last tracked info for path.
func (m *Manager) GetFileInfo(path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked file in the order it was first seen.
func (m *Manager) ListFiles() []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.order))
	for _, p := range m.order {
		files = append(files, m.files[p])
	}
	return files
}

// Paths returns the tracked paths with the given outcome, in arrival order.
func (m *Manager) Paths(outcome Outcome) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []string{}
	for _, p := range m.order {
		if m.files[p].Outcome == outcome {
			out = append(out, p)
		}
	}
	return out
}

// Progress returns processed and total counts.
func (m *Manager) Progress() (processed, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.log(ctx).Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	m.log(ctx).Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log(ctx).Info().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

// 🔇 NopReporter discards everything
type NopReporter struct{}

var _ Reporter = NopReporter{}

func (NopReporter) TrackFile(context.Context, string, FileInfo) {}
func (NopReporter) StartOperation(context.Context, int)         {}
func (NopReporter) UpdateProgress(context.Context, int)         {}
func (NopReporter) FinishOperation(context.Context)             {}

// 🔀 Multi fans every call out to each reporter in order
func Multi(reporters ...Reporter) Reporter {
	return multiReporter(reporters)
}

type multiReporter []Reporter

func (m multiReporter) TrackFile(ctx context.Context, path string, info FileInfo) {
	for _, r := range m {
		r.TrackFile(ctx, path, info)
	}
}

func (m multiReporter) StartOperation(ctx context.Context, total int) {
	for _, r := range m {
		r.StartOperation(ctx, total)
	}
}

func (m multiReporter) UpdateProgress(ctx context.Context, processed int) {
	for _, r := range m {
		r.UpdateProgress(ctx, processed)
	}
}

func (m multiReporter) FinishOperation(ctx context.Context) {
	for _, r := range m {
		r.FinishOperation(ctx)
	}
}
