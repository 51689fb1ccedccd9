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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/journal"
	"github.com/walteh/syncrc/pkg/status"
)

// journal appends entries to the configured journal. Failures are logged;
// the metadata documents stay the record of truth.
func (o *operator) journal(ctx context.Context, entries ...journal.Entry) {
	path := o.cfg.JournalPath()
	if path == "" || len(entries) == 0 {
		return
	}

	logger := zerolog.Ctx(ctx)

	j, err := journal.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("journal", path).Msg("journal unavailable, entries dropped")
		return
	}
	defer func() {
		if err := j.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing journal")
		}
	}()

	if err := j.Append(ctx, entries...); err != nil {
		logger.Warn().Err(err).Str("journal", path).Msg("journal append failed")
	}
}

// 📜 History returns up to limit journal entries, newest first
func (o *operator) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	path := o.cfg.JournalPath()
	if path == "" {
		return nil, errors.Errorf("journal is disabled in %s", o.cfg.Location())
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	return j.List(ctx, limit)
}

// journalReporter journals every recorded file as it is reported.
type journalReporter struct {
	op    *operator
	runID string
	kind  journal.Kind
}

var _ status.Reporter = (*journalReporter)(nil)

func (r *journalReporter) TrackFile(ctx context.Context, path string, info status.FileInfo) {
	if info.Outcome != status.OutcomeNew && info.Outcome != status.OutcomeModified {
		return
	}
	r.op.journal(ctx, journal.Entry{
		RunID:   r.runID,
		Kind:    r.kind,
		Path:    path,
		Hash:    info.Hash,
		Version: info.Version,
		Time:    r.op.clock.Now(),
	})
}

func (r *journalReporter) StartOperation(context.Context, int) {}
func (r *journalReporter) UpdateProgress(context.Context, int) {}
func (r *journalReporter) FinishOperation(context.Context)     {}
