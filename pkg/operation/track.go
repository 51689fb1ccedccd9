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
	"github.com/walteh/syncrc/pkg/metadata"
	"github.com/walteh/syncrc/pkg/status"
	"github.com/walteh/syncrc/pkg/tracker"
	"github.com/walteh/syncrc/pkg/watch"
)

// 📊 IndexResult is what an index pass recorded
type IndexResult struct {
	RunID     string
	Recorded  []metadata.FileRecord
	Unchanged []string
}

// 📇 Index records every manifest file of the source tree whose content
// changed since it was last recorded. The first failure stops the pass.
func (o *operator) Index(ctx context.Context) (*IndexResult, error) {
	result := &IndexResult{RunID: journal.NewRunID()}
	if len(o.cfg.Files) == 0 {
		return result, errors.Errorf("no files listed in the manifest")
	}

	err := withLock(ctx, o.cfg.SourceRoot(), func() error {
		tr := tracker.New(o.fs, o.clock)
		metaPath := o.cfg.SourceMetadataPath()
		paths := o.cfg.ManifestPaths()

		o.reporter.StartOperation(ctx, len(paths))
		defer o.reporter.FinishOperation(ctx)

		var entries []journal.Entry
		defer func() { o.journal(ctx, entries...) }()

		for i, p := range paths {
			name := o.cfg.Files[i].Name
			rec, changed, err := tr.RecordIfChanged(ctx, p, metaPath)
			if err != nil {
				o.reporter.TrackFile(ctx, o.cfg.Files[i].Path, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
				return errors.Errorf("indexing %s: %w", name, err)
			}

			if !changed {
				result.Unchanged = append(result.Unchanged, rec.Path)
				o.reporter.TrackFile(ctx, rec.Path, status.FileInfo{Outcome: status.OutcomeUnchanged, Hash: rec.Hash, Version: rec.Version})
			} else {
				result.Recorded = append(result.Recorded, rec)
				outcome := status.OutcomeModified
				if rec.Version == 1 {
					outcome = status.OutcomeNew
				}
				o.reporter.TrackFile(ctx, rec.Path, status.FileInfo{Outcome: outcome, Hash: rec.Hash, Version: rec.Version})
				entries = append(entries, journal.Entry{
					RunID:   result.RunID,
					Kind:    journal.KindIndex,
					Path:    rec.Path,
					Hash:    rec.Hash,
					Version: rec.Version,
					Time:    rec.LastUpdated,
				})
			}
			o.reporter.UpdateProgress(ctx, i+1)
		}
		return nil
	})

	zerolog.Ctx(ctx).Info().
		Str("run_id", result.RunID).
		Int("recorded", len(result.Recorded)).
		Int("unchanged", len(result.Unchanged)).
		Msg("index finished")

	return result, err
}

// ✍️ Track records a local edit of each file in the destination tree
func (o *operator) Track(ctx context.Context, files ...string) ([]metadata.FileRecord, error) {
	if len(files) == 0 {
		return nil, errors.Errorf("no files to track")
	}

	runID := journal.NewRunID()
	var records []metadata.FileRecord

	err := withLock(ctx, o.cfg.DestinationRoot(), func() error {
		tr := tracker.New(o.fs, o.clock)
		metaPath := o.cfg.DestinationMetadataPath()

		var entries []journal.Entry
		defer func() { o.journal(ctx, entries...) }()

		for _, f := range files {
			rec, err := tr.RecordLocalEdit(ctx, f, metaPath)
			if err != nil {
				o.reporter.TrackFile(ctx, f, status.FileInfo{Outcome: status.OutcomeFailed, Error: err})
				return errors.Errorf("tracking %s: %w", f, err)
			}
			records = append(records, rec)

			outcome := status.OutcomeModified
			if rec.Version == 1 {
				outcome = status.OutcomeNew
			}
			o.reporter.TrackFile(ctx, rec.Path, status.FileInfo{Outcome: outcome, Hash: rec.Hash, Version: rec.Version})
			entries = append(entries, journal.Entry{
				RunID:   runID,
				Kind:    journal.KindEdit,
				Path:    rec.Path,
				Hash:    rec.Hash,
				Version: rec.Version,
				Time:    rec.LastUpdated,
			})
		}
		return nil
	})

	return records, err
}

// 👀 Watch records destination edits until ctx is cancelled
func (o *operator) Watch(ctx context.Context) error {
	return withLock(ctx, o.cfg.DestinationRoot(), func() error {
		jr := &journalReporter{op: o, runID: journal.NewRunID(), kind: journal.KindEdit}

		w, err := watch.New(
			o.cfg.DestinationRoot(),
			o.cfg.DestinationMetadataPath(),
			tracker.New(o.fs, o.clock),
			watch.WithDebounce(o.cfg.WatchDebounce()),
			watch.WithIgnore(o.cfg.WatchIgnore()...),
			watch.WithSkipPaths(o.cfg.JournalPath()),
			watch.WithReporter(status.Multi(o.reporter, jr)),
		)
		if err != nil {
			return err
		}

		return w.Run(ctx)
	})
}
