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
	"github.com/walteh/syncrc/pkg/merge"
)

func (o *operator) merger() *merge.Merger {
	return merge.New(o.fs,
		merge.WithIgnore(o.cfg.MergeIgnore()...),
		merge.WithReporter(o.reporter),
	)
}

// 🔀 Merge unions the configured private folders into the shared folder
func (o *operator) Merge(ctx context.Context) (*merge.Report, error) {
	shared := o.cfg.MergeShared()
	if shared == "" {
		return nil, errors.Errorf("merge is not configured")
	}

	runID := journal.NewRunID()
	var report *merge.Report

	err := withLock(ctx, shared, func() error {
		var mergeErr error
		report, mergeErr = o.merger().MergeInto(ctx, o.cfg.MergeSources(), shared)

		now := o.clock.Now()
		entries := make([]journal.Entry, 0, len(report.Copied))
		for _, c := range report.Copied {
			entries = append(entries, journal.Entry{
				RunID:  runID,
				Kind:   journal.KindMerge,
				Path:   c.Name,
				Source: c.Source,
				Time:   now,
			})
		}
		o.journal(ctx, entries...)

		return mergeErr
	})

	if report != nil {
		zerolog.Ctx(ctx).Info().
			Str("run_id", runID).
			Int("copied", len(report.Copied)).
			Int("skipped", len(report.Skipped)).
			Strs("missing_sources", report.MissingSources).
			Msg("merge finished")
	}

	return report, err
}

// 📋 Shared lists the files of the shared folder
func (o *operator) Shared(ctx context.Context) ([]merge.Entry, error) {
	shared := o.cfg.MergeShared()
	if shared == "" {
		return nil, errors.Errorf("merge is not configured")
	}
	return o.merger().ListShared(ctx, shared)
}
