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
	"github.com/walteh/syncrc/pkg/mirror"
	"github.com/walteh/syncrc/pkg/status"
)

// 📊 SyncResult is what a sync did
type SyncResult struct {
	RunID       string
	Transferred []string // new and updated paths, in source order
	Unchanged   []string
	Failed      []string
	Destination *metadata.Store
}

// 🔄 Sync copies drifted files into the destination and saves its document.
// After a failure the entries completed before it are still saved.
func (o *operator) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{RunID: journal.NewRunID()}

	err := withLock(ctx, o.cfg.DestinationRoot(), func() error {
		src, dst, err := o.loadPair(ctx)
		if err != nil {
			return err
		}

		mgr := status.New(nil)
		engine := mirror.New(o.fs,
			mirror.WithClock(o.clock),
			mirror.WithReporter(status.Multi(mgr, o.reporter)),
		)

		out, syncErr := engine.Sync(ctx, o.cfg.SourceRoot(), o.cfg.DestinationRoot(), src, dst)
		result.Destination = out

		for _, info := range mgr.ListFiles() {
			switch info.Outcome {
			case status.OutcomeNew, status.OutcomeModified:
				result.Transferred = append(result.Transferred, info.Path)
			case status.OutcomeUnchanged:
				result.Unchanged = append(result.Unchanged, info.Path)
			case status.OutcomeFailed:
				result.Failed = append(result.Failed, info.Path)
			}
		}

		if len(result.Transferred) > 0 {
			if err := metadata.Save(o.fs, out, o.cfg.DestinationMetadataPath()); err != nil {
				if syncErr != nil {
					return errors.Join(syncErr, err)
				}
				return err
			}
		}

		o.journal(ctx, syncEntries(result, out, o.cfg.SourceRoot())...)
		return syncErr
	})

	zerolog.Ctx(ctx).Info().
		Str("run_id", result.RunID).
		Int("transferred", len(result.Transferred)).
		Int("unchanged", len(result.Unchanged)).
		Msg("sync finished")

	return result, err
}

func syncEntries(result *SyncResult, store *metadata.Store, source string) []journal.Entry {
	entries := make([]journal.Entry, 0, len(result.Transferred))
	for _, p := range result.Transferred {
		rec, _ := store.Get(p)
		entries = append(entries, journal.Entry{
			RunID:   result.RunID,
			Kind:    journal.KindSync,
			Path:    p,
			Hash:    rec.Hash,
			Version: rec.Version,
			Source:  source,
			Time:    rec.LastUpdated,
		})
	}
	return entries
}
