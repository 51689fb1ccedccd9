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

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/syncrc/pkg/config"
	"github.com/walteh/syncrc/pkg/drift"
	"github.com/walteh/syncrc/pkg/journal"
	"github.com/walteh/syncrc/pkg/lock"
	"github.com/walteh/syncrc/pkg/merge"
	"github.com/walteh/syncrc/pkg/metadata"
	"github.com/walteh/syncrc/pkg/status"
)

// 🎯 Operator defines the main interface for syncrc operations
type Operator interface {
	// Merge unions the private folders into the shared folder
	Merge(ctx context.Context) (*merge.Report, error)
	// Index records the manifest files of the source tree in its metadata
	Index(ctx context.Context) (*IndexResult, error)
	// Status lists what a sync would transfer, without writing anything
	Status(ctx context.Context) ([]drift.Drift, error)
	// Sync copies drifted files into the destination and saves its metadata
	Sync(ctx context.Context) (*SyncResult, error)
	// Track records local edits of the given destination files
	Track(ctx context.Context, files ...string) ([]metadata.FileRecord, error)
	// Watch records destination edits until ctx is cancelled
	Watch(ctx context.Context) error
	// Shared lists the files of the shared folder
	Shared(ctx context.Context) ([]merge.Entry, error)
	// History returns journal entries, newest first
	History(ctx context.Context, limit int) ([]journal.Entry, error)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config is the loaded syncrc configuration
	Config *config.Config
	// Fs is the filesystem holding both trees; defaults to the OS filesystem.
	// Locks, the journal and the watcher always use the disk, so only an
	// *afero.OsFs is accepted.
	Fs afero.Fs
	// Clock stamps last_updated; defaults to the real clock
	Clock clockwork.Clock
	// Reporter receives every per-file outcome; defaults to discarding
	Reporter status.Reporter
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if _, ok := opts.Fs.(*afero.OsFs); !ok {
		return nil, errors.Errorf("filesystem %s is not supported: locks, journal and watcher need the OS filesystem", opts.Fs.Name())
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Reporter == nil {
		opts.Reporter = status.NopReporter{}
	}
	return &operator{
		cfg:      opts.Config,
		fs:       opts.Fs,
		clock:    opts.Clock,
		reporter: opts.Reporter,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	cfg      *config.Config
	fs       afero.Fs
	clock    clockwork.Clock
	reporter status.Reporter
}

// withLock runs fn while holding the lock of dir.
func withLock(ctx context.Context, dir string, fn func() error) (err error) {
	l, err := lock.Acquire(dir)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("lock", l.Path()).Msg("lock acquired")

	defer func() {
		if rerr := l.Release(); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			zerolog.Ctx(ctx).Warn().Err(rerr).Msg("releasing lock")
		}
	}()

	return fn()
}

// loadPair loads the source and destination documents concurrently.
func (o *operator) loadPair(ctx context.Context) (*metadata.Store, *metadata.Store, error) {
	var src, dst *metadata.Store

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := metadata.Load(o.fs, o.cfg.SourceMetadataPath())
		if err != nil {
			return errors.Errorf("loading source metadata: %w", err)
		}
		src = s
		return nil
	})
	g.Go(func() error {
		s, err := metadata.Load(o.fs, o.cfg.DestinationMetadataPath())
		if err != nil {
			return errors.Errorf("loading destination metadata: %w", err)
		}
		dst = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// 🔍 Status lists the drift between the two documents
func (o *operator) Status(ctx context.Context) ([]drift.Drift, error) {
	src, dst, err := o.loadPair(ctx)
	if err != nil {
		return nil, err
	}

	drifts := drift.Detect(src, dst)
	zerolog.Ctx(ctx).Debug().
		Int("tracked", src.Len()).
		Int("out_of_sync", len(drifts)).
		Msg("checked status")
	return drifts, nil
}
