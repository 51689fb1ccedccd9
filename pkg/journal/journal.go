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

// Package journal is an append-only history of every file written by a run.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.etcd.io/bbolt"
)

// BucketName holds every entry, keyed by sequence.
const BucketName = "entries"

// Kind names the operation that produced an entry.
type Kind string

const (
	KindSync  Kind = "sync"
	KindMerge Kind = "merge"
	KindEdit  Kind = "edit"
	KindIndex Kind = "index"
)

// 📜 Entry is one journaled file write
type Entry struct {
	ID      string    `json:"id"`
	RunID   string    `json:"run_id"`
	Kind    Kind      `json:"kind"`
	Path    string    `json:"path"`
	Hash    string    `json:"hash,omitempty"`
	Version int       `json:"version,omitempty"`
	Source  string    `json:"source,omitempty"`
	Time    time.Time `json:"time"`
}

// 📜 Journal wraps the bbolt database
type Journal struct {
	conn *bbolt.DB
}

// NewRunID returns a fresh id to group the entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// 📂 Open opens or creates the journal at path. A second process holding the
// file makes Open fail after one second.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("creating journal directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Errorf("opening journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Errorf("creating journal bucket: %w", err)
	}

	return &Journal{conn: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if err := j.conn.Close(); err != nil {
		return errors.Errorf("closing journal: %w", err)
	}
	return nil
}

// ✍️ Append writes entries in one transaction. Missing ids are generated.
func (j *Journal) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	err := j.conn.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		for i := range entries {
			e := &entries[i]
			if e.ID == "" {
				e.ID = uuid.NewString()
			}

			seq, err := b.NextSequence()
			if err != nil {
				return errors.Errorf("allocating sequence: %w", err)
			}

			data, err := json.Marshal(e)
			if err != nil {
				return errors.Errorf("encoding entry %s: %w", e.Path, err)
			}

			if err := b.Put(sequenceKey(seq), data); err != nil {
				return errors.Errorf("storing entry %s: %w", e.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("appending to journal: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("count", len(entries)).Msg("journaled entries")
	return nil
}

// 📖 List returns up to limit entries, newest first. A limit <= 0 returns all.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	out := []Entry{}

	err := j.conn.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketName)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return errors.Errorf("decoding entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("listing journal: %w", err)
	}

	return out, nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
