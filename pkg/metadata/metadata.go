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

// Package metadata holds the per-tree document that maps relative file paths
// to their version records.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 📄 FileRecord is the version record of a single tracked file
type FileRecord struct {
	// Path is the store key, relative to the document's directory and slash separated.
	Path        string    `json:"-"`
	Version     int       `json:"version"`
	Hash        string    `json:"hash"`
	LastUpdated time.Time `json:"last_updated"`
}

// 📚 Store maps relative paths to records. Iteration follows insertion order;
// replacing an existing key keeps its position.
type Store struct {
	order   []string
	records map[string]FileRecord
}

// 🏭 New returns an empty store
func New() *Store {
	return &Store{records: make(map[string]FileRecord)}
}

// Get returns the record for path.
func (s *Store) Get(path string) (FileRecord, bool) {
	rec, ok := s.records[path]
	return rec, ok
}

// Has reports whether path is tracked.
func (s *Store) Has(path string) bool {
	_, ok := s.records[path]
	return ok
}

// Set inserts or replaces the record for path.
func (s *Store) Set(path string, rec FileRecord) {
	if s.records == nil {
		s.records = make(map[string]FileRecord)
	}
	if _, ok := s.records[path]; !ok {
		s.order = append(s.order, path)
	}
	rec.Path = path
	s.records[path] = rec
}

// Paths returns the tracked paths in iteration order.
func (s *Store) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of tracked paths.
func (s *Store) Len() int {
	return len(s.order)
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	c := New()
	for _, p := range s.order {
		c.Set(p, s.records[p])
	}
	return c
}

// timestampLayouts are tried in order when reading last_updated. The second
// covers zone-less ISO-8601 stamps, read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// recordJSON is the on-disk shape of a FileRecord value.
type recordJSON struct {
	Version     int    `json:"version"`
	Hash        string `json:"hash"`
	LastUpdated string `json:"last_updated"`
}

// MarshalJSON writes the records as one object, keys in store order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p)
		if err != nil {
			return nil, errors.Errorf("encoding key %q: %w", p, err)
		}
		rec := s.records[p]
		val, err := json.Marshal(recordJSON{
			Version:     rec.Version,
			Hash:        rec.Hash,
			LastUpdated: rec.LastUpdated.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, errors.Errorf("encoding record %q: %w", p, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document object, keeping the document's key order.
func (s *Store) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Errorf("reading document start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("document must be an object, got %v", tok)
	}

	fresh := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("unexpected key token %v", tok)
		}

		var raw recordJSON
		if err := dec.Decode(&raw); err != nil {
			return errors.Errorf("decoding record %q: %w", key, err)
		}
		rec, err := raw.toRecord(key)
		if err != nil {
			return err
		}
		fresh.Set(key, rec)
	}

	if _, err := dec.Token(); err != nil {
		return errors.Errorf("reading document end: %w", err)
	}

	*s = *fresh
	return nil
}

func (r recordJSON) toRecord(key string) (FileRecord, error) {
	if r.Version < 1 {
		return FileRecord{}, errors.Errorf("record %q: version must be >= 1, got %d", key, r.Version)
	}
	if r.Hash == "" {
		return FileRecord{}, errors.Errorf("record %q: hash is empty", key)
	}
	ts, err := parseTimestamp(r.LastUpdated)
	if err != nil {
		return FileRecord{}, errors.Errorf("record %q: %w", key, err)
	}
	return FileRecord{Path: key, Version: r.Version, Hash: r.Hash, LastUpdated: ts}, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.Errorf("unparseable last_updated %q", v)
}

// ⚠️ MalformedError reports a metadata document that exists but cannot be parsed.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed metadata document %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
