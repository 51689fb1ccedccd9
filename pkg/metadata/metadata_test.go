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

package metadata

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	store, err := Load(afero.NewMemMapFs(), "/local/metadata.json")
	require.NoError(t, err, "missing document is not an error")
	assert.Equal(t, 0, store.Len(), "store should be empty")
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not_json", content: "{this is not json"},
		{name: "empty_file", content: ""},
		{name: "array_document", content: `[{"version": 1}]`},
		{name: "null_document", content: `null`},
		{name: "zero_version", content: `{"a.txt": {"version": 0, "hash": "h", "last_updated": "2025-01-27T11:42:00Z"}}`},
		{name: "missing_hash", content: `{"a.txt": {"version": 1, "last_updated": "2025-01-27T11:42:00Z"}}`},
		{name: "bad_timestamp", content: `{"a.txt": {"version": 1, "hash": "h", "last_updated": "yesterday"}}`},
		{name: "string_version", content: `{"a.txt": {"version": "1", "hash": "h", "last_updated": "2025-01-27T11:42:00Z"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(mem, "/metadata.json", []byte(tt.content), 0644))

			store, err := Load(mem, "/metadata.json")
			require.Error(t, err, "malformed document must fail")
			assert.Nil(t, store, "no fallback store on malformed input")

			var malformed *MalformedError
			require.True(t, errors.As(err, &malformed), "error should be a MalformedError")
			assert.Equal(t, "/metadata.json", malformed.Path)
		})
	}
}

func TestSaveLoadRoundTripKeepsOrder(t *testing.T) {
	mem := afero.NewMemMapFs()
	ts := time.Date(2026, 1, 27, 11, 42, 0, 123456789, time.UTC)

	store := New()
	store.Set("zeta.txt", FileRecord{Version: 3, Hash: "h3", LastUpdated: ts})
	store.Set("alpha/beta.txt", FileRecord{Version: 1, Hash: "h1", LastUpdated: ts})
	store.Set("mid.txt", FileRecord{Version: 2, Hash: "h2", LastUpdated: ts})

	require.NoError(t, Save(mem, store, "/local/metadata.json"))

	exists, err := afero.Exists(mem, "/local/metadata.json"+TempSuffix)
	require.NoError(t, err)
	assert.False(t, exists, "temp file should be renamed away")

	loaded, err := Load(mem, "/local/metadata.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta.txt", "alpha/beta.txt", "mid.txt"}, loaded.Paths(), "insertion order should survive a round trip")

	rec, ok := loaded.Get("alpha/beta.txt")
	require.True(t, ok)
	assert.Equal(t, "alpha/beta.txt", rec.Path)
	assert.Equal(t, 1, rec.Version)
	assert.Equal(t, "h1", rec.Hash)
	assert.True(t, ts.Equal(rec.LastUpdated), "timestamp should round trip with nanoseconds")
}

func TestSaveFormat(t *testing.T) {
	mem := afero.NewMemMapFs()
	store := New()
	store.Set("a.txt", FileRecord{Version: 1, Hash: "abcd1234", LastUpdated: time.Date(2025, 1, 27, 11, 42, 0, 0, time.UTC)})

	require.NoError(t, Save(mem, store, "/metadata.json"))

	data, err := afero.ReadFile(mem, "/metadata.json")
	require.NoError(t, err)
	want := `{
    "a.txt": {
        "version": 1,
        "hash": "abcd1234",
        "last_updated": "2025-01-27T11:42:00Z"
    }
}`
	assert.Equal(t, want, string(data))
}

func TestLoadZonelessTimestamp(t *testing.T) {
	mem := afero.NewMemMapFs()
	doc := `{"file1.txt": {"hash": "abcd1234", "version": 1, "last_updated": "2025-01-27T11:42:00.654321"}}`
	require.NoError(t, afero.WriteFile(mem, "/metadata.json", []byte(doc), 0644))

	store, err := Load(mem, "/metadata.json")
	require.NoError(t, err)

	rec, ok := store.Get("file1.txt")
	require.True(t, ok)
	want := time.Date(2025, 1, 27, 11, 42, 0, 654321000, time.Local)
	assert.True(t, want.Equal(rec.LastUpdated), "zone-less stamp should be read as local time")
}

func TestSetReplaceKeepsPosition(t *testing.T) {
	store := New()
	store.Set("a", FileRecord{Version: 1, Hash: "1"})
	store.Set("b", FileRecord{Version: 1, Hash: "1"})
	store.Set("a", FileRecord{Version: 2, Hash: "2"})

	assert.Equal(t, []string{"a", "b"}, store.Paths())
	rec, _ := store.Get("a")
	assert.Equal(t, 2, rec.Version)
}

func TestDuplicateKeysLastWins(t *testing.T) {
	doc := `{
		"a": {"version": 1, "hash": "old", "last_updated": "2025-01-27T11:42:00Z"},
		"b": {"version": 1, "hash": "b", "last_updated": "2025-01-27T11:42:00Z"},
		"a": {"version": 2, "hash": "new", "last_updated": "2025-01-27T11:42:00Z"}
	}`
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/m.json", []byte(doc), 0644))

	store, err := Load(mem, "/m.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, store.Paths())
	rec, _ := store.Get("a")
	assert.Equal(t, "new", rec.Hash)
}

func TestCloneIsIndependent(t *testing.T) {
	store := New()
	store.Set("a", FileRecord{Version: 1, Hash: "1"})

	c := store.Clone()
	c.Set("a", FileRecord{Version: 9, Hash: "9"})
	c.Set("b", FileRecord{Version: 1, Hash: "b"})

	rec, _ := store.Get("a")
	assert.Equal(t, 1, rec.Version, "original must not change")
	assert.False(t, store.Has("b"))
}
