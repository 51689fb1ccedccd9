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

package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestAppendAndListNewestFirst(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), ".syncrc", "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	run := NewRunID()
	ts := time.Date(2026, 1, 27, 11, 42, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		require.NoError(t, j.Append(ctx, Entry{
			RunID:   run,
			Kind:    KindSync,
			Path:    fmt.Sprintf("file%d.txt", i),
			Hash:    "h",
			Version: i,
			Time:    ts,
		}))
	}

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "file5.txt", all[0].Path, "newest entry should come first")
	assert.Equal(t, "file1.txt", all[4].Path)
	for _, e := range all {
		_, err := uuid.Parse(e.ID)
		assert.NoError(t, err, "generated id should be a uuid")
		assert.Equal(t, run, e.RunID)
		assert.True(t, ts.Equal(e.Time))
	}

	limited, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, []string{"file5.txt", "file4.txt"}, []string{limited[0].Path, limited[1].Path})
}

func TestAppendBatchKeepsOrder(t *testing.T) {
	ctx := testContext(t)
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.Append(ctx,
		Entry{Kind: KindMerge, Path: "a.txt", Source: "/mnt/A", ID: "fixed-id"},
		Entry{Kind: KindMerge, Path: "b.txt", Source: "/mnt/B"},
	))
	require.NoError(t, j.Append(ctx), "empty append is a no-op")

	got, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b.txt", got[0].Path)
	assert.Equal(t, "a.txt", got[1].Path)
	assert.Equal(t, "fixed-id", got[1].ID, "caller ids are kept")
	assert.Equal(t, "/mnt/A", got[1].Source)
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, Entry{Kind: KindEdit, Path: "notes.md", Version: 2}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.Append(ctx, Entry{Kind: KindIndex, Path: "notes.md", Version: 3}))

	got, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindIndex, got[0].Kind, "sequence continues after reopen")
	assert.Equal(t, KindEdit, got[1].Kind)
}

func TestListEmpty(t *testing.T) {
	ctx := testContext(t)
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	got, err := j.List(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
