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

package lock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "local")

	l, err := Acquire(dir)
	require.NoError(t, err, "first acquire should succeed")
	assert.FileExists(t, filepath.Join(dir, FileName))
	assert.Equal(t, filepath.Join(dir, FileName), l.Path())

	require.NoError(t, l.Release())
	assert.NoFileExists(t, filepath.Join(dir, FileName), "release should remove the lock file")

	require.NoError(t, l.Release(), "second release is a no-op")
}

func TestAcquireWhileHeld(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Release() })

	second, err := Acquire(dir)
	require.Error(t, err, "second writer must be refused")
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, ErrLocked), "error should be ErrLocked, got %v", err)

	require.NoError(t, first.Release())

	third, err := Acquire(dir)
	require.NoError(t, err, "lock should be free after release")
	require.NoError(t, third.Release())
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
