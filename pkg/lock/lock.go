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

// Package lock serializes writers of a tree with an advisory file lock.
package lock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gitlab.com/tozd/go/errors"
)

// FileName is the lock file created at the root of a locked tree.
const FileName = ".syncrc.lock"

// ErrLocked is returned when another process holds the tree.
var ErrLocked = errors.Base("tree is locked by another process")

// 🔒 Lock is an exclusive hold on one tree
type Lock struct {
	flock *flock.Flock
}

// 🔒 Acquire takes the lock of dir without waiting. dir is created if needed.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Errorf("creating %s: %w", dir, err)
	}

	fl := flock.New(filepath.Join(dir, FileName))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Errorf("locking %s: %w", dir, err)
	}
	if !locked {
		return nil, errors.WithDetails(ErrLocked, "path", fl.Path())
	}

	return &Lock{flock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.flock.Path()
}

// 🔓 Release unlocks and removes the lock file. Releasing a lock that is not
// held is a no-op.
func (l *Lock) Release() error {
	if l == nil || !l.flock.Locked() {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		return errors.Errorf("unlocking %s: %w", l.flock.Path(), err)
	}

	if err := os.Remove(l.flock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("removing lock file: %w", err)
	}
	return nil
}
