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

// Package fileutil copies whole files through a sibling temp file.
package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// TempPrefix marks in-flight copies. Watchers and listings skip these names.
const TempPrefix = ".syncrc-"

// IsTemp reports whether base is the name of an in-flight copy.
func IsTemp(base string) bool {
	return strings.HasPrefix(base, TempPrefix) && strings.HasSuffix(base, ".tmp")
}

// TempPath returns the sibling temp path used while writing dst. The name is
// derived from dst but has a fixed length, so any legal dst name fits.
func TempPath(dst string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.Base(dst)))
	return filepath.Join(filepath.Dir(dst), TempPrefix+id.String()+".tmp")
}

// CopyOptions tunes Copy.
type CopyOptions struct {
	// PreserveModTime copies the source modification time onto dst.
	PreserveModTime bool
}

// 📋 Copy replaces dst with the full contents and permissions of src,
// creating parent directories. The bytes land in a sibling temp file that is
// renamed over dst, so a failed copy never leaves a half-written dst.
func Copy(fs afero.Fs, src, dst string, opts CopyOptions) (int64, error) {
	srcFile, err := fs.Open(src)
	if err != nil {
		return 0, errors.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, errors.Errorf("source %s is not a regular file", src)
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, errors.Errorf("making parent: %w", err)
	}

	tmp := TempPath(dst)
	n, err := writeTemp(fs, tmp, srcFile, info.Mode().Perm())
	if err != nil {
		fs.Remove(tmp)
		return 0, err
	}

	if err := fs.Chmod(tmp, info.Mode().Perm()); err != nil {
		fs.Remove(tmp)
		return 0, errors.Errorf("setting file mode: %w", err)
	}

	// Modification time goes last so no other write resets it.
	if opts.PreserveModTime {
		if err := fs.Chtimes(tmp, time.Now(), info.ModTime()); err != nil {
			fs.Remove(tmp)
			return 0, errors.Errorf("setting file modtime: %w", err)
		}
	}

	if err := fs.Rename(tmp, dst); err != nil {
		fs.Remove(tmp)
		return 0, errors.Errorf("renaming into place: %w", err)
	}

	return n, nil
}

func writeTemp(fs afero.Fs, tmp string, src io.Reader, perm os.FileMode) (int64, error) {
	f, err := fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, errors.Errorf("creating temp file: %w", err)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		return 0, errors.Errorf("copying: %w", err)
	}

	if err := f.Close(); err != nil {
		return 0, errors.Errorf("closing temp file: %w", err)
	}
	return n, nil
}
