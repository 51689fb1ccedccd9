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
	"encoding/json"
	iofs "io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// TempSuffix is appended to the document path while a save is in flight.
const TempSuffix = ".tmp"

// 📥 Load reads the document at path. A missing document is an empty store;
// a document that exists but does not parse is a *MalformedError.
func Load(fs afero.Fs, path string) (*Store, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return New(), nil
		}
		return nil, errors.Errorf("reading metadata %s: %w", path, err)
	}

	store := New()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, errors.WithStack(&MalformedError{Path: path, Err: err})
	}
	return store, nil
}

// 💾 Save overwrites the document at path with the full store. The bytes go
// to a temp file first and are renamed into place.
func Save(fs afero.Fs, store *Store, path string) error {
	data, err := json.MarshalIndent(store, "", "    ")
	if err != nil {
		return errors.Errorf("encoding metadata: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating metadata directory: %w", err)
	}

	tempPath := path + TempSuffix
	if err := afero.WriteFile(fs, tempPath, data, 0644); err != nil {
		return errors.Errorf("writing temp metadata: %w", err)
	}

	if err := fs.Rename(tempPath, path); err != nil {
		fs.Remove(tempPath)
		return errors.Errorf("renaming temp metadata: %w", err)
	}

	return nil
}
