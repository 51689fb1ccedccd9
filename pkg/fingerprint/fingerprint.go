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

// Package fingerprint computes content digests used for change detection.
//
// The digest is MD5 over the raw bytes. It only answers "did this file
// change", so collision resistance is not a requirement.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ChunkSize is the read size used when hashing. Memory use stays at one chunk
// regardless of file size.
const ChunkSize = 8192

// 🔍 File returns the content digest of the file at path.
func File(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", errors.Errorf("hashing %s: %w", path, err)
	}
	return sum, nil
}

// 🔍 Reader returns the content digest of everything left in r.
func Reader(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return "", errors.Errorf("reading content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// onlyReader hides WriterTo/ReaderFrom so CopyBuffer really uses buf.
type onlyReader struct {
	io.Reader
}
