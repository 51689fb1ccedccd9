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

// Package drift compares two metadata snapshots. It performs no I/O.
package drift

import (
	"github.com/walteh/syncrc/pkg/metadata"
)

// Reason says why a path is out of sync.
type Reason int

const (
	ReasonMissing  Reason = iota + 1 // not tracked at the destination
	ReasonModified                   // tracked, hash differs
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonModified:
		return "modified"
	default:
		return "unknown"
	}
}

// 📊 Drift describes one out-of-sync path
type Drift struct {
	Path          string
	Reason        Reason
	SourceVersion int
	DestVersion   int // 0 when missing
}

// 🔍 Detect lists every path of source that destination lacks or holds with a
// different hash, in source order. A nil store counts as empty.
func Detect(source, dest *metadata.Store) []Drift {
	out := []Drift{}
	if source == nil {
		return out
	}
	if dest == nil {
		dest = metadata.New()
	}
	for _, p := range source.Paths() {
		src, _ := source.Get(p)
		dst, ok := dest.Get(p)
		switch {
		case !ok:
			out = append(out, Drift{Path: p, Reason: ReasonMissing, SourceVersion: src.Version})
		case dst.Hash != src.Hash:
			out = append(out, Drift{Path: p, Reason: ReasonModified, SourceVersion: src.Version, DestVersion: dst.Version})
		}
	}
	return out
}

// 🔍 OutOfSync returns the paths Detect reports. Never nil.
func OutOfSync(source, dest *metadata.Store) []string {
	drifts := Detect(source, dest)
	out := make([]string, 0, len(drifts))
	for _, d := range drifts {
		out = append(out, d.Path)
	}
	return out
}
