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

package log

import (
	"context"
	"fmt"

	"github.com/walteh/syncrc/pkg/status"
)

// 📈 ConsoleReporter prints every tracked file as a console row
type ConsoleReporter struct {
	logger *Logger
	kind   string
}

var _ status.Reporter = (*ConsoleReporter)(nil)

// Reporter returns a status.Reporter that prints rows of the given kind.
func (l *Logger) Reporter(kind string) *ConsoleReporter {
	return &ConsoleReporter{logger: l, kind: kind}
}

func (r *ConsoleReporter) TrackFile(ctx context.Context, path string, info status.FileInfo) {
	detail := ""
	if info.Version > 0 {
		detail = fmt.Sprintf("v%d", info.Version)
	}
	if info.Error != nil {
		detail = "error"
	}
	r.logger.LogFileOperation(ctx, FileOperation{
		Path:    path,
		Kind:    r.kind,
		Detail:  detail,
		Outcome: info.Outcome,
	})
}

func (r *ConsoleReporter) StartOperation(ctx context.Context, total int) {
	r.logger.zlog.Debug().Str("kind", r.kind).Int("total", total).Msg("operation started")
}

func (r *ConsoleReporter) UpdateProgress(ctx context.Context, processed int) {
	r.logger.zlog.Debug().Str("kind", r.kind).Int("processed", processed).Msg("operation progress")
}

func (r *ConsoleReporter) FinishOperation(ctx context.Context) {
	r.logger.zlog.Debug().Str("kind", r.kind).Msg("operation finished")
}
