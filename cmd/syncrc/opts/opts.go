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

package opts

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncrc/pkg/config"
	"github.com/walteh/syncrc/pkg/log"
	"github.com/walteh/syncrc/pkg/operation"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool

	Config *config.Config
	Logger *log.Logger
}

// Load reads the config file named by the --config flag.
func (o *RootOpts) Load(ctx context.Context) error {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	o.Config = cfg
	return nil
}

// Operator builds an operator that prints rows of the given kind.
func (o *RootOpts) Operator(kind string) (operation.Operator, error) {
	op, err := operation.New(operation.Options{
		Config:   o.Config,
		Reporter: o.Logger.Reporter(kind),
	})
	if err != nil {
		return nil, errors.Errorf("creating operator: %w", err)
	}
	return op, nil
}
