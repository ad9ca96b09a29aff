// Copyright 2025 CCBR.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package factory

import (
	"github.com/CCBR/spacesavers/pkg/config"
	"github.com/CCBR/spacesavers/pkg/scheduler"
	"github.com/benbjohnson/clock"
)

// Factory constructs the external collaborators of the commands, so tests
// can substitute fakes at the command boundary.
type Factory interface {
	// Scheduler returns the cluster scheduler client.
	Scheduler(cfg *config.SlurmConfig) scheduler.Scheduler
	// Clock returns the clock used for run timing.
	Clock() clock.Clock
}

type factoryImpl struct{}

// NewFactory creates the production factory backed by SLURM and the wall
// clock.
func NewFactory() Factory {
	return &factoryImpl{}
}

func (f *factoryImpl) Scheduler(cfg *config.SlurmConfig) scheduler.Scheduler {
	return scheduler.NewSlurmScheduler(cfg.SwarmPath, cfg.SbatchPath)
}

func (f *factoryImpl) Clock() clock.Clock {
	return clock.New()
}
