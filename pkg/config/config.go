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

package config

import (
	"os"
	"regexp"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/CCBR/spacesavers/pkg/fsutil"
	"github.com/docker/go-units"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/pingcap/errors"
)

// walltimePattern matches SLURM time limits: HH:MM:SS with an optional
// leading day count, e.g. "24:00:00" or "2-12:00:00".
var walltimePattern = regexp.MustCompile(`^(\d+-)?\d{1,3}:\d{2}:\d{2}$`)

// SlurmConfig holds the static resource request and scheduler executable
// paths attached to every submission.
type SlurmConfig struct {
	// Partition is the cluster partition to submit into.
	Partition string `toml:"partition" json:"partition"`
	// Memory is the per-task memory request, accepting human-readable
	// sizes like "16g" or "32GiB".
	Memory string `toml:"memory" json:"memory"`
	// Threads is the per-task CPU request.
	Threads int `toml:"threads" json:"threads"`
	// Walltime is the HH:MM:SS walltime limit, optionally D-HH:MM:SS.
	Walltime string `toml:"walltime" json:"walltime"`
	// SwarmPath overrides the swarm executable looked up on PATH.
	SwarmPath string `toml:"swarm-path" json:"swarm-path"`
	// SbatchPath overrides the sbatch executable looked up on PATH.
	SbatchPath string `toml:"sbatch-path" json:"sbatch-path"`
	// ExtraArgs are appended verbatim to every submission command.
	ExtraArgs string `toml:"extra-args" json:"extra-args"`

	// MemoryGB and ExtraArgList are derived by ValidateAndAdjust.
	MemoryGB     int      `toml:"-" json:"-"`
	ExtraArgList []string `toml:"-" json:"-"`
}

// SubmitConfig is the immutable configuration of one submit invocation,
// assembled once from defaults, an optional profile file and command line
// flags. Components receive it by value and never read process-wide state.
type SubmitConfig struct {
	// InputDir is the root whose immediate child directories become work
	// units.
	InputDir string `toml:"input" json:"input"`
	// OutputDir receives the manifests and, later, the per-unit results.
	OutputDir string `toml:"output" json:"output"`
	// Dependency is an optional upstream job id the whole pipeline waits
	// on.
	Dependency string `toml:"dependency" json:"dependency"`
	// DryRun stops after writing manifests, the scheduler is never
	// contacted.
	DryRun bool `toml:"dry-run" json:"dry-run"`
	// Runner is the per-directory analysis executable referenced by every
	// manifest line. Empty means the current executable.
	Runner string `toml:"runner" json:"runner"`
	// JobName labels the submissions in the queue.
	JobName string `toml:"job-name" json:"job-name"`

	LogLevel string `toml:"log-level" json:"log-level"`
	LogFile  string `toml:"log-file" json:"log-file"`

	Slurm SlurmConfig `toml:"slurm" json:"slurm"`
}

// GetDefaultSubmitConfig returns the default submit configuration.
func GetDefaultSubmitConfig() *SubmitConfig {
	return &SubmitConfig{
		JobName:  "spacesavers",
		LogLevel: "info",
		Slurm: SlurmConfig{
			Partition: "norm",
			Memory:    "16g",
			Threads:   4,
			Walltime:  "24:00:00",
		},
	}
}

// ValidateAndAdjust verifies required fields and normalizes the
// configuration in place: paths are made absolute with "~" expanded, the
// memory request is parsed into whole gibibytes, and extra scheduler
// arguments are split shell-style.
func (c *SubmitConfig) ValidateAndAdjust() error {
	if c.InputDir == "" {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs("empty input directory")
	}
	if c.OutputDir == "" {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs("empty output directory")
	}

	var err error
	if c.InputDir, err = fsutil.Normalize(c.InputDir); err != nil {
		return errors.Trace(err)
	}
	if c.OutputDir, err = fsutil.Normalize(c.OutputDir); err != nil {
		return errors.Trace(err)
	}

	if c.Runner == "" {
		// The submit and ls subcommands live in the same binary, so the
		// running executable is the natural default runner.
		exe, err := os.Executable()
		if err != nil {
			return errors.Trace(err)
		}
		c.Runner = exe
	}
	if c.Runner, err = fsutil.Normalize(c.Runner); err != nil {
		return errors.Trace(err)
	}

	if c.JobName == "" {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs("empty job name")
	}
	if c.Slurm.Partition == "" {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs("empty partition")
	}
	if c.Slurm.Threads <= 0 {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs(
			"threads must be a positive integer")
	}
	if !walltimePattern.MatchString(c.Slurm.Walltime) {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs(
			"walltime must look like HH:MM:SS or D-HH:MM:SS")
	}

	memBytes, err := units.RAMInBytes(c.Slurm.Memory)
	if err != nil {
		return cerror.ErrInvalidSubmitOption.Wrap(err).GenWithStackByArgs(
			"cannot parse memory request " + c.Slurm.Memory)
	}
	c.Slurm.MemoryGB = int(memBytes / units.GiB)
	if c.Slurm.MemoryGB <= 0 {
		return cerror.ErrInvalidSubmitOption.GenWithStackByArgs(
			"memory request must be at least 1 GiB")
	}

	if c.Slurm.ExtraArgs != "" {
		c.Slurm.ExtraArgList, err = shellwords.Parse(c.Slurm.ExtraArgs)
		if err != nil {
			return cerror.ErrInvalidSubmitOption.Wrap(err).GenWithStackByArgs(
				"cannot parse extra scheduler arguments")
		}
	}

	return nil
}
