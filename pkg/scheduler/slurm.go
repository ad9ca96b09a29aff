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

package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/pingcap/failpoint"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// SlurmScheduler submits work to SLURM by shelling out: task arrays go
// through swarm, singleton jobs through sbatch.
type SlurmScheduler struct {
	// SwarmPath is the swarm executable, "swarm" by default.
	SwarmPath string
	// SbatchPath is the sbatch executable, "sbatch" by default.
	SbatchPath string
}

var _ Scheduler = &SlurmScheduler{}

// NewSlurmScheduler creates a SLURM client using swarm and sbatch from PATH
// unless explicit executable paths are given.
func NewSlurmScheduler(swarmPath, sbatchPath string) *SlurmScheduler {
	if swarmPath == "" {
		swarmPath = "swarm"
	}
	if sbatchPath == "" {
		sbatchPath = "sbatch"
	}
	return &SlurmScheduler{SwarmPath: swarmPath, SbatchPath: sbatchPath}
}

// SubmitArray submits the leaf manifest through swarm. Each manifest line
// becomes one array task. swarm prints the assigned job id on stdout.
func (s *SlurmScheduler) SubmitArray(ctx context.Context, req ArrayRequest) (JobID, error) {
	args := []string{
		"-f", req.ManifestPath,
		"-g", strconv.Itoa(req.Resources.MemoryGB),
		"-t", strconv.Itoa(req.Resources.Threads),
		"--time", req.Resources.Walltime,
		"--partition", req.Resources.Partition,
		"--logdir", req.Resources.LogDir,
		"--job-name", req.Resources.JobName,
	}
	if req.Dependency != "" {
		args = append(args, "--dependency", req.Dependency)
	}
	args = append(args, req.Resources.ExtraArgs...)

	return s.submit(ctx, "leaf array", s.SwarmPath, args)
}

// SubmitSingle submits the aggregate script through sbatch. sbatch reports
// "Submitted batch job <id>" on stdout.
func (s *SlurmScheduler) SubmitSingle(ctx context.Context, req SingleRequest) (JobID, error) {
	args := []string{
		"--partition=" + req.Resources.Partition,
		fmt.Sprintf("--mem=%dg", req.Resources.MemoryGB),
		"--cpus-per-task=" + strconv.Itoa(req.Resources.Threads),
		"--time=" + req.Resources.Walltime,
		"--job-name=" + req.Resources.JobName,
		"--output=" + req.Resources.LogDir + "/aggregate.%j.log",
	}
	if req.Dependency != "" {
		args = append(args, "--dependency="+req.Dependency)
	}
	args = append(args, req.Resources.ExtraArgs...)
	args = append(args, req.ScriptPath)

	return s.submit(ctx, "aggregate", s.SbatchPath, args)
}

func (s *SlurmScheduler) submit(ctx context.Context, stage, bin string, args []string) (JobID, error) {
	log.Info("submitting to scheduler",
		zap.String("stage", stage),
		zap.String("command", bin),
		zap.Strings("args", args))

	failpoint.Inject("SchedulerSubmitFailed", func() {
		failpoint.Return("", cerror.ErrSchedulerSubmitFailed.GenWithStackByArgs(stage, "failpoint injected"))
	})

	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		reason := err.Error()
		if exitErr, ok := errors.Cause(err).(*exec.ExitError); ok {
			reason = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", cerror.ErrSchedulerSubmitFailed.Wrap(err).GenWithStackByArgs(stage, reason)
	}

	id, err := ParseJobID(string(out))
	if err != nil {
		return "", err
	}
	log.Info("scheduler accepted submission",
		zap.String("stage", stage), zap.String("jobID", string(id)))
	return id, nil
}

// ParseJobID extracts the job id from submission output. swarm prints the
// bare id, sbatch prints "Submitted batch job <id>"; in both cases the id is
// the last all-digit token.
func ParseJobID(output string) (JobID, error) {
	fields := strings.Fields(output)
	for i := len(fields) - 1; i >= 0; i-- {
		if _, err := strconv.ParseUint(fields[i], 10, 64); err == nil {
			return JobID(fields[i]), nil
		}
	}
	return "", cerror.ErrSchedulerOutputParse.GenWithStackByArgs(strings.TrimSpace(output))
}
