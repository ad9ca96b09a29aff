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

// Package scheduler models the external cluster scheduler as an injected
// capability with two submission operations, so the submission pipeline can
// be driven against fakes in tests and against SLURM in production.
package scheduler

import "context"

// JobID identifies a job accepted by the external scheduler.
type JobID string

// Resources is the static, fixed resource request attached to every
// submission. The tool does no resource accounting beyond passing these
// through.
type Resources struct {
	// Partition is the cluster partition to submit into.
	Partition string
	// MemoryGB is the per-task memory request in gibibytes.
	MemoryGB int
	// Threads is the per-task CPU request.
	Threads int
	// Walltime is the HH:MM:SS walltime limit.
	Walltime string
	// JobName labels the submission in the queue.
	JobName string
	// LogDir receives scheduler-side job logs.
	LogDir string
	// ExtraArgs are passed through to the submission command verbatim.
	ExtraArgs []string
}

// ArrayRequest submits a manifest of independent command lines as a
// parallel task array.
type ArrayRequest struct {
	// ManifestPath is the leaf-array manifest file.
	ManifestPath string
	Resources    Resources
	// Dependency is the dependency expression gating the whole array,
	// empty for none.
	Dependency string
}

// SingleRequest submits one executable script as a singleton job.
type SingleRequest struct {
	// ScriptPath is the aggregate script file.
	ScriptPath string
	Resources  Resources
	// Dependency is the dependency expression gating the job, empty for
	// none.
	Dependency string
}

// Scheduler is the external job scheduler capability. Both calls block
// until the scheduler acknowledges the submission with a job id or rejects
// it. Implementations never retry.
type Scheduler interface {
	// SubmitArray submits the leaf manifest as a parallel task array.
	SubmitArray(ctx context.Context, req ArrayRequest) (JobID, error)
	// SubmitSingle submits the aggregate script as a singleton job.
	SubmitSingle(ctx context.Context, req SingleRequest) (JobID, error)
}
