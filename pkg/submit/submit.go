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

// Package submit drives the whole pipeline: discover work units, build the
// job graph, write the manifests, and either stop there (dry-run) or submit
// the leaf array and the dependent aggregate job to the scheduler.
package submit

import (
	"context"
	"time"

	"github.com/CCBR/spacesavers/pkg/config"
	"github.com/CCBR/spacesavers/pkg/jobgraph"
	"github.com/CCBR/spacesavers/pkg/manifest"
	"github.com/CCBR/spacesavers/pkg/scheduler"
	"github.com/CCBR/spacesavers/pkg/workunit"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Receipt summarizes one run for the operator. Job ids are empty under
// dry-run or when the corresponding submission was skipped.
type Receipt struct {
	RunID           string `json:"run_id"`
	WorkUnits       int    `json:"work_units"`
	LeafManifest    string `json:"leaf_manifest"`
	AggregateScript string `json:"aggregate_script,omitempty"`
	LeafJobID       string `json:"leaf_job_id,omitempty"`
	AggregateJobID  string `json:"aggregate_job_id,omitempty"`
	DryRun          bool   `json:"dry_run"`
	Elapsed         string `json:"elapsed"`
}

// Submitter runs the submission pipeline for one immutable configuration.
type Submitter struct {
	cfg   *config.SubmitConfig
	sched scheduler.Scheduler
	clock clock.Clock
}

// NewSubmitter creates a Submitter. cfg must already be validated. clk may
// be nil, in which case the wall clock is used.
func NewSubmitter(cfg *config.SubmitConfig, sched scheduler.Scheduler, clk clock.Clock) *Submitter {
	if clk == nil {
		clk = clock.New()
	}
	return &Submitter{cfg: cfg, sched: sched, clock: clk}
}

// Run executes the pipeline. Under dry-run the scheduler is never touched
// and the manifests on disk are the complete output. In submit mode the
// leaf array is submitted first, then the aggregate job with a dependency
// on the array; any submission failure is fatal and already-accepted jobs
// are left queued for the operator to cancel.
func (s *Submitter) Run(ctx context.Context) (*Receipt, error) {
	start := s.clock.Now()
	receipt := &Receipt{
		RunID:  uuid.NewString(),
		DryRun: s.cfg.DryRun,
	}
	log.Info("starting submission pipeline",
		zap.String("runID", receipt.RunID),
		zap.String("input", s.cfg.InputDir),
		zap.String("output", s.cfg.OutputDir),
		zap.Bool("dryRun", s.cfg.DryRun))

	units, err := workunit.Discover(s.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	receipt.WorkUnits = len(units)

	graph := jobgraph.Build(units, s.cfg.Runner, s.cfg.OutputDir)
	m, err := manifest.Write(graph, s.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	receipt.LeafManifest = m.LeafPath
	receipt.AggregateScript = m.AggregatePath

	if s.cfg.DryRun {
		log.Info("dry-run requested, skipping scheduler submission",
			zap.String("leafManifest", m.LeafPath),
			zap.String("aggregateScript", m.AggregatePath))
		receipt.Elapsed = s.elapsed(start)
		return receipt, nil
	}

	if graph.Empty() {
		log.Warn("input root has no child directories, nothing to submit",
			zap.String("input", s.cfg.InputDir))
		receipt.Elapsed = s.elapsed(start)
		return receipt, nil
	}

	if err := s.submitGraph(ctx, m, receipt); err != nil {
		return nil, err
	}
	receipt.Elapsed = s.elapsed(start)
	return receipt, nil
}

func (s *Submitter) submitGraph(ctx context.Context, m *manifest.Manifest, receipt *Receipt) error {
	chain := scheduler.NewChain(scheduler.JobID(s.cfg.Dependency))
	resources := scheduler.Resources{
		Partition: s.cfg.Slurm.Partition,
		MemoryGB:  s.cfg.Slurm.MemoryGB,
		Threads:   s.cfg.Slurm.Threads,
		Walltime:  s.cfg.Slurm.Walltime,
		JobName:   s.cfg.JobName,
		LogDir:    s.cfg.OutputDir,
		ExtraArgs: s.cfg.Slurm.ExtraArgList,
	}

	aggregateDependency := chain.LeafDependency()
	if m.LeafCount > 0 {
		leafID, err := s.sched.SubmitArray(ctx, scheduler.ArrayRequest{
			ManifestPath: m.LeafPath,
			Resources:    resources,
			Dependency:   chain.LeafDependency(),
		})
		if err != nil {
			return err
		}
		chain.BindLeafArray(leafID)
		receipt.LeafJobID = string(leafID)

		aggregateDependency, err = chain.AggregateDependency()
		if err != nil {
			return err
		}
	} else {
		// A single work unit produces no leaf array; the aggregate script
		// carries the whole pipeline and waits on the external upstream
		// job alone.
		log.Info("leaf manifest is empty, submitting the aggregate script only")
	}

	aggregateID, err := s.sched.SubmitSingle(ctx, scheduler.SingleRequest{
		ScriptPath: m.AggregatePath,
		Resources:  resources,
		Dependency: aggregateDependency,
	})
	if err != nil {
		if receipt.LeafJobID != "" {
			return errors.Annotatef(err,
				"leaf array job %s is already queued and must be cancelled manually",
				receipt.LeafJobID)
		}
		return err
	}
	receipt.AggregateJobID = string(aggregateID)

	log.Info("submission complete",
		zap.String("leafJobID", receipt.LeafJobID),
		zap.String("aggregateJobID", receipt.AggregateJobID))
	return nil
}

func (s *Submitter) elapsed(start time.Time) string {
	return s.clock.Now().Sub(start).Round(time.Millisecond).String()
}
