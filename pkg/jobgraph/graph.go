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

// Package jobgraph converts a discovered work unit set into the two-tier
// job description submitted to the cluster: an array of independent leaf
// tasks plus a single aggregate task that runs after every leaf task
// reaches a terminal state.
package jobgraph

import (
	"fmt"
	"path/filepath"

	"github.com/CCBR/spacesavers/pkg/workunit"
)

// Task is one self-sufficient command line of the job graph. Each task
// redirects its stdout and stderr into per-unit files under the output
// directory, so the line can also be executed by hand.
type Task struct {
	// Unit is the work unit this task analyzes.
	Unit workunit.WorkUnit
	// Command is the full shell command line.
	Command string
}

// Graph is the full unit of submission: the ordered leaf tasks destined for
// a parallel job array, and at most one aggregate task. The first discovered
// work unit always seeds the aggregate task rather than the leaf array; the
// single-line aggregate script doubles as a fallback sequential runner when
// the set has only one member. A graph built from zero work units has a nil
// aggregate and no leaves.
type Graph struct {
	Leaves    []Task
	Aggregate *Task
}

// Empty reports whether the graph describes no work at all.
func (g *Graph) Empty() bool {
	return g.Aggregate == nil && len(g.Leaves) == 0
}

// Build synthesizes the job graph for units. runner is the path of the
// per-directory analysis executable; outDir receives one <name>.tsv and
// <name>.err pair per unit when the tasks later execute. Build never fails.
func Build(units []workunit.WorkUnit, runner, outDir string) *Graph {
	g := &Graph{}
	for i, unit := range units {
		task := Task{
			Unit:    unit,
			Command: commandLine(runner, unit, outDir),
		}
		if i == 0 {
			g.Aggregate = &task
			continue
		}
		g.Leaves = append(g.Leaves, task)
	}
	return g
}

func commandLine(runner string, unit workunit.WorkUnit, outDir string) string {
	return fmt.Sprintf("%s ls %s 1> %s 2> %s",
		runner,
		unit.Path,
		filepath.Join(outDir, unit.Name+".tsv"),
		filepath.Join(outDir, unit.Name+".err"),
	)
}
