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

// Package manifest serializes a job graph into the two executable artifacts
// handed to the cluster scheduler: a leaf-array manifest and a singleton
// aggregate script.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/CCBR/spacesavers/pkg/fsutil"
	"github.com/CCBR/spacesavers/pkg/jobgraph"
	"github.com/pingcap/log"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// LeafFileName is the leaf-array manifest file, one command line per
	// leaf task.
	LeafFileName = "leaf.manifest"
	// AggregateFileName is the single-command aggregate script.
	AggregateFileName = "aggregate.script"

	interpreterLine = "#!/usr/bin/env bash"
	fileMode        = 0o755
)

// Manifest locates the artifacts written for one job graph. AggregatePath is
// empty when the graph had no work units and no aggregate script was
// produced.
type Manifest struct {
	LeafPath      string
	AggregatePath string
	// LeafCount is the number of command lines in the leaf manifest.
	LeafCount int
}

// Write serializes graph into outDir, creating the directory if absent.
// Both artifacts start with an interpreter directive and are marked
// executable, so each file is independently runnable outside the scheduler.
// Existing artifacts from a previous run are overwritten in place; writing
// the same graph twice produces byte-identical files.
//
// A graph with zero work units yields an empty leaf manifest and no
// aggregate script.
func Write(graph *jobgraph.Graph, outDir string) (*Manifest, error) {
	if err := fsutil.EnsureDir(outDir); err != nil {
		return nil, err
	}

	m := &Manifest{
		LeafPath:  filepath.Join(outDir, LeafFileName),
		LeafCount: len(graph.Leaves),
	}

	leafLines := make([]string, 0, len(graph.Leaves))
	for _, task := range graph.Leaves {
		leafLines = append(leafLines, task.Command)
	}
	if err := writeScript(m.LeafPath, leafLines, graph.Empty()); err != nil {
		return nil, err
	}

	if graph.Aggregate != nil {
		m.AggregatePath = filepath.Join(outDir, AggregateFileName)
		err := writeScript(m.AggregatePath, []string{graph.Aggregate.Command}, false)
		if err != nil {
			return nil, err
		}
	}

	log.Info("wrote job manifests",
		zap.String("leafManifest", m.LeafPath),
		zap.String("aggregateScript", m.AggregatePath),
		zap.Int("leafTasks", m.LeafCount))
	return m, nil
}

// writeScript writes an interpreter line followed by lines to path, marked
// executable. When empty is set the file is truncated to zero bytes instead,
// which keeps a stale manifest from a previous run from being resubmitted.
func writeScript(path string, lines []string, empty bool) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return cerror.WrapError(cerror.ErrWriteManifest, err, path)
	}
	defer func() {
		err = multierr.Append(err, cerror.WrapError(cerror.ErrWriteManifest, f.Close(), path))
	}()

	// O_CREATE only applies the mode to new files, a manifest left over
	// from a previous run keeps its old permission bits otherwise.
	if err := f.Chmod(fileMode); err != nil {
		return cerror.WrapError(cerror.ErrWriteManifest, err, path)
	}

	if empty {
		return nil
	}

	var b strings.Builder
	b.WriteString(interpreterLine)
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return cerror.WrapError(cerror.ErrWriteManifest, err, path)
	}
	return nil
}
