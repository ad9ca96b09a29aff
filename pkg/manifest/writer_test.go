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

package manifest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/CCBR/spacesavers/pkg/jobgraph"
	"github.com/CCBR/spacesavers/pkg/workunit"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, outDir string, names ...string) *jobgraph.Graph {
	t.Helper()
	units := make([]workunit.WorkUnit, 0, len(names))
	for _, name := range names {
		units = append(units, workunit.WorkUnit{Path: "/data/rawdata/" + name, Name: name})
	}
	return jobgraph.Build(units, "spacesavers", outDir)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	g := buildGraph(t, outDir, "alpha", "beta", "gamma")

	m, err := Write(g, outDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, "leaf.manifest"), m.LeafPath)
	require.Equal(t, filepath.Join(outDir, "aggregate.script"), m.AggregatePath)
	require.Equal(t, 2, m.LeafCount)

	leaf, err := os.ReadFile(m.LeafPath)
	require.NoError(t, err)
	require.Equal(t, "#!/usr/bin/env bash\n"+
		"spacesavers ls /data/rawdata/beta 1> "+outDir+"/beta.tsv 2> "+outDir+"/beta.err\n"+
		"spacesavers ls /data/rawdata/gamma 1> "+outDir+"/gamma.tsv 2> "+outDir+"/gamma.err\n",
		string(leaf))

	agg, err := os.ReadFile(m.AggregatePath)
	require.NoError(t, err)
	require.Equal(t, "#!/usr/bin/env bash\n"+
		"spacesavers ls /data/rawdata/alpha 1> "+outDir+"/alpha.tsv 2> "+outDir+"/alpha.err\n",
		string(agg))

	if runtime.GOOS != "windows" {
		for _, path := range []string{m.LeafPath, m.AggregatePath} {
			info, err := os.Stat(path)
			require.NoError(t, err)
			require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
		}
	}
}

func TestWriteIdempotent(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	g := buildGraph(t, outDir, "alpha", "beta")

	_, err := Write(g, outDir)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(outDir, "leaf.manifest"))
	require.NoError(t, err)

	_, err = Write(g, outDir)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(outDir, "leaf.manifest"))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestWriteSingleUnit(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	m, err := Write(buildGraph(t, outDir, "alpha"), outDir)
	require.NoError(t, err)
	require.Equal(t, 0, m.LeafCount)

	// The leaf manifest still carries the interpreter line, only the
	// command lines are absent.
	leaf, err := os.ReadFile(m.LeafPath)
	require.NoError(t, err)
	require.Equal(t, "#!/usr/bin/env bash\n", string(leaf))

	agg, err := os.ReadFile(m.AggregatePath)
	require.NoError(t, err)
	require.Contains(t, string(agg), "spacesavers ls /data/rawdata/alpha")
}

func TestWriteZeroUnits(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	m, err := Write(buildGraph(t, outDir), outDir)
	require.NoError(t, err)
	require.Equal(t, 0, m.LeafCount)
	require.Empty(t, m.AggregatePath)

	// Empty graph: a zero-byte leaf manifest and no aggregate script.
	leaf, err := os.ReadFile(m.LeafPath)
	require.NoError(t, err)
	require.Empty(t, leaf)
	_, err = os.Stat(filepath.Join(outDir, "aggregate.script"))
	require.True(t, os.IsNotExist(err))
}

func TestWriteTruncatesStaleArtifacts(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "out")
	_, err := Write(buildGraph(t, outDir, "alpha", "beta", "gamma"), outDir)
	require.NoError(t, err)

	// A later run against a shrunk root must not leave stale leaf lines.
	m, err := Write(buildGraph(t, outDir, "alpha"), outDir)
	require.NoError(t, err)
	require.Equal(t, 0, m.LeafCount)
	leaf, err := os.ReadFile(m.LeafPath)
	require.NoError(t, err)
	require.Equal(t, "#!/usr/bin/env bash\n", string(leaf))
}

func TestWriteCreatesOutputDir(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "nested", "deeper", "out")
	_, err := Write(buildGraph(t, outDir, "alpha", "beta"), outDir)
	require.NoError(t, err)
	info, err := os.Stat(outDir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
