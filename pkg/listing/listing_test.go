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

package listing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/CCBR/spacesavers/pkg/leakutil"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	leakutil.SetUpLeakTest(m)
}

// listLines runs the lister over root and returns the TSV rows keyed by
// file path.
func listLines(t *testing.T, l *Lister, root string) map[string][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, l.List(context.Background(), root, &buf))

	rows := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 9, line)
		rows[fields[7]] = fields
	}
	return rows
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListFindsDuplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "identical payload")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "identical payload")
	writeFile(t, filepath.Join(root, "sub", "c.txt"), "different payload")
	writeFile(t, filepath.Join(root, "unique.txt"), "short")

	rows := listLines(t, &Lister{Threads: 2}, root)

	// Three distinct contents: the pair collapses into one row under its
	// first-seen path.
	require.Len(t, rows, 3)
	dupRow, ok := rows[filepath.Join(root, "a.txt")]
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "sub", "b.txt"), dupRow[8])

	// Same size as the pair but different content, listed as unique.
	uniqueRow, ok := rows[filepath.Join(root, "sub", "c.txt")]
	require.True(t, ok)
	require.Empty(t, uniqueRow[8])

	shortRow, ok := rows[filepath.Join(root, "unique.txt")]
	require.True(t, ok)
	require.Empty(t, shortRow[8])
	require.Equal(t, "5", shortRow[4])
	require.Equal(t, "5 B", shortRow[5])
}

func TestListThreeWayDuplicate(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"x1", "x2", "x3"} {
		writeFile(t, filepath.Join(root, name), strings.Repeat("z", 1024))
	}

	rows := listLines(t, &Lister{Threads: 2}, root)
	require.Len(t, rows, 1)
	row := rows[filepath.Join(root, "x1")]
	require.Equal(t,
		filepath.Join(root, "x2")+"|"+filepath.Join(root, "x3"),
		row[8])
}

func TestListLargeFileBeyondMiniHash(t *testing.T) {
	root := t.TempDir()
	// Identical first 64 KiB, divergent tails: the mini hash alone cannot
	// separate these, the full checksum must.
	prefix := strings.Repeat("p", miniHashSize)
	writeFile(t, filepath.Join(root, "big1"), prefix+"tail-one")
	writeFile(t, filepath.Join(root, "big2"), prefix+"tail-two")

	rows := listLines(t, &Lister{Threads: 2}, root)
	require.Len(t, rows, 2)
	require.Empty(t, rows[filepath.Join(root, "big1")][8])
	require.Empty(t, rows[filepath.Join(root, "big2")][8])
}

func TestListSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), "payload")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	rows := listLines(t, &Lister{Threads: 2}, root)
	require.Len(t, rows, 1)
	_, ok := rows[filepath.Join(root, "real.txt")]
	require.True(t, ok)

	// Opting in lists the linked file too, paired with its target. The
	// walk visits link.txt first, so it becomes the primary of the pair.
	rows = listLines(t, &Lister{Threads: 2, IncludeLinks: true}, root)
	require.Len(t, rows, 1)
	row := rows[filepath.Join(root, "link.txt")]
	require.Equal(t, filepath.Join(root, "real.txt"), row[8])
}

func TestListEmptyRoot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Lister{}).List(context.Background(), t.TempDir(), &buf))
	require.Empty(t, buf.String())
}

func TestListMissingRoot(t *testing.T) {
	var buf bytes.Buffer
	err := (&Lister{}).List(context.Background(), filepath.Join(t.TempDir(), "nope"), &buf)
	require.Error(t, err)
	require.True(t, cerror.ErrWorkRootNotFound.Equal(err))
}

func TestMd5sum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "hello")

	full, err := md5sum(path, false)
	require.NoError(t, err)
	// md5("hello")
	require.Equal(t, "5d41402abc4b2a76b9719d911017c592", full)

	// For files under 64 KiB the mini hash equals the full hash.
	mini, err := md5sum(path, true)
	require.NoError(t, err)
	require.Equal(t, full, mini)
}
