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

package workunit

import (
	"os"
	"path/filepath"
	"testing"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}
	// Regular files and symlinks to directories are not work units.
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "alpha"), filepath.Join(root, "delta")))

	units, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, units, 3)
	// os.ReadDir returns entries sorted by name.
	require.Equal(t, []WorkUnit{
		{Path: filepath.Join(root, "alpha"), Name: "alpha"},
		{Path: filepath.Join(root, "beta"), Name: "beta"},
		{Path: filepath.Join(root, "gamma"), Name: "gamma"},
	}, units)
}

func TestDiscoverEmptyRoot(t *testing.T) {
	t.Parallel()

	units, err := Discover(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, units)
}

func TestDiscoverMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Discover(filepath.Join(t.TempDir(), "no-such-dir"))
	require.Error(t, err)
	require.True(t, cerror.ErrWorkRootNotFound.Equal(err))
}

func TestDiscoverRootIsFile(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "rawdata")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o644))

	_, err := Discover(root)
	require.Error(t, err)
	require.True(t, cerror.ErrWorkRootNotDir.Equal(err))
}
