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

package version

import (
	"context"
	"testing"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestParseSlurmVersion(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		output   string
		expected string
		ok       bool
	}{
		{"slurm 23.02.7", "23.2.7", true},
		{"slurm-wlm 21.08.5", "21.8.5", true},
		{"slurm 20.11", "20.11.0", true},
		{"SLURM 19.05.8\n", "19.5.8", true},
		{"sbatch: command not found", "", false},
		{"", "", false},
	}
	for _, tc := range testCases {
		ver, err := ParseSlurmVersion(tc.output)
		if !tc.ok {
			require.Error(t, err, tc.output)
			require.True(t, cerror.ErrSchedulerVersionUnparsable.Equal(err))
			continue
		}
		require.NoError(t, err, tc.output)
		require.Equal(t, tc.expected, ver.String())
	}
}

func TestCheckSchedulerVersion(t *testing.T) {
	orig := sbatchVersionOutput
	defer func() { sbatchVersionOutput = orig }()

	// Compatible version passes.
	sbatchVersionOutput = func(ctx context.Context, sbatchPath string) ([]byte, error) {
		return []byte("slurm 23.02.7\n"), nil
	}
	require.NoError(t, CheckSchedulerVersion(context.Background(), "sbatch"))

	// A release below the minimum is rejected.
	sbatchVersionOutput = func(ctx context.Context, sbatchPath string) ([]byte, error) {
		return []byte("slurm 15.08.2\n"), nil
	}
	err := CheckSchedulerVersion(context.Background(), "sbatch")
	require.Error(t, err)
	require.True(t, cerror.ErrSchedulerVersionIncompatible.Equal(err))

	// An unreachable sbatch downgrades to a warning.
	sbatchVersionOutput = func(ctx context.Context, sbatchPath string) ([]byte, error) {
		return nil, errors.New("no such file or directory")
	}
	require.NoError(t, CheckSchedulerVersion(context.Background(), "sbatch"))

	// Unrecognized output downgrades to a warning.
	sbatchVersionOutput = func(ctx context.Context, sbatchPath string) ([]byte, error) {
		return []byte("not a scheduler banner"), nil
	}
	require.NoError(t, CheckSchedulerVersion(context.Background(), "sbatch"))
}

func TestReleaseSemver(t *testing.T) {
	origVersion := ReleaseVersion
	defer func() { ReleaseVersion = origVersion }()

	ReleaseVersion = "v1.2.0-5-g6a2885cd"
	require.Equal(t, "1.2.0", ReleaseSemver())

	ReleaseVersion = "None"
	require.Equal(t, "", ReleaseSemver())
}
