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

package errors

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapError(t *testing.T) {
	t.Parallel()

	require.Nil(t, WrapError(ErrWriteManifest, nil, "leaf.manifest"))

	cause := errors.New("disk full")
	err := WrapError(ErrWriteManifest, cause, "leaf.manifest")
	require.Error(t, err)
	require.True(t, ErrWriteManifest.Equal(err))
	require.Contains(t, err.Error(), "disk full")
	require.Contains(t, err.Error(), "leaf.manifest")
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	notFound := ErrWorkRootNotFound.GenWithStackByArgs("/data/projects")
	require.True(t, IsNotFoundError(notFound))
	require.False(t, IsSubmissionError(notFound))

	rejected := ErrSchedulerSubmitFailed.GenWithStackByArgs("leaf array", "swarm exited 1")
	require.True(t, IsSubmissionError(rejected))
	require.False(t, IsNotFoundError(rejected))

	require.False(t, IsNotFoundError(errors.New("unrelated")))
	require.False(t, IsSubmissionError(nil))
}
