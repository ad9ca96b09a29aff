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
	cerror "github.com/CCBR/spacesavers/pkg/errors"
)

// afterAny builds a dependency expression satisfied when the referenced job
// reaches any terminal state, success and failure alike. The aggregate must
// run even when some leaf tasks fail, otherwise one bad directory would wedge
// the whole pipeline.
func afterAny(id JobID) string {
	return "afterany:" + string(id)
}

// Chain computes the dependency expressions wiring an optional external
// upstream job, the leaf array, and the aggregate job in strict sequence.
// The zero Chain has no external dependency.
type Chain struct {
	external JobID
	leafID   JobID
	bound    bool
}

// NewChain creates a chain with an optional external upstream job id.
// external may be empty.
func NewChain(external JobID) *Chain {
	return &Chain{external: external}
}

// LeafDependency returns the dependency expression for the leaf-array
// submission: after-any-outcome of the external job, or empty when no
// external dependency was supplied.
func (c *Chain) LeafDependency() string {
	if c.external == "" {
		return ""
	}
	return afterAny(c.external)
}

// BindLeafArray records the job id assigned to the leaf-array submission.
func (c *Chain) BindLeafArray(id JobID) {
	c.leafID = id
	c.bound = true
}

// AggregateDependency returns the dependency expression for the aggregate
// submission: after-any-outcome of the leaf array, never of the external
// job. Calling it before BindLeafArray is an ordering bug and fails with a
// configuration error.
func (c *Chain) AggregateDependency() (string, error) {
	if !c.bound {
		return "", cerror.ErrDependencyUnresolved.GenWithStackByArgs()
	}
	return afterAny(c.leafID), nil
}
