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

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// WorkUnit is one immediate child directory of the input root, the unit of
// independent analysis work. Name is the last path segment and doubles as
// the output-file prefix.
type WorkUnit struct {
	// Path is the absolute path of the child directory.
	Path string
	// Name is the last path segment of Path.
	Name string
}

// Discover lists the immediate child directories of root, depth exactly one,
// directories only. Symlinks are not followed even when they point at
// directories. The root itself is excluded. Ordering is os.ReadDir name
// order, which is stable within a run. An empty result is not an error.
func Discover(root string) ([]WorkUnit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrWorkRootNotFound, err, root)
	}
	if !info.IsDir() {
		return nil, cerror.ErrWorkRootNotDir.GenWithStackByArgs(root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrWorkRootNotFound, err, root)
	}

	units := make([]WorkUnit, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		units = append(units, WorkUnit{
			Path: filepath.Join(root, entry.Name()),
			Name: entry.Name(),
		})
	}

	log.Info("discovered work units",
		zap.String("root", root), zap.Int("count", len(units)))
	return units, nil
}
