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

package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/pingcap/errors"
)

// Normalize dereferences a leading "~" to the current user's home directory
// and converts the path to an absolute one. Symlinks are left untouched.
func Normalize(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Trace(err)
		}
		path = filepath.Join(home, path[1:])
	}
	npath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	return npath, nil
}

// EnsureDir creates dir and any missing parents. It is a no-op when dir
// already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cerror.WrapError(cerror.ErrCreateOutputDir, err, dir)
	}
	return nil
}
