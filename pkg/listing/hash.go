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
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// miniHashSize is the number of leading bytes hashed to pre-filter
// same-size files before a full checksum is paid for.
const miniHashSize = 64 * 1024

// md5sum hashes a file. With firstBlockOnly only the leading 64 KiB are
// read, which is enough to rule out most same-size candidates cheaply.
func md5sum(path string, firstBlockOnly bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	defer f.Close()

	h := md5.New()
	var r io.Reader = f
	if firstBlockOnly {
		r = io.LimitReader(f, miniHashSize)
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Trace(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashAll computes md5sum for every path using up to threads workers and
// returns path -> digest. Files that cannot be hashed are logged and left
// out of the result, matching the per-file warn-and-skip policy of the
// listing as a whole. Ordering of later emission is unaffected because
// callers look digests up by path.
func hashAll(ctx context.Context, paths []string, firstBlockOnly bool, threads int) map[string]string {
	digests := make(map[string]string, len(paths))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			digest, err := md5sum(path, firstBlockOnly)
			if err != nil {
				log.Warn("cannot hash file, skipping it",
					zap.String("file", path), zap.Error(err))
				return nil
			}
			mu.Lock()
			digests[path] = digest
			mu.Unlock()
			return nil
		})
	}
	// Workers never return an error, they degrade to warnings instead.
	_ = g.Wait()
	return digests
}
