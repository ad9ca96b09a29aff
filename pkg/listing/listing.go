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

// Package listing implements the per-directory analysis behind
// `spacesavers ls`: a recursive file listing with duplicate detection.
//
// Duplicates are found in three narrowing stages. Files are first grouped
// by size; same-size files get an MD5 of their leading 64 KiB; files still
// matching get a full-file MD5. Only files equal on (full digest, size) are
// reported as duplicates, everything that falls out earlier is emitted as
// unique. The staging keeps full checksums, by far the dominant cost, off
// files that cannot possibly collide.
package listing

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/CCBR/spacesavers/pkg/fsutil"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// buckets groups file paths under comparable keys while remembering key
// insertion order, so emission order is deterministic for a given walk
// order.
type buckets[K comparable] struct {
	order []K
	m     map[K][]string
}

func newBuckets[K comparable]() *buckets[K] {
	return &buckets[K]{m: make(map[K][]string)}
}

func (b *buckets[K]) add(key K, path string) {
	if _, ok := b.m[key]; !ok {
		b.order = append(b.order, key)
	}
	b.m[key] = append(b.m[key], path)
}

// digestKey identifies one duplicate-candidate group: files sharing both a
// digest and a size.
type digestKey struct {
	digest string
	size   int64
}

// Lister lists every regular file under a root as one TSV line per
// distinct content.
type Lister struct {
	// Threads bounds concurrent checksum workers. Zero or negative picks
	// a default from GOMAXPROCS.
	Threads int
	// IncludeLinks also lists files reached through symlinks, which are
	// skipped by default.
	IncludeLinks bool
}

// List walks root and writes one TSV line per distinct file content to w:
//
//	inode permissions owner group bytes human_size mdate path duplicates
//
// where duplicates is a "|"-joined list of the other paths sharing the
// content, empty for unique files. Per-file stat, read and hash failures
// are logged and the file skipped; only a failure to read the root itself
// is fatal.
func (l *Lister) List(ctx context.Context, root string, w io.Writer) error {
	start := time.Now()
	root, err := fsutil.Normalize(root)
	if err != nil {
		return err
	}
	if _, err := os.Stat(root); err != nil {
		return cerror.WrapError(cerror.ErrWorkRootNotFound, err, root)
	}

	threads := l.Threads
	if threads <= 0 {
		threads = defaultThreads()
	}

	sizes, err := l.collectSizes(root)
	if err != nil {
		return err
	}

	ids := newIdentityCache()
	emitted := 0

	// Unique sizes cannot be duplicates; everything else moves on to the
	// mini-hash stage.
	var miniCandidates []string
	for _, size := range sizes.order {
		files := sizes.m[size]
		if len(files) < 2 {
			emitted += emit(w, files[0], nil, ids)
			continue
		}
		miniCandidates = append(miniCandidates, files...)
	}

	miniDigests := hashAll(ctx, miniCandidates, true, threads)
	minis := newBuckets[digestKey]()
	for _, size := range sizes.order {
		files := sizes.m[size]
		if len(files) < 2 {
			continue
		}
		for _, file := range files {
			digest, ok := miniDigests[file]
			if !ok {
				continue // hash failed, already warned
			}
			minis.add(digestKey{digest: digest, size: size}, file)
		}
	}

	var fullCandidates []string
	for _, key := range minis.order {
		files := minis.m[key]
		if len(files) < 2 {
			emitted += emit(w, files[0], nil, ids)
			continue
		}
		fullCandidates = append(fullCandidates, files...)
	}

	fullDigests := hashAll(ctx, fullCandidates, false, threads)
	fulls := newBuckets[digestKey]()
	for _, key := range minis.order {
		files := minis.m[key]
		if len(files) < 2 {
			continue
		}
		for _, file := range files {
			digest, ok := fullDigests[file]
			if !ok {
				continue
			}
			fulls.add(digestKey{digest: digest, size: key.size}, file)
		}
	}

	duplicates := 0
	for _, key := range fulls.order {
		files := fulls.m[key]
		emitted += emit(w, files[0], files[1:], ids)
		duplicates += len(files) - 1
	}

	log.Info("listing complete",
		zap.String("root", root),
		zap.Int("distinctFiles", emitted),
		zap.Int("duplicateFiles", duplicates),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// collectSizes walks the tree and groups file paths by size in encounter
// order.
func (l *Lister) collectSizes(root string) (*buckets[int64], error) {
	sizes := newBuckets[int64]()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return cerror.WrapError(cerror.ErrWorkRootNotFound, err, root)
			}
			log.Warn("cannot read path, skipping it",
				zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 && !l.IncludeLinks {
			return nil
		}

		// os.Stat follows symlinks, so linked files are sized by their
		// target when they are included at all.
		info, err := os.Stat(path)
		if err != nil {
			log.Warn("cannot stat file, skipping it",
				zap.String("file", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		sizes.add(info.Size(), path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

// emit writes one TSV line and returns 1, or warns and returns 0 when the
// file's stats cannot be read anymore.
func emit(w io.Writer, path string, duplicates []string, ids *identityCache) int {
	stats, err := fileStats(path, ids)
	if err != nil {
		log.Warn("cannot stat file, skipping it",
			zap.String("file", path), zap.Error(err))
		return 0
	}
	fields := append(stats, path, strings.Join(duplicates, "|"))
	fmt.Fprintln(w, strings.Join(fields, "\t"))
	return 1
}

func defaultThreads() int {
	threads := runtime.GOMAXPROCS(0)
	if threads > 4 {
		threads = 4
	}
	return threads
}
