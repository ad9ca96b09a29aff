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
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
)

const mdateLayout = "2006-01-02-15:04"

// identityCache memoizes uid/gid to name lookups. Resolving every file
// against the user database roughly doubles listing time on large trees,
// and ids of deleted accounts cannot be resolved at all, so unknown ids
// fall back to their numeric form the same way ls prints them.
type identityCache struct {
	users  map[string]string
	groups map[string]string
}

func newIdentityCache() *identityCache {
	return &identityCache{
		users:  make(map[string]string),
		groups: make(map[string]string),
	}
}

func (c *identityCache) userName(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if name, ok := c.users[id]; ok {
		return name
	}
	name := id
	if u, err := user.LookupId(id); err == nil {
		name = u.Username
	}
	c.users[id] = name
	return name
}

func (c *identityCache) groupName(gid uint32) string {
	id := strconv.FormatUint(uint64(gid), 10)
	if name, ok := c.groups[id]; ok {
		return name
	}
	name := id
	if g, err := user.LookupGroupId(id); err == nil {
		name = g.Name
	}
	c.groups[id] = name
	return name
}

// fileStats returns the TSV column values describing one file: inode,
// permissions, owner, group, size in bytes, human-readable size and
// modification date.
func fileStats(path string, ids *identityCache) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var inode uint64
	owner := "?"
	group := "?"
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		inode = st.Ino
		owner = ids.userName(st.Uid)
		group = ids.groupName(st.Gid)
	}

	size := info.Size()
	return []string{
		strconv.FormatUint(inode, 10),
		info.Mode().String(),
		owner,
		group,
		strconv.FormatInt(size, 10),
		humanize.IBytes(uint64(size)),
		info.ModTime().Format(mdateLayout),
	}, nil
}
