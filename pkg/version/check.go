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
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/coreos/go-semver/semver"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

var (
	// minSlurmVersion is the version of the minimal compatible SLURM.
	// Older releases lack a stable --dependency=afterany contract.
	minSlurmVersion *semver.Version = semver.New("17.2.0")
	// maxSlurmVersion is the version of the maximum compatible SLURM.
	// Compatible versions are in [minSlurmVersion, maxSlurmVersion).
	maxSlurmVersion *semver.Version = semver.New("9999.0.0")
)

// SLURM reports versions like "slurm 23.02.7" or "slurm-wlm 21.08.5";
// minor and patch segments may carry leading zeros, which are not valid
// semver, so each segment is re-parsed as an integer.
var slurmVersionPattern = regexp.MustCompile(`slurm(?:-wlm)?\s+(\d+)\.(\d+)(?:\.(\d+))?`)

var versionHash = regexp.MustCompile("-[0-9]+-g[0-9a-f]{7,}(-dev)?")

func removeVAndHash(v string) string {
	if v != "" {
		v = versionHash.ReplaceAllLiteralString(v, "")
		v = strings.TrimSuffix(v, "-dirty")
		v = strings.TrimPrefix(v, "v")
	}
	return v
}

// sbatchVersionOutput invokes `<sbatch> --version`. Overridden in tests.
var sbatchVersionOutput = func(ctx context.Context, sbatchPath string) ([]byte, error) {
	return exec.CommandContext(ctx, sbatchPath, "--version").Output()
}

// ParseSlurmVersion extracts the scheduler version from `sbatch --version`
// output.
func ParseSlurmVersion(output string) (*semver.Version, error) {
	m := slurmVersionPattern.FindStringSubmatch(strings.ToLower(output))
	if m == nil {
		return nil, cerror.ErrSchedulerVersionUnparsable.GenWithStackByArgs(strings.TrimSpace(output))
	}
	segments := make([]int, 3)
	for i, raw := range m[1:] {
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, cerror.ErrSchedulerVersionUnparsable.GenWithStackByArgs(strings.TrimSpace(output))
		}
		segments[i] = n
	}
	return semver.New(fmt.Sprintf("%d.%d.%d", segments[0], segments[1], segments[2])), nil
}

// CheckSchedulerVersion verifies that the SLURM installation behind
// sbatchPath is within the compatible range. An unreachable sbatch or an
// unrecognized version banner only logs a warning so that the submission
// path reports the authoritative failure.
func CheckSchedulerVersion(ctx context.Context, sbatchPath string) error {
	out, err := sbatchVersionOutput(ctx, sbatchPath)
	if err != nil {
		log.Warn("cannot query scheduler version, proceeding without a compatibility check",
			zap.String("sbatch", sbatchPath), zap.Error(err))
		return nil
	}

	ver, err := ParseSlurmVersion(string(out))
	if err != nil {
		log.Warn("unrecognized scheduler version output, proceeding without a compatibility check",
			zap.String("sbatch", sbatchPath), zap.ByteString("output", out))
		return nil
	}

	if ver.Compare(*minSlurmVersion) < 0 {
		arg := fmt.Sprintf("SLURM %s is not supported, the minimal compatible version is %s",
			ver, minSlurmVersion)
		return cerror.ErrSchedulerVersionIncompatible.GenWithStackByArgs(arg)
	}
	if ver.Compare(*maxSlurmVersion) >= 0 {
		arg := fmt.Sprintf("SLURM %s is not supported, the maximum compatible version is %s",
			ver, maxSlurmVersion)
		return cerror.ErrSchedulerVersionIncompatible.GenWithStackByArgs(arg)
	}
	log.Info("scheduler version check passed", zap.String("version", ver.String()))
	return nil
}
