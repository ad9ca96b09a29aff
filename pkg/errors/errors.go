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
	"github.com/pingcap/errors"
)

// errors
var (
	// work unit discovery errors
	ErrWorkRootNotFound = errors.Normalize(
		"work root %s does not exist or cannot be read",
		errors.RFCCodeText("SSV:ErrWorkRootNotFound"),
	)
	ErrWorkRootNotDir = errors.Normalize(
		"work root %s is not a directory",
		errors.RFCCodeText("SSV:ErrWorkRootNotDir"),
	)

	// configuration errors
	ErrInvalidSubmitOption = errors.Normalize(
		"invalid submit option: %s",
		errors.RFCCodeText("SSV:ErrInvalidSubmitOption"),
	)
	ErrLoadConfigFile = errors.Normalize(
		"load config file %s",
		errors.RFCCodeText("SSV:ErrLoadConfigFile"),
	)
	ErrDependencyUnresolved = errors.Normalize(
		"aggregate dependency requested before the leaf array job id is known",
		errors.RFCCodeText("SSV:ErrDependencyUnresolved"),
	)

	// manifest errors
	ErrCreateOutputDir = errors.Normalize(
		"create output directory %s",
		errors.RFCCodeText("SSV:ErrCreateOutputDir"),
	)
	ErrWriteManifest = errors.Normalize(
		"write manifest %s",
		errors.RFCCodeText("SSV:ErrWriteManifest"),
	)

	// scheduler errors
	ErrSchedulerSubmitFailed = errors.Normalize(
		"scheduler rejected %s submission: %s",
		errors.RFCCodeText("SSV:ErrSchedulerSubmitFailed"),
	)
	ErrSchedulerOutputParse = errors.Normalize(
		"cannot parse a job id from scheduler output %q",
		errors.RFCCodeText("SSV:ErrSchedulerOutputParse"),
	)
	ErrSchedulerVersionIncompatible = errors.Normalize(
		"scheduler version is incompatible: %s",
		errors.RFCCodeText("SSV:ErrSchedulerVersionIncompatible"),
	)
	ErrSchedulerVersionUnparsable = errors.Normalize(
		"cannot determine scheduler version from %q",
		errors.RFCCodeText("SSV:ErrSchedulerVersionUnparsable"),
	)

	// listing errors
	ErrListingWalkFailed = errors.Normalize(
		"list files under %s",
		errors.RFCCodeText("SSV:ErrListingWalkFailed"),
	)
)
