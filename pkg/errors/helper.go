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

// WrapError generates a new error based on the given `*errors.Error`, wraps
// the err as the cause. If err is nil, returns nil, which is a different
// behavior from `Wrap` in pingcap/errors.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}

// IsNotFoundError returns whether err was raised because a work root is
// missing or unreadable.
func IsNotFoundError(err error) bool {
	return ErrWorkRootNotFound.Equal(err) || ErrWorkRootNotDir.Equal(err)
}

// IsSubmissionError returns whether err came back from the external
// scheduler. Submission errors may leave already-accepted jobs queued, so
// callers report them without attempting any rollback.
func IsSubmissionError(err error) bool {
	return ErrSchedulerSubmitFailed.Equal(err) || ErrSchedulerOutputParse.Equal(err)
}
