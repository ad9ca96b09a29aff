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

package context

import "context"

var defaultContext context.Context

// SetDefaultContext sets the context shared by the commands of one
// invocation.
func SetDefaultContext(ctx context.Context) {
	defaultContext = ctx
}

// GetDefaultContext returns the context set by SetDefaultContext, falling
// back to the background context.
func GetDefaultContext() context.Context {
	if defaultContext == nil {
		return context.Background()
	}
	return defaultContext
}
