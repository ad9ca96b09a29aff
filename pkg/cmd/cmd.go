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

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/CCBR/spacesavers/pkg/cmd/factory"
	"github.com/CCBR/spacesavers/pkg/cmd/ls"
	"github.com/CCBR/spacesavers/pkg/cmd/submit"
	"github.com/CCBR/spacesavers/pkg/cmd/version"
)

// NewCmd creates the root command.
func NewCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "spacesavers",
		Short: "Batch disk-usage auditing for shared cluster filesystems",
	}

	f := factory.NewFactory()
	command.AddCommand(submit.NewCmdSubmit(f))
	command.AddCommand(ls.NewCmdLs())
	command.AddCommand(version.NewCmdVersion())

	return command
}

// Run runs the root command.
func Run() {
	cmd := NewCmd()

	cmd.SetOut(os.Stdout)
	cmd.CompletionOptions.DisableDefaultCmd = true
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln(err)
		os.Exit(1)
	}
}
