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

package ls

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	cmdcontext "github.com/CCBR/spacesavers/pkg/cmd/context"
	"github.com/CCBR/spacesavers/pkg/cmd/util"
	"github.com/CCBR/spacesavers/pkg/listing"
	"github.com/CCBR/spacesavers/pkg/logutil"
	"github.com/pingcap/errors"
)

// options defines flags for the `ls` command.
type options struct {
	threads  int
	allFiles bool
	logLevel string
}

// newOptions creates new options for the `ls` command.
func newOptions() *options {
	return &options{}
}

// addFlags receives a *cobra.Command reference and binds flags related to
// the listing to it.
func (o *options) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.threads, "threads", 0, "Number of concurrent checksum workers, 0 for automatic")
	cmd.Flags().BoolVar(&o.allFiles, "all-files", false, "Also list files reached through symlinks")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "warn", "log level (etc: debug|info|warn|error)")
}

// run the `ls` command.
func (o *options) run(cmd *cobra.Command, root string) error {
	// Warnings go to the stderr logger, the TSV owns stdout.
	cancel := util.InitCmd(cmd, &logutil.Config{Level: o.logLevel})
	defer cancel()

	w := bufio.NewWriter(os.Stdout)
	lister := &listing.Lister{
		Threads:      o.threads,
		IncludeLinks: o.allFiles,
	}
	if err := lister.List(cmdcontext.GetDefaultContext(), root, w); err != nil {
		return err
	}
	return errors.Trace(w.Flush())
}

// NewCmdLs creates the `ls` command.
func NewCmdLs() *cobra.Command {
	o := newOptions()

	command := &cobra.Command{
		Use:   "ls <directory>",
		Short: "Recursively list files under a directory with duplicate detection, as TSV on stdout",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.run(cmd, args[0]))
		},
	}

	o.addFlags(command)

	return command
}
