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

package submit

import (
	"github.com/fatih/color"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdcontext "github.com/CCBR/spacesavers/pkg/cmd/context"
	"github.com/CCBR/spacesavers/pkg/cmd/factory"
	"github.com/CCBR/spacesavers/pkg/cmd/util"
	"github.com/CCBR/spacesavers/pkg/config"
	cerror "github.com/CCBR/spacesavers/pkg/errors"
	"github.com/CCBR/spacesavers/pkg/logutil"
	"github.com/CCBR/spacesavers/pkg/submit"
	"github.com/CCBR/spacesavers/pkg/version"
)

// options defines flags and the completed configuration for the `submit`
// command.
type options struct {
	profilePath string

	// flagConfig receives raw flag values; complete merges them over the
	// defaults and the profile file into submitConfig.
	flagConfig   *config.SubmitConfig
	submitConfig *config.SubmitConfig
}

// newOptions creates new options for the `submit` command.
func newOptions() *options {
	return &options{
		flagConfig: config.GetDefaultSubmitConfig(),
	}
}

// addFlags receives a *cobra.Command reference and binds flags related to
// job submission to it.
func (o *options) addFlags(cmd *cobra.Command) {
	defaults := config.GetDefaultSubmitConfig()
	cmd.Flags().StringVarP(&o.flagConfig.InputDir, "input", "i", "", "Parent directory whose immediate child directories become analysis jobs (required)")
	cmd.Flags().StringVarP(&o.flagConfig.OutputDir, "output", "o", "", "Directory receiving the manifests and per-directory results (required)")
	cmd.Flags().StringVar(&o.flagConfig.Dependency, "dependency", "", "Upstream job id the whole pipeline waits on")
	cmd.Flags().BoolVarP(&o.flagConfig.DryRun, "dry-run", "n", false, "Write the manifests but do not contact the scheduler")
	cmd.Flags().StringVar(&o.flagConfig.Runner, "runner", "", "Per-directory analysis executable referenced by the manifests, defaults to this executable")
	cmd.Flags().StringVar(&o.flagConfig.JobName, "job-name", defaults.JobName, "Job name label for the queue")
	cmd.Flags().StringVar(&o.flagConfig.Slurm.Partition, "partition", defaults.Slurm.Partition, "Cluster partition to submit into")
	cmd.Flags().StringVar(&o.flagConfig.Slurm.Memory, "memory", defaults.Slurm.Memory, "Per-task memory request, e.g. 16g or 32GiB")
	cmd.Flags().IntVar(&o.flagConfig.Slurm.Threads, "threads", defaults.Slurm.Threads, "Per-task CPU request")
	cmd.Flags().StringVar(&o.flagConfig.Slurm.Walltime, "walltime", defaults.Slurm.Walltime, "Walltime limit, HH:MM:SS or D-HH:MM:SS")
	cmd.Flags().StringVar(&o.flagConfig.Slurm.ExtraArgs, "extra-args", "", "Extra arguments passed through to the submission commands")
	cmd.Flags().StringVar(&o.flagConfig.LogLevel, "log-level", defaults.LogLevel, "log level (etc: debug|info|warn|error)")
	cmd.Flags().StringVar(&o.flagConfig.LogFile, "log-file", "", "log file path, empty for stderr")
	cmd.Flags().StringVar(&o.profilePath, "profile", "", "Path of a TOML profile with defaults for these flags")
}

// complete assembles the final configuration: defaults, then the profile
// file, then explicitly set flags, which win.
func (o *options) complete(cmd *cobra.Command) error {
	conf := config.GetDefaultSubmitConfig()
	if len(o.profilePath) > 0 {
		if err := util.StrictDecodeFile(o.profilePath, "spacesavers submit", conf); err != nil {
			return cerror.WrapError(cerror.ErrLoadConfigFile, err, o.profilePath)
		}
	}

	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "input":
			conf.InputDir = o.flagConfig.InputDir
		case "output":
			conf.OutputDir = o.flagConfig.OutputDir
		case "dependency":
			conf.Dependency = o.flagConfig.Dependency
		case "dry-run":
			conf.DryRun = o.flagConfig.DryRun
		case "runner":
			conf.Runner = o.flagConfig.Runner
		case "job-name":
			conf.JobName = o.flagConfig.JobName
		case "partition":
			conf.Slurm.Partition = o.flagConfig.Slurm.Partition
		case "memory":
			conf.Slurm.Memory = o.flagConfig.Slurm.Memory
		case "threads":
			conf.Slurm.Threads = o.flagConfig.Slurm.Threads
		case "walltime":
			conf.Slurm.Walltime = o.flagConfig.Slurm.Walltime
		case "extra-args":
			conf.Slurm.ExtraArgs = o.flagConfig.Slurm.ExtraArgs
		case "log-level":
			conf.LogLevel = o.flagConfig.LogLevel
		case "log-file":
			conf.LogFile = o.flagConfig.LogFile
		case "profile":
			// already handled
		}
	})

	if err := conf.ValidateAndAdjust(); err != nil {
		return errors.Trace(err)
	}
	o.submitConfig = conf
	return nil
}

// run the `submit` command.
func (o *options) run(cmd *cobra.Command, f factory.Factory) error {
	conf := o.submitConfig

	cancel := util.InitCmd(cmd, &logutil.Config{
		Level: conf.LogLevel,
		File:  conf.LogFile,
	})
	defer cancel()
	version.LogVersionInfo()

	ctx := cmdcontext.GetDefaultContext()
	if conf.DryRun {
		cmd.Println(color.HiYellowString(
			"[DRY-RUN] manifests will be written but nothing will be submitted"))
	} else {
		if err := version.CheckSchedulerVersion(ctx, sbatchPath(conf)); err != nil {
			return err
		}
	}

	submitter := submit.NewSubmitter(conf, f.Scheduler(&conf.Slurm), f.Clock())
	receipt, err := submitter.Run(ctx)
	if err != nil {
		return err
	}

	if receipt.WorkUnits == 0 {
		cmd.Println(color.HiYellowString(
			"[WARN] %s has no child directories, nothing was submitted", conf.InputDir))
	}
	return util.JSONPrint(cmd, receipt)
}

func sbatchPath(conf *config.SubmitConfig) string {
	if conf.Slurm.SbatchPath != "" {
		return conf.Slurm.SbatchPath
	}
	return "sbatch"
}

// NewCmdSubmit creates the `submit` command.
func NewCmdSubmit(f factory.Factory) *cobra.Command {
	o := newOptions()

	command := &cobra.Command{
		Use:   "submit",
		Short: "Fan out one analysis job per child directory and submit the job array to the cluster",
		Long: "Submit discovers the immediate child directories of --input, writes a parallel " +
			"job-array manifest plus an aggregate script that runs after every array task " +
			"finishes, and submits both with the proper dependency ordering. With --dry-run " +
			"the manifests are written and nothing is submitted.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.complete(cmd))
			util.CheckErr(o.run(cmd, f))
		},
	}

	o.addFlags(command)

	return command
}
