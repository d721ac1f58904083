// Copyright 2024 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// resource_namespacer rewrites the resources, manifests and class jars of a graph of Android
// components so that every resource reference names the package that owns it, and writes the R
// classes of every component.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yuweiguocn/build-system-sub001/namespace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	verbose bool
}

func newLogger(w io.Writer, flags *globalFlags) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if flags.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func newRootCommand(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}
	var (
		jobFile     string
		outDir      string
		parallelism int
		shardSize   int
		keepGoing   bool
	)

	root := &cobra.Command{
		Use:   "resource_namespacer --job <job.yaml>",
		Short: "Namespace the resources of a graph of Android components",
		Long: `Namespace the resources of a graph of Android components.

Every reference of the XML resources, manifest and class jars of each component is rewritten to
name the package owning the resource, and the R classes of each component are synthesized.
Outputs go to <out_dir>/<component>/.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(stderr, flags)
			err := runJob(cmd.Context(), fs, logger, stdout, jobFile, namespace.Config{
				OutDir:      outDir,
				Parallelism: parallelism,
				ShardSize:   shardSize,
				KeepGoing:   keepGoing,
			})
			if err != nil {
				logger.Error(err)
			}
			return err
		},
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every rewritten artifact")
	root.Flags().StringVar(&jobFile, "job", "", "YAML file describing the components")
	root.Flags().StringVar(&outDir, "out_dir", "", "output directory, overriding out_dir of the job file")
	root.Flags().IntVarP(&parallelism, "jobs", "j", 0, "number of artifacts rewritten in parallel (default: number of CPUs)")
	root.Flags().IntVar(&shardSize, "shard_size", namespace.DefaultShardSize, "resource files per work item")
	root.Flags().BoolVar(&keepGoing, "keep_going", false, "keep rewriting after a failure and report every error")
	root.MarkFlagRequired("job")

	root.AddCommand(newReverseCommand(fs, stdout, stderr, flags))
	return root
}

func runJob(ctx context.Context, fs afero.Fs, logger *logrus.Logger, stdout io.Writer,
	jobFile string, config namespace.Config) error {

	job, err := loadJob(fs, jobFile)
	if err != nil {
		return err
	}
	g, err := job.graph()
	if err != nil {
		return fmt.Errorf("%s: %w", jobFile, err)
	}
	if config.OutDir, err = job.outDir(config.OutDir); err != nil {
		return err
	}
	config.Fs = fs
	config.Logger = logger

	result, err := namespace.New(config).Run(ctx, g)
	if result != nil {
		for _, out := range result.Outputs {
			fmt.Fprintln(stdout, out)
		}
		logger.WithFields(logrus.Fields{
			"components": g.Len(),
			"outputs":    len(result.Outputs),
			"warnings":   len(result.Warnings),
		}).Info("namespaced")
	}
	return err
}

func newReverseCommand(fs afero.Fs, stdout, stderr io.Writer, flags *globalFlags) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "reverse --in <res dir> --out <dir>",
		Short: "Turn a namespaced resource directory back into the flat res-auto form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(stderr, flags)
			outputs, err := namespace.ReverseResourceDir(fs, in, out)
			for _, o := range outputs {
				fmt.Fprintln(stdout, o)
			}
			if err != nil {
				logger.Error(err)
				return err
			}
			logger.WithField("outputs", len(outputs)).Debug("reversed")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "namespaced resource directory")
	cmd.Flags().StringVar(&out, "out", "", "output directory")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}
