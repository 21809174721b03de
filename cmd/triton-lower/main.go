// Copyright 2017, Pulumi Corporation.  All rights reserved.

package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/cmdutil"
)

func main() {
	if err := NewTritonLowerCmd().Execute(); err != nil {
		cmdutil.Exit(err)
		os.Exit(-1)
	}
}

// NewTritonLowerCmd creates a new triton-lower Cmd instance.
func NewTritonLowerCmd() *cobra.Command {
	var logToStderr bool
	var verbose int
	cmd := &cobra.Command{
		Use:   "triton-lower",
		Short: "triton-lower converts tile-parallel GPU IR into native backend IR",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmdutil.InitLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")

	cmd.AddCommand(newLowerCmd())
	cmd.AddCommand(newTargetsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
