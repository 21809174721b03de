// Copyright 2017, Pulumi Corporation.  All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/cmdutil"
)

const version = "0.0.1"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print triton-lower's version number",
		Run: cmdutil.RunFunc(func(cmd *cobra.Command, args []string) error {
			fmt.Printf("triton-lower version %v\n", version)
			return nil
		}),
	}
}
