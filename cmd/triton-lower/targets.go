// Copyright 2017, Pulumi Corporation.  All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/conversion"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/cmdutil"
)

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the native backend families lowering can emit",
		Run: cmdutil.RunFunc(func(cmd *cobra.Command, args []string) error {
			var names []string
			for name := range conversion.Values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}),
	}
}
