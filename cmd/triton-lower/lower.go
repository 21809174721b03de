// Copyright 2017, Pulumi Corporation.  All rights reserved.

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/analysis"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/conversion"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/cmdutil"
)

func newLowerCmd() *cobra.Command {
	var target string
	var capability int
	var showInput bool
	cmd := &cobra.Command{
		Use:   "lower",
		Short: "Lower a demonstration tile-parallel module and print the result",
		Long: "Lower a demonstration tile-parallel module and print the result\n" +
			"\n" +
			"Frontends construct tile-parallel IR in memory and hand it to the lowering pass\n" +
			"together with their instruction-selection rule libraries.  This command builds a\n" +
			"small representative module, runs the pass against the chosen backend family, and\n" +
			"prints the lowered IR, which is useful for inspecting what each target emits.",
		Run: cmdutil.RunFunc(func(cmd *cobra.Command, args []string) error {
			tgt, has := conversion.Values[target]
			if !has {
				return errors.Errorf("unrecognized target '%v'; run 'triton-lower targets' for the list", target)
			}

			m := demoModule()
			if showInput {
				fmt.Println(m)
			}

			pass, err := conversion.NewPass(conversion.Options{
				Target:            tgt,
				ComputeCapability: capability,
				Libraries:         []conversion.PopulateFunc{demoLibrary},
				Diag:              cmdutil.Diag(),
			})
			if err != nil {
				return err
			}
			if err := pass.Run(m); err != nil {
				return errors.Wrap(err, "lowering failed")
			}

			fmt.Println(m)
			return nil
		}),
	}

	cmd.PersistentFlags().StringVar(&target, "target", "nvvm", "The native backend family to emit")
	cmd.PersistentFlags().IntVar(&capability, "capability", 90, "The hardware version integer")
	cmd.PersistentFlags().BoolVar(&showInput, "show-input", false, "Also print the module before lowering")
	return cmd
}

// demoModule builds the representative input: a kernel that reads its program id, broadcasts it into a tile,
// shuffles the tile through scratch memory twice, and calls a device helper.
func demoModule() *ir.Module {
	m := ir.NewModule()

	helper := m.NewFunction("helper", ir.NewFunctionType([]ir.Type{ir.I32}, []ir.Type{ir.I32}))
	hbld := ir.NewBuilderAtEnd(helper.Entry())
	doubled := hbld.New(ir.ArithAddI, []ir.Type{ir.I32}, helper.Params()[0], helper.Params()[0])
	hbld.New(ir.TTReturn, nil, doubled.Result(0))

	kern := m.NewKernel("demo_kernel", ir.NewFunctionType(nil, nil))
	bld := ir.NewBuilderAtEnd(kern.Entry())
	tensorTy := ir.NewTensorType([]int64{128}, ir.I32, &ir.BlockedEncoding{})

	pid := bld.New(ir.TTGetProgramID, []ir.Type{ir.I32})
	call := bld.New(ir.TTCall, []ir.Type{ir.I32}, pid.Result(0))
	call.Attrs.SetString(ir.AttrCallee, "helper")
	tile := bld.New(ir.TTSplat, []ir.Type{tensorTy}, call.Result(0))
	shuffle1 := bld.New(ir.TTGConvertLayout, []ir.Type{tensorTy}, tile.Result(0))
	shuffle1.Attrs.SetInt(ir.AttrAllocationSize, 512)
	shuffle2 := bld.New(ir.TTGConvertLayout, []ir.Type{tensorTy}, shuffle1.Result(0))
	shuffle2.Attrs.SetInt(ir.AttrAllocationSize, 512)
	bld.New(ir.TTStore, nil, shuffle2.Result(0))
	bld.New(ir.TTReturn, nil)

	return m
}

// demoPattern is a 1:1 instruction-selection rule, the simplest form an external rule library contributes.
type demoPattern struct {
	from ir.Kind
	to   ir.Kind
}

func (p *demoPattern) Kind() ir.Kind { return p.from }
func (p *demoPattern) Benefit() int  { return 10 }

func (p *demoPattern) MatchAndRewrite(op *ir.Operation, rw *conversion.Rewriter) (bool, error) {
	bld := ir.NewBuilderBefore(op)
	var resultTypes []ir.Type
	for _, res := range op.Results() {
		resultTypes = append(resultTypes, rw.TypeConverter().ConvertType(res.Type()))
	}
	repl := bld.New(p.to, resultTypes, op.Operands()...)
	repl.Attrs = op.Attrs.Copy()
	rw.ReplaceOp(op, repl.Results()...)
	return true, nil
}

// demoLibrary lowers the demonstration module's tile operations; real frontends register their full rule
// libraries here instead.
func demoLibrary(tc *conversion.TypeConverter, set *conversion.PatternSet, numWarps int,
	axisInfo *analysis.ModuleAxisInfo, target conversion.Target, benefit int) {
	set.Add(
		&demoPattern{from: ir.TTGetProgramID, to: ir.GPUBlockID},
		&demoPattern{from: ir.TTSplat, to: ir.LLVMBitcast},
		&demoPattern{from: ir.TTGConvertLayout, to: ir.LLVMBitcast},
		&demoPattern{from: ir.TTStore, to: ir.LLVMStore},
	)
}
