// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"github.com/golang/glog"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
)

// scratchGlobalName is the module-wide symbol kernels read their scratch base from.
const scratchGlobalName = "global_smem"

// initSharedMemory declares the module's scratch memory.  The array is declared zero-length with external
// linkage so that the actual size can be finalized at link or launch time without recompiling; 16-byte alignment
// covers the widest access the lowering ever emits.  Families that manage scratch memory through a different
// mechanism declare nothing.
func (p *Pass) initSharedMemory(m *ir.Module) {
	if !p.cfg.emitScratchGlobal {
		return
	}
	glog.V(2).Infof("Declaring %v", scratchGlobalName)
	m.AddGlobal(&ir.Global{
		Name:         scratchGlobalName,
		Type:         &ir.ArrayType{Elem: ir.I8, Size: 0},
		Linkage:      ir.ExternalLinkage,
		Alignment:    16,
		AddressSpace: ir.SharedAddressSpace,
	})
}
