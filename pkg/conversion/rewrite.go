// Copyright 2017, Pulumi Corporation.  All rights reserved.

package conversion

import (
	"sort"

	"github.com/golang/glog"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/diag"
	irerrors "github.com/chsasank/intel-xpu-backend-for-triton/pkg/errors"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/ir"
	"github.com/chsasank/intel-xpu-backend-for-triton/pkg/util/contract"
)

// ConversionTarget is one phase's definition of legal IR: the set of operation kinds acceptable as that phase's
// output.  Anything illegal must be rewritten by a matching rule or the phase fails.
type ConversionTarget struct {
	legalDialects map[ir.Dialect]bool
	legalKinds    map[ir.Kind]bool
	illegalKinds  map[ir.Kind]bool

	// strict marks the bulk phase: any operation whose dialect is not explicitly legal is illegal.  Non-strict
	// targets treat only the explicit illegal entries as requiring conversion.
	strict bool
}

func newConversionTarget(strict bool, legal ...ir.Dialect) *ConversionTarget {
	ct := &ConversionTarget{
		legalDialects: make(map[ir.Dialect]bool),
		legalKinds:    map[ir.Kind]bool{ir.BuiltinUnrealizedCast: true},
		illegalKinds:  make(map[ir.Kind]bool),
		strict:        strict,
	}
	for _, d := range legal {
		ct.legalDialects[d] = true
	}
	return ct
}

// AddLegalDialect marks every operation of a dialect legal.
func (ct *ConversionTarget) AddLegalDialect(d ir.Dialect) { ct.legalDialects[d] = true }

// AddIllegalKind marks a single operation kind illegal, overriding its dialect's legality.
func (ct *ConversionTarget) AddIllegalKind(k ir.Kind) { ct.illegalKinds[k] = true }

// Illegal decides whether an operation must be converted before the current phase may complete.
func (ct *ConversionTarget) Illegal(op *ir.Operation) bool {
	kind := op.Kind()
	if ct.illegalKinds[kind] {
		return true
	}
	if ct.legalKinds[kind] {
		return false
	}
	if ct.legalDialects[kind.Dialect()] {
		return false
	}
	return ct.strict
}

// Pattern rewrites one kind of illegal operation into legal form.
type Pattern interface {
	// Kind names the root operation kind this pattern matches.
	Kind() ir.Kind
	// Benefit orders patterns matching the same kind; higher runs first.
	Benefit() int
	// MatchAndRewrite attempts the rewrite.  It returns false if the pattern does not apply, and a non-nil
	// error if the operation matched but cannot be lowered; errors are fatal for the phase.
	MatchAndRewrite(op *ir.Operation, rw *Rewriter) (bool, error)
}

// PatternSet collects lowering rules, indexed by root operation kind.
type PatternSet struct {
	patterns map[ir.Kind][]Pattern
}

// NewPatternSet creates an empty rule set.
func NewPatternSet() *PatternSet {
	return &PatternSet{patterns: make(map[ir.Kind][]Pattern)}
}

// Add registers rules with the set.
func (set *PatternSet) Add(patterns ...Pattern) {
	for _, p := range patterns {
		contract.Require(p != nil, "patterns")
		kind := p.Kind()
		set.patterns[kind] = append(set.patterns[kind], p)
		sort.SliceStable(set.patterns[kind], func(i, j int) bool {
			return set.patterns[kind][i].Benefit() > set.patterns[kind][j].Benefit()
		})
	}
}

// For returns the rules matching the given kind, best benefit first.
func (set *PatternSet) For(kind ir.Kind) []Pattern {
	return set.patterns[kind]
}

// Rewriter is handed to patterns so their rewrites go through one place.
type Rewriter struct {
	tc   *TypeConverter
	sink diag.Sink
}

// TypeConverter returns the active type converter.
func (rw *Rewriter) TypeConverter() *TypeConverter { return rw.tc }

// ReplaceOp redirects all uses of op's results to the given values, then erases op.
func (rw *Rewriter) ReplaceOp(op *ir.Operation, repls ...*ir.Value) {
	op.ReplaceAllUsesWith(repls...)
	op.Erase()
}

// applyPartialConversion drives one legalization phase: it sweeps the module rewriting every illegal operation
// through the rule set, iterating until no rewrite fires, then verifies that the illegal set is empty.  An
// illegal operation matched by no rule is fatal; there is no rollback.
func applyPartialConversion(m *ir.Module, phase string, ct *ConversionTarget, set *PatternSet,
	rw *Rewriter) error {

	glog.V(1).Infof("Lowering phase '%v' starting", phase)

	var failure *multierror.Error
	for iteration := 0; ; iteration++ {
		contract.Assertf(iteration < maxConversionSweeps,
			"Phase '%v' did not converge after %v sweeps", phase, maxConversionSweeps)

		converted := 0
		m.WalkOps(func(op *ir.Operation) {
			if op.Block() == nil || !ct.Illegal(op) {
				return
			}
			for _, p := range set.For(op.Kind()) {
				ok, err := p.MatchAndRewrite(op, rw)
				if err != nil {
					failure = multierror.Append(failure, errors.Wrapf(err, "lowering %v", op.Kind()))
					return
				}
				if ok {
					converted++
					return
				}
			}
		})
		if converted == 0 || failure != nil {
			break
		}
	}

	// The phase completes only with an empty illegal set; report every leftover, not just the first.
	if failure == nil {
		m.WalkOps(func(op *ir.Operation) {
			if op.Block() == nil || !ct.Illegal(op) {
				return
			}
			rw.sink.Errorf(irerrors.ErrorIllegalOperationRemains.At(op), op.Kind())
			failure = multierror.Append(failure,
				errors.Errorf("no rule matched illegal operation %v", op.Kind()))
		})
	}

	if failure != nil {
		rw.sink.Errorf(irerrors.ErrorStructuralLegalization, phase, failure.Len())
		return &LegalizationError{Phase: phase, Err: failure.ErrorOrNil()}
	}

	glog.V(1).Infof("Lowering phase '%v' completed", phase)
	return nil
}

// maxConversionSweeps bounds the fixpoint iteration; every sweep must erase at least one illegal operation, so
// hitting the bound means a rule is reintroducing illegal IR.
const maxConversionSweeps = 32
