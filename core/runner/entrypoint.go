// Copyright 2018 The go-aurora Authors
// This file is part of the go-aurora library.
//
// The go-aurora library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-aurora library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-aurora library. If not, see <http://www.gnu.org/licenses/>.

package runner

import (
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

type ArgKind uint8

const (
	TypeFelt ArgKind = iota
	TypePointer
	TypeStruct
)

// TypedArg is an entrypoint argument annotated with its Cairo type. A
// struct argument is flattened into its members.
type TypedArg struct {
	Kind    ArgKind
	Value   interface{}
	Members []TypedArg
}

// RunOptions controls RunFromEntrypoint. Resources is the step budget,
// nil for unlimited.
type RunOptions struct {
	Typed        bool
	VerifySecure bool
	ApplyModulus bool
	Resources    *uint64

	HintLocals   map[string]interface{}
	StaticLocals map[string]interface{}
}

// DefaultRunOptions verifies the run and reduces arguments modulo P.
func DefaultRunOptions() RunOptions {
	return RunOptions{VerifySecure: true, ApplyModulus: true}
}

// RunFromEntrypoint calls the function at pc offset entrypoint with args,
// returning to a synthetic end address. The run is ended but not
// relocated. With opts.Typed every arg must be a TypedArg.
func (r *CairoRunner) RunFromEntrypoint(entrypoint uint, args []interface{}, opts RunOptions) error {
	if !r.segmentsReady {
		if err := r.InitializeFunctionRunner(); err != nil {
			return err
		}
	}
	if opts.HintLocals != nil {
		r.SetHintLocals(opts.HintLocals)
	}
	r.SetStaticLocals(opts.StaticLocals)

	var (
		stack []vm.MaybeRelocatable
		err   error
	)
	if opts.Typed {
		stack, err = r.genTypedArgs(args)
	} else {
		stack, err = r.genArgs(args, opts.ApplyModulus)
	}
	if err != nil {
		return err
	}

	end, err := r.initializeFunctionEntrypoint(entrypoint, stack, vm.NewInt(0))
	if err != nil {
		return err
	}
	if err := r.initializeVM(); err != nil {
		return err
	}
	if err := r.RunUntilPC(end, opts.Resources); err != nil {
		return err
	}
	if err := r.EndRun(); err != nil {
		return err
	}
	if opts.VerifySecure {
		return r.VerifySecureRunner(false)
	}
	return nil
}

// RunFromEntrypointName resolves a function of the main scope by name.
func (r *CairoRunner) RunFromEntrypointName(name string, args []interface{}, opts RunOptions) error {
	pc, ok := r.program.EntrypointPC(name)
	if !ok {
		return errors.Wrapf(ErrInvalidArgs, "unknown entrypoint %q", name)
	}
	return r.RunFromEntrypoint(pc, args, opts)
}

func (r *CairoRunner) genArgs(args []interface{}, applyModulus bool) ([]vm.MaybeRelocatable, error) {
	stack := make([]vm.MaybeRelocatable, 0, len(args))
	for i, arg := range args {
		v, err := r.vm.Segments.GenArg(arg, applyModulus)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArgs, "argument %d: %v", i, err)
		}
		stack = append(stack, v)
	}
	return stack, nil
}

func (r *CairoRunner) genTypedArgs(args []interface{}) ([]vm.MaybeRelocatable, error) {
	var stack []vm.MaybeRelocatable
	for i, arg := range args {
		typed, ok := arg.(TypedArg)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArgs, "argument %d is %T, not a typed argument", i, arg)
		}
		words, err := r.flattenTypedArg(typed)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		stack = append(stack, words...)
	}
	return stack, nil
}

func (r *CairoRunner) flattenTypedArg(arg TypedArg) ([]vm.MaybeRelocatable, error) {
	switch arg.Kind {
	case TypeFelt, TypePointer:
		v, err := r.vm.Segments.GenArg(arg.Value, true)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidArgs, err.Error())
		}
		return []vm.MaybeRelocatable{v}, nil
	case TypeStruct:
		var words []vm.MaybeRelocatable
		for _, m := range arg.Members {
			w, err := r.flattenTypedArg(m)
			if err != nil {
				return nil, err
			}
			words = append(words, w...)
		}
		return words, nil
	}
	return nil, errors.Wrapf(ErrInvalidArgs, "unsupported argument type %d", arg.Kind)
}
