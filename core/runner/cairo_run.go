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
	"fmt"
	"io"
	"os"

	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

// CairoRunOptions configures a full program run. Output receives the
// program output when non-nil; TraceFile and MemoryFile name the binary
// artifacts to write, if any.
type CairoRunOptions struct {
	HintLocals   map[string]interface{}
	StaticLocals map[string]interface{}
	Steps        *uint64

	Output     io.Writer
	TraceFile  string
	MemoryFile string
}

// CairoRun runs the program's main entrypoint to completion: initialize,
// run, end the run, reconcile builtins, relocate, verify, then emit the
// requested artifacts.
func (r *CairoRunner) CairoRun(opts CairoRunOptions) error {
	if opts.TraceFile != "" && !r.vm.TraceEnabled() {
		return errors.Wrap(vm.ErrTraceNotEnabled, "trace file requested")
	}
	end, err := r.Initialize()
	if err != nil {
		return err
	}
	if opts.HintLocals != nil {
		r.SetHintLocals(opts.HintLocals)
	}
	r.SetStaticLocals(opts.StaticLocals)

	if err := r.RunUntilPC(end, opts.Steps); err != nil {
		return err
	}
	if err := r.EndRun(); err != nil {
		return err
	}
	if err := r.ReadReturnValues(); err != nil {
		return err
	}
	if err := r.Relocate(); err != nil {
		return err
	}
	if err := r.VerifySecureRunner(true); err != nil {
		return err
	}

	if opts.Output != nil {
		fmt.Fprintln(opts.Output, "Program Output:")
		if err := r.WriteOutput(opts.Output); err != nil && err != ErrNoOutputBuiltin {
			return err
		}
	}
	if opts.TraceFile != "" {
		trace, err := r.RelocatedTrace()
		if err != nil {
			return err
		}
		if err := writeFile(opts.TraceFile, func(w io.Writer) error { return WriteEncodedTrace(trace, w) }); err != nil {
			return err
		}
	}
	if opts.MemoryFile != "" {
		if err := writeFile(opts.MemoryFile, func(w io.Writer) error { return WriteEncodedMemory(r.relocatedMemory, w) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}
