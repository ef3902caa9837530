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

// Package runner drives a Cairo program from load to relocated output.
package runner

import (
	"time"

	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/hint"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/Aurorachain/go-cairo/log"
	"github.com/Aurorachain/go-cairo/metrics"
	"github.com/pkg/errors"
)

var (
	runTimer     = metrics.NewTimer("runner/run")
	exhaustMeter = metrics.NewMeter("runner/exhausted")
)

type State uint8

const (
	Uninitialized State = iota
	Initialized
	Running
	Ended
	Relocated
	Verified
)

var stateNames = [...]string{"uninitialized", "initialized", "running", "ended", "relocated", "verified"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// CairoRunner owns one machine for the whole life of a run.
type CairoRunner struct {
	program *program.Program
	config  Config
	layout  builtins.Layout

	vm     *vm.VirtualMachine
	scopes *scopes.ExecutionScopes
	hints  *hint.Processor

	compiledHints map[uint][]interface{}
	state         State

	segmentsReady bool
	programBase   vm.Relocatable
	executionBase vm.Relocatable
	initialPC     vm.Relocatable
	initialAP     vm.Relocatable
	initialFP     vm.Relocatable

	relocated       bool
	relocatedTrace  []vm.RelocatedTraceEntry
	relocatedMemory []vm.RelocatedCell
}

// New validates the program's builtins against the layout and prepares an
// uninitialized runner.
func New(prog *program.Program, cfg Config) (*CairoRunner, error) {
	layout, err := builtins.GetLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	if err := layout.CheckBuiltins(prog.Builtins); err != nil {
		return nil, err
	}
	hints, err := hint.NewProcessor(prog)
	if err != nil {
		return nil, err
	}
	return &CairoRunner{
		program: prog,
		config:  cfg,
		layout:  layout,
		vm:      vm.NewVirtualMachine(cfg.TraceEnabled),
		scopes:  scopes.NewExecutionScopes(),
		hints:   hints,
	}, nil
}

func (r *CairoRunner) VM() *vm.VirtualMachine         { return r.vm }
func (r *CairoRunner) Program() *program.Program       { return r.program }
func (r *CairoRunner) Scopes() *scopes.ExecutionScopes { return r.scopes }
func (r *CairoRunner) State() State                    { return r.state }

// HintLocals returns the hint locals as updated by the hints run so far.
func (r *CairoRunner) HintLocals() map[string]interface{} {
	return r.hints.HintLocals()
}

func (r *CairoRunner) SetHintLocals(locals map[string]interface{}) {
	r.hints.SetHintLocals(locals)
}

func (r *CairoRunner) SetStaticLocals(locals map[string]interface{}) {
	r.hints.SetStaticLocals(locals)
}

func (r *CairoRunner) declares(name string) bool {
	for _, b := range r.program.Builtins {
		if b == name {
			return true
		}
	}
	return false
}

// initializeBuiltins creates the runners of a main run, which are exactly
// the declared ones, or of a function run, which get every builtin with
// only the declared ones included.
func (r *CairoRunner) initializeBuiltins(all bool) error {
	names := r.layout.Builtins
	if all {
		names = builtins.CanonicalOrder
	}
	for _, name := range names {
		included := r.declares(name)
		if !included && !all {
			continue
		}
		b, err := builtins.NewBuiltinRunner(name, included)
		if err != nil {
			return err
		}
		r.vm.BuiltinRunners = append(r.vm.BuiltinRunners, b)
	}
	return nil
}

// InitializeSegments allocates the program and execution segments followed
// by one segment per builtin runner.
func (r *CairoRunner) InitializeSegments() {
	r.programBase = r.vm.Segments.Add()
	r.executionBase = r.vm.Segments.Add()
	for _, b := range r.vm.BuiltinRunners {
		b.InitializeSegments(r.vm.Segments)
	}
	r.segmentsReady = true
}

// InitializeFunctionRunner prepares a runner for RunFromEntrypoint.
func (r *CairoRunner) InitializeFunctionRunner() error {
	if r.segmentsReady {
		return ErrAlreadyInitialized
	}
	if err := r.initializeBuiltins(true); err != nil {
		return err
	}
	r.InitializeSegments()
	return nil
}

// Initialize lays out a main run: builtin segments, the entry stack
// [builtins..., return_fp, end] and the program data. It returns the pc at
// which the run is complete.
func (r *CairoRunner) Initialize() (vm.Relocatable, error) {
	if r.state != Uninitialized || r.segmentsReady {
		return vm.Relocatable{}, ErrAlreadyInitialized
	}
	if r.program.Main == nil {
		return vm.Relocatable{}, ErrMissingMain
	}
	if err := r.initializeBuiltins(false); err != nil {
		return vm.Relocatable{}, err
	}
	r.InitializeSegments()

	stack := r.GetProgramBuiltinsInitialStack()
	returnFP := r.vm.Segments.Add()
	end, err := r.initializeFunctionEntrypoint(*r.program.Main, stack, vm.FromRelocatable(returnFP))
	if err != nil {
		return vm.Relocatable{}, err
	}
	if err := r.initializeVM(); err != nil {
		return vm.Relocatable{}, err
	}
	log.Info("Runner initialized", log.String("layout", r.layout.Name), log.Int("builtins", len(r.vm.BuiltinRunners)), log.Stringer("end", end))
	return end, nil
}

// initializeFunctionEntrypoint pushes returnFP and a fresh end address onto
// stack and loads program and stack into memory.
func (r *CairoRunner) initializeFunctionEntrypoint(entrypoint uint, stack []vm.MaybeRelocatable, returnFP vm.MaybeRelocatable) (vm.Relocatable, error) {
	end := r.vm.Segments.Add()
	stack = append(stack, returnFP, vm.FromRelocatable(end))
	r.initialFP = r.executionBase.Add(uint(len(stack)))
	r.initialAP = r.initialFP
	r.initialPC = r.programBase.Add(entrypoint)
	if err := r.initializeState(stack); err != nil {
		return vm.Relocatable{}, err
	}
	return end, nil
}

func (r *CairoRunner) initializeState(stack []vm.MaybeRelocatable) error {
	if _, err := r.vm.Segments.LoadData(r.programBase, r.program.Data); err != nil {
		return errors.Wrap(err, "loading program")
	}
	r.vm.MarkAddressRangeAsAccessed(r.programBase, uint(len(r.program.Data)))
	if _, err := r.vm.Segments.LoadData(r.executionBase, stack); err != nil {
		return errors.Wrap(err, "loading entry stack")
	}
	return nil
}

// initializeVM sets the registers and installs the builtin validation
// rules, checking the memory already written.
func (r *CairoRunner) initializeVM() error {
	r.vm.RunContext = vm.RunContext{PC: r.initialPC, AP: r.initialAP, FP: r.initialFP}
	mem := r.vm.Segments.Memory
	for _, b := range r.vm.BuiltinRunners {
		b.AddValidationRule(mem)
	}
	if err := mem.ValidateExistingMemory(); err != nil {
		return err
	}
	r.state = Initialized
	return nil
}

// InitialFP is the frame pointer the entrypoint starts with.
func (r *CairoRunner) InitialFP() (vm.Relocatable, error) {
	if r.state == Uninitialized {
		return vm.Relocatable{}, ErrNotInitialized
	}
	return r.initialFP, nil
}

// RunUntilPC steps until pc reaches target. A non-nil budget is decremented
// per step; reaching zero first fails with ErrResourcesExhausted.
func (r *CairoRunner) RunUntilPC(target vm.Relocatable, budget *uint64) error {
	if r.state == Uninitialized {
		return ErrNotInitialized
	}
	if r.compiledHints == nil {
		compiled, err := r.hints.CompileHints()
		if err != nil {
			return err
		}
		r.compiledHints = compiled
	}
	defer runTimer.UpdateSince(time.Now())

	r.state = Running
	for r.vm.RunContext.PC != target {
		if budget != nil {
			if *budget == 0 {
				exhaustMeter.Mark(1)
				return errors.Wrapf(ErrResourcesExhausted, "pc %v after %d steps", r.vm.RunContext.PC, r.vm.CurrentStep)
			}
			*budget--
		}
		if err := r.vm.Step(r.hints, r.scopes, r.compiledHints); err != nil {
			return r.vmException(err)
		}
	}
	return nil
}

// EndRun finalizes the builtin segments and checks that every hint scope
// was exited.
func (r *CairoRunner) EndRun() error {
	if r.state >= Ended {
		return ErrEndRunCalledTwice
	}
	if r.state == Uninitialized {
		return ErrNotInitialized
	}
	if err := r.vm.EndRun(r.scopes); err != nil {
		return err
	}
	r.vm.Segments.ComputeEffectiveSizes()
	r.state = Ended
	log.Info("Run ended", log.Uint("steps", r.vm.CurrentStep), log.Int("segments", r.vm.Segments.NumSegments()))
	return nil
}

// ReadReturnValues consumes the builtin stop pointers a main run leaves on
// top of its stack, last builtin first.
func (r *CairoRunner) ReadReturnValues() error {
	if r.state < Ended {
		return ErrRunNotFinished
	}
	_, err := r.finalStack(r.vm.RunContext.AP, r.config.StrictBuiltins)
	return err
}

func (r *CairoRunner) finalStack(pointer vm.Relocatable, strict bool) (vm.Relocatable, error) {
	runners := r.vm.BuiltinRunners
	for i := len(runners) - 1; i >= 0; i-- {
		b := runners[i]
		if !r.declares(b.Name()) {
			if strict {
				return vm.Relocatable{}, errors.Wrap(ErrUndeclaredBuiltin, b.Name())
			}
			log.Debug("Skipping undeclared builtin", log.String("name", b.Name()))
			continue
		}
		next, _, err := b.FinalStack(r.vm.Segments, pointer)
		if err != nil {
			return vm.Relocatable{}, err
		}
		pointer = next
	}
	return pointer, nil
}

// GetBuiltinsFinalStack reconciles every runner against the stack ending
// at stackPtr and returns the pointer below the consumed stop pointers.
func (r *CairoRunner) GetBuiltinsFinalStack(stackPtr vm.Relocatable) (vm.Relocatable, error) {
	runners := r.vm.BuiltinRunners
	for i := len(runners) - 1; i >= 0; i-- {
		next, _, err := runners[i].FinalStack(r.vm.Segments, stackPtr)
		if err != nil {
			return vm.Relocatable{}, err
		}
		stackPtr = next
	}
	return stackPtr, nil
}

// GetProgramBuiltinsInitialStack returns the initial stacks of the
// builtins the program declares, in order.
func (r *CairoRunner) GetProgramBuiltinsInitialStack() []vm.MaybeRelocatable {
	var stack []vm.MaybeRelocatable
	for _, b := range r.vm.BuiltinRunners {
		if r.declares(b.Name()) {
			stack = append(stack, b.InitialStack()...)
		}
	}
	return stack
}

// GetBuiltinsInitialStack returns the initial stack of every runner.
func (r *CairoRunner) GetBuiltinsInitialStack() [][]vm.MaybeRelocatable {
	out := make([][]vm.MaybeRelocatable, len(r.vm.BuiltinRunners))
	for i, b := range r.vm.BuiltinRunners {
		out[i] = b.InitialStack()
	}
	return out
}

// AddAdditionalHashBuiltin attaches an extra pedersen runner, replacing an
// earlier one, and returns its base.
func (r *CairoRunner) AddAdditionalHashBuiltin() vm.Relocatable {
	b := builtins.NewAdditionalHashBuiltinRunner()
	b.InitializeSegments(r.vm.Segments)
	b.AddValidationRule(r.vm.Segments.Memory)
	for i, existing := range r.vm.BuiltinRunners {
		if existing.Name() == builtins.AdditionalHashName {
			r.vm.BuiltinRunners[i] = b
			return b.Base()
		}
	}
	r.vm.BuiltinRunners = append(r.vm.BuiltinRunners, b)
	return b.Base()
}

// Relocate flattens memory and, when enabled, the trace. It may be called
// again on the same state and yields the same result.
func (r *CairoRunner) Relocate() error {
	if r.state < Ended {
		return ErrRunNotFinished
	}
	table, err := r.vm.Segments.RelocateSegments()
	if err != nil {
		return err
	}
	mem, err := r.vm.Segments.RelocateMemory(table)
	if err != nil {
		return err
	}
	if r.vm.TraceEnabled() {
		trace, err := r.vm.RelocateTrace(table)
		if err != nil {
			return err
		}
		r.relocatedTrace = trace
	}
	r.relocatedMemory = mem
	r.relocated = true
	if r.state < Relocated {
		r.state = Relocated
	}
	log.Debug("Relocated memory", log.Int("cells", len(mem)), log.Int("trace", len(r.relocatedTrace)))
	return nil
}

func (r *CairoRunner) RelocatedTrace() ([]vm.RelocatedTraceEntry, error) {
	if !r.vm.TraceEnabled() {
		return nil, vm.ErrTraceNotEnabled
	}
	if !r.relocated {
		return nil, ErrNotRelocated
	}
	return r.relocatedTrace, nil
}

func (r *CairoRunner) RelocatedMemory() ([]vm.RelocatedCell, error) {
	if !r.relocated {
		return nil, ErrNotRelocated
	}
	return r.relocatedMemory, nil
}

func (r *CairoRunner) AddSegment() vm.Relocatable {
	return r.vm.Segments.Add()
}

// Insert writes a host value; integers must already lie in [0, P).
func (r *CairoRunner) Insert(addr vm.Relocatable, value interface{}) error {
	v, err := vm.ToMaybeRelocatable(value, false)
	if err != nil {
		return err
	}
	return r.vm.Segments.Memory.Insert(addr, v)
}

func (r *CairoRunner) Get(addr vm.Relocatable) (vm.MaybeRelocatable, bool) {
	return r.vm.Segments.Memory.Get(addr)
}

func (r *CairoRunner) GetRange(addr vm.Relocatable, n uint) ([]vm.MaybeRelocatable, error) {
	return r.vm.Segments.Memory.GetRange(addr, n)
}

func (r *CairoRunner) GetReturnValues(n uint) ([]vm.MaybeRelocatable, error) {
	return r.vm.GetReturnValues(n)
}

func (r *CairoRunner) GetSegmentUsedSize(index int) (uint, error) {
	return r.vm.Segments.GetSegmentUsedSize(index)
}

// MarkAsAccessed marks n cells from addr as accessed once the run ended.
func (r *CairoRunner) MarkAsAccessed(addr vm.Relocatable, n uint) error {
	if r.state < Ended {
		return ErrRunNotFinished
	}
	r.vm.MarkAddressRangeAsAccessed(addr, n)
	return nil
}
