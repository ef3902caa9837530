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

package hint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aurorachain/go-cairo/common/felt"
	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/scopes"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/Aurorachain/go-cairo/internal/jsre"
	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
)

type scopeOp struct {
	enter bool
	vars  map[string]interface{}
}

type pendingSignature struct {
	addr vm.Relocatable
	r, s felt.Felt
}

// scriptContext is the state of one scripted hint evaluation.
type scriptContext struct {
	p    *Processor
	vm   *vm.VirtualMachine
	data *HintData
	otto *otto.Otto

	bindings map[string]bool
	ops      []scopeOp
	sigs     []pendingSignature
	cause    error // last machine error raised into the script
}

func (p *Processor) executeScript(v *vm.VirtualMachine, data *HintData, sc *scopes.ExecutionScopes) error {
	frame := sc.LocalVariables()
	ctx := &scriptContext{p: p, vm: v, data: data, bindings: make(map[string]bool)}
	var err error
	p.re.Do(func(o *otto.Otto) {
		ctx.otto = o
		err = ctx.run(frame)
	})
	if err != nil {
		return err
	}
	return ctx.finish(sc)
}

func (ctx *scriptContext) run(frame map[string]interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ScriptError{Msg: fmt.Sprint(r), Cause: ctx.cause}
		}
	}()
	o := ctx.otto

	baseline, err := ctx.globalKeys()
	if err != nil {
		return err
	}
	for _, locals := range []map[string]interface{}{frame, ctx.p.hintLocals, ctx.p.staticLocals} {
		for name, val := range locals {
			jsVal, err := toJS(o, val)
			if err != nil {
				return errors.Wrapf(err, "injecting %s", name)
			}
			if err := o.Set(name, jsVal); err != nil {
				return err
			}
		}
	}
	if err := ctx.bind(); err != nil {
		return err
	}

	tracked := make([]string, 0, len(frame)+len(ctx.p.hintLocals))
	for _, locals := range []map[string]interface{}{frame, ctx.p.hintLocals} {
		for name := range locals {
			tracked = append(tracked, name)
		}
	}
	sort.Strings(tracked)
	snap, err := o.Call("__snapshot", nil, strings.Join(tracked, "\n"))
	if err != nil {
		return err
	}
	script, err := ctx.p.re.Compile(o, "hint", ctx.data.Code)
	if err != nil {
		return &ScriptError{Msg: err.Error()}
	}
	if _, err := o.Run(script); err != nil {
		return ctx.scriptError(err)
	}

	changed, err := o.Call("__changed", nil, snap)
	if err != nil {
		return err
	}
	for _, name := range strings.Split(changed.String(), "\n") {
		if name == "" || baseline[name] || ctx.bindings[name] {
			continue
		}
		if _, static := ctx.p.staticLocals[name]; static {
			continue
		}
		val, err := o.Get(name)
		if err != nil {
			return err
		}
		if val.IsFunction() {
			continue
		}
		host, err := fromJS(o, val)
		if err != nil {
			return errors.Wrapf(err, "reading back %s", name)
		}
		if _, local := ctx.p.hintLocals[name]; local {
			ctx.p.hintLocals[name] = host
		} else {
			frame[name] = host
		}
	}
	return nil
}

func (ctx *scriptContext) scriptError(err error) error {
	msg := err.Error()
	if ctx.cause != nil {
		return &ScriptError{Msg: msg, Cause: ctx.cause}
	}
	if strings.HasPrefix(msg, "ReferenceError") {
		return errors.Wrap(ErrUnknownIdentifier, msg)
	}
	return &ScriptError{Msg: msg}
}

func (ctx *scriptContext) globalKeys() (map[string]bool, error) {
	keys, err := ctx.otto.Call("__globalKeys", nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, k := range strings.Split(keys.String(), "\n") {
		out[k] = true
	}
	return out, nil
}

// throw raises err inside the script, remembering it as the cause should
// the script not catch it.
func (ctx *scriptContext) throw(err error) {
	ctx.cause = err
	jsre.Throw(ctx.otto, err.Error())
}

func (ctx *scriptContext) value(v interface{}) otto.Value {
	val, err := toJS(ctx.otto, v)
	if err != nil {
		ctx.throw(err)
	}
	return val
}

func (ctx *scriptContext) relocatableArg(call otto.FunctionCall, i int) vm.Relocatable {
	r, err := relocatableFromJS(ctx.otto, call.Argument(i))
	if err != nil {
		ctx.throw(err)
	}
	return r
}

func (ctx *scriptContext) feltArg(call otto.FunctionCall, i int) felt.Felt {
	f, err := feltFromJS(call.Argument(i))
	if err != nil {
		ctx.throw(err)
	}
	return f
}

func (ctx *scriptContext) set(name string, v interface{}) error {
	ctx.bindings[name] = true
	return ctx.otto.Set(name, v)
}

func (ctx *scriptContext) newObject(methods map[string]func(otto.FunctionCall) otto.Value) (*otto.Object, error) {
	obj, err := ctx.otto.Object(`({})`)
	if err != nil {
		return nil, err
	}
	for name, fn := range methods {
		if err := obj.Set(name, fn); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// bind installs the machine bindings. Their names are never merged back.
func (ctx *scriptContext) bind() error {
	v := ctx.vm
	mem := v.Segments.Memory

	memory, err := ctx.newObject(map[string]func(otto.FunctionCall) otto.Value{
		"get": func(call otto.FunctionCall) otto.Value {
			val, ok := mem.Get(ctx.relocatableArg(call, 0))
			if !ok {
				return otto.UndefinedValue()
			}
			return ctx.value(val)
		},
		"set": func(call otto.FunctionCall) otto.Value {
			addr := ctx.relocatableArg(call, 0)
			val, err := memoryValueFromJS(ctx.otto, call.Argument(1))
			if err != nil {
				ctx.throw(err)
			}
			if err := mem.Insert(addr, val); err != nil {
				ctx.throw(err)
			}
			return otto.UndefinedValue()
		},
		"get_range": func(call otto.FunctionCall) otto.Value {
			addr := ctx.relocatableArg(call, 0)
			n, err := call.Argument(1).ToInteger()
			if err != nil || n < 0 {
				ctx.throw(errors.Wrapf(vm.ErrInvalidArgument, "range size %v", call.Argument(1)))
			}
			vals, err := mem.GetRange(addr, uint(n))
			if err != nil {
				ctx.throw(err)
			}
			return ctx.value(vals)
		},
	})
	if err != nil {
		return err
	}

	segments, err := ctx.newObject(map[string]func(otto.FunctionCall) otto.Value{
		"add": func(call otto.FunctionCall) otto.Value {
			return ctx.value(v.Segments.Add())
		},
		"write_arg": func(call otto.FunctionCall) otto.Value {
			ptr := ctx.relocatableArg(call, 0)
			arg, err := argFromJS(ctx.otto, call.Argument(1))
			if err != nil {
				ctx.throw(err)
			}
			args, ok := arg.([]interface{})
			if !ok {
				ctx.throw(errors.Wrap(vm.ErrInvalidArgument, "write_arg expects an array"))
			}
			end, err := v.Segments.WriteArg(ptr, args, true)
			if err != nil {
				ctx.throw(err)
			}
			return ctx.value(end)
		},
		"gen_arg": func(call otto.FunctionCall) otto.Value {
			arg, err := argFromJS(ctx.otto, call.Argument(0))
			if err != nil {
				ctx.throw(err)
			}
			val, err := v.Segments.GenArg(arg, true)
			if err != nil {
				ctx.throw(err)
			}
			return ctx.value(val)
		},
	})
	if err != nil {
		return err
	}

	feltOps, err := ctx.newObject(map[string]func(otto.FunctionCall) otto.Value{
		"add": func(call otto.FunctionCall) otto.Value {
			return ctx.value(ctx.feltArg(call, 0).Add(ctx.feltArg(call, 1)))
		},
		"sub": func(call otto.FunctionCall) otto.Value {
			return ctx.value(ctx.feltArg(call, 0).Sub(ctx.feltArg(call, 1)))
		},
		"mul": func(call otto.FunctionCall) otto.Value {
			return ctx.value(ctx.feltArg(call, 0).Mul(ctx.feltArg(call, 1)))
		},
		"div": func(call otto.FunctionCall) otto.Value {
			q, err := ctx.feltArg(call, 0).Div(ctx.feltArg(call, 1))
			if err != nil {
				ctx.throw(err)
			}
			return ctx.value(q)
		},
		"neg": func(call otto.FunctionCall) otto.Value {
			return ctx.value(ctx.feltArg(call, 0).Neg())
		},
		"cmp": func(call otto.FunctionCall) otto.Value {
			return ctx.value(ctx.feltArg(call, 0).Cmp(ctx.feltArg(call, 1)))
		},
	})
	if err != nil {
		return err
	}

	ids, err := ctx.buildIds()
	if err != nil {
		return err
	}

	rc := v.RunContext
	bindings := []struct {
		name  string
		value interface{}
	}{
		{"memory", memory},
		{"segments", segments},
		{"felt", feltOps},
		{"ids", ids},
		{"ap", ctx.value(rc.AP)},
		{"fp", ctx.value(rc.FP)},
		{"pc", ctx.value(rc.PC)},
		{"PRIME", felt.Prime().String()},
		{"vm_enter_scope", ctx.enterScope},
		{"vm_exit_scope", ctx.exitScope},
		{"to_felt_or_relocatable", ctx.toFeltOrRelocatable},
		{"__struct", ctx.structType},
	}
	for _, b := range bindings {
		if err := ctx.set(b.name, b.value); err != nil {
			return err
		}
	}
	return ctx.bindBuiltins()
}

func (ctx *scriptContext) enterScope(call otto.FunctionCall) otto.Value {
	op := scopeOp{enter: true}
	if arg := call.Argument(0); !arg.IsUndefined() && !arg.IsNull() {
		vars, err := fromJS(ctx.otto, arg)
		if err != nil {
			ctx.throw(err)
		}
		m, ok := vars.(map[string]interface{})
		if !ok {
			ctx.throw(errors.Wrap(vm.ErrInvalidArgument, "vm_enter_scope expects an object"))
		}
		op.vars = m
	}
	ctx.ops = append(ctx.ops, op)
	return otto.UndefinedValue()
}

func (ctx *scriptContext) exitScope(call otto.FunctionCall) otto.Value {
	ctx.ops = append(ctx.ops, scopeOp{})
	return otto.UndefinedValue()
}

func (ctx *scriptContext) toFeltOrRelocatable(call otto.FunctionCall) otto.Value {
	val, err := memoryValueFromJS(ctx.otto, call.Argument(0))
	if err != nil {
		ctx.throw(err)
	}
	return ctx.value(val)
}

func (ctx *scriptContext) structType(call otto.FunctionCall) otto.Value {
	info, ok := ctx.p.structByName(call.Argument(0).String())
	if !ok {
		return otto.UndefinedValue()
	}
	members := make(map[string]interface{}, len(info.members))
	for name, m := range info.members {
		members[name] = map[string]interface{}{"offset": m.Offset, "cairo_type": m.CairoType}
	}
	return ctx.value(map[string]interface{}{"SIZE": info.size, "members": members})
}

// buildIds creates the ids object: constants and struct sizes by trailing
// name, then one accessor per reference of the hint.
func (ctx *scriptContext) buildIds() (*otto.Object, error) {
	o := ctx.otto
	ids, err := o.Object(`({})`)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool)
	for name, val := range ctx.p.scopedConstants(ctx.data) {
		if err := ids.Set(name, ctx.value(val)); err != nil {
			return nil, err
		}
		taken[name] = true
	}
	for short, full := range ctx.p.structs {
		if taken[short] {
			continue
		}
		info, ok := ctx.p.structByName(full)
		if !ok {
			continue
		}
		if err := ids.Set(short, ctx.value(map[string]interface{}{"SIZE": info.size})); err != nil {
			return nil, err
		}
		taken[short] = true
	}

	names := make([]string, 0, len(ctx.data.Ids))
	for name := range ctx.data.Ids {
		if !taken[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	undefined := otto.UndefinedValue()
	for _, name := range names {
		ref := ctx.data.Ids[name]
		addr, value, fail := undefined, undefined, undefined
		if ref.Dereference {
			if r, err := referenceAddress(ctx.vm, &ref, ctx.data.ApTracking); err != nil {
				fail = ctx.value(err.Error())
			} else {
				addr = ctx.value(r)
			}
		} else {
			if val, err := evalReference(ctx.vm, &ref, ctx.data.ApTracking); err != nil {
				fail = ctx.value(err.Error())
			} else {
				value = ctx.value(val)
			}
		}
		if _, err := o.Call("__defineId", nil, ids, name, variableType(&ref), addr, value, fail); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (ctx *scriptContext) bindBuiltins() error {
	for _, b := range ctx.vm.BuiltinRunners {
		b := b
		methods := make(map[string]func(otto.FunctionCall) otto.Value)
		if _, ok := b.(*builtins.SignatureBuiltinRunner); ok {
			methods["add_signature"] = ctx.addSignature
		}
		obj, err := ctx.newObject(methods)
		if err != nil {
			return err
		}
		props := map[string]interface{}{
			"name":     b.Name(),
			"base":     ctx.value(b.Base()),
			"included": b.Included(),
		}
		if rc, ok := b.(*builtins.RangeCheckBuiltinRunner); ok {
			props["bound"] = ctx.value(rc.Bound())
		}
		for k, val := range props {
			if err := obj.Set(k, val); err != nil {
				return err
			}
		}
		if err := ctx.set(b.Name()+"_builtin", obj); err != nil {
			return err
		}
	}
	return nil
}

// addSignature implements ecdsa_builtin.add_signature(addr, [r, s]).
func (ctx *scriptContext) addSignature(call otto.FunctionCall) otto.Value {
	addr := ctx.relocatableArg(call, 0)
	pair, err := arrayFromJS(ctx.otto, call.Argument(1), func(o *otto.Otto, v otto.Value) (interface{}, error) {
		return feltFromJS(v)
	})
	if err != nil || len(pair) != 2 {
		ctx.throw(errors.Wrap(vm.ErrInvalidArgument, "add_signature expects [r, s]"))
	}
	ctx.sigs = append(ctx.sigs, pendingSignature{addr: addr, r: pair[0].(felt.Felt), s: pair[1].(felt.Felt)})
	return otto.UndefinedValue()
}

// finish replays scope requests and flushes signatures after a successful
// evaluation.
func (ctx *scriptContext) finish(sc *scopes.ExecutionScopes) error {
	for _, op := range ctx.ops {
		if op.enter {
			sc.EnterScope(op.vars)
			continue
		}
		if err := sc.ExitScope(); err != nil {
			return err
		}
	}
	if len(ctx.sigs) == 0 {
		return nil
	}
	b, _ := ctx.vm.Builtin(builtins.SignatureName)
	ecdsa, ok := b.(*builtins.SignatureBuiltinRunner)
	if !ok {
		return errors.Wrap(ErrMissingBuiltin, builtins.SignatureName)
	}
	for _, sig := range ctx.sigs {
		if err := ecdsa.AddSignature(sig.addr, sig.r, sig.s); err != nil {
			return err
		}
	}
	return nil
}
