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

// Package jsre hosts the embedded JavaScript engine hints run on.
package jsre

import (
	"sync"

	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
)

const scriptCacheSize = 512

/*
JSRE is a JS runtime environment embedding the otto JS interpreter.
A single event loop goroutine owns a pristine runtime with the prelude
loaded; every request is served on a fresh copy of it, one at a time.
*/
type JSRE struct {
	prelude       string
	scripts       *lru.Cache
	evalQueue     chan *evalReq
	stopEventLoop chan struct{}
	closed        chan struct{}
	ready         chan error
}

type evalReq struct {
	fn   func(vm *otto.Otto)
	done chan struct{}
}

var (
	defaultOnce sync.Once
	defaultRE   *JSRE
	defaultErr  error
)

// Default returns the process-wide runtime, created with Prelude on first use.
func Default() (*JSRE, error) {
	defaultOnce.Do(func() {
		defaultRE, defaultErr = New(Prelude)
	})
	return defaultRE, defaultErr
}

// New starts an event loop whose pristine runtime has run prelude.
func New(prelude string) (*JSRE, error) {
	cache, err := lru.New(scriptCacheSize)
	if err != nil {
		return nil, err
	}
	re := &JSRE{
		prelude:       prelude,
		scripts:       cache,
		evalQueue:     make(chan *evalReq),
		stopEventLoop: make(chan struct{}),
		closed:        make(chan struct{}),
		ready:         make(chan error, 1),
	}
	go re.runEventLoop()
	if err := <-re.ready; err != nil {
		<-re.closed
		return nil, errors.Wrap(err, "prelude")
	}
	return re, nil
}

func (self *JSRE) runEventLoop() {
	defer close(self.closed)

	vm := otto.New()
	if self.prelude != "" {
		if _, err := vm.Run(self.prelude); err != nil {
			self.ready <- err
			return
		}
	}
	self.ready <- nil

	for {
		select {
		case req := <-self.evalQueue:
			req.fn(vm.Copy())
			close(req.done)
		case <-self.stopEventLoop:
			return
		}
	}
}

// Do runs fn on a fresh copy of the pristine runtime. Calls are
// serialized across the whole process; nothing fn does survives it.
func (self *JSRE) Do(fn func(*otto.Otto)) {
	done := make(chan struct{})
	req := &evalReq{fn, done}
	self.evalQueue <- req
	<-done
}

func (self *JSRE) Stop() {
	select {
	case <-self.closed:
	case self.stopEventLoop <- struct{}{}:
		<-self.closed
	}
}

// Run evaluates code on a fresh copy and returns its exported result.
func (self *JSRE) Run(code string) (v interface{}, err error) {
	self.Do(func(vm *otto.Otto) {
		var val otto.Value
		if val, err = vm.Run(code); err == nil {
			v, err = val.Export()
		}
	})
	return v, err
}

// Compile parses src once per distinct source text. Must be called from
// within Do.
func (self *JSRE) Compile(vm *otto.Otto, filename, src string) (*otto.Script, error) {
	if cached, ok := self.scripts.Get(src); ok {
		return cached.(*otto.Script), nil
	}
	script, err := vm.Compile(filename, src)
	if err != nil {
		return nil, err
	}
	self.scripts.Add(src, script)
	return script, nil
}

// CachedScripts reports how many compiled scripts are held.
func (self *JSRE) CachedScripts() int {
	return self.scripts.Len()
}

// Throw raises a JS exception from inside a Go callback.
func Throw(vm *otto.Otto, msg string) {
	panic(vm.MakeCustomError("Error", msg))
}
