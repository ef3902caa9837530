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

import "errors"

var (
	ErrResourcesExhausted = errors.New("step budget exhausted before reaching the end of the program")
	ErrInvalidArgs        = errors.New("invalid entrypoint arguments")
	ErrUndeclaredBuiltin  = errors.New("builtin runner not declared by the program")
	ErrEndRunCalledTwice  = errors.New("end_run called twice")
	ErrRunNotFinished     = errors.New("run not finished")
	ErrNotInitialized     = errors.New("runner not initialized")
	ErrAlreadyInitialized = errors.New("runner already initialized")
	ErrMissingMain        = errors.New("program has no main entrypoint")
	ErrNotRelocated       = errors.New("memory not relocated")
	ErrNoOutputBuiltin    = errors.New("program does not use the output builtin")

	ErrOutOfBoundsBuiltinAccess = errors.New("out of bounds access to builtin segment")
	ErrOutOfBoundsProgramAccess = errors.New("out of bounds access to program segment")
	ErrInvalidMemoryValue       = errors.New("memory holds an address of an unallocated segment")
)
