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

// Package scopes implements the stack of variable frames shared by the
// hints of a single run.
package scopes

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrExitMainScope      = errors.New("cannot exit main scope")
	ErrVariableNotInScope = errors.New("variable not in scope")
)

// ExecutionScopes is a non-empty stack of name->value frames. Lookups only
// see the innermost frame.
type ExecutionScopes struct {
	data []map[string]interface{}
}

func NewExecutionScopes() *ExecutionScopes {
	return &ExecutionScopes{data: []map[string]interface{}{make(map[string]interface{})}}
}

// EnterScope pushes a frame seeded with vars. A nil map yields an empty frame.
func (es *ExecutionScopes) EnterScope(vars map[string]interface{}) {
	frame := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		frame[k] = v
	}
	es.data = append(es.data, frame)
}

func (es *ExecutionScopes) ExitScope() error {
	if len(es.data) == 1 {
		return ErrExitMainScope
	}
	es.data = es.data[:len(es.data)-1]
	return nil
}

// Len is the number of frames, the main frame included.
func (es *ExecutionScopes) Len() int {
	return len(es.data)
}

// LocalVariables returns the innermost frame. Mutations are visible to
// subsequent lookups.
func (es *ExecutionScopes) LocalVariables() map[string]interface{} {
	return es.data[len(es.data)-1]
}

func (es *ExecutionScopes) Get(name string) (interface{}, error) {
	v, ok := es.LocalVariables()[name]
	if !ok {
		return nil, pkgerrors.Wrapf(ErrVariableNotInScope, "%q", name)
	}
	return v, nil
}

func (es *ExecutionScopes) AssignOrUpdate(name string, value interface{}) {
	es.LocalVariables()[name] = value
}

func (es *ExecutionScopes) Delete(name string) {
	delete(es.LocalVariables(), name)
}

// GetInt fetches a variable that must hold an integer.
func (es *ExecutionScopes) GetInt(name string) (int64, error) {
	v, err := es.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, pkgerrors.Errorf("variable %q is %T, not an integer", name, v)
}
