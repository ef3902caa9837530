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

package scopes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterExit(t *testing.T) {
	es := NewExecutionScopes()
	require.Equal(t, 1, es.Len())

	es.AssignOrUpdate("a", 1)
	es.EnterScope(map[string]interface{}{"n": int64(3)})
	require.Equal(t, 2, es.Len())

	_, err := es.Get("a")
	assert.True(t, errors.Is(err, ErrVariableNotInScope), "outer frames are not visible")
	n, err := es.GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, es.ExitScope())
	assert.Equal(t, 1, es.Len())
	v, err := es.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestExitMainScope(t *testing.T) {
	es := NewExecutionScopes()
	if err := es.ExitScope(); !errors.Is(err, ErrExitMainScope) {
		t.Fatalf("have %v, want %v", err, ErrExitMainScope)
	}
	if es.Len() != 1 {
		t.Fatalf("frame count changed to %d", es.Len())
	}
}

func TestEnterScopeCopiesVars(t *testing.T) {
	es := NewExecutionScopes()
	vars := map[string]interface{}{"x": 1}
	es.EnterScope(vars)
	es.AssignOrUpdate("y", 2)
	if _, ok := vars["y"]; ok {
		t.Fatal("frame aliases caller map")
	}
	es.Delete("x")
	if _, err := es.Get("x"); err == nil {
		t.Fatal("x still visible after delete")
	}
	es.EnterScope(nil)
	if len(es.LocalVariables()) != 0 {
		t.Fatal("nil vars should give an empty frame")
	}
}
