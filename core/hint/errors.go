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

import "errors"

var (
	ErrHintScript        = errors.New("hint script failed")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrWrongHintData     = errors.New("wrong hint data")
	ErrAssertion         = errors.New("hint assertion failed")
	ErrMissingBuiltin    = errors.New("builtin not present")
)

// ScriptError is a failure raised while evaluating a scripted hint. Cause
// is set when the failure came from a machine operation the script called.
type ScriptError struct {
	Msg   string
	Cause error
}

func (e *ScriptError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Msg {
		return ErrHintScript.Error() + ": " + e.Msg + ": " + e.Cause.Error()
	}
	return ErrHintScript.Error() + ": " + e.Msg
}

func (e *ScriptError) Is(target error) bool { return target == ErrHintScript }

func (e *ScriptError) Unwrap() error { return e.Cause }
