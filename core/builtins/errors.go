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

package builtins

import "errors"

var (
	ErrNoStopPointer               = errors.New("no stop pointer found")
	ErrInvalidStopPointerIndex     = errors.New("stop pointer points outside the builtin segment")
	ErrInvalidStopPointer          = errors.New("stop pointer does not match used cells")
	ErrRangeCheckOutOfBounds       = errors.New("range check value out of bounds")
	ErrRangeCheckNonInt            = errors.New("range check value is not an integer")
	ErrExpectedIntegerInput        = errors.New("builtin input is not an integer")
	ErrIntegerBiggerThanPowerOf2   = errors.New("builtin input exceeds the allowed bit length")
	ErrPointNotOnCurve             = errors.New("point is not on the curve")
	ErrEcOpInfinity                = errors.New("ec_op result is the point at infinity")
	ErrMissingSignature            = errors.New("signature missing for public key")
	ErrInvalidSignature            = errors.New("signature is invalid")
	ErrUnknownBuiltin              = errors.New("unknown builtin")
	ErrUnknownLayout               = errors.New("unknown layout")
	ErrBuiltinNotInLayout          = errors.New("builtin not supported by layout")
	ErrBuiltinsNotInCanonicalOrder = errors.New("builtins are not in canonical order")
)
