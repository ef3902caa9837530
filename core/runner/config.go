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

// Config selects the layout and the optional behaviour of a run.
type Config struct {
	Layout       string
	TraceEnabled bool

	// StrictBuiltins makes final-stack reconciliation fail on builtin
	// runners the program does not declare instead of skipping them.
	StrictBuiltins bool
}

var DefaultConfig = Config{
	Layout: "plain",
}
