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


/*
Package vm implements the Cairo virtual machine.

Memory is split into segments of write-once cells addressed by Relocatable
values (segment index, offset). Every cell holds either a field element or
another address. Once a run is over the segments are laid out one after the
other in a flat address space, starting at address 1, and every stored
address is rewritten accordingly.

The machine has three registers: pc, ap and fp. Each step first runs the
hints attached to pc, then decodes the 63-bit instruction word at pc,
computes its three operands, deducing unknown ones from the others or from
the builtin owning their segment, checks the opcode's assertions and
finally updates the registers.
*/
package vm
