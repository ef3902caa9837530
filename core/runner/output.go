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

import (
	"fmt"
	"io"

	"github.com/Aurorachain/go-cairo/core/builtins"
	"github.com/Aurorachain/go-cairo/core/vm"
	"github.com/pkg/errors"
)

// WriteOutput prints the output builtin segment, one signed value per
// line. Unwritten cells print as <missing>.
func (r *CairoRunner) WriteOutput(w io.Writer) error {
	b, ok := r.vm.Builtin(builtins.OutputName)
	if !ok {
		return ErrNoOutputBuiltin
	}
	seg := b.Base().SegmentIndex
	size, err := r.vm.Segments.GetSegmentUsedSize(seg)
	if err != nil {
		return err
	}
	mem := r.vm.Segments.Memory
	for off := uint(0); off < size; off++ {
		v, ok := mem.Get(vm.NewRelocatable(seg, off))
		if !ok {
			fmt.Fprintln(w, "<missing>")
			continue
		}
		f, isFelt := v.GetFelt()
		if !isFelt {
			return errors.Wrapf(vm.ErrExpectedInteger, "output cell %d holds %v", off, v)
		}
		if _, err := fmt.Fprintln(w, f.Signed()); err != nil {
			return err
		}
	}
	return nil
}
