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
	"bufio"
	"encoding/binary"
	"io"

	"github.com/Aurorachain/go-cairo/core/vm"
)

// WriteEncodedTrace writes each entry as three little-endian uint64 words:
// ap, fp, pc.
func WriteEncodedTrace(trace []vm.RelocatedTraceEntry, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [24]byte
	for _, e := range trace {
		binary.LittleEndian.PutUint64(buf[0:], uint64(e.AP))
		binary.LittleEndian.PutUint64(buf[8:], uint64(e.FP))
		binary.LittleEndian.PutUint64(buf[16:], uint64(e.PC))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteEncodedMemory writes each cell as a little-endian uint64 address
// followed by the 32 byte little-endian value.
func WriteEncodedMemory(cells []vm.RelocatedCell, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [40]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint64(buf[0:], uint64(c.Address))
		le := c.Value.LEBytes()
		copy(buf[8:], le[:])
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
