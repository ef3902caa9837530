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

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
)

func TestDisabledCollectorsAreNoops(t *testing.T) {
	Enabled = false
	c := NewCounter("test/disabled")
	c.Inc(5)
	if c.Count() != 0 {
		t.Errorf("nil counter counted %d", c.Count())
	}
	if metrics.DefaultRegistry.Get("test/disabled") != nil {
		t.Error("disabled counter was registered")
	}
}

func TestEnabledCounter(t *testing.T) {
	Enabled = true
	defer func() { Enabled = false }()

	c := NewCounter("test/enabled")
	c.Inc(3)
	if NewCounter("test/enabled").Count() != 3 {
		t.Error("counter not shared through the registry")
	}
	NewTimer("test/timer").Update(2 * time.Millisecond)

	var buf bytes.Buffer
	if err := Report(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "count=3") || !strings.Contains(out, "max=2ms") {
		t.Errorf("unexpected report %q", out)
	}
	if strings.Index(out, "test/enabled") > strings.Index(out, "test/timer") {
		t.Errorf("report not sorted: %q", out)
	}
}
