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

// Package metrics wraps go-metrics with a process-wide switch. Collectors
// created while disabled are no-ops.
package metrics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rcrowley/go-metrics"
)

const MetricsEnabledFlag = "metrics"

var Enabled = false

func init() {
	for _, arg := range os.Args {
		if flag := strings.TrimLeft(arg, "-"); flag == MetricsEnabledFlag {
			Enabled = true
		}
	}
}

func NewCounter(name string) metrics.Counter {
	if !Enabled {
		return new(metrics.NilCounter)
	}
	return metrics.GetOrRegisterCounter(name, metrics.DefaultRegistry)
}

func NewMeter(name string) metrics.Meter {
	if !Enabled {
		return new(metrics.NilMeter)
	}
	return metrics.GetOrRegisterMeter(name, metrics.DefaultRegistry)
}

func NewTimer(name string) metrics.Timer {
	if !Enabled {
		return new(metrics.NilTimer)
	}
	return metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry)
}

// Report writes one line per registered collector, sorted by name:
// counters with their count, meters with count and mean rate, timers with
// count, mean and max duration.
func Report(w io.Writer) error {
	var names []string
	metrics.DefaultRegistry.Each(func(name string, _ interface{}) {
		names = append(names, name)
	})
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, name := range names {
		switch m := metrics.DefaultRegistry.Get(name).(type) {
		case metrics.Counter:
			fmt.Fprintf(tw, "%s\tcount=%d\n", name, m.Count())
		case metrics.Meter:
			snap := m.Snapshot()
			fmt.Fprintf(tw, "%s\tcount=%d\trate=%.2f/s\n", name, snap.Count(), snap.RateMean())
		case metrics.Timer:
			snap := m.Snapshot()
			fmt.Fprintf(tw, "%s\tcount=%d\tmean=%v\tmax=%v\n", name, snap.Count(),
				time.Duration(snap.Mean()), time.Duration(snap.Max()))
		}
	}
	return tw.Flush()
}
