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

package utils

import (
	"github.com/Aurorachain/go-cairo/core/runner"
	"github.com/Aurorachain/go-cairo/metrics"
	"gopkg.in/urfave/cli.v1"
)

var (
	LayoutFlag = cli.StringFlag{
		Name:  "layout",
		Usage: "Builtin layout (plain, small, dex, recursive, starknet, all)",
		Value: runner.DefaultConfig.Layout,
	}
	EntrypointFlag = cli.StringFlag{
		Name:  "entrypoint",
		Usage: "Function of the main scope to run",
		Value: "main",
	}
	TraceFileFlag = cli.StringFlag{
		Name:  "trace_file",
		Usage: "Write the relocated trace to this file (enables tracing)",
	}
	MemoryFileFlag = cli.StringFlag{
		Name:  "memory_file",
		Usage: "Write the relocated memory to this file",
	}
	PrintOutputFlag = cli.BoolFlag{
		Name:  "print_output",
		Usage: "Print the output builtin segment after the run",
	}
	StepsFlag = cli.Uint64Flag{
		Name:  "steps",
		Usage: "Step budget, 0 for unlimited",
	}
	StrictBuiltinsFlag = cli.BoolFlag{
		Name:  "strict_builtins",
		Usage: "Fail when a builtin runner was not declared by the program",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=fatal, 1=error, 2=warn, 3=info, 4=debug",
		Value: 3,
	}
	MetricsEnabledFlag = cli.BoolFlag{
		Name:  metrics.MetricsEnabledFlag,
		Usage: "Enable metrics collection and print them after the run",
	}
)

// SetRunnerConfig applies the command line flags to cfg.
func SetRunnerConfig(ctx *cli.Context, cfg *runner.Config) {
	if ctx.GlobalIsSet(LayoutFlag.Name) {
		cfg.Layout = ctx.GlobalString(LayoutFlag.Name)
	}
	if ctx.GlobalIsSet(StrictBuiltinsFlag.Name) {
		cfg.StrictBuiltins = ctx.GlobalBool(StrictBuiltinsFlag.Name)
	}
	if ctx.GlobalString(TraceFileFlag.Name) != "" {
		cfg.TraceEnabled = true
	}
}
