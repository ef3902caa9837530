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

// cairo-run is the command line runner for compiled Cairo programs.
package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/Aurorachain/go-cairo/cmd/utils"
	"github.com/Aurorachain/go-cairo/core/program"
	"github.com/Aurorachain/go-cairo/core/runner"
	"github.com/Aurorachain/go-cairo/log"
	"github.com/Aurorachain/go-cairo/metrics"
	"github.com/mattn/go-colorable"
	"gopkg.in/urfave/cli.v1"
)

var (
	gitCommit = ""

	app = utils.NewApp(gitCommit, "the go-cairo program runner")

	runFlags = []cli.Flag{
		utils.LayoutFlag,
		utils.EntrypointFlag,
		utils.TraceFileFlag,
		utils.MemoryFileFlag,
		utils.PrintOutputFlag,
		utils.StepsFlag,
		utils.StrictBuiltinsFlag,
		utils.VerbosityFlag,
		utils.MetricsEnabledFlag,
		configFileFlag,
	}
)

func init() {
	app.Action = cairoRun
	app.HideVersion = true
	app.ArgsUsage = "<program.json>"
	app.Copyright = "Copyright 2013-2017 The go-aurora Authors"
	app.Commands = []cli.Command{
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Flags = append(app.Flags, runFlags...)

	app.Before = func(ctx *cli.Context) error {
		runtime.GOMAXPROCS(runtime.NumCPU())
		log.SetVerbosity(ctx.GlobalInt(utils.VerbosityFlag.Name))
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if metrics.Enabled {
			if err := metrics.Report(os.Stderr); err != nil {
				return err
			}
		}
		return log.Sync()
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cairoRun(ctx *cli.Context) error {
	if len(ctx.Args()) != 1 {
		utils.Fatalf("usage: %s [options] <program.json>", app.Name)
	}
	cfg := makeConfig(ctx)
	log.SetVerbosity(cfg.Run.Verbosity)

	prog, err := program.FromFile(ctx.Args().First(), cfg.Run.Entrypoint)
	if err != nil {
		utils.Fatalf("Failed to load program: %v", err)
	}
	r, err := runner.New(prog, cfg.Runner)
	if err != nil {
		utils.Fatalf("Failed to create runner: %v", err)
	}

	opts := runner.CairoRunOptions{
		TraceFile:  cfg.Run.TraceFile,
		MemoryFile: cfg.Run.MemoryFile,
	}
	if cfg.Run.Steps > 0 {
		steps := cfg.Run.Steps
		opts.Steps = &steps
	}
	if cfg.Run.PrintOutput {
		opts.Output = colorable.NewColorableStdout()
	}
	if err := r.CairoRun(opts); err != nil {
		utils.Fatalf("%v", err)
	}

	if res, err := r.GetExecutionResources(); err == nil {
		log.Info("Run complete", log.Uint("steps", res.NSteps), log.Uint("holes", res.NMemoryHoles))
	}
	return nil
}
