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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/Aurorachain/go-cairo/cmd/utils"
	"github.com/Aurorachain/go-cairo/core/runner"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      utils.MigrateFlags(dumpConfig),
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "",
		Flags:       runFlags,
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type runConfig struct {
	Entrypoint  string
	PrintOutput bool
	Steps       uint64 `toml:",omitempty"`
	TraceFile   string `toml:",omitempty"`
	MemoryFile  string `toml:",omitempty"`
	Verbosity   int
}

type cairoConfig struct {
	Runner runner.Config
	Run    runConfig
}

func loadConfig(file string, cfg *cairoConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers the defaults, the config file and the flags.
func makeConfig(ctx *cli.Context) cairoConfig {
	cfg := cairoConfig{
		Runner: runner.DefaultConfig,
		Run: runConfig{
			Entrypoint: utils.EntrypointFlag.Value,
			Verbosity:  utils.VerbosityFlag.Value,
		},
	}
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	utils.SetRunnerConfig(ctx, &cfg.Runner)

	if ctx.GlobalIsSet(utils.EntrypointFlag.Name) {
		cfg.Run.Entrypoint = ctx.GlobalString(utils.EntrypointFlag.Name)
	}
	if ctx.GlobalIsSet(utils.PrintOutputFlag.Name) {
		cfg.Run.PrintOutput = ctx.GlobalBool(utils.PrintOutputFlag.Name)
	}
	if ctx.GlobalIsSet(utils.StepsFlag.Name) {
		cfg.Run.Steps = ctx.GlobalUint64(utils.StepsFlag.Name)
	}
	if file := ctx.GlobalString(utils.TraceFileFlag.Name); file != "" {
		cfg.Run.TraceFile = file
	}
	if file := ctx.GlobalString(utils.MemoryFileFlag.Name); file != "" {
		cfg.Run.MemoryFile = file
	}
	if ctx.GlobalIsSet(utils.VerbosityFlag.Name) {
		cfg.Run.Verbosity = ctx.GlobalInt(utils.VerbosityFlag.Name)
	}
	if cfg.Run.TraceFile != "" {
		cfg.Runner.TraceEnabled = true
	}
	return cfg
}

func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
