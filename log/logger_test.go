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

package log

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel("info")

	SetLevel("warn")
	Info("hidden")
	Warn("shown", Int("steps", 3))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"steps": 3`) {
		t.Errorf("missing warn message: %q", out)
	}

	SetVerbosity(4)
	if !Enabled(zapcore.DebugLevel) {
		t.Error("verbosity 4 should enable debug")
	}
	SetVerbosity(99)
	if LogLevel != zapcore.DebugLevel {
		t.Errorf("verbosity clamp: have %v", LogLevel)
	}
	SetLevel("nonsense")
	if LogLevel != zapcore.InfoLevel {
		t.Errorf("unknown level falls back to info, have %v", LogLevel)
	}
}
