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


// Package cmdtest runs a command re-executed from the test binary and
// matches its output.
package cmdtest

import (
	"bufio"
	"bytes"
	"io"
	"io/ioutil"
	"os/exec"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/pkg/reexec"
)

// Timeout bounds every read from the child; the child is killed when it
// expires.
var Timeout = 10 * time.Second

// TestCmd is a child process started through reexec.
type TestCmd struct {
	*testing.T

	cmd    *exec.Cmd
	stdout *bufio.Reader
	stderr *stderrLog
	err    error
}

// Run starts the command registered with reexec under name.
func Run(t *testing.T, name string, args ...string) *TestCmd {
	tc := &TestCmd{T: t, stderr: &stderrLog{t: t}}
	tc.cmd = &exec.Cmd{
		Path:   reexec.Self(),
		Args:   append([]string{name}, args...),
		Stderr: tc.stderr,
	}
	stdout, err := tc.cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	tc.stdout = bufio.NewReader(stdout)
	if err := tc.cmd.Start(); err != nil {
		t.Fatal(err)
	}
	return tc
}

// ExpectOutput reads exactly len(want) bytes of stdout and compares them
// with want.
func (tc *TestCmd) ExpectOutput(want string) {
	buf := make([]byte, len(want))
	var n int
	tc.withTimeout(func() { n, _ = io.ReadFull(tc.stdout, buf) })
	if have := string(buf[:n]); have != want {
		tc.Fatalf("stdout mismatch\n---- have ----\n%s\n---- want ----\n%s", have, want)
	}
}

// ExpectRegexp reads the rest of stdout and matches it against regex.
// It returns the full match followed by the submatches.
func (tc *TestCmd) ExpectRegexp(regex string) []string {
	re := regexp.MustCompile(regex)
	var output []byte
	tc.withTimeout(func() { output, _ = ioutil.ReadAll(tc.stdout) })
	m := re.FindSubmatch(output)
	if m == nil {
		tc.Fatalf("stdout does not match %q:\n%s", regex, output)
	}
	groups := make([]string, len(m))
	for i := range m {
		groups[i] = string(m[i])
	}
	return groups
}

// ExpectExit waits for the child and fails if it printed anything more.
func (tc *TestCmd) ExpectExit() {
	var rest []byte
	tc.withTimeout(func() { rest, _ = ioutil.ReadAll(tc.stdout) })
	tc.Wait()
	if len(rest) > 0 {
		tc.Errorf("unexpected stdout:\n%s", rest)
	}
}

func (tc *TestCmd) Wait() {
	tc.err = tc.cmd.Wait()
}

// ExitStatus is the exit code of a finished child, -1 if it did not exit
// normally.
func (tc *TestCmd) ExitStatus() int {
	if tc.err == nil {
		return 0
	}
	if exit, ok := tc.err.(*exec.ExitError); ok {
		return exit.ExitCode()
	}
	return -1
}

// Stderr returns everything the child wrote to stderr so far.
func (tc *TestCmd) Stderr() string {
	tc.stderr.mu.Lock()
	defer tc.stderr.mu.Unlock()
	return tc.stderr.buf.String()
}

func (tc *TestCmd) withTimeout(fn func()) {
	timer := time.AfterFunc(Timeout, func() {
		tc.Log("killing the child process (timeout)")
		tc.cmd.Process.Kill()
	})
	defer timer.Stop()
	fn()
}

// stderrLog forwards the child's stderr to the test log line by line and
// keeps a copy.
type stderrLog struct {
	t   *testing.T
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *stderrLog) Write(b []byte) (int, error) {
	for _, line := range bytes.Split(b, []byte("\n")) {
		if len(line) > 0 {
			l.t.Logf("(stderr) %s", line)
		}
	}
	l.mu.Lock()
	l.buf.Write(b)
	l.mu.Unlock()
	return len(b), nil
}
