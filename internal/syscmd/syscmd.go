// Package syscmd obtains routing and resolver state through whatever native
// facility the host operating system exposes.
package syscmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const DefaultTimeout = 15 * time.Second

const resolvConf = "/etc/resolv.conf"

// Output is the raw text of a native query. When OK is false Text holds the
// error description instead.
type Output struct {
	Text string
	OK   bool
}

// Source is one operating system family's way of listing routes and DNS
// configuration. Implementations never return errors; failures are folded
// into Output.
type Source interface {
	Routes(ctx context.Context) Output
	DNS(ctx context.Context) Output
}

// SubprocessError describes a native command that could not be run, exited
// non-zero or timed out.
type SubprocessError struct {
	Command string
	Output  string
	Err     error
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("ERROR running %s: %v", e.Command, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// Runner executes name with args and returns combined stdout/stderr.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FileReader reads a whole file.
type FileReader func(path string) ([]byte, error)

type Options struct {
	Timeout  time.Duration
	Run      Runner
	ReadFile FileReader
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Run == nil {
		o.Run = execRunner
	}
	if o.ReadFile == nil {
		o.ReadFile = os.ReadFile
	}
	return o
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Children that inherit the output pipe must not hold Wait past the timeout.
	cmd.WaitDelay = time.Second
	err := cmd.Run()
	return out.Bytes(), err
}

// command is a single native invocation.
type command struct {
	name string
	args []string
}

func (c command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// ForPlatform picks the Source for a GOOS value.
func ForPlatform(goos string, opts Options) Source {
	opts = opts.withDefaults()
	switch goos {
	case "windows":
		return &windowsSource{opts: opts}
	case "linux":
		return &unixSource{
			opts: opts,
			routes: []command{
				{name: "ip", args: []string{"route"}},
				{name: "route", args: []string{"-n"}},
			},
		}
	default:
		return &unixSource{
			opts: opts,
			routes: []command{
				{name: "netstat", args: []string{"-rn"}},
				{name: "route", args: []string{"-n", "get", "default"}},
			},
		}
	}
}

// run executes c under the configured timeout.
func run(ctx context.Context, opts Options, c command) Output {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	out, err := opts.Run(ctx, c.name, c.args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", opts.Timeout, context.DeadlineExceeded)
		}
		return Output{Text: (&SubprocessError{Command: c.String(), Output: string(out), Err: err}).Error()}
	}
	return Output{Text: strings.TrimSpace(string(out)), OK: true}
}

// runFirst tries each command in order and returns the first success. When
// all fail, the error text of every attempt is kept.
func runFirst(ctx context.Context, opts Options, cmds []command) Output {
	var failures []string
	for _, c := range cmds {
		res := run(ctx, opts, c)
		if res.OK {
			return res
		}
		failures = append(failures, res.Text)
	}
	return Output{Text: strings.Join(failures, "\n")}
}

type windowsSource struct {
	opts Options
}

func (s *windowsSource) Routes(ctx context.Context) Output {
	return run(ctx, s.opts, command{name: "route", args: []string{"print"}})
}

func (s *windowsSource) DNS(ctx context.Context) Output {
	return run(ctx, s.opts, command{name: "ipconfig", args: []string{"/all"}})
}

type unixSource struct {
	opts   Options
	routes []command
}

func (s *unixSource) Routes(ctx context.Context) Output {
	return runFirst(ctx, s.opts, s.routes)
}

func (s *unixSource) DNS(_ context.Context) Output {
	data, err := s.opts.ReadFile(resolvConf)
	if err != nil {
		return Output{Text: fmt.Sprintf("ERROR reading %s: %v", resolvConf, err)}
	}
	return Output{Text: strings.TrimSpace(string(data)), OK: true}
}
