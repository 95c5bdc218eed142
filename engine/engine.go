// Package engine launches the external frogvm process on a compiled module.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"frogc/diag"
)

// VMFlags are the flags passed through to the VM unchanged
var VMFlags = []string{"--trace", "--jit-log", "--gc-log"}

// ErrVMNotFound is returned when no VM binary can be located
var ErrVMNotFound = errors.New("frogvm binary not found")

// Options configures one VM run
type Options struct {
	VMPath string   // explicit binary; empty means search the default locations
	Flags  []string // extra VM flags, see VMFlags
	Dir    string   // directory searched for the default locations; empty means the working directory

	Stdin  io.Reader // nil means os.Stdin
	Stdout io.Writer // nil means os.Stdout
	Stderr io.Writer // nil means os.Stderr
}

// IsVMFlag reports whether flag is passed through to the VM
func IsVMFlag(flag string) bool {
	for _, f := range VMFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// candidates lists the default VM locations relative to dir
func candidates(dir string) []string {
	return []string{
		filepath.Join(dir, "frogitovm", "build", "frogvm.exe"),
		filepath.Join(dir, "frogitovm", "build", "frogvm"),
	}
}

// FindVM resolves the VM binary: the explicit path when given, otherwise
// the first default location that exists
func FindVM(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrVMNotFound, explicit)
		}
		return explicit, nil
	}
	paths := candidates(dir)
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, expected one of %s or %s", ErrVMNotFound, paths[0], paths[1])
}

// Run executes `<vm> run <module> [flags...]` and waits for it. A VM that
// starts and exits returns its exit code with a nil error.
func Run(ctx context.Context, opts Options, module string) (int, error) {
	for _, f := range opts.Flags {
		if !IsVMFlag(f) {
			return 0, diag.New(diag.KindIO, "unknown VM flag: %s", f)
		}
	}

	vm, err := FindVM(opts.VMPath, opts.Dir)
	if err != nil {
		return 0, diag.Wrap(diag.KindIO, err, "locate VM")
	}

	args := append([]string{"run", module}, opts.Flags...)
	cmd := exec.CommandContext(ctx, vm, args...)
	cmd.Stdin = orReader(opts.Stdin, os.Stdin)
	cmd.Stdout = orWriter(opts.Stdout, os.Stdout)
	cmd.Stderr = orWriter(opts.Stderr, os.Stderr)

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ProcessState != nil && ctx.Err() == nil {
		return exitErr.ProcessState.ExitCode(), nil
	}
	if ctx.Err() != nil {
		return 0, diag.Wrap(diag.KindIO, ctx.Err(), "run VM")
	}
	return 0, diag.Wrap(diag.KindIO, err, "run VM")
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
