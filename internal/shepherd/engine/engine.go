// Package engine is the only place in shpctl that shells out to the
// container-composition engine. It owns temp-file lifetime, argv
// assembly, timeout normalization (exit code 124), and stream capture,
// grounded directly on maiko-SDBX's internal/docker/compose.go "run"
// method and original_source's docker_compose_util.run_compose /
// build_docker_image.
package engine

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// Result mirrors a completed-process record: returncode, captured
// stdout/stderr, and whether the command hit its timeout.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Driver invokes the external composition engine ("docker" by
// default).
type Driver struct {
	Bin string
}

func New() *Driver {
	return &Driver{Bin: "docker"}
}

// RunCompose writes each of yamls to a temp file (base document first,
// overlays later — multi-file compose semantics depend on this
// ordering), assembles `docker compose [-p project] (-f file)+ args...`,
// runs it with an optional timeout, and always removes the temp files,
// even on error or panic recovery in the caller.
func (d *Driver) RunCompose(ctx context.Context, yamls []string, args []string, projectName string, timeout time.Duration) (*Result, error) {
	if len(yamls) == 0 {
		return nil, shperr.New(shperr.KindEngine, "run_compose: at least one YAML document must be provided")
	}

	var tmpPaths []string
	defer func() {
		for _, p := range tmpPaths {
			_ = os.Remove(p)
		}
	}()

	for _, y := range yamls {
		f, err := os.CreateTemp("", "shpctl-*.yml")
		if err != nil {
			return nil, shperr.Wrap(shperr.KindFilesystem, "failed to create temp compose file", err)
		}
		if _, err := f.WriteString(y); err != nil {
			f.Close()
			return nil, shperr.Wrap(shperr.KindFilesystem, "failed to write temp compose file", err)
		}
		f.Close()
		tmpPaths = append(tmpPaths, f.Name())
	}

	cmdArgs := []string{"compose"}
	if projectName != "" {
		cmdArgs = append(cmdArgs, "-p", projectName)
	}
	for _, p := range tmpPaths {
		cmdArgs = append(cmdArgs, "-f", p)
	}
	cmdArgs = append(cmdArgs, args...)

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, d.Bin, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		slog.Warn("engine command timed out", "cmd", d.Bin+" "+strings.Join(cmdArgs, " "), "timeout", timeout)
		return &Result{ExitCode: 124, Stdout: stdout.String(), Stderr: stderr.String(), TimedOut: true, Duration: elapsed}, nil
	}

	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			return nil, shperr.Wrap(shperr.KindEngine, "failed to run engine command", err)
		}
	}

	if exitCode != 0 {
		slog.Warn("engine command failed", "cmd", d.Bin+" "+strings.Join(cmdArgs, " "), "exit_code", exitCode, "stderr", stderr.String())
	} else {
		slog.Debug("engine command ran", "cmd", d.Bin+" "+strings.Join(cmdArgs, " "), "exit_code", exitCode)
	}

	return &Result{ExitCode: exitCode, Stdout: stdout.String(), Stderr: stderr.String(), Duration: elapsed}, nil
}

// BuildImage validates the Dockerfile and context directory exist, then
// invokes `docker build -t tag -f dockerfile --progress=auto context`.
// A nonzero exit is fatal to the caller.
func (d *Driver) BuildImage(ctx context.Context, dockerfilePath, contextPath, tag string) error {
	dockerfilePath = AbsClean(dockerfilePath)
	contextPath = AbsClean(contextPath)

	if _, err := os.Stat(dockerfilePath); err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "Dockerfile not found: "+dockerfilePath, err)
	}
	info, err := os.Stat(contextPath)
	if err != nil || !info.IsDir() {
		return shperr.New(shperr.KindFilesystem, "invalid Docker build context: "+contextPath)
	}

	cmd := exec.CommandContext(ctx, d.Bin, "build", "-t", tag, "-f", dockerfilePath, "--progress=auto", contextPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	slog.Info("building image", "tag", tag, "dockerfile", dockerfilePath)
	if err := cmd.Run(); err != nil {
		return shperr.Wrap(shperr.KindEngine, "docker build failed for image "+tag, err)
	}
	slog.Info("image built", "tag", tag)
	return nil
}

// PS runs `compose ps --format json` and parses the newline-delimited
// JSON stream it produces, tolerating malformed lines rather than
// failing the whole call (spec.md §4.4 status / §6 "ps --format json").
func (d *Driver) PS(ctx context.Context, composeFile, projectName string) ([]ContainerStatus, error) {
	cmdArgs := []string{"compose"}
	if projectName != "" {
		cmdArgs = append(cmdArgs, "-p", projectName)
	}
	cmdArgs = append(cmdArgs, "-f", composeFile, "ps", "--format", "json")

	cmd := exec.CommandContext(ctx, d.Bin, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, shperr.Wrap(shperr.KindEngine, "failed to run compose ps", err)
		}
	}
	return parsePS(stdout.String()), nil
}

// ContainerStatus is one row of `compose ps --format json` output.
type ContainerStatus struct {
	Name    string `json:"Name"`
	Service string `json:"Service"`
	State   string `json:"State"`
	Health  string `json:"Health"`
}

// AbsClean resolves a path to an absolute, cleaned form for use as a
// temp-file / context-directory argument.
func AbsClean(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
