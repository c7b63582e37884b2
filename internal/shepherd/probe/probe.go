// Package probe implements the probe runtime (spec.md §4.6): running
// one-shot readiness containers through the engine driver, layered
// base-then-overlay, with per-probe timeout and fail-fast support.
package probe

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/renderer"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// RunResult is the outcome of executing one probe.
type RunResult struct {
	Tag        string `json:"tag"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
	TimedOut   bool   `json:"timed_out"`
}

// Options controls CheckProbes.
type Options struct {
	ProbeTag    string // empty selects all declared probes
	FailFast    bool
	Timeout     time.Duration
	ProjectName string
}

// CheckProbes implements spec.md §4.6's seven-step contract.
func CheckProbes(ctx context.Context, drv *engine.Driver, env *model.Environment, opts Options) ([]RunResult, error) {
	ungated, running := env.Status.RenderedConfig[renderer.UngatedKey]
	if !running || ungated == "" {
		return nil, shperr.Precondition("environment %q is not running (no saved ungated document); run 'up' first", env.Tag)
	}

	selected, err := selectProbes(env, opts.ProbeTag)
	if err != nil {
		return nil, err
	}

	overlay, err := renderProbeOverlay(env, selected)
	if err != nil {
		return nil, err
	}

	var results []RunResult

	// Each probe runs to completion before the next starts (spec.md
	// §4.6 "no implicit parallelism"); errgroup is used per-probe only
	// for its context-cancellation plumbing, so a parent cancellation
	// (e.g. SIGINT) aborts an in-flight probe promptly.
	for _, p := range selected {
		if ctx.Err() != nil {
			break
		}
		p := p
		var res *engine.Result
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			svcName := model.ContainerCanonicalName(p.Container.Tag, p.Tag, env.Tag) + "-probe"
			r, err := drv.RunCompose(gctx, []string{ungated, overlay}, []string{"run", "--rm", "--no-deps", svcName}, opts.ProjectName, opts.Timeout)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
		if err := g.Wait(); err != nil {
			return results, err
		}
		elapsed := time.Since(start)
		rr := RunResult{
			Tag:        p.Tag,
			ExitCode:   res.ExitCode,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			DurationMs: elapsed.Milliseconds(),
			TimedOut:   res.TimedOut,
		}
		results = append(results, rr)

		if opts.FailFast && (rr.ExitCode != 0 || rr.TimedOut) {
			break
		}
	}

	return results, nil
}

func selectProbes(env *model.Environment, tag string) ([]model.Probe, error) {
	if tag == "" {
		return env.Probes, nil
	}
	for _, p := range env.Probes {
		if p.Tag == tag {
			return []model.Probe{p}, nil
		}
	}
	available := make([]string, 0, len(env.Probes))
	for _, p := range env.Probes {
		available = append(available, p.Tag)
	}
	return nil, shperr.Precondition("unknown probe %q; available probes: %v", tag, available)
}

// renderProbeOverlay renders one compose service per selected probe,
// restart:"no", with command set to the probe's script when present.
func renderProbeOverlay(env *model.Environment, probes []model.Probe) (string, error) {
	doc := renderer.ComposeDoc{Services: map[string]renderer.ComposeService{}}
	for _, p := range probes {
		key := model.ContainerCanonicalName(p.Container.Tag, p.Tag, env.Tag) + "-probe"
		svc := renderer.ComposeService{
			Image:       p.Container.Image,
			Environment: p.Container.Environment,
			Networks:    p.Container.Networks,
			Volumes:     p.Container.Volumes,
			Restart:     "no",
		}
		if p.Script != "" {
			svc.Command = p.Script
		}
		doc.Services[key] = svc
	}
	y, err := renderer.EncodeDoc(doc)
	if err != nil {
		return "", err
	}
	return y, nil
}

func (r RunResult) String() string {
	return fmt.Sprintf("%s: exit=%d timed_out=%v duration=%dms", r.Tag, r.ExitCode, r.TimedOut, r.DurationMs)
}
