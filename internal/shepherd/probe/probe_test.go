package probe

import (
	"context"
	"strings"
	"testing"

	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/renderer"
)

func newRunningEnv() *model.Environment {
	return &model.Environment{
		Tag: "foo",
		Status: model.EntityStatus{
			RenderedConfig: map[string]string{renderer.UngatedKey: "services: {}\n"},
		},
		Probes: []model.Probe{
			{Tag: "ping", Container: model.Container{Tag: "c1", Image: "busybox"}},
			{Tag: "pong", Container: model.Container{Tag: "c2", Image: "busybox"}},
		},
	}
}

func TestCheckProbesRequiresRunningEnvironment(t *testing.T) {
	env := &model.Environment{Tag: "foo"}
	_, err := CheckProbes(context.Background(), &engine.Driver{Bin: "true"}, env, Options{})
	if err == nil {
		t.Error("CheckProbes() on a non-running environment: want error, got nil")
	}
}

func TestSelectProbesUnknownTag(t *testing.T) {
	env := newRunningEnv()
	if _, err := selectProbes(env, "nope"); err == nil {
		t.Error("selectProbes(unknown tag): want error, got nil")
	}
}

func TestSelectProbesEmptyTagReturnsAll(t *testing.T) {
	env := newRunningEnv()
	got, err := selectProbes(env, "")
	if err != nil {
		t.Fatalf("selectProbes() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("selectProbes(\"\") returned %d probes, want 2", len(got))
	}
}

func TestSelectProbesSingleTag(t *testing.T) {
	env := newRunningEnv()
	got, err := selectProbes(env, "pong")
	if err != nil {
		t.Fatalf("selectProbes() error = %v", err)
	}
	if len(got) != 1 || got[0].Tag != "pong" {
		t.Fatalf("selectProbes(\"pong\") = %+v, want a single 'pong' probe", got)
	}
}

func TestRenderProbeOverlayOneServicePerProbe(t *testing.T) {
	env := newRunningEnv()
	y, err := renderProbeOverlay(env, env.Probes)
	if err != nil {
		t.Fatalf("renderProbeOverlay() error = %v", err)
	}
	for _, p := range env.Probes {
		key := model.ContainerCanonicalName(p.Container.Tag, p.Tag, env.Tag) + "-probe"
		if !strings.Contains(y, key) {
			t.Errorf("renderProbeOverlay() missing service key %q in:\n%s", key, y)
		}
	}
}

func TestCheckProbesRunsAllAndSucceeds(t *testing.T) {
	env := newRunningEnv()
	results, err := CheckProbes(context.Background(), &engine.Driver{Bin: "true"}, env, Options{ProjectName: "foo"})
	if err != nil {
		t.Fatalf("CheckProbes() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("CheckProbes() returned %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.ExitCode != 0 || r.TimedOut {
			t.Errorf("result %+v: want exit 0, timed_out false", r)
		}
	}
}

func TestCheckProbesFailFastStopsAfterFirstFailure(t *testing.T) {
	env := newRunningEnv()
	results, err := CheckProbes(context.Background(), &engine.Driver{Bin: "false"}, env, Options{ProjectName: "foo", FailFast: true})
	if err != nil {
		t.Fatalf("CheckProbes() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("CheckProbes(fail_fast) returned %d results, want 1", len(results))
	}
	if results[0].ExitCode == 0 {
		t.Error("expected a nonzero exit code from the failing engine stand-in")
	}
}

func TestCheckProbesWithoutFailFastRunsAllDespiteFailures(t *testing.T) {
	env := newRunningEnv()
	results, err := CheckProbes(context.Background(), &engine.Driver{Bin: "false"}, env, Options{ProjectName: "foo"})
	if err != nil {
		t.Fatalf("CheckProbes() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("CheckProbes() without fail_fast returned %d results, want 2", len(results))
	}
}

func TestCheckProbesHonorsContextCancellation(t *testing.T) {
	env := newRunningEnv()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := CheckProbes(ctx, &engine.Driver{Bin: "true"}, env, Options{ProjectName: "foo"})
	if err != nil {
		t.Fatalf("CheckProbes() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("CheckProbes() with a pre-canceled context ran %d probes, want 0", len(results))
	}
}

func TestRunResultStringFormatsSummary(t *testing.T) {
	r := RunResult{Tag: "ping", ExitCode: 124, TimedOut: true, DurationMs: 5000}
	s := r.String()
	if !strings.Contains(s, "ping") || !strings.Contains(s, "124") || !strings.Contains(s, "true") {
		t.Errorf("String() = %q, missing expected fields", s)
	}
}
