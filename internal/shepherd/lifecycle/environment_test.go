package lifecycle

import (
	"context"
	"testing"

	"github.com/moonyfringers/shpctl/internal/shepherd/configmgr"
	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/renderer"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
)

// succeedingDriver/failingDriver stand in for the real "docker" binary:
// /bin/true and /bin/false accept arbitrary arguments and exit 0/1
// respectively, letting Start/Stop/Reload be exercised deterministically
// without a container engine present.
func succeedingDriver() *engine.Driver { return &engine.Driver{Bin: "true"} }
func failingDriver() *engine.Driver    { return &engine.Driver{Bin: "false"} }

func newTestEnv(tag string) *model.Environment {
	return &model.Environment{
		Tag: tag,
		Services: []model.Service{
			{Tag: "web", Containers: []model.Container{{Tag: "app", Image: "nginx"}}},
		},
	}
}

func TestStartThenHaltClearsRenderedConfig(t *testing.T) {
	mgr := configmgr.New("/tmp/unused.yaml", &model.GlobalConfig{}, resolver.ValueStore{})
	env := newTestEnv("foo")
	if err := mgr.AddEnvironment(*env); err != nil {
		t.Fatalf("AddEnvironment() error = %v", err)
	}
	stored, _ := mgr.GetEnvironment("foo")

	handle := NewEnvironmentHandle(mgr, succeedingDriver(), stored)
	if err := handle.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !handle.Env.Status.IsRunning() {
		t.Fatal("expected IsRunning() after Start()")
	}
	if _, ok := handle.Env.Status.RenderedConfig[renderer.UngatedKey]; !ok {
		t.Error("expected rendered_config to carry the ungated document after Start()")
	}

	if err := handle.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if handle.Env.Status.IsRunning() {
		t.Error("expected IsRunning() == false after Stop()")
	}
	if handle.Env.Status.RenderedConfig != nil {
		t.Errorf("expected rendered_config == nil after Stop(), got %v", handle.Env.Status.RenderedConfig)
	}
}

func TestReloadFailsWhenNotRunning(t *testing.T) {
	mgr := configmgr.New("/tmp/unused.yaml", &model.GlobalConfig{}, resolver.ValueStore{})
	env := newTestEnv("foo")
	handle := NewEnvironmentHandle(mgr, succeedingDriver(), env)
	if err := handle.Reload(context.Background()); err == nil {
		t.Error("Reload() on a non-running environment: want error, got nil")
	}
}

func TestStartPropagatesEngineFailure(t *testing.T) {
	mgr := configmgr.New("/tmp/unused.yaml", &model.GlobalConfig{}, resolver.ValueStore{})
	env := newTestEnv("foo")
	handle := NewEnvironmentHandle(mgr, failingDriver(), env)
	if err := handle.Start(context.Background()); err == nil {
		t.Error("Start() with a failing engine: want error, got nil")
	}
}

func TestCloneDoesNotAliasSource(t *testing.T) {
	mgr := configmgr.New("/tmp/unused.yaml", &model.GlobalConfig{}, resolver.ValueStore{})
	env := newTestEnv("foo")
	if err := mgr.AddEnvironment(*env); err != nil {
		t.Fatalf("AddEnvironment() error = %v", err)
	}
	stored, _ := mgr.GetEnvironment("foo")
	handle := NewEnvironmentHandle(mgr, succeedingDriver(), stored)

	clonedHandle := handle.Clone("foo-2")
	clonedHandle.Env.Services[0].Tag = "mutated"

	if stored.Services[0].Tag != "web" {
		t.Errorf("clone aliased source environment's services: %q", stored.Services[0].Tag)
	}
	if clonedHandle.Env.Tag != "foo-2" {
		t.Errorf("clone Tag = %q, want %q", clonedHandle.Env.Tag, "foo-2")
	}
	if clonedHandle.Env.Status.Active {
		t.Error("clone should start with status.active = false")
	}
}
