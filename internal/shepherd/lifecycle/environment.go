// Package lifecycle implements the Service and Environment operations
// of spec.md §4.4: build/start/stop/reload/logs/shell/render, canonical
// naming, filesystem realization, and template-to-instance lowering. It
// sits above model, renderer and engine (which model cannot import
// without a cycle) and is the only package that drives the engine
// driver for state-changing commands, per spec.md §3's ownership rule.
package lifecycle

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moonyfringers/shpctl/internal/shepherd/configmgr"
	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/renderer"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// EnvironmentHandle wraps an Environment with the collaborators its
// operations need: the owning config manager (for write-back) and the
// engine driver (for state-changing commands).
type EnvironmentHandle struct {
	Mgr *configmgr.Manager
	Drv *engine.Driver
	Env *model.Environment
}

func NewEnvironmentHandle(mgr *configmgr.Manager, drv *engine.Driver, env *model.Environment) *EnvironmentHandle {
	return &EnvironmentHandle{Mgr: mgr, Drv: drv, Env: env}
}

// Realize creates envs_path/<tag>/ on disk and writes the environment
// back to the config manager.
func (h *EnvironmentHandle) Realize() error {
	dir := h.Mgr.EnvDir(h.Env.Tag)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "failed to create environment directory "+dir, err)
	}
	if err := h.Mgr.AddEnvironment(*h.Env); err != nil {
		return err
	}
	return nil
}

// RealizeFrom hard-links src's directory tree into this environment's
// new location (cheap content preservation), then syncs config.
func (h *EnvironmentHandle) RealizeFrom(src *EnvironmentHandle) error {
	srcDir := src.Mgr.EnvDir(src.Env.Tag)
	dstDir := h.Mgr.EnvDir(h.Env.Tag)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return os.Link(path, target)
	})
	if err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "failed to hard-link environment tree from "+srcDir, err)
	}
	if err := h.Mgr.AddEnvironment(*h.Env); err != nil {
		return err
	}
	return nil
}

// MoveTo performs an atomic directory rename followed by a tag update
// and config sync. If the rename fails, the config is left untouched.
func (h *EnvironmentHandle) MoveTo(newTag string) error {
	oldDir := h.Mgr.EnvDir(h.Env.Tag)
	newDir := h.Mgr.EnvDir(newTag)
	if err := os.Rename(oldDir, newDir); err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "failed to rename environment directory", err)
	}
	moved := *h.Env
	if err := h.Mgr.RemoveEnvironment(moved.Tag); err != nil {
		return err
	}
	moved.Tag = newTag
	h.Env = &moved
	return h.Mgr.AddEnvironment(moved)
}

// Delete removes the environment's directory and its config entry.
func (h *EnvironmentHandle) Delete() error {
	dir := h.Mgr.EnvDir(h.Env.Tag)
	if err := os.RemoveAll(dir); err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "failed to remove environment directory "+dir, err)
	}
	return h.Mgr.RemoveEnvironment(h.Env.Tag)
}

// Clone deep-copies the environment's config under a new tag and
// returns a new (not yet realized) handle.
func (h *EnvironmentHandle) Clone(newTag string) *EnvironmentHandle {
	cloned := h.Mgr.EnvFromOther(h.Env, newTag)
	return NewEnvironmentHandle(h.Mgr, h.Drv, cloned)
}

// Render emits the environment's own config as YAML, for inspection.
// When resolved is true, placeholders are substituted against a
// throwaway deep copy; h.Env itself is never mutated.
func (h *EnvironmentHandle) Render(resolved bool) (string, error) {
	env := h.Env
	if resolved {
		cp := model.DeepCopy(*h.Env)
		resolver.Resolve(&cp, h.Mgr.Values())
		env = &cp
	}
	data, err := yaml.Marshal(env)
	if err != nil {
		return "", shperr.Wrap(shperr.KindConfig, "failed to render environment "+h.Env.Tag, err)
	}
	return string(data), nil
}

// RenderTarget emits the gated map of engine-ready compose documents.
func (h *EnvironmentHandle) RenderTarget(resolved bool) (map[string]string, error) {
	env := h.Env
	if resolved {
		cp := model.DeepCopy(*h.Env)
		resolver.Resolve(&cp, h.Mgr.Values())
		env = &cp
	}
	return renderer.Render(env)
}

// Start renders the environment (resolved), persists the gated
// document map into status.rendered_config, then invokes the engine
// driver's "up -d" against the "ungated" document. Services gated by
// probes remain declared but undeployed until probes pass.
func (h *EnvironmentHandle) Start(ctx context.Context) error {
	resolved := model.DeepCopy(*h.Env)
	// Resolution of this copy happens at the call site (cmd layer),
	// which has access to the value store; by the time Start is
	// called h.Env already carries resolved string values.
	if err := renderer.EnsureResources(&resolved); err != nil {
		return err
	}
	docs, err := renderer.Render(&resolved)
	if err != nil {
		return err
	}
	for key, doc := range docs {
		if err := renderer.Validate(h.Env.Tag+"/"+key, doc); err != nil {
			return err
		}
	}

	h.Env.Status.RenderedConfig = docs
	h.Mgr.AddOrSetEnvironment(*h.Env)

	ungated := docs[renderer.UngatedKey]
	res, err := h.Drv.RunCompose(ctx, []string{ungated}, []string{"up", "-d", "--remove-orphans"}, h.ProjectName(), 0)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return shperr.New(shperr.KindEngine, "engine reported a nonzero exit starting environment "+h.Env.Tag)
	}
	return nil
}

// Stop tears down the "ungated" document, if present, then clears
// rendered_config and syncs.
func (h *EnvironmentHandle) Stop(ctx context.Context) error {
	ungated, ok := h.Env.Status.RenderedConfig[renderer.UngatedKey]
	if ok && ungated != "" {
		if _, err := h.Drv.RunCompose(ctx, []string{ungated}, []string{"down"}, h.ProjectName(), 0); err != nil {
			return err
		}
	}
	h.Env.Status.RenderedConfig = nil
	h.Mgr.AddOrSetEnvironment(*h.Env)
	return nil
}

// Reload restarts the "ungated" document; fails if not running.
func (h *EnvironmentHandle) Reload(ctx context.Context) error {
	ungated, ok := h.Env.Status.RenderedConfig[renderer.UngatedKey]
	if !ok || ungated == "" {
		return shperr.Precondition("environment %q is not running", h.Env.Tag)
	}
	_, err := h.Drv.RunCompose(ctx, []string{ungated}, []string{"restart"}, h.ProjectName(), 0)
	return err
}

// StatusRow is one line of the environment status table.
type StatusRow struct {
	Service string
	State   string
	Health  string
}

// Status parses `ps --format json` against the "ungated" document and
// joins it against declared services to produce a running/stopped
// table, tolerating unparseable lines.
func (h *EnvironmentHandle) Status(ctx context.Context) ([]StatusRow, error) {
	ungated, ok := h.Env.Status.RenderedConfig[renderer.UngatedKey]
	if !ok || ungated == "" {
		rows := make([]StatusRow, 0, len(h.Env.Services))
		for _, s := range h.Env.Services {
			rows = append(rows, StatusRow{Service: model.ServiceCanonicalName(s.Tag, h.Env.Tag), State: "stopped"})
		}
		return rows, nil
	}

	f, err := os.CreateTemp("", "shpctl-status-*.yml")
	if err != nil {
		return nil, shperr.Wrap(shperr.KindFilesystem, "failed to write temp compose file for status", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(ungated); err != nil {
		f.Close()
		return nil, shperr.Wrap(shperr.KindFilesystem, "failed to write temp compose file for status", err)
	}
	f.Close()

	containers, err := h.Drv.PS(ctx, f.Name(), h.ProjectName())
	if err != nil {
		return nil, err
	}
	// compose reports the container-canonical name (the compose service
	// key) in the "Service" field, not "Name" (the real, often
	// auto-generated, container name).
	byService := map[string]engine.ContainerStatus{}
	for _, c := range containers {
		byService[c.Service] = c
	}

	var rows []StatusRow
	for _, s := range h.Env.Services {
		name := model.ServiceCanonicalName(s.Tag, h.Env.Tag)
		state := "stopped"
		health := ""
		for _, cnt := range s.Containers {
			key := model.ContainerCanonicalName(cnt.Tag, s.Tag, h.Env.Tag)
			if c, ok := byService[key]; ok {
				state = c.State
				health = c.Health
				break
			}
		}
		rows = append(rows, StatusRow{Service: name, State: state, Health: health})
	}
	return rows, nil
}

// ProjectName is the compose project used for this environment: its tag.
func (h *EnvironmentHandle) ProjectName() string { return h.Env.Tag }
