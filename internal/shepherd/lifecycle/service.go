package lifecycle

import (
	"context"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/moonyfringers/shpctl/internal/shepherd/configmgr"
	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/renderer"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// ServiceHandle wraps a Service with the environment it belongs to and
// the collaborators its operations need.
type ServiceHandle struct {
	Mgr *configmgr.Manager
	Drv *engine.Driver
	Env *model.Environment
	Svc *model.Service
}

func NewServiceHandle(mgr *configmgr.Manager, drv *engine.Driver, env *model.Environment, svc *model.Service) *ServiceHandle {
	return &ServiceHandle{Mgr: mgr, Drv: drv, Env: env, Svc: svc}
}

func (h *ServiceHandle) CanonicalName() string {
	return model.ServiceCanonicalName(h.Svc.Tag, h.Env.Tag)
}

// containerNames returns the compose service keys (container-canonical
// names) for every container in the service, in declaration order.
// These, not CanonicalName(), are the keys RenderTarget/renderer.Render
// actually emit into the compose document.
func (h *ServiceHandle) containerNames() []string {
	names := make([]string, 0, len(h.Svc.Containers))
	for _, cnt := range h.Svc.Containers {
		names = append(names, model.ContainerCanonicalName(cnt.Tag, h.Svc.Tag, h.Env.Tag))
	}
	return names
}

// Render emits the service's own config as YAML, for inspection. When
// resolved is true, placeholders are substituted first against a
// throwaway deep copy; h.Svc itself is never mutated.
func (h *ServiceHandle) Render(resolved bool) (string, error) {
	svc := h.Svc
	if resolved {
		cp := model.DeepCopy(*h.Svc)
		resolver.Resolve(&cp, h.Mgr.Values())
		svc = &cp
	}
	data, err := yaml.Marshal(svc)
	if err != nil {
		return "", shperr.Wrap(shperr.KindConfig, "failed to render service "+h.Svc.Tag, err)
	}
	return string(data), nil
}

// RenderTarget emits the engine-ready fragment: compose service
// definitions, one per container.
func (h *ServiceHandle) RenderTarget(resolved bool) (string, error) {
	svc := h.Svc
	if resolved {
		cp := model.DeepCopy(*h.Svc)
		resolver.Resolve(&cp, h.Mgr.Values())
		svc = &cp
	}
	doc := renderer.ComposeDoc{Services: map[string]renderer.ComposeService{}}
	for _, cnt := range svc.Containers {
		key := model.ContainerCanonicalName(cnt.Tag, svc.Tag, h.Env.Tag)
		hostname := cnt.Hostname
		if hostname == "" {
			hostname = key
		}
		containerName := cnt.ContainerName
		if containerName == "" {
			containerName = key
		}
		doc.Services[key] = renderer.ComposeService{
			Image:         cnt.Image,
			Hostname:      hostname,
			ContainerName: containerName,
			WorkingDir:    cnt.Workdir,
			Volumes:       cnt.Volumes,
			Environment:   cnt.Environment,
			Ports:         cnt.Ports,
			Networks:      cnt.Networks,
			ExtraHosts:    cnt.ExtraHosts,
		}
	}
	return renderer.EncodeDoc(doc)
}

// Build invokes the engine's image-build command for every container
// that has a build block. Missing fields or a missing Dockerfile is
// fatal.
func (h *ServiceHandle) Build(ctx context.Context) error {
	for _, cnt := range h.Svc.Containers {
		if cnt.Build == nil {
			continue
		}
		if cnt.Build.DockerfilePath == "" || cnt.Build.ContextPath == "" {
			return shperr.New(shperr.KindConfig, "container "+cnt.Tag+" build configuration is missing dockerfile_path or context_path")
		}
		if err := h.Drv.BuildImage(ctx, cnt.Build.DockerfilePath, cnt.Build.ContextPath, cnt.Image); err != nil {
			return err
		}
	}
	return nil
}

// requireRunning gates service-scoped operations on the parent
// environment being up.
func (h *ServiceHandle) requireRunning() (string, error) {
	ungated, ok := h.Env.Status.RenderedConfig[renderer.UngatedKey]
	if !ok || ungated == "" {
		return "", shperr.Precondition("environment %q is not running; start it before operating on service %q", h.Env.Tag, h.Svc.Tag)
	}
	return ungated, nil
}

func (h *ServiceHandle) Start(ctx context.Context) error {
	ungated, err := h.requireRunning()
	if err != nil {
		return err
	}
	args := append([]string{"up", "-d"}, h.containerNames()...)
	_, err = h.Drv.RunCompose(ctx, []string{ungated}, args, h.Env.Tag, 0)
	return err
}

func (h *ServiceHandle) Stop(ctx context.Context) error {
	ungated, err := h.requireRunning()
	if err != nil {
		return err
	}
	args := append([]string{"stop"}, h.containerNames()...)
	_, err = h.Drv.RunCompose(ctx, []string{ungated}, args, h.Env.Tag, 0)
	return err
}

func (h *ServiceHandle) Reload(ctx context.Context) error {
	ungated, err := h.requireRunning()
	if err != nil {
		return err
	}
	args := append([]string{"restart"}, h.containerNames()...)
	_, err = h.Drv.RunCompose(ctx, []string{ungated}, args, h.Env.Tag, 0)
	return err
}

// Stdout returns captured stdout+stderr from the service's containers.
func (h *ServiceHandle) Stdout(ctx context.Context, lines int, follow bool) (string, error) {
	ungated, err := h.requireRunning()
	if err != nil {
		return "", err
	}
	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	if lines > 0 {
		args = append(args, "--tail", strconv.Itoa(lines))
	}
	args = append(args, h.containerNames()...)
	res, err := h.Drv.RunCompose(ctx, []string{ungated}, args, h.Env.Tag, 0)
	if err != nil {
		return "", err
	}
	return res.Stdout + res.Stderr, nil
}

// ShellArgv returns the argv shpctl should exec into an interactive shell
// inside the service's container; the CLI layer execs this directly so
// stdio can be attached.
func (h *ServiceHandle) ShellArgv(shellPath string) ([]string, error) {
	if _, err := h.requireRunning(); err != nil {
		return nil, err
	}
	names := h.containerNames()
	if len(names) == 0 {
		return nil, shperr.Precondition("service %q has no containers to exec into", h.Svc.Tag)
	}
	if shellPath == "" {
		shellPath = "/bin/sh"
	}
	return []string{"compose", "-p", h.Env.Tag, "exec", names[0], shellPath}, nil
}

// Clone deep-copies the service, resets status and reassigns the tag.
func (h *ServiceHandle) Clone(newTag string) *model.Service {
	cp := model.DeepCopy(*h.Svc)
	cp.Tag = newTag
	cp.Status = model.EntityStatus{}
	return &cp
}
