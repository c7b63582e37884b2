// Package configmgr owns the in-memory GlobalConfig document: load,
// store, CRUD for environments, active-environment selection, and the
// deep-copying factory helpers that lower templates into instances
// (spec.md §4.3), grounded on maiko-SDBX's internal/registry/registry.go
// and loader.go (CRUD shape, YAML-roundtrip deep copy).
package configmgr

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// Manager is the exclusive owner of the in-memory config tree.
// Environment and Service values handed out by it are views; callers
// write back via AddOrSetEnvironment.
type Manager struct {
	path   string
	config *model.GlobalConfig
	values resolver.ValueStore
}

// New wraps an already-loaded document at path with the given value
// store (used for ${VAR} resolution requests).
func New(path string, cfg *model.GlobalConfig, values resolver.ValueStore) *Manager {
	return &Manager{path: path, config: cfg, values: values}
}

// Load parses the document at path into a new Manager.
func Load(path string, values resolver.ValueStore) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, shperr.Filesystem(err, "failed to read config document %q", path)
	}
	var cfg model.GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, shperr.Config(err, "failed to parse config document %q", path)
	}
	return New(path, &cfg, values), nil
}

// Store serializes the tree back to disk. Per spec.md §4.3, the tree is
// always written unresolved: Go's zero-value semantics already keep raw
// text in the struct fields (resolution never mutates the manager's own
// copy — see Resolved()), so no explicit toggle is needed here, unlike
// the Python original's attribute-interception design.
func (m *Manager) Store() error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return shperr.Wrap(shperr.KindConfig, "failed to serialize config document", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return shperr.Wrap(shperr.KindFilesystem, "failed to write config document "+m.path, err)
	}
	return nil
}

// Config returns the raw (unresolved) tree.
func (m *Manager) Config() *model.GlobalConfig { return m.config }

// Resolved returns a fully resolved deep copy of the tree; the
// manager's own copy is never mutated by resolution (see resolver.Resolve).
func (m *Manager) Resolved() *model.GlobalConfig {
	cp := model.DeepCopy(m.config)
	resolver.Resolve(&cp, m.values)
	return &cp
}

// Values exposes the manager's value store, for callers (the cmd layer)
// that need to resolve a single Environment or Service view in
// isolation rather than the whole tree.
func (m *Manager) Values() resolver.ValueStore { return m.values }

// ResolvedEnvironment returns a resolved deep copy of the named
// environment. The manager's own copy is left untouched.
func (m *Manager) ResolvedEnvironment(tag string) (*model.Environment, error) {
	env, err := m.GetEnvironment(tag)
	if err != nil {
		return nil, err
	}
	cp := model.DeepCopy(*env)
	resolver.Resolve(&cp, m.values)
	return &cp, nil
}

// --- lookups ---

func (m *Manager) GetEnvironment(tag string) (*model.Environment, error) {
	for i := range m.config.Envs {
		if m.config.Envs[i].Tag == tag {
			return &m.config.Envs[i], nil
		}
	}
	return nil, shperr.Precondition("environment %q not found", tag)
}

func (m *Manager) GetEnvironments() []model.Environment { return m.config.Envs }

func (m *Manager) GetEnvironmentTemplate(tag string) (*model.EnvironmentTemplate, error) {
	for i := range m.config.EnvTemplates {
		if m.config.EnvTemplates[i].Tag == tag {
			return &m.config.EnvTemplates[i], nil
		}
	}
	return nil, shperr.Precondition("environment template %q not found", tag)
}

func (m *Manager) GetEnvironmentTemplateTags() []string {
	tags := make([]string, 0, len(m.config.EnvTemplates))
	for _, t := range m.config.EnvTemplates {
		tags = append(tags, t.Tag)
	}
	return tags
}

func (m *Manager) GetServiceTemplate(tag string) (*model.ServiceTemplate, error) {
	for i := range m.config.ServiceTemplates {
		if m.config.ServiceTemplates[i].Tag == tag {
			return &m.config.ServiceTemplates[i], nil
		}
	}
	return nil, shperr.Precondition("service template %q not found", tag)
}

// --- CRUD ---

func (m *Manager) ExistsEnvironment(tag string) bool {
	_, err := m.GetEnvironment(tag)
	return err == nil
}

func (m *Manager) AddEnvironment(e model.Environment) error {
	if m.ExistsEnvironment(e.Tag) {
		return shperr.Precondition("environment %q already exists", e.Tag)
	}
	m.config.Envs = append(m.config.Envs, e)
	return nil
}

func (m *Manager) SetEnvironment(tag string, e model.Environment) error {
	for i := range m.config.Envs {
		if m.config.Envs[i].Tag == tag {
			m.config.Envs[i] = e
			return nil
		}
	}
	return shperr.Precondition("environment %q not found", tag)
}

// AddOrSetEnvironment is the sole write-back path Environment and
// Service views use to persist mutations into the manager's tree.
func (m *Manager) AddOrSetEnvironment(e model.Environment) {
	for i := range m.config.Envs {
		if m.config.Envs[i].Tag == e.Tag {
			m.config.Envs[i] = e
			return
		}
	}
	m.config.Envs = append(m.config.Envs, e)
}

func (m *Manager) RemoveEnvironment(tag string) error {
	for i := range m.config.Envs {
		if m.config.Envs[i].Tag == tag {
			m.config.Envs = append(m.config.Envs[:i], m.config.Envs[i+1:]...)
			return nil
		}
	}
	return shperr.Precondition("environment %q not found", tag)
}

// GetActiveEnvironment returns the single environment with
// status.active == true, if any.
func (m *Manager) GetActiveEnvironment() (*model.Environment, bool) {
	for i := range m.config.Envs {
		if m.config.Envs[i].Status.Active {
			return &m.config.Envs[i], true
		}
	}
	return nil, false
}

// SetActiveEnvironment sets active=true on tag and false on every other
// environment in a single pass, per spec.md's Design Notes ("simpler
// and safer than a separate current pointer").
func (m *Manager) SetActiveEnvironment(tag string) error {
	if !m.ExistsEnvironment(tag) {
		return shperr.Precondition("environment %q not found", tag)
	}
	for i := range m.config.Envs {
		m.config.Envs[i].Status.Active = m.config.Envs[i].Tag == tag
	}
	return nil
}

func (m *Manager) GetServiceTags(env *model.Environment) []string {
	tags := make([]string, 0, len(env.Services))
	for _, s := range env.Services {
		tags = append(tags, s.Tag)
	}
	return tags
}

func (m *Manager) GetProbeTags(env *model.Environment) []string {
	tags := make([]string, 0, len(env.Probes))
	for _, p := range env.Probes {
		tags = append(tags, p.Tag)
	}
	return tags
}

// --- factory helpers (spec.md §4.3: deep-copy discipline) ---

// EnvFromTag builds a fresh environment from envTemplateTag, eagerly
// instantiating every referenced service template as a service with
// default fields. Fails if an environment with tag already exists.
func (m *Manager) EnvFromTag(envTemplateTag, tag string) (*model.Environment, error) {
	if m.ExistsEnvironment(tag) {
		return nil, shperr.Precondition("environment %q already exists", tag)
	}
	tmpl, err := m.GetEnvironmentTemplate(envTemplateTag)
	if err != nil {
		return nil, err
	}

	env := model.Environment{
		Tag:      tag,
		Template: envTemplateTag,
		Factory:  tmpl.Factory,
		Networks: model.DeepCopy(tmpl.Networks),
		Volumes:  model.DeepCopy(tmpl.Volumes),
	}

	for _, ref := range tmpl.ServiceTemplates {
		st, err := m.GetServiceTemplate(ref.Tag)
		if err != nil {
			return nil, err
		}
		svc, err := m.SvcFromServiceTemplate(st, ref.Tag, ref.Class)
		if err != nil {
			return nil, err
		}
		env.Services = append(env.Services, *svc)
	}

	return &env, nil
}

// EnvFromOther deep-clones env with a new tag, resetting status.
func (m *Manager) EnvFromOther(env *model.Environment, newTag string) *model.Environment {
	cp := model.DeepCopy(*env)
	cp.Tag = newTag
	cp.Status = model.EntityStatus{}
	return &cp
}

// SvcFromServiceTemplate instantiates a service from a template,
// deep-copying every collection field so the original template is
// never shared.
func (m *Manager) SvcFromServiceTemplate(st *model.ServiceTemplate, tag, class string) (*model.Service, error) {
	svc := model.Service{
		Tag:          tag,
		Template:     st.Tag,
		Factory:      st.Factory,
		ServiceClass: class,
		Containers:   model.DeepCopy(st.Containers),
		Labels:       model.DeepCopy(st.Labels),
		Ingress:      st.Ingress,
		EmptyEnv:     st.EmptyEnv,
		Properties:   model.DeepCopy(st.Properties),
	}
	return &svc, nil
}

// --- directory materialization ---

// EnsureDirs creates envs_path, volumes_path, staging_area.volumes_path
// and staging_area.images_path if absent; an existing non-directory at
// any of these paths is fatal.
func (m *Manager) EnsureDirs() error {
	dirs := []string{
		m.config.EnvsPath,
		m.config.VolumesPath,
		m.config.StagingArea.VolumesPath,
		m.config.StagingArea.ImagesPath,
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		info, err := os.Stat(d)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return shperr.Wrap(shperr.KindFilesystem, "failed to create directory "+d, err)
			}
			continue
		}
		if err != nil {
			return shperr.Wrap(shperr.KindFilesystem, "failed to stat directory "+d, err)
		}
		if !info.IsDir() {
			return shperr.New(shperr.KindFilesystem, fmt.Sprintf("%s exists and is not a directory", d))
		}
	}
	return nil
}

// EnvDir returns the on-disk directory for an environment tag.
func (m *Manager) EnvDir(tag string) string {
	return filepath.Join(m.config.EnvsPath, tag)
}
