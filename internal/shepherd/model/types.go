// Package model defines the declarative record types that make up a
// GlobalConfig document: templates, environments, services, containers,
// networks, volumes and probes.
package model

// Resolvable is embedded by every record that carries user-facing string
// fields subject to ${VAR} / #{root.path} placeholder substitution. The
// resolved flag is only read and written through SetResolved and
// IsResolved; resolver.Resolve does not touch it, since it substitutes
// in place on a deep copy instead.
type Resolvable struct {
	resolved bool `yaml:"-"`
}

func (r *Resolvable) SetResolved(v bool) { r.resolved = v }
func (r *Resolvable) IsResolved() bool   { return r.resolved }

// GlobalConfig is the root of the persisted document.
type GlobalConfig struct {
	Resolvable `yaml:"-"`

	Logging         LoggingCfg                  `yaml:"logging"`
	ShpdRegistry    string                       `yaml:"shpd_registry,omitempty"`
	EnvsPath        string                       `yaml:"envs_path"`
	VolumesPath     string                       `yaml:"volumes_path"`
	TemplatesPath   string                       `yaml:"templates_path,omitempty"`
	HostInetIP      string                       `yaml:"host_inet_ip,omitempty"`
	Domain          string                       `yaml:"domain,omitempty"`
	DNSType         string                       `yaml:"dns_type,omitempty"`
	CA              *CACfg                       `yaml:"ca,omitempty"`
	Cert            *CertCfg                     `yaml:"cert,omitempty"`
	StagingArea     StagingAreaCfg               `yaml:"staging_area"`
	EnvTemplates    []EnvironmentTemplate        `yaml:"env_templates,omitempty"`
	ServiceTemplates []ServiceTemplate           `yaml:"service_templates,omitempty"`
	Envs            []Environment                `yaml:"envs,omitempty"`
}

type LoggingCfg struct {
	Resolvable `yaml:"-"`
	File    string `yaml:"file,omitempty"`
	Level   string `yaml:"level,omitempty"`
	Stdout  string `yaml:"stdout,omitempty" boolify:"true"`
	Format  string `yaml:"format,omitempty"`
}

type StagingAreaCfg struct {
	Resolvable  `yaml:"-"`
	VolumesPath string `yaml:"volumes_path"`
	ImagesPath  string `yaml:"images_path"`
}

type CACfg struct {
	Resolvable `yaml:"-"`
	CertPath string `yaml:"cert_path,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

type CertCfg struct {
	Resolvable `yaml:"-"`
	CertPath string `yaml:"cert_path,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// ServiceTemplateRef names a ServiceTemplate bound into an
// EnvironmentTemplate.
type ServiceTemplateRef struct {
	Resolvable `yaml:"-"`
	Tag   string `yaml:"tag"`
	Class string `yaml:"class,omitempty"`
}

type EnvironmentTemplate struct {
	Resolvable       `yaml:"-"`
	Tag              string               `yaml:"tag"`
	Factory          string               `yaml:"factory,omitempty"`
	ServiceTemplates []ServiceTemplateRef `yaml:"service_templates,omitempty"`
	Networks         []Network            `yaml:"networks,omitempty"`
	Volumes          []Volume             `yaml:"volumes,omitempty"`
}

type ServiceTemplate struct {
	Resolvable `yaml:"-"`
	Tag        string            `yaml:"tag"`
	Factory    string            `yaml:"factory,omitempty"`
	Containers []Container       `yaml:"containers,omitempty"`
	Build      *BuildCfg         `yaml:"build,omitempty"`
	Labels     []string          `yaml:"labels,omitempty"`
	Ingress    string            `yaml:"ingress,omitempty" boolify:"true"`
	EmptyEnv   string            `yaml:"empty_env,omitempty" boolify:"true"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

type BuildCfg struct {
	Resolvable     `yaml:"-"`
	DockerfilePath string `yaml:"dockerfile_path"`
	ContextPath    string `yaml:"context_path"`
}

type Container struct {
	Resolvable            `yaml:"-"`
	Tag                   string            `yaml:"tag"`
	Image                 string            `yaml:"image,omitempty"`
	Hostname              string            `yaml:"hostname,omitempty"`
	ContainerName         string            `yaml:"container_name,omitempty"`
	Workdir               string            `yaml:"workdir,omitempty"`
	Volumes               []string          `yaml:"volumes,omitempty"`
	Environment           map[string]string `yaml:"environment,omitempty"`
	Ports                 []string          `yaml:"ports,omitempty"`
	Networks              []string          `yaml:"networks,omitempty"`
	ExtraHosts            []string          `yaml:"extra_hosts,omitempty"`
	Build                 *BuildCfg         `yaml:"build,omitempty"`
	SubjectAlternativeName string           `yaml:"subject_alternative_name,omitempty"`
}

// StartCfg gates a service's deployment on a set of probes passing.
type StartCfg struct {
	Resolvable `yaml:"-"`
	WhenProbes []string `yaml:"when_probes,omitempty"`
}

type Environment struct {
	Resolvable `yaml:"-"`
	Tag        string        `yaml:"tag"`
	Template   string        `yaml:"template"`
	Factory    string        `yaml:"factory,omitempty"`
	Services   []Service     `yaml:"services,omitempty"`
	Networks   []Network     `yaml:"networks,omitempty"`
	Volumes    []Volume      `yaml:"volumes,omitempty"`
	Probes     []Probe       `yaml:"probes,omitempty"`
	Status     EntityStatus  `yaml:"status"`
}

type Service struct {
	Resolvable   `yaml:"-"`
	Tag          string            `yaml:"tag"`
	Template     string            `yaml:"template"`
	Factory      string            `yaml:"factory,omitempty"`
	ServiceClass string            `yaml:"service_class,omitempty"`
	Containers   []Container       `yaml:"containers,omitempty"`
	Upstreams    []string          `yaml:"upstreams,omitempty"`
	Labels       []string          `yaml:"labels,omitempty"`
	Ingress      string            `yaml:"ingress,omitempty" boolify:"true"`
	EmptyEnv     string            `yaml:"empty_env,omitempty" boolify:"true"`
	Properties   map[string]string `yaml:"properties,omitempty"`
	Status       EntityStatus      `yaml:"status"`
	Start        *StartCfg         `yaml:"start,omitempty"`
}

// Network is either external (Name set, External true) or managed
// (Driver set). Mixing both at load time is a parse error.
type Network struct {
	Resolvable  `yaml:"-"`
	Tag         string            `yaml:"tag"`
	Name        string            `yaml:"name,omitempty"`
	External    string            `yaml:"external,omitempty" boolify:"true"`
	Driver      string            `yaml:"driver,omitempty"`
	Attachable  string            `yaml:"attachable,omitempty" boolify:"true"`
	EnableIPv6  string            `yaml:"enable_ipv6,omitempty" boolify:"true"`
	DriverOpts  map[string]string `yaml:"driver_opts,omitempty"`
	IPAM        map[string]string `yaml:"ipam,omitempty"`
}

// Volume is either external (Name set) or managed (Driver set).
type Volume struct {
	Resolvable `yaml:"-"`
	Tag        string            `yaml:"tag"`
	External   string            `yaml:"external,omitempty" boolify:"true"`
	Name       string            `yaml:"name,omitempty"`
	Driver     string            `yaml:"driver,omitempty"`
	DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
	Labels     []string          `yaml:"labels,omitempty"`
}

// Probe is a one-shot readiness container.
type Probe struct {
	Resolvable `yaml:"-"`
	Tag        string    `yaml:"tag"`
	Container  Container `yaml:"container"`
	Script     string    `yaml:"script,omitempty"`
}

// EntityStatus tracks declared-active intent and the rendered-config
// snapshot of what was last deployed.
type EntityStatus struct {
	Resolvable     `yaml:"-"`
	Active         bool              `yaml:"active"`
	Archived       bool              `yaml:"archived"`
	RenderedConfig map[string]string `yaml:"rendered_config,omitempty"`
}

// IsRunning reports the halt/start invariant: rendered_config is
// non-empty iff the environment is currently running.
func (s *EntityStatus) IsRunning() bool {
	return len(s.RenderedConfig) > 0
}
