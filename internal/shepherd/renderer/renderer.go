// Package renderer turns a resolved Environment into a mapping of
// probe-gate key to compose-YAML-document string (spec.md §4.5),
// grounded on maiko-SDBX's internal/generator/compose.go ComposeFile /
// ComposeGenerator shape, generalized from a single document to a gated
// map. Validation of each produced document is layered on via
// compose-go/v2's loader, per SPEC_FULL.md's DOMAIN STACK.
package renderer

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"

	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// UngatedKey is the probe-key for the default document containing all
// networks, volumes, and services with no start.when_probes.
const UngatedKey = "ungated"

// ComposeDoc mirrors the subset of the compose schema shpctl emits.
type ComposeDoc struct {
	Services map[string]ComposeService `yaml:"services,omitempty"`
	Networks map[string]ComposeNetwork `yaml:"networks,omitempty"`
	Volumes  map[string]ComposeVolume  `yaml:"volumes,omitempty"`
}

type ComposeService struct {
	Image         string            `yaml:"image,omitempty"`
	Hostname      string            `yaml:"hostname,omitempty"`
	ContainerName string            `yaml:"container_name,omitempty"`
	WorkingDir    string            `yaml:"working_dir,omitempty"`
	Volumes       []string          `yaml:"volumes,omitempty"`
	Environment   map[string]string `yaml:"environment,omitempty"`
	Ports         []string          `yaml:"ports,omitempty"`
	Networks      []string          `yaml:"networks,omitempty"`
	ExtraHosts    []string          `yaml:"extra_hosts,omitempty"`
	Command       string            `yaml:"command,omitempty"`
	Restart       string            `yaml:"restart,omitempty"`
}

type ComposeNetwork struct {
	Name       string            `yaml:"name,omitempty"`
	External   *bool             `yaml:"external,omitempty"`
	Driver     string            `yaml:"driver,omitempty"`
	Attachable *bool             `yaml:"attachable,omitempty"`
	EnableIPv6 *bool             `yaml:"enable_ipv6,omitempty"`
	DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
	IPAM       map[string]string `yaml:"ipam,omitempty"`
}

type ComposeVolume struct {
	Name       string            `yaml:"name,omitempty"`
	External   *bool             `yaml:"external,omitempty"`
	Driver     string            `yaml:"driver,omitempty"`
	DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
	Labels     []string          `yaml:"labels,omitempty"`
}

// Render produces the gated compose-document map for env. Callers are
// responsible for passing a tree in the resolution state they want
// reflected in the output (resolved for engine consumption and for the
// rendered_config snapshot; raw for inspection via `get -r=false`).
func Render(env *model.Environment) (map[string]string, error) {
	ungated := ComposeDoc{Services: map[string]ComposeService{}}
	gated := map[string]ComposeDoc{}

	if err := renderNetworks(env, &ungated); err != nil {
		return nil, err
	}
	renderVolumes(env, &ungated)

	for _, svc := range env.Services {
		gateKey := gateKeyFor(svc)
		var target *ComposeDoc
		if gateKey == UngatedKey {
			target = &ungated
		} else {
			d, ok := gated[gateKey]
			if !ok {
				d = ComposeDoc{Services: map[string]ComposeService{}}
			}
			gated[gateKey] = d
			target = &d
		}
		for _, cnt := range svc.Containers {
			key := model.ContainerCanonicalName(cnt.Tag, svc.Tag, env.Tag)
			target.Services[key] = renderContainer(cnt, key)
		}
		if gateKey != UngatedKey {
			gated[gateKey] = *target
		}
	}

	out := map[string]string{}
	ungatedYAML, err := encode(ungated)
	if err != nil {
		return nil, err
	}
	out[UngatedKey] = ungatedYAML

	for key, doc := range gated {
		y, err := encode(doc)
		if err != nil {
			return nil, err
		}
		out[key] = y
	}
	return out, nil
}

// gateKeyFor returns "ungated" or the stable sorted-join of a service's
// start.when_probes.
func gateKeyFor(svc model.Service) string {
	if svc.Start == nil || len(svc.Start.WhenProbes) == 0 {
		return UngatedKey
	}
	probes := append([]string(nil), svc.Start.WhenProbes...)
	sort.Strings(probes)
	return strings.Join(probes, "|")
}

func renderNetworks(env *model.Environment, doc *ComposeDoc) error {
	if len(env.Networks) == 0 {
		return nil
	}
	doc.Networks = map[string]ComposeNetwork{}
	for _, n := range env.Networks {
		external, extOK := model.Boolify(n.External)
		managed := n.Driver != ""
		if extOK && external && managed {
			return shperr.New(shperr.KindConfig, "network "+n.Tag+" declares both external:true and a driver; these are mutually exclusive")
		}
		cn := ComposeNetwork{}
		if extOK && external {
			cn.Name = n.Name
			t := true
			cn.External = &t
		} else {
			cn.Driver = n.Driver
			if v, ok := model.Boolify(n.Attachable); ok {
				cn.Attachable = &v
			}
			if v, ok := model.Boolify(n.EnableIPv6); ok {
				cn.EnableIPv6 = &v
			}
			cn.DriverOpts = n.DriverOpts
			cn.IPAM = n.IPAM
		}
		doc.Networks[n.Tag] = cn
	}
	return nil
}

func renderVolumes(env *model.Environment, doc *ComposeDoc) {
	if len(env.Volumes) == 0 {
		return
	}
	doc.Volumes = map[string]ComposeVolume{}
	for _, v := range env.Volumes {
		external, extOK := model.Boolify(v.External)
		cv := ComposeVolume{}
		if extOK && external {
			cv.Name = v.Name
			t := true
			cv.External = &t
		} else {
			cv.Driver = v.Driver
			cv.DriverOpts = v.DriverOpts
			cv.Labels = v.Labels
		}
		doc.Volumes[v.Tag] = cv
	}
}

// EnsureResources pre-creates the host bind-mount directory for any
// volume shaped like a local bind mount (driver "local",
// driver_opts.type "none", driver_opts.o "bind"), idempotently, per
// spec.md §4.5.
func EnsureResources(env *model.Environment) error {
	for _, v := range env.Volumes {
		if v.Driver != "local" {
			continue
		}
		if v.DriverOpts["type"] != "none" || v.DriverOpts["o"] != "bind" {
			continue
		}
		device := v.DriverOpts["device"]
		if device == "" {
			continue
		}
		if err := os.MkdirAll(device, 0o755); err != nil {
			return shperr.Wrap(shperr.KindFilesystem, "failed to create bind-mount directory for volume "+v.Tag, err)
		}
	}
	return nil
}

// renderContainer builds the compose service fragment for cnt.
// Hostname and ContainerName default to canonicalName (spec.md §4.4:
// the canonical name is used "as compose service keys, hostnames, and
// container names unless the user overrode them in config") whenever
// the user left them blank.
func renderContainer(cnt model.Container, canonicalName string) ComposeService {
	hostname := cnt.Hostname
	if hostname == "" {
		hostname = canonicalName
	}
	containerName := cnt.ContainerName
	if containerName == "" {
		containerName = canonicalName
	}
	cs := ComposeService{
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
	return cs
}

// EncodeDoc serializes a ComposeDoc the same way Render does, exported
// for the probe runtime's overlay-document construction.
func EncodeDoc(doc ComposeDoc) (string, error) {
	return encode(doc)
}

func encode(doc ComposeDoc) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", shperr.Wrap(shperr.KindConfig, "failed to encode compose document", err)
	}
	enc.Close()
	return sb.String(), nil
}

// Validate runs a rendered document through compose-go's loader
// (SkipInterpolation, since shpctl has already resolved all
// placeholders itself) to catch structurally invalid YAML the renderer
// produced before it ever reaches the engine driver. Schema validation
// is skipped (SkipValidation) for every document, ungated and gated
// alike, so only documents the loader cannot parse are rejected.
func Validate(name, yamlDoc string) error {
	config := composetypes.ConfigDetails{
		ConfigFiles: []composetypes.ConfigFile{
			{Filename: name, Content: []byte(yamlDoc)},
		},
		Environment: composetypes.Mapping{},
	}
	opts := func(o *loader.Options) {
		o.SkipInterpolation = true
		o.SkipValidation = true
	}
	if _, err := loader.LoadWithContext(context.Background(), config, opts); err != nil {
		return shperr.Wrap(shperr.KindConfig, "rendered compose document "+name+" failed validation", err)
	}
	return nil
}
