package cmd

import (
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

// parseResourceArgs interprets the "[env|svc <tag>...]" argument shape
// shared by up/halt/reload: no args or a bare "env" targets the whole
// environment; "svc <tag>..." targets one or more services by tag.
func parseResourceArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	switch args[0] {
	case "env":
		if len(args) != 1 {
			return nil, shperr.Usage("\"env\" takes no further arguments")
		}
		return nil, nil
	case "svc":
		if len(args) < 2 {
			return nil, shperr.Usage("\"svc\" requires at least one service tag")
		}
		return args[1:], nil
	default:
		return nil, shperr.Usage("unknown resource %q; expected \"env\" or \"svc\"", args[0])
	}
}

// findService locates a service by tag within env.
func findService(env *model.Environment, tag string) (*model.Service, error) {
	for i := range env.Services {
		if env.Services[i].Tag == tag {
			return &env.Services[i], nil
		}
	}
	return nil, shperr.Precondition("service %q not found in environment %q", tag, env.Tag)
}
