// Package app wires the value store, config manager and engine driver
// together the way cmd/shpctl's commands need them, grounded on
// maiko-SDBX's internal/config.Load/ProjectDir bootstrap shape.
package app

import (
	"os"
	"path/filepath"

	"github.com/moonyfringers/shpctl/internal/shepherd/configmgr"
	"github.com/moonyfringers/shpctl/internal/shepherd/engine"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
	"github.com/moonyfringers/shpctl/internal/shepherd/valuestore"
)

// App bundles the collaborators a CLI command needs.
type App struct {
	Mgr *configmgr.Manager
	Drv *engine.Driver
}

// ValueFilePath returns SHPD_CONF if set, else ~/.shpd.conf.
func ValueFilePath() string {
	if v := os.Getenv("SHPD_CONF"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shpd.conf")
}

// ShpdPath returns SHPD_PATH if set, else ~/.shpd.
func ShpdPath() string {
	if v := os.Getenv("SHPD_PATH"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shpd")
}

// ConfigDocPath returns <SHPD_PATH>/.shpd.yaml.
func ConfigDocPath() string {
	return filepath.Join(ShpdPath(), ".shpd.yaml")
}

// Bootstrap loads the value store and the persisted config document,
// returning a ready-to-use App. If the config document does not yet
// exist, an empty default GlobalConfig is used instead (so `init` can
// run against a freshly-provisioned host).
func Bootstrap() (*App, error) {
	values := resolver.ValueStore{}
	if _, err := os.Stat(ValueFilePath()); err == nil {
		v, err := valuestore.Load(ValueFilePath())
		if err != nil {
			return nil, err
		}
		values = v
	}

	path := ConfigDocPath()
	var mgr *configmgr.Manager
	if _, err := os.Stat(path); err == nil {
		m, err := configmgr.Load(path, values)
		if err != nil {
			return nil, err
		}
		mgr = m
	} else {
		mgr = configmgr.New(path, DefaultConfig(), values)
	}

	if err := mgr.EnsureDirs(); err != nil {
		return nil, err
	}

	return &App{Mgr: mgr, Drv: engine.New()}, nil
}

// DefaultConfig returns a minimal GlobalConfig rooted at SHPD_PATH, used
// the first time shpctl runs on a host.
func DefaultConfig() *model.GlobalConfig {
	root := ShpdPath()
	return &model.GlobalConfig{
		Logging: model.LoggingCfg{Level: "info", Stdout: "true"},
		EnvsPath:    filepath.Join(root, "envs"),
		VolumesPath: filepath.Join(root, "volumes"),
		StagingArea: model.StagingAreaCfg{
			VolumesPath: filepath.Join(root, "staging", "volumes"),
			ImagesPath:  filepath.Join(root, "staging", "images"),
		},
	}
}

// RequireActiveEnvironment returns the currently active environment or
// a precondition error if none is set.
func (a *App) RequireActiveEnvironment() (*model.Environment, error) {
	env, ok := a.Mgr.GetActiveEnvironment()
	if !ok {
		return nil, shperr.Precondition("no active environment; run 'shpctl checkout <env-tag>' first")
	}
	return env, nil
}
