package configmgr

import (
	"testing"

	"github.com/moonyfringers/shpctl/internal/shepherd/model"
	"github.com/moonyfringers/shpctl/internal/shepherd/resolver"
)

func newTestManager() *Manager {
	cfg := &model.GlobalConfig{
		EnvTemplates: []model.EnvironmentTemplate{
			{
				Tag: "default",
				ServiceTemplates: []model.ServiceTemplateRef{
					{Tag: "web"},
				},
				Networks: []model.Network{{Tag: "net1", Driver: "bridge"}},
			},
		},
		ServiceTemplates: []model.ServiceTemplate{
			{
				Tag:        "web",
				Containers: []model.Container{{Tag: "app", Image: "nginx"}},
				Labels:     []string{"tier=web"},
			},
		},
		Envs: []model.Environment{
			{Tag: "foo"},
			{Tag: "bar"},
		},
	}
	return New("/tmp/unused.yaml", cfg, resolver.ValueStore{})
}

func TestSetActiveEnvironmentSinglePass(t *testing.T) {
	m := newTestManager()
	if err := m.SetActiveEnvironment("foo"); err != nil {
		t.Fatalf("SetActiveEnvironment() error = %v", err)
	}
	if err := m.SetActiveEnvironment("bar"); err != nil {
		t.Fatalf("SetActiveEnvironment() error = %v", err)
	}

	active := 0
	for _, e := range m.GetEnvironments() {
		if e.Status.Active {
			active++
		}
		if e.Tag == "bar" && !e.Status.Active {
			t.Error("bar should be active")
		}
		if e.Tag == "foo" && e.Status.Active {
			t.Error("foo should no longer be active")
		}
	}
	if active != 1 {
		t.Errorf("active count = %d, want 1", active)
	}
}

func TestSetActiveEnvironmentUnknownTag(t *testing.T) {
	m := newTestManager()
	if err := m.SetActiveEnvironment("nope"); err == nil {
		t.Error("SetActiveEnvironment(unknown): want error, got nil")
	}
}

func TestAddEnvironmentRejectsDuplicateTag(t *testing.T) {
	m := newTestManager()
	if err := m.AddEnvironment(model.Environment{Tag: "foo"}); err == nil {
		t.Error("AddEnvironment(duplicate tag): want error, got nil")
	}
}

func TestEnvFromTagDeepCopiesTemplateCollections(t *testing.T) {
	m := newTestManager()
	env, err := m.EnvFromTag("default", "newenv")
	if err != nil {
		t.Fatalf("EnvFromTag() error = %v", err)
	}
	if len(env.Services) != 1 || env.Services[0].Tag != "web" {
		t.Fatalf("expected one instantiated service 'web', got %+v", env.Services)
	}

	// Mutate the instance's collections and confirm the template is untouched.
	env.Networks[0].Tag = "mutated"
	env.Services[0].Labels[0] = "mutated"

	tmpl, err := m.GetEnvironmentTemplate("default")
	if err != nil {
		t.Fatalf("GetEnvironmentTemplate() error = %v", err)
	}
	if tmpl.Networks[0].Tag != "net1" {
		t.Errorf("template network mutated through instance: %q", tmpl.Networks[0].Tag)
	}
	st, err := m.GetServiceTemplate("web")
	if err != nil {
		t.Fatalf("GetServiceTemplate() error = %v", err)
	}
	if st.Labels[0] != "tier=web" {
		t.Errorf("template service labels mutated through instance: %q", st.Labels[0])
	}
}

func TestEnvFromTagRejectsExistingTag(t *testing.T) {
	m := newTestManager()
	if _, err := m.EnvFromTag("default", "foo"); err == nil {
		t.Error("EnvFromTag(existing tag): want error, got nil")
	}
}

func TestEnvFromOtherResetsStatusAndTag(t *testing.T) {
	m := newTestManager()
	src := model.Environment{
		Tag:    "foo",
		Status: model.EntityStatus{Active: true, RenderedConfig: map[string]string{"ungated": "services: {}"}},
	}
	cloned := m.EnvFromOther(&src, "foo-clone")

	if cloned.Tag != "foo-clone" {
		t.Errorf("Tag = %q, want %q", cloned.Tag, "foo-clone")
	}
	if cloned.Status.Active || cloned.Status.IsRunning() {
		t.Errorf("cloned status not reset: %+v", cloned.Status)
	}
	if src.Status.RenderedConfig == nil {
		t.Error("source status should be untouched")
	}
}

func TestRemoveEnvironmentUnknownTag(t *testing.T) {
	m := newTestManager()
	if err := m.RemoveEnvironment("nope"); err == nil {
		t.Error("RemoveEnvironment(unknown): want error, got nil")
	}
}

func TestGetActiveEnvironmentNoneActive(t *testing.T) {
	m := newTestManager()
	if _, ok := m.GetActiveEnvironment(); ok {
		t.Error("GetActiveEnvironment(): want ok=false when none is active")
	}
}
