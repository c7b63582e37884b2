package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTempHome points SHPD_PATH/SHPD_CONF at a fresh temp directory and
// seeds a minimal config document with one environment template, so
// mustApp() bootstraps against an isolated, disposable tree instead of
// the real user's ~/.shpd.
func setupTempHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SHPD_PATH", dir)
	t.Setenv("SHPD_CONF", filepath.Join(dir, ".shpd.conf"))

	doc := `
envs_path: ` + dir + `/envs
volumes_path: ` + dir + `/volumes
staging_area:
  volumes_path: ` + dir + `/staging/volumes
  images_path: ` + dir + `/staging/images
env_templates:
  - tag: default
    service_templates:
      - tag: web
service_templates:
  - tag: web
    containers:
      - tag: app
        image: nginx
`
	if err := os.WriteFile(filepath.Join(dir, ".shpd.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to seed config document: %v", err)
	}
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever it wrote.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	runErr := fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestListEmptyHasNoEnvironmentRows(t *testing.T) {
	setupTempHome(t)
	out, err := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, []string{})
	})
	if err != nil {
		t.Fatalf("list RunE() error = %v", err)
	}
	if !strings.Contains(out, "TAG") {
		t.Errorf("list output missing header: %q", out)
	}
	if lines := strings.Count(out, "\n"); lines != 1 {
		t.Errorf("list output has %d lines, want only the header: %q", lines, out)
	}
}

func TestInitThenListThenCheckout(t *testing.T) {
	setupTempHome(t)

	if err := initCmd.RunE(initCmd, []string{"default", "dev"}); err != nil {
		t.Fatalf("init RunE() error = %v", err)
	}

	out, err := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, []string{})
	})
	if err != nil {
		t.Fatalf("list RunE() error = %v", err)
	}
	if !strings.Contains(out, "dev") {
		t.Errorf("list output missing newly-created environment: %q", out)
	}

	if err := checkoutCmd.RunE(checkoutCmd, []string{"dev"}); err != nil {
		t.Fatalf("checkout RunE() error = %v", err)
	}

	a, err := mustApp()
	if err != nil {
		t.Fatalf("mustApp() error = %v", err)
	}
	env, err := a.RequireActiveEnvironment()
	if err != nil {
		t.Fatalf("RequireActiveEnvironment() error = %v", err)
	}
	if env.Tag != "dev" {
		t.Errorf("active environment = %q, want %q", env.Tag, "dev")
	}
}

func TestCheckoutUnknownEnvironmentFails(t *testing.T) {
	setupTempHome(t)
	if err := checkoutCmd.RunE(checkoutCmd, []string{"nope"}); err == nil {
		t.Error("checkout RunE(unknown tag): want error, got nil")
	}
}

func TestStatusWithoutActiveEnvironmentFails(t *testing.T) {
	setupTempHome(t)
	if err := statusCmd.RunE(statusCmd, []string{"env"}); err == nil {
		t.Error("status RunE() with no active environment: want error, got nil")
	}
}

func TestStatusRejectsUnknownResource(t *testing.T) {
	setupTempHome(t)
	if err := statusCmd.RunE(statusCmd, []string{"svc"}); err == nil {
		t.Error("status RunE(\"svc\"): want a usage error, got nil")
	}
}

func TestInitRejectsUnknownTemplate(t *testing.T) {
	setupTempHome(t)
	if err := initCmd.RunE(initCmd, []string{"nonexistent", "dev"}); err == nil {
		t.Error("init RunE(unknown template): want error, got nil")
	}
}

func TestInitRejectsDuplicateEnvironmentTag(t *testing.T) {
	setupTempHome(t)
	if err := initCmd.RunE(initCmd, []string{"default", "dev"}); err != nil {
		t.Fatalf("first init RunE() error = %v", err)
	}
	if err := initCmd.RunE(initCmd, []string{"default", "dev"}); err == nil {
		t.Error("second init RunE() with the same tag: want error, got nil")
	}
}
