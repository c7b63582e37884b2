package engine

import (
	"path/filepath"
	"testing"
)

func TestParsePSSkipsMalformedLines(t *testing.T) {
	raw := `{"Name":"web-dev","Service":"web","State":"running","Health":"healthy"}
not json at all
{"Name":"db-dev","Service":"db","State":"exited"}

`
	got := parsePS(raw)
	if len(got) != 2 {
		t.Fatalf("parsePS() returned %d entries, want 2: %+v", len(got), got)
	}
	if got[0].Name != "web-dev" || got[0].State != "running" {
		t.Errorf("got[0] = %+v, unexpected", got[0])
	}
	if got[1].Name != "db-dev" || got[1].State != "exited" {
		t.Errorf("got[1] = %+v, unexpected", got[1])
	}
}

func TestParsePSEmptyInput(t *testing.T) {
	if got := parsePS(""); len(got) != 0 {
		t.Errorf("parsePS(\"\") = %+v, want empty", got)
	}
}

func TestAbsCleanResolvesRelativePaths(t *testing.T) {
	got := AbsClean("./foo/../bar")
	if !filepath.IsAbs(got) {
		t.Errorf("AbsClean() = %q, want an absolute path", got)
	}
	if filepath.Base(got) != "bar" {
		t.Errorf("AbsClean() = %q, want it to end in %q", got, "bar")
	}
}

func TestNewDriverDefaultsToDocker(t *testing.T) {
	d := New()
	if d.Bin != "docker" {
		t.Errorf("New().Bin = %q, want %q", d.Bin, "docker")
	}
}
