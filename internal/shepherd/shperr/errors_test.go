package shperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", Usage("bad flag"), 2},
		{"precondition", Precondition("no active environment"), 1},
		{"config", Config(errors.New("boom"), "bad doc"), 1},
		{"filesystem", Filesystem(errors.New("boom"), "no dir"), 1},
		{"engine", Engine(errors.New("boom"), "nonzero exit"), 1},
		{"plain", errors.New("unrelated"), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ExitCode(c.err); got != c.want {
				t.Errorf("ExitCode(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(KindEngine, "engine failed", cause)
	if wrapped.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", wrapped.Unwrap(), cause)
	}
	if wrapped.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

func TestExitCodeUsesOutermostKind(t *testing.T) {
	inner := Usage("bad usage")
	outer := Wrap(KindConfig, "outer context", inner)
	if got := ExitCode(outer); got != 1 {
		t.Errorf("ExitCode() = %d, want 1 (outermost kind is config, not the wrapped usage cause)", got)
	}
}

func TestExitCodeFindsUsageThroughPlainWrap(t *testing.T) {
	inner := Usage("bad usage")
	outer := fmt.Errorf("context: %w", inner)
	if got := ExitCode(outer); got != 2 {
		t.Errorf("ExitCode() = %d, want 2 (fmt.Errorf wrapper unwraps to the usage kind)", got)
	}
}
