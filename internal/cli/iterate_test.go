package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/testutil"
)

func TestGetEnginesToRun(t *testing.T) {
	t.Parallel()
	factory := newton.NewDefaultFactory()

	tests := []struct {
		algo string
		want []string
	}{
		{"all", []string{"Logarithmic Derivative", "Recursive Quotient"}},
		{"recursive", []string{"Recursive Quotient"}},
		{"logderiv", []string{"Logarithmic Derivative"}},
		{"missing", nil},
	}
	for _, tt := range tests {
		engines := GetEnginesToRun(config.AppConfig{Algo: tt.algo}, factory)
		var names []string
		for _, e := range engines {
			names = append(names, e.Name())
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("GetEnginesToRun(%q) = %v, want %v", tt.algo, names, tt.want)
		}
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()

	cfg := config.AppConfig{
		MaxIter: 30,
		Z0:      1 + 0.5i,
		Roots:   cubeRoot,
		Preset:  "unity3",
		Timeout: time.Minute,
	}
	var buf bytes.Buffer
	PrintExecutionConfig(cfg, &buf)
	got := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{
		"Scene: unity3 with 3 roots and 0 poles.",
		"Start: 1+0.5i, at most 30 steps, timeout 1m0s.",
		"FMA " + FusedMultiplyAdd(),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	cfg.SceneFile = "scenes/star.json"
	buf.Reset()
	PrintExecutionConfig(cfg, &buf)
	if !strings.Contains(testutil.StripAnsiCodes(buf.String()), "Scene: scenes/star.json") {
		t.Errorf("scene file should win over the preset label:\n%s", buf.String())
	}

	cfg.SceneFile, cfg.Preset = "", ""
	buf.Reset()
	PrintExecutionConfig(cfg, &buf)
	if !strings.Contains(testutil.StripAnsiCodes(buf.String()), "Scene: command line") {
		t.Errorf("explicit roots should be labelled as command line:\n%s", buf.String())
	}
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintExecutionMode([]newton.Engine{&newton.MockEngine{EngineName: "Solo"}}, &buf)
	if !strings.Contains(testutil.StripAnsiCodes(buf.String()), "Single run with the Solo engine") {
		t.Errorf("unexpected single mode output %q", buf.String())
	}

	buf.Reset()
	PrintExecutionMode([]newton.Engine{&newton.MockEngine{}, &newton.MockEngine{}}, &buf)
	if !strings.Contains(buf.String(), "Parallel comparison of 2 engines") {
		t.Errorf("unexpected comparison output %q", buf.String())
	}
}

func TestFusedMultiplyAdd(t *testing.T) {
	t.Parallel()
	if FusedMultiplyAdd() == "" {
		t.Error("FusedMultiplyAdd should always describe the machine")
	}
}
