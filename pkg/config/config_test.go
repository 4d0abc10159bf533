package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	drifterrors "github.com/go-drift/virtualize/pkg/errors"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/window"
)

type quietHandler struct{}

func (quietHandler) HandleError(*drifterrors.VirtualizationError) {}
func (quietHandler) HandlePanic(*drifterrors.PanicError)          {}

func TestLoadOptional_Missing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptional() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %q, want %q", cfg.Version, CurrentVersion)
	}
	if cfg.Panel.CacheLength != window.DefaultCacheLength {
		t.Errorf("CacheLength = %v, want %v", cfg.Panel.CacheLength, window.DefaultCacheLength)
	}
	if cfg.Panel.GraphicsAxis() != graphics.AxisVertical {
		t.Errorf("GraphicsAxis() = %v, want vertical", cfg.Panel.GraphicsAxis())
	}
}

func TestLoadOptional_File(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`version: v1.2.0
panel:
  axis: Horizontal
  cacheLength: 2
  hideEmptyGroups: true
  updatingMode: keep-last-item-in-view
scenario:
  groups: [3, 0, 5]
  steps:
    - op: scroll
      offset: 400
    - op: scroll-into-view
      index: 7
      align: center
`)
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("LoadOptional() error = %v", err)
	}
	if cfg.Panel.GraphicsAxis() != graphics.AxisHorizontal {
		t.Errorf("GraphicsAxis() = %v, want horizontal", cfg.Panel.GraphicsAxis())
	}
	opts := cfg.Panel.EngineOptions()
	if opts.Window.CacheLength != 2 || !opts.HideEmptyGroups {
		t.Errorf("EngineOptions() = %+v", opts)
	}
	if opts.Window.InflationDelta != window.DefaultInflationDelta {
		t.Errorf("InflationDelta = %v, want default", opts.Window.InflationDelta)
	}
	if !cfg.Panel.KeepsLastItemInView() {
		t.Error("KeepsLastItemInView() = false, want true")
	}
	if len(cfg.Scenario.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(cfg.Scenario.Steps))
	}
	if got := cfg.Scenario.Steps[1].Alignment(); got != window.AlignCenter {
		t.Errorf("Alignment() = %v, want center", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	drifterrors.SetHandler(quietHandler{})
	t.Cleanup(func() { drifterrors.SetHandler(nil) })

	tests := []struct {
		name string
		yaml string
	}{
		{"bad version", "version: one"},
		{"future major", "version: v2.0.0"},
		{"bad axis", "panel:\n  axis: diagonal"},
		{"bad mode", "panel:\n  updatingMode: sticky"},
		{"negative length", "panel:\n  itemLength: -4"},
		{"negative group", "scenario:\n  groups: [1, -1]"},
		{"unknown op", "scenario:\n  steps:\n    - op: fling"},
		{"bad kind", "scenario:\n  steps:\n    - op: pin\n      kind: footer"},
		{"bad align", "scenario:\n  steps:\n    - op: scroll-into-view\n      align: middle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	drifterrors.SetHandler(quietHandler{})
	t.Cleanup(func() { drifterrors.SetHandler(nil) })

	if _, err := Parse([]byte("panel: [")); err == nil {
		t.Error("Parse() error = nil for malformed YAML")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}
