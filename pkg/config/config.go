// Package config loads panel and scenario configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	drifterrors "github.com/go-drift/virtualize/pkg/errors"
	"github.com/go-drift/virtualize/pkg/generation"
	"github.com/go-drift/virtualize/pkg/graphics"
	"github.com/go-drift/virtualize/pkg/window"
)

// FileName is the configuration file LoadOptional looks for.
const FileName = "panel.yaml"

// CurrentVersion is the schema version written by this package.
const CurrentVersion = "v1.0.0"

// Updating modes.
const (
	KeepScrollOffset   = "keep-scroll-offset"
	KeepLastItemInView = "keep-last-item-in-view"
)

const (
	defaultViewportLength = 200
	defaultCrossLength    = 300
	defaultItemLength     = 40
	defaultHeaderLength   = 20
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is a panel.yaml file.
type Config struct {
	Version  string   `yaml:"version,omitempty"`
	Panel    Panel    `yaml:"panel"`
	Scenario Scenario `yaml:"scenario"`
}

// Panel configures the engine and the simulated panel around it.
type Panel struct {
	Axis            string  `yaml:"axis,omitempty"`
	CacheLength     float64 `yaml:"cacheLength,omitempty"`
	InflationDelta  float64 `yaml:"inflationDelta,omitempty"`
	HideEmptyGroups bool    `yaml:"hideEmptyGroups,omitempty"`
	UpdatingMode    string  `yaml:"updatingMode,omitempty"`
	ViewportLength  float64 `yaml:"viewportLength,omitempty"`
	CrossLength     float64 `yaml:"crossLength,omitempty"`
	ItemLength      float64 `yaml:"itemLength,omitempty"`
	HeaderLength    float64 `yaml:"headerLength,omitempty"`
}

// Scenario describes the data and the steps panelsim plays.
type Scenario struct {
	// Items is the item count of an ungrouped source.
	Items int `yaml:"items,omitempty"`
	// Groups lists group sizes; when set the source is grouped and Items
	// is ignored.
	Groups []int  `yaml:"groups,omitempty"`
	Steps  []Step `yaml:"steps,omitempty"`
}

// Step is one scenario action followed by a layout pass.
type Step struct {
	Op    string `yaml:"op"`
	Kind  string `yaml:"kind,omitempty"`
	Index int    `yaml:"index,omitempty"`
	// To is the destination of a move.
	To int `yaml:"to,omitempty"`
	// Count is the item count of an inserted group.
	Count  int     `yaml:"count,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`
	// Length is the new viewport length of a resize.
	Length float64 `yaml:"length,omitempty"`
	Align  string  `yaml:"align,omitempty"`
}

// IsHeader reports whether the step targets a group header.
func (s Step) IsHeader() bool { return s.Kind == "header" }

// Step operations.
const (
	OpPass           = "pass"
	OpSettle         = "settle"
	OpScroll         = "scroll"
	OpInsert         = "insert"
	OpRemove         = "remove"
	OpReplace        = "replace"
	OpMove           = "move"
	OpFocus          = "focus"
	OpPin            = "pin"
	OpUnpin          = "unpin"
	OpResize         = "resize"
	OpReset          = "reset"
	OpRefresh        = "refresh"
	OpScrollIntoView = "scroll-into-view"
	OpScrollToEnd    = "scroll-to-end"
)

var knownOps = map[string]bool{
	OpPass: true, OpSettle: true, OpScroll: true, OpInsert: true, OpRemove: true,
	OpReplace: true, OpMove: true, OpFocus: true, OpPin: true, OpUnpin: true,
	OpResize: true, OpReset: true, OpRefresh: true, OpScrollIntoView: true, OpScrollToEnd: true,
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// LoadOptional reads panel.yaml from dir if present and returns the
// defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}
	return cfg, err
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, report(fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, report(err)
	}
	return &cfg, nil
}

func report(err error) error {
	drifterrors.Report(&drifterrors.VirtualizationError{
		Op:    "config.Load",
		Kind:  drifterrors.KindConfig,
		Err:   err,
		Index: -1,
	})
	return err
}

func (c *Config) applyDefaults() {
	c.Version = strings.TrimSpace(c.Version)
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	p := &c.Panel
	p.Axis = strings.ToLower(strings.TrimSpace(p.Axis))
	if p.Axis == "" {
		p.Axis = "vertical"
	}
	if p.UpdatingMode == "" {
		p.UpdatingMode = KeepScrollOffset
	}
	if p.CacheLength == 0 {
		p.CacheLength = window.DefaultCacheLength
	}
	if p.InflationDelta == 0 {
		p.InflationDelta = window.DefaultInflationDelta
	}
	if p.ViewportLength == 0 {
		p.ViewportLength = defaultViewportLength
	}
	if p.CrossLength == 0 {
		p.CrossLength = defaultCrossLength
	}
	if p.ItemLength == 0 {
		p.ItemLength = defaultItemLength
	}
	if p.HeaderLength == 0 {
		p.HeaderLength = defaultHeaderLength
	}
}

// Validate checks the schema version and every value.
func (c *Config) Validate() error {
	if !semver.IsValid(c.Version) {
		return fmt.Errorf("%w: version %q is not a semantic version", ErrInvalid, c.Version)
	}
	if major := semver.Major(c.Version); major != semver.Major(CurrentVersion) {
		return fmt.Errorf("%w: unsupported schema %s (want %s)", ErrInvalid, major, semver.Major(CurrentVersion))
	}
	p := c.Panel
	if p.Axis != "vertical" && p.Axis != "horizontal" {
		return fmt.Errorf("%w: panel.axis must be vertical or horizontal (got %q)", ErrInvalid, p.Axis)
	}
	if p.UpdatingMode != KeepScrollOffset && p.UpdatingMode != KeepLastItemInView {
		return fmt.Errorf("%w: panel.updatingMode %q", ErrInvalid, p.UpdatingMode)
	}
	for name, v := range map[string]float64{
		"cacheLength":    p.CacheLength,
		"inflationDelta": p.InflationDelta,
		"viewportLength": p.ViewportLength,
		"crossLength":    p.CrossLength,
		"itemLength":     p.ItemLength,
		"headerLength":   p.HeaderLength,
	} {
		if v < 0 {
			return fmt.Errorf("%w: panel.%s cannot be negative (got %v)", ErrInvalid, name, v)
		}
	}
	s := c.Scenario
	if s.Items < 0 {
		return fmt.Errorf("%w: scenario.items cannot be negative", ErrInvalid)
	}
	for g, size := range s.Groups {
		if size < 0 {
			return fmt.Errorf("%w: scenario.groups[%d] cannot be negative", ErrInvalid, g)
		}
	}
	for i, st := range s.Steps {
		if !knownOps[st.Op] {
			return fmt.Errorf("%w: scenario.steps[%d]: unknown op %q", ErrInvalid, i, st.Op)
		}
		if st.Kind != "" && st.Kind != "item" && st.Kind != "header" {
			return fmt.Errorf("%w: scenario.steps[%d]: kind must be item or header", ErrInvalid, i)
		}
		if st.Index < 0 || st.To < 0 || st.Count < 0 {
			return fmt.Errorf("%w: scenario.steps[%d]: negative index or count", ErrInvalid, i)
		}
		if _, ok := alignments[st.Align]; !ok {
			return fmt.Errorf("%w: scenario.steps[%d]: align %q", ErrInvalid, i, st.Align)
		}
	}
	return nil
}

var alignments = map[string]window.Alignment{
	"":       window.AlignStart,
	"start":  window.AlignStart,
	"center": window.AlignCenter,
	"end":    window.AlignEnd,
}

// Alignment returns the step's alignment for scroll-into-view.
func (s Step) Alignment() window.Alignment { return alignments[s.Align] }

// GraphicsAxis returns the virtualizing direction.
func (p Panel) GraphicsAxis() graphics.Axis {
	if p.Axis == "horizontal" {
		return graphics.AxisHorizontal
	}
	return graphics.AxisVertical
}

// EngineOptions returns the engine options the panel describes.
func (p Panel) EngineOptions() generation.Options {
	return generation.Options{
		Window: window.Options{
			CacheLength:    p.CacheLength,
			InflationDelta: p.InflationDelta,
		},
		HideEmptyGroups: p.HideEmptyGroups,
	}
}

// KeepsLastItemInView reports whether the updating mode anchors the end of
// the content.
func (p Panel) KeepsLastItemInView() bool { return p.UpdatingMode == KeepLastItemInView }
