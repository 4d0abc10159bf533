package paneltest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/virtualize/pkg/core"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the visible window and the arranged elements.
type Snapshot struct {
	Visible  [2]float64    `json:"visible"`
	Ranges   []RangeNode   `json:"ranges"`
	Elements []ElementNode `json:"elements"`
	Garbage  int           `json:"garbage"`
}

// RangeNode is the valid range of one kind.
type RangeNode struct {
	Kind  string `json:"kind"`
	First int    `json:"first"`
	Count int    `json:"count"`
}

// ElementNode is one arranged element.
type ElementNode struct {
	Kind     string     `json:"kind"`
	Index    int        `json:"index"`
	Start    float64    `json:"start"`
	Length   float64    `json:"length"`
	Realized bool       `json:"realized"`
	Pinned   bool       `json:"pinned,omitempty"`
	Size     [2]float64 `json:"size"`
}

// CaptureSnapshot captures the engine's current arrangement.
func (p *PanelTester) CaptureSnapshot() *Snapshot {
	reg := p.Engine.Registry()
	vis := p.Viewport.Rect()
	snap := &Snapshot{
		Visible: [2]float64{round2(vis.Start(p.axis)), round2(vis.End(p.axis))},
		Garbage: reg.GarbageCount(),
	}
	for _, k := range core.Kinds {
		snap.Ranges = append(snap.Ranges, RangeNode{
			Kind:  k.String(),
			First: reg.FirstValidIndex(k),
			Count: reg.ValidCount(k),
		})
	}
	for _, a := range p.Engine.Arrange() {
		snap.Elements = append(snap.Elements, ElementNode{
			Kind:     a.Kind.String(),
			Index:    a.Index,
			Start:    round2(a.Bounds.Start(p.axis)),
			Length:   round2(a.Bounds.Length(p.axis)),
			Realized: a.Realized,
			Pinned:   reg.IsIndexPinned(a.Kind, a.Index),
			Size:     [2]float64{round2(a.Bounds.Width()), round2(a.Bounds.Height())},
		})
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// VIRTUALIZE_UPDATE_SNAPSHOTS=1 is set, the file is silently updated
// instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("VIRTUALIZE_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: VIRTUALIZE_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: VIRTUALIZE_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other, or the empty
// string if they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := 0; i < max(len(expectedLines), len(actualLines)); i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
