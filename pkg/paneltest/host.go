package paneltest

import (
	"errors"
	"fmt"

	"github.com/go-drift/virtualize/pkg/core"
)

// ErrHostFailure is returned by RecordingHost when told to fail.
var ErrHostFailure = errors.New("paneltest: host failure")

// Visual is the visual object RecordingHost hands out.
type Visual struct {
	ID       int
	Kind     core.Kind
	Template string
	// Index is the data index of the last PrepareElement call.
	Index    int
	Prepared int
}

func (v *Visual) String() string {
	return fmt.Sprintf("%s#%d@%d", v.Kind, v.ID, v.Index)
}

// Call is one recorded host call.
type Call struct {
	Kind   core.Kind
	Index  int
	Visual *Visual
}

// RecordingHost is a GeneratorHost that records its calls.
type RecordingHost struct {
	Created  []Call
	Prepared []Call
	Released []Call

	// Template names the template for an element; elements only match
	// visuals of the same template. Nil means a single template.
	Template func(kind core.Kind, index int) string
	// Foreign marks elements the host creates outside the generator.
	Foreign func(kind core.Kind, index int) bool
	// FailCreate and FailPrepare make the matching calls fail.
	FailCreate  func(kind core.Kind, index int) bool
	FailPrepare func(kind core.Kind, index int) bool
	// OnPrepare runs inside PrepareElement, before it returns.
	OnPrepare func(kind core.Kind, index int, v *Visual)

	nextID int
}

func (h *RecordingHost) template(kind core.Kind, index int) string {
	if h.Template == nil {
		return kind.String()
	}
	return h.Template(kind, index)
}

// CreateOrRecycleElement implements generation.GeneratorHost.
func (h *RecordingHost) CreateOrRecycleElement(kind core.Kind, index int) (any, bool, error) {
	if h.FailCreate != nil && h.FailCreate(kind, index) {
		return nil, false, fmt.Errorf("create %s %d: %w", kind, index, ErrHostFailure)
	}
	h.nextID++
	v := &Visual{ID: h.nextID, Kind: kind, Template: h.template(kind, index), Index: -1}
	h.Created = append(h.Created, Call{Kind: kind, Index: index, Visual: v})
	generated := h.Foreign == nil || !h.Foreign(kind, index)
	return v, generated, nil
}

// PrepareElement implements generation.GeneratorHost.
func (h *RecordingHost) PrepareElement(kind core.Kind, index int, visual any) error {
	v := visual.(*Visual)
	if h.FailPrepare != nil && h.FailPrepare(kind, index) {
		return fmt.Errorf("prepare %s %d: %w", kind, index, ErrHostFailure)
	}
	v.Index = index
	v.Template = h.template(kind, index)
	v.Prepared++
	h.Prepared = append(h.Prepared, Call{Kind: kind, Index: index, Visual: v})
	if h.OnPrepare != nil {
		h.OnPrepare(kind, index, v)
	}
	return nil
}

// ReleaseElement implements generation.GeneratorHost.
func (h *RecordingHost) ReleaseElement(kind core.Kind, visual any) {
	v, _ := visual.(*Visual)
	idx := -1
	if v != nil {
		idx = v.Index
	}
	h.Released = append(h.Released, Call{Kind: kind, Index: idx, Visual: v})
}

// MatchesTemplate implements generation.GeneratorHost.
func (h *RecordingHost) MatchesTemplate(kind core.Kind, index int, visual any) bool {
	v, ok := visual.(*Visual)
	return ok && v.Template == h.template(kind, index)
}

// ResetCalls forgets the recorded calls.
func (h *RecordingHost) ResetCalls() {
	h.Created = nil
	h.Prepared = nil
	h.Released = nil
}
