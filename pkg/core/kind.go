// Package core holds the element model shared by the virtualization
// packages: element kinds, per-kind tables, element records and the
// generation-checked arena that stands in for weak references.
package core

// Kind distinguishes the two kinds of realized elements.
type Kind int

const (
	// Header is the realized element for one group.
	Header Kind = iota
	// ItemContainer is the realized element for one data item.
	ItemContainer
)

// KindCount is the number of element kinds.
const KindCount = 2

// Kinds lists every kind in physical child order: headers first.
var Kinds = [KindCount]Kind{Header, ItemContainer}

func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case ItemContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Other returns the other kind.
func (k Kind) Other() Kind {
	if k == Header {
		return ItemContainer
	}
	return Header
}

// ByKind is a two-slot table indexed by Kind.
type ByKind[T any] [KindCount]T

// Fill sets every slot to v.
func (b *ByKind[T]) Fill(v T) {
	for i := range b {
		b[i] = v
	}
}
