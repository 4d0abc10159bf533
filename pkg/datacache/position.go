package datacache

import "github.com/go-drift/virtualize/pkg/core"

// Position names one element of the layout sequence. When grouping, the
// sequence interleaves each shown header with its items.
type Position struct {
	Kind  core.Kind
	Index int
}

// First returns the first element of the layout.
func (c *Cache) First() (Position, bool) {
	c.ensure()
	if !c.grouping {
		if c.itemCount == 0 {
			return Position{}, false
		}
		return Position{Kind: core.ItemContainer, Index: 0}, true
	}
	return c.headerAfter(-1)
}

// Last returns the last element of the layout.
func (c *Cache) Last() (Position, bool) {
	kind, index, ok := c.LastElementInLayout()
	return Position{Kind: kind, Index: index}, ok
}

// Contains reports whether p names an element that is part of the layout.
func (c *Cache) Contains(p Position) bool {
	c.ensure()
	if p.Kind == core.Header {
		return c.grouping && c.IsHeaderVisible(p.Index)
	}
	return p.Index >= 0 && p.Index < c.itemCount
}

// Next returns the element following p in layout order.
func (c *Cache) Next(p Position) (Position, bool) {
	c.ensure()
	if !c.grouping {
		if p.Kind != core.ItemContainer || p.Index+1 >= c.itemCount {
			return Position{}, false
		}
		return Position{Kind: core.ItemContainer, Index: p.Index + 1}, true
	}
	if p.Kind == core.Header {
		if p.Index < 0 || p.Index >= len(c.groups.sizes) {
			return Position{}, false
		}
		if c.groups.sizes[p.Index] > 0 {
			return Position{Kind: core.ItemContainer, Index: c.groups.start(p.Index)}, true
		}
		return c.headerAfter(p.Index)
	}
	info, ok := c.groups.groupOf(p.Index)
	if !ok {
		return Position{}, false
	}
	if info.IndexInGroup+1 < info.CountInGroup {
		return Position{Kind: core.ItemContainer, Index: p.Index + 1}, true
	}
	return c.headerAfter(info.Group)
}

// Prev returns the element preceding p in layout order.
func (c *Cache) Prev(p Position) (Position, bool) {
	c.ensure()
	if !c.grouping {
		if p.Kind != core.ItemContainer || p.Index <= 0 || p.Index > c.itemCount {
			return Position{}, false
		}
		return Position{Kind: core.ItemContainer, Index: p.Index - 1}, true
	}
	if p.Kind == core.ItemContainer {
		info, ok := c.groups.groupOf(p.Index)
		if !ok {
			return Position{}, false
		}
		if info.IndexInGroup > 0 {
			return Position{Kind: core.ItemContainer, Index: p.Index - 1}, true
		}
		// a group with items always shows its header
		return Position{Kind: core.Header, Index: info.Group}, true
	}
	if p.Index > len(c.groups.sizes) {
		return Position{}, false
	}
	for g := p.Index - 1; g >= 0; g-- {
		if c.groups.sizes[g] > 0 {
			return Position{Kind: core.ItemContainer, Index: c.groups.ends[g] - 1}, true
		}
		if !c.hideEmpty {
			return Position{Kind: core.Header, Index: g}, true
		}
	}
	return Position{}, false
}

func (c *Cache) headerAfter(g int) (Position, bool) {
	for h := g + 1; h < len(c.groups.sizes); h++ {
		if !c.hideEmpty || c.groups.sizes[h] > 0 {
			return Position{Kind: core.Header, Index: h}, true
		}
	}
	return Position{}, false
}

// LayoutOrdinal returns the position of p in the flattened layout sequence,
// counting headers and items. It is used to estimate distances.
func (c *Cache) LayoutOrdinal(p Position) int {
	c.ensure()
	if !c.grouping {
		return p.Index
	}
	if p.Kind == core.Header {
		if p.Index < 0 || p.Index >= len(c.groups.sizes) {
			return -1
		}
		return c.groups.start(p.Index) + c.headersUpTo(p.Index)
	}
	info, ok := c.groups.groupOf(p.Index)
	if !ok {
		return -1
	}
	return p.Index + c.headersUpTo(info.Group) + 1
}

// headersUpTo counts the shown headers of groups before g.
func (c *Cache) headersUpTo(g int) int {
	if !c.hideEmpty {
		return g
	}
	n := 0
	for h := 0; h < g; h++ {
		if c.layoutOf[h] >= 0 {
			n++
		}
	}
	return n
}

// LayoutLength returns the number of elements in the layout sequence.
func (c *Cache) LayoutLength() int {
	c.ensure()
	if !c.grouping {
		return c.itemCount
	}
	return c.itemCount + len(c.dataOf)
}

// AtOrdinal returns the element at ordinal n of the layout sequence,
// clamped to the valid range.
func (c *Cache) AtOrdinal(n int) (Position, bool) {
	c.ensure()
	total := c.LayoutLength()
	if total == 0 {
		return Position{}, false
	}
	if n < 0 {
		n = 0
	}
	if n >= total {
		n = total - 1
	}
	if !c.grouping {
		return Position{Kind: core.ItemContainer, Index: n}, true
	}
	seen := 0
	for _, g := range c.dataOf {
		if n == seen {
			return Position{Kind: core.Header, Index: g}, true
		}
		seen++
		size := c.groups.sizes[g]
		if n < seen+size {
			return Position{Kind: core.ItemContainer, Index: c.groups.start(g) + n - seen}, true
		}
		seen += size
	}
	return Position{}, false
}
