// Package datacache keeps a cached view of a data source's counts and
// grouping and translates between data indices and layout indices.
//
// Aggregate counts survive between layout passes. Resolving items or groups
// requires a guaranteed session, which binds the live source for the
// duration of one pass:
//
//	s, err := cache.Guarantee()
//	if err != nil {
//		return err
//	}
//	defer s.Release()
//	item, err := cache.Item(i)
//
// Lookups that no longer resolve return ok=false or ErrNotFound; they never
// panic.
package datacache

import (
	"errors"
	"sort"

	"github.com/go-drift/virtualize/pkg/core"
)

var (
	// ErrNotGuaranteed is returned by resolving lookups made outside a
	// guaranteed session.
	ErrNotGuaranteed = errors.New("datacache: lookup outside a guaranteed session")
	// ErrNotFound is returned when an index or item no longer resolves.
	ErrNotFound = errors.New("datacache: not found")
	// ErrNoSource is returned by Guarantee when no data source is attached.
	ErrNoSource = errors.New("datacache: no data source")
)

// DataSource is the adapter over the collection being virtualized.
type DataSource interface {
	// ItemCount returns the total number of items across all groups.
	ItemCount() int
	// IsGrouping reports whether the items are organized in groups.
	IsGrouping() bool
	// GroupCount returns the number of groups, including empty ones.
	GroupCount() int
	// GroupSize returns the number of items in group g.
	GroupSize(g int) int
	// Item returns the item at data index i.
	Item(i int) any
	// Group returns the group object at index g.
	Group(g int) any
	// IndexOf locates an item or group by identity.
	IndexOf(item any) (index int, isGroup bool, found bool)
}

// GroupInfo describes the item range of one group.
type GroupInfo struct {
	Start int
	Count int
}

// ItemGroupInfo locates an item inside its group.
type ItemGroupInfo struct {
	Group        int
	IndexInGroup int
	CountInGroup int
}

// table is the per-group layout derived from the source.
type table struct {
	sizes []int
	// ends[g] is one past the last item index of group g.
	ends []int
}

func (t *table) start(g int) int {
	if g == 0 {
		return 0
	}
	return t.ends[g-1]
}

func (t *table) groupOf(i int) (ItemGroupInfo, bool) {
	if i < 0 || len(t.ends) == 0 || i >= t.ends[len(t.ends)-1] {
		return ItemGroupInfo{}, false
	}
	g := sort.Search(len(t.ends), func(k int) bool { return t.ends[k] > i })
	start := t.start(g)
	return ItemGroupInfo{Group: g, IndexInGroup: i - start, CountInGroup: t.sizes[g]}, true
}

func (t *table) rebuildEnds() {
	t.ends = t.ends[:0]
	total := 0
	for _, s := range t.sizes {
		total += s
		t.ends = append(t.ends, total)
	}
}

// Cache is the cached view of a DataSource.
type Cache struct {
	source    DataSource
	hideEmpty bool

	valid      bool
	itemCount  int
	grouping   bool
	groups     table
	layoutOf   []int // group index -> layout group index, -1 when hidden
	dataOf     []int // layout group index -> group index
	nonEmpty   int
	guaranteed int
}

// New creates a cache over source. The source may be nil until SetSource.
func New(source DataSource, hideEmptyGroups bool) *Cache {
	return &Cache{source: source, hideEmpty: hideEmptyGroups}
}

// SetSource replaces the data source and drops every cached metric.
func (c *Cache) SetSource(source DataSource) {
	c.source = source
	c.Invalidate()
}

// Source returns the attached data source.
func (c *Cache) Source() DataSource { return c.source }

// SetHideEmptyGroups changes the empty group policy.
func (c *Cache) SetHideEmptyGroups(hide bool) {
	if c.hideEmpty == hide {
		return
	}
	c.hideEmpty = hide
	c.rebuildLayout()
}

// HidesEmptyGroups reports the empty group policy.
func (c *Cache) HidesEmptyGroups() bool { return c.hideEmpty }

// Invalidate drops every cached metric. The next query re-reads the source.
func (c *Cache) Invalidate() {
	c.valid = false
}

// IsValid reports whether cached metrics are current. Mutation
// bookkeeping that needs the state before a change must check it first.
func (c *Cache) IsValid() bool { return c.valid }

func (c *Cache) ensure() {
	if !c.valid {
		c.refresh()
	}
}

func (c *Cache) refresh() {
	c.valid = true
	c.groups.sizes = c.groups.sizes[:0]
	c.itemCount = 0
	c.grouping = false
	if c.source == nil {
		c.groups.rebuildEnds()
		c.rebuildLayout()
		return
	}
	c.itemCount = c.source.ItemCount()
	c.grouping = c.source.IsGrouping()
	if c.grouping {
		n := c.source.GroupCount()
		for g := 0; g < n; g++ {
			c.groups.sizes = append(c.groups.sizes, c.source.GroupSize(g))
		}
	}
	c.groups.rebuildEnds()
	c.rebuildLayout()
}

func (c *Cache) rebuildLayout() {
	c.layoutOf = c.layoutOf[:0]
	c.dataOf = c.dataOf[:0]
	c.nonEmpty = 0
	for g, size := range c.groups.sizes {
		if size > 0 {
			c.nonEmpty++
		}
		if c.hideEmpty && size == 0 {
			c.layoutOf = append(c.layoutOf, -1)
			continue
		}
		c.layoutOf = append(c.layoutOf, len(c.dataOf))
		c.dataOf = append(c.dataOf, g)
	}
}

// TotalItemCount returns the number of items.
func (c *Cache) TotalItemCount() int {
	c.ensure()
	return c.itemCount
}

// TotalGroupCount returns the number of groups including empty ones.
func (c *Cache) TotalGroupCount() int {
	c.ensure()
	return len(c.groups.sizes)
}

// TotalLayoutGroupCount returns the number of groups that have a header
// in the layout.
func (c *Cache) TotalLayoutGroupCount() int {
	c.ensure()
	return len(c.dataOf)
}

// NonEmptyGroupCount returns the number of groups with at least one item.
func (c *Cache) NonEmptyGroupCount() int {
	c.ensure()
	return c.nonEmpty
}

// Count returns the number of data indices of kind.
func (c *Cache) Count(kind core.Kind) int {
	if kind == core.Header {
		return c.TotalGroupCount()
	}
	return c.TotalItemCount()
}

// IsGrouping reports whether the source is grouped.
func (c *Cache) IsGrouping() bool {
	c.ensure()
	return c.grouping
}

// GroupSizes returns a copy of the cached group sizes.
func (c *Cache) GroupSizes() []int {
	c.ensure()
	return append([]int(nil), c.groups.sizes...)
}

// GroupInfo returns the item range of group g.
func (c *Cache) GroupInfo(g int) (GroupInfo, bool) {
	c.ensure()
	if g < 0 || g >= len(c.groups.sizes) {
		return GroupInfo{}, false
	}
	return GroupInfo{Start: c.groups.start(g), Count: c.groups.sizes[g]}, true
}

// GroupOfItem locates item i inside its group.
func (c *Cache) GroupOfItem(i int) (ItemGroupInfo, bool) {
	c.ensure()
	if !c.grouping {
		return ItemGroupInfo{}, false
	}
	return c.groups.groupOf(i)
}

// IsHeaderVisible reports whether group g has a header in the layout.
func (c *Cache) IsHeaderVisible(g int) bool {
	c.ensure()
	return g >= 0 && g < len(c.layoutOf) && c.layoutOf[g] >= 0
}

// DataIndexToLayoutIndex translates a data index to its position among the
// elements of kind that appear in the layout. Hidden headers yield -1.
func (c *Cache) DataIndexToLayoutIndex(kind core.Kind, i int) int {
	c.ensure()
	if kind != core.Header || !c.hideEmpty {
		return i
	}
	if i < 0 || i >= len(c.layoutOf) {
		return -1
	}
	return c.layoutOf[i]
}

// LayoutIndexToDataIndex is the inverse of DataIndexToLayoutIndex.
func (c *Cache) LayoutIndexToDataIndex(kind core.Kind, i int) int {
	c.ensure()
	if kind != core.Header || !c.hideEmpty {
		return i
	}
	if i < 0 || i >= len(c.dataOf) {
		return -1
	}
	return c.dataOf[i]
}

// LastElementInLayout returns the last element of the layout: the last
// item, or the header of the last shown group when that group is empty.
func (c *Cache) LastElementInLayout() (core.Kind, int, bool) {
	c.ensure()
	if !c.grouping {
		if c.itemCount == 0 {
			return core.ItemContainer, -1, false
		}
		return core.ItemContainer, c.itemCount - 1, true
	}
	if len(c.dataOf) == 0 {
		return core.Header, -1, false
	}
	g := c.dataOf[len(c.dataOf)-1]
	if c.groups.sizes[g] == 0 {
		return core.Header, g, true
	}
	return core.ItemContainer, c.groups.ends[g] - 1, true
}
