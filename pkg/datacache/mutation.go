package datacache

import "github.com/go-drift/virtualize/pkg/core"

// MutationOp is the kind of a source mutation.
type MutationOp int

const (
	// ItemAdded means an item was inserted at Index.
	ItemAdded MutationOp = iota
	// ItemRemoved means the item at Index was removed.
	ItemRemoved
	// GroupAdded means a group was inserted at Index.
	GroupAdded
	// GroupRemoved means the group at Index was removed.
	GroupRemoved
)

func (op MutationOp) String() string {
	switch op {
	case ItemAdded:
		return "item-added"
	case ItemRemoved:
		return "item-removed"
	case GroupAdded:
		return "group-added"
	case GroupRemoved:
		return "group-removed"
	default:
		return "unknown"
	}
}

// Mutation describes one change the source has already applied.
type Mutation struct {
	Op    MutationOp
	Index int
}

// RenewAfterMutation brings the cache in line with a source that has
// already applied m. Only the groups whose boundary contains the index are
// re-queried; the whole table is re-read when the incremental update
// disagrees with the source.
func (c *Cache) RenewAfterMutation(m Mutation) {
	if !c.valid || c.source == nil {
		c.refresh()
		return
	}
	if !c.renew(m) {
		core.Logger().Debug("datacache: incremental renewal failed, refreshing",
			"op", m.Op.String(), "index", m.Index)
		c.refresh()
		return
	}
	c.groups.rebuildEnds()
	c.rebuildLayout()
}

func (c *Cache) renew(m Mutation) bool {
	if c.source.IsGrouping() != c.grouping {
		return false
	}
	switch m.Op {
	case ItemAdded:
		c.itemCount++
		if c.grouping && !c.requeryAround(m.Index, true, 1) {
			return false
		}
	case ItemRemoved:
		c.itemCount--
		if c.grouping && !c.requeryAround(m.Index, false, -1) {
			return false
		}
	case GroupAdded:
		if !c.grouping || m.Index < 0 || m.Index > len(c.groups.sizes) {
			return false
		}
		size := c.source.GroupSize(m.Index)
		c.groups.sizes = append(c.groups.sizes, 0)
		copy(c.groups.sizes[m.Index+1:], c.groups.sizes[m.Index:])
		c.groups.sizes[m.Index] = size
		c.itemCount += size
	case GroupRemoved:
		if !c.grouping || m.Index < 0 || m.Index >= len(c.groups.sizes) {
			return false
		}
		c.itemCount -= c.groups.sizes[m.Index]
		c.groups.sizes = append(c.groups.sizes[:m.Index], c.groups.sizes[m.Index+1:]...)
	default:
		return false
	}
	if c.itemCount != c.source.ItemCount() {
		return false
	}
	return !c.grouping || len(c.groups.sizes) == c.source.GroupCount()
}

// requeryAround re-reads the sizes of the groups whose range contains i and
// applies them if exactly delta items moved.
func (c *Cache) requeryAround(i int, inclusiveEnd bool, delta int) bool {
	if len(c.groups.sizes) != c.source.GroupCount() {
		return false
	}
	changed := 0
	for g := range c.groups.sizes {
		start, end := c.groups.start(g), c.groups.ends[g]
		contains := i >= start && i < end
		if inclusiveEnd {
			contains = i >= start && i <= end
		}
		if !contains {
			continue
		}
		size := c.source.GroupSize(g)
		changed += size - c.groups.sizes[g]
		c.groups.sizes[g] = size
	}
	return changed == delta
}
