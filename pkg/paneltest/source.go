package paneltest

import (
	"fmt"

	"github.com/google/uuid"
)

// Item is one entry of a SliceSource.
type Item struct {
	ID    uuid.UUID
	Label string
}

// Group is one group of a grouped SliceSource.
type Group struct {
	ID    uuid.UUID
	Label string
	Items []*Item
}

// SliceSource is an in-memory DataSource. Mutating methods change the data
// only; the caller reports the change to the engine.
type SliceSource struct {
	grouping bool
	items    []*Item
	groups   []*Group
}

// NewItem returns an item with a fresh identity.
func NewItem(label string) *Item {
	return &Item{ID: uuid.New(), Label: label}
}

// NewFlatSource returns an ungrouped source of n items.
func NewFlatSource(n int) *SliceSource {
	s := &SliceSource{}
	for i := 0; i < n; i++ {
		s.items = append(s.items, NewItem(fmt.Sprintf("item %d", i)))
	}
	return s
}

// NewGroupedSource returns a grouped source with one group per size.
func NewGroupedSource(sizes ...int) *SliceSource {
	s := &SliceSource{grouping: true}
	n := 0
	for g, size := range sizes {
		grp := &Group{ID: uuid.New(), Label: fmt.Sprintf("group %d", g)}
		for i := 0; i < size; i++ {
			grp.Items = append(grp.Items, NewItem(fmt.Sprintf("item %d", n)))
			n++
		}
		s.groups = append(s.groups, grp)
	}
	return s
}

// ItemCount implements datacache.DataSource.
func (s *SliceSource) ItemCount() int {
	if !s.grouping {
		return len(s.items)
	}
	n := 0
	for _, g := range s.groups {
		n += len(g.Items)
	}
	return n
}

// IsGrouping implements datacache.DataSource.
func (s *SliceSource) IsGrouping() bool { return s.grouping }

// GroupCount implements datacache.DataSource.
func (s *SliceSource) GroupCount() int { return len(s.groups) }

// GroupSize implements datacache.DataSource.
func (s *SliceSource) GroupSize(g int) int {
	if g < 0 || g >= len(s.groups) {
		return 0
	}
	return len(s.groups[g].Items)
}

// Item implements datacache.DataSource.
func (s *SliceSource) Item(i int) any {
	if !s.grouping {
		if i < 0 || i >= len(s.items) {
			return nil
		}
		return s.items[i]
	}
	g, k := s.locate(i)
	if g < 0 || k >= len(s.groups[g].Items) {
		return nil
	}
	return s.groups[g].Items[k]
}

// Group implements datacache.DataSource.
func (s *SliceSource) Group(g int) any {
	if g < 0 || g >= len(s.groups) {
		return nil
	}
	return s.groups[g]
}

// IndexOf implements datacache.DataSource. Items and groups are matched by
// pointer identity.
func (s *SliceSource) IndexOf(v any) (int, bool, bool) {
	switch x := v.(type) {
	case *Group:
		for g, grp := range s.groups {
			if grp == x {
				return g, true, true
			}
		}
	case *Item:
		n := s.ItemCount()
		for i := 0; i < n; i++ {
			if s.Item(i) == x {
				return i, false, true
			}
		}
	}
	return -1, false, false
}

// locate maps a flat item index to a group and an index inside it. An
// index one past the end maps to the end of the last group.
func (s *SliceSource) locate(i int) (int, int) {
	if i < 0 || len(s.groups) == 0 {
		return -1, 0
	}
	start := 0
	for g, grp := range s.groups {
		if i < start+len(grp.Items) {
			return g, i - start
		}
		start += len(grp.Items)
	}
	last := len(s.groups) - 1
	return last, i - (start - len(s.groups[last].Items))
}

// InsertItem inserts a new item at flat index i and returns it. In a
// grouped source the item joins the group holding index i, or the last
// group when i is the item count.
func (s *SliceSource) InsertItem(i int) *Item {
	it := NewItem(fmt.Sprintf("inserted %s", uuid.NewString()[:8]))
	if !s.grouping {
		s.items = append(s.items, nil)
		copy(s.items[i+1:], s.items[i:])
		s.items[i] = it
		return it
	}
	g, k := s.locate(i)
	grp := s.groups[g]
	grp.Items = append(grp.Items, nil)
	copy(grp.Items[k+1:], grp.Items[k:])
	grp.Items[k] = it
	return it
}

// RemoveItem removes and returns the item at flat index i.
func (s *SliceSource) RemoveItem(i int) *Item {
	if !s.grouping {
		it := s.items[i]
		s.items = append(s.items[:i], s.items[i+1:]...)
		return it
	}
	g, k := s.locate(i)
	grp := s.groups[g]
	it := grp.Items[k]
	grp.Items = append(grp.Items[:k], grp.Items[k+1:]...)
	return it
}

// ReplaceItem puts a new item at flat index i and returns it.
func (s *SliceSource) ReplaceItem(i int) *Item {
	it := NewItem(fmt.Sprintf("replaced %d", i))
	if !s.grouping {
		s.items[i] = it
		return it
	}
	g, k := s.locate(i)
	s.groups[g].Items[k] = it
	return it
}

// MoveItem moves the item at from so that it ends up at index to.
func (s *SliceSource) MoveItem(from, to int) {
	it := s.RemoveItem(from)
	if !s.grouping {
		s.items = append(s.items, nil)
		copy(s.items[to+1:], s.items[to:])
		s.items[to] = it
		return
	}
	g, k := s.locate(to)
	grp := s.groups[g]
	grp.Items = append(grp.Items, nil)
	copy(grp.Items[k+1:], grp.Items[k:])
	grp.Items[k] = it
}

// InsertGroup inserts a group of n new items at g and returns it.
func (s *SliceSource) InsertGroup(g, n int) *Group {
	grp := &Group{ID: uuid.New(), Label: fmt.Sprintf("inserted group %d", g)}
	for i := 0; i < n; i++ {
		grp.Items = append(grp.Items, NewItem(fmt.Sprintf("item %d of %s", i, grp.Label)))
	}
	s.groups = append(s.groups, nil)
	copy(s.groups[g+1:], s.groups[g:])
	s.groups[g] = grp
	return grp
}

// RemoveGroup removes and returns group g with its items.
func (s *SliceSource) RemoveGroup(g int) *Group {
	grp := s.groups[g]
	s.groups = append(s.groups[:g], s.groups[g+1:]...)
	return grp
}

// Reverse reverses the item order, keeping identities. In a grouped
// source each group is reversed in place.
func (s *SliceSource) Reverse() {
	rev := func(items []*Item) {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	if !s.grouping {
		rev(s.items)
		return
	}
	for _, grp := range s.groups {
		rev(grp.Items)
	}
}
