package datacache

// Session is a scope in which the cache resolves items against the live
// source. Sessions nest; the cache stays guaranteed until every session is
// released.
type Session struct {
	cache    *Cache
	released bool
}

// Guarantee opens a session. Cached metrics are refreshed if they were
// invalidated.
func (c *Cache) Guarantee() (*Session, error) {
	if c.source == nil {
		return nil, ErrNoSource
	}
	c.ensure()
	c.guaranteed++
	return &Session{cache: c}, nil
}

// Release ends the session. Releasing twice is a no-op.
func (s *Session) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.cache.guaranteed--
}

// Guaranteed reports whether a session is open.
func (c *Cache) Guaranteed() bool { return c.guaranteed > 0 }

// Item returns the item at data index i.
func (c *Cache) Item(i int) (any, error) {
	if c.guaranteed == 0 {
		return nil, ErrNotGuaranteed
	}
	if i < 0 || i >= c.itemCount || i >= c.source.ItemCount() {
		return nil, ErrNotFound
	}
	return c.source.Item(i), nil
}

// Group returns the group object at index g.
func (c *Cache) Group(g int) (any, error) {
	if c.guaranteed == 0 {
		return nil, ErrNotGuaranteed
	}
	if !c.grouping || g < 0 || g >= len(c.groups.sizes) || g >= c.source.GroupCount() {
		return nil, ErrNotFound
	}
	return c.source.Group(g), nil
}

// IndexOf locates an item or group by identity.
func (c *Cache) IndexOf(item any) (index int, isGroup bool, err error) {
	if c.guaranteed == 0 {
		return -1, false, ErrNotGuaranteed
	}
	index, isGroup, found := c.source.IndexOf(item)
	if !found {
		return -1, false, ErrNotFound
	}
	return index, isGroup, nil
}
