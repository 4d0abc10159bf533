package transition

// Tracker accumulates mutation counters per layout tick. Recording a
// mutation on a new tick discards the previous tick's counters, so counters
// only describe mutations made since the tick id last advanced.
type Tracker struct {
	tick     uint64
	counters Counters
	loadTick uint64
	loaded   bool
}

func (t *Tracker) at(tick uint64) *Counters {
	if tick != t.tick {
		t.tick = tick
		t.counters = Counters{}
	}
	return &t.counters
}

// RecordAdd counts n added items on tick.
func (t *Tracker) RecordAdd(tick uint64, n int) { t.at(tick).Added += n }

// RecordRemove counts n removed items on tick.
func (t *Tracker) RecordRemove(tick uint64, n int) { t.at(tick).Removed += n }

// RecordReorder counts n moved items on tick.
func (t *Tracker) RecordReorder(tick uint64, n int) { t.at(tick).Reordered += n }

// RecordReset marks a content reset on tick.
func (t *Tracker) RecordReset(tick uint64) { t.at(tick).Reset = true }

// MarkLoaded records the tick on which the panel first loaded. The
// entrance transition applies only on that tick.
func (t *Tracker) MarkLoaded(tick uint64) {
	if t.loaded {
		return
	}
	t.loaded = true
	t.loadTick = tick
}

// Counters returns the counters of tick, which are zero if nothing was
// recorded on it.
func (t *Tracker) Counters(tick uint64) Counters {
	if tick != t.tick {
		return Counters{}
	}
	return t.counters
}

// Context classifies tick.
func (t *Tracker) Context(tick uint64, wrapping bool) Context {
	entrance := t.loaded && tick == t.loadTick
	return Classify(t.Counters(tick), entrance, wrapping)
}
