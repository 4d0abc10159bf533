package transition

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		c        Counters
		entrance bool
		wrapping bool
		want     Context
	}{
		{"single add list", Counters{Added: 1}, false, false, Context{SingleAdd, List}},
		{"single add grid", Counters{Added: 1}, false, true, Context{SingleAdd, Grid}},
		{"multiple add", Counters{Added: 3}, false, false, Context{MultipleAdd, List}},
		{"single delete", Counters{Removed: 1}, false, false, Context{SingleDelete, List}},
		{"multiple delete", Counters{Removed: 2}, false, true, Context{MultipleDelete, Grid}},
		{"mixed", Counters{Added: 1, Removed: 1}, false, false, Context{Mixed, List}},
		{"reorder beats mixed", Counters{Added: 1, Removed: 1, Reordered: 1}, false, false, Context{SingleReorder, List}},
		{"multiple reorder", Counters{Reordered: 2}, false, false, Context{MultipleReorder, List}},
		{"reset beats reorder", Counters{Reordered: 2, Reset: true}, false, false, Context{ContentReset, List}},
		{"entrance beats reset", Counters{Reset: true}, true, true, Context{Entrance, Grid}},
		{"none", Counters{}, false, false, Context{None, List}},
	}
	for _, tt := range tests {
		if got := Classify(tt.c, tt.entrance, tt.wrapping); got != tt.want {
			t.Errorf("%s: Classify() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTrackerResetsOnNewTick(t *testing.T) {
	var tr Tracker
	tr.RecordAdd(1, 1)
	tr.RecordRemove(1, 1)
	if got := tr.Context(1, false); got.Category != Mixed {
		t.Errorf("Context(1) = %v, want mixed", got)
	}
	if got := tr.Counters(2); !got.IsZero() {
		t.Errorf("Counters(2) = %+v, want zero", got)
	}
	tr.RecordRemove(2, 1)
	if got := tr.Counters(2); got != (Counters{Removed: 1}) {
		t.Errorf("Counters(2) = %+v, want only the removal", got)
	}
}

func TestEntranceOnLoadTickOnly(t *testing.T) {
	var tr Tracker
	tr.MarkLoaded(5)
	tr.MarkLoaded(6)
	if got := tr.Context(5, false).Category; got != Entrance {
		t.Errorf("Context(5) = %v, want entrance", got)
	}
	tr.RecordAdd(6, 1)
	if got := tr.Context(6, false).Category; got != SingleAdd {
		t.Errorf("Context(6) = %v, want single-add", got)
	}
}

func TestContextString(t *testing.T) {
	if got := (Context{SingleAdd, Grid}).String(); got != "single-add/grid" {
		t.Errorf("String() = %q", got)
	}
}
