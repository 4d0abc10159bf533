// Package paneltest provides test doubles and a tester for driving a
// generation.Engine without a real host.
//
// # Quick Start
//
// Create a tester over a source, pump a pass, and make assertions:
//
//	func TestScroll(t *testing.T) {
//	    tester := paneltest.NewPanelTester(t, paneltest.NewFlatSource(100), paneltest.Options{})
//	    tester.Pump()
//
//	    tester.ScrollTo(400)
//	    tester.Pump()
//
//	    if got := tester.Realized(core.ItemContainer); got[0] > 10 {
//	        t.Errorf("first realized = %d", got[0])
//	    }
//	}
//
// # Doubles
//
// SliceSource is a flat or grouped DataSource whose items carry uuid
// identities. StackLayout stacks elements with fixed per-kind lengths and
// estimates positions exactly. RecordingHost records every host call and
// can be told to fail or to call back into the engine.
//
// # Snapshot Testing
//
// Capture and compare the arranged elements:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/scroll.snapshot.json")
//
// Update snapshots with:
//
//	VIRTUALIZE_UPDATE_SNAPSHOTS=1 go test ./...
package paneltest
