package graphics

import "testing"

func TestRectAxisAccessors(t *testing.T) {
	r := RectFromLTWH(10, 20, 30, 40)
	tests := []struct {
		axis              Axis
		start, end, length float64
	}{
		{AxisVertical, 20, 60, 40},
		{AxisHorizontal, 10, 40, 30},
	}
	for _, tt := range tests {
		if got := r.Start(tt.axis); got != tt.start {
			t.Errorf("Start(%v) = %v, want %v", tt.axis, got, tt.start)
		}
		if got := r.End(tt.axis); got != tt.end {
			t.Errorf("End(%v) = %v, want %v", tt.axis, got, tt.end)
		}
		if got := r.Length(tt.axis); got != tt.length {
			t.Errorf("Length(%v) = %v, want %v", tt.axis, got, tt.length)
		}
	}
}

func TestRectWithStartKeepsLength(t *testing.T) {
	r := RectFromLTWH(0, 100, 50, 40).WithStart(AxisVertical, 10)
	if r.Top != 10 || r.Bottom != 50 {
		t.Errorf("WithStart = %+v, want top 10 bottom 50", r)
	}
	if r.Left != 0 || r.Right != 50 {
		t.Errorf("WithStart moved the cross axis: %+v", r)
	}
}

func TestRectInflate(t *testing.T) {
	r := RectFromLTWH(0, 100, 50, 40).Inflate(AxisVertical, 10)
	if r.Top != 90 || r.Bottom != 150 {
		t.Errorf("Inflate = %+v, want top 90 bottom 150", r)
	}
	h := RectFromLTWH(100, 0, 50, 40).Inflate(AxisHorizontal, 5)
	if h.Left != 95 || h.Right != 155 || h.Top != 0 {
		t.Errorf("Inflate horizontal = %+v", h)
	}
}

func TestPositionRelativeTo(t *testing.T) {
	window := RectFromLTWH(0, 100, 100, 100)
	tests := []struct {
		name string
		rect Rect
		want RelativePosition
	}{
		{"well before", RectFromLTWH(0, 0, 100, 50), Before},
		{"touching leading edge", RectFromLTWH(0, 60, 100, 40), Before},
		{"overlapping start", RectFromLTWH(0, 90, 100, 20), Inside},
		{"inside", RectFromLTWH(0, 120, 100, 20), Inside},
		{"touching trailing edge", RectFromLTWH(0, 200, 100, 20), After},
		{"well after", RectFromLTWH(0, 300, 100, 20), After},
		{"zero length on edge", RectFromLTWH(0, 100, 0, 0), Inside},
	}
	for _, tt := range tests {
		if got := tt.rect.PositionRelativeTo(window, AxisVertical); got != tt.want {
			t.Errorf("%s: PositionRelativeTo = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAxisFlip(t *testing.T) {
	if AxisVertical.Flip() != AxisHorizontal || AxisHorizontal.Flip() != AxisVertical {
		t.Error("Flip should swap axes")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %v, want 3", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1, 0, 3) = %v, want 0", got)
	}
}
