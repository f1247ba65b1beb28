package geom

import (
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 10)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Pt(15, 15), true},
		{"top-left corner", Pt(10, 10), true},
		{"bottom-right corner", Pt(30, 20), true},
		{"left of rect", Pt(9, 15), false},
		{"below rect", Pt(15, 21), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectUnionAndExpand(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 5, 10, 20)

	u := a.Union(b)
	if u != NewRect(0, 0, 30, 25) {
		t.Errorf("Union = %+v", u)
	}

	e := a.Expand(5)
	if e != NewRect(-5, -5, 20, 20) {
		t.Errorf("Expand = %+v", e)
	}

	if _, ok := BoundingRect(nil); ok {
		t.Error("BoundingRect(nil) should report ok=false")
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	obstacle := NewRect(100, -20, 100, 40)

	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"crosses through", Pt(0, 0), Pt(300, 0), true},
		{"passes above", Pt(0, -40), Pt(300, -40), false},
		{"fully inside", Pt(120, 0), Pt(180, 0), true},
		{"ends inside", Pt(0, 0), Pt(150, 0), true},
		{"vertical miss", Pt(50, -100), Pt(50, 100), false},
		{"diagonal through corner region", Pt(90, -30), Pt(210, 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.a, tt.b, obstacle); got != tt.want {
				t.Errorf("SegmentIntersectsRect(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistanceToPolyline(t *testing.T) {
	line := []Point{Pt(0, 0), Pt(100, 0), Pt(100, 100)}

	if d := DistanceToPolyline(Pt(50, 5), line); math.Abs(d-5) > 1e-9 {
		t.Errorf("distance = %v, want 5", d)
	}
	if d := DistanceToPolyline(Pt(110, 50), line); math.Abs(d-10) > 1e-9 {
		t.Errorf("distance = %v, want 10", d)
	}
	if d := DistanceToPolyline(Pt(0, 0), nil); !math.IsInf(d, 1) {
		t.Errorf("empty polyline distance = %v, want +Inf", d)
	}
}

func TestPathLength(t *testing.T) {
	got := PathLength([]Point{Pt(0, 0), Pt(3, 4), Pt(3, 10)})
	if math.Abs(got-11) > 1e-9 {
		t.Errorf("PathLength = %v, want 11", got)
	}
}
