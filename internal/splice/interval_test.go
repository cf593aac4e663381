package splice

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Exon
		want bool
	}{
		{"overlapping", Exon{0, 10}, Exon{5, 15}, true},
		{"contained", Exon{0, 100}, Exon{20, 30}, true},
		{"touching", Exon{0, 10}, Exon{10, 20}, false},
		{"disjoint", Exon{0, 10}, Exon{20, 30}, false},
		{"identical", Exon{5, 10}, Exon{5, 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestOverlapLength(t *testing.T) {
	tests := []struct {
		a, b Exon
		want int64
	}{
		{Exon{0, 10}, Exon{5, 15}, 5},
		{Exon{0, 100}, Exon{20, 30}, 10},
		{Exon{0, 10}, Exon{10, 20}, 0},
		{Exon{0, 10}, Exon{50, 60}, 0},
	}
	for _, tt := range tests {
		if got := OverlapLength(tt.a, tt.b); got != tt.want {
			t.Errorf("OverlapLength(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Exon
		want int64
	}{
		{Exon{0, 10}, Exon{20, 30}, 10},
		{Exon{0, 10}, Exon{10, 20}, 0},
		{Exon{0, 10}, Exon{5, 15}, -5},
		{Exon{20, 30}, Exon{0, 10}, 10},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCmpDist(t *testing.T) {
	tests := []struct {
		a, b, minDist int64
		want          int
	}{
		{10, 5, 3, 1},
		{5, 10, 3, -1},
		{10, 9, 3, 0},
		{9, 10, 3, 0},
		{10, 10, 3, 0},
		{13, 10, 3, 1},
	}
	for _, tt := range tests {
		if got := CmpDist(tt.a, tt.b, tt.minDist); got != tt.want {
			t.Errorf("CmpDist(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.minDist, got, tt.want)
		}
	}
}

func TestStructureAccessors(t *testing.T) {
	s := Structure{{100, 150}, {300, 350}, {500, 600}}

	if got := s.ExonicLength(); got != 200 {
		t.Errorf("ExonicLength() = %d, want 200", got)
	}
	if got := s.Span(); got != (Exon{100, 600}) {
		t.Errorf("Span() = %v, want {100 600}", got)
	}

	junctions := s.Junctions()
	want := []Junction{{150, 300}, {350, 500}}
	if len(junctions) != len(want) {
		t.Fatalf("Junctions() = %v, want %v", junctions, want)
	}
	for i := range junctions {
		if junctions[i] != want[i] {
			t.Errorf("Junctions()[%d] = %v, want %v", i, junctions[i], want[i])
		}
	}

	if got := (Structure{{100, 200}}).Junctions(); got != nil {
		t.Errorf("single exon Junctions() = %v, want nil", got)
	}
}
