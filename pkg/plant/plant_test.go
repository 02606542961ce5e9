package plant

import "testing"

func TestSpacingForHeight(t *testing.T) {
	tests := []struct {
		height float64
		want   int
	}{
		{0, 12},
		{-1, 12},
		{1, 6},
		{50, 6},
		{51, 12},
		{100, 12},
		{101, 18},
		{200, 18},
		{201, 24},
		{1000, 24},
	}
	for _, tt := range tests {
		if got := SpacingForHeight(tt.height); got != tt.want {
			t.Errorf("SpacingForHeight(%v) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestPerSquareFoot(t *testing.T) {
	tests := []struct {
		spacing int
		want    float64
	}{
		{24, 0.25},
		{18, 0.25},
		{17, 1},
		{12, 1},
		{11, 4},
		{6, 4},
		{5, 9},
		{4, 9},
		{3, 16},
		{0, 16},
	}
	for _, tt := range tests {
		if got := PerSquareFoot(tt.spacing); got != tt.want {
			t.Errorf("PerSquareFoot(%d) = %v, want %v", tt.spacing, got, tt.want)
		}
	}
}

func TestColorFor(t *testing.T) {
	if got := ColorFor(0); got != "#ff6b6b" {
		t.Errorf("ColorFor(0) = %s", got)
	}
	if got := ColorFor(9); got != "#ff9f43" {
		t.Errorf("ColorFor(9) = %s", got)
	}
	if got := ColorFor(-1); got != "#eb4d4b" {
		t.Errorf("ColorFor(-1) = %s", got)
	}
}

func TestJoinOrUnknown(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "Unknown"},
		{[]string{}, "Unknown"},
		{[]string{" ", ""}, "Unknown"},
		{[]string{"full sun"}, "full sun"},
		{[]string{"full sun", "part shade"}, "full sun, part shade"},
	}
	for _, tt := range tests {
		if got := JoinOrUnknown(tt.in); got != tt.want {
			t.Errorf("JoinOrUnknown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSourceID(t *testing.T) {
	if got := SourceID("perenual", 1234); got != "perenual-1234" {
		t.Errorf("SourceID = %q", got)
	}
}

func TestOrUnknown(t *testing.T) {
	if OrUnknown("") != Unknown || OrUnknown("  ") != Unknown {
		t.Error("blank should map to Unknown")
	}
	if OrUnknown("Frequent") != "Frequent" {
		t.Error("non-blank should pass through")
	}
}
