package timeutil

import "testing"

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"23:59", 1439, false},
		{"9:00", 0, true},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHHMM(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHHMM(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseHHMM(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatHHMM(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{480, "08:00"},
		{1439, "23:59"},
		{61, "01:01"},
	}

	for _, tt := range tests {
		if got := FormatHHMM(tt.minutes); got != tt.want {
			t.Errorf("FormatHHMM(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Range
		want    Range
		wantOK  bool
	}{
		{"overlap", Range{0, 100}, Range{50, 150}, Range{50, 100}, true},
		{"contained", Range{0, 100}, Range{20, 30}, Range{20, 30}, true},
		{"touching", Range{0, 50}, Range{50, 100}, Range{}, false},
		{"disjoint", Range{0, 10}, Range{20, 30}, Range{}, false},
		{"identical", Range{10, 20}, Range{10, 20}, Range{10, 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Intersect(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("Intersect(%v, %v) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Intersect(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name             string
		now, start, end  int
		want             bool
	}{
		{"inside normal", 540, 480, 600, true},
		{"before normal", 100, 480, 600, false},
		{"after normal", 700, 480, 600, false},
		{"boundary start", 480, 480, 600, true},
		{"boundary end", 600, 480, 600, true},
		{"crosses midnight, late", 1380, 1320, 120, true},  // 23:00 in 22:00-02:00
		{"crosses midnight, early", 60, 1320, 120, true},   // 01:00 in 22:00-02:00
		{"crosses midnight, outside", 700, 1320, 120, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.now, tt.start, tt.end); got != tt.want {
				t.Errorf("InWindow(%d, %d, %d) = %v, want %v", tt.now, tt.start, tt.end, got, tt.want)
			}
		})
	}
}
