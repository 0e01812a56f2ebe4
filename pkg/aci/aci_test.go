package aci

import "testing"

func TestResolvePalette(t *testing.T) {
	tests := []struct {
		index int
		hex   string
	}{
		{1, "#FF0000"},
		{2, "#FFFF00"},
		{3, "#00FF00"},
		{4, "#00FFFF"},
		{5, "#0000FF"},
		{6, "#FF00FF"},
		{7, "#FFFFFF"},
		{8, "#808080"},
		{9, "#C0C0C0"},
		{10, "#FF0000"},
		{11, "#FF7F7F"},
		{12, "#CC0000"},
		{20, "#FF3F00"},
		{21, "#FF9F7F"},
		{30, "#FF7F00"},
		{50, "#FFFF00"},
		{250, "#333333"},
		{255, "#FFFFFF"},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c := Resolve(tt.index, nil, 0)
			if c.Hex != tt.hex {
				t.Errorf("Resolve(%d).Hex = %s, want %s", tt.index, c.Hex, tt.hex)
			}
			if c.Index != tt.index {
				t.Errorf("Index = %d, want %d", c.Index, tt.index)
			}
			if c.A != 1 {
				t.Errorf("A = %v, want 1", c.A)
			}
		})
	}
}

func TestResolveByLayer(t *testing.T) {
	c := Resolve(ByLayer, nil, 0)
	if c.Hex != DefaultHex {
		t.Errorf("ByLayer without fallback = %s, want %s", c.Hex, DefaultHex)
	}

	fallback, _ := Lookup(5)
	c = Resolve(ByLayer, &fallback, 0)
	if c.Hex != "#0000FF" {
		t.Errorf("ByLayer with blue fallback = %s", c.Hex)
	}
	if c.Index != ByLayer {
		t.Errorf("ByLayer should keep its index, got %d", c.Index)
	}

	c = Resolve(ByBlock, &fallback, 0)
	if c.Hex != "#0000FF" || c.Index != ByBlock {
		t.Errorf("ByBlock with fallback = %+v", c)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 257, 1000} {
		if c := Resolve(idx, nil, 0); c.Hex != DefaultHex {
			t.Errorf("Resolve(%d) = %s, want gray", idx, c.Hex)
		}
	}
}

func TestResolveTransparency(t *testing.T) {
	c := Resolve(1, nil, 51)
	if c.A < 0.79 || c.A > 0.81 {
		t.Errorf("A = %v, want 0.8", c.A)
	}
	if c := Resolve(1, nil, 400); c.A != 0 {
		t.Errorf("A should clamp to 0, got %v", c.A)
	}
	if c := Resolve(1, nil, -10); c.A != 1 {
		t.Errorf("A should clamp to 1, got %v", c.A)
	}
}

func TestFromTrueColor(t *testing.T) {
	c := FromTrueColor(0x00FF00, 0)
	if c.Hex != "#00FF00" || c.G != 255 || c.R != 0 {
		t.Errorf("FromTrueColor = %+v", c)
	}
	if c.Index != 3 {
		t.Errorf("nearest index for pure green = %d, want 3", c.Index)
	}
}

func TestNearestRoundTrip(t *testing.T) {
	for i := 1; i <= 9; i++ {
		c, _ := Lookup(i)
		got := Nearest(c.R, c.G, c.B)
		back, _ := Lookup(got)
		if back.Hex != c.Hex {
			t.Errorf("Nearest(%s) = %d (%s)", c.Hex, got, back.Hex)
		}
	}
}
