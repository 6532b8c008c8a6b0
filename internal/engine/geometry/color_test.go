package geometry

import "testing"

func TestApplyOverride(t *testing.T) {
	overrides := [3]Color4{Red, Green, Blue}

	tests := []struct {
		name    string
		in      Color4
		preview bool
		want    Color4
	}{
		{"preview off", PaintReferences[0], false, PaintReferences[0]},
		{"slot 1", PaintReferences[0], true, Red},
		{"slot 2", PaintReferences[1], true, Green},
		{"slot 3", PaintReferences[2], true, Blue},
		{"white takes slot 1", White, true, Red},
		{"near slot 2", RGBA(0.6, 0.5, 0.02, 1), true, Green},
		{"unrelated", RGBA(0.2, 0.2, 0.2, 1), true, RGBA(0.2, 0.2, 0.2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyOverride(tt.in, tt.preview, overrides); got != tt.want {
				t.Errorf("ApplyOverride() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorFromBytes(t *testing.T) {
	c := ColorFromBytes([4]uint8{255, 0, 51, 255})
	if c != RGBA(1, 0, 0.2, 1) {
		t.Errorf("ColorFromBytes() = %v", c)
	}
}
