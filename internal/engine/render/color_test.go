package render

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected color.RGBA
		wantErr  bool
	}{
		{
			name:     "Black",
			input:    "#000000",
			expected: color.RGBA{A: 0xFF},
		},
		{
			name:     "White",
			input:    "#FFFFFF",
			expected: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		},
		{
			name:     "Mixed Without Hash",
			input:    "1A2B3C",
			expected: color.RGBA{R: 0x1A, G: 0x2B, B: 0x3C, A: 0xFF},
		},
		{
			name:    "Too Short",
			input:   "#FFF",
			wantErr: true,
		},
		{
			name:    "Not Hex",
			input:   "#GGGGGG",
			wantErr: true,
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("expected ErrInvalidColor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	inputs := []string{"#000000", "#FFFFFF", "#1A2B3C", "#C0FFEE", "#ABCDEF"}

	for _, in := range inputs {
		c, err := ParseHexColor(in)
		if err != nil {
			t.Fatalf("ParseHexColor(%q): %v", in, err)
		}
		if out := FormatHexColor(c); out != in {
			t.Errorf("round trip of %q produced %q", in, out)
		}
	}
}
