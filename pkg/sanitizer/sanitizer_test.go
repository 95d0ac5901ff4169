package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Gregory House  ",
			want:  "Gregory House",
		},
		{
			name:  "multiple spaces between words",
			input: "Gregory    House",
			want:  "Gregory House",
		},
		{
			name:  "tabs and newlines",
			input: "Gregory\t\nHouse",
			want:  "Gregory House",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "control characters dropped",
			input: "Ana\x00 María\x07",
			want:  "Ana María",
		},
		{
			name:  "hebrew characters",
			input: " יוסי כהן ",
			want:  "יוסי כהן",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"  Persistent\n\nheadache  since   Monday ",
		"Back pain",
		"\t",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	if got := NormalizeText("  Persistent\n\nheadache  since   Monday "); got != "Persistent headache since Monday" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply(""); got != "ab" {
		t.Errorf("expected ab, got %q", got)
	}
}
