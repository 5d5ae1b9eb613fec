package lang

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		tag     string
		want    Language
		wantErr bool
	}{
		{"javascript", JavaScript, false},
		{"JS", JavaScript, false},
		{"typescript", TypeScript, false},
		{"python", Python, false},
		{" java ", Java, false},
		{"golang", Go, false},
		{"go", Go, false},
		{"rust", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := Parse(tt.tag)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	for _, l := range All() {
		if err := l.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", l, err)
		}
		if l.Label() == "" || l.Extension() == "" {
			t.Errorf("%s: missing label or extension", l)
		}
	}
	if err := Language("cobol").Validate(); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	cases := map[string]Language{
		"main.go":          Go,
		"src/app.TSX":      TypeScript,
		"lib/index.mjs":    JavaScript,
		"pkg/Service.java": Java,
		"tool.py":          Python,
	}
	for path, want := range cases {
		got, ok := Detect(path)
		if !ok || got != want {
			t.Errorf("Detect(%q) = %q, %v; want %q", path, got, ok, want)
		}
	}

	if _, ok := Detect("README.md"); ok {
		t.Error("expected README.md to be unrecognized")
	}
}
