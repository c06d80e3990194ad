package otp

import (
	"testing"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	for i := 0; i < 100; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(code) != Digits {
			t.Fatalf("code=%q, want %d digits", code, Digits)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code=%q contains non-digit %q", code, r)
			}
		}
	}
}

func TestFixed_Generate(t *testing.T) {
	t.Parallel()

	code, err := Fixed("123456").Generate()
	if err != nil || code != "123456" {
		t.Fatalf("code=%q err=%v", code, err)
	}
}
