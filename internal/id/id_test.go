package id

import (
	"context"
	"testing"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	gen := New(0)

	got, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != defaultLength {
		t.Fatalf("expected length %d, got %d (%q)", defaultLength, len(got), got)
	}
	for _, r := range got {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			t.Fatalf("id %q contains non url-safe rune %q", got, r)
		}
	}

	gen = New(21)
	got, err = gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 21 {
		t.Fatalf("expected length 21, got %d", len(got))
	}
}

func TestGenerateUnique(t *testing.T) {
	gen := New(0)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		got, err := gen.Generate(context.Background())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[got]; dup {
			t.Fatalf("duplicate id %q after %d draws", got, i)
		}
		seen[got] = struct{}{}
	}
}

func TestGenerateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(0).Generate(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
