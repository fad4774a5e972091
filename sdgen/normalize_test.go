package sdgen

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeResolution(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"already on grid", 512, 512, 512, 512},
		{"floors to multiple of 64", 500, 300, 448, 256},
		{"clamps below minimum", 0, 100, 256, 256},
		{"clamps negative", -64, -1, 256, 256},
		{"clamps above maximum", 4096, 800, 768, 768},
		{"maximum stays", 768, 768, 768, 768},
		{"minimum stays", 256, 256, 256, 256},
		{"just under next step", 511, 767, 448, 704},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := NormalizeResolution(tt.w, tt.h)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("NormalizeResolution(%d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNormalizeResolution_Invariants(t *testing.T) {
	// Every output must be on the supported grid, and normalization must be
	// idempotent.
	for w := -100; w <= 2000; w += 37 {
		for h := -100; h <= 2000; h += 53 {
			gotW, gotH := NormalizeResolution(w, h)
			for _, d := range []int{gotW, gotH} {
				if d < MinDimension || d > MaxDimension {
					t.Fatalf("dimension %d out of [%d, %d] for input (%d, %d)",
						d, MinDimension, MaxDimension, w, h)
				}
				if d%DimensionStep != 0 {
					t.Fatalf("dimension %d not a multiple of %d for input (%d, %d)",
						d, DimensionStep, w, h)
				}
			}

			againW, againH := NormalizeResolution(gotW, gotH)
			if againW != gotW || againH != gotH {
				t.Fatalf("not idempotent: (%d, %d) -> (%d, %d) -> (%d, %d)",
					w, h, gotW, gotH, againW, againH)
			}
		}
	}
}

func TestResolveSeed(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSeed uint64
		wantOK   bool
	}{
		{"empty means random", "", 0, false},
		{"blank means random", "   ", 0, false},
		{"numeric", "42", 42, true},
		{"numeric with whitespace", " 1234 ", 1234, true},
		{"zero is a valid seed", "0", 0, true},
		{"large 64-bit value", "18446744073709551615", 18446744073709551615, true},
		{"non-numeric means random", "abc", 0, false},
		{"negative means random", "-7", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, ok := ResolveSeed(tt.raw, zap.NewNop())
			if seed != tt.wantSeed || ok != tt.wantOK {
				t.Errorf("ResolveSeed(%q) = (%d, %v), want (%d, %v)",
					tt.raw, seed, ok, tt.wantSeed, tt.wantOK)
			}
		})
	}
}

func TestResolveSeed_LogsWarningOnMalformedInput(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	if _, ok := ResolveSeed("not-a-number", logger); ok {
		t.Fatal("expected malformed seed to resolve as absent")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one warning, got %d entries", logs.Len())
	}

	// Well-formed and empty inputs must not log.
	if _, ok := ResolveSeed("7", logger); !ok {
		t.Fatal("expected numeric seed to resolve")
	}
	ResolveSeed("", logger)
	if logs.Len() != 1 {
		t.Fatalf("unexpected extra log entries: %d", logs.Len())
	}
}

func TestResolveSeed_NilLoggerDoesNotPanic(t *testing.T) {
	if _, ok := ResolveSeed("garbage", nil); ok {
		t.Fatal("expected absent seed")
	}
}

func TestValidateStrength(t *testing.T) {
	tests := []struct {
		strength float64
		wantErr  bool
	}{
		{0.0, true},
		{-0.5, true},
		{1.5, true},
		{0.6, false},
		{1.0, false},
		{0.0001, false},
	}

	for _, tt := range tests {
		err := ValidateStrength(tt.strength)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStrength(%g) error = %v, wantErr %v", tt.strength, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidStrength) {
			t.Errorf("ValidateStrength(%g) = %v, want ErrInvalidStrength", tt.strength, err)
		}
	}
}
