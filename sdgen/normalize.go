package sdgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Resolution grid supported by the loaded pipelines. Stable Diffusion models
// expect spatial dimensions that are multiples of 64; the range is clamped to
// [256, 768] to bound memory use.
const (
	MinDimension  = 256
	MaxDimension  = 768
	DimensionStep = 64
)

// ErrInvalidStrength is returned when an img2img strength is outside (0, 1].
var ErrInvalidStrength = errors.New("sdgen: strength must be in (0, 1]")

// NormalizeResolution clamps each dimension to [MinDimension, MaxDimension]
// and rounds down to the nearest multiple of DimensionStep.
// This is a pure, total function: any input maps to a valid resolution, and
// applying it twice yields the same result as applying it once.
func NormalizeResolution(width, height int) (int, int) {
	return normalizeDimension(width), normalizeDimension(height)
}

func normalizeDimension(v int) int {
	if v < MinDimension {
		v = MinDimension
	}
	if v > MaxDimension {
		v = MaxDimension
	}
	return (v / DimensionStep) * DimensionStep
}

// ResolveSeed parses an optional seed supplied as free text. An empty or
// blank value means "no seed": the caller must generate a random one.
// A non-numeric value is malformed but never fatal; it is logged as a warning
// and treated the same as empty.
func ResolveSeed(raw string, log *zap.Logger) (seed uint64, ok bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, false
	}

	seed, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		if log == nil {
			log = zap.NewNop()
		}
		log.Warn("invalid seed input, falling back to random",
			zap.String("seed", raw))
		return 0, false
	}

	return seed, true
}

// ValidateStrength checks that an img2img strength is in (0, 1].
// Validation happens before any inference is attempted.
func ValidateStrength(strength float64) error {
	if strength <= 0 || strength > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidStrength, strength)
	}
	return nil
}
