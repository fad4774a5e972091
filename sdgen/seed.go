package sdgen

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed generates a fresh random seed for image generation.
// The value is masked to 63 bits so it stays representable by engines that
// take a signed seed argument. Uses crypto/rand; on the (extremely rare)
// failure to read entropy a fixed fallback seed is returned rather than
// panicking in production.
func RandomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 42
	}
	return binary.LittleEndian.Uint64(buf[:]) & (1<<63 - 1)
}
