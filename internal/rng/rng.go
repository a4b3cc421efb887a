// Package rng provides the deterministic random stream used by runs.
//
// Every random decision in a run (deck shuffles, enemy picks, map layout,
// shop offers) draws from one Rand so that a run seed reproduces the same
// game across processes. The generator is mulberry32: a 32-bit state that
// advances by a fixed odd increment and is scrambled on output.
package rng

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

const increment = 0x6d2b79f5

// Source is anything that yields floats in [0, 1).
type Source interface {
	Float64() float64
}

// Rand is a mulberry32 generator. The zero value is a valid stream for seed 0.
type Rand struct {
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Uint32 advances the stream and returns the next 32-bit output.
func (r *Rand) Uint32() uint32 {
	r.state += increment
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Intn returns an int in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// State returns the internal state so a saved run can resume mid-stream.
func (r *Rand) State() uint32 {
	return r.state
}

// Restore rewinds or fast-forwards the generator to a saved state.
func (r *Rand) Restore(state uint32) {
	r.state = state
}

// HashSeed derives a 32-bit seed from an arbitrary string: the first four
// bytes of its SHA-256 digest read as a little-endian integer.
func HashSeed(s string) uint32 {
	sum := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint32(sum[:4])
}

// DailySeed returns the shared seed string for the UTC calendar day of t.
func DailySeed(t time.Time) string {
	day := t.UTC().Format("2006-01-02")
	return strconv.FormatUint(uint64(HashSeed(day)), 10)
}

// RandomSeedString returns a fresh seed string for runs started without one.
func RandomSeedString() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random seed: %w", err)
	}
	return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b[:])%1_000_000_000), 10), nil
}
