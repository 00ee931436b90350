package random

import "math/rand/v2"

// Random picks colours, option orders and room codes. Tests replace it with
// a queue of fixed results.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// MathRandom implements Random with the runtime's goroutine-safe source
type MathRandom struct{}

// New creates a new MathRandom
func New() *MathRandom {
	return &MathRandom{}
}

// Intn returns a random int in [0, n), or 0 when n is not positive
func (r *MathRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
