// Package random provides the randomness abstraction used for card dealing
// and room-code generation, with an injectable Source for deterministic tests.
package random

import (
	"crypto/rand"
	"math/big"
)

// Source produces uniformly distributed integers. Implementations must be
// safe to call from a single goroutine at a time.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any
// n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "random: Intn called with n <= 0" if n <= 0.
// Panics with "random: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("random: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Shuffle permutes the first n elements in place using a Fisher-Yates walk
// over src. swap exchanges the elements at the two given indexes.
//
// Precondition: src must be non-nil; n >= 0; swap must be non-nil when n > 1.
// Postcondition: Every permutation of the n elements is equally likely given
// a uniform src.
func Shuffle(n int, src Source, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}

// Code returns a string of length n drawn uniformly from alphabet.
//
// Precondition: n > 0; alphabet must be non-empty.
func Code(n int, alphabet string, src Source) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[src.Intn(len(alphabet))]
	}
	return string(out)
}
