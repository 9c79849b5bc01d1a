/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package lifecycle

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// IDGenerator produces identifiers for newly created registry entries.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string { return f() }

const (
	base36Digits   = "0123456789abcdefghijklmnopqrstuvwxyz"
	fractionDigits = 14
)

// Base36Generator builds ids from two uniform random numbers, each rendered as
// up to 14 base-36 fractional digits, concatenated and upper-cased.
type Base36Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBase36Generator returns a generator drawing from src, or from the
// runtime's random source when src is nil.
func NewBase36Generator(src rand.Source) *Base36Generator {
	g := &Base36Generator{}
	if src != nil {
		g.rng = rand.New(src)
	}
	return g
}

// NewID returns an upper-case base-36 id of at most 28 characters.
func (g *Base36Generator) NewID() string {
	g.mu.Lock()
	a, b := g.float(), g.float()
	g.mu.Unlock()
	return strings.ToUpper(base36Fraction(a) + base36Fraction(b))
}

func (g *Base36Generator) float() float64 {
	if g.rng == nil {
		return rand.Float64()
	}
	return g.rng.Float64()
}

// base36Fraction renders the fractional digits of f in [0,1) in base 36.
// Trailing zero digits are dropped.
func base36Fraction(f float64) string {
	var sb strings.Builder
	for i := 0; i < fractionDigits && f > 0; i++ {
		f *= 36
		d := int(f)
		sb.WriteByte(base36Digits[d])
		f -= float64(d)
	}
	return strings.TrimRight(sb.String(), "0")
}
