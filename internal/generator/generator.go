// Package generator draws random decimal operands.
package generator

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// maxZeroRetries bounds the redraw loop when zero is not allowed.
const maxZeroRetries = 1000

var (
	// ErrInvalidRange is returned when min >= max.
	ErrInvalidRange = errors.New("invalid range: min must be less than max")
	// ErrInvalidPrecision is returned for negative decimal places.
	ErrInvalidPrecision = errors.New("invalid precision: decimal places must be >= 0")
	// ErrZeroOnly is returned when a non-zero value could not be drawn.
	ErrZeroOnly = errors.New("range only produced zero after repeated draws")
)

// Generator produces random decimals from an injected source.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator backed by src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Intn returns a uniform int in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

// Number draws an integer in [min, max], scales it by a fraction in [0, 1)
// and rounds half away from zero to places.
func (g *Generator) Number(min, max, places int, allowZero bool) (decimal.Decimal, error) {
	if min >= max {
		return decimal.Decimal{}, ErrInvalidRange
	}
	if places < 0 {
		return decimal.Decimal{}, ErrInvalidPrecision
	}
	for i := 0; i < maxZeroRetries; i++ {
		x := g.draw(min, max, places)
		if allowZero || !x.IsZero() {
			return x, nil
		}
	}
	return decimal.Decimal{}, ErrZeroOnly
}

// Numbers draws n independent values with the same policy as Number.
func (g *Generator) Numbers(n, min, max, places int, allowZero bool) ([]decimal.Decimal, error) {
	result := make([]decimal.Decimal, 0, n)
	for i := 0; i < n; i++ {
		x, err := g.Number(min, max, places, allowZero)
		if err != nil {
			return nil, err
		}
		result = append(result, x)
	}
	return result, nil
}

func (g *Generator) draw(min, max, places int) decimal.Decimal {
	n := g.between(int64(min), int64(max))
	frac := decimal.NewFromFloat(g.rnd.Float64())
	return decimal.NewFromInt(n).Mul(frac).Round(int32(places))
}

// between returns a uniform int64 in [lo, hi]. Spans wider than int64 are
// drawn from Uint64 with rejection sampling.
func (g *Generator) between(lo, hi int64) int64 {
	span := uint64(hi) - uint64(lo)
	if span < math.MaxInt64 {
		return lo + g.rnd.Int63n(int64(span)+1)
	}
	if span == math.MaxUint64 {
		return int64(g.rnd.Uint64())
	}
	n := span + 1
	limit := math.MaxUint64 - (math.MaxUint64%n+1)%n
	for {
		if v := g.rnd.Uint64(); v <= limit {
			return int64(uint64(lo) + v%n)
		}
	}
}
