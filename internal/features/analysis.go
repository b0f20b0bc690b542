// Package features implements the small paradigm demos behind
// /api/python-features: a functional number analysis, a data processor,
// a process-wide settings singleton and a few typed helpers.
package features

import (
	"fmt"
	"log"
	"time"

	"github.com/go-while/go-paradigmas/internal/cache"
	"github.com/shopspring/decimal"
)

// Statistics summarizes a number list. All fields are zero for empty input.
type Statistics struct {
	Count int     `json:"count"`
	Max   int     `json:"max"`
	Min   int     `json:"min"`
	Avg   float64 `json:"avg"`
}

// Analysis is the result of FunctionalAnalysis
type Analysis struct {
	Original        []int      `json:"original"`
	EvenNumbers     []int      `json:"even_numbers"`
	SquaredNumbers  []int      `json:"squared_numbers"`
	TotalSum        int        `json:"total_sum"`
	PositiveSquares []int      `json:"positive_squares"`
	Statistics      Statistics `json:"statistics"`
}

func filterInts(in []int, keep func(int) bool) []int {
	out := make([]int, 0, len(in))
	for _, n := range in {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func mapInts(in []int, fn func(int) int) []int {
	out := make([]int, 0, len(in))
	for _, n := range in {
		out = append(out, fn(n))
	}
	return out
}

func reduceInts(in []int, fn func(acc, n int) int, initial int) int {
	acc := initial
	for _, n := range in {
		acc = fn(acc, n)
	}
	return acc
}

func square(n int) int { return n * n }

// FunctionalAnalysis runs filter/map/reduce over numbers. Slices in the
// result are never nil so they encode as [] in JSON.
func FunctionalAnalysis(numbers []int) Analysis {
	original := append(make([]int, 0, len(numbers)), numbers...)
	sum := reduceInts(numbers, func(acc, n int) int { return acc + n }, 0)

	a := Analysis{
		Original:        original,
		EvenNumbers:     filterInts(numbers, func(n int) bool { return n%2 == 0 }),
		SquaredNumbers:  mapInts(numbers, square),
		TotalSum:        sum,
		PositiveSquares: mapInts(filterInts(numbers, func(n int) bool { return n > 0 }), square),
	}

	if len(numbers) == 0 {
		return a
	}
	a.Statistics.Count = len(numbers)
	a.Statistics.Max = numbers[0]
	a.Statistics.Min = numbers[0]
	for _, n := range numbers[1:] {
		if n > a.Statistics.Max {
			a.Statistics.Max = n
		}
		if n < a.Statistics.Min {
			a.Statistics.Min = n
		}
	}
	a.Statistics.Avg = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(numbers)))).
		Round(4).
		InexactFloat64()
	return a
}

// clone copies every slice so cached results cannot be mutated by callers
func (a Analysis) clone() Analysis {
	cp := a
	cp.Original = append([]int{}, a.Original...)
	cp.EvenNumbers = append([]int{}, a.EvenNumbers...)
	cp.SquaredNumbers = append([]int{}, a.SquaredNumbers...)
	cp.PositiveSquares = append([]int{}, a.PositiveSquares...)
	return cp
}

// Analyzer memoizes FunctionalAnalysis for ttl per distinct input
type Analyzer struct {
	cache *cache.TTLCache[Analysis]
}

// NewAnalyzer returns an analyzer caching up to 128 inputs for ttl
func NewAnalyzer(ttl time.Duration) *Analyzer {
	return &Analyzer{cache: cache.NewTTLCache[Analysis]("analysis", 128, ttl)}
}

// Analyze returns the cached analysis of numbers, computing it on a miss
func (az *Analyzer) Analyze(numbers []int) Analysis {
	start := time.Now()
	key := fmt.Sprint(numbers)

	if cached, ok := az.cache.Get(key); ok {
		log.Printf("[FEATURES]: analysis cache hit for %s (%s)", key, time.Since(start))
		return cached.clone()
	}

	result := FunctionalAnalysis(numbers)
	az.cache.Set(key, result.clone(), int64(len(numbers))*8*5+64)
	log.Printf("[FEATURES]: analysis stored for %s in %s", key, time.Since(start))
	return result
}

// CacheStats returns the statistics of the analysis cache
func (az *Analyzer) CacheStats() map[string]interface{} {
	return az.cache.GetStats()
}

// Stop releases the cache cleanup goroutine
func (az *Analyzer) Stop() {
	az.cache.Stop()
}
