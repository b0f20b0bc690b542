//go:build property
// +build property

package features

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFunctionalAnalysisProperties checks the analysis invariants on random input
func TestFunctionalAnalysisProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sum and count match input", prop.ForAll(
		func(numbers []int) bool {
			a := FunctionalAnalysis(numbers)
			sum := 0
			for _, n := range numbers {
				sum += n
			}
			return a.TotalSum == sum &&
				a.Statistics.Count == len(numbers) &&
				len(a.SquaredNumbers) == len(numbers)
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
	))

	properties.Property("even numbers are even and ordered", prop.ForAll(
		func(numbers []int) bool {
			a := FunctionalAnalysis(numbers)
			i := 0
			for _, n := range numbers {
				if n%2 != 0 {
					continue
				}
				if i >= len(a.EvenNumbers) || a.EvenNumbers[i] != n {
					return false
				}
				i++
			}
			return i == len(a.EvenNumbers)
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
	))

	properties.Property("average lies between min and max", prop.ForAll(
		func(numbers []int) bool {
			s := FunctionalAnalysis(numbers).Statistics
			if len(numbers) == 0 {
				return s == Statistics{}
			}
			return float64(s.Min) <= s.Avg && s.Avg <= float64(s.Max)
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
	))

	properties.TestingRun(t)
}
