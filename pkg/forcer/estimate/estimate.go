// Package estimate projects how long a full run will take before it is
// started: the number of strings and characters a range produces, a
// measured generation rate, and the resulting duration in readable units.
package estimate

import (
	"math"
	"math/big"
)

// TotalCombinations returns the number of strings of every length in
// [minLen, maxLen] over an alphabet of the given size: the sum of size^length.
// An empty range yields zero.
func TotalCombinations(minLen, maxLen, alphabetSize int) *big.Int {
	total := new(big.Int)
	if minLen < 1 || minLen > maxLen || alphabetSize < 1 {
		return total
	}

	base := big.NewInt(int64(alphabetSize))
	term := new(big.Int)
	for length := minLen; length <= maxLen; length++ {
		term.Exp(base, big.NewInt(int64(length)), nil)
		total.Add(total, term)
	}
	return total
}

// TotalCharacters returns the number of characters written for every
// string of every length in [minLen, maxLen]: the sum of length*size^length.
// This is the figure generation rates are measured in.
func TotalCharacters(minLen, maxLen, alphabetSize int) *big.Int {
	total := new(big.Int)
	if minLen < 1 || minLen > maxLen || alphabetSize < 1 {
		return total
	}

	base := big.NewInt(int64(alphabetSize))
	term := new(big.Int)
	for length := minLen; length <= maxLen; length++ {
		n := big.NewInt(int64(length))
		term.Exp(base, n, nil)
		term.Mul(term, n)
		total.Add(total, term)
	}
	return total
}

// Project returns the seconds needed to produce total at rate per second.
// A zero or negative rate projects forever; an infinite rate projects zero.
func Project(total *big.Int, rate float64) float64 {
	if math.IsInf(rate, 1) {
		return 0
	}
	if rate <= 0 || math.IsNaN(rate) {
		return math.Inf(1)
	}
	f, _ := new(big.Float).SetInt(total).Float64()
	return f / rate
}

// unitSteps are the thresholds at which HumanizeSeconds moves to a larger unit.
var unitSteps = []struct {
	seconds float64
	name    string
}{
	{60, "minutes"},
	{3600, "hours"},
	{86400, "days"},
	{31536000, "years"},
}

// HumanizeSeconds expresses s in the largest unit it reaches, from seconds
// up to years.
func HumanizeSeconds(s float64) (float64, string) {
	unit := "seconds"
	value := s
	for _, step := range unitSteps {
		if s < step.seconds {
			break
		}
		value = s / step.seconds
		unit = step.name
	}
	return value, unit
}
