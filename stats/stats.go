// Package stats computes sample sizes, sentiment proportions with confidence
// margins, and independence tests over Senti4SD prediction files.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultAlphaLevel    = 0.05
	DefaultMarginOfError = 0.01
)

var (
	ErrUnknownPopulation = errors.New("no population given for prediction file")
	ErrTooFewPredictions = errors.New("at least 2 predictions are needed for a margin of error")
)

// ZScore returns two-sided critical value of standard normal distribution for
// given alpha level.
func ZScore(alphaLevel float64) float64 {
	return distuv.UnitNormal.Quantile(1 - alphaLevel/2)
}

// SampleSize returns number of documents that has to be sampled from a
// population of given size, so that proportion estimated from the sample has
// at most `marginOfError` error at given alpha level. Worst case proportion
// 0.5 is assumed. Population may be math.Inf(1).
func SampleSize(population, alphaLevel, marginOfError float64) int {
	z := ZScore(alphaLevel)
	n := z * z * 0.25 / (marginOfError * marginOfError)

	// finite population correction only matters when the sample is a
	// noticeable part of the population
	if !math.IsInf(population, 1) && n > 0.05*population {
		n = n / (1 + (n-1)/population)
	}

	return int(math.Ceil(n))
}

// MarginOfError returns margin of error of proportion `p` estimated from a
// sample of size `n` drawn from population of size `population`, with `t`
// as critical value. Continuity correction 1/(2n) is added to the interval
// half width. Population may be math.Inf(1), n must be at least 2.
func MarginOfError(p float64, n int, population float64, t float64) float64 {
	sampleSize := float64(n)

	fpc := 1.0
	if !math.IsInf(population, 1) {
		fpc = 1 - sampleSize/population
	}

	return t*math.Sqrt(p*(1-p)/(sampleSize-1)*fpc) + 1/(2*sampleSize)
}

// Chi2Result holds outcome of Pearson's chi-squared test of independence.
type Chi2Result struct {
	Statistic        float64
	DegreesOfFreedom int
	PValue           float64
	// Independent is true when independence could not be rejected at
	// tested confidence level.
	Independent bool
}

// Chi2Test runs chi-squared test of independence on a contingency table with
// one row per sample and one column per category. Categories that are empty
// in every sample are ignored.
func Chi2Test(table [][]int, confidenceLevel float64) (Chi2Result, error) {
	result := Chi2Result{}

	if len(table) < 2 {
		return result, fmt.Errorf("chi-squared test needs at least 2 samples, got %d", len(table))
	}

	cols := len(table[0])
	for i, row := range table {
		if len(row) != cols {
			return result, fmt.Errorf("sample %d has %d categories, expecting %d", i, len(row), cols)
		}
	}

	rowTotals := make([]float64, len(table))
	colTotals := make([]float64, cols)
	total := 0.0
	for i, row := range table {
		for j, count := range row {
			rowTotals[i] += float64(count)
			colTotals[j] += float64(count)
			total += float64(count)
		}
	}

	usedCols := 0
	for _, colTotal := range colTotals {
		if colTotal > 0 {
			usedCols++
		}
	}
	for i, rowTotal := range rowTotals {
		if rowTotal == 0 {
			return result, fmt.Errorf("sample %d is empty", i)
		}
	}
	if usedCols < 2 {
		// all samples fall into one category, they cannot differ
		result.PValue = 1
		result.Independent = true
		return result, nil
	}

	statistic := 0.0
	for i, row := range table {
		for j, count := range row {
			if colTotals[j] == 0 {
				continue
			}
			expected := rowTotals[i] * colTotals[j] / total
			diff := float64(count) - expected
			statistic += diff * diff / expected
		}
	}

	dof := (len(table) - 1) * (usedCols - 1)
	pValue := distuv.ChiSquared{K: float64(dof)}.Survival(statistic)

	result.Statistic = statistic
	result.DegreesOfFreedom = dof
	result.PValue = pValue
	result.Independent = pValue > 1-confidenceLevel

	return result, nil
}
