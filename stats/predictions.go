package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Sentiment is polarity predicted by Senti4SD.
type Sentiment int

const (
	Negative Sentiment = -1
	Neutral  Sentiment = 0
	Positive Sentiment = 1
)

// PredictedColumn is the name of the prediction column in Senti4SD output.
const PredictedColumn = "Predicted"

// Sentiments lists all classes in plotting order.
var Sentiments = []Sentiment{Negative, Neutral, Positive}

func (s Sentiment) String() string {
	switch s {
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	case Positive:
		return "positive"
	default:
		return fmt.Sprintf("sentiment(%d)", int(s))
	}
}

func (s Sentiment) index() int {
	return int(s) + 1
}

// ParseSentiment accepts either Senti4SD class labels or their numeric form.
func ParseSentiment(label string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "negative", "-1":
		return Negative, nil
	case "neutral", "0":
		return Neutral, nil
	case "positive", "1":
		return Positive, nil
	default:
		return 0, fmt.Errorf("invalid sentiment label %q", label)
	}
}

// ReadPredictions reads the prediction column of a Senti4SD output file.
func ReadPredictions(path string) ([]Sentiment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction file %s: %s", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("prediction file %s is empty", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %s", path, err)
	}

	column := len(header) - 1
	for i, name := range header {
		if strings.TrimSpace(name) == PredictedColumn {
			column = i
			break
		}
	}

	predictions := []Sentiment{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read %s: %s", path, err)
		}

		if column >= len(record) {
			return nil, fmt.Errorf("%s:%d: missing %s column", path, line, PredictedColumn)
		}

		sentiment, err := ParseSentiment(record[column])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s", path, line, err)
		}

		predictions = append(predictions, sentiment)
	}

	return predictions, nil
}

// Counts is number of predictions per sentiment class.
type Counts [3]int

func (c Counts) Get(s Sentiment) int {
	return c[s.index()]
}

func (c Counts) Total() int {
	return c[0] + c[1] + c[2]
}

// CountSentiments tallies predictions per class.
func CountSentiments(predictions []Sentiment) Counts {
	counts := Counts{}
	for _, p := range predictions {
		counts[p.index()]++
	}
	return counts
}

// ReadCounts reads a prediction file and tallies it.
func ReadCounts(path string) (Counts, error) {
	predictions, err := ReadPredictions(path)
	if err != nil {
		return Counts{}, err
	}
	return CountSentiments(predictions), nil
}

// ClassStats describes one sentiment class of a prediction file.
type ClassStats struct {
	Sentiment     Sentiment
	Count         int
	Proportion    float64
	MarginOfError float64
}

// Table is the statistics of one prediction file.
type Table struct {
	Name       string
	SampleSize int
	Population float64
	Classes    []ClassStats
}

// Class returns statistics of given sentiment.
func (t Table) Class(s Sentiment) ClassStats {
	for _, class := range t.Classes {
		if class.Sentiment == s {
			return class
		}
	}
	return ClassStats{Sentiment: s}
}

// NewTable computes sentiment proportions with their margin of error at
// given alpha level.
func NewTable(name string, counts Counts, alphaLevel float64, population float64) (Table, error) {
	n := counts.Total()
	if n < 2 {
		return Table{}, fmt.Errorf("%w: %s has %d", ErrTooFewPredictions, name, n)
	}

	t := ZScore(alphaLevel)
	table := Table{
		Name:       name,
		SampleSize: n,
		Population: population,
	}

	for _, s := range Sentiments {
		count := counts.Get(s)
		p := float64(count) / float64(n)
		table.Classes = append(table.Classes, ClassStats{
			Sentiment:     s,
			Count:         count,
			Proportion:    p,
			MarginOfError: MarginOfError(p, n, population, t),
		})
	}

	return table, nil
}

// NewTableFromPredictionsCSV reads a prediction file and computes its
// statistics table.
func NewTableFromPredictionsCSV(path string, alphaLevel float64, name string, population float64) (Table, error) {
	counts, err := ReadCounts(path)
	if err != nil {
		return Table{}, err
	}
	return NewTable(name, counts, alphaLevel, population)
}

// NameFromFilename returns the part of a file's base name before the first
// underscore, which is used as key into population files.
func NameFromFilename(path string) string {
	name := filepath.Base(path)
	if index := strings.Index(name, "_"); index >= 0 {
		return name[:index]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Population maps subpopulation names to their sizes.
type Population map[string]float64

// ParsePopulation reads a JSON object of names to population sizes.
func ParsePopulation(path string) (Population, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read population file %s: %s", path, err)
	}

	population := Population{}
	if err = json.Unmarshal(data, &population); err != nil {
		return nil, fmt.Errorf("failed to parse population JSON %s: %s", path, err)
	}

	return population, nil
}

// For returns population size of given prediction file. Nil population
// means every subpopulation is infinite.
func (p Population) For(path string) (float64, error) {
	if p == nil {
		return math.Inf(1), nil
	}

	name := NameFromFilename(path)
	size, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q (key %q)", ErrUnknownPopulation, path, name)
	}

	return size, nil
}

// Chi2Independence tests whether sentiment distribution is independent of
// which prediction file it comes from.
func Chi2Independence(paths []string, confidenceLevel float64) (Chi2Result, error) {
	table := make([][]int, 0, len(paths))
	for _, path := range paths {
		counts, err := ReadCounts(path)
		if err != nil {
			return Chi2Result{}, err
		}
		table = append(table, counts[:])
	}

	return Chi2Test(table, confidenceLevel)
}
