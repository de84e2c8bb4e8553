package query

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/database/data_model"
	"github.com/so-sentiment/analyzer/stats"
	"gorm.io/gorm"
)

// IndexFileExt is appended to a sample file's path to get its index file.
const IndexFileExt = ".index"

// SampleOptions describes which documents to sample.
type SampleOptions struct {
	Model    Model
	PostType data_model.PostType // only used when Model is ModelPost, zero means all
	Tag      string              // empty means no tag filtering
	// Number of documents to sample. When not positive, a sample size is
	// computed for 95% confidence level and 1% margin of error.
	Num int
}

// NewRand returns a random source seeded with current time.
func NewRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// sampleWithoutReplacement picks n distinct values from values in random order.
func sampleWithoutReplacement(rng *rand.Rand, values []int64, n int) []int64 {
	pool := make([]int64, len(values))
	copy(pool, values)

	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n]
}

// RandomElems samples documents from database.
func RandomElems(db *gorm.DB, rng *rand.Rand, options SampleOptions) ([]data_model.Document, error) {
	var query *gorm.DB
	var err error

	if options.Tag != "" {
		log.Infof("querying %s by tag %s", options.Model, options.Tag)
		query, err = IDsByTag(db, options.Tag, options.Model, options.PostType)
	} else {
		log.Infof("querying %s", options.Model)
		query, err = IDsByModel(db, options.Model, options.PostType)
	}
	if err != nil {
		return nil, err
	}

	ids, err := PluckIDs(query)
	if err != nil {
		return nil, err
	}

	population := len(ids)
	if population == 0 {
		return nil, fmt.Errorf(
			"%w: model: %s, num: %d, post type: %s, tag: %q",
			ErrEmptyQuery, options.Model, options.Num, options.PostType, options.Tag,
		)
	}

	log.Infof("found %d matches", population)

	num := options.Num
	if num <= 0 {
		num = stats.SampleSize(float64(population), stats.DefaultAlphaLevel, stats.DefaultMarginOfError)
		log.Infof("no sample size provided, sample size calculated to %d", num)
	}

	if num > population {
		return nil, fmt.Errorf("%w: %d > %d", ErrSampleTooLarge, num, population)
	}

	if rng == nil {
		rng = NewRand()
	}
	selected := sampleWithoutReplacement(rng, ids, num)

	return Elems(db, selected, options.Model)
}

// WriteSampleAndIndex writes text of each document as one line to outpath,
// and id of each document as one line to index file. Returns path of index
// file.
func WriteSampleAndIndex(outpath string, documents []data_model.Document) (string, error) {
	indexPath := outpath + IndexFileExt

	textFile, err := os.Create(outpath)
	if err != nil {
		return "", fmt.Errorf("failed to create sample file %s: %s", outpath, err)
	}
	defer textFile.Close()

	indexFile, err := os.Create(indexPath)
	if err != nil {
		return "", fmt.Errorf("failed to create index file %s: %s", indexPath, err)
	}
	defer indexFile.Close()

	textWriter := bufio.NewWriter(textFile)
	indexWriter := bufio.NewWriter(indexFile)

	for _, doc := range documents {
		if _, err = fmt.Fprintln(textWriter, doc.GetText()); err != nil {
			return "", fmt.Errorf("failed to write sample file: %s", err)
		}
		if _, err = fmt.Fprintln(indexWriter, doc.GetID()); err != nil {
			return "", fmt.Errorf("failed to write index file: %s", err)
		}
	}

	if err = textWriter.Flush(); err != nil {
		return "", fmt.Errorf("failed to write sample file: %s", err)
	}
	if err = indexWriter.Flush(); err != nil {
		return "", fmt.Errorf("failed to write index file: %s", err)
	}

	return indexPath, nil
}

// GenerateCSV randomly samples documents and writes them together with a
// corresponding index file.
func GenerateCSV(db *gorm.DB, rng *rand.Rand, outpath string, options SampleOptions) (string, error) {
	documents, err := RandomElems(db, rng, options)
	if err != nil {
		return "", err
	}

	return WriteSampleAndIndex(outpath, documents)
}

// GeneratePostsCSV samples posts of given type.
func GeneratePostsCSV(db *gorm.DB, rng *rand.Rand, num int, outpath string, postType data_model.PostType, tag string) (string, error) {
	return GenerateCSV(db, rng, outpath, SampleOptions{
		Model:    ModelPost,
		PostType: postType,
		Tag:      tag,
		Num:      num,
	})
}

// GenerateCommentsCSV samples comments.
func GenerateCommentsCSV(db *gorm.DB, rng *rand.Rand, num int, outpath string, tag string) (string, error) {
	return GenerateCSV(db, rng, outpath, SampleOptions{
		Model: ModelComment,
		Tag:   tag,
		Num:   num,
	})
}
