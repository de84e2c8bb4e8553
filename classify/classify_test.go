package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labels each line by keyword, writes prediction file into working directory
const fakeClassifierScript = `#!/bin/bash
{
	echo "Row,Predicted"
	n=0
	while IFS= read -r line || [ -n "$line" ]; do
		n=$((n+1))
		case "$line" in
			*good*) echo "$n,positive" ;;
			*bad*) echo "$n,negative" ;;
			*) echo "$n,neutral" ;;
		esac
	done < "$1"
} > "$2"
`

const failingClassifierScript = `#!/bin/bash
echo "out of memory" >&2
exit 3
`

const numDocuments = 100

func makePool(t *testing.T, script string, names ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, name := range names {
		scriptPath := filepath.Join(root, name, ScriptPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(scriptPath), 0o755))
		require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o755))
	}

	return root
}

func documentLine(i int) string {
	switch i % 3 {
	case 0:
		return fmt.Sprintf("document %d is good", i)
	case 1:
		return fmt.Sprintf("document %d is bad", i)
	default:
		return fmt.Sprintf("document %d is fine", i)
	}
}

func expectedLabel(i int) string {
	return [...]string{"positive", "negative", "neutral"}[i%3]
}

func writeDocuments(t *testing.T, n int) string {
	t.Helper()

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, documentLine(i))
	}

	path := filepath.Join(t.TempDir(), "documents.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	return path
}

func readLabels(t *testing.T, path string) []string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Equal(t, "Row,Predicted", lines[0])

	labels := []string{}
	for _, line := range lines[1:] {
		require.NotEqual(t, "Row,Predicted", line, "header rows of later subfiles must be dropped")
		_, label, ok := strings.Cut(line, ",")
		require.True(t, ok)
		labels = append(labels, label)
	}

	return labels
}

func assertLabelsInOrder(t *testing.T, labels []string) {
	t.Helper()

	require.Len(t, labels, numDocuments)
	for i, label := range labels {
		assert.Equal(t, expectedLabel(i), label, "document %d", i)
	}
}

func TestFindClassifiers(t *testing.T) {
	root := makePool(t, fakeClassifierScript, "Senti4SD", "senti4sd-copy", "other")
	require.NoError(t, os.WriteFile(filepath.Join(root, "senti4sd.txt"), nil, 0o644))

	classifiers, err := FindClassifiers(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "Senti4SD", ScriptPath),
		filepath.Join(root, "senti4sd-copy", ScriptPath),
	}, classifiers)
}

func TestFindClassifiersEmptyPool(t *testing.T) {
	root := makePool(t, fakeClassifierScript, "other")

	_, err := FindClassifiers(root)
	assert.ErrorIs(t, err, ErrNoClassifier)
}

func TestSplitFile(t *testing.T) {
	inpath := writeDocuments(t, 10)
	dir := t.TempDir()

	subfiles, err := SplitFile(3, inpath, dir)
	require.NoError(t, err)
	require.Len(t, subfiles, 4)

	joined := ""
	for i, subfile := range subfiles {
		content, err := os.ReadFile(subfile)
		require.NoError(t, err)

		lineCnt := strings.Count(string(content), "\n")
		if i < 3 {
			assert.Equal(t, 3, lineCnt)
		} else {
			assert.Equal(t, 1, lineCnt)
		}
		joined += string(content)
	}

	original, err := os.ReadFile(inpath)
	require.NoError(t, err)
	assert.Equal(t, string(original), joined)
}

func TestSplitFileWithoutTrailingNewline(t *testing.T) {
	inpath := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(inpath, []byte("a\nb\nc"), 0o644))

	subfiles, err := SplitFile(2, inpath, t.TempDir())
	require.NoError(t, err)
	require.Len(t, subfiles, 2)

	last, err := os.ReadFile(subfiles[1])
	require.NoError(t, err)
	assert.Equal(t, "c", string(last))
}

func TestSplitFileRejectsZeroRows(t *testing.T) {
	_, err := SplitFile(0, writeDocuments(t, 1), t.TempDir())
	assert.Error(t, err)
}

func TestConcatenatePredictions(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(first, []byte("Row,Predicted\n1,positive\n2,neutral\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("Row,Predicted\n1,negative\n"), 0o644))

	outpath := filepath.Join(dir, "out.csv")
	require.NoError(t, ConcatenatePredictions([]string{first, second}, outpath))

	content, err := os.ReadFile(outpath)
	require.NoError(t, err)
	assert.Equal(t, "Row,Predicted\n1,positive\n2,neutral\n1,negative\n", string(content))

	assert.Error(t, ConcatenatePredictions(nil, outpath))
}

func TestClassifySentiment(t *testing.T) {
	cases := []struct {
		name        string
		rowsPerFile int
		classifiers []string
	}{
		{"single subfile", numDocuments, []string{"senti4sd"}},
		{"even split", numDocuments / 10, []string{"senti4sd"}},
		{"uneven split", numDocuments / 7, []string{"senti4sd"}},
		{"even split multiple classifiers", numDocuments / 10, []string{"senti4sd-1", "senti4sd-2", "senti4sd-3"}},
		{"uneven split multiple classifiers", numDocuments / 7, []string{"senti4sd-1", "senti4sd-2"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			root := makePool(t, fakeClassifierScript, c.classifiers...)
			inpath := writeDocuments(t, numDocuments)
			outpath := filepath.Join(t.TempDir(), "pred.csv")

			require.NoError(t, ClassifySentiment(context.Background(), c.rowsPerFile, root, inpath, outpath))
			assertLabelsInOrder(t, readLabels(t, outpath))
		})
	}
}

func TestClassifySentimentErrorInClassifier(t *testing.T) {
	root := makePool(t, failingClassifierScript, "senti4sd")
	inpath := writeDocuments(t, numDocuments)
	outpath := filepath.Join(t.TempDir(), "out.csv")

	err := ClassifySentiment(context.Background(), numDocuments, root, inpath, outpath)

	classificationErr := &ClassificationError{}
	require.ErrorAs(t, err, &classificationErr)
	assert.Equal(t, 3, classificationErr.ExitCode)
	assert.NoFileExists(t, outpath)
}

func TestClassifySentimentRejectsZeroRowsPerFile(t *testing.T) {
	root := makePool(t, fakeClassifierScript, "senti4sd")
	err := ClassifySentiment(context.Background(), 0, root, writeDocuments(t, 1), filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}
