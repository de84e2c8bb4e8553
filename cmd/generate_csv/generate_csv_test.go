package generate_csv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/so-sentiment/analyzer/migrate"
	"github.com/so-sentiment/analyzer/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup fills a TEST database with fixture dump, returns path to config file
// pointing to it.
func setup(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	sources := migrate.Sources{
		Questions: "../../migrate/testdata/posts.xml",
		Answers:   "../../migrate/testdata/posts.xml",
		Comments:  "../../migrate/testdata/comments.xml",
	}
	require.NoError(t, migrate.FillDatabase(context.Background(), db, sources, migrate.Options{}))
	require.NoError(t, database.Close(db))

	configPath := filepath.Join(dir, "analyzer.json")
	config := fmt.Sprintf(`{"database_uri": {"TEST": %q}}`, dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	return configPath
}

func run(t *testing.T, configPath string, args ...string) error {
	t.Helper()

	root := app.NewRoot(Cmd())
	root.Writer = &bytes.Buffer{}
	root.ErrWriter = &bytes.Buffer{}

	argv := append([]string{"analyzer", "-d", "TEST", "--config", configPath, "generate-csv"}, args...)
	return root.Run(context.Background(), argv)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func TestGenerateCommentsCSV(t *testing.T) {
	configPath := setup(t)
	outpath := filepath.Join(t.TempDir(), "comments.csv")

	require.NoError(t, run(t, configPath, "-o", outpath, "-c", "-t", "javascript"))

	assert.Len(t, readLines(t, outpath), 2)
	assert.Equal(t, []string{"3", "5"}, readLines(t, outpath+query.IndexFileExt))
}

func TestGenerateQuestionsCSV(t *testing.T) {
	configPath := setup(t)
	outpath := filepath.Join(t.TempDir(), "questions.csv")

	require.NoError(t, run(t, configPath, "-o", outpath, "-q", "-n", "3", "--seed", "7"))
	first := readLines(t, outpath+query.IndexFileExt)
	assert.Len(t, first, 3)

	require.NoError(t, run(t, configPath, "-o", outpath, "-q", "-n", "3", "--seed", "7"))
	assert.Equal(t, first, readLines(t, outpath+query.IndexFileExt))
}

func TestGenerateCSVRequiresOneDocumentType(t *testing.T) {
	configPath := setup(t)
	outpath := filepath.Join(t.TempDir(), "out.csv")

	assert.ErrorContains(t, run(t, configPath, "-o", outpath), "exactly one")
	assert.ErrorContains(t, run(t, configPath, "-o", outpath, "-q", "-a"), "exactly one")
	assert.NoFileExists(t, outpath)
}

func TestGenerateCSVRequiresOutpath(t *testing.T) {
	configPath := setup(t)
	assert.Error(t, run(t, configPath, "-c"))
}

func TestGenerateCSVUnknownTag(t *testing.T) {
	configPath := setup(t)
	err := run(t, configPath, "-o", filepath.Join(t.TempDir(), "out.csv"), "-a", "-t", "cobol")
	assert.ErrorIs(t, err, query.ErrTagNotConsidered)
}

func TestGenerateCSVEmptyQuery(t *testing.T) {
	configPath := setup(t)
	err := run(t, configPath, "-o", filepath.Join(t.TempDir(), "out.csv"), "-a", "-t", "php")
	assert.ErrorIs(t, err, query.ErrEmptyQuery)
}
