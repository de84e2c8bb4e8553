package fill

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/so-sentiment/analyzer/cmd/app"
	"github.com/so-sentiment/analyzer/database"
	"github.com/so-sentiment/analyzer/database/data_model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPostsXML    = "../../migrate/testdata/posts.xml"
	testCommentsXML = "../../migrate/testdata/comments.xml"
)

// run executes fill against a fresh TEST database, returns path to it.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")
	configPath := filepath.Join(dir, "analyzer.json")
	config := fmt.Sprintf(`{"database_uri": {"TEST": %q}}`, dbPath)
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	root := app.NewRoot(Cmd())
	root.Writer = &bytes.Buffer{}
	root.ErrWriter = &bytes.Buffer{}

	argv := append([]string{"analyzer", "--driver", "TEST", "--config", configPath, "fill", "--no-progress"}, args...)
	return dbPath, root.Run(context.Background(), argv)
}

func count(t *testing.T, dbPath string, model any) int64 {
	t.Helper()

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer database.Close(db)

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestFill(t *testing.T) {
	dbPath, err := run(t, "-q", testPostsXML, "-a", testPostsXML, "-c", testCommentsXML)
	require.NoError(t, err)

	assert.EqualValues(t, 17, count(t, dbPath, &data_model.Post{}))
	assert.EqualValues(t, 8, count(t, dbPath, &data_model.Comment{}))
}

func TestFillSinceDate(t *testing.T) {
	dbPath, err := run(t, "-d", "2008-01-01", "-q", testPostsXML)
	require.NoError(t, err)

	assert.EqualValues(t, 9, count(t, dbPath, &data_model.Post{}))
}

func TestFillRequiresSource(t *testing.T) {
	_, err := run(t)
	assert.ErrorContains(t, err, "no XML file specified")
}

func TestFillInvalidDate(t *testing.T) {
	_, err := run(t, "-d", "01/01/2008", "-q", testPostsXML)
	assert.ErrorContains(t, err, "invalid creation date")
}

func TestFillMissingFile(t *testing.T) {
	_, err := run(t, "-q", "missing.xml")
	assert.ErrorContains(t, err, "missing.xml")
}
