package database

import (
	"bytes"
	"context"
	"encoding/csv"
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

func setup(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")
	configPath := filepath.Join(dir, "analyzer.json")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`{"database_uri": {"TEST": %q}}`, dbPath)), 0o644))

	return dbPath, configPath
}

func run(t *testing.T, configPath string, args ...string) error {
	t.Helper()

	root := app.NewRoot(Cmd())
	root.Writer = &bytes.Buffer{}
	root.ErrWriter = &bytes.Buffer{}

	argv := append([]string{"analyzer", "-d", "TEST", "--config", configPath, "database"}, args...)
	return root.Run(context.Background(), argv)
}

func TestExport(t *testing.T) {
	dbPath, configPath := setup(t)

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Create(&data_model.Post{ID: 4, Text: "opacity", PostTypeID: data_model.PostTypeQuestion}).Error)
	require.NoError(t, db.Create(&data_model.Comment{ID: 1, Text: "thanks", PostID: 4}).Error)
	require.NoError(t, database.Close(db))

	csvPath := filepath.Join(t.TempDir(), "comment.csv")
	require.NoError(t, run(t, configPath, "export", "comment", csvPath))

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, records[0], "text")
	assert.Contains(t, records[1], "thanks")
}

func TestExportUnknownTable(t *testing.T) {
	_, configPath := setup(t)
	assert.Error(t, run(t, configPath, "export", "user", filepath.Join(t.TempDir(), "user.csv")))
}

func TestMigrate(t *testing.T) {
	dbPath, configPath := setup(t)
	require.NoError(t, run(t, configPath, "migrate"))
	assert.FileExists(t, dbPath)
}
