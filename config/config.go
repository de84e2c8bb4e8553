// Package config reads optional settings of the analyzer from a JSON file and
// the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/so-sentiment/analyzer/common"
	"github.com/so-sentiment/analyzer/database"
)

const DefaultConfigFile = "analyzer.json"
const DotEnvFile = ".env"
const DefaultRowsPerFile = 1000

type Config struct {
	// Overrides connection URI of drivers, keyed by driver name.
	DatabaseURI      map[string]string `json:"database_uri"`
	Senti4SDPoolRoot string            `json:"senti4sd_pool_root"`
	RowsPerFile      int               `json:"rows_per_file"`
	LogFile          string            `json:"log_file"`

	HttpProxy  string `json:"http_proxy"`
	RetryCount int    `json:"retry"`
}

// ReadConfigFile reads configuration from JSON file. Relative paths in it are
// resolved against directory of the file.
func ReadConfigFile(filePath string) (Config, error) {
	c := Config{}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return c, fmt.Errorf("failed to read config file %s: %s", filePath, err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config JSON %s: %s", filePath, err)
	}

	configDir := filepath.Dir(filePath)

	c.Senti4SDPoolRoot = common.ResolveRelativePath(c.Senti4SDPoolRoot, configDir)
	c.LogFile = common.ResolveRelativePath(c.LogFile, configDir)

	uris := make(map[string]string, len(c.DatabaseURI))
	for name, uri := range c.DatabaseURI {
		driver, err := database.ParseDriver(name)
		if err != nil {
			return c, fmt.Errorf("invalid database_uri entry in %s: %s", filePath, err)
		}
		uris[string(driver)] = resolveSQLitePath(uri, configDir)
	}
	c.DatabaseURI = uris

	return c, nil
}

// Load reads config file at filePath. A missing file is only an error when
// explicit is true, otherwise an empty config is returned.
func Load(filePath string, explicit bool) (Config, error) {
	if filePath == "" {
		filePath = DefaultConfigFile
	}

	_, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Config{}, nil
	}

	return ReadConfigFile(filePath)
}

// LoadDotEnv loads environment variables from dotenv files that exist,
// variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DotEnvFile}
	}

	existing := []string{}
	for _, path := range paths {
		if common.IsFile(path) {
			existing = append(existing, path)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load dotenv file: %s", err)
	}

	return nil
}

// DatabaseURIFor returns connection URI of driver, config file entry first,
// driver default second.
func (c Config) DatabaseURIFor(driver database.Driver) (string, error) {
	uri := c.DatabaseURI[string(driver)]
	if uri == "" {
		uri = driver.DefaultURI()
	}

	if uri == "" {
		return "", fmt.Errorf("%w for driver %s", database.ErrEmptyURI, driver)
	}

	return uri, nil
}

// GetRowsPerFile returns configured rows per file or the default.
func (c Config) GetRowsPerFile() int {
	return common.GetIntOr(c.RowsPerFile, DefaultRowsPerFile)
}

// resolveSQLitePath resolves relative SQLite file paths against dir, other
// URIs are returned unchanged.
func resolveSQLitePath(uri, dir string) string {
	switch {
	case strings.HasPrefix(uri, "sqlite://"):
		path := strings.TrimPrefix(uri, "sqlite://")
		return "sqlite://" + common.ResolveRelativePath(path, dir)
	case strings.Contains(uri, "://"):
		return uri
	default:
		return common.ResolveRelativePath(uri, dir)
	}
}
