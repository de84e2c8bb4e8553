package database

import (
	"fmt"
	"os"
	"strings"
)

// Driver names a database target.
type Driver string

const (
	DriverDev         Driver = "DEV"
	DriverTest        Driver = "TEST"
	DriverExperiment  Driver = "EXPERIMENT"
	DriverIntegration Driver = "INTEGRATION"
)

const (
	EnvDatabaseURI            = "DATABASE_URI"
	EnvIntegrationDatabaseURI = "INTEGRATION_TEST_DB_URI"
)

var AllDrivers = []Driver{
	DriverDev,
	DriverTest,
	DriverExperiment,
	DriverIntegration,
}

// DriverNames returns names of all drivers, in declaration order.
func DriverNames() []string {
	names := make([]string, 0, len(AllDrivers))
	for _, driver := range AllDrivers {
		names = append(names, string(driver))
	}
	return names
}

// ParseDriver looks up driver by name, case-insensitive.
func ParseDriver(name string) (Driver, error) {
	for _, driver := range AllDrivers {
		if strings.EqualFold(string(driver), name) {
			return driver, nil
		}
	}

	return "", fmt.Errorf("invalid driver %q, must be one of %s", name, strings.Join(DriverNames(), ", "))
}

// DefaultURI returns connection URI used by driver when no override is
// configured. SQLite drivers live in working directory, the others are read
// from environment.
func (d Driver) DefaultURI() string {
	switch d {
	case DriverDev:
		return "sqlite://dev.sqlite"
	case DriverTest:
		return "sqlite://test.sqlite"
	case DriverExperiment:
		return os.Getenv(EnvDatabaseURI)
	case DriverIntegration:
		return os.Getenv(EnvIntegrationDatabaseURI)
	default:
		return ""
	}
}
