package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over any ENV value.
func GetEnvironment() Environment {
	return ParseEnvironment(os.Getenv("ENV"), os.Getenv("CI") == "true")
}

// ParseEnvironment maps an ENV value to an Environment, defaulting to
// development for unknown names
func ParseEnvironment(name string, ci bool) Environment {
	if ci {
		return CI
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// JSONLogs reports whether logs should be emitted as JSON for collectors
func (e Environment) JSONLogs() bool {
	return e == Production || e == CI
}
