// Package constants defines global constants used throughout stackup.
// It includes version information, project naming, and environment types.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of stackup.
func GetVersion() *string {
	return &version
}

// ProjectName is the name of the CLI tool.
const ProjectName = "stackup"

// Environment represents the execution environment (e.g., CLI, CI).
type Environment string

// Environment types for logger configuration
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

// ConfigCtxKeyType is the type for the config context key
type ConfigCtxKeyType string

// ConfigCtxKey is the key used to store config in context
const ConfigCtxKey ConfigCtxKeyType = "config"
