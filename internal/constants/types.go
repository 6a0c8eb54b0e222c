package constants

// Environment represents the execution environment.
type Environment string

// Environment types for logger configuration.
const (
	Production Environment = "production"
	CLI        Environment = "cli"
)
