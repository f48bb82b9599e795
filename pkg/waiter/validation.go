package waiter

import (
	"github.com/Lumeria1/aeroknite-genai-rag/pkg/errors"
)

// ValidateConfig validates wait session configuration
func ValidateConfig(config Config) error {
	if len(config.Services) == 0 {
		return errors.NewValidationError("at least one service is required", nil)
	}

	seen := make(map[string]bool, len(config.Services))
	for _, service := range config.Services {
		if service == "" {
			return errors.NewValidationError("service name cannot be empty", nil)
		}
		if seen[service] {
			return errors.NewValidationError("duplicate service: "+service, nil)
		}
		seen[service] = true
	}

	if config.Timeout <= 0 {
		return errors.NewValidationError("timeout must be positive", nil)
	}

	if config.PollInterval <= 0 {
		return errors.NewValidationError("poll interval must be positive", nil)
	}

	if config.PollInterval >= config.Timeout {
		return errors.NewValidationError("poll interval must be less than the timeout", nil)
	}

	if config.LogTail < 0 {
		return errors.NewValidationError("log tail cannot be negative", nil)
	}

	for service := range config.Probes {
		if !seen[service] {
			return errors.NewValidationError("probe configured for a service that is not waited on: "+service, nil)
		}
	}

	return nil
}
