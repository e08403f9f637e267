package strategy

import "fmt"

// ConfigError reports an invalid or self-contradictory engine configuration.
// It is returned for malformed configuration input and used as a panic value
// when frozen build-time state is mutated.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "config error: " + e.Message }

// Errorf builds a *ConfigError from a format string.
func Errorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
