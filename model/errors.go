package model

import "fmt"

// ConfigError reports invalid provider configuration (missing or malformed
// credential, bad host). It is raised before any network attempt and is not
// retried.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for '%s': %s", e.Provider, e.Reason)
}

// APIError reports a failed backend call: non-2xx status, refused
// connection, malformed response. StatusCode is zero when no HTTP status was
// available.
type APIError struct {
	Provider   string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from '%s' (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from '%s': %s", e.Provider, e.Message)
}

// ModelNotFoundError reports that the backend explicitly rejected the
// requested model.
type ModelNotFoundError struct {
	Model    string
	Provider string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model '%s' not found for provider '%s'", e.Model, e.Provider)
}

// ProviderNotFoundError reports an unknown provider identifier passed to New.
type ProviderNotFoundError struct {
	Provider string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider '%s' is not available", e.Provider)
}
