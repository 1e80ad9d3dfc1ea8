package models

import "fmt"

// ConfigurationError means the process cannot run the pipeline at all
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// SourceListError means the list of sources could not be loaded
type SourceListError struct {
	Location string
	Err      error
}

func (e *SourceListError) Error() string {
	return fmt.Sprintf("could not load source list from %s: %v", e.Location, e.Err)
}

func (e *SourceListError) Unwrap() error {
	return e.Err
}
