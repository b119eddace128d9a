package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound indicates the configuration file was not found.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidYAML indicates YAML parsing failed.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrNotFound indicates a named component was not found in a registry.
	ErrNotFound = errors.New("configuration entry not found")
)

// NotFoundError wraps a registry lookup miss with component context.
type NotFoundError struct {
	Component string
	ID        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Component, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a new registry-lookup error.
func NewNotFoundError(component, id string) *NotFoundError {
	return &NotFoundError{Component: component, ID: id}
}

// LoadError wraps configuration loading errors with file context.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
