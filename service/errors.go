package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyText     = errors.New("text input is empty")
	ErrModelNotReady = errors.New("model not loaded")
	ErrInvalidRole   = errors.New("invalid chat role")
)

// ConfigError reports required environment variables that were absent when
// the chat pipeline was constructed. The handler surfaces the names so an
// operator can fix the deployment without reading logs.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing environment variables: " + strings.Join(e.Missing, " ")
}

// UpstreamError wraps a failure from a downstream collaborator (vector
// store, embedding service, reranker, or generation model) with the
// pipeline stage it occurred in.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(stage string, err error) error {
	return &UpstreamError{Stage: stage, Err: err}
}
