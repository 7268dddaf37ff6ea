package llmrouter

import "errors"

// ErrBackendUnavailable is returned when no LLM backend passes its version
// check, or the caller's pinned backend fails it.
var ErrBackendUnavailable = errors.New("llmrouter: no LLM backend available")

// ErrAllBackendsFailed is returned by AnalyzeWithRetry when every attempted
// backend's analyze call failed.
var ErrAllBackendsFailed = errors.New("llmrouter: all backends failed")
