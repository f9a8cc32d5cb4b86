// Package errors provides standardized error handling for the data core.
// It includes error classification, standard error variables, and helper
// functions for consistent error wrapping across the fetch, cache, store,
// and pipeline layers.
//
// Errors fall into three classes: transient errors may be retried (network
// failures, timeouts, retryable HTTP statuses), invalid errors indicate bad
// input or corrupt data and are not retried, and fatal errors are
// unrecoverable programmer or environment errors that should stop
// processing.
//
// HTTP responses get their own typed error, HTTPStatusError, so the fetch
// layer can distinguish terminal statuses (most 4xx) from retryable ones
// (5xx, 408, 429) instead of burning the retry budget on a permanent 404.
package errors
