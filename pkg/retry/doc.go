// Package retry provides simple linear-backoff retry logic for the data
// core. The delay before attempt n+1 is BaseDelay × n, capped at MaxDelay,
// with optional jitter. Errors wrapped with NonRetryable stop the loop
// immediately; everything else is retried up to the attempt ceiling and the
// last attempt's error is the one propagated.
package retry
