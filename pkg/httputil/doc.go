// Package httputil provides HTTP client utilities shared by remote
// loaders.
//
// [Retry] wraps requests with automatic retry for transient failures
// (network errors, 5xx responses). Only errors wrapped in
// [RetryableError] are retried; everything else fails fast. Backoff is
// exponential, starting at the given delay and doubling per attempt.
package httputil
