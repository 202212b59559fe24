// Package search is the search endpoint behind the CLI and HTTP API. It
// validates a query, asks the active provider, classifies the hotels by
// minimum check-in age and applies the failure policy when the provider
// cannot answer.
package search
