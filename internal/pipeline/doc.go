// Package pipeline runs ordered extraction stages and bounded batches of
// independent tasks.
//
// A Pipeline is a list of named steps sharing one state value. Steps run
// in order until one reports that it is done, so a heuristic cascade
// ("try embedded JSON, then the DOM, then re-render") reads as a list of
// small steps that are each testable on their own instead of nested
// conditionals.
//
// BatchProcessor runs independent tasks with a fixed concurrency limit
// using errgroup. One task failing never cancels the others; each task's
// error is reported at its own index.
//
// steps.go holds the check-in policy cascade built on both.
package pipeline
