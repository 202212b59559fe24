// Package ratelimit spaces outbound requests per host.
//
// Every host gets its own token bucket with a burst of one, so two
// requests to the same host are at least MinInterval apart while requests
// to different hosts never wait on each other. State lives in memory and
// is reset when the process restarts.
package ratelimit
