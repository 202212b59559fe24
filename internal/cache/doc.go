// Package cache provides the two-tier cache in front of every scrape.
//
// The durable tier is optional and pluggable (Redis, SQLite or
// PostgreSQL). The in-memory tier is always present: one bounded LRU per
// namespace with per-entry expiry. Reads try the durable tier first and
// treat its answer as authoritative; only a durable-tier error falls back
// to memory. Writes go to both tiers. Cache errors are logged and never
// surface to callers, so a broken Redis slows a search down but does not
// fail it.
package cache
