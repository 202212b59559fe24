// Package provider implements the hotel search backends.
//
// A Provider answers a geographic query with hotels sorted by distance.
// Mock serves a static dataset. Scraper drives one travel site, described
// by a Source strategy, through the scrape pipeline:
//
//	cache lookup -> search page -> listing parse -> per-listing
//	enrichment (bounded) -> radius filter -> sort -> limit -> cache store
//
// New sites are added by implementing Source; the Scraper itself has no
// site-specific branches.
package provider
