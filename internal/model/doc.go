// Package model defines the data structures shared across HotelLens.
//
// The types here describe what flows through the search pipeline:
//   - Listing: a property summary produced by scraping a search page
//   - Hotel: the consumer-facing search result with age policy fields
//   - SearchParams / SearchResponse: the query and its classified answer
//
// Model types carry no behavior beyond small invariant helpers so that
// every other package can depend on them without import cycles.
package model
