// Package extract pulls check-in age policies, photos and property facts
// out of hotel pages.
//
// Everything here is a pure function of the HTML it is given: no network
// access, no caching. The policy heuristics are layered (embedded JSON,
// then DOM text, then full body text) and the caller decides the order and
// when to re-render a page; see internal/pipeline for the cascade that
// strings them together.
//
// A missing age is a normal outcome, never an error.
package extract
