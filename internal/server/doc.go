// Package server exposes the search service over HTTP.
//
// Routes:
//
//	GET /api/search?lat=&lng=&radius=&limit=&provider=
//	GET /api/geocode?q=
//	GET /healthz
//
// Errors are JSON objects of the form {"error": "..."}.
package server
