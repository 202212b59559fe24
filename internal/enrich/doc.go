// Package enrich completes scraped listings with data from their detail
// pages: the check-in policy (through the policy cascade in package
// pipeline), photo URLs, and structured facts such as coordinates and
// rating that the search page did not carry.
//
// Each detail page is downloaded at most once per enrichment, even when
// the same URL is being enriched concurrently, and results are cached in
// the policy and detail namespaces.
package enrich
