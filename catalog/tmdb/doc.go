// Package tmdb implements the catalog.Source interface against a
// TMDB-style HTTP API: the discover listing partitioned by primary
// release year, and per-movie watch-provider lookups for enrichment.
package tmdb
