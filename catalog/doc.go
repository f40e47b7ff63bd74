// Package catalog defines the adapter interface for the external film
// catalog: paginated item fetch by release-year partition, plus a
// best-effort per-item enrichment lookup for distribution channels.
//
// The tmdb sub-package implements the interface against a TMDB-style
// HTTP API. Callers route every Source call through a ratelimit.Executor;
// the adapter itself performs single attempts.
package catalog
