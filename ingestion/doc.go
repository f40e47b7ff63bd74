// Package ingestion implements the checkpointed crawl-enrich-embed-persist
// pipeline. It walks the catalog partition by partition (release year) and
// page by page, turns each qualifying item into overlapping text chunks,
// embeds them, and batch-writes the resulting documents to the vector
// store. Progress is committed after every page so an interrupted run
// resumes where it left off.
package ingestion
