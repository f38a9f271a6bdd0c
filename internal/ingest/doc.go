// Package ingest pulls district-level FHTC coverage snapshots from the
// JJM IMIS API. Fetches run concurrently under a shared rate limiter,
// nested payloads are flattened into tabular rows, and the combined
// snapshot is written as the pipeline's raw CSV input.
package ingest
