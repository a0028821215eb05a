// Package ingest turns a folder of receipt PDFs into orders, line items and
// part receipts. One PDF is one unit of work: parse failures and unmatched
// vendors skip the file without touching the rest of the batch.
package ingest

import "context"

// FileError is one failed file in a batch.
type FileError struct {
	Path   string
	Reason string
}

// Result summarizes a batch run.
type Result struct {
	OrdersAdded       int
	LineItemsAdded    int
	DuplicatesSkipped int
	UnmatchedSkipped  int
	Errors            []FileError
}

// Ingestor processes receipt PDFs into the ledger.
type Ingestor interface {
	IngestDir(ctx context.Context, dir string) (*Result, error)
	IngestFiles(ctx context.Context, paths []string) (*Result, error)
}
