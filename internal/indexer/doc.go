// Package indexer coordinates the end-to-end analysis pipeline for
// C++ codebases.
//
// The indexer orchestrates file discovery, declaration recognition, and
// storage operations, managing concurrency and error handling so whole
// source trees can be indexed in one call.
//
// # Basic Usage
//
//	idx := indexer.New(store)
//
//	stats, err := idx.IndexProject(ctx, "/path/to/project", &indexer.Config{
//	    Workers:        runtime.NumCPU(),
//	    IncludeHeaders: true,
//	})
//
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Indexing Pipeline
//
// The indexer executes a multi-stage pipeline:
//
//  1. Discovery: Find all .cpp/.cc/.cxx (and optionally .h/.hpp) files
//  2. Incremental Decision: Compare file hashes, skip unchanged files
//  3. Recognize: Run the declaration recognizer over each file (parallel)
//  4. Store: Persist declarations and skipped spans in transactions
//
// # Incremental Indexing
//
// By default, the indexer only processes changed files. File change
// detection uses SHA-256 content hashing:
//
//	currentHash := sha256.Sum256(fileContent)
//	if currentHash == storedHash {
//	    skip(file) // unchanged
//	}
//
// Changed files have their old declarations and skipped spans deleted
// before re-analysis, so the index never holds stale rows.
//
// # Concurrent Processing
//
// Files are processed in batches, one transaction per batch, with a
// semaphore bounding concurrent analysis at Config.Workers. Per-file
// lex and structure errors are recorded on the file row and counted as
// failures without aborting the run.
package indexer
