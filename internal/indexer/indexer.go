package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/cppcontext-mcp/internal/recognizer"
	"github.com/dshills/cppcontext-mcp/internal/storage"
	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// sourceExtensions are the C++ file extensions the indexer recognizes
var sourceExtensions = map[string]bool{
	".cpp": true,
	".cc":  true,
	".cxx": true,
}

// headerExtensions are the C++ header extensions, indexed when
// Config.IncludeHeaders is set
var headerExtensions = map[string]bool{
	".h":   true,
	".hpp": true,
	".hh":  true,
}

// Indexer coordinates the analysis pipeline: recognize -> store
type Indexer struct {
	analyzer *recognizer.Analyzer
	storage  storage.Storage

	// Worker pool configuration
	workers int
}

// Config contains configuration for the indexer
type Config struct {
	Workers        int  // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize      int  // Number of files to commit per transaction (default: 20)
	IncludeHeaders bool // Whether to index .h/.hpp files (default: true)
	ForceReindex   bool // Re-analyze files even when their content hash is unchanged
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	FilesIndexed         int
	FilesSkipped         int
	FilesFailed          int
	DeclarationsRecorded int
	SkippedSpansRecorded int
	Duration             time.Duration
	ErrorMessages        []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	return &Indexer{
		analyzer: recognizer.New(),
		storage:  store,
		workers:  runtime.NumCPU(),
	}
}

// IndexProject indexes an entire C++ source tree
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{
			Workers:        runtime.NumCPU(),
			BatchSize:      20,
			IncludeHeaders: true,
		}
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	idx.workers = config.Workers

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	// Get or create project
	project, err := idx.getOrCreateProject(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	// Discover C++ files
	files, err := idx.discoverFiles(rootPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	// Index files concurrently
	err = idx.indexFiles(ctx, project, files, config, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	// Update project statistics
	if err := idx.updateProjectStats(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	// Try to get existing project
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}

	if err != storage.ErrNotFound {
		return nil, err
	}

	// Create new project
	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}

	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// discoverFiles finds all C++ files in the project
func (idx *Indexer) discoverFiles(rootPath string, config *Config) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			// Skip build output directories
			if info.Name() == "build" || info.Name() == "cmake-build-debug" {
				return filepath.SkipDir
			}
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if sourceExtensions[ext] {
			files = append(files, path)
			return nil
		}
		if config.IncludeHeaders && headerExtensions[ext] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// indexFiles indexes a batch of files concurrently
func (idx *Indexer) indexFiles(ctx context.Context, project *storage.Project, files []string, config *Config, stats *Statistics) error {
	// Create worker pool with semaphore
	semaphore := make(chan struct{}, idx.workers)

	// Track progress with atomic counters
	var (
		indexed int32
		skipped int32
		failed  int32
		decls   int32
		spans   int32
	)

	// Process files in batches for transaction efficiency
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	// Use errgroup for concurrent processing with error propagation
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex // Protect stats.ErrorMessages

	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		g.Go(func() error {
			return idx.indexBatch(gctx, project, batch, config.ForceReindex, semaphore, &indexed, &skipped, &failed, &decls, &spans, &mu, stats)
		})
	}

	// Wait for all goroutines to complete
	if err := g.Wait(); err != nil {
		return err
	}

	// Update statistics
	stats.FilesIndexed = int(indexed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed = int(failed)
	stats.DeclarationsRecorded = int(decls)
	stats.SkippedSpansRecorded = int(spans)

	return nil
}

// indexBatch indexes a batch of files within a transaction
func (idx *Indexer) indexBatch(ctx context.Context, project *storage.Project, files []string,
	force bool, semaphore chan struct{}, indexed, skipped, failed, decls, spans *int32,
	mu *sync.Mutex, stats *Statistics) error {

	// Start a transaction for this batch
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Process each file in the batch
	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case semaphore <- struct{}{}:
			// Acquire semaphore
		}

		err := idx.indexFile(ctx, tx, project, filePath, force, indexed, skipped, decls, spans)
		<-semaphore // Release semaphore

		if err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			mu.Unlock()
			// Continue with other files
			continue
		}
	}

	// Commit the batch
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// indexFile analyzes and stores a single file
func (idx *Indexer) indexFile(ctx context.Context, store storage.Storage, project *storage.Project,
	filePath string, force bool, indexed, skipped, decls, spans *int32) error {

	// Compute relative path
	relPath, err := filepath.Rel(project.RootPath, filePath)
	if err != nil {
		return err
	}

	// Compute file hash
	hash, modTime, sizeBytes, err := computeFileHash(filePath)
	if err != nil {
		return err
	}

	// Check if file has changed and handle incremental update
	shouldSkip, err := idx.checkFileChanged(ctx, store, project.ID, relPath, hash, force, skipped)
	if err != nil {
		return err
	}
	if shouldSkip {
		return nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// Create or update file record
	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    relPath,
		ContentHash: hash,
		ModTime:     modTime,
		SizeBytes:   sizeBytes,
	}

	// Analyze the file. Lex and structure errors are recorded on the
	// file record rather than aborting the batch.
	inv, analysisErr := idx.analyzer.AnalyzeSource(ctx, relPath, string(content))
	if analysisErr != nil {
		if isAnalysisError(analysisErr) {
			errMsg := analysisErr.Error()
			file.ParseError = &errMsg
			if err := store.UpsertFile(ctx, file); err != nil {
				return err
			}
			return fmt.Errorf("analysis failed: %w", analysisErr)
		}
		return analysisErr
	}

	if err := store.UpsertFile(ctx, file); err != nil {
		return err
	}

	// Store declarations
	declCount := 0
	for _, d := range inv.Declarations() {
		row, params := storage.FromTypesDeclaration(d, file.ID)
		if err := store.InsertDeclaration(ctx, row, params); err != nil {
			return fmt.Errorf("failed to store declaration: %w", err)
		}
		declCount++
	}

	// Store skipped spans
	spanCount := 0
	for _, sp := range inv.Skipped() {
		row := &storage.SkippedSpan{
			FileID:    file.ID,
			StartLine: sp.Start.Line,
			StartCol:  sp.Start.Column,
			EndLine:   sp.End.Line,
			EndCol:    sp.End.Column,
			Snippet:   sp.Snippet,
		}
		if err := store.InsertSkippedSpan(ctx, row); err != nil {
			return fmt.Errorf("failed to store skipped span: %w", err)
		}
		spanCount++
	}

	// Update counters
	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(decls, int32(declCount))
	atomic.AddInt32(spans, int32(spanCount))

	return nil
}

// isAnalysisError reports whether err is a per-file lex or structure
// error rather than an infrastructure failure
func isAnalysisError(err error) bool {
	var lexErr *types.LexError
	var structErr *types.StructureError
	return errors.As(err, &lexErr) || errors.As(err, &structErr)
}

// checkFileChanged checks if a file has changed and needs re-analysis
func (idx *Indexer) checkFileChanged(ctx context.Context, store storage.Storage, projectID int64,
	relPath string, hash [32]byte, force bool, skipped *int32) (bool, error) {

	existingFile, err := store.GetFile(ctx, projectID, relPath)
	if err == storage.ErrNotFound {
		// New file, needs indexing
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// File exists - check if it has changed
	if !force && existingFile.ContentHash == hash {
		// File unchanged, skip
		atomic.AddInt32(skipped, 1)
		return true, nil
	}

	// File changed - delete old rows before re-analysis
	if err := store.DeleteDeclarationsByFile(ctx, existingFile.ID); err != nil {
		return false, fmt.Errorf("failed to delete old declarations: %w", err)
	}
	if err := store.DeleteSkippedSpansByFile(ctx, existingFile.ID); err != nil {
		return false, fmt.Errorf("failed to delete old skipped spans: %w", err)
	}

	return false, nil
}

// updateProjectStats updates the project's file and declaration counts
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project) error {
	// Get file count
	files, err := idx.storage.ListFiles(ctx, project.ID)
	if err != nil {
		return err
	}

	// Count declarations across all files
	totalDecls := 0
	for _, file := range files {
		decls, err := idx.storage.ListDeclarationsByFile(ctx, file.ID)
		if err != nil {
			return err
		}
		totalDecls += len(decls)
	}

	project.TotalFiles = len(files)
	project.TotalDeclarations = totalDecls
	project.LastIndexedAt = time.Now()

	return idx.storage.UpdateProject(ctx, project)
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, time.Time, int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}
	defer func() { _ = file.Close() }()

	// Get file info
	info, err := file.Stat()
	if err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	// Compute hash
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, time.Time{}, 0, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))

	return result, info.ModTime(), info.Size(), nil
}
