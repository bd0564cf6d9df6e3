package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppcontext-mcp/internal/storage"
)

func setupStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const calcSource = `
class Calculator {
public:
    int add(int a, int b) { return a + b; }
private:
    int value;
};
`

const mainSource = `
int main() {
    return 0;
}
`

func TestIndexProject(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "calc.cpp", calcSource)
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	stats, err := idx.IndexProject(context.Background(), dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.Equal(t, 0, stats.FilesFailed)
	// calc.cpp: class + member function; main.cpp: main
	assert.Equal(t, 3, stats.DeclarationsRecorded)
	assert.Equal(t, 1, stats.SkippedSpansRecorded)

	project, err := store.GetProject(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, project.TotalFiles)
	assert.Equal(t, 3, project.TotalDeclarations)
	assert.False(t, project.LastIndexedAt.IsZero())
}

func TestIndexProject_Incremental(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	ctx := context.Background()

	first, err := idx.IndexProject(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.FilesIndexed)

	// Unchanged file is skipped on re-index
	second, err := idx.IndexProject(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesIndexed)
	assert.Equal(t, 1, second.FilesSkipped)

	// Changed file is re-analyzed and old rows replaced
	writeFile(t, dir, "main.cpp", calcSource)
	third, err := idx.IndexProject(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.FilesIndexed)
	assert.Equal(t, 2, third.DeclarationsRecorded)

	project, err := store.GetProject(ctx, dir)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, "main.cpp")
	require.NoError(t, err)
	decls, err := store.ListDeclarationsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, decls, 2)
}

func TestIndexProject_ForceReindex(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	ctx := context.Background()

	_, err := idx.IndexProject(ctx, dir, nil)
	require.NoError(t, err)

	stats, err := idx.IndexProject(ctx, dir, &Config{IncludeHeaders: true, ForceReindex: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)

	// Rows replaced, not duplicated
	project, err := store.GetProject(ctx, dir)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, "main.cpp")
	require.NoError(t, err)
	decls, err := store.ListDeclarationsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, decls, 1)
}

func TestIndexProject_HeaderDiscovery(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "calc.hpp", calcSource)
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	ctx := context.Background()

	withHeaders, err := idx.IndexProject(ctx, dir, &Config{IncludeHeaders: true})
	require.NoError(t, err)
	assert.Equal(t, 2, withHeaders.FilesIndexed)
}

func TestIndexProject_HeadersExcluded(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "calc.hpp", calcSource)
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	stats, err := idx.IndexProject(context.Background(), dir, &Config{IncludeHeaders: false})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestIndexProject_SkipsBuildAndHiddenDirs(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "main.cpp", mainSource)
	writeFile(t, dir, "build/gen.cpp", mainSource)
	writeFile(t, dir, ".cache/tmp.cpp", mainSource)

	idx := New(store)
	stats, err := idx.IndexProject(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestIndexProject_LexErrorRecordedOnFile(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()
	writeFile(t, dir, "broken.cpp", `int x = "never closed`)
	writeFile(t, dir, "main.cpp", mainSource)

	idx := New(store)
	ctx := context.Background()
	stats, err := idx.IndexProject(ctx, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "broken.cpp")

	project, err := store.GetProject(ctx, dir)
	require.NoError(t, err)
	file, err := store.GetFile(ctx, project.ID, "broken.cpp")
	require.NoError(t, err)
	require.NotNil(t, file.ParseError)
	assert.Contains(t, *file.ParseError, "unterminated string literal")
}

func TestIndexProject_EmptyDir(t *testing.T) {
	store := setupStorage(t)
	dir := t.TempDir()

	idx := New(store)
	stats, err := idx.IndexProject(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
}

func TestIndexLock(t *testing.T) {
	var lock IndexLock
	assert.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())
	lock.Release()
	assert.True(t, lock.TryAcquire())
}
