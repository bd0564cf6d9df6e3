package storage

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func testProject(t *testing.T, s *SQLiteStorage) *Project {
	t.Helper()
	project := &Project{
		RootPath:     "/test/project",
		IndexVersion: CurrentSchemaVersion,
	}
	require.NoError(t, s.CreateProject(context.Background(), project))
	return project
}

func testFile(t *testing.T, s *SQLiteStorage, projectID int64, path string) *File {
	t.Helper()
	file := &File{
		ProjectID:   projectID,
		FilePath:    path,
		ContentHash: sha256.Sum256([]byte(path)),
		ModTime:     time.Now(),
		SizeBytes:   128,
	}
	require.NoError(t, s.UpsertFile(context.Background(), file))
	return file
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	assert.Greater(t, project.ID, int64(0))

	// Try to create duplicate - should fail
	duplicate := &Project{RootPath: "/test/project", IndexVersion: CurrentSchemaVersion}
	err := storage.CreateProject(ctx, duplicate)
	assert.Error(t, err) // Unique constraint violation
}

func TestGetProject_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	_, err := storage.GetProject(context.Background(), "/nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)

	project.TotalFiles = 10
	project.TotalDeclarations = 42
	project.LastIndexedAt = time.Now()
	require.NoError(t, storage.UpdateProject(ctx, project))

	updated, err := storage.GetProject(ctx, "/test/project")
	require.NoError(t, err)
	assert.Equal(t, 10, updated.TotalFiles)
	assert.Equal(t, 42, updated.TotalDeclarations)
}

func TestUpsertFile(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/main.cpp")
	assert.Greater(t, file.ID, int64(0))

	// Upsert with new hash keeps the same row
	newHash := sha256.Sum256([]byte("changed"))
	file.ContentHash = newHash
	require.NoError(t, storage.UpsertFile(ctx, file))

	got, err := storage.GetFile(ctx, project.ID, "src/main.cpp")
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
	assert.Equal(t, newHash, got.ContentHash)
	assert.Nil(t, got.ParseError)
}

func TestUpsertFile_ParseError(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)

	msg := "broken.cpp:3:1: lex error: unterminated string literal"
	file := &File{
		ProjectID:   project.ID,
		FilePath:    "src/broken.cpp",
		ContentHash: sha256.Sum256([]byte("x")),
		ModTime:     time.Now(),
		ParseError:  &msg,
	}
	require.NoError(t, storage.UpsertFile(ctx, file))

	got, err := storage.GetFile(ctx, project.ID, "src/broken.cpp")
	require.NoError(t, err)
	require.NotNil(t, got.ParseError)
	assert.Equal(t, msg, *got.ParseError)
}

func TestInsertDeclaration_WithParameters(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	d := types.Declaration{
		Variant:       types.VariantMemberFunction,
		Name:          "add",
		QualifiedPath: []string{"Calculator"},
		Qualifiers:    types.NewQualifierSet(types.QualConst),
		Parameters: []types.Parameter{
			{TypeText: "int", Name: "x"},
			{TypeText: "int&", Name: "out", IsReference: true},
		},
		ReturnTypeText: "int",
		Start:          types.Position{Line: 5, Column: 5},
		End:            types.Position{Line: 7, Column: 5},
	}
	row, params := FromTypesDeclaration(d, file.ID)
	require.NoError(t, storage.InsertDeclaration(ctx, row, params))
	assert.Greater(t, row.ID, int64(0))

	got, err := storage.GetDeclaration(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Calculator::add", got.PathKey)
	assert.Equal(t, "const", got.Qualifiers)

	loaded, err := storage.ListParameters(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "x", loaded[0].Name)
	assert.True(t, loaded[1].IsReference)

	// Round trip back to the engine type
	back := got.ToTypesDeclaration(loaded)
	assert.Equal(t, d.Name, back.Name)
	assert.Equal(t, d.QualifiedPath, back.QualifiedPath)
	assert.True(t, d.Qualifiers.Equal(back.Qualifiers))
	require.Len(t, back.Parameters, 2)
	assert.True(t, back.Parameters[1].IsReference)
}

func TestLookupDeclarations_OverloadSet(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	for i, ret := range []string{"int", "double"} {
		d := types.Declaration{
			Variant:        types.VariantMemberFunction,
			Name:           "add",
			QualifiedPath:  []string{"Calculator"},
			Qualifiers:     types.NewQualifierSet(),
			ReturnTypeText: ret,
			Start:          types.Position{Line: 5 + i, Column: 5},
			End:            types.Position{Line: 5 + i, Column: 40},
		}
		row, params := FromTypesDeclaration(d, file.ID)
		require.NoError(t, storage.InsertDeclaration(ctx, row, params))
	}

	decls, err := storage.LookupDeclarations(ctx, project.ID, "Calculator::add")
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "int", decls[0].ReturnType)
	assert.Equal(t, "double", decls[1].ReturnType)
}

func TestListDeclarationsByVariant(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	for _, tc := range []struct {
		variant types.DeclVariant
		name    string
	}{
		{types.VariantClass, "Calculator"},
		{types.VariantFreeFunction, "main"},
		{types.VariantClass, "Widget"},
	} {
		d := types.Declaration{
			Variant:    tc.variant,
			Name:       tc.name,
			Qualifiers: types.NewQualifierSet(),
			Start:      types.Position{Line: 1, Column: 1},
			End:        types.Position{Line: 2, Column: 1},
		}
		row, params := FromTypesDeclaration(d, file.ID)
		require.NoError(t, storage.InsertDeclaration(ctx, row, params))
	}

	classes, err := storage.ListDeclarationsByVariant(ctx, project.ID, string(types.VariantClass))
	require.NoError(t, err)
	assert.Len(t, classes, 2)

	free, err := storage.ListDeclarationsByVariant(ctx, project.ID, string(types.VariantFreeFunction))
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestSearchDeclarations_FTS(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	for _, name := range []string{"getValue", "setValue", "display"} {
		d := types.Declaration{
			Variant:       types.VariantMemberFunction,
			Name:          name,
			QualifiedPath: []string{"Calculator"},
			Qualifiers:    types.NewQualifierSet(),
			Start:         types.Position{Line: 1, Column: 1},
			End:           types.Position{Line: 2, Column: 1},
		}
		row, params := FromTypesDeclaration(d, file.ID)
		require.NoError(t, storage.InsertDeclaration(ctx, row, params))
	}

	results, err := storage.SearchDeclarations(ctx, project.ID, "getValue", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "getValue", results[0].Name)
}

func TestDeleteDeclarationsByFile(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	d := types.Declaration{
		Variant:    types.VariantFreeFunction,
		Name:       "main",
		Qualifiers: types.NewQualifierSet(),
		Start:      types.Position{Line: 1, Column: 1},
		End:        types.Position{Line: 2, Column: 1},
	}
	row, params := FromTypesDeclaration(d, file.ID)
	require.NoError(t, storage.InsertDeclaration(ctx, row, params))

	require.NoError(t, storage.DeleteDeclarationsByFile(ctx, file.ID))

	decls, err := storage.ListDeclarationsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestSkippedSpans(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	span := &SkippedSpan{
		FileID:    file.ID,
		StartLine: 44,
		StartCol:  5,
		EndLine:   44,
		EndCol:    14,
		Snippet:   "int value;",
	}
	require.NoError(t, storage.InsertSkippedSpan(ctx, span))
	assert.Greater(t, span.ID, int64(0))

	spans, err := storage.ListSkippedSpansByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "int value;", spans[0].Snippet)

	require.NoError(t, storage.DeleteSkippedSpansByFile(ctx, file.ID))
	spans, err = storage.ListSkippedSpansByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)
	file := testFile(t, storage, project.ID, "src/calc.cpp")

	d := types.Declaration{
		Variant:    types.VariantFreeFunction,
		Name:       "main",
		Qualifiers: types.NewQualifierSet(),
		Start:      types.Position{Line: 1, Column: 1},
		End:        types.Position{Line: 2, Column: 1},
	}
	row, params := FromTypesDeclaration(d, file.ID)
	require.NoError(t, storage.InsertDeclaration(ctx, row, params))

	status, err := storage.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 1, status.DeclarationsCount)
	assert.Equal(t, 0, status.SkippedCount)
	assert.True(t, status.Health.DatabaseAccessible)
	assert.True(t, status.Health.FTSIndexesBuilt)
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := testProject(t, storage)

	// Committed writes are visible
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	file := &File{
		ProjectID:   project.ID,
		FilePath:    "src/a.cpp",
		ContentHash: sha256.Sum256([]byte("a")),
		ModTime:     time.Now(),
	}
	require.NoError(t, tx.UpsertFile(ctx, file))
	require.NoError(t, tx.Commit())

	_, err = storage.GetFile(ctx, project.ID, "src/a.cpp")
	require.NoError(t, err)

	// Rolled back writes are not
	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	other := &File{
		ProjectID:   project.ID,
		FilePath:    "src/b.cpp",
		ContentHash: sha256.Sum256([]byte("b")),
		ModTime:     time.Now(),
	}
	require.NoError(t, tx.UpsertFile(ctx, other))
	require.NoError(t, tx.Rollback())

	_, err = storage.GetFile(ctx, project.ID, "src/b.cpp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNestedTransactionRejected(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}
