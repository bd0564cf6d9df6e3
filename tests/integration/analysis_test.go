package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/cppcontext-mcp/internal/indexer"
	"github.com/dshills/cppcontext-mcp/internal/storage"
)

// AnalysisTestSuite exercises the full pipeline over the C++ fixtures:
// discover, lex, recognize, store, query.
type AnalysisTestSuite struct {
	suite.Suite
	storage     storage.Storage
	indexer     *indexer.Indexer
	fixturesDir string
	ctx         context.Context
}

// SetupSuite runs once before all tests
func (s *AnalysisTestSuite) SetupSuite() {
	s.ctx = context.Background()

	// Get fixtures directory
	wd, err := os.Getwd()
	s.Require().NoError(err)
	s.fixturesDir = filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	// Verify fixtures exist
	_, err = os.Stat(s.fixturesDir)
	s.Require().NoError(err, "fixtures directory should exist")
}

// SetupTest runs before each test
func (s *AnalysisTestSuite) SetupTest() {
	store, err := storage.NewSQLiteStorage(":memory:")
	s.Require().NoError(err)
	s.storage = store

	s.indexer = indexer.New(s.storage)
}

// TearDownTest runs after each test
func (s *AnalysisTestSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *AnalysisTestSuite) index() *indexer.Statistics {
	stats, err := s.indexer.IndexProject(s.ctx, s.fixturesDir, &indexer.Config{
		Workers:   2,
		BatchSize: 10,
	})
	s.Require().NoError(err, "indexing should succeed")
	s.Require().NotNil(stats)
	return stats
}

func (s *AnalysisTestSuite) project() *storage.Project {
	project, err := s.storage.GetProject(s.ctx, s.fixturesDir)
	s.Require().NoError(err)
	return project
}

// TestFullIndexing tests the complete pipeline over sample.cpp
func (s *AnalysisTestSuite) TestFullIndexing() {
	stats := s.index()

	s.Equal(1, stats.FilesIndexed)
	s.Equal(0, stats.FilesFailed)
	s.Equal(20, stats.DeclarationsRecorded)
	s.Equal(1, stats.SkippedSpansRecorded)
	s.Empty(stats.ErrorMessages)

	project := s.project()
	s.Equal(1, project.TotalFiles)
	s.Equal(20, project.TotalDeclarations)
}

// TestLookupByPathKey verifies qualified lookup across nesting levels
func (s *AnalysisTestSuite) TestLookupByPathKey() {
	s.index()
	project := s.project()

	free, err := s.storage.LookupDeclarations(s.ctx, project.ID, "add")
	s.Require().NoError(err)
	s.Require().Len(free, 1)
	s.Equal("free_function", free[0].Variant)

	member, err := s.storage.LookupDeclarations(s.ctx, project.ID, "Calculator::add")
	s.Require().NoError(err)
	s.Require().Len(member, 1)
	s.Equal("member_function", member[0].Variant)
	s.Equal("Calculator", member[0].QualifiedPath)

	nested, err := s.storage.LookupDeclarations(s.ctx, project.ID, "Math::Advanced::cube")
	s.Require().NoError(err)
	s.Require().Len(nested, 1)
	s.Equal("double", nested[0].ReturnType)
}

// TestVariantsAndQualifiers verifies stored variant counts and the
// qualifier round trip
func (s *AnalysisTestSuite) TestVariantsAndQualifiers() {
	s.index()
	project := s.project()

	classes, err := s.storage.ListDeclarationsByVariant(s.ctx, project.ID, "class")
	s.Require().NoError(err)
	s.Len(classes, 2)

	lambdas, err := s.storage.ListDeclarationsByVariant(s.ctx, project.ID, "lambda")
	s.Require().NoError(err)
	s.Len(lambdas, 2)

	getValue, err := s.storage.LookupDeclarations(s.ctx, project.ID, "Calculator::getValue")
	s.Require().NoError(err)
	s.Require().Len(getValue, 1)
	s.Equal("const", getValue[0].Qualifiers)

	display, err := s.storage.LookupDeclarations(s.ctx, project.ID, "AdvancedCalculator::display")
	s.Require().NoError(err)
	s.Require().Len(display, 1)
	s.Equal("override", display[0].Qualifiers)
}

// TestParameterDetails verifies parameter rows survive storage
func (s *AnalysisTestSuite) TestParameterDetails() {
	s.index()
	project := s.project()

	increment, err := s.storage.LookupDeclarations(s.ctx, project.ID, "increment")
	s.Require().NoError(err)
	s.Require().Len(increment, 1)

	params, err := s.storage.ListParameters(s.ctx, increment[0].ID)
	s.Require().NoError(err)
	s.Require().Len(params, 1)
	s.Equal("int&", params[0].TypeText)
	s.Equal("x", params[0].Name)
	s.True(params[0].IsReference)

	print, err := s.storage.LookupDeclarations(s.ctx, project.ID, "print")
	s.Require().NoError(err)
	s.Require().Len(print, 1)

	params, err = s.storage.ListParameters(s.ctx, print[0].ID)
	s.Require().NoError(err)
	s.Require().Len(params, 1)
	s.Equal(`"Hello"`, params[0].DefaultValue)
}

// TestSearch verifies the full-text index over stored declarations
func (s *AnalysisTestSuite) TestSearch() {
	s.index()
	project := s.project()

	results, err := s.storage.SearchDeclarations(s.ctx, project.ID, "getValue", 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Calculator::getValue", results[0].PathKey)

	results, err = s.storage.SearchDeclarations(s.ctx, project.ID, "display", 10)
	s.Require().NoError(err)
	s.Len(results, 2)
}

// TestSkippedSpans verifies the member variable is recorded as skipped
func (s *AnalysisTestSuite) TestSkippedSpans() {
	s.index()
	project := s.project()

	file, err := s.storage.GetFile(s.ctx, project.ID, "sample.cpp")
	s.Require().NoError(err)

	spans, err := s.storage.ListSkippedSpansByFile(s.ctx, file.ID)
	s.Require().NoError(err)
	s.Require().Len(spans, 1)
	s.Contains(spans[0].Snippet, "int value")
}

// TestIncrementalReindex verifies unchanged files are skipped
func (s *AnalysisTestSuite) TestIncrementalReindex() {
	first := s.index()
	s.Equal(1, first.FilesIndexed)

	second := s.index()
	s.Equal(0, second.FilesIndexed)
	s.Equal(1, second.FilesSkipped)

	// Declarations are not duplicated
	project := s.project()
	s.Equal(20, project.TotalDeclarations)
}

// TestStatus verifies project status reporting
func (s *AnalysisTestSuite) TestStatus() {
	s.index()
	project := s.project()

	status, err := s.storage.GetStatus(s.ctx, project.ID)
	s.Require().NoError(err)
	s.Equal(1, status.FilesCount)
	s.Equal(20, status.DeclarationsCount)
	s.Equal(1, status.SkippedCount)
	s.True(status.Health.DatabaseAccessible)
	s.True(status.Health.FTSIndexesBuilt)
}

// TestAnalysisTestSuite runs the test suite
func TestAnalysisTestSuite(t *testing.T) {
	suite.Run(t, new(AnalysisTestSuite))
}
