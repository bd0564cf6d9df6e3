package storage

import (
	"context"
	"strings"
	"time"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying analyzed
// C++ source inventories
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Declaration operations
	InsertDeclaration(ctx context.Context, decl *Declaration, params []Parameter) error
	GetDeclaration(ctx context.Context, declID int64) (*Declaration, error)
	ListDeclarationsByFile(ctx context.Context, fileID int64) ([]*Declaration, error)
	ListDeclarationsByVariant(ctx context.Context, projectID int64, variant string) ([]*Declaration, error)
	LookupDeclarations(ctx context.Context, projectID int64, pathKey string) ([]*Declaration, error)
	DeleteDeclarationsByFile(ctx context.Context, fileID int64) error
	SearchDeclarations(ctx context.Context, projectID int64, query string, limit int) ([]*Declaration, error)
	ListParameters(ctx context.Context, declID int64) ([]*Parameter, error)

	// Skipped span operations
	InsertSkippedSpan(ctx context.Context, span *SkippedSpan) error
	ListSkippedSpansByFile(ctx context.Context, fileID int64) ([]*SkippedSpan, error)
	DeleteSkippedSpansByFile(ctx context.Context, fileID int64) error

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed C++ source tree
type Project struct {
	ID                int64
	RootPath          string
	TotalFiles        int
	TotalDeclarations int
	IndexVersion      string
	LastIndexedAt     time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// File represents a tracked C++ source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Declaration represents a recognized declaration row. List-valued
// attributes (path, bases, captures, qualifiers) are stored in their
// joined textual forms.
type Declaration struct {
	ID            int64
	FileID        int64
	Variant       string
	Name          string
	QualifiedPath string // `::`-joined enclosing scope names
	PathKey       string // QualifiedPath plus name, the lookup key
	Qualifiers    string // sorted, comma-joined
	ReturnType    string
	BaseClasses   string // comma-joined
	CaptureList   string // comma-joined
	StartLine     int
	StartCol      int
	EndLine       int
	EndCol        int
	CreatedAt     time.Time
}

// Parameter represents one declared parameter of a declaration
type Parameter struct {
	ID            int64
	DeclarationID int64
	Ordinal       int
	TypeText      string
	Name          string
	IsReference   bool
	DefaultValue  string
}

// SkippedSpan represents a non-fatal skipped-span diagnostic
type SkippedSpan struct {
	ID        int64
	FileID    int64
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Snippet   string
	CreatedAt time.Time
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project           *Project
	FilesCount        int
	DeclarationsCount int
	SkippedCount      int
	IndexSizeMB       float64
	LastIndexedAt     time.Time
	Health            HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

const listSeparator = ","

// FromTypesDeclaration converts an engine declaration into its storage
// row plus parameter rows
func FromTypesDeclaration(d types.Declaration, fileID int64) (*Declaration, []Parameter) {
	row := &Declaration{
		FileID:        fileID,
		Variant:       string(d.Variant),
		Name:          d.Name,
		QualifiedPath: types.JoinPath(d.QualifiedPath),
		PathKey:       d.PathKey(),
		Qualifiers:    d.Qualifiers.String(),
		ReturnType:    d.ReturnTypeText,
		BaseClasses:   strings.Join(d.BaseClasses, listSeparator),
		CaptureList:   strings.Join(d.CaptureList, listSeparator),
		StartLine:     d.Start.Line,
		StartCol:      d.Start.Column,
		EndLine:       d.End.Line,
		EndCol:        d.End.Column,
	}

	params := make([]Parameter, 0, len(d.Parameters))
	for i, p := range d.Parameters {
		params = append(params, Parameter{
			Ordinal:      i,
			TypeText:     p.TypeText,
			Name:         p.Name,
			IsReference:  p.IsReference,
			DefaultValue: p.DefaultValueText,
		})
	}
	return row, params
}

// ToTypesDeclaration converts a storage row back into an engine
// declaration
func (d *Declaration) ToTypesDeclaration(params []*Parameter) types.Declaration {
	decl := types.Declaration{
		Variant:        types.DeclVariant(d.Variant),
		Name:           d.Name,
		QualifiedPath:  types.SplitPath(d.QualifiedPath),
		Qualifiers:     types.ParseQualifierSet(d.Qualifiers),
		ReturnTypeText: d.ReturnType,
		Start:          types.Position{Line: d.StartLine, Column: d.StartCol},
		End:            types.Position{Line: d.EndLine, Column: d.EndCol},
	}
	if d.BaseClasses != "" {
		decl.BaseClasses = strings.Split(d.BaseClasses, listSeparator)
	}
	if d.CaptureList != "" {
		decl.CaptureList = strings.Split(d.CaptureList, listSeparator)
	}
	for _, p := range params {
		decl.Parameters = append(decl.Parameters, types.Parameter{
			TypeText:         p.TypeText,
			Name:             p.Name,
			IsReference:      p.IsReference,
			DefaultValueText: p.DefaultValue,
		})
	}
	return decl
}
