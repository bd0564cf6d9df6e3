package inventory

import (
	"errors"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// ErrFinalized is returned when inserting into a finalized inventory
var ErrFinalized = errors.New("inventory is finalized")

// Inventory aggregates recognized declarations into a queryable
// structure mirroring lexical nesting. Declarations are kept in
// insertion order and additionally indexed by path key; overload sets
// share a key. After Finalize succeeds the inventory is immutable.
type Inventory struct {
	label     string
	decls     []types.Declaration
	byPath    map[string][]int
	skipped   []types.SkippedSpan
	scopeTree *types.Scope
	finalized bool
}

// New creates an empty inventory for the labeled source unit
func New(label string) *Inventory {
	return &Inventory{
		label:   label,
		byPath:  make(map[string][]int),
		skipped: make([]types.SkippedSpan, 0),
	}
}

// Label returns the source unit label
func (inv *Inventory) Label() string {
	return inv.label
}

// Insert validates and appends a declaration. Duplicate path keys are
// expected: overloads accumulate under one key.
func (inv *Inventory) Insert(decl types.Declaration) error {
	if inv.finalized {
		return ErrFinalized
	}
	if err := decl.Validate(); err != nil {
		return err
	}
	idx := len(inv.decls)
	inv.decls = append(inv.decls, decl)
	key := decl.PathKey()
	inv.byPath[key] = append(inv.byPath[key], idx)
	return nil
}

// AddSkipped records a non-fatal skipped-span diagnostic
func (inv *Inventory) AddSkipped(start, end types.Position, snippet string) {
	inv.skipped = append(inv.skipped, types.SkippedSpan{
		Start:   start,
		End:     end,
		Snippet: snippet,
	})
}

// Finalize seals the inventory once the full token stream has been
// consumed. A non-zero count of still-open scopes means the input had
// unbalanced delimiters and fails with a StructureError — truncated
// input never yields a silently incomplete inventory.
func (inv *Inventory) Finalize(openScopes int, pos types.Position, scopeTree *types.Scope) error {
	if openScopes > 0 {
		return &types.StructureError{
			Label:   inv.label,
			Pos:     pos,
			Message: "unclosed scope at end of input",
		}
	}
	inv.scopeTree = scopeTree
	inv.finalized = true
	return nil
}

// Finalized reports whether Finalize has succeeded
func (inv *Inventory) Finalized() bool {
	return inv.finalized
}

// Lookup returns the overload set under the given path: the enclosing
// scope names followed by the declaration name.
func (inv *Inventory) Lookup(path []string) []types.Declaration {
	indices := inv.byPath[types.JoinPath(path)]
	out := make([]types.Declaration, 0, len(indices))
	for _, i := range indices {
		out = append(out, inv.decls[i])
	}
	return out
}

// AllOfVariant returns every declaration of the given variant in
// insertion order
func (inv *Inventory) AllOfVariant(variant types.DeclVariant) []types.Declaration {
	out := make([]types.Declaration, 0)
	for _, d := range inv.decls {
		if d.Variant == variant {
			out = append(out, d)
		}
	}
	return out
}

// Children returns the declarations nested exactly one level under
// the given scope path, in insertion order
func (inv *Inventory) Children(scopePath []string) []types.Declaration {
	out := make([]types.Declaration, 0)
	for _, d := range inv.decls {
		if pathsEqual(d.QualifiedPath, scopePath) {
			out = append(out, d)
		}
	}
	return out
}

// Declarations returns all declarations in insertion order
func (inv *Inventory) Declarations() []types.Declaration {
	out := make([]types.Declaration, len(inv.decls))
	copy(out, inv.decls)
	return out
}

// Skipped returns the collected skipped-span diagnostics
func (inv *Inventory) Skipped() []types.SkippedSpan {
	out := make([]types.SkippedSpan, len(inv.skipped))
	copy(out, inv.skipped)
	return out
}

// ScopeTree returns the root of the persistent scope tree, available
// after finalization
func (inv *Inventory) ScopeTree() *types.Scope {
	return inv.scopeTree
}

// Len returns the number of declarations held
func (inv *Inventory) Len() int {
	return len(inv.decls)
}

// Result flattens the inventory into a plain AnalysisResult
func (inv *Inventory) Result() *types.AnalysisResult {
	return &types.AnalysisResult{
		Label:        inv.label,
		Declarations: inv.Declarations(),
		ScopeTree:    inv.scopeTree,
		Skipped:      inv.Skipped(),
	}
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
