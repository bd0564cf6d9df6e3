package scope

import (
	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// Tracker maintains the stack of nested lexical scopes as delimiters
// are consumed. The stack holds the active root-to-current path; the
// full scope tree persists after pops and is handed to the inventory.
type Tracker struct {
	label string
	root  *types.Scope
	stack []*types.Scope
}

// NewTracker creates a tracker rooted at a fresh global scope. The
// label identifies the source unit in error messages.
func NewTracker(label string) *Tracker {
	root := types.NewScope(types.ScopeGlobal, "", nil)
	return &Tracker{
		label: label,
		root:  root,
		stack: []*types.Scope{root},
	}
}

// Enter pushes a new scope opened at pos and returns it
func (t *Tracker) Enter(kind types.ScopeKind, name string, pos types.Position) *types.Scope {
	s := types.NewScope(kind, name, t.Current())
	s.Start = pos
	t.stack = append(t.stack, s)
	return s
}

// Exit pops the current scope, recording the closing position.
// Popping past the root is a StructureError: the input contained an
// unmatched closing delimiter.
func (t *Tracker) Exit(pos types.Position) error {
	if len(t.stack) <= 1 {
		return &types.StructureError{
			Label:   t.label,
			Pos:     pos,
			Message: "unmatched closing brace",
		}
	}
	top := t.stack[len(t.stack)-1]
	top.End = pos
	t.stack = t.stack[:len(t.stack)-1]
	return nil
}

// Current returns the innermost open scope
func (t *Tracker) Current() *types.Scope {
	return t.stack[len(t.stack)-1]
}

// Root returns the global scope owning the whole tree
func (t *Tracker) Root() *types.Scope {
	return t.root
}

// Depth returns the number of open scopes above the root. A conformant
// input ends with depth zero.
func (t *Tracker) Depth() int {
	return len(t.stack) - 1
}

// CurrentPath returns the ordered names of the enclosing scopes from
// root to current. Function scopes and anonymous scopes are excluded;
// namespace and class scopes are included.
func (t *Tracker) CurrentPath() []string {
	path := make([]string, 0, len(t.stack))
	for _, s := range t.stack {
		if s.PathComponent() {
			path = append(path, s.Name)
		}
	}
	return path
}

// InDeclarationScope reports whether declarations may be recognized at
// the current position, i.e. the innermost scope is not a function
// body.
func (t *Tracker) InDeclarationScope() bool {
	return t.Current().Kind != types.ScopeFunction
}

// InClass reports whether the innermost scope is a class body, which
// turns recognized functions into member functions.
func (t *Tracker) InClass() bool {
	return t.Current().Kind == types.ScopeClass
}

// ClassName returns the name of the innermost class scope, or the
// empty string when not inside a class.
func (t *Tracker) ClassName() string {
	if t.InClass() {
		return t.Current().Name
	}
	return ""
}
