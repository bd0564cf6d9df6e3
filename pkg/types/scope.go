package types

// ScopeKind represents the kind of a lexical scope
type ScopeKind string

const (
	ScopeGlobal    ScopeKind = "global"
	ScopeNamespace ScopeKind = "namespace"
	ScopeClass     ScopeKind = "class"
	ScopeFunction  ScopeKind = "function"
)

// Scope is a node in the lexical scope tree. The Parent pointer is
// non-owning; ownership flows root-to-leaf through Children, so the
// tree contains no cycles. Anonymous namespaces and function scopes
// have an empty Name.
type Scope struct {
	Kind     ScopeKind
	Name     string
	Parent   *Scope
	Children []*Scope
	Start    Position
	End      Position
}

// NewScope creates a child scope attached to parent. A nil parent
// creates a root (global) scope.
func NewScope(kind ScopeKind, name string, parent *Scope) *Scope {
	s := &Scope{
		Kind:   kind,
		Name:   name,
		Parent: parent,
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// IsAnonymous reports whether the scope has no name
func (s *Scope) IsAnonymous() bool {
	return s.Name == ""
}

// PathComponent reports whether the scope contributes to qualified
// paths. Function scopes and anonymous scopes are excluded; namespaces
// and classes are included.
func (s *Scope) PathComponent() bool {
	switch s.Kind {
	case ScopeNamespace, ScopeClass:
		return !s.IsAnonymous()
	default:
		return false
	}
}
