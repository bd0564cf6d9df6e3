package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

func pos(line, col int) types.Position {
	return types.Position{Line: line, Column: col}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker("test.cpp")
	assert.Equal(t, 0, tr.Depth())
	assert.Equal(t, types.ScopeGlobal, tr.Current().Kind)
	assert.Same(t, tr.Root(), tr.Current())
}

func TestEnterExit(t *testing.T) {
	tr := NewTracker("test.cpp")

	ns := tr.Enter(types.ScopeNamespace, "Math", pos(1, 16))
	assert.Equal(t, 1, tr.Depth())
	assert.Same(t, ns, tr.Current())
	assert.Same(t, tr.Root(), ns.Parent)

	err := tr.Exit(pos(5, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Depth())
	assert.Equal(t, pos(5, 1), ns.End)

	// The popped scope stays in the tree
	require.Len(t, tr.Root().Children, 1)
	assert.Same(t, ns, tr.Root().Children[0])
}

func TestExit_PastRoot(t *testing.T) {
	tr := NewTracker("test.cpp")
	err := tr.Exit(pos(1, 1))
	require.Error(t, err)
	var structErr *types.StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Contains(t, structErr.Message, "unmatched closing brace")
}

func TestCurrentPath(t *testing.T) {
	tr := NewTracker("test.cpp")
	assert.Empty(t, tr.CurrentPath())

	tr.Enter(types.ScopeNamespace, "Math", pos(1, 1))
	tr.Enter(types.ScopeNamespace, "Advanced", pos(2, 1))
	tr.Enter(types.ScopeClass, "Calculator", pos(3, 1))
	assert.Equal(t, []string{"Math", "Advanced", "Calculator"}, tr.CurrentPath())

	// Function scopes never contribute to the path
	tr.Enter(types.ScopeFunction, "add", pos(4, 1))
	assert.Equal(t, []string{"Math", "Advanced", "Calculator"}, tr.CurrentPath())
}

func TestCurrentPath_AnonymousNamespace(t *testing.T) {
	tr := NewTracker("test.cpp")
	tr.Enter(types.ScopeNamespace, "", pos(1, 1))
	assert.Empty(t, tr.CurrentPath())

	tr.Enter(types.ScopeNamespace, "Inner", pos(2, 1))
	assert.Equal(t, []string{"Inner"}, tr.CurrentPath())
}

func TestInDeclarationScope(t *testing.T) {
	tr := NewTracker("test.cpp")
	assert.True(t, tr.InDeclarationScope())

	tr.Enter(types.ScopeNamespace, "Math", pos(1, 1))
	assert.True(t, tr.InDeclarationScope())

	tr.Enter(types.ScopeClass, "Calculator", pos(2, 1))
	assert.True(t, tr.InDeclarationScope())

	tr.Enter(types.ScopeFunction, "add", pos(3, 1))
	assert.False(t, tr.InDeclarationScope())
}

func TestInClassAndClassName(t *testing.T) {
	tr := NewTracker("test.cpp")
	assert.False(t, tr.InClass())
	assert.Equal(t, "", tr.ClassName())

	tr.Enter(types.ScopeClass, "Calculator", pos(1, 1))
	assert.True(t, tr.InClass())
	assert.Equal(t, "Calculator", tr.ClassName())

	tr.Enter(types.ScopeFunction, "add", pos(2, 1))
	assert.False(t, tr.InClass())
	assert.Equal(t, "", tr.ClassName())
}

func TestNestedExitOrder(t *testing.T) {
	tr := NewTracker("test.cpp")
	outer := tr.Enter(types.ScopeNamespace, "Outer", pos(1, 1))
	inner := tr.Enter(types.ScopeClass, "Inner", pos(2, 1))

	require.NoError(t, tr.Exit(pos(3, 1)))
	assert.Same(t, outer, tr.Current())
	assert.Equal(t, pos(3, 1), inner.End)

	require.NoError(t, tr.Exit(pos(4, 1)))
	assert.Equal(t, 0, tr.Depth())
}
