// Package scope tracks nested lexical scopes during a recognition pass.
//
// The Tracker owns a stack holding the active root-to-current scope
// path. Entering a scope pushes a node onto both the stack and the
// persistent scope tree; exiting pops the stack only, so the tree
// survives for the inventory after the pass completes.
//
// CurrentPath resolves the qualified path used for naming member
// functions and nested classes: namespace and class names contribute,
// while function bodies and anonymous scopes do not.
package scope
