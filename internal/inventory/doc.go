// Package inventory aggregates recognized declarations into a
// queryable tree mirroring lexical nesting.
//
// Declarations are inserted during the single forward pass and keyed
// by qualified path plus name; paths need not be unique, so overload
// sets accumulate under one key. Finalize is called exactly once after
// the token stream is consumed and fails with a StructureError when
// scopes remain open, ensuring truncated input never produces a
// silently incomplete inventory.
//
// Read-only queries:
//
//	inv.Lookup([]string{"Calculator", "add"})   // overload set
//	inv.AllOfVariant(types.VariantClass)        // insertion order
//	inv.Children([]string{"Math"})              // one nesting level
package inventory
