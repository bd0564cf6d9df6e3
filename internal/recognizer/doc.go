// Package recognizer implements the single-pass declaration
// recognition engine for C++-like source text.
//
// The Analyzer drives one forward cursor through the token stream,
// attempting declaration matching wherever the current scope is a
// namespace, class, or the global scope. Patterns are tried in fixed
// precedence, first match wins:
//
//  1. template<...> followed by a function declarator → function template
//  2. namespace [ident] {           → namespace scope entry
//  3. class/struct ident [: bases] { → class scope entry
//  4. type tokens ident(params) [qualifiers] ;|{...} → free or member function
//  5. auto ident = [captures](params) [{...}]        → lambda
//
// The ordered precedence resolves the locally ambiguous declarator
// grammar (an `auto` return type vs. a lambda assignment share leading
// tokens) with bounded lookahead instead of backtracking.
//
// # Graceful Degradation
//
// Token runs matching no pattern inside a declaration scope are
// consumed and recorded as SkippedSpan diagnostics: member variables,
// operator overloads, destructors, and other constructs outside the
// supported subset never fail the pass. Only malformed tokens
// (LexError) and unbalanced braces (StructureError) are fatal.
//
// # Usage
//
//	inv, err := recognizer.New().AnalyzeSource(ctx, "sample.cpp", source)
//	if err != nil {
//	    return err
//	}
//	classes := inv.AllOfVariant(types.VariantClass)
//
// Each AnalyzeSource call owns an independent lexer, scope tracker,
// and inventory; callers may analyze multiple files concurrently with
// a single Analyzer. The pass checks ctx between declarations, so it
// can be canceled cooperatively; declarations fully matched before the
// abort point are retained.
package recognizer
