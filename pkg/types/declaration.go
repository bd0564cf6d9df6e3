package types

import (
	"errors"
	"sort"
	"strings"
)

// DeclVariant represents the classified kind of a declaration
type DeclVariant string

const (
	VariantFreeFunction     DeclVariant = "free_function"
	VariantFunctionTemplate DeclVariant = "function_template"
	VariantLambda           DeclVariant = "lambda"
	VariantClass            DeclVariant = "class"
	VariantMemberFunction   DeclVariant = "member_function"
	VariantNamespace        DeclVariant = "namespace"
)

// Valid reports whether v is one of the defined variants
func (v DeclVariant) Valid() bool {
	switch v {
	case VariantFreeFunction, VariantFunctionTemplate, VariantLambda,
		VariantClass, VariantMemberFunction, VariantNamespace:
		return true
	}
	return false
}

// Qualifier represents a declaration modifier
type Qualifier string

const (
	QualConst    Qualifier = "const"
	QualStatic   Qualifier = "static"
	QualVirtual  Qualifier = "virtual"
	QualOverride Qualifier = "override"
	// QualDefault marks declarations carrying default argument expressions
	QualDefault Qualifier = "default"
)

// QualifierSet is an unordered set of declaration qualifiers
type QualifierSet map[Qualifier]bool

// NewQualifierSet builds a set from the given qualifiers
func NewQualifierSet(quals ...Qualifier) QualifierSet {
	set := make(QualifierSet, len(quals))
	for _, q := range quals {
		set[q] = true
	}
	return set
}

// Add inserts a qualifier into the set
func (qs QualifierSet) Add(q Qualifier) {
	qs[q] = true
}

// Has reports whether the qualifier is present
func (qs QualifierSet) Has(q Qualifier) bool {
	return qs[q]
}

// Equal reports whether two sets contain the same qualifiers
func (qs QualifierSet) Equal(other QualifierSet) bool {
	if len(qs) != len(other) {
		return false
	}
	for q := range qs {
		if !other[q] {
			return false
		}
	}
	return true
}

// String returns the qualifiers in sorted, comma-joined form
func (qs QualifierSet) String() string {
	names := make([]string, 0, len(qs))
	for q := range qs {
		names = append(names, string(q))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// ParseQualifierSet parses the comma-joined form produced by String
func ParseQualifierSet(s string) QualifierSet {
	set := make(QualifierSet)
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			set[Qualifier(part)] = true
		}
	}
	return set
}

// Parameter represents a single declared parameter. Type and default
// value are raw textual spans, not semantically parsed.
type Parameter struct {
	TypeText         string
	Name             string
	IsReference      bool
	DefaultValueText string
}

// HasDefault reports whether the parameter carries a default value
func (p *Parameter) HasDefault() bool {
	return p.DefaultValueText != ""
}

// Declaration represents a recognized construct with its structural
// attributes. QualifiedPath holds the names of the enclosing namespace
// and class scopes from outermost to innermost, excluding the
// declaration's own name. Declarations are created once during a
// single forward pass and never mutated after inventory finalization.
type Declaration struct {
	Variant       DeclVariant
	Name          string
	QualifiedPath []string
	Parameters    []Parameter
	Qualifiers    QualifierSet

	// ReturnTypeText is the raw textual span of the return type.
	// Empty for constructors, classes, and namespaces.
	ReturnTypeText string

	// BaseClasses lists base class names for VariantClass
	BaseClasses []string

	// CaptureList lists captured identifiers for VariantLambda
	CaptureList []string

	Start Position
	End   Position
}

// ValidateVariant checks if the declaration variant is valid
func (d *Declaration) ValidateVariant() error {
	switch d.Variant {
	case VariantFreeFunction, VariantFunctionTemplate, VariantLambda,
		VariantClass, VariantMemberFunction, VariantNamespace:
		return nil
	default:
		return errors.New("invalid declaration variant")
	}
}

// Validate performs comprehensive validation of the declaration
func (d *Declaration) Validate() error {
	if err := d.ValidateVariant(); err != nil {
		return err
	}

	// Anonymous namespaces are the only nameless declarations; lambdas
	// always get a synthetic identifier.
	if d.Name == "" && d.Variant != VariantNamespace {
		return errors.New("declaration name is required")
	}

	if d.Variant != VariantClass && len(d.BaseClasses) > 0 {
		return errors.New("only classes can have base classes")
	}

	if d.Variant != VariantLambda && len(d.CaptureList) > 0 {
		return errors.New("only lambdas can have a capture list")
	}

	if d.Start.Line <= 0 {
		return errors.New("invalid position: line numbers must be positive")
	}

	return nil
}

// PathKey returns the inventory key for the declaration: the qualified
// path joined with the declaration name. Overload sets share a key.
func (d *Declaration) PathKey() string {
	return JoinPath(append(append([]string{}, d.QualifiedPath...), d.Name))
}

// JoinPath renders a qualified path in C++ `::` notation
func JoinPath(path []string) string {
	return strings.Join(path, "::")
}

// SplitPath parses C++ `::` notation into path components
func SplitPath(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, "::")
}
