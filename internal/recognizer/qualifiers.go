package recognizer

import (
	"strings"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// qualifierKeywords maps qualifier keyword text to the structured
// attribute. static and virtual are extracted from the declarator
// head; const and override from the trailing run after the parameter
// list.
var qualifierKeywords = map[string]types.Qualifier{
	"const":    types.QualConst,
	"static":   types.QualStatic,
	"virtual":  types.QualVirtual,
	"override": types.QualOverride,
}

// qualifierFromToken returns the qualifier a keyword token maps to
func qualifierFromToken(tok types.Token) (types.Qualifier, bool) {
	if tok.Kind != types.TokenKeyword {
		return "", false
	}
	q, ok := qualifierKeywords[tok.Text]
	return q, ok
}

// splitDeclaratorHead separates a declarator's pre-parenthesis tokens
// into return type tokens, the name token, and leading qualifiers.
// The name is the final token and must be an identifier. Only static
// and virtual are pulled out of the head; a leading const belongs to
// the return type (`const char*`), never to the qualifier set.
func splitDeclaratorHead(pre []types.Token) (returnType []types.Token, name types.Token, quals types.QualifierSet, ok bool) {
	quals = types.NewQualifierSet()
	if len(pre) == 0 {
		return nil, types.Token{}, quals, false
	}

	name = pre[len(pre)-1]
	if name.Kind != types.TokenIdentifier {
		return nil, types.Token{}, quals, false
	}

	for _, tok := range pre[:len(pre)-1] {
		if q, isQual := qualifierFromToken(tok); isQual && (q == types.QualStatic || q == types.QualVirtual) {
			quals.Add(q)
			continue
		}
		returnType = append(returnType, tok)
	}
	return returnType, name, quals, true
}

// extractParameter classifies a single parameter token span. It is a
// pure function of the span: the raw type text, the optional declared
// name, whether the parameter is a reference (a lone `&`, never part
// of `&&`), and the raw default value text after the first
// unparenthesized `=`.
func extractParameter(span []types.Token) types.Parameter {
	left := span
	defaultText := ""

	depth := 0
	split := false
	for i, tok := range span {
		switch {
		case tok.IsPunct("(") || tok.IsPunct("[") || tok.IsPunct("{"):
			depth++
		case tok.IsPunct(")") || tok.IsPunct("]") || tok.IsPunct("}"):
			depth--
		case tok.IsPunct("=") && depth == 0:
			left = span[:i]
			defaultText = renderTokens(span[i+1:])
			split = true
		}
		if split {
			break
		}
	}

	param := types.Parameter{DefaultValueText: defaultText}

	for _, tok := range left {
		if tok.IsPunct("&") {
			param.IsReference = true
		}
	}

	// The declared name is the trailing identifier, provided type
	// tokens precede it. A lone identifier is an unnamed parameter.
	nameIdx := -1
	if len(left) > 1 && left[len(left)-1].Kind == types.TokenIdentifier {
		nameIdx = len(left) - 1
	}

	if nameIdx > 0 {
		param.Name = left[nameIdx].Text
		param.TypeText = renderTokens(left[:nameIdx])
	} else {
		param.TypeText = renderTokens(left)
	}
	return param
}

// markDefaultQualifier adds the `default` qualifier when any parameter
// carries a default argument expression
func markDefaultQualifier(quals types.QualifierSet, params []types.Parameter) {
	for i := range params {
		if params[i].HasDefault() {
			quals.Add(types.QualDefault)
			return
		}
	}
}

// Token sets controlling spacing when a token span is rendered back to
// text. Scope and template punctuation binds tightly on both sides;
// reference and pointer markers bind to the preceding type token.
var (
	noSpaceBefore = map[string]bool{
		"::": true, ",": true, ")": true, "]": true, ";": true,
		">": true, "<": true, "&": true, "*": true, "(": true, "[": true,
	}
	noSpaceAfter = map[string]bool{
		"::": true, "(": true, "[": true, "<": true,
		"*": true, "~": true, "!": true,
	}
)

// renderTokens reconstructs a readable textual span from tokens.
// Raw spans are textual only; they are never semantically parsed.
func renderTokens(toks []types.Token) string {
	var b strings.Builder
	prev := ""
	for _, tok := range toks {
		if tok.IsTrivia() {
			continue
		}
		if b.Len() > 0 && !noSpaceAfter[prev] && !noSpaceBefore[tok.Text] {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		prev = tok.Text
	}
	return b.String()
}

// snippetOf renders a truncated preview of a token run for diagnostics
func snippetOf(toks []types.Token) string {
	const maxTokens = 12
	const maxLen = 80
	if len(toks) > maxTokens {
		toks = toks[:maxTokens]
	}
	s := renderTokens(toks)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
