package recognizer

import (
	"context"
	"fmt"

	"github.com/dshills/cppcontext-mcp/internal/inventory"
	"github.com/dshills/cppcontext-mcp/internal/lexer"
	"github.com/dshills/cppcontext-mcp/internal/scope"
	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// Analyzer runs the single-pass construct classification engine over
// one source unit at a time. Each call owns an independent lexer,
// scope tracker, and inventory, so a host may analyze multiple files
// concurrently with one Analyzer.
type Analyzer struct{}

// New creates a new Analyzer instance
func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeSource tokenizes and classifies the given source text,
// returning the finalized inventory. The label identifies the source
// unit in error reporting only; loading text is the caller's
// responsibility. Returns *types.LexError or *types.StructureError on
// fatal input problems, or ctx.Err() if the pass is canceled between
// declarations.
func (a *Analyzer) AnalyzeSource(ctx context.Context, label, src string) (*inventory.Inventory, error) {
	tokens, err := lexer.New(label, src).Tokenize()
	if err != nil {
		return nil, err
	}

	// Comments are trivia: retained by the lexer, excluded from matching
	significant := make([]types.Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.IsTrivia() {
			significant = append(significant, tok)
		}
	}

	p := &pass{
		label:   label,
		tokens:  significant,
		tracker: scope.NewTracker(label),
		inv:     inventory.New(label),
	}

	if err := p.run(ctx); err != nil {
		return nil, err
	}

	endPos := types.Position{Line: 1, Column: 1}
	if len(significant) > 0 {
		endPos = significant[len(significant)-1].Pos
	}
	if err := p.inv.Finalize(p.tracker.Depth(), endPos, p.tracker.Root()); err != nil {
		return nil, err
	}
	return p.inv, nil
}

// pass holds the forward cursor state for one analysis. All components
// cooperate strictly sequentially over this single cursor.
type pass struct {
	label     string
	tokens    []types.Token
	pos       int
	tracker   *scope.Tracker
	inv       *inventory.Inventory
	lambdaSeq int
}

func (p *pass) run(ctx context.Context) error {
	for !p.atEnd() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.recognizeNext(); err != nil {
			return err
		}
	}
	return nil
}

// recognizeNext attempts declaration matching at the current cursor.
// Patterns are tried in fixed precedence; the first match wins. Token
// runs matching no pattern degrade to SkippedSpan diagnostics.
func (p *pass) recognizeNext() error {
	tok := p.current()
	switch {
	case tok.IsPunct("}"):
		err := p.tracker.Exit(tok.Pos)
		p.advance()
		return err
	case tok.IsPunct(";"):
		p.advance()
		return nil
	case tok.IsKeyword("template"):
		return p.recognizeTemplate()
	case tok.IsKeyword("namespace"):
		return p.recognizeNamespace()
	case tok.IsKeyword("class") || tok.IsKeyword("struct"):
		return p.recognizeClass()
	case tok.IsKeyword("auto") && p.lambdaAssignAhead():
		return p.recognizeLambdaAssign()
	case p.accessLabelAhead():
		p.advance() // access specifier
		p.advance() // colon
		return nil
	default:
		return p.recognizeFunction(p.pos, false)
	}
}

// recognizeTemplate matches pattern 1: the template keyword, a
// balanced angle-bracket parameter list, then a function declarator
func (p *pass) recognizeTemplate() error {
	startIdx := p.pos
	p.advance() // template

	if !p.current().IsPunct("<") {
		p.skipFrom(startIdx)
		return nil
	}
	p.advance()
	depth := 1
	for !p.atEnd() && depth > 0 {
		switch {
		case p.current().IsPunct("<"):
			depth++
		case p.current().IsPunct(">"):
			depth--
		case p.current().IsPunct(">>"):
			depth -= 2
		}
		p.advance()
	}
	if depth > 0 {
		p.skipFrom(startIdx)
		return nil
	}

	return p.recognizeFunction(startIdx, true)
}

// recognizeNamespace matches pattern 2: the namespace keyword, an
// optional identifier, and an opening brace. Anonymous namespaces get
// an empty name and do not contribute to qualified paths.
func (p *pass) recognizeNamespace() error {
	startIdx := p.pos
	start := p.current().Pos
	p.advance() // namespace

	name := ""
	if p.current().Kind == types.TokenIdentifier {
		name = p.current().Text
		p.advance()
	}

	if !p.current().IsPunct("{") {
		// namespace alias or malformed run
		p.skipFrom(startIdx)
		return nil
	}

	decl := types.Declaration{
		Variant:       types.VariantNamespace,
		Name:          name,
		QualifiedPath: p.tracker.CurrentPath(),
		Qualifiers:    types.NewQualifierSet(),
		Start:         start,
		End:           p.current().Pos,
	}
	if err := p.inv.Insert(decl); err != nil {
		return err
	}

	p.tracker.Enter(types.ScopeNamespace, name, p.current().Pos)
	p.advance()
	return nil
}

// recognizeClass matches pattern 3: class/struct, an identifier, an
// optional base-class list, and an opening brace. A run ending in `;`
// (forward declaration) matches no pattern and is skipped.
func (p *pass) recognizeClass() error {
	startIdx := p.pos
	start := p.current().Pos
	p.advance() // class or struct

	if p.current().Kind != types.TokenIdentifier {
		p.skipFrom(startIdx)
		return nil
	}
	name := p.current().Text
	p.advance()

	var bases []string
	if p.current().IsPunct(":") {
		p.advance()
		var entry []types.Token
		for !p.atEnd() && !p.current().IsPunct("{") && !p.current().IsPunct(";") {
			if p.current().IsPunct(",") {
				bases = appendBase(bases, entry)
				entry = nil
			} else {
				entry = append(entry, p.current())
			}
			p.advance()
		}
		bases = appendBase(bases, entry)
	}

	if !p.current().IsPunct("{") {
		p.skipFrom(startIdx)
		return nil
	}

	decl := types.Declaration{
		Variant:       types.VariantClass,
		Name:          name,
		QualifiedPath: p.tracker.CurrentPath(),
		Qualifiers:    types.NewQualifierSet(),
		BaseClasses:   bases,
		Start:         start,
		End:           p.current().Pos,
	}
	if err := p.inv.Insert(decl); err != nil {
		return err
	}

	p.tracker.Enter(types.ScopeClass, name, p.current().Pos)
	p.advance()
	return nil
}

// appendBase extracts a base class name from one entry of a base-class
// list: the last identifier outside template angle brackets, skipping
// access specifiers.
func appendBase(bases []string, entry []types.Token) []string {
	depth := 0
	base := ""
	for _, tok := range entry {
		switch {
		case tok.IsPunct("<"):
			depth++
		case tok.IsPunct(">"):
			depth--
		case tok.Kind == types.TokenIdentifier && depth == 0:
			base = tok.Text
		}
	}
	if base != "" && !accessSpecifiers[base] {
		return append(bases, base)
	}
	return bases
}

var accessSpecifiers = map[string]bool{
	"public": true, "private": true, "protected": true,
}

// recognizeFunction matches pattern 4: a type-like token run, an
// identifier, a parenthesized parameter list, optional qualifier
// keywords, then `;` (declaration-only, ignored) or a braced body.
// The variant is MemberFunction inside a class, FreeFunction
// otherwise, or FunctionTemplate when reached through pattern 1.
func (p *pass) recognizeFunction(startIdx int, isTemplate bool) error {
	declStart := p.tokens[startIdx].Pos

	var pre []types.Token
	for {
		tok := p.current()
		if tok.IsPunct("(") {
			break
		}
		if tok.Kind == types.TokenEOF || tok.IsPunct(";") || tok.IsPunct("{") ||
			tok.IsPunct("}") || tok.IsPunct("=") || tok.IsPunct("~") {
			p.skipFrom(startIdx)
			return nil
		}
		pre = append(pre, tok)
		p.advance()
	}

	returnType, name, quals, ok := splitDeclaratorHead(pre)
	if !ok {
		p.skipFrom(startIdx)
		return nil
	}

	// Constructors have no return type and repeat the class name;
	// anything else with an empty type run is a call, not a declarator.
	isCtor := p.tracker.InClass() && name.Text == p.tracker.ClassName()
	if len(returnType) == 0 && !isCtor {
		p.skipFrom(startIdx)
		return nil
	}

	// The qualified path reflects the scope stack at the name token
	path := p.tracker.CurrentPath()

	params, ok := p.parseParameterList()
	if !ok {
		p.skipFrom(startIdx)
		return nil
	}

	for {
		if q, isQual := qualifierFromToken(p.current()); isQual {
			quals.Add(q)
			p.advance()
			continue
		}
		break
	}
	markDefaultQualifier(quals, params)

	// A colon after the parameter list inside a class body is a
	// member-initializer list, never a base-class list. Skip to the body.
	if p.current().IsPunct(":") && p.tracker.InClass() {
		for !p.atEnd() && !p.current().IsPunct("{") && !p.current().IsPunct(";") {
			p.advance()
		}
	}

	end := declStart
	switch {
	case p.current().IsPunct(";"):
		// Declaration-only: consumed, not inventoried
		p.advance()
		return nil
	case p.current().IsPunct("{"):
		bodyEnd, err := p.skipBody(name.Text)
		if err != nil {
			return err
		}
		end = bodyEnd
	default:
		p.skipFrom(startIdx)
		return nil
	}

	variant := types.VariantFreeFunction
	switch {
	case isTemplate:
		variant = types.VariantFunctionTemplate
	case p.tracker.InClass():
		variant = types.VariantMemberFunction
	}

	return p.inv.Insert(types.Declaration{
		Variant:        variant,
		Name:           name.Text,
		QualifiedPath:  path,
		Parameters:     params,
		Qualifiers:     quals,
		ReturnTypeText: renderTokens(returnType),
		Start:          declStart,
		End:            end,
	})
}

// lambdaAssignAhead reports whether the cursor sits on the pattern 5
// prefix `auto ident = [`, disambiguating lambda assignment from an
// auto-returning function declarator.
func (p *pass) lambdaAssignAhead() bool {
	return p.peekAt(1).Kind == types.TokenIdentifier &&
		p.peekAt(2).IsPunct("=") &&
		p.peekAt(3).IsPunct("[")
}

// recognizeLambdaAssign matches pattern 5: auto ident = [captures](params){...}
func (p *pass) recognizeLambdaAssign() error {
	start := p.current().Pos
	p.advance() // auto
	name := p.current().Text
	p.advance() // ident
	p.advance() // =
	return p.recognizeLambdaExpr(name, start)
}

// recognizeLambdaExpr consumes a lambda expression starting at `[`.
// Lambdas reached while scanning a function body get a synthetic name.
func (p *pass) recognizeLambdaExpr(name string, start types.Position) error {
	captures := p.parseCaptureList()

	if !p.current().IsPunct("(") {
		return nil
	}
	params, ok := p.parseParameterList()
	if !ok {
		return nil
	}

	// Optional trailing return type
	var returnType []types.Token
	if p.current().IsPunct("->") {
		p.advance()
		for !p.atEnd() && !p.current().IsPunct("{") && !p.current().IsPunct(";") {
			returnType = append(returnType, p.current())
			p.advance()
		}
	}

	end := start
	if p.current().IsPunct("{") {
		bodyEnd, err := p.skipBody("")
		if err != nil {
			return err
		}
		end = bodyEnd
	}

	if name == "" {
		p.lambdaSeq++
		name = fmt.Sprintf("lambda#%d", p.lambdaSeq)
	}

	quals := types.NewQualifierSet()
	markDefaultQualifier(quals, params)

	return p.inv.Insert(types.Declaration{
		Variant:        types.VariantLambda,
		Name:           name,
		QualifiedPath:  p.tracker.CurrentPath(),
		Parameters:     params,
		Qualifiers:     quals,
		ReturnTypeText: renderTokens(returnType),
		CaptureList:    captures,
		Start:          start,
		End:            end,
	})
}

// parseCaptureList consumes `[ ... ]`, splitting elements on commas.
// Captured closures are represented purely textually.
func (p *pass) parseCaptureList() []string {
	captures := []string{}
	if !p.current().IsPunct("[") {
		return captures
	}
	p.advance()

	var entry []types.Token
	for !p.atEnd() && !p.current().IsPunct("]") {
		if p.current().IsPunct(",") {
			if len(entry) > 0 {
				captures = append(captures, renderCapture(entry))
			}
			entry = nil
		} else {
			entry = append(entry, p.current())
		}
		p.advance()
	}
	if len(entry) > 0 {
		captures = append(captures, renderCapture(entry))
	}
	p.advance() // ]
	return captures
}

// renderCapture renders one capture entry, keeping a by-reference
// marker tight against the captured name
func renderCapture(entry []types.Token) string {
	if len(entry) > 1 && entry[0].IsPunct("&") {
		return "&" + renderTokens(entry[1:])
	}
	return renderTokens(entry)
}

// parseParameterList consumes a balanced `( ... )` and extracts one
// Parameter per top-level comma-separated span
func (p *pass) parseParameterList() ([]types.Parameter, bool) {
	if !p.current().IsPunct("(") {
		return nil, false
	}
	p.advance()

	depth := 1
	var spans [][]types.Token
	var cur []types.Token
	for !p.atEnd() {
		tok := p.current()
		switch {
		case tok.IsPunct("("):
			depth++
			cur = append(cur, tok)
		case tok.IsPunct(")"):
			depth--
			if depth == 0 {
				p.advance()
				if len(cur) > 0 {
					spans = append(spans, cur)
				}
				params := make([]types.Parameter, 0, len(spans))
				for _, span := range spans {
					params = append(params, extractParameter(span))
				}
				return params, true
			}
			cur = append(cur, tok)
		case tok.IsPunct(",") && depth == 1:
			spans = append(spans, cur)
			cur = nil
		default:
			cur = append(cur, tok)
		}
		p.advance()
	}
	return nil, false
}

// skipBody consumes a balanced braced body as a function scope.
// Statements inside are not parsed, with one exception: `return [` is
// recognized as a returned lambda expression and surfaced. A body left
// open at end of input is reported by inventory finalization.
func (p *pass) skipBody(name string) (types.Position, error) {
	open := p.current()
	p.tracker.Enter(types.ScopeFunction, name, open.Pos)
	p.advance()

	depth := 1
	end := open.Pos
	for !p.atEnd() {
		tok := p.current()
		switch {
		case tok.IsPunct("{"):
			depth++
			p.advance()
		case tok.IsPunct("}"):
			depth--
			end = tok.Pos
			p.advance()
			if depth == 0 {
				return end, p.tracker.Exit(end)
			}
		case tok.IsKeyword("return") && p.peekAt(1).IsPunct("["):
			p.advance() // return
			if err := p.recognizeLambdaExpr("", tok.Pos); err != nil {
				return end, err
			}
		default:
			p.advance()
		}
	}
	return end, nil
}

// accessLabelAhead reports an access-specifier label (`public:`)
// inside a class body, consumed as trivia
func (p *pass) accessLabelAhead() bool {
	return p.tracker.InClass() &&
		p.current().Kind == types.TokenIdentifier &&
		accessSpecifiers[p.current().Text] &&
		p.peekAt(1).IsPunct(":")
}

// skipFrom records a SkippedSpan diagnostic for the token run starting
// at startIdx and moves the cursor past it: through the terminating
// `;`, past a balanced braced body, or up to an enclosing `}`.
func (p *pass) skipFrom(startIdx int) {
	p.pos = startIdx
	start := p.current().Pos
	last := p.current()

	depth := 0
	for !p.atEnd() {
		tok := p.current()
		if depth == 0 && tok.IsPunct(";") {
			last = tok
			p.advance()
			break
		}
		if tok.IsPunct("{") {
			depth++
		}
		if tok.IsPunct("}") {
			if depth == 0 {
				// Enclosing scope closer; leave it for the main loop
				break
			}
			depth--
			if depth == 0 {
				last = tok
				p.advance()
				break
			}
		}
		last = tok
		p.advance()
	}

	p.inv.AddSkipped(start, last.Pos, snippetOf(p.tokens[startIdx:p.pos]))
}

// Token navigation helpers

func (p *pass) current() types.Token {
	return p.peekAt(0)
}

func (p *pass) peekAt(offset int) types.Token {
	if p.pos+offset < len(p.tokens) {
		return p.tokens[p.pos+offset]
	}
	return types.Token{Kind: types.TokenEOF}
}

func (p *pass) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *pass) atEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == types.TokenEOF
}
