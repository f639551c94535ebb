package lang

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ParseString parses template source and returns its normalized AST.
// Adjacent content is combined and whitespace control applied before the
// tree is returned.
func ParseString(ctx context.Context, s string, opts ...Option) (*Root, error) {
	return parse(ctx, s, makeConfig(opts...))
}

func parse(ctx context.Context, s string, cfg config) (*Root, error) {
	tokens, err := scan(s)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	root, err := p.parseRoot()
	if err != nil {
		return nil, err
	}

	combineContent(root.Body)
	newWhitespaceControl(cfg.opts).apply(root)

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(s)),
		slog.Int("tokens", len(tokens)),
		slog.Int("statements", len(root.Body.Items)),
		slog.Bool("ignore_standalone", cfg.opts.ignoreStandalone),
		slog.Bool("prevent_indent", cfg.opts.preventIndent))

	return root, nil
}

// parser holds the parser state.
type parser struct {
	tokens []token
	pos    int
}

// parseRoot parses the entire token stream as a single program.
func (p *parser) parseRoot() (*Root, error) {
	start := p.peek().pos

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok)
	}

	return &Root{Body: body, Loc: start}, nil
}

// parseStatements parses statements until a token that ends a program:
// a close tag, an else tag or the end of input.
func (p *parser) parseStatements() (*Statements, error) {
	stmts := &Statements{Loc: p.peek().pos}

	for {
		tok := p.peek()

		var (
			node Node
			err  error
		)

		switch tok.kind {
		case tokContent:
			p.advance()

			node = &Content{Value: tok.text, Original: tok.text, Loc: tok.pos}

		case tokComment:
			p.advance()

			node = &Comment{
				Value: tok.text,
				Strip: Strip{Open: tok.strip, Close: tok.stripClose},
				Loc:   tok.pos,
			}

		case tokOpen, tokOpenUnescaped:
			node, err = p.parseMustache()

		case tokOpenBlock, tokOpenInverse:
			node, err = p.parseBlock()

		case tokOpenRawBlock:
			node, err = p.parseRawBlock()

		case tokOpenPartial:
			node, err = p.parsePartial()

		case tokOpenPartialBlock:
			node, err = p.parsePartialBlock()

		case tokOpenDirective:
			node, err = p.parseDirectiveBlock()

		case tokOpenDecorator:
			return nil, ErrUnsupported.Wrap(
				fmt.Errorf("decorators are not supported"),
			).WithPosition(tok.pos)

		default:
			return stmts, nil
		}

		if err != nil {
			return nil, err
		}

		stmts.Items = append(stmts.Items, node)
	}
}

// parseMustache parses {{expr}}, {{&expr}} and {{{expr}}}.
func (p *parser) parseMustache() (*Mustache, error) {
	open := p.advance()

	path, params, hash, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	want := tokClose
	if open.kind == tokOpenUnescaped {
		want = tokCloseUnescaped
	}

	closing, err := p.expect(want)
	if err != nil {
		return nil, err
	}

	return &Mustache{
		Path:    path,
		Params:  params,
		Hash:    hash,
		Escaped: open.kind == tokOpen && !open.literal,
		Strip:   Strip{Open: open.strip, Close: closing.strip},
		Loc:     open.pos,
	}, nil
}

// openTag is the parsed head of a block-like tag.
type openTag struct {
	path        Node
	params      *Exprs
	hash        *Hash
	blockParams []string
	strip       Strip
	pos         Position
}

// parseOpenTag parses the remainder of a block-like open tag after its
// opening token.
func (p *parser) parseOpenTag(open token) (openTag, error) {
	path, params, hash, err := p.parseCall()
	if err != nil {
		return openTag{}, err
	}

	blockParams, err := p.parseBlockParams()
	if err != nil {
		return openTag{}, err
	}

	closing, err := p.expect(tokClose)
	if err != nil {
		return openTag{}, err
	}

	return openTag{
		path:        path,
		params:      params,
		hash:        hash,
		blockParams: blockParams,
		strip:       Strip{Open: open.strip, Close: closing.strip},
		pos:         open.pos,
	}, nil
}

// parseBlock parses {{#x}}...{{/x}} and the inverted {{^x}}...{{/x}},
// including any {{else}} part.
func (p *parser) parseBlock() (*Block, error) {
	open := p.advance()
	inverted := open.kind == tokOpenInverse

	tag, err := p.parseOpenTag(open)
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	program := &Program{BlockParams: tag.blockParams, Body: body, Loc: body.Loc}

	var (
		inverse      *Inverse
		inverseStrip Strip
	)

	switch next := p.peek(); {
	case next.kind == tokInverse:
		inverse, inverseStrip, err = p.parseInverse()

	case next.kind == tokOpenInverseChain && !inverted:
		inverse, inverseStrip, err = p.parseInverseChain()

	case next.kind == tokOpenInverseChain:
		err = p.unexpected(next)
	}

	if err != nil {
		return nil, err
	}

	closeStrip, err := p.parseCloseBlock(tag.path)
	if err != nil {
		return nil, err
	}

	setChainCloseStrip(inverse, closeStrip)

	block := &Block{
		Path:         tag.path,
		Params:       tag.params,
		Hash:         tag.hash,
		Program:      program,
		Inverse:      inverse,
		OpenStrip:    tag.strip,
		InverseStrip: inverseStrip,
		CloseStrip:   closeStrip,
		Loc:          tag.pos,
	}

	if inverted {
		// The body of {{^x}} renders when x is falsy; an {{else}} part
		// renders when it is truthy.
		block.Inverse = &Inverse{
			BlockParams: program.BlockParams,
			Body:        program.Body,
			Loc:         program.Loc,
		}
		block.Program = nil

		if inverse != nil {
			block.Program = &Program{
				BlockParams: inverse.BlockParams,
				Body:        inverse.Body,
				Loc:         inverse.Loc,
			}
		}
	}

	return block, nil
}

// parseInverse parses {{else}} or {{^}} and the statements that follow.
func (p *parser) parseInverse() (*Inverse, Strip, error) {
	tok := p.advance()

	body, err := p.parseStatements()
	if err != nil {
		return nil, Strip{}, err
	}

	return &Inverse{Body: body, Loc: tok.pos},
		Strip{Open: tok.strip, Close: tok.stripClose}, nil
}

// parseInverseChain parses {{else x}}, which opens a nested block that
// shares the enclosing block's close tag.
func (p *parser) parseInverseChain() (*Inverse, Strip, error) {
	open := p.advance()

	tag, err := p.parseOpenTag(open)
	if err != nil {
		return nil, Strip{}, err
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, Strip{}, err
	}

	var (
		inverse      *Inverse
		inverseStrip Strip
	)

	switch p.peek().kind {
	case tokInverse:
		inverse, inverseStrip, err = p.parseInverse()

	case tokOpenInverseChain:
		inverse, inverseStrip, err = p.parseInverseChain()
	}

	if err != nil {
		return nil, Strip{}, err
	}

	block := &Block{
		Path:         tag.path,
		Params:       tag.params,
		Hash:         tag.hash,
		Program:      &Program{BlockParams: tag.blockParams, Body: body, Loc: body.Loc},
		Inverse:      inverse,
		OpenStrip:    tag.strip,
		InverseStrip: inverseStrip,
		Loc:          tag.pos,
	}

	return &Inverse{
		Body:    &Statements{Items: []Node{block}, Loc: tag.pos},
		Chained: true,
		Loc:     tag.pos,
	}, tag.strip, nil
}

// setChainCloseStrip gives every block nested in an else chain the strip
// flags of the close tag they share.
func setChainCloseStrip(inverse *Inverse, strip Strip) {
	for inverse != nil && inverse.Chained {
		block, ok := inverse.Body.Items[0].(*Block)
		if !ok {
			return
		}

		block.CloseStrip = strip
		inverse = block.Inverse
	}
}

// parseCloseBlock parses {{/name}} and checks it matches the open tag.
func (p *parser) parseCloseBlock(open Node) (Strip, error) {
	start, err := p.expect(tokOpenEndBlock)
	if err != nil {
		return Strip{}, err
	}

	name, err := p.parseExpr()
	if err != nil {
		return Strip{}, err
	}

	closing, err := p.expect(tokClose)
	if err != nil {
		return Strip{}, err
	}

	want, got := nameOf(open), nameOf(name)
	if want != got {
		return Strip{}, ErrMismatchedBlock.Wrap(
			fmt.Errorf("%s doesn't match %s", want, got),
		).WithPosition(start.pos).With(
			slog.String("open", want),
			slog.String("close", got),
		)
	}

	return Strip{Open: start.strip, Close: closing.strip}, nil
}

// parseRawBlock parses {{{{name}}}}raw content{{{{/name}}}}.
func (p *parser) parseRawBlock() (*Block, error) {
	open := p.advance()

	path, params, hash, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	if _, err = p.expect(tokCloseRawBlock); err != nil {
		return nil, err
	}

	body := &Statements{Loc: p.peek().pos}

	if tok := p.peek(); tok.kind == tokContent {
		p.advance()

		body.Items = append(body.Items,
			&Content{Value: tok.text, Original: tok.text, Loc: tok.pos})
	}

	end, err := p.expect(tokEndRawBlock)
	if err != nil {
		return nil, err
	}

	if want := nameOf(path); want != end.text {
		return nil, ErrMismatchedBlock.Wrap(
			fmt.Errorf("%s doesn't match %s", want, end.text),
		).WithPosition(end.pos)
	}

	return &Block{
		Path:    path,
		Params:  params,
		Hash:    hash,
		Program: &Program{Body: body, Loc: body.Loc},
		Loc:     open.pos,
	}, nil
}

// parsePartial parses {{> name context key=value}}.
func (p *parser) parsePartial() (*Partial, error) {
	open := p.advance()

	name, scope, hash, err := p.parsePartialCall()
	if err != nil {
		return nil, err
	}

	closing, err := p.expect(tokClose)
	if err != nil {
		return nil, err
	}

	return &Partial{
		Name:    name,
		Context: scope,
		Hash:    hash,
		Strip:   Strip{Open: open.strip, Close: closing.strip},
		Loc:     open.pos,
	}, nil
}

// parsePartialBlock parses {{#> name context}}default{{/name}}.
func (p *parser) parsePartialBlock() (*PartialBlock, error) {
	open := p.advance()

	name, scope, hash, err := p.parsePartialCall()
	if err != nil {
		return nil, err
	}

	closing, err := p.expect(tokClose)
	if err != nil {
		return nil, err
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	closeStrip, err := p.parseCloseBlock(name)
	if err != nil {
		return nil, err
	}

	return &PartialBlock{
		Name:       name,
		Context:    scope,
		Hash:       hash,
		Program:    &Program{Body: body, Loc: body.Loc},
		OpenStrip:  Strip{Open: open.strip, Close: closing.strip},
		CloseStrip: closeStrip,
		Loc:        open.pos,
	}, nil
}

// parsePartialCall parses a partial name followed by at most one context
// argument and an optional hash.
func (p *parser) parsePartialCall() (Node, Node, *Hash, error) {
	var (
		name Node
		err  error
	)

	if p.peek().kind == tokOpenSexpr {
		name, err = p.parseSubExpression()
	} else {
		name, err = p.parseExpr()
	}

	if err != nil {
		return nil, nil, nil, err
	}

	params, hash, err := p.parseArguments()
	if err != nil {
		return nil, nil, nil, err
	}

	switch n := params.Len(); {
	case n > 1:
		return nil, nil, nil, ErrUnsupported.Wrap(
			fmt.Errorf("unsupported number of partial arguments: %d", n),
		).WithPosition(name.Pos())

	case n == 1:
		return name, params.Items[0], hash, nil
	}

	return name, nil, hash, nil
}

// parseDirectiveBlock parses {{#*inline "name"}}...{{/inline}}.
func (p *parser) parseDirectiveBlock() (*DirectiveBlock, error) {
	open := p.advance()

	tag, err := p.parseOpenTag(open)
	if err != nil {
		return nil, err
	}

	if name := nameOf(tag.path); name != "inline" {
		return nil, ErrUnsupported.Wrap(
			fmt.Errorf("unsupported directive %q", name),
		).WithPosition(tag.pos)
	}

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind == tokInverse || tok.kind == tokOpenInverseChain {
		return nil, p.unexpected(tok)
	}

	closeStrip, err := p.parseCloseBlock(tag.path)
	if err != nil {
		return nil, err
	}

	return &DirectiveBlock{
		Name:   tag.path,
		Params: tag.params,
		Hash:   tag.hash,
		Program: &Program{
			BlockParams: tag.blockParams,
			Body:        body,
			Loc:         body.Loc,
		},
		OpenStrip:  tag.strip,
		CloseStrip: closeStrip,
		Loc:        tag.pos,
	}, nil
}

// parseCall parses a helper name followed by its arguments.
func (p *parser) parseCall() (Node, *Exprs, *Hash, error) {
	path, err := p.parseExpr()
	if err != nil {
		return nil, nil, nil, err
	}

	params, hash, err := p.parseArguments()
	if err != nil {
		return nil, nil, nil, err
	}

	return path, params, hash, nil
}

// parseArguments parses positional arguments followed by key=value pairs.
// Either result is nil when absent.
func (p *parser) parseArguments() (*Exprs, *Hash, error) {
	var (
		params *Exprs
		hash   *Hash
	)

	for {
		tok := p.peek()

		if tok.kind == tokID && p.peekN(1).kind == tokEquals {
			if hash == nil {
				hash = &Hash{Loc: tok.pos}
			}

			p.advance() // key
			p.advance() // '='

			value, err := p.parseParam()
			if err != nil {
				return nil, nil, err
			}

			hash.Pairs = append(hash.Pairs, HashPair{Key: tok.text, Value: value})

			continue
		}

		if !isParamStart(tok.kind) {
			return params, hash, nil
		}

		if hash != nil {
			return nil, nil, p.unexpected(tok)
		}

		value, err := p.parseParam()
		if err != nil {
			return nil, nil, err
		}

		if params == nil {
			params = &Exprs{Loc: tok.pos}
		}

		params.Items = append(params.Items, value)
	}
}

// parseBlockParams parses an optional "as |a b|" clause.
func (p *parser) parseBlockParams() ([]string, error) {
	if p.peek().kind != tokOpenBlockParams {
		return nil, nil
	}

	open := p.advance()

	var names []string

	for p.peek().kind == tokID {
		names = append(names, p.advance().text)
	}

	if _, err := p.expect(tokCloseBlockParams); err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, ErrParse.Wrap(
			fmt.Errorf("empty block parameter list"),
		).WithPosition(open.pos)
	}

	return names, nil
}

// parseParam parses an argument: a sub-expression or a simple expression.
func (p *parser) parseParam() (Node, error) {
	if p.peek().kind == tokOpenSexpr {
		return p.parseSubExpression()
	}

	return p.parseExpr()
}

// parseSubExpression parses "(helper args...)".
func (p *parser) parseSubExpression() (*SubExpression, error) {
	open := p.advance()

	path, params, hash, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	if _, err = p.expect(tokCloseSexpr); err != nil {
		return nil, err
	}

	return &SubExpression{Path: path, Params: params, Hash: hash, Loc: open.pos}, nil
}

// parseExpr parses a path, data path or literal.
func (p *parser) parseExpr() (Node, error) {
	tok := p.peek()

	switch tok.kind {
	case tokID, tokData:
		return p.parsePath()

	case tokString:
		p.advance()

		return &String{Value: tok.text, Loc: tok.pos}, nil

	case tokNumber:
		p.advance()

		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, ErrParse.Wrap(err).WithPosition(tok.pos)
		}

		return &Number{Value: f, Original: tok.text, Loc: tok.pos}, nil

	case tokBoolean:
		p.advance()

		return &Boolean{Value: tok.text == "true", Loc: tok.pos}, nil

	case tokUndefined:
		p.advance()

		return &Undefined{Loc: tok.pos}, nil

	case tokNull:
		p.advance()

		return &Null{Loc: tok.pos}, nil
	}

	return nil, p.unexpected(tok)
}

// parsePath parses "@"? ID (SEP ID)*. Scoping segments (".", "..",
// "this") may only appear before the first named segment.
func (p *parser) parsePath() (*Path, error) {
	start := p.peek()
	path := &Path{Loc: start.pos}

	var original strings.Builder

	if start.kind == tokData {
		p.advance()

		path.Data = true

		original.WriteByte('@')
	}

	named := false

	for {
		tok, err := p.expect(tokID)
		if err != nil {
			return nil, err
		}

		original.WriteString(tok.text)

		seg := Segment{Name: tok.text, Escaped: tok.literal}
		scoping := !seg.Escaped &&
			(seg.Name == "." || seg.Name == ".." || seg.Name == "this")

		if scoping && named {
			return nil, ErrParse.Wrap(
				fmt.Errorf("invalid path: %s", original.String()),
			).WithPosition(start.pos)
		}

		named = named || !scoping
		path.Segments = append(path.Segments, seg)

		if p.peek().kind != tokSep {
			break
		}

		original.WriteString(p.advance().text)
	}

	path.Original = original.String()

	return path, nil
}

// Helper methods

func (p *parser) peek() token {
	return p.peekN(0)
}

func (p *parser) peekN(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}

	return p.tokens[p.pos+n]
}

func (p *parser) advance() token {
	tok := p.peek()

	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, ErrParse.Wrap(
			fmt.Errorf("expected %s, found %s", kind.describe(), tok.describe()),
		).WithPosition(tok.pos)
	}

	return p.advance(), nil
}

func (p *parser) unexpected(tok token) error {
	return ErrParse.Wrap(
		fmt.Errorf("unexpected %s", tok.describe()),
	).WithPosition(tok.pos)
}

func isParamStart(kind tokenKind) bool {
	switch kind {
	case tokID, tokData, tokString, tokNumber, tokBoolean, tokUndefined,
		tokNull, tokOpenSexpr:
		return true
	}

	return false
}

// nameOf returns the source name of a block path or partial name.
func nameOf(node Node) string {
	switch n := node.(type) {
	case *Path:
		return n.Original
	case *String:
		return n.Value
	case *Number:
		return n.Original
	case *Boolean:
		return strconv.FormatBool(n.Value)
	case *Undefined:
		return "undefined"
	case *Null:
		return "null"
	}

	return ""
}

func (t token) describe() string {
	switch t.kind {
	case tokID, tokNumber, tokBoolean, tokUndefined, tokNull:
		return strconv.Quote(t.text)
	case tokString:
		return "string " + strconv.Quote(t.text)
	}

	return t.kind.describe()
}

func (k tokenKind) describe() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokContent:
		return "content"
	case tokComment:
		return "comment"
	case tokOpen, tokOpenUnescaped, tokOpenBlock, tokOpenDirective,
		tokOpenDecorator, tokOpenPartial, tokOpenPartialBlock,
		tokOpenInverse, tokOpenRawBlock:
		return "open tag"
	case tokOpenEndBlock:
		return "close tag"
	case tokOpenInverseChain, tokInverse:
		return "else"
	case tokCloseRawBlock:
		return "'}}}}'"
	case tokEndRawBlock:
		return "raw block end"
	case tokClose:
		return "'}}'"
	case tokCloseUnescaped:
		return "'}}}'"
	case tokOpenSexpr:
		return "'('"
	case tokCloseSexpr:
		return "')'"
	case tokEquals:
		return "'='"
	case tokID:
		return "identifier"
	case tokSep:
		return "separator"
	case tokData:
		return "'@'"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokBoolean:
		return "boolean"
	case tokUndefined:
		return "undefined"
	case tokNull:
		return "null"
	case tokOpenBlockParams:
		return "'as |'"
	case tokCloseBlockParams:
		return "'|'"
	}

	return "token"
}
