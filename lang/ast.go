package lang

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

// Kind discriminates the concrete type of a [Node].
type Kind int

const (
	KindRoot           Kind = iota // root
	KindStatements                 // statements
	KindContent                    // content
	KindComment                    // comment
	KindMustache                   // mustache
	KindBlock                      // block
	KindProgram                    // program
	KindInverse                    // inverse
	KindPath                       // path
	KindSubExpression              // sub_expression
	KindExprs                      // exprs
	KindHash                       // hash
	KindPartial                    // partial
	KindPartialBlock               // partial_block
	KindDirectiveBlock             // directive_block
	KindNumber                     // number
	KindBoolean                    // boolean
	KindString                     // string
	KindUndefined                  // undefined
	KindNull                       // null
)

// Position identifies a location in template source.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Node is implemented by every element of a parsed template.
// Nodes are immutable once the normalization passes have run and may be
// shared between concurrent renders.
type Node interface {
	Kind() Kind
	Pos() Position
}

// Strip records the whitespace control markers ("~") on either side of a
// mustache tag.
type Strip struct {
	Open  bool `json:"open"  yaml:"open"`
	Close bool `json:"close" yaml:"close"`
}

type (
	// Root is the top of a parsed template.
	Root struct {
		Body *Statements
		Loc  Position
	}

	// Statements is an ordered sequence of statement nodes.
	Statements struct {
		Items []Node
		Loc   Position
	}

	// Content is literal template text. Original keeps the text as it was
	// before whitespace control.
	Content struct {
		Value    string
		Original string
		Loc      Position

		leftStripped  bool
		rightStripped bool
	}

	// Comment is a {{! }} or {{!-- --}} tag.
	Comment struct {
		Value string
		Strip Strip
		Loc   Position
	}

	// Mustache is a {{expr}}, {{{expr}}} or {{&expr}} tag.
	Mustache struct {
		Path    Node
		Params  *Exprs
		Hash    *Hash
		Escaped bool
		Strip   Strip
		Loc     Position
	}

	// Block is a {{#path}}...{{/path}} or {{^path}}...{{/path}} section.
	// Program is nil for an inverted section.
	Block struct {
		Path         Node
		Params       *Exprs
		Hash         *Hash
		Program      *Program
		Inverse      *Inverse
		OpenStrip    Strip
		InverseStrip Strip
		CloseStrip   Strip
		Loc          Position
	}

	// Program is the body of a block together with the block parameter
	// names introduced by "as |a b|".
	Program struct {
		BlockParams []string
		Body        *Statements
		Loc         Position
	}

	// Inverse is the {{else}} part of a block. A chained inverse, built
	// from {{else if x}}, holds a single nested Block.
	Inverse struct {
		BlockParams []string
		Body        *Statements
		Chained     bool
		Loc         Position
	}

	// Segment is one component of a path. Escaped segments were written in
	// [brackets] and never carry the special meaning of ".", ".." or "this".
	Segment struct {
		Name    string `json:"name"              yaml:"name"`
		Escaped bool   `json:"escaped,omitempty" yaml:"escaped,omitempty"`
	}

	// Path is a possibly data-prefixed ("@") lookup path.
	Path struct {
		Segments []Segment
		Original string
		Data     bool
		Loc      Position
	}

	// SubExpression is a parenthesized helper call used as an argument.
	SubExpression struct {
		Path   Node
		Params *Exprs
		Hash   *Hash
		Loc    Position
	}

	// Exprs is a positional argument list.
	Exprs struct {
		Items []Node
		Loc   Position
	}

	// HashPair is one key=value argument.
	HashPair struct {
		Key   string
		Value Node
	}

	// Hash is the list of key=value arguments of a call.
	Hash struct {
		Pairs []HashPair
		Loc   Position
	}

	// Partial is a {{> name context key=value}} tag. Indent holds the
	// whitespace preceding a standalone partial.
	Partial struct {
		Name    Node
		Context Node
		Hash    *Hash
		Indent  string
		Strip   Strip
		Loc     Position
	}

	// PartialBlock is a {{#> name}}default{{/name}} section.
	PartialBlock struct {
		Name       Node
		Context    Node
		Hash       *Hash
		Program    *Program
		OpenStrip  Strip
		CloseStrip Strip
		Loc        Position
	}

	// DirectiveBlock is a {{#*inline "name"}}...{{/inline}} section.
	DirectiveBlock struct {
		Name       Node
		Params     *Exprs
		Hash       *Hash
		Program    *Program
		OpenStrip  Strip
		CloseStrip Strip
		Loc        Position
	}

	// Number is a numeric literal.
	Number struct {
		Value    float64
		Original string
		Loc      Position
	}

	// Boolean is a true or false literal.
	Boolean struct {
		Value bool
		Loc   Position
	}

	// String is a quoted string literal.
	String struct {
		Value string
		Loc   Position
	}

	// Undefined is the undefined literal.
	Undefined struct {
		Loc Position
	}

	// Null is the null literal.
	Null struct {
		Loc Position
	}
)

func (*Root) Kind() Kind           { return KindRoot }
func (*Statements) Kind() Kind     { return KindStatements }
func (*Content) Kind() Kind        { return KindContent }
func (*Comment) Kind() Kind        { return KindComment }
func (*Mustache) Kind() Kind       { return KindMustache }
func (*Block) Kind() Kind          { return KindBlock }
func (*Program) Kind() Kind        { return KindProgram }
func (*Inverse) Kind() Kind        { return KindInverse }
func (*Path) Kind() Kind           { return KindPath }
func (*SubExpression) Kind() Kind  { return KindSubExpression }
func (*Exprs) Kind() Kind          { return KindExprs }
func (*Hash) Kind() Kind           { return KindHash }
func (*Partial) Kind() Kind        { return KindPartial }
func (*PartialBlock) Kind() Kind   { return KindPartialBlock }
func (*DirectiveBlock) Kind() Kind { return KindDirectiveBlock }
func (*Number) Kind() Kind         { return KindNumber }
func (*Boolean) Kind() Kind        { return KindBoolean }
func (*String) Kind() Kind         { return KindString }
func (*Undefined) Kind() Kind      { return KindUndefined }
func (*Null) Kind() Kind           { return KindNull }

func (n *Root) Pos() Position           { return n.Loc }
func (n *Statements) Pos() Position     { return n.Loc }
func (n *Content) Pos() Position        { return n.Loc }
func (n *Comment) Pos() Position        { return n.Loc }
func (n *Mustache) Pos() Position       { return n.Loc }
func (n *Block) Pos() Position          { return n.Loc }
func (n *Program) Pos() Position        { return n.Loc }
func (n *Inverse) Pos() Position        { return n.Loc }
func (n *Path) Pos() Position           { return n.Loc }
func (n *SubExpression) Pos() Position  { return n.Loc }
func (n *Exprs) Pos() Position          { return n.Loc }
func (n *Hash) Pos() Position           { return n.Loc }
func (n *Partial) Pos() Position        { return n.Loc }
func (n *PartialBlock) Pos() Position   { return n.Loc }
func (n *DirectiveBlock) Pos() Position { return n.Loc }
func (n *Number) Pos() Position         { return n.Loc }
func (n *Boolean) Pos() Position        { return n.Loc }
func (n *String) Pos() Position         { return n.Loc }
func (n *Undefined) Pos() Position      { return n.Loc }
func (n *Null) Pos() Position           { return n.Loc }

// Len returns the number of positional arguments. It is safe on nil.
func (e *Exprs) Len() int {
	if e == nil {
		return 0
	}

	return len(e.Items)
}

// Len returns the number of key=value arguments. It is safe on nil.
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}

	return len(h.Pairs)
}

// Simple reports whether the path is a single, non-data identifier that
// may name a helper.
func (p *Path) Simple() bool {
	if p.Data || len(p.Segments) != 1 {
		return false
	}

	s := p.Segments[0]

	return s.Escaped || (s.Name != "this" && s.Name != "." && s.Name != "..")
}

// Head returns the name of the first segment, or "" for an empty path.
func (p *Path) Head() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name
}

// Scoped reports whether the path begins with "this", "." or "..", which
// forces a context lookup even for single-segment paths.
func (p *Path) Scoped() bool {
	if p.Data || len(p.Segments) == 0 {
		return false
	}

	s := p.Segments[0]
	if s.Escaped {
		return false
	}

	return s.Name == "this" || s.Name == "." || s.Name == ".."
}

// Items returns the statements of the program body, or nil.
func (p *Program) Items() []Node {
	if p == nil || p.Body == nil {
		return nil
	}

	return p.Body.Items
}

// Items returns the statements of the inverse body, or nil.
func (i *Inverse) Items() []Node {
	if i == nil || i.Body == nil {
		return nil
	}

	return i.Body.Items
}
