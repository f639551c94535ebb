package lang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokContent
	tokComment
	tokOpen             // {{ or {{&
	tokOpenUnescaped    // {{{
	tokOpenBlock        // {{#
	tokOpenDirective    // {{#*
	tokOpenDecorator    // {{*
	tokOpenPartial      // {{>
	tokOpenPartialBlock // {{#>
	tokOpenEndBlock     // {{/
	tokOpenInverse      // {{^name
	tokOpenInverseChain // {{else name
	tokInverse          // {{^}} or {{else}}
	tokOpenRawBlock     // {{{{
	tokCloseRawBlock    // }}}}
	tokEndRawBlock      // {{{{/name}}}}
	tokClose            // }}
	tokCloseUnescaped   // }}}
	tokOpenSexpr
	tokCloseSexpr
	tokEquals
	tokID
	tokSep
	tokData
	tokString
	tokNumber
	tokBoolean
	tokUndefined
	tokNull
	tokOpenBlockParams  // as |
	tokCloseBlockParams // |
)

// token is a lexeme produced by the scanner.
//
// For open tags, strip reports a "~" after the braces; for close tags, a
// "~" before them. Tags scanned as a single token (comments, {{else}})
// record their closing "~" in stripClose. literal marks [bracketed]
// identifiers and "{{&" tags.
type token struct {
	text       string
	pos        Position
	kind       tokenKind
	strip      bool
	stripClose bool
	literal    bool
}

// scanner splits template source into tokens. Content outside of tags is
// passed through verbatim; tag interiors are split into expression tokens.
type scanner struct {
	input  []byte
	tokens []token
	pos    int
	line   int
	col    int
}

// scan tokenizes the entire source.
func scan(src string) ([]token, error) {
	s := &scanner{
		input: []byte(src),
		line:  1,
		col:   1,
	}

	for !s.eof() {
		s.scanContent()

		if s.eof() {
			break
		}

		err := s.scanTag()
		if err != nil {
			return nil, err
		}
	}

	s.emit(tokEOF, "", s.position())

	return s.tokens, nil
}

func (s *scanner) emit(kind tokenKind, text string, pos Position) *token {
	s.tokens = append(s.tokens, token{kind: kind, text: text, pos: pos})

	return &s.tokens[len(s.tokens)-1]
}

// scanContent consumes literal text up to the next unescaped "{{".
func (s *scanner) scanContent() {
	start := s.position()

	var sb strings.Builder

	for !s.eof() {
		if s.hasPrefix("{{") {
			break
		}

		// A doubled backslash escapes the escape: keep one, open a tag.
		if s.hasPrefix(`\\{{`) {
			sb.WriteByte('\\')
			s.advanceN(2)

			break
		}

		// An escaped mustache is literal text.
		if s.hasPrefix(`\{{`) {
			s.advance()
			sb.WriteString("{{")
			s.advanceN(2)

			continue
		}

		sb.WriteRune(s.peek())
		s.advance()
	}

	if sb.Len() > 0 {
		s.emit(tokContent, sb.String(), start)
	}
}

// scanTag consumes one tag starting at "{{".
func (s *scanner) scanTag() error {
	start := s.position()

	if s.hasPrefix("{{{{") {
		return s.scanRawBlock(start)
	}

	s.advanceN(2)

	strip := s.accept('~')

	switch {
	case s.hasPrefix("!--"):
		return s.scanComment(start, strip, "--")

	case s.peek() == '!':
		return s.scanComment(start, strip, "")

	case s.peek() == '>':
		s.advance()
		s.emit(tokOpenPartial, "", start).strip = strip

	case s.hasPrefix("#>"):
		s.advanceN(2)
		s.emit(tokOpenPartialBlock, "", start).strip = strip

	case s.hasPrefix("#*"):
		s.advanceN(2)
		s.emit(tokOpenDirective, "", start).strip = strip

	case s.peek() == '#':
		s.advance()
		s.emit(tokOpenBlock, "", start).strip = strip

	case s.peek() == '/':
		s.advance()
		s.emit(tokOpenEndBlock, "", start).strip = strip

	case s.peek() == '^':
		s.advance()

		if s.scanStandaloneInverse(start, strip) {
			return nil
		}

		s.emit(tokOpenInverse, "", start).strip = strip

	case s.peek() == '{':
		s.advance()
		s.emit(tokOpenUnescaped, "", start).strip = strip

	case s.peek() == '&':
		s.advance()
		tok := s.emit(tokOpen, "", start)
		tok.strip = strip
		tok.literal = true

	case s.peek() == '*':
		s.advance()
		s.emit(tokOpenDecorator, "", start).strip = strip

	default:
		isElse, closed := s.scanElse(start, strip)
		if closed {
			return nil
		}

		if !isElse {
			s.emit(tokOpen, "", start).strip = strip
		}
	}

	return s.scanExpression(start, false)
}

// scanStandaloneInverse recognizes "{{^}}" after the caret was consumed.
func (s *scanner) scanStandaloneInverse(start Position, strip bool) bool {
	mark := s.mark()

	s.skipWhitespace()

	closeStrip := s.accept('~')
	if !s.hasPrefix("}}") {
		s.reset(mark)

		return false
	}

	s.advanceN(2)

	tok := s.emit(tokInverse, "", start)
	tok.strip = strip
	tok.stripClose = closeStrip

	return true
}

// scanElse recognizes "{{else}}" and "{{else expr}}". closed reports that
// the whole tag was consumed; otherwise the chained expression follows.
func (s *scanner) scanElse(start Position, strip bool) (isElse, closed bool) {
	mark := s.mark()

	s.skipWhitespace()

	if !s.hasPrefix("else") {
		s.reset(mark)

		return false, false
	}

	s.advanceN(len("else"))

	next := s.peek()
	if !s.eof() && !unicode.IsSpace(next) && next != '~' && next != '}' {
		s.reset(mark)

		return false, false
	}

	if s.scanStandaloneInverse(start, strip) {
		return true, true
	}

	s.emit(tokOpenInverseChain, "", start).strip = strip

	return true, false
}

// scanComment consumes a comment tag. Long comments ("{{!--") end only at
// "--}}", so they may contain "}}".
func (s *scanner) scanComment(start Position, strip bool, dashes string) error {
	s.advance() // skip '!'
	s.advanceN(len(dashes))

	from := s.pos

	for !s.eof() {
		if dashes == "" || s.hasPrefix(dashes) {
			mark := s.mark()
			end := s.pos

			s.advanceN(len(dashes))

			closeStrip := s.accept('~')
			if s.hasPrefix("}}") {
				s.advanceN(2)

				tok := s.emit(tokComment, string(s.input[from:end]), start)
				tok.strip = strip
				tok.stripClose = closeStrip

				return nil
			}

			s.reset(mark)
		}

		s.advance()
	}

	return ErrUnterminated.WithPosition(start).
		With(slog.String("tag", "comment"))
}

// scanRawBlock consumes "{{{{name args}}}}", the raw content and the
// matching "{{{{/name}}}}".
func (s *scanner) scanRawBlock(start Position) error {
	s.advanceN(4)
	s.emit(tokOpenRawBlock, "", start)

	err := s.scanExpression(start, true)
	if err != nil {
		return err
	}

	contentStart := s.position()

	var sb strings.Builder

	depth := 0

	for !s.eof() {
		if s.hasPrefix("{{{{/") {
			mark := s.mark()
			tagPos := s.position()

			s.advanceN(5)

			name := s.scanIdentifier()
			if name != "" && s.hasPrefix("}}}}") {
				s.advanceN(4)

				if depth == 0 {
					if sb.Len() > 0 {
						s.emit(tokContent, sb.String(), contentStart)
					}

					s.emit(tokEndRawBlock, name, tagPos)

					return nil
				}

				depth--

				sb.WriteString(string(s.input[mark.pos:s.pos]))

				continue
			}

			s.reset(mark)
		} else if s.hasPrefix("{{{{") {
			depth++
		}

		sb.WriteRune(s.peek())
		s.advance()
	}

	return ErrUnterminated.WithPosition(start).
		With(slog.String("tag", "raw block"))
}

// scanExpression consumes the inside of a tag up to and including its
// closing braces.
func (s *scanner) scanExpression(start Position, raw bool) error {
	for {
		s.skipWhitespace()

		if s.eof() {
			return ErrUnterminated.WithPosition(start).
				With(slog.String("tag", "mustache"))
		}

		pos := s.position()

		if !raw && s.hasPrefix("}~}}") {
			s.advanceN(4)
			s.emit(tokCloseUnescaped, "", pos).strip = true

			return nil
		}

		strip := s.hasPrefix("~}")

		if strip {
			s.advance()
		}

		switch {
		case raw && s.hasPrefix("}}}}"):
			s.advanceN(4)
			s.emit(tokCloseRawBlock, "", pos)

			return nil

		case s.hasPrefix("}}}"):
			s.advanceN(3)
			s.emit(tokCloseUnescaped, "", pos).strip = strip

			return nil

		case s.hasPrefix("}}"):
			s.advanceN(2)
			s.emit(tokClose, "", pos).strip = strip

			return nil

		case strip:
			return ErrParse.WithPosition(pos).
				With(slog.String("unexpected", "~"))
		}

		err := s.scanExpressionToken(pos)
		if err != nil {
			return err
		}
	}
}

// scanExpressionToken consumes a single token inside a tag.
func (s *scanner) scanExpressionToken(pos Position) error {
	ch := s.peek()

	switch {
	case ch == '(':
		s.advance()
		s.emit(tokOpenSexpr, "(", pos)

	case ch == ')':
		s.advance()
		s.emit(tokCloseSexpr, ")", pos)

	case ch == '=':
		s.advance()
		s.emit(tokEquals, "=", pos)

	case ch == '|':
		s.advance()
		s.emit(tokCloseBlockParams, "|", pos)

	case ch == '@':
		s.advance()
		s.emit(tokData, "@", pos)

	case s.hasPrefix(".."):
		s.advanceN(2)
		s.emit(tokID, "..", pos)

	case ch == '.' && isLookahead(s.peekAt(1)):
		s.advance()
		s.emit(tokID, ".", pos)

	case ch == '.' || ch == '/':
		s.advance()
		s.emit(tokSep, string(ch), pos)

	case ch == '"' || ch == '\'':
		str, err := s.scanString(ch)
		if err != nil {
			return err
		}

		s.emit(tokString, str, pos)

	case ch == '[':
		id, err := s.scanLiteralSegment()
		if err != nil {
			return err
		}

		s.emit(tokID, id, pos).literal = true

	case s.scanBlockParamsOpen():
		s.emit(tokOpenBlockParams, "as |", pos)

	default:
		if kind, text, ok := s.scanLiteral(); ok {
			s.emit(kind, text, pos)

			return nil
		}

		id := s.scanIdentifier()
		if id == "" {
			return ErrParse.WithPosition(pos).
				With(slog.String("unexpected", string(ch)))
		}

		s.emit(tokID, id, pos)
	}

	return nil
}

// scanBlockParamsOpen consumes "as" followed by whitespace and "|".
func (s *scanner) scanBlockParamsOpen() bool {
	if !s.hasPrefix("as") || !unicode.IsSpace(s.peekAt(2)) {
		return false
	}

	mark := s.mark()

	s.advanceN(2)
	s.skipWhitespace()

	if s.peek() != '|' {
		s.reset(mark)

		return false
	}

	s.advance()

	return true
}

// scanLiteral consumes a number, boolean, undefined or null literal when
// it is followed by a literal terminator.
func (s *scanner) scanLiteral() (tokenKind, string, bool) {
	for _, kw := range []struct {
		text string
		kind tokenKind
	}{
		{"true", tokBoolean},
		{"false", tokBoolean},
		{"undefined", tokUndefined},
		{"null", tokNull},
	} {
		if s.hasPrefix(kw.text) && isLiteralEnd(s.peekAt(len(kw.text))) {
			s.advanceN(len(kw.text))

			return kw.kind, kw.text, true
		}
	}

	n := 0
	if s.peekAt(0) == '-' {
		n++
	}

	digits := n
	for isDigit(s.peekAt(n)) {
		n++
	}

	if n == digits {
		return 0, "", false
	}

	if s.peekAt(n) == '.' && isDigit(s.peekAt(n+1)) {
		n++
		for isDigit(s.peekAt(n)) {
			n++
		}
	}

	if !isLiteralEnd(s.peekAt(n)) {
		return 0, "", false
	}

	text := string(s.input[s.pos : s.pos+n])
	s.advanceN(n)

	return tokNumber, text, true
}

// scanString consumes a quoted string, unescaping the quote character.
func (s *scanner) scanString(quote rune) (string, error) {
	start := s.position()

	s.advance() // skip opening quote

	var sb strings.Builder

	for !s.eof() {
		ch := s.peek()

		if ch == '\\' && s.peekAt(1) == quote {
			sb.WriteRune(quote)
			s.advanceN(2)

			continue
		}

		if ch == quote {
			s.advance() // skip closing quote

			return sb.String(), nil
		}

		sb.WriteRune(ch)
		s.advance()
	}

	return "", ErrUnterminated.WithPosition(start).
		With(slog.String("tag", "string"))
}

// scanLiteralSegment consumes a [bracketed] path segment.
func (s *scanner) scanLiteralSegment() (string, error) {
	start := s.position()

	s.advance() // skip '['

	var sb strings.Builder

	for !s.eof() {
		ch := s.peek()

		if ch == '\\' && (s.peekAt(1) == ']' || s.peekAt(1) == '\\') {
			sb.WriteRune(s.peekAt(1))
			s.advanceN(2)

			continue
		}

		if ch == ']' {
			s.advance()

			return sb.String(), nil
		}

		sb.WriteRune(ch)
		s.advance()
	}

	return "", ErrUnterminated.WithPosition(start).
		With(slog.String("tag", "literal segment"))
}

// scanIdentifier consumes a run of identifier characters.
func (s *scanner) scanIdentifier() string {
	start := s.pos

	for !s.eof() && isIdentifierChar(s.peek()) {
		s.advance()
	}

	return string(s.input[start:s.pos])
}

// Helper methods

type scanMark struct {
	pos, line, col int
}

func (s *scanner) mark() scanMark {
	return scanMark{pos: s.pos, line: s.line, col: s.col}
}

func (s *scanner) reset(m scanMark) {
	s.pos, s.line, s.col = m.pos, m.line, m.col
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[s.pos:])

	return r
}

// peekAt returns the byte-offset rune n bytes ahead, or 0 past the end.
func (s *scanner) peekAt(n int) rune {
	if s.pos+n >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[s.pos+n:])

	return r
}

func (s *scanner) hasPrefix(prefix string) bool {
	return strings.HasPrefix(string(s.input[s.pos:min(len(s.input), s.pos+len(prefix))]), prefix)
}

func (s *scanner) accept(ch rune) bool {
	if s.peek() == ch && !s.eof() {
		s.advance()

		return true
	}

	return false
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	r, size := utf8.DecodeRune(s.input[s.pos:])

	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) advanceN(n int) {
	end := min(len(s.input), s.pos+n)
	for s.pos < end {
		s.advance()
	}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) position() Position {
	return Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.col,
	}
}

func (s *scanner) skipWhitespace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

// Character classification

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isIdentifierChar excludes whitespace and the punctuation that has
// meaning inside a tag.
func isIdentifierChar(r rune) bool {
	if unicode.IsSpace(r) || r == 0 {
		return false
	}

	return !strings.ContainsRune("!\"#%&'()*+,./;<=>@[\\]^`{|}~", r)
}

// isLookahead reports whether r may follow a lone "." identifier.
func isLookahead(r rune) bool {
	return r == 0 || unicode.IsSpace(r) || strings.ContainsRune("=~}/.)|", r)
}

// isLiteralEnd reports whether r may follow a literal.
func isLiteralEnd(r rune) bool {
	return r == 0 || unicode.IsSpace(r) || strings.ContainsRune("~})", r)
}
