package lang

import (
	"strings"
	"unicode"
)

// whitespaceControl removes the whitespace selected by "~" markers and by
// standalone tags (block, else, partial and comment tags alone on a line).
// It mutates Content values in place; Content.Original is left untouched
// so standalone detection always sees the source text.
type whitespaceControl struct {
	opts     optionsKey
	rootSeen bool
}

// stripInfo is what a statement reports to its enclosing program.
type stripInfo struct {
	open             bool
	close            bool
	openStandalone   bool
	closeStandalone  bool
	inlineStandalone bool
}

func newWhitespaceControl(opts optionsKey) *whitespaceControl {
	return &whitespaceControl{opts: opts}
}

func (w *whitespaceControl) apply(root *Root) {
	w.program(root.Body)
}

func (w *whitespaceControl) program(stmts *Statements) {
	isRoot := !w.rootSeen
	w.rootSeen = true

	body := items(stmts)
	standalone := !w.opts.ignoreStandalone

	for i, current := range body {
		strip, ok := w.accept(current)
		if !ok {
			continue
		}

		prevWS := isPrevWhitespace(body, i, isRoot)
		nextWS := isNextWhitespace(body, i, isRoot)

		openStandalone := strip.openStandalone && prevWS
		closeStandalone := strip.closeStandalone && nextWS
		inlineStandalone := strip.inlineStandalone && prevWS && nextWS

		if strip.close {
			omitRight(body, i, true)
		}

		if strip.open {
			omitLeft(body, i, true)
		}

		if standalone && inlineStandalone {
			omitRight(body, i, false)

			if omitLeft(body, i, false) {
				if partial, ok := current.(*Partial); ok {
					w.indentPartial(partial, body[i-1].(*Content))
				}
			}
		}

		if standalone && openStandalone {
			first, _ := blockBodies(current)
			omitRight(first, -1, false)
			omitLeft(body, i, false)
		}

		if standalone && closeStandalone {
			_, last := blockBodies(current)
			omitRight(body, i, false)
			omitLeft(last, len(last), false)
		}
	}
}

// indentPartial records the indentation stripped from in front of a
// standalone partial.
func (w *whitespaceControl) indentPartial(partial *Partial, prev *Content) {
	trimmed := strings.TrimRight(prev.Original, " \t")
	indent := prev.Original[len(trimmed):]

	if w.opts.preventIndent {
		prev.Value += indent

		return
	}

	partial.Indent = indent
}

func (w *whitespaceControl) accept(node Node) (stripInfo, bool) {
	switch n := node.(type) {
	case *Block:
		return w.block(n.Program, n.Inverse, n.OpenStrip, n.InverseStrip, n.CloseStrip), true

	case *PartialBlock:
		return w.block(n.Program, nil, n.OpenStrip, Strip{}, n.CloseStrip), true

	case *DirectiveBlock:
		return w.block(n.Program, nil, n.OpenStrip, Strip{}, n.CloseStrip), true

	case *Mustache:
		return stripInfo{open: n.Strip.Open, close: n.Strip.Close}, true

	case *Partial:
		return stripInfo{
			open:             n.Strip.Open,
			close:            n.Strip.Close,
			inlineStandalone: true,
		}, true

	case *Comment:
		return stripInfo{
			open:             n.Strip.Open,
			close:            n.Strip.Close,
			inlineStandalone: true,
		}, true
	}

	return stripInfo{}, false
}

func (w *whitespaceControl) block(
	program *Program,
	inverse *Inverse,
	openStrip, inverseStrip, closeStrip Strip,
) stripInfo {
	if program != nil {
		w.program(program.Body)
	}

	if inverse != nil {
		w.program(inverse.Body)
	}

	// main is the body that follows the open tag. An else part exists
	// only when both bodies are present.
	var main []Node

	switch {
	case program != nil:
		main = items(program.Body)
	case inverse != nil:
		main = items(inverse.Body)
		inverse = nil
	}

	var firstInverse, lastInverse []Node

	if inverse != nil {
		firstInverse = items(inverse.Body)
		lastInverse = firstInverse

		if inverse.Chained {
			if chained, ok := firstInverse[0].(*Block); ok && chained.Program != nil {
				firstInverse = items(chained.Program.Body)
				lastInverse = firstInverse
			}
		}
	}

	closeBody := main
	if inverse != nil {
		closeBody = firstInverse
	}

	strip := stripInfo{
		open:            openStrip.Open,
		close:           closeStrip.Close,
		openStandalone:  isNextWhitespace(main, -1, false),
		closeStandalone: isPrevWhitespace(closeBody, len(closeBody), false),
	}

	if openStrip.Close {
		omitRight(main, -1, true)
	}

	if inverse == nil {
		if closeStrip.Open {
			omitLeft(main, len(main), true)
		}

		return strip
	}

	if inverseStrip.Open {
		omitLeft(main, len(main), true)
	}

	if inverseStrip.Close {
		omitRight(firstInverse, -1, true)
	}

	if closeStrip.Open {
		omitLeft(lastInverse, len(lastInverse), true)
	}

	// A standalone {{else}} line.
	if !w.opts.ignoreStandalone &&
		isPrevWhitespace(main, len(main), false) &&
		isNextWhitespace(firstInverse, -1, false) {
		omitLeft(main, len(main), false)
		omitRight(firstInverse, -1, false)
	}

	return strip
}

// blockBodies returns the statements that follow the open tag and those
// that precede the close tag of a block-like node.
func blockBodies(node Node) (first, last []Node) {
	switch n := node.(type) {
	case *Block:
		program, inverse := items(n.Program.body()), items(n.Inverse.body())

		first, last = program, inverse
		if n.Program == nil {
			first = inverse
		}

		if n.Inverse == nil {
			last = program
		}

	case *PartialBlock:
		first = items(n.Program.Body)
		last = first

	case *DirectiveBlock:
		first = items(n.Program.Body)
		last = first
	}

	return first, last
}

func (p *Program) body() *Statements {
	if p == nil {
		return nil
	}

	return p.Body
}

func (i *Inverse) body() *Statements {
	if i == nil {
		return nil
	}

	return i.Body
}

func items(stmts *Statements) []Node {
	if stmts == nil {
		return nil
	}

	return stmts.Items
}

// isPrevWhitespace reports whether the content before body[i] ends with a
// line break followed only by whitespace. At the start of the template a
// whitespace-only prefix also qualifies.
func isPrevWhitespace(body []Node, i int, isRoot bool) bool {
	if i-1 < 0 || i-1 >= len(body) {
		return isRoot
	}

	prev, ok := body[i-1].(*Content)
	if !ok {
		return false
	}

	tail := prev.Original[len(strings.TrimRightFunc(prev.Original, unicode.IsSpace)):]

	if i-2 >= 0 || !isRoot {
		return strings.Contains(tail, "\n")
	}

	return strings.Contains(tail, "\n") || len(tail) == len(prev.Original)
}

// isNextWhitespace reports whether the content after body[i] starts with
// whitespace up to a line break. At the end of the template a
// whitespace-only suffix also qualifies.
func isNextWhitespace(body []Node, i int, isRoot bool) bool {
	if i+1 < 0 || i+1 >= len(body) {
		return isRoot
	}

	next, ok := body[i+1].(*Content)
	if !ok {
		return false
	}

	head := next.Original[:len(next.Original)-len(strings.TrimLeftFunc(next.Original, unicode.IsSpace))]

	if i+2 < len(body) || !isRoot {
		return strings.Contains(head, "\n")
	}

	return strings.Contains(head, "\n") || len(head) == len(next.Original)
}

// omitRight strips leading whitespace from the content after body[i]:
// all of it when multiple is set, otherwise spaces up to one line break.
func omitRight(body []Node, i int, multiple bool) {
	if i+1 < 0 || i+1 >= len(body) {
		return
	}

	current, ok := body[i+1].(*Content)
	if !ok || (!multiple && current.rightStripped) {
		return
	}

	original := current.Value

	if multiple {
		current.Value = strings.TrimLeftFunc(current.Value, unicode.IsSpace)
	} else {
		v := strings.TrimLeft(current.Value, " \t")
		v = strings.TrimPrefix(v, "\r")
		current.Value = strings.TrimPrefix(v, "\n")
	}

	current.rightStripped = current.Value != original
}

// omitLeft strips trailing whitespace from the content before body[i]:
// all of it when multiple is set, otherwise trailing spaces and tabs. It
// reports whether anything was removed.
func omitLeft(body []Node, i int, multiple bool) bool {
	if i-1 < 0 || i-1 >= len(body) {
		return false
	}

	current, ok := body[i-1].(*Content)
	if !ok || (!multiple && current.leftStripped) {
		return false
	}

	original := current.Value

	if multiple {
		current.Value = strings.TrimRightFunc(current.Value, unicode.IsSpace)
	} else {
		current.Value = strings.TrimRight(current.Value, " \t")
	}

	current.leftStripped = current.Value != original

	return current.leftStripped
}
