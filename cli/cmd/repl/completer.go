package repl

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mvz/haparanda/eval"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "helpers", "partials", "partial", "data", "edit", "clear", "quit",
}

// dataNames are the data variables the built-in helpers define.
var dataNames = []string{"@index", "@key", "@first", "@last", "@root", "@partial-block"}

// builtinNames are the names of the built-in helpers.
var builtinNames = slices.Sorted(maps.Keys(eval.Builtins()))

// tagStart returns the byte offset just after the "{{" that opens the tag
// holding the cursor, or -1 if the cursor is in plain content.
func tagStart(input string, cursor int) int {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := strings.LastIndex(input[:cursor], "{{")
	if open < 0 || strings.Contains(input[open:cursor], "}}") {
		return -1
	}

	for open+2 < cursor && input[open+2] == '{' {
		open++
	}

	return open + 2
}

// isWordBoundary reports whether r ends a completion word. Path separators
// are boundaries so each segment completes on its own; hyphens and "@" are
// part of names.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n',
		'{', '}', '(', ')', '[', ']',
		'.', '/', '=', '|', '~',
		'#', '^', '>', '&', '!', '*',
		'"', '\'':
		return true
	}

	return false
}

// isPathSeparator reports whether r separates the segments of a path.
func isPathSeparator(r rune) bool { return r == '.' || r == '/' }

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the path segments leading up to the word starting at
// wordStart. For "{{#each people.0.na" with the word "na" it returns
// ["people", "0"]. It returns nil for a word that starts a path.
func parentPath(input string, wordStart int) []string {
	if wordStart == 0 {
		return nil
	}

	if r, _ := utf8.DecodeLastRuneInString(input[:wordStart]); !isPathSeparator(r) {
		return nil
	}

	pos := wordStart

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:pos])
		if isWordBoundary(r) && !isPathSeparator(r) {
			break
		}

		pos -= size
	}

	path := strings.FieldsFunc(input[pos:wordStart], isPathSeparator)

	return slices.DeleteFunc(path, func(s string) bool { return s == "this" })
}

// tagKind classifies the text between a tag's opening braces and the
// current word.
type tagKind int

const (
	tagExpr    tagKind = iota // helper or path
	tagBlock                  // block helper after "#"
	tagPartial                // partial name after ">"
	tagClose                  // closing "/"
)

func classify(input string, start, wordStart int) tagKind {
	lead := strings.TrimSpace(strings.TrimLeft(input[start:wordStart], "~ \t"))

	switch {
	case lead == ">" || lead == "#>":
		return tagPartial
	case lead == "#" || lead == "#*":
		return tagBlock
	case lead == "/":
		return tagClose
	default:
		return tagExpr
	}
}

// childNames returns the keys of the value at path within v.
func childNames(v eval.Value, path []string) []string {
	for _, seg := range path {
		v = v.Get(seg)
	}

	switch v.Kind() {
	case eval.KindMapping:
		return v.Map().Keys()
	case eval.KindSequence:
		names := make([]string, v.Len())
		for i := range names {
			names[i] = strconv.Itoa(i)
		}

		return names
	default:
		return nil
	}
}

// candidateNames returns the completions for a word in a tag of the given
// kind, after the given path.
func (m model) candidateNames(kind tagKind, parent []string) []string {
	if len(parent) > 0 {
		return childNames(m.value, parent)
	}

	helpers := append(slices.Clone(builtinNames), m.compiler.Helpers()...)

	switch kind {
	case tagPartial:
		return m.compiler.Partials()
	case tagBlock, tagClose:
		return helpers
	default:
		names := append(helpers, childNames(m.value, nil)...)

		return append(names, dataNames...)
	}
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Templates complete only inside a tag. An empty word lists every
// candidate after a path separator or a partial marker, and nothing
// elsewhere so the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" || strings.TrimSpace(input[:wordStart]) != "" {
			return nil, nil, wordStart, wordEnd
		}

		return fuzzy.Find(word, ctrlCommands), ctrlCommands, wordStart, wordEnd
	}

	start := tagStart(input, cursor)
	if start < 0 {
		return nil, nil, wordStart, wordEnd
	}

	kind := classify(input, start, wordStart)
	parent := parentPath(input, wordStart)
	candidates = dedupe(m.candidateNames(kind, parent))

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if len(parent) == 0 && kind != tagPartial {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// dedupe removes repeated names, keeping the first of each.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))

	return slices.DeleteFunc(names, func(s string) bool {
		if _, ok := seen[s]; ok {
			return true
		}

		seen[s] = struct{}{}

		return false
	})
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within the given terminal width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
