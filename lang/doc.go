// Package lang is the Handlebars template front end. It turns template
// source into the normalized syntax tree consumed by package eval.
//
// # Pipeline
//
// Parsing runs three stages:
//
//  1. A hand-written scanner splits source into content and tag tokens.
//  2. A recursive descent parser builds the tree.
//  3. Normalization merges adjacent content and applies whitespace
//     control: "~" markers and standalone line stripping.
//
// A tag that is alone on its line (block open, {{else}}, block close,
// partial or comment) is "standalone": its indentation and line break are
// removed. The indentation in front of a standalone partial is recorded
// in [Partial.Indent] so the evaluator can indent every line the partial
// renders.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → Statement*
//	Statement   → Content | Comment | Mustache | Block | RawBlock
//	            | Partial | PartialBlock | Inline
//	Mustache    → '{{' Call '}}' | '{{{' Call '}}}' | '{{&' Call '}}'
//	Block       → '{{#' Call BlockParams? '}}' Program Else? '{{/' Path '}}'
//	            | '{{^' Call BlockParams? '}}' Program Else? '{{/' Path '}}'
//	Else        → ('{{else}}' | '{{^}}') Program
//	            | '{{else' Call BlockParams? '}}' Program Else?
//	RawBlock    → '{{{{' Call '}}}}' <raw text> '{{{{/' Path '}}}}'
//	Partial     → '{{>' Name Param? Hash? '}}'
//	PartialBlock→ '{{#>' Name Param? Hash? '}}' Program '{{/' Name '}}'
//	Inline      → '{{#*inline' String '}}' Program '{{/inline}}'
//	Call        → Expr Param* Hash?
//	Param       → Expr | '(' Call ')'
//	Hash        → (ID '=' Param)+
//	BlockParams → 'as' '|' ID+ '|'
//	Expr        → Path | '@' Path | String | Number | Boolean
//	            | 'undefined' | 'null'
//	Path        → Segment (('.' | '/') Segment)*
//	Segment     → ID | '[' <literal> ']' | '.' | '..' | 'this'
//
// Any tag may carry "~" just inside its braces ("{{~" or "~}}") to strip
// all whitespace on that side. "\{{" escapes a mustache.
//
// # Caching
//
// [ParseReader] caches parsed trees keyed by a hash of the source and the
// parse options. Trees are immutable once returned.
package lang
