// Package script defines helpers as expr-lang expressions.
//
// Helper files are YAML lists:
//
//	# helpers.yaml
//	- name: fullName
//	  expr: first + " " + last
//	- name: shout
//	  expr: upper(string(args[0])) + (hash.mark ?? "!")
//	- name: bold
//	  expr: safe("<b>" + fn() + "</b>")
//
// An expression sees these names:
//
//	this     the current context
//	args     the explicit arguments
//	hash     the hash arguments
//	data     the "@" variables
//	name     the name the helper was called by
//	fn       renders the main block, with the current context or an item
//	inverse  renders the else block
//	safe     marks a string as not to be escaped
//	escape   HTML-escapes a value
//	lookup   reads a field of a value the way a path segment would
//
// Any other identifier not bound by let reads a field of the current
// context: "first" means "this.first". Builtin functions such as upper
// or join are still available when called.
//
// A result wrapped in safe, or any string result of a definition with
// "safe: true", is not escaped. Everything else follows the usual
// mustache escaping.
package script
