// Package eval renders parsed Handlebars templates.
//
// [Apply] walks a tree produced by package lang against an input [Value],
// a registry of [Helpers] and a registry of [Partials]. The registries are
// only read, so they may be shared by concurrent renders; all mutable
// render state lives in an evaluator private to one call.
//
// # Values
//
// Template data is a small dynamic model: null, booleans, numbers,
// strings, safe strings, sequences, ordered mappings, callables and the
// options record passed to helpers. [FromGo] converts ordinary Go values,
// including structs and [yaml.MapSlice], and [Value.Native] converts back.
//
// Falsy values are null, false and the empty sequence. Zero, the empty
// string and an empty mapping are truthy.
//
// # Scope
//
// A render keeps three stacks:
//
//   - the context stack, addressed by "this", "." and "../";
//   - the data frames holding "@" variables such as @index and @root;
//   - the block parameters bound by "as |x y|".
//
// A simple path is resolved against block parameters first, then against
// the helper registries, and finally against the current context.
//
// # Helpers
//
// A [Helper] declares an arity. The evaluator fits the call site's
// arguments to it: missing arguments are padded with null, the current
// context is prepended when the helper wants more than the arguments and
// the options, and the options come last. [Variadic] helpers receive every
// argument followed by the options.
//
// Unknown names are handled by the helperMissing and blockHelperMissing
// helpers, both of which may be replaced by registering a helper of the
// same name.
//
// # Errors
//
// Rendering fails with a [*MissingHelperError], a [*MissingPartialError]
// or an [*ArityError]. Nested partial calls are limited by [WithMaxDepth]
// and fail with [ErrMaxDepth]. Errors returned by user helpers are passed
// through unchanged.
package eval
