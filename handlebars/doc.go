// Package handlebars compiles and renders Handlebars templates.
//
// A [Compiler] owns a registry of helpers and partials. [Compiler.Compile]
// parses a template into a [Template] bound to the compiler, and
// [Template.Call] renders it:
//
//	c := handlebars.New()
//	_ = c.RegisterPartial(ctx, "user", "{{name}} <{{email}}>")
//
//	t, err := c.Compile(ctx, "To: {{> user}}")
//	if err != nil {
//		return err
//	}
//
//	out, err := t.Call(ctx, map[string]any{"name": "Ada", "email": "ada@example.com"})
//
// Every call takes a snapshot of the registries, so registering helpers
// or partials while templates render is safe and never affects a render
// already in progress.
package handlebars
