package script

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/mvz/haparanda/log"
)

// scanner records the highest args index an expression reads and the
// names it declares with let.
type scanner struct {
	locals map[string]bool
	maxArg int
}

// Visit implements ast.Visitor for scanner.
func (s *scanner) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.VariableDeclaratorNode:
		s.locals[n.Name] = true

	case *ast.MemberNode:
		ident, ok := n.Node.(*ast.IdentifierNode)
		if !ok || ident.Value != "args" {
			return
		}

		if index, ok := n.Property.(*ast.IntegerNode); ok && index.Value > s.maxArg {
			s.maxArg = index.Value
		}
	}
}

// thisPatcher rewrites identifiers the environment does not define into
// lookups on the current context, so "title" reads "this.title". Builtin
// calls parse to their own node type and are never seen here.
type thisPatcher struct {
	locals map[string]bool
	logger log.Logger
}

// Visit implements ast.Visitor for thisPatcher.
func (p *thisPatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	if names[ident.Value] || p.locals[ident.Value] {
		return
	}

	ast.Patch(node, &ast.MemberNode{
		Node:     &ast.IdentifierNode{Value: "this"},
		Property: &ast.StringNode{Value: ident.Value},
		Optional: true,
	})

	p.logger.Trace("patch identifier", slog.String("name", ident.Value))
}
