package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the template back as Handlebars source. The output is the
// normalized template: whitespace removed by "~" markers and standalone
// detection is not restored.
func (n *Root) Format(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	formatStatements(&sb, items(n.Body))

	_, err := io.WriteString(w, sb.String())

	return err
}

// FormatJSON writes the AST as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, node Node, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ToMap(node), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ToMap(node))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, node Node, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ToMap(node), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// Print writes an indented tree representation of the node to the writer.
func Print(ctx context.Context, w io.Writer, node Node) {
	PrintIndent(ctx, w, node, 0)
}

// PrintIndent writes an indented tree representation of the node to the
// writer, starting at the given depth.
func PrintIndent(ctx context.Context, w io.Writer, node Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	put := writer(w)

	switch n := node.(type) {
	case *Root:
		put("\n", prefix+"Root")
		printAll(ctx, w, items(n.Body), indent+1)

	case *Statements:
		printAll(ctx, w, n.Items, indent)

	case *Content:
		put("\n", prefix+"Content", strconv.Quote(n.Value))

	case *Comment:
		put("\n", prefix+"Comment", strconv.Quote(n.Value))

	case *Mustache:
		label := "Mustache"
		if !n.Escaped {
			label = "Mustache (unescaped)"
		}

		put("\n", prefix+label, formatCall(n.Path, n.Params, n.Hash))

	case *Block:
		put("\n", prefix+"Block", formatCall(n.Path, n.Params, n.Hash))

		if n.Program != nil {
			printBody(ctx, w, "Program", n.Program.BlockParams, items(n.Program.Body), indent+1)
		}

		if n.Inverse != nil {
			printBody(ctx, w, "Inverse", n.Inverse.BlockParams, items(n.Inverse.Body), indent+1)
		}

	case *Partial:
		item := []string{prefix + "Partial", formatPartial(n.Name, n.Context, n.Hash)}
		if n.Indent != "" {
			item = append(item, "indent "+strconv.Quote(n.Indent))
		}

		put("\n", item...)

	case *PartialBlock:
		put("\n", prefix+"PartialBlock", formatPartial(n.Name, n.Context, n.Hash))
		printBody(ctx, w, "Program", nil, items(n.Program.Body), indent+1)

	case *DirectiveBlock:
		put("\n", prefix+"DirectiveBlock", formatCall(n.Name, n.Params, n.Hash))
		printBody(ctx, w, "Program", n.Program.BlockParams, items(n.Program.Body), indent+1)

	default:
		put("\n", prefix+node.Kind().String(), formatExpr(node))
	}
}

func printAll(ctx context.Context, w io.Writer, nodes []Node, indent int) {
	for _, node := range nodes {
		PrintIndent(ctx, w, node, indent)
	}
}

func printBody(
	ctx context.Context,
	w io.Writer,
	label string,
	blockParams []string,
	nodes []Node,
	indent int,
) {
	item := []string{strings.Repeat("  ", indent) + label}
	if len(blockParams) > 0 {
		item = append(item, "as |"+strings.Join(blockParams, " ")+"|")
	}

	writer(w)("\n", item...)
	printAll(ctx, w, nodes, indent+1)
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}

// Source rendering

func formatStatements(sb *strings.Builder, nodes []Node) {
	for _, node := range nodes {
		formatStatement(sb, node)
	}
}

func formatStatement(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Content:
		sb.WriteString(strings.ReplaceAll(n.Value, "{{", `\{{`))

	case *Comment:
		open, closing := "{{!", "}}"
		if strings.Contains(n.Value, "}}") {
			open, closing = "{{!--", "--}}"
		}

		sb.WriteString(withStrip(open, closing, n.Value, n.Strip))

	case *Mustache:
		call := formatCall(n.Path, n.Params, n.Hash)
		if !n.Escaped {
			call = "{" + call + "}"
		}

		sb.WriteString(withStrip("{{", "}}", call, n.Strip))

	case *Block:
		formatBlock(sb, n)

	case *Partial:
		sb.WriteString(n.Indent)
		sb.WriteString(withStrip("{{>", "}}", " "+formatPartial(n.Name, n.Context, n.Hash), n.Strip))

	case *PartialBlock:
		sb.WriteString(withStrip("{{#>", "}}", " "+formatPartial(n.Name, n.Context, n.Hash), n.OpenStrip))
		formatStatements(sb, items(n.Program.Body))
		sb.WriteString(withStrip("{{/", "}}", formatExpr(n.Name), n.CloseStrip))

	case *DirectiveBlock:
		head := formatCall(n.Name, n.Params, n.Hash) + formatBlockParams(n.Program.BlockParams)
		sb.WriteString(withStrip("{{#*", "}}", head, n.OpenStrip))
		formatStatements(sb, items(n.Program.Body))
		sb.WriteString(withStrip("{{/", "}}", formatExpr(n.Name), n.CloseStrip))
	}
}

func formatBlock(sb *strings.Builder, n *Block) {
	head := formatCall(n.Path, n.Params, n.Hash)

	if n.Program == nil {
		sb.WriteString(withStrip("{{^", "}}", head+formatBlockParams(n.Inverse.BlockParams), n.OpenStrip))
		formatStatements(sb, items(n.Inverse.Body))
		sb.WriteString(withStrip("{{/", "}}", formatExpr(n.Path), n.CloseStrip))

		return
	}

	sb.WriteString(withStrip("{{#", "}}", head+formatBlockParams(n.Program.BlockParams), n.OpenStrip))
	formatStatements(sb, items(n.Program.Body))
	formatElse(sb, n.Inverse, n.InverseStrip)
	sb.WriteString(withStrip("{{/", "}}", formatExpr(n.Path), n.CloseStrip))
}

// formatElse writes an {{else}} part, unrolling {{else x}} chains.
func formatElse(sb *strings.Builder, inverse *Inverse, strip Strip) {
	if inverse == nil {
		return
	}

	if !inverse.Chained {
		sb.WriteString(withStrip("{{", "}}", "else", strip))
		formatStatements(sb, items(inverse.Body))

		return
	}

	chained, ok := inverse.Body.Items[0].(*Block)
	if !ok {
		return
	}

	head := "else " + formatCall(chained.Path, chained.Params, chained.Hash) +
		formatBlockParams(chained.Program.BlockParams)
	sb.WriteString(withStrip("{{", "}}", head, chained.OpenStrip))
	formatStatements(sb, items(chained.Program.Body))
	formatElse(sb, chained.Inverse, chained.InverseStrip)
}

func withStrip(open, closing, inner string, strip Strip) string {
	if strip.Open {
		open += "~"
	}

	if strip.Close {
		closing = "~" + closing
	}

	return open + inner + closing
}

func formatBlockParams(params []string) string {
	if len(params) == 0 {
		return ""
	}

	return " as |" + strings.Join(params, " ") + "|"
}

func formatPartial(name, scope Node, hash *Hash) string {
	part := []string{formatExpr(name)}
	if scope != nil {
		part = append(part, formatExpr(scope))
	}

	if hash.Len() > 0 {
		part = append(part, formatHash(hash))
	}

	return strings.Join(part, " ")
}

func formatCall(path Node, params *Exprs, hash *Hash) string {
	part := []string{formatExpr(path)}

	if params != nil {
		for _, p := range params.Items {
			part = append(part, formatExpr(p))
		}
	}

	if hash.Len() > 0 {
		part = append(part, formatHash(hash))
	}

	return strings.Join(part, " ")
}

func formatHash(hash *Hash) string {
	part := make([]string, 0, hash.Len())
	for _, pair := range hash.Pairs {
		part = append(part, pair.Key+"="+formatExpr(pair.Value))
	}

	return strings.Join(part, " ")
}

// formatExpr renders an expression node as source.
func formatExpr(node Node) string {
	switch n := node.(type) {
	case *Path:
		return formatPath(n)
	case *SubExpression:
		return "(" + formatCall(n.Path, n.Params, n.Hash) + ")"
	case *String:
		return `"` + strings.ReplaceAll(n.Value, `"`, `\"`) + `"`
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

func formatPath(p *Path) string {
	var sb strings.Builder

	if p.Data {
		sb.WriteByte('@')
	}

	for i, seg := range p.Segments {
		if i > 0 {
			prev := p.Segments[i-1]
			if !prev.Escaped && (prev.Name == "." || prev.Name == "..") {
				sb.WriteByte('/')
			} else {
				sb.WriteByte('.')
			}
		}

		if seg.Escaped || !isIdentifier(seg.Name) {
			sb.WriteString("[" + strings.ReplaceAll(seg.Name, "]", `\]`) + "]")
		} else {
			sb.WriteString(seg.Name)
		}
	}

	return sb.String()
}

func isIdentifier(s string) bool {
	if s == "." || s == ".." {
		return true
	}

	if s == "" {
		return false
	}

	for _, r := range s {
		if !isIdentifierChar(r) {
			return false
		}
	}

	return true
}
