package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for Root.
func (n *Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToMap(n))
}

// ToMap converts a node and its children to native Go maps and slices.
// Every map carries the node kind under "type"; empty fields are omitted.
func ToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}

	m := map[string]any{"type": node.Kind().String()}

	switch n := node.(type) {
	case *Root:
		m["body"] = toList(items(n.Body))

	case *Statements:
		m["items"] = toList(n.Items)

	case *Content:
		m["value"] = n.Value
		if n.Original != n.Value {
			m["original"] = n.Original
		}

	case *Comment:
		m["value"] = n.Value
		putStrip(m, "strip", n.Strip)

	case *Mustache:
		putCall(m, n.Path, n.Params, n.Hash)
		m["escaped"] = n.Escaped
		putStrip(m, "strip", n.Strip)

	case *Block:
		putCall(m, n.Path, n.Params, n.Hash)

		if n.Program != nil {
			m["program"] = ToMap(n.Program)
		}

		if n.Inverse != nil {
			m["inverse"] = ToMap(n.Inverse)
		}

		putStrip(m, "open_strip", n.OpenStrip)
		putStrip(m, "inverse_strip", n.InverseStrip)
		putStrip(m, "close_strip", n.CloseStrip)

	case *Program:
		putBlockParams(m, n.BlockParams)
		m["body"] = toList(items(n.Body))

	case *Inverse:
		putBlockParams(m, n.BlockParams)
		m["body"] = toList(items(n.Body))

		if n.Chained {
			m["chained"] = true
		}

	case *Path:
		m["original"] = n.Original
		if n.Data {
			m["data"] = true
		}

		segs := make([]any, len(n.Segments))
		for i, s := range n.Segments {
			if s.Escaped {
				segs[i] = map[string]any{"name": s.Name, "escaped": true}
			} else {
				segs[i] = s.Name
			}
		}

		m["segments"] = segs

	case *SubExpression:
		putCall(m, n.Path, n.Params, n.Hash)

	case *Exprs:
		m["items"] = toList(n.Items)

	case *Hash:
		m["pairs"] = hashList(n)

	case *Partial:
		m["name"] = ToMap(n.Name)

		if n.Context != nil {
			m["context"] = ToMap(n.Context)
		}

		if n.Hash.Len() > 0 {
			m["hash"] = hashList(n.Hash)
		}

		if n.Indent != "" {
			m["indent"] = n.Indent
		}

		putStrip(m, "strip", n.Strip)

	case *PartialBlock:
		m["name"] = ToMap(n.Name)

		if n.Context != nil {
			m["context"] = ToMap(n.Context)
		}

		if n.Hash.Len() > 0 {
			m["hash"] = hashList(n.Hash)
		}

		m["program"] = ToMap(n.Program)

	case *DirectiveBlock:
		putCall(m, n.Name, n.Params, n.Hash)
		m["program"] = ToMap(n.Program)

	case *Number:
		m["value"] = n.Value
		m["original"] = n.Original

	case *Boolean:
		m["value"] = n.Value

	case *String:
		m["value"] = n.Value
	}

	return m
}

func toList(nodes []Node) []any {
	list := make([]any, len(nodes))
	for i, node := range nodes {
		list[i] = ToMap(node)
	}

	return list
}

func hashList(h *Hash) []any {
	list := make([]any, 0, h.Len())
	for _, pair := range h.Pairs {
		list = append(list, map[string]any{
			"key":   pair.Key,
			"value": ToMap(pair.Value),
		})
	}

	return list
}

func putCall(m map[string]any, path Node, params *Exprs, hash *Hash) {
	m["path"] = ToMap(path)

	if params.Len() > 0 {
		m["params"] = toList(params.Items)
	}

	if hash.Len() > 0 {
		m["hash"] = hashList(hash)
	}
}

func putStrip(m map[string]any, key string, s Strip) {
	if s.Open || s.Close {
		m[key] = map[string]any{"open": s.Open, "close": s.Close}
	}
}

func putBlockParams(m map[string]any, params []string) {
	if len(params) > 0 {
		m["block_params"] = params
	}
}
