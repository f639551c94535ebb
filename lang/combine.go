package lang

// combineContent merges runs of adjacent Content nodes in stmts and every
// nested program, so each run of literal text is a single node.
func combineContent(stmts *Statements) {
	if stmts == nil {
		return
	}

	items := stmts.Items[:0]

	for _, item := range stmts.Items {
		if c, ok := item.(*Content); ok && len(items) > 0 {
			if prev, ok := items[len(items)-1].(*Content); ok {
				prev.Value += c.Value
				prev.Original += c.Original

				continue
			}
		}

		combineChildren(item)

		items = append(items, item)
	}

	clear(stmts.Items[len(items):])
	stmts.Items = items
}

func combineChildren(node Node) {
	switch n := node.(type) {
	case *Block:
		if n.Program != nil {
			combineContent(n.Program.Body)
		}

		if n.Inverse != nil {
			combineContent(n.Inverse.Body)
		}

	case *PartialBlock:
		combineContent(n.Program.Body)

	case *DirectiveBlock:
		combineContent(n.Program.Body)
	}
}
