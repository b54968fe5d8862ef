package render

import (
	"strings"
)

// Text projects a display tree to plain text. The output is a pure function
// of the tree.
func Text(n *Node) string {
	var b strings.Builder
	writeText(&b, n)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeText(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case NodeRoot:
		for i, child := range n.Children {
			if i > 0 {
				b.WriteString("\n")
			}
			writeText(b, child)
		}
	case NodePlaceholder, NodeStatus:
		b.WriteString(n.Text)
		b.WriteString("\n")
	case NodeError:
		b.WriteString("Error: ")
		b.WriteString(n.Text)
		b.WriteString("\n")
	case NodeProfile:
		b.WriteString(n.Title)
		b.WriteString("\n")
		b.WriteString(n.Text)
		b.WriteString("\n")
	case NodeForm:
		b.WriteString(n.Title)
		b.WriteString("\n")
		for _, child := range n.Children {
			writeText(b, child)
		}
	case NodeAnswerList:
		for _, child := range n.Children {
			writeText(b, child)
		}
	case NodeAnswer:
		b.WriteString("  - ")
		b.WriteString(n.Text)
		if n.Note != "" {
			b.WriteString(" (")
			b.WriteString(n.Note)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
}
