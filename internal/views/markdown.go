// ABOUTME: Converts markdown job descriptions and bios to plain terminal text
// ABOUTME: Walks the goldmark AST; lists, quotes and code blocks keep their shape

package views

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New().Parser()

// Markdown renders src as plain text. Emphasis markers are dropped and link
// targets follow their text in parentheses.
func Markdown(src string) string {
	source := []byte(src)
	doc := markdownParser.Parse(text.NewReader(source))
	return strings.TrimRight(blocks(doc, source, "\n\n"), "\n")
}

func blocks(parent ast.Node, source []byte, sep string) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := block(n, source); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func block(n ast.Node, source []byte) string {
	switch node := n.(type) {
	case *ast.Heading:
		return strings.ToUpper(inline(node, source))
	case *ast.Paragraph, *ast.TextBlock:
		return inline(node, source)
	case *ast.List:
		return list(node, source)
	case *ast.Blockquote:
		return prefixLines(blocks(node, source, "\n\n"), "> ", "> ")
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		return prefixLines(strings.TrimRight(rawLines(node, source), "\n"), "    ", "    ")
	case *ast.ThematicBreak:
		return "----"
	default:
		return blocks(node, source, "\n\n")
	}
}

func list(l *ast.List, source []byte) string {
	sep := "\n"
	if !l.IsTight {
		sep = "\n\n"
	}
	var items []string
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		body := blocks(item, source, "\n")
		items = append(items, prefixLines(body, marker, strings.Repeat(" ", len(marker))))
	}
	return strings.Join(items, sep)
}

func inline(parent ast.Node, source []byte) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.Link:
			label := inline(node, source)
			dest := string(node.Destination)
			b.WriteString(label)
			if dest != "" && dest != label {
				fmt.Fprintf(&b, " (%s)", dest)
			}
		case *ast.AutoLink:
			b.Write(node.URL(source))
		case *ast.RawHTML:
		default:
			b.WriteString(inline(node, source))
		}
	}
	return b.String()
}

func rawLines(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		if line == "" {
			lines[i] = strings.TrimRight(p, " ")
			continue
		}
		lines[i] = p + line
	}
	return strings.Join(lines, "\n")
}
