package lexical

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/markdown"
	"notebook-markdown-be/pkg/notebook"
)

const diagnosticsModule = "lexical"

// Parser converts a Lexical editor state to notebook cells.
type Parser struct {
	diagnostics markdown.Diagnostics
}

// NewParser creates a new parser instance. Unsupported nodes are reported
// to diagnostics, which may be nil.
func NewParser(diagnostics markdown.Diagnostics) *Parser {
	return &Parser{diagnostics: diagnostics}
}

// IsLexical is a quick check for serialized editor state.
func IsLexical(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), `{"root":`)
}

// Parse converts a Lexical JSON string to cells
func (p *Parser) Parse(jsonContent string) ([]notebook.Cell, error) {
	var root LexicalRoot
	if err := json.Unmarshal([]byte(jsonContent), &root); err != nil {
		return nil, fmt.Errorf("failed to parse lexical json: %w", err)
	}
	if root.Root.Type != "root" {
		return nil, fmt.Errorf("lexical state has no root node")
	}

	cells := make([]notebook.Cell, 0, len(root.Root.Children))
	for _, child := range root.Root.Children {
		cells = p.walkBlock(child, cells)
	}
	return cells, nil
}

// ParseNotebook builds a notebook with the default time range. When title
// is empty a leading h1 is taken as the title.
func (p *Parser) ParseNotebook(jsonContent, title string) (notebook.NewNotebook, error) {
	cells, err := p.Parse(jsonContent)
	if err != nil {
		return notebook.NewNotebook{}, err
	}
	if title == "" && len(cells) > 0 {
		if h, ok := cells[0].(*notebook.HeadingCell); ok && h.HeadingType == notebook.H1 {
			title = h.Content()
			cells = cells[1:]
		}
	}
	return notebook.NewNotebook{
		Title:     title,
		Cells:     cells,
		TimeRange: notebook.DefaultTimeRange(),
	}, nil
}

func (p *Parser) warn(message string, details map[string]interface{}) {
	if p.diagnostics != nil {
		p.diagnostics.Warn(diagnosticsModule, message, details)
	}
}

func (p *Parser) walkBlock(node Node, cells []notebook.Cell) []notebook.Cell {
	switch node.Type {
	case "paragraph", "quote":
		text, f := p.inlineContent(node.Children)
		// Empty paragraphs are vertical spacing in the editor.
		if text == "" {
			return cells
		}
		return append(cells, notebook.NewTextCell(text, f))

	case "heading":
		text, f := p.inlineContent(node.Children)
		return append(cells, notebook.NewHeadingCell(headingType(node.Tag), text, f))

	case "code":
		return append(cells, p.codeBlock(node))

	case "list":
		return p.walkList(node, nil, cells)

	case "horizontalrule":
		return append(cells, &notebook.DividerCell{})

	case "image":
		if node.Src == "" {
			p.warn("ignoring image without a source", nil)
			return cells
		}
		return append(cells, notebook.NewImageCell(node.Src))

	case "table":
		p.warn("ignoring table, tables are not supported", nil)
		return cells

	default:
		p.warn("ignoring unsupported block node", map[string]interface{}{"node_type": node.Type})
		return cells
	}
}

func headingType(tag string) notebook.HeadingType {
	switch tag {
	case "h1":
		return notebook.H1
	case "h2":
		return notebook.H2
	default:
		return notebook.H3
	}
}

func (p *Parser) codeBlock(node Node) *notebook.CodeCell {
	var sb strings.Builder
	for _, child := range node.Children {
		switch child.Type {
		case "linebreak":
			sb.WriteString("\n")
		case "tab":
			sb.WriteString("\t")
		default:
			sb.WriteString(child.Text)
		}
	}

	var syntax *string
	if node.Language != "" {
		syntax = notebook.Ptr(node.Language)
	}
	return notebook.NewCodeCell(sb.String(), syntax)
}

// walkList emits one cell per list item. A list item holding only a nested
// list is how the editor indents, so it produces no cell of its own.
func (p *Parser) walkList(node Node, level *uint8, cells []notebook.Cell) []notebook.Cell {
	number := node.Start
	if number <= 0 {
		number = 1
	}

	for _, item := range node.Children {
		if item.Type != "listitem" {
			continue
		}

		var content, nested []Node
		for _, child := range item.Children {
			if child.Type == "list" {
				nested = append(nested, child)
			} else {
				content = append(content, child)
			}
		}

		if len(content) > 0 || len(nested) == 0 {
			if item.Value > 0 {
				number = item.Value
			}
			text, f := p.inlineContent(content)
			cells = append(cells, listItem(node.ListType, item.Checked, number, level, text, f))
			number++
		}

		for _, child := range nested {
			cells = p.walkList(child, nextLevel(level), cells)
		}
	}
	return cells
}

func listItem(listType string, checked bool, number int, level *uint8, text string, f formatting.Formatting) notebook.Cell {
	switch listType {
	case "check":
		cell := notebook.NewCheckboxCell(checked, text, f)
		cell.Level = level
		return cell
	case "number":
		cell := notebook.NewListItemCell(notebook.Ordered, text, f)
		if number <= math.MaxUint16 {
			cell.StartNumber = notebook.Ptr(uint16(number))
		}
		cell.Level = level
		return cell
	default:
		cell := notebook.NewListItemCell(notebook.Unordered, text, f)
		cell.Level = level
		return cell
	}
}

func nextLevel(level *uint8) *uint8 {
	if level == nil {
		return notebook.Ptr(uint8(1))
	}
	if *level == math.MaxUint8 {
		return level
	}
	return notebook.Ptr(*level + 1)
}

// inlineText accumulates text and the annotations that move the active
// formatting from one text node to the next.
type inlineText struct {
	sb     strings.Builder
	length uint32
	format formatting.Formatting
	active formatting.ActiveFormatting
}

func (in *inlineText) annotate(a formatting.Annotation) {
	in.format = append(in.format, formatting.NewAnnotationWithOffset(in.length, a))
	in.active = in.active.Apply(a)
}

func (in *inlineText) write(text string, want formatting.ActiveFormatting) {
	if text == "" {
		return
	}
	// Adjacent links need a close before the next open.
	if in.active.Link != nil && want.Link != nil && *in.active.Link != *want.Link {
		in.annotate(formatting.EndLink())
	}
	for _, a := range want.Diff(in.active) {
		in.annotate(a)
	}
	in.sb.WriteString(text)
	in.length += formatting.CharCount(text)
}

func (in *inlineText) close() (string, formatting.Formatting) {
	for _, a := range (formatting.ActiveFormatting{}).Diff(in.active) {
		in.annotate(a)
	}
	return in.sb.String(), in.format
}

func (p *Parser) inlineContent(nodes []Node) (string, formatting.Formatting) {
	var in inlineText
	p.walkInline(nodes, &in, nil)
	return in.close()
}

func (p *Parser) walkInline(nodes []Node, in *inlineText, link *string) {
	for _, node := range nodes {
		switch node.Type {
		case "text", "code-highlight":
			in.write(node.Text, textFormatting(node, link))
		case "linebreak":
			in.write("\n", in.active.WithLink(link))
		case "tab":
			in.write("\t", in.active.WithLink(link))
		case "link", "autolink":
			url := node.URL
			p.walkInline(node.Children, in, &url)
		default:
			p.warn("ignoring unsupported inline node", map[string]interface{}{"node_type": node.Type})
		}
	}
}

func textFormatting(node Node, link *string) formatting.ActiveFormatting {
	bits := node.formatBits()
	return formatting.ActiveFormatting{
		Bold:          bits&FormatBold != 0,
		Italics:       bits&FormatItalic != 0,
		Strikethrough: bits&FormatStrikethrough != 0,
		Underline:     bits&FormatUnderline != 0,
		Code:          bits&FormatCode != 0,
		Highlight:     bits&FormatHighlight != 0 || ParseStyle(node.Style).IsHighlighted(),
		Link:          link,
	}
}
