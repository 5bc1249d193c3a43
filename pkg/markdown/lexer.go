package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// CommonMark with the GFM strikethrough and task list extensions.
var parser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.TaskList),
).Parser()

// Lex parses Markdown and flattens the syntax tree into the event stream the
// converter consumes.
//
// Tight list items emit no paragraph tags and a task list marker always
// directly follows its item start. Code blocks emit their whole body as a
// single Text event. Links are always reported as inline because reference
// links are resolved during parsing.
func Lex(markdown string) []Event {
	source := []byte(markdown)
	doc := parser.Parse(text.NewReader(source))

	l := &lexer{source: source}
	_ = ast.Walk(doc, l.visit)
	return l.events
}

type lexer struct {
	source []byte
	events []Event
}

func (l *lexer) emit(e Event) {
	l.events = append(l.events, e)
}

func (l *lexer) wrap(tag Tag, entering bool) {
	if entering {
		l.emit(Start(tag))
	} else {
		l.emit(End(tag))
	}
}

func (l *lexer) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Paragraph:
		l.wrap(Paragraph(), entering)
	case *ast.Heading:
		l.wrap(Heading(node.Level), entering)
	case *ast.Blockquote:
		l.wrap(BlockQuote(), entering)
	case *ast.List:
		var start *uint64
		if node.IsOrdered() && node.Start >= 0 {
			s := uint64(node.Start)
			start = &s
		}
		l.wrap(List(start), entering)
	case *ast.ListItem:
		l.wrap(Item(), entering)
		if entering {
			// Loose items carry the checkbox inside their first paragraph.
			if block := node.FirstChild(); block != nil {
				if box, ok := block.FirstChild().(*extast.TaskCheckBox); ok {
					l.emit(TaskListMarker(box.IsChecked))
				}
			}
		}
	case *ast.ThematicBreak:
		if entering {
			l.emit(Rule())
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			tag := FencedCodeBlock(string(node.Language(l.source)))
			l.codeBlock(tag, node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			l.codeBlock(IndentedCodeBlock(), node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.HTMLBlock:
		if entering {
			var b strings.Builder
			b.WriteString(l.lines(node.Lines()))
			if node.HasClosure() {
				b.Write(node.ClosureLine.Value(l.source))
			}
			l.emit(HTML(b.String()))
		}
		return ast.WalkSkipChildren, nil
	case *extast.TaskCheckBox:
		// Emitted with the item start.
	case *ast.Text:
		if entering {
			l.text(node)
		}
	case *ast.String:
		if entering && len(node.Value) > 0 {
			value := node.Value
			if !node.IsRaw() && !node.IsCode() {
				value = unescape(value)
			}
			l.emit(Text(string(value)))
		}
	case *ast.CodeSpan:
		if entering {
			l.emit(Code(l.codeSpan(node)))
		}
		return ast.WalkSkipChildren, nil
	case *ast.Emphasis:
		if node.Level >= 2 {
			l.wrap(Strong(), entering)
		} else {
			l.wrap(Emphasis(), entering)
		}
	case *extast.Strikethrough:
		l.wrap(Strikethrough(), entering)
	case *ast.Link:
		l.wrap(Link(LinkInline, string(unescape(node.Destination)), string(unescape(node.Title))), entering)
	case *ast.Image:
		l.wrap(Image(LinkInline, string(unescape(node.Destination)), string(unescape(node.Title))), entering)
	case *ast.AutoLink:
		if entering {
			linkType := LinkAutolink
			if node.AutoLinkType == ast.AutoLinkEmail {
				linkType = LinkEmail
			}
			tag := Link(linkType, string(node.URL(l.source)), "")
			l.emit(Start(tag))
			l.emit(Text(string(node.Label(l.source))))
			l.emit(End(tag))
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML:
		if entering {
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				segment := node.Segments.At(i)
				b.Write(segment.Value(l.source))
			}
			l.emit(InlineHTML(b.String()))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (l *lexer) codeBlock(tag Tag, lines *text.Segments) {
	l.emit(Start(tag))
	if lines.Len() > 0 {
		l.emit(Text(l.lines(lines)))
	}
	l.emit(End(tag))
}

func (l *lexer) lines(lines *text.Segments) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(l.source))
	}
	return b.String()
}

func (l *lexer) text(node *ast.Text) {
	value := node.Segment.Value(l.source)
	if !node.IsRaw() {
		value = unescape(value)
	}
	if len(value) > 0 {
		l.emit(Text(string(value)))
	}
	switch {
	case node.HardLineBreak():
		l.emit(HardBreak())
	case node.SoftLineBreak():
		l.emit(SoftBreak())
	}
}

func (l *lexer) codeSpan(node *ast.CodeSpan) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			value := child.Segment.Value(l.source)
			if len(value) > 0 && value[len(value)-1] == '\n' {
				b.Write(value[:len(value)-1])
				b.WriteByte(' ')
			} else {
				b.Write(value)
			}
		case *ast.String:
			b.Write(child.Value)
		}
	}
	return b.String()
}

// unescape resolves backslash escapes and character references.
func unescape(value []byte) []byte {
	if len(value) == 0 {
		return value
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}
