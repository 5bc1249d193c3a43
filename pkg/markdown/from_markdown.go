package markdown

import (
	"math"
	"strconv"
	"strings"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"
)

const (
	// ProviderDirective marks a promql code block as a provider query.
	ProviderDirective = "# fiberplane-provider-query\n"
	ProviderIntent    = "prometheus,timeseries"
	providerSyntax    = "promql"
	providerQueryKey  = "query"
)

// MarkdownToNotebook parses the first block as the notebook title and the
// rest of the document as its cells.
func MarkdownToNotebook(markdown string, opts ...Option) notebook.NewNotebook {
	title, cells := ConvertEvents(Lex(markdown), opts...)
	return notebook.NewNotebook{
		Title:     title,
		Cells:     cells,
		TimeRange: notebook.DefaultTimeRange(),
	}
}

// MarkdownToCells converts a whole document to cells, without a title.
func MarkdownToCells(markdown string, opts ...Option) []notebook.Cell {
	c := newConverter(opts)
	return c.parseCells(Lex(markdown))
}

// ConvertEvents runs the converter over an already lexed stream, extracting
// the title first.
func ConvertEvents(events []Event, opts ...Option) (string, []notebook.Cell) {
	c := newConverter(opts)
	title, rest := c.parseTitle(events)
	return title, c.parseCells(rest)
}

type listDetails struct {
	listType    notebook.ListType
	startNumber *uint16
	level       *uint8
}

type converter struct {
	options
	current notebook.Cell
	lists   []listDetails
	cells   []notebook.Cell
	// Set when the title is the only H1 of the document.
	decrementHeadings bool
	codeBlockSyntax   *string
	// Tables are dropped with everything inside them.
	tableDepth int
}

func newConverter(opts []Option) *converter {
	return &converter{options: newOptions(opts)}
}

// parseTitle collects the text of the first block and returns the events
// that follow it.
func (c *converter) parseTitle(events []Event) (string, []Event) {
	var title strings.Builder
	var opened *Tag
	depth := 0

	for i, e := range events {
		switch e.Type {
		case EventText, EventCode:
			title.WriteString(e.Text)
		case EventStart:
			if opened == nil {
				tag := e.Tag
				opened = &tag
				if tag.Kind == TagHeading && tag.Level == 1 {
					c.decrementHeadings = true
				}
			} else if e.Tag.Kind == opened.Kind {
				depth++
			}
		case EventEnd:
			if opened == nil || e.Tag.Kind != opened.Kind {
				continue
			}
			if depth == 0 {
				return title.String(), events[i+1:]
			}
			depth--
		}
	}
	return title.String(), nil
}

func (c *converter) parseCells(events []Event) []notebook.Cell {
	if c.decrementHeadings {
		for _, e := range events {
			if e.Type == EventStart && e.Tag.Kind == TagHeading && e.Tag.Level == 1 {
				c.decrementHeadings = false
				break
			}
		}
	}

	for _, e := range events {
		c.handle(e)
	}
	c.pushCurrent()

	for i, cell := range c.cells {
		cell.SetID(strconv.Itoa(i + 1))
	}
	return c.cells
}

func (c *converter) handle(e Event) {
	if c.tableDepth > 0 && !((e.Type == EventStart || e.Type == EventEnd) && isTableTag(e.Tag.Kind)) {
		return
	}
	switch e.Type {
	case EventStart:
		c.startTag(e.Tag)
	case EventEnd:
		c.endTag(e.Tag)
	case EventText:
		c.text(e.Text)
	case EventCode:
		c.inlineCode(e.Text)
	case EventSoftBreak:
		if cell, ok := c.current.(notebook.ContentCell); ok {
			cell.SetContent(cell.Content() + " ")
		}
	case EventHardBreak:
		c.hardBreak()
	case EventHTML:
		if isLineBreakHTML(e.Text) {
			c.hardBreak()
			return
		}
		c.newCell(notebook.NewCodeCell(strings.TrimSuffix(e.Text, "\n"), nil))
	case EventInlineHTML:
		c.inlineHTML(e.Text)
	case EventRule:
		// Dividers skip the open cell slot, so an open cell lands after them.
		c.cells = append(c.cells, &notebook.DividerCell{})
	case EventTaskListMarker:
		c.taskListMarker(e.Checked)
	case EventFootnoteReference:
	}
}

func (c *converter) startTag(tag Tag) {
	switch tag.Kind {
	case TagParagraph:
		c.newCell(notebook.NewTextCell("", nil))
	case TagHeading:
		if headingType, ok := c.headingType(tag.Level); ok {
			c.newCell(notebook.NewHeadingCell(headingType, "", nil))
		} else {
			c.newCell(notebook.NewTextCell("", nil))
		}
	case TagBlockQuote:
		c.newCell(notebook.NewTextCell("", nil))
	case TagCodeBlock:
		syntax := ""
		if tag.CodeBlock == CodeBlockFenced {
			syntax = tag.Language
		}
		c.codeBlockSyntax = &syntax
		c.pushCurrent()
	case TagList:
		c.startList(tag.Start)
	case TagItem:
		c.startItem()
	case TagImage:
		// Alt text is dropped since image cells hold no text.
		c.newCell(notebook.NewImageCell(tag.URL))
	case TagEmphasis:
		c.appendFormatting(formatting.StartItalics())
	case TagStrong:
		c.appendFormatting(formatting.StartBold())
	case TagStrikethrough:
		c.appendFormatting(formatting.StartStrikethrough())
	case TagLink:
		if tag.LinkType == LinkInline || tag.LinkType == LinkAutolink {
			c.appendFormatting(formatting.StartLink(tag.URL))
			return
		}
		c.warn("ignoring unsupported link type", map[string]interface{}{"link_type": tag.LinkType.String(), "url": tag.URL})
	case TagFootnoteDefinition:
		c.warn("ignoring footnote definition, footnotes are not supported", map[string]interface{}{"label": tag.Label})
	case TagTable:
		if c.tableDepth == 0 {
			c.warn("ignoring table, tables are not supported", nil)
		}
		c.tableDepth++
	case TagTableHead, TagTableRow, TagTableCell:
	}
}

func (c *converter) endTag(tag Tag) {
	switch tag.Kind {
	case TagParagraph, TagHeading, TagBlockQuote, TagItem:
		c.pushCurrent()
	case TagCodeBlock:
		if c.codeBlockSyntax != nil {
			// The block had no body.
			c.codeBlock("")
		}
		if code, ok := c.current.(*notebook.CodeCell); ok {
			// The newline before the closing fence is not part of the code.
			code.Code = strings.TrimSuffix(code.Code, "\n")
		}
		c.pushCurrent()
	case TagList:
		if len(c.lists) > 0 {
			c.lists = c.lists[:len(c.lists)-1]
		}
	case TagEmphasis:
		c.appendFormatting(formatting.EndItalics())
	case TagStrong:
		c.appendFormatting(formatting.EndBold())
	case TagStrikethrough:
		c.appendFormatting(formatting.EndStrikethrough())
	case TagLink:
		if tag.LinkType == LinkInline || tag.LinkType == LinkAutolink {
			c.appendFormatting(formatting.EndLink())
		}
	case TagTable:
		if c.tableDepth > 0 {
			c.tableDepth--
		}
	}
}

func isTableTag(kind TagKind) bool {
	switch kind {
	case TagTable, TagTableHead, TagTableRow, TagTableCell:
		return true
	}
	return false
}

func (c *converter) headingType(level int) (notebook.HeadingType, bool) {
	if c.decrementHeadings {
		level--
	}
	switch level {
	case 1:
		return notebook.H1, true
	case 2:
		return notebook.H2, true
	case 3:
		return notebook.H3, true
	}
	return "", false
}

func (c *converter) startList(start *uint64) {
	details := listDetails{listType: notebook.Unordered}
	if start != nil {
		details.listType = notebook.Ordered
		if *start <= math.MaxUint16 {
			details.startNumber = notebook.Ptr(uint16(*start))
		} else {
			c.warn("list start number out of range", map[string]interface{}{"start": *start})
		}
	}
	if len(c.lists) > 0 {
		var level uint8
		if parent := c.lists[len(c.lists)-1].level; parent != nil {
			level = *parent
		}
		if level < math.MaxUint8 {
			level++
		}
		details.level = &level
	}
	c.lists = append(c.lists, details)
}

func (c *converter) startItem() {
	if len(c.lists) == 0 {
		return
	}
	details := &c.lists[len(c.lists)-1]

	item := notebook.NewListItemCell(details.listType, "", nil)
	if details.startNumber != nil {
		item.StartNumber = notebook.Ptr(*details.startNumber)
		if *details.startNumber < math.MaxUint16 {
			*details.startNumber++
		} else {
			details.startNumber = nil
		}
	}
	if details.level != nil {
		item.Level = notebook.Ptr(*details.level)
	}
	c.newCell(item)
}

func (c *converter) taskListMarker(checked bool) {
	item, ok := c.current.(*notebook.ListItemCell)
	if !ok {
		return
	}
	checkbox := notebook.NewCheckboxCell(checked, item.Content(), item.Formatting())
	checkbox.SetID(item.ID())
	checkbox.ReadOnly = item.ReadOnly
	checkbox.Level = item.Level
	c.current = checkbox
}

func (c *converter) text(content string) {
	if c.codeBlockSyntax != nil && c.current == nil {
		c.codeBlock(content)
		return
	}
	if c.current != nil {
		// Cells without text, such as images, drop it.
		if cell, ok := c.current.(notebook.ContentCell); ok {
			cell.SetContent(cell.Content() + content)
		}
		return
	}
	c.newCell(notebook.NewTextCell(content, nil))
}

func (c *converter) codeBlock(content string) {
	syntax := *c.codeBlockSyntax
	c.codeBlockSyntax = nil

	if strings.HasPrefix(content, ProviderDirective) && strings.EqualFold(syntax, providerSyntax) {
		query := strings.TrimSuffix(strings.TrimPrefix(content, ProviderDirective), "\n")
		queryData := notebook.SetQueryField(notebook.FormEncodedMIME, providerQueryKey, query)
		c.newCell(&notebook.ProviderCell{Intent: ProviderIntent, QueryData: &queryData})
		return
	}

	cell := notebook.NewCodeCell(content, nil)
	if syntax != "" {
		cell.Syntax = &syntax
	}
	c.newCell(cell)
}

func (c *converter) inlineCode(content string) {
	if c.current == nil {
		c.newCell(notebook.NewTextCell("", nil))
	}
	c.appendFormatting(formatting.StartCode())
	if cell, ok := c.current.(notebook.ContentCell); ok {
		cell.SetContent(cell.Content() + content)
	}
	c.appendFormatting(formatting.EndCode())
}

func (c *converter) inlineHTML(html string) {
	switch strings.ToLower(strings.TrimSpace(html)) {
	case "<mark>":
		c.appendFormatting(formatting.StartHighlight())
	case "</mark>":
		c.appendFormatting(formatting.EndHighlight())
	default:
		if isLineBreakHTML(html) {
			c.hardBreak()
			return
		}
		c.text(html)
	}
}

func (c *converter) hardBreak() {
	if cell, ok := c.current.(notebook.ContentCell); ok {
		cell.SetContent(cell.Content() + "\n")
		return
	}
	c.newCell(notebook.NewTextCell("", nil))
}

func isLineBreakHTML(html string) bool {
	switch strings.ToLower(strings.TrimSpace(html)) {
	case "<br>", "<br/>", "<br />":
		return true
	}
	return false
}

// appendFormatting adds an annotation at the end of the open cell's text.
func (c *converter) appendFormatting(a formatting.Annotation) {
	if c.current == nil {
		return
	}
	cell, ok := c.current.(notebook.TextCellLike)
	if !ok {
		c.warn("cell does not support formatting", map[string]interface{}{
			"cell_type":  string(c.current.Kind()),
			"annotation": string(a.Kind),
		})
		return
	}
	offset := formatting.CharCount(cell.Content())
	cell.SetFormatting(append(cell.Formatting(), formatting.NewAnnotationWithOffset(offset, a)))
}

func (c *converter) newCell(cell notebook.Cell) notebook.Cell {
	c.pushCurrent()
	c.current = cell
	return cell
}

func (c *converter) pushCurrent() {
	if c.current != nil {
		c.cells = append(c.cells, c.current)
		c.current = nil
	}
}
