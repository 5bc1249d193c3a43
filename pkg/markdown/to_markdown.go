package markdown

import (
	"sort"
	"strconv"
	"strings"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"
)

// NotebookToMarkdown renders a notebook, title included.
func NotebookToMarkdown(nb notebook.NewNotebook, opts ...Option) string {
	c := NewNotebookConverter(opts...)
	if nb.Title != "" {
		c.ConvertTitle(nb.Title)
	}
	c.ConvertCells(nb.Cells)
	return c.IntoMarkdown()
}

// CellsToMarkdown renders cells without a title.
func CellsToMarkdown(cells []notebook.Cell, opts ...Option) string {
	c := NewNotebookConverter(opts...)
	c.ConvertCells(cells)
	return c.IntoMarkdown()
}

type listRun struct {
	level   int
	ordered bool
	number  uint16
	width   int
}

// NotebookConverter renders cells to Markdown one block at a time.
type NotebookConverter struct {
	options
	out strings.Builder

	hasTitle bool
	// Kind of the last block written, empty before the first one.
	previous notebook.CellKind
	// Open list runs, outermost first.
	lists []listRun
}

func NewNotebookConverter(opts ...Option) *NotebookConverter {
	return &NotebookConverter{options: newOptions(opts)}
}

// ConvertTitle writes the title as the only level 1 heading. Headings
// converted afterwards move down one level.
func (c *NotebookConverter) ConvertTitle(title string) {
	c.startBlock(2)
	c.out.WriteString("# ")
	c.out.WriteString(strings.ReplaceAll(title, "\n", " "))
	c.hasTitle = true
	c.previous = notebook.KindHeading
}

func (c *NotebookConverter) ConvertCells(cells []notebook.Cell) {
	for _, cell := range cells {
		c.convertCell(cell)
	}
}

func (c *NotebookConverter) String() string {
	return c.out.String()
}

func (c *NotebookConverter) IntoMarkdown() string {
	return c.out.String()
}

func (c *NotebookConverter) convertCell(cell notebook.Cell) {
	switch cell := cell.(type) {
	case *notebook.TextCell:
		c.startBlock(2)
		c.ConvertFormattedText(cell.Content(), cell.Formatting())
	case *notebook.HeadingCell:
		c.convertHeading(cell)
	case *notebook.CodeCell:
		syntax := ""
		if cell.Syntax != nil {
			syntax = *cell.Syntax
		}
		c.convertCodeBlock(syntax, cell.Content())
	case *notebook.ListItemCell:
		c.convertListItem(cell)
	case *notebook.CheckboxCell:
		c.convertCheckbox(cell)
	case *notebook.ImageCell:
		if cell.URL == nil || *cell.URL == "" {
			return
		}
		c.startBlock(2)
		c.out.WriteString("![](")
		c.out.WriteString(*cell.URL)
		c.out.WriteString(")")
	case *notebook.ProviderCell:
		c.convertProvider(cell)
		return
	case *notebook.DividerCell, *notebook.TableCell, *notebook.LogCell,
		*notebook.DiscussionCell, *notebook.GraphCell:
		c.warn("cell type cannot be rendered to markdown", map[string]interface{}{
			"cell_id":   cell.ID(),
			"cell_type": string(cell.Kind()),
		})
		return
	default:
		return
	}
	c.previous = cell.Kind()
}

// startBlock ends the output with the given number of newlines, unless it
// is still empty.
func (c *NotebookConverter) startBlock(newlines int) {
	if c.out.Len() == 0 {
		return
	}
	out := c.out.String()
	have := 0
	for have < newlines && have < len(out) && out[len(out)-1-have] == '\n' {
		have++
	}
	for ; have < newlines; have++ {
		c.out.WriteByte('\n')
	}
}

func (c *NotebookConverter) convertHeading(cell *notebook.HeadingCell) {
	level := cell.HeadingType.Level()
	if c.hasTitle {
		level++
	}
	c.startBlock(2)
	c.out.WriteString(strings.Repeat("#", level))
	c.out.WriteByte(' ')
	c.ConvertFormattedText(strings.ReplaceAll(cell.Content(), "\n", " "), cell.Formatting())
}

func (c *NotebookConverter) convertCodeBlock(syntax, content string) {
	if c.out.Len() == 0 {
		c.out.WriteByte('\n')
	} else {
		c.startBlock(2)
	}
	fence := codeFence(content)
	c.out.WriteString(fence)
	c.out.WriteString(syntax)
	c.out.WriteByte('\n')
	c.out.WriteString(content)
	c.out.WriteByte('\n')
	c.out.WriteString(fence)
}

// codeFence returns a backtick fence longer than any run inside content.
func codeFence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

// convertProvider writes prometheus queries back as directive code blocks.
// Other providers have no Markdown form.
func (c *NotebookConverter) convertProvider(cell *notebook.ProviderCell) {
	query, ok := "", false
	if cell.QueryData != nil {
		query, ok = notebook.QueryField(*cell.QueryData, providerQueryKey)
	}
	if cell.Intent != ProviderIntent || !ok {
		c.warn("provider cell cannot be rendered to markdown", map[string]interface{}{
			"cell_id": cell.ID(),
			"intent":  cell.Intent,
		})
		return
	}
	c.convertCodeBlock(providerSyntax, ProviderDirective+query)
	c.previous = notebook.KindCode
}

func (c *NotebookConverter) convertListItem(cell *notebook.ListItemCell) {
	level := 0
	if cell.Level != nil {
		level = int(*cell.Level)
	}
	ordered := cell.ListType == notebook.Ordered
	joined := c.previous == notebook.KindListItem && c.joinsPreviousItem(level, ordered)

	run, indent := c.listRun(level, ordered, cell.StartNumber)
	if joined {
		c.startBlock(1)
	} else {
		c.startBlock(2)
	}
	c.out.WriteString(strings.Repeat(" ", indent))
	if ordered {
		c.out.WriteString(strconv.Itoa(int(run.number)))
		c.out.WriteString(". ")
	} else {
		c.out.WriteString("- ")
	}
	c.ConvertFormattedText(cell.Content(), cell.Formatting())
}

func (c *NotebookConverter) convertCheckbox(cell *notebook.CheckboxCell) {
	level := 0
	if cell.Level != nil {
		level = int(*cell.Level)
	}
	_, indent := c.listRun(level, false, nil)

	if c.previous == notebook.KindCheckbox {
		c.startBlock(1)
	} else {
		c.startBlock(2)
	}
	c.out.WriteString(strings.Repeat(" ", indent))
	if cell.Checked {
		c.out.WriteString("- [x] ")
	} else {
		c.out.WriteString("- [ ] ")
	}
	c.ConvertFormattedText(cell.Content(), cell.Formatting())
	// A run of checkboxes is always terminated by a newline.
	c.out.WriteByte('\n')
}

// joinsPreviousItem reports whether a list item continues the previous one's
// list, either as a sibling of the same type or as a nested item. Siblings
// are compared against the run at the item's own level.
func (c *NotebookConverter) joinsPreviousItem(level int, ordered bool) bool {
	if len(c.lists) == 0 {
		return false
	}
	for i := len(c.lists) - 1; i >= 0; i-- {
		if run := c.lists[i]; run.level <= level {
			return run.level < level || run.ordered == ordered
		}
	}
	return true
}

// listRun finds or opens the run the item belongs to and returns it with the
// indentation of its marker. Ordered runs keep the number of their first item.
func (c *NotebookConverter) listRun(level int, ordered bool, start *uint16) (listRun, int) {
	if c.previous != notebook.KindListItem && c.previous != notebook.KindCheckbox {
		c.lists = nil
	}
	for len(c.lists) > 0 && c.lists[len(c.lists)-1].level > level {
		c.lists = c.lists[:len(c.lists)-1]
	}
	if n := len(c.lists); n > 0 && c.lists[n-1].level == level && c.lists[n-1].ordered != ordered {
		c.lists = c.lists[:n-1]
	}

	if n := len(c.lists); n == 0 || c.lists[n-1].level != level {
		run := listRun{level: level, ordered: ordered, width: 2}
		if ordered {
			run.number = 1
			if start != nil {
				run.number = *start
			}
			run.width = len(strconv.Itoa(int(run.number))) + 2
		}
		c.lists = append(c.lists, run)
	}

	indent := 0
	for _, parent := range c.lists[:len(c.lists)-1] {
		indent += parent.width
	}
	// Levels without a rendered parent item get the bullet width.
	indent += 2 * (level - (len(c.lists) - 1))
	return c.lists[len(c.lists)-1], indent
}

type openSpan struct {
	kind    formatting.AnnotationKind
	closing string
	point   bool
}

// ConvertFormattedText writes text with its formatting as inline Markdown.
//
// Styles change only at annotation offsets. At each offset the spans that end
// are closed, most recently opened first, then new spans open in the fixed
// order of ActiveFormatting.Diff. Spans that overlap without nesting are
// written as they are. A point annotation is shown in bold over as many
// characters as its canonical text has; a notebook link becomes a link over
// the same characters.
func (c *NotebookConverter) ConvertFormattedText(text string, f formatting.Formatting) {
	runes := []rune(text)
	length := uint32(len(runes))
	f = c.normalize(f, length)
	escapes := lineMarkerEscapes(runes)

	var (
		current  formatting.ActiveFormatting
		stack    []openSpan
		pointEnd uint32
		next     int
	)

	for offset := uint32(0); ; offset++ {
		atBoundary := offset == length || (next < len(f) && f[next].Offset == offset) ||
			(pointEnd > 0 && offset == pointEnd)
		if atBoundary {
			target := current
			var point *formatting.Annotation
			for ; next < len(f) && f[next].Offset == offset; next++ {
				a := f[next].Annotation
				if a.IsPaired() {
					target = target.Apply(a)
				} else if offset < length {
					point = &a
				}
			}
			if offset == length {
				target = formatting.ActiveFormatting{}
			}
			transitions := target.Diff(current)

			ending := map[formatting.AnnotationKind]bool{}
			for _, a := range transitions {
				if isStart(a.Kind) {
					if a.Kind == formatting.KindStartLink && current.Link != nil {
						ending[formatting.KindStartLink] = true
					}
					continue
				}
				if start, ok := a.ToggleOpposite(); ok {
					ending[start.Kind] = true
				} else if a.Kind == formatting.KindEndLink {
					ending[formatting.KindStartLink] = true
				}
			}
			pointEnds := offset == length || point != nil || offset == pointEnd
			for i := len(stack) - 1; i >= 0; i-- {
				if (stack[i].point && pointEnds) || (!stack[i].point && ending[stack[i].kind]) {
					c.out.WriteString(stack[i].closing)
					stack = append(stack[:i], stack[i+1:]...)
				}
			}

			if offset == length {
				return
			}

			for _, a := range transitions {
				if !isStart(a.Kind) {
					continue
				}
				opening, closing := delimiters(a)
				if a.Kind == formatting.KindStartCode {
					opening, closing = codeSpanDelimiters(runes[offset:codeSpanEnd(f[next:], length)])
				}
				c.out.WriteString(opening)
				stack = append(stack, openSpan{kind: a.Kind, closing: closing})
			}
			current = target

			if point != nil {
				if canonical, ok := point.CanonicalText(); ok && canonical != "" {
					pointEnd = offset + formatting.CharCount(canonical)
					if pointEnd > length {
						pointEnd = length
					}
					opening, closing := delimiters(*point)
					c.out.WriteString(opening)
					stack = append(stack, openSpan{kind: point.Kind, closing: closing, point: true})
				}
			}
		}

		c.writeRune(runes, int(offset), current.Code, escapes[int(offset)])
	}
}

// codeSpanEnd returns the offset of the first EndCode in f, or the end of the
// text.
func codeSpanEnd(f formatting.Formatting, length uint32) uint32 {
	for _, a := range f {
		if a.Annotation.Kind == formatting.KindEndCode {
			return a.Offset
		}
	}
	return length
}

// codeSpanDelimiters picks a backtick run longer than any inside the span.
// Content that starts or ends with a backtick, or is wrapped in spaces, is
// padded with one space on each side, which the parser strips again.
func codeSpanDelimiters(content []rune) (string, string) {
	longest, run := 0, 0
	onlySpaces := true
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
		if r != ' ' && r != '\n' {
			onlySpaces = false
		}
	}
	fence := strings.Repeat("`", longest+1)
	if len(content) == 0 {
		return fence, fence
	}
	first, last := content[0], content[len(content)-1]
	wrapped := (first == ' ' || first == '\n') && (last == ' ' || last == '\n') && !onlySpaces
	if first == '`' || last == '`' || wrapped {
		return fence + " ", " " + fence
	}
	return fence, fence
}

func isStart(kind formatting.AnnotationKind) bool {
	switch kind {
	case formatting.KindStartBold, formatting.KindStartCode, formatting.KindStartHighlight,
		formatting.KindStartItalics, formatting.KindStartLink, formatting.KindStartStrikethrough,
		formatting.KindStartUnderline:
		return true
	}
	return false
}

func delimiters(a formatting.Annotation) (string, string) {
	switch a.Kind {
	case formatting.KindStartBold:
		return "**", "**"
	case formatting.KindStartItalics, formatting.KindStartUnderline:
		return "*", "*"
	case formatting.KindStartStrikethrough:
		return "~~", "~~"
	case formatting.KindStartCode:
		return "`", "`"
	case formatting.KindStartHighlight:
		return "<mark>", "</mark>"
	case formatting.KindStartLink:
		return "[", "](" + a.URL + ")"
	case formatting.KindNotebookLink:
		return "[", "](" + a.URL + ")"
	case formatting.KindLabel, formatting.KindMention, formatting.KindTimestamp:
		return "**", "**"
	}
	return "", ""
}

// normalize sorts annotations by offset and clamps offsets to the text.
func (c *NotebookConverter) normalize(f formatting.Formatting, length uint32) formatting.Formatting {
	if len(f) == 0 {
		return f
	}
	sorted := formatting.IsSorted(f)
	clamped := false
	out := make(formatting.Formatting, len(f))
	for i, a := range f {
		if a.Offset > length {
			a.Offset = length
			clamped = true
		}
		out[i] = a
	}
	if !sorted {
		c.warn("formatting is not sorted by offset", map[string]interface{}{"annotations": len(f)})
		sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	}
	if clamped {
		c.warn("formatting offset beyond end of text", map[string]interface{}{"length": length})
	}
	return out
}

func (c *NotebookConverter) writeRune(runes []rune, i int, inCode, escape bool) {
	r := runes[i]
	if inCode {
		if r == '\n' {
			r = ' '
		}
		c.out.WriteRune(r)
		return
	}
	switch r {
	case '\\', '*', '_', '`', '[', ']', '~', '<':
		c.out.WriteByte('\\')
	case '\n':
		if trailingNewlines(runes[i:]) {
			// A backslash break needs a following line.
			c.out.WriteString("<br>")
			return
		}
		// Backslash hard break.
		c.out.WriteByte('\\')
	default:
		if escape {
			c.out.WriteByte('\\')
		}
	}
	c.out.WriteRune(r)
}

func trailingNewlines(runes []rune) bool {
	for _, r := range runes {
		if r != '\n' {
			return false
		}
	}
	return true
}

// lineMarkerEscapes returns the positions of characters that would start a
// block at the beginning of a line: bullets, ordered list delimiters, ATX
// heading marks, block quotes and setext underlines.
func lineMarkerEscapes(runes []rune) map[int]bool {
	escapes := map[int]bool{}
	for start := 0; start < len(runes); {
		end := start
		for end < len(runes) && runes[end] != '\n' {
			end++
		}
		if i, ok := blockMarker(runes[start:end]); ok {
			escapes[start+i] = true
		}
		start = end + 1
	}
	return escapes
}

func blockMarker(line []rune) (int, bool) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	if i == len(line) {
		return 0, false
	}
	rest := line[i:]
	switch r := rest[0]; {
	case r == '>':
		return i, true
	case r == '#':
		n := 0
		for n < len(rest) && rest[n] == '#' {
			n++
		}
		return i, n <= 6 && (n == len(rest) || isBlank(rest[n]))
	case r == '-':
		return i, len(rest) == 1 || isBlank(rest[1]) || onlyRune(rest, '-')
	case r == '+':
		return i, len(rest) == 1 || isBlank(rest[1])
	case r == '=':
		return i, onlyRune(rest, '=')
	case r >= '0' && r <= '9':
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n > 9 || n == len(rest) || (rest[n] != '.' && rest[n] != ')') {
			return 0, false
		}
		return i + n, n+1 == len(rest) || isBlank(rest[n+1])
	}
	return 0, false
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// onlyRune reports whether line holds nothing but r and blanks.
func onlyRune(line []rune, r rune) bool {
	for _, c := range line {
		if c != r && !isBlank(c) {
			return false
		}
	}
	return true
}
