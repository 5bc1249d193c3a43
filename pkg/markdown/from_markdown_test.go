package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"
)

type recordingDiagnostics struct {
	messages []string
}

func (r *recordingDiagnostics) Warn(module, message string, details map[string]interface{}) {
	r.messages = append(r.messages, module+": "+message)
}

func withID[C notebook.Cell](id string, cell C) C {
	cell.SetID(id)
	return cell
}

func annotations(items ...interface{}) formatting.Formatting {
	var f formatting.Formatting
	for i := 0; i+1 < len(items); i += 2 {
		f = append(f, formatting.NewAnnotationWithOffset(uint32(items[i].(int)), items[i+1].(formatting.Annotation)))
	}
	return f
}

func TestMarkdownToNotebookTitleOnly(t *testing.T) {
	nb := MarkdownToNotebook("# Some title")

	assert.Equal(t, "Some title", nb.Title)
	assert.Empty(t, nb.Cells)
	require.NotNil(t, nb.TimeRange.Minutes)
	assert.Equal(t, int64(-60), *nb.TimeRange.Minutes)
}

func TestMarkdownToNotebookTitleFromParagraph(t *testing.T) {
	nb := MarkdownToNotebook("The `mdconvert` tool\n\n## Usage")

	assert.Equal(t, "The mdconvert tool", nb.Title)
	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewHeadingCell(notebook.H2, "Usage", nil)),
	}, nb.Cells)
}

func TestMarkdownToNotebookDecrementsHeadings(t *testing.T) {
	nb := MarkdownToNotebook("# Title\n\n## H2\n\n### H3\n\n#### H4\n\n##### H5")

	assert.Equal(t, "Title", nb.Title)
	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewHeadingCell(notebook.H1, "H2", nil)),
		withID("2", notebook.NewHeadingCell(notebook.H2, "H3", nil)),
		withID("3", notebook.NewHeadingCell(notebook.H3, "H4", nil)),
		withID("4", notebook.NewTextCell("H5", nil)),
	}, nb.Cells)
}

func TestMarkdownToNotebookKeepsHeadingsWithSecondH1(t *testing.T) {
	nb := MarkdownToNotebook("# Title\n\n# Another\n\n## Sub\n\n#### Deep")

	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewHeadingCell(notebook.H1, "Another", nil)),
		withID("2", notebook.NewHeadingCell(notebook.H2, "Sub", nil)),
		withID("3", notebook.NewTextCell("Deep", nil)),
	}, nb.Cells)
}

func TestMarkdownToCells(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []notebook.Cell
	}{
		{
			name:     "paragraphs",
			markdown: "Some text\n\nSome more text",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("Some text", nil)),
				withID("2", notebook.NewTextCell("Some more text", nil)),
			},
		},
		{
			name:     "first heading is not a title",
			markdown: "# H1\n\n## H2",
			want: []notebook.Cell{
				withID("1", notebook.NewHeadingCell(notebook.H1, "H1", nil)),
				withID("2", notebook.NewHeadingCell(notebook.H2, "H2", nil)),
			},
		},
		{
			name:     "inline formatting",
			markdown: "Some **bold**, *italics*, ~~strikethrough~~",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("Some bold, italics, strikethrough", annotations(
					5, formatting.StartBold(),
					9, formatting.EndBold(),
					11, formatting.StartItalics(),
					18, formatting.EndItalics(),
					20, formatting.StartStrikethrough(),
					33, formatting.EndStrikethrough(),
				))),
			},
		},
		{
			name:     "links and inline code",
			markdown: "A [link with `code` and **bold**](http://example.com) here",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("A link with code and bold here", annotations(
					2, formatting.StartLink("http://example.com"),
					12, formatting.StartCode(),
					16, formatting.EndCode(),
					21, formatting.StartBold(),
					25, formatting.EndBold(),
					25, formatting.EndLink(),
				))),
			},
		},
		{
			name:     "autolink",
			markdown: "<https://example.com>",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("https://example.com", annotations(
					0, formatting.StartLink("https://example.com"),
					19, formatting.EndLink(),
				))),
			},
		},
		{
			name:     "highlight and line breaks",
			markdown: "Some <mark>highlighted</mark> text<br>next\nline",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("Some highlighted text\nnext line", annotations(
					5, formatting.StartHighlight(),
					16, formatting.EndHighlight(),
				))),
			},
		},
		{
			name:     "leading inline code",
			markdown: "`code` first",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("code first", annotations(
					0, formatting.StartCode(),
					4, formatting.EndCode(),
				))),
			},
		},
		{
			name:     "block quote",
			markdown: "> quoted text",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("", nil)),
				withID("2", notebook.NewTextCell("quoted text", nil)),
			},
		},
		{
			name:     "image",
			markdown: "![alt](http://example.com/image.png)",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("", nil)),
				withID("2", notebook.NewImageCell("http://example.com/image.png")),
			},
		},
		{
			name:     "html block",
			markdown: "<div>hi</div>",
			want: []notebook.Cell{
				withID("1", notebook.NewCodeCell("<div>hi</div>", nil)),
			},
		},
		{
			name:     "divider",
			markdown: "before\n\n---\n\nafter",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("before", nil)),
				withID("2", &notebook.DividerCell{}),
				withID("3", notebook.NewTextCell("after", nil)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkdownToCells(tt.markdown))
		})
	}
}

func TestMarkdownToCellsCodeBlocks(t *testing.T) {
	cells := MarkdownToCells("```go\nfmt.Println()\n```\n\n    indented\n\n```\n```")

	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewCodeCell("fmt.Println()", notebook.Ptr("go"))),
		withID("2", notebook.NewCodeCell("indented", nil)),
		withID("3", notebook.NewCodeCell("", nil)),
	}, cells)
}

func TestMarkdownToCellsProvider(t *testing.T) {
	cells := MarkdownToCells("```PromQL\n# fiberplane-provider-query\nsum(rate(http_requests_total[5m]))\n```")

	require.Len(t, cells, 1)
	provider, ok := cells[0].(*notebook.ProviderCell)
	require.True(t, ok, "got %T", cells[0])
	assert.Equal(t, "1", provider.ID())
	assert.Equal(t, ProviderIntent, provider.Intent)
	require.NotNil(t, provider.QueryData)
	query, ok := notebook.QueryField(*provider.QueryData, "query")
	assert.True(t, ok)
	assert.Equal(t, "sum(rate(http_requests_total[5m]))", query)
}

func TestMarkdownToCellsDirectiveNeedsPromQL(t *testing.T) {
	cells := MarkdownToCells("```sql\n# fiberplane-provider-query\nselect 1\n```")

	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewCodeCell("# fiberplane-provider-query\nselect 1", notebook.Ptr("sql"))),
	}, cells)
}

func TestMarkdownToCellsLists(t *testing.T) {
	cells := MarkdownToCells("1. one\n   1. one-one\n   2. one-two\n2. two\n\n- bullet\n  - [x] done\n  - [ ] todo")

	one := notebook.NewListItemCell(notebook.Ordered, "one", nil)
	one.StartNumber = notebook.Ptr[uint16](1)
	oneOne := notebook.NewListItemCell(notebook.Ordered, "one-one", nil)
	oneOne.StartNumber = notebook.Ptr[uint16](1)
	oneOne.Level = notebook.Ptr[uint8](1)
	oneTwo := notebook.NewListItemCell(notebook.Ordered, "one-two", nil)
	oneTwo.StartNumber = notebook.Ptr[uint16](2)
	oneTwo.Level = notebook.Ptr[uint8](1)
	two := notebook.NewListItemCell(notebook.Ordered, "two", nil)
	two.StartNumber = notebook.Ptr[uint16](2)
	bullet := notebook.NewListItemCell(notebook.Unordered, "bullet", nil)
	done := notebook.NewCheckboxCell(true, "done", nil)
	done.Level = notebook.Ptr[uint8](1)
	todo := notebook.NewCheckboxCell(false, "todo", nil)
	todo.Level = notebook.Ptr[uint8](1)

	assert.Equal(t, []notebook.Cell{
		withID("1", one),
		withID("2", oneOne),
		withID("3", oneTwo),
		withID("4", two),
		withID("5", bullet),
		withID("6", done),
		withID("7", todo),
	}, cells)
}

func TestMarkdownToCellsLooseList(t *testing.T) {
	cells := MarkdownToCells("- [ ] first\n\n- second")

	// Paragraphs of loose items become text cells after the item.
	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewCheckboxCell(false, "", nil)),
		withID("2", notebook.NewTextCell("first", nil)),
		withID("3", notebook.NewListItemCell(notebook.Unordered, "", nil)),
		withID("4", notebook.NewTextCell("second", nil)),
	}, cells)
}

func TestMarkdownToCellsDiagnostics(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	cells := MarkdownToCells("Mail <foo@example.com>", WithDiagnostics(diagnostics))

	assert.Equal(t, []notebook.Cell{
		withID("1", notebook.NewTextCell("Mail foo@example.com", nil)),
	}, cells)
	assert.Equal(t, []string{"markdown: ignoring unsupported link type"}, diagnostics.messages)
}

func TestFormattingIsSorted(t *testing.T) {
	markdown := "**Bold *and italic*** text with [a `link`](https://example.com) and ~~gone~~\n\n" +
		"- item with **bold**\n- [x] task with *em*\n\n## Heading with `code`"

	for _, cell := range MarkdownToCells(markdown) {
		if rich, ok := cell.(notebook.TextCellLike); ok {
			assert.True(t, formatting.IsSorted(rich.Formatting()), "cell %s", cell.ID())
		}
	}
}

func TestConvertEvents(t *testing.T) {
	var start uint64 = 70000

	tests := []struct {
		name      string
		events    []Event
		wantTitle string
		want      []notebook.Cell
		warnings  int
	}{
		{
			name: "divider is placed before the open cell",
			events: []Event{
				Start(Paragraph()), Text("Title"), End(Paragraph()),
				Start(Paragraph()), Text("a"), Rule(), Text("b"), End(Paragraph()),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", &notebook.DividerCell{}),
				withID("2", notebook.NewTextCell("ab", nil)),
			},
		},
		{
			name: "start number overflow",
			events: []Event{
				Start(Paragraph()), Text("Title"), End(Paragraph()),
				Start(List(&start)), Start(Item()), Text("big"), End(Item()), End(List(&start)),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", notebook.NewListItemCell(notebook.Ordered, "big", nil)),
			},
			warnings: 1,
		},
		{
			name: "tables and footnotes contribute no cells",
			events: []Event{
				Start(Heading(1)), Text("Title"), End(Heading(1)),
				Start(Table()), Start(TableHead()), Start(TableCell()), Text("head"), End(TableCell()), End(TableHead()), End(Table()),
				Start(Paragraph()), Text("note"), FootnoteReference("1"), End(Paragraph()),
				Start(FootnoteDefinition("1")), End(FootnoteDefinition("1")),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("note", nil)),
			},
			warnings: 2,
		},
		{
			name: "formatting without an open cell is skipped",
			events: []Event{
				Start(Paragraph()), Text("Title"), End(Paragraph()),
				Start(Strong()), End(Strong()),
				Text("loose"),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("loose", nil)),
			},
		},
		{
			name: "hard break without an open cell opens an empty one",
			events: []Event{
				Start(Paragraph()), Text("Title"), End(Paragraph()),
				HardBreak(),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("", nil)),
			},
		},
		{
			name: "text after an image is dropped",
			events: []Event{
				Start(Paragraph()), Text("Title"), End(Paragraph()),
				Start(Paragraph()), Text("before"),
				Start(Image(LinkInline, "a.png", "")), Text("alt"), End(Image(LinkInline, "a.png", "")),
				Text("after"), End(Paragraph()),
			},
			wantTitle: "Title",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("before", nil)),
				withID("2", notebook.NewImageCell("a.png")),
			},
		},
		{
			name: "paragraph inside a block quote opens its own cell",
			events: []Event{
				Start(Paragraph()), Text("T"), End(Paragraph()),
				Start(BlockQuote()), Start(Paragraph()), Text("q"), End(Paragraph()), End(BlockQuote()),
			},
			wantTitle: "T",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("", nil)),
				withID("2", notebook.NewTextCell("q", nil)),
			},
		},
		{
			name: "paragraph of a loose item follows the item",
			events: []Event{
				Start(Paragraph()), Text("T"), End(Paragraph()),
				Start(List(nil)), Start(Item()),
				Start(Paragraph()), Text("loose"), End(Paragraph()),
				End(Item()), End(List(nil)),
			},
			wantTitle: "T",
			want: []notebook.Cell{
				withID("1", notebook.NewListItemCell(notebook.Unordered, "", nil)),
				withID("2", notebook.NewTextCell("loose", nil)),
			},
		},
		{
			name: "image inside a paragraph follows an empty text cell",
			events: []Event{
				Start(Paragraph()), Text("T"), End(Paragraph()),
				Start(Paragraph()),
				Start(Image(LinkInline, "u", "")), Text("alt"), End(Image(LinkInline, "u", "")),
				End(Paragraph()),
			},
			wantTitle: "T",
			want: []notebook.Cell{
				withID("1", notebook.NewTextCell("", nil)),
				withID("2", notebook.NewImageCell("u")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := &recordingDiagnostics{}
			title, cells := ConvertEvents(tt.events, WithDiagnostics(diagnostics))

			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.want, cells)
			assert.Len(t, diagnostics.messages, tt.warnings)
		})
	}
}

func TestCheckboxKeepsListItemFields(t *testing.T) {
	readOnly := true
	events := []Event{
		Start(List(nil)), Start(Item()), Text("x"), End(Item()), End(List(nil)),
	}
	c := newConverter(nil)
	for _, e := range events[:2] {
		c.handle(e)
	}
	item := c.current.(*notebook.ListItemCell)
	item.SetID("42")
	item.ReadOnly = &readOnly
	item.Level = notebook.Ptr[uint8](2)

	c.handle(TaskListMarker(true))

	checkbox, ok := c.current.(*notebook.CheckboxCell)
	require.True(t, ok)
	assert.Equal(t, "42", checkbox.ID())
	assert.True(t, checkbox.Checked)
	assert.Equal(t, &readOnly, checkbox.ReadOnly)
	assert.Equal(t, uint8(2), *checkbox.Level)
}
