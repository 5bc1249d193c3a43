package markdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notebook-markdown-be/pkg/formatting"
	"notebook-markdown-be/pkg/notebook"
)

func formattedText(text string, f formatting.Formatting, opts ...Option) string {
	c := NewNotebookConverter(opts...)
	c.ConvertFormattedText(text, f)
	return c.IntoMarkdown()
}

func orderedItem(content string, start *uint16, level *uint8) *notebook.ListItemCell {
	item := notebook.NewListItemCell(notebook.Ordered, content, nil)
	item.StartNumber = start
	item.Level = level
	return item
}

func unorderedItem(content string, level *uint8) *notebook.ListItemCell {
	item := notebook.NewListItemCell(notebook.Unordered, content, nil)
	item.Level = level
	return item
}

func TestConvertTitle(t *testing.T) {
	c := NewNotebookConverter()
	c.ConvertTitle("Some title")
	assert.Equal(t, "# Some title", c.IntoMarkdown())

	c = NewNotebookConverter()
	c.ConvertTitle("Two\nlines")
	assert.Equal(t, "# Two lines", c.String())
}

func TestNotebookToMarkdownDecrementsHeadings(t *testing.T) {
	cells := []notebook.Cell{
		notebook.NewHeadingCell(notebook.H1, "H1", nil),
		notebook.NewHeadingCell(notebook.H2, "H2", nil),
	}

	withTitle := NotebookToMarkdown(notebook.NewNotebook{Title: "T", Cells: cells})
	assert.Equal(t, "# T\n\n## H1\n\n### H2", withTitle)

	withoutTitle := NotebookToMarkdown(notebook.NewNotebook{Cells: cells})
	assert.Equal(t, "# H1\n\n## H2", withoutTitle)
}

func TestConvertFormattedText(t *testing.T) {
	timestamp := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		text       string
		formatting formatting.Formatting
		want       string
	}{
		{
			name: "plain text",
			text: "Some text",
			want: "Some text",
		},
		{
			name: "bold italics and strikethrough",
			text: "Some bold, italics, strikethrough",
			formatting: annotations(
				5, formatting.StartBold(),
				9, formatting.EndBold(),
				11, formatting.StartItalics(),
				18, formatting.EndItalics(),
				20, formatting.StartStrikethrough(),
				33, formatting.EndStrikethrough(),
			),
			want: "Some **bold**, *italics*, ~~strikethrough~~",
		},
		{
			name:       "mention",
			text:       "Some @mention",
			formatting: annotations(5, formatting.MentionAnnotation(formatting.Mention{Name: "mention", UserID: "user_id"})),
			want:       "Some **@mention**",
		},
		{
			name:       "timestamp",
			text:       "Some 2020-01-01T00:00:00Z timestamp",
			formatting: annotations(5, formatting.TimestampAnnotation(timestamp)),
			want:       "Some **2020-01-01T00:00:00Z** timestamp",
		},
		{
			name:       "label",
			text:       "Some foo:bar",
			formatting: annotations(5, formatting.LabelAnnotation(formatting.NewLabel("foo", "bar"))),
			want:       "Some **foo:bar**",
		},
		{
			name:       "point annotation is clamped to the text",
			text:       "Some @me",
			formatting: annotations(5, formatting.MentionAnnotation(formatting.Mention{Name: "mention"})),
			want:       "Some **@me**",
		},
		{
			name:       "notebook link",
			text:       "open notebook/a1b2 now",
			formatting: annotations(5, formatting.NotebookLink("notebook/a1b2")),
			want:       "open [notebook/a1b2](notebook/a1b2) now",
		},
		{
			name: "link",
			text: "Some link here",
			formatting: annotations(
				5, formatting.StartLink("https://go.dev"),
				9, formatting.EndLink(),
			),
			want: "Some [link](https://go.dev) here",
		},
		{
			name: "link replaced by another link",
			text: "ab",
			formatting: annotations(
				0, formatting.StartLink("https://a.example"),
				1, formatting.StartLink("https://b.example"),
				2, formatting.EndLink(),
			),
			want: "[a](https://a.example)[b](https://b.example)",
		},
		{
			name: "inline code",
			text: "Some code here",
			formatting: annotations(
				5, formatting.StartCode(),
				9, formatting.EndCode(),
			),
			want: "Some `code` here",
		},
		{
			name:       "unclosed bold",
			text:       "Some bold",
			formatting: annotations(5, formatting.StartBold()),
			want:       "Some **bold**",
		},
		{
			name:       "unclosed code",
			text:       "Some code",
			formatting: annotations(5, formatting.StartCode()),
			want:       "Some `code`",
		},
		{
			name: "mixed formatting",
			text: "A link with code and bold here",
			formatting: annotations(
				2, formatting.StartLink("http://example.com"),
				12, formatting.StartCode(),
				16, formatting.EndCode(),
				21, formatting.StartBold(),
				25, formatting.EndBold(),
				25, formatting.EndLink(),
			),
			want: "A [link with `code` and **bold**](http://example.com) here",
		},
		{
			name: "overlapping formatting",
			text: "Some overlapping formatting",
			formatting: annotations(
				0, formatting.StartBold(),
				5, formatting.StartItalics(),
				16, formatting.EndBold(),
				27, formatting.EndItalics(),
			),
			want: "**Some *overlapping** formatting*",
		},
		{
			name: "highlight",
			text: "Some highlighted text",
			formatting: annotations(
				5, formatting.StartHighlight(),
				21, formatting.EndHighlight(),
			),
			want: "Some <mark>highlighted text</mark>",
		},
		{
			name: "underline is written as emphasis",
			text: "Some underlined text",
			formatting: annotations(
				5, formatting.StartUnderline(),
				15, formatting.EndUnderline(),
			),
			want: "Some *underlined* text",
		},
		{
			name: "multibyte offsets",
			text: "héllo wörld",
			formatting: annotations(
				6, formatting.StartBold(),
				11, formatting.EndBold(),
			),
			want: "héllo **wörld**",
		},
		{
			name: "markdown characters are escaped",
			text: "a*b_c [d] `e` ~f <g> \\",
			want: "a\\*b\\_c \\[d\\] \\`e\\` \\~f \\<g> \\\\",
		},
		{
			name: "newline becomes a hard break",
			text: "one\ntwo",
			want: "one\\\ntwo",
		},
		{
			name: "trailing newlines become html breaks",
			text: "ends\n\n",
			want: "ends<br><br>",
		},
		{
			name: "code containing a backtick",
			text: "run ab`cd now",
			formatting: annotations(
				4, formatting.StartCode(),
				9, formatting.EndCode(),
			),
			want: "run ``ab`cd`` now",
		},
		{
			name: "code starting with a backtick is padded",
			text: "x `y",
			formatting: annotations(
				2, formatting.StartCode(),
				4, formatting.EndCode(),
			),
			want: "x `` `y ``",
		},
		{
			name: "code wrapped in spaces is padded",
			text: "a b c",
			formatting: annotations(
				1, formatting.StartCode(),
				4, formatting.EndCode(),
			),
			want: "a`  b  `c",
		},
		{
			name: "code is not escaped",
			text: "a*b\nc",
			formatting: annotations(
				0, formatting.StartCode(),
				5, formatting.EndCode(),
			),
			want: "`a*b c`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formattedText(tt.text, tt.formatting))
		})
	}
}

func TestConvertFormattedTextEscapesBlockMarkers(t *testing.T) {
	tests := map[string]string{
		"- not a list":     "\\- not a list",
		"+ not a list":     "\\+ not a list",
		"# not a heading":  "\\# not a heading",
		"###### six":       "\\###### six",
		"1. not a list":    "1\\. not a list",
		"2020) a year":     "2020\\) a year",
		"> not a quote":    "\\> not a quote",
		"---":              "\\---",
		"title\n===":       "title\\\n\\===",
		"a\n- b":           "a\\\n\\- b",
		"   # indented":    "   \\# indented",
		"-dash":            "-dash",
		"#hashtag":         "#hashtag",
		"####### seven":    "####### seven",
		"100 items":        "100 items",
		"1234567890. long": "1234567890. long",
		"a - b # c":        "a - b # c",
	}

	for text, want := range tests {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, want, formattedText(text, nil))
		})
	}
}

func TestConvertFormattedTextRepairsFormatting(t *testing.T) {
	t.Run("start at the end of the text is ignored", func(t *testing.T) {
		diagnostics := &recordingDiagnostics{}
		got := formattedText("Some text", annotations(
			9, formatting.StartBold(),
			10, formatting.EndBold(),
		), WithDiagnostics(diagnostics))

		assert.Equal(t, "Some text", got)
		assert.Equal(t, []string{"markdown: formatting offset beyond end of text"}, diagnostics.messages)
	})

	t.Run("unsorted formatting is sorted", func(t *testing.T) {
		diagnostics := &recordingDiagnostics{}
		got := formattedText("Some bold", annotations(
			9, formatting.EndBold(),
			5, formatting.StartBold(),
		), WithDiagnostics(diagnostics))

		assert.Equal(t, "Some **bold**", got)
		assert.Equal(t, []string{"markdown: formatting is not sorted by offset"}, diagnostics.messages)
	})
}

func TestCellsToMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		cells []notebook.Cell
		want  string
	}{
		{
			name: "text cells",
			cells: []notebook.Cell{
				notebook.NewTextCell("Some text", nil),
				notebook.NewTextCell("Some more text", nil),
			},
			want: "Some text\n\nSome more text",
		},
		{
			name: "images",
			cells: []notebook.Cell{
				notebook.NewImageCell("http://example.com/image.png"),
				&notebook.ImageCell{FileID: notebook.Ptr("file_id")},
			},
			want: "![](http://example.com/image.png)",
		},
		{
			name: "code blocks",
			cells: []notebook.Cell{
				notebook.NewCodeCell("Some code", nil),
				notebook.NewCodeCell("Some more code\non multiple lines", nil),
			},
			want: "\n```\nSome code\n```\n\n```\nSome more code\non multiple lines\n```",
		},
		{
			name: "code block with syntax after text",
			cells: []notebook.Cell{
				notebook.NewTextCell("Run:", nil),
				notebook.NewCodeCell("go test ./...", notebook.Ptr("sh")),
			},
			want: "Run:\n\n```sh\ngo test ./...\n```",
		},
		{
			name: "code block containing a fence",
			cells: []notebook.Cell{
				notebook.NewCodeCell("```go\nx := 1\n```", notebook.Ptr("markdown")),
			},
			want: "\n````markdown\n```go\nx := 1\n```\n````",
		},
		{
			name: "ordered list without start number",
			cells: []notebook.Cell{
				orderedItem("one", nil, nil),
				orderedItem("two", nil, nil),
			},
			want: "1. one\n1. two",
		},
		{
			name: "ordered list with start number",
			cells: []notebook.Cell{
				orderedItem("two", notebook.Ptr[uint16](2), nil),
				orderedItem("three", notebook.Ptr[uint16](3), nil),
			},
			want: "2. two\n2. three",
		},
		{
			name: "nested ordered lists",
			cells: []notebook.Cell{
				orderedItem("one", notebook.Ptr[uint16](1), nil),
				orderedItem("one-one", notebook.Ptr[uint16](1), notebook.Ptr[uint8](1)),
				orderedItem("one-two", notebook.Ptr[uint16](2), notebook.Ptr[uint8](1)),
				orderedItem("two", notebook.Ptr[uint16](2), nil),
			},
			want: "1. one\n   1. one-one\n   1. one-two\n1. two",
		},
		{
			name: "nested unordered lists",
			cells: []notebook.Cell{
				unorderedItem("one", nil),
				unorderedItem("one-one", notebook.Ptr[uint8](1)),
				unorderedItem("one-two", notebook.Ptr[uint8](1)),
				unorderedItem("two", nil),
			},
			want: "- one\n  - one-one\n  - one-two\n- two",
		},
		{
			name: "nested list of another type",
			cells: []notebook.Cell{
				unorderedItem("a", nil),
				orderedItem("b", nil, notebook.Ptr[uint8](1)),
				unorderedItem("c", nil),
			},
			want: "- a\n  1. b\n- c",
		},
		{
			name: "top level list of another type after a nested item",
			cells: []notebook.Cell{
				unorderedItem("a", nil),
				orderedItem("b", nil, notebook.Ptr[uint8](1)),
				orderedItem("c", nil, nil),
			},
			want: "- a\n  1. b\n\n1. c",
		},
		{
			name: "sibling list of another type",
			cells: []notebook.Cell{
				unorderedItem("a", nil),
				orderedItem("b", nil, nil),
			},
			want: "- a\n\n1. b",
		},
		{
			name: "checkboxes",
			cells: []notebook.Cell{
				notebook.NewCheckboxCell(true, "one", nil),
				notebook.NewCheckboxCell(false, "two", nil),
			},
			want: "- [x] one\n- [ ] two\n",
		},
		{
			name: "text cells after lists",
			cells: []notebook.Cell{
				orderedItem("one", nil, nil),
				orderedItem("two", nil, nil),
				notebook.NewTextCell("three", nil),
				notebook.NewCheckboxCell(false, "four", nil),
				notebook.NewCheckboxCell(false, "five", nil),
				notebook.NewTextCell("six", nil),
			},
			want: "1. one\n1. two\n\nthree\n\n- [ ] four\n- [ ] five\n\nsix",
		},
		{
			name: "heading with newline",
			cells: []notebook.Cell{
				notebook.NewHeadingCell(notebook.H3, "a\nb", nil),
			},
			want: "### a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellsToMarkdown(tt.cells))
		})
	}
}

func TestCellsToMarkdownSkipsCellsWithoutMarkdownForm(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	cells := []notebook.Cell{
		notebook.NewTextCell("before", nil),
		&notebook.DividerCell{},
		&notebook.TableCell{},
		&notebook.LogCell{},
		&notebook.DiscussionCell{ThreadID: "thread"},
		&notebook.GraphCell{},
		notebook.NewTextCell("after", nil),
	}

	assert.Equal(t, "before\n\nafter", CellsToMarkdown(cells, WithDiagnostics(diagnostics)))
	assert.Len(t, diagnostics.messages, 5)
}

func TestCellsToMarkdownProvider(t *testing.T) {
	queryData := notebook.SetQueryField(notebook.FormEncodedMIME, "query", "sum(rate(http_requests_total[5m]))")
	cells := []notebook.Cell{
		&notebook.ProviderCell{Intent: ProviderIntent, QueryData: &queryData},
		&notebook.ProviderCell{Intent: "loki,events", QueryData: &queryData},
		&notebook.ProviderCell{Intent: ProviderIntent},
	}
	diagnostics := &recordingDiagnostics{}

	got := CellsToMarkdown(cells, WithDiagnostics(diagnostics))

	assert.Equal(t, "\n```promql\n# fiberplane-provider-query\nsum(rate(http_requests_total[5m]))\n```", got)
	assert.Equal(t, []string{
		"markdown: provider cell cannot be rendered to markdown",
		"markdown: provider cell cannot be rendered to markdown",
	}, diagnostics.messages)
}
