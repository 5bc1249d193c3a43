package markdown

// EventType identifies the kind of a lexer event.
type EventType int

const (
	EventStart EventType = iota
	EventEnd
	EventText
	EventCode
	EventHTML
	EventInlineHTML
	EventSoftBreak
	EventHardBreak
	EventRule
	EventTaskListMarker
	EventFootnoteReference
)

var eventTypeNames = map[EventType]string{
	EventStart:             "start",
	EventEnd:               "end",
	EventText:              "text",
	EventCode:              "code",
	EventHTML:              "html",
	EventInlineHTML:        "inline_html",
	EventSoftBreak:         "soft_break",
	EventHardBreak:         "hard_break",
	EventRule:              "rule",
	EventTaskListMarker:    "task_list_marker",
	EventFootnoteReference: "footnote_reference",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// TagKind identifies the container a Start or End event opens or closes.
type TagKind int

const (
	TagParagraph TagKind = iota
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagList
	TagItem
	TagImage
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagFootnoteDefinition
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
)

var tagKindNames = map[TagKind]string{
	TagParagraph:          "paragraph",
	TagHeading:            "heading",
	TagBlockQuote:         "block_quote",
	TagCodeBlock:          "code_block",
	TagList:               "list",
	TagItem:               "item",
	TagImage:              "image",
	TagEmphasis:           "emphasis",
	TagStrong:             "strong",
	TagStrikethrough:      "strikethrough",
	TagLink:               "link",
	TagFootnoteDefinition: "footnote_definition",
	TagTable:              "table",
	TagTableHead:          "table_head",
	TagTableRow:           "table_row",
	TagTableCell:          "table_cell",
}

func (k TagKind) String() string {
	if name, ok := tagKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CodeBlockKind distinguishes fenced from indented code blocks.
type CodeBlockKind int

const (
	CodeBlockFenced CodeBlockKind = iota
	CodeBlockIndented
)

// LinkType is how a link or image was written in the source.
type LinkType int

const (
	LinkInline LinkType = iota
	LinkReference
	LinkAutolink
	LinkEmail
)

func (t LinkType) String() string {
	switch t {
	case LinkInline:
		return "inline"
	case LinkReference:
		return "reference"
	case LinkAutolink:
		return "autolink"
	case LinkEmail:
		return "email"
	}
	return "unknown"
}

// Tag describes a container. Only the fields relevant to Kind are set.
type Tag struct {
	Kind TagKind

	// Heading
	Level int

	// Code block
	CodeBlock CodeBlockKind
	Language  string

	// List; nil for bullet lists
	Start *uint64

	// Link and image
	LinkType LinkType
	URL      string
	Title    string

	// Footnote definition
	Label string
}

func Paragraph() Tag  { return Tag{Kind: TagParagraph} }
func BlockQuote() Tag { return Tag{Kind: TagBlockQuote} }
func Item() Tag       { return Tag{Kind: TagItem} }
func Emphasis() Tag   { return Tag{Kind: TagEmphasis} }
func Strong() Tag     { return Tag{Kind: TagStrong} }

func Strikethrough() Tag { return Tag{Kind: TagStrikethrough} }
func Table() Tag         { return Tag{Kind: TagTable} }
func TableHead() Tag     { return Tag{Kind: TagTableHead} }
func TableRow() Tag      { return Tag{Kind: TagTableRow} }
func TableCell() Tag     { return Tag{Kind: TagTableCell} }

func Heading(level int) Tag {
	return Tag{Kind: TagHeading, Level: level}
}

func FencedCodeBlock(language string) Tag {
	return Tag{Kind: TagCodeBlock, CodeBlock: CodeBlockFenced, Language: language}
}

func IndentedCodeBlock() Tag {
	return Tag{Kind: TagCodeBlock, CodeBlock: CodeBlockIndented}
}

// List opens a list; pass nil for a bullet list.
func List(start *uint64) Tag {
	return Tag{Kind: TagList, Start: start}
}

func Image(linkType LinkType, url, title string) Tag {
	return Tag{Kind: TagImage, LinkType: linkType, URL: url, Title: title}
}

func Link(linkType LinkType, url, title string) Tag {
	return Tag{Kind: TagLink, LinkType: linkType, URL: url, Title: title}
}

func FootnoteDefinition(label string) Tag {
	return Tag{Kind: TagFootnoteDefinition, Label: label}
}

// Event is one item of the flat token stream produced by Lex.
type Event struct {
	Type EventType
	// Tag is set for Start and End events.
	Tag Tag
	// Text carries the payload of Text, Code, HTML, InlineHTML and
	// FootnoteReference events.
	Text string
	// Checked is set for TaskListMarker events.
	Checked bool
}

func Start(tag Tag) Event { return Event{Type: EventStart, Tag: tag} }
func End(tag Tag) Event   { return Event{Type: EventEnd, Tag: tag} }

func Text(text string) Event       { return Event{Type: EventText, Text: text} }
func Code(code string) Event       { return Event{Type: EventCode, Text: code} }
func HTML(html string) Event       { return Event{Type: EventHTML, Text: html} }
func InlineHTML(html string) Event { return Event{Type: EventInlineHTML, Text: html} }

func SoftBreak() Event { return Event{Type: EventSoftBreak} }
func HardBreak() Event { return Event{Type: EventHardBreak} }
func Rule() Event      { return Event{Type: EventRule} }

func TaskListMarker(checked bool) Event {
	return Event{Type: EventTaskListMarker, Checked: checked}
}

func FootnoteReference(label string) Event {
	return Event{Type: EventFootnoteReference, Text: label}
}
