package notebook

import "notebook-markdown-be/pkg/formatting"

// CellKind is the wire discriminator of a cell.
type CellKind string

const (
	KindText       CellKind = "text"
	KindHeading    CellKind = "heading"
	KindCode       CellKind = "code"
	KindListItem   CellKind = "list_item"
	KindCheckbox   CellKind = "checkbox"
	KindImage      CellKind = "image"
	KindDivider    CellKind = "divider"
	KindProvider   CellKind = "provider"
	KindTable      CellKind = "table"
	KindLog        CellKind = "log"
	KindDiscussion CellKind = "discussion"
	KindGraph      CellKind = "graph"
)

// Cell is one block of a notebook. The set of implementations is closed:
// every cell type lives in this package.
type Cell interface {
	ID() string
	SetID(id string)
	Kind() CellKind
	isCell()
}

// ContentCell is implemented by cells that hold text.
type ContentCell interface {
	Cell
	Content() string
	SetContent(content string)
}

// TextCellLike is implemented by cells whose content is rich text.
type TextCellLike interface {
	ContentCell
	Formatting() formatting.Formatting
	SetFormatting(f formatting.Formatting)
}

// HeadingType is the level of a heading cell.
type HeadingType string

const (
	H1 HeadingType = "h1"
	H2 HeadingType = "h2"
	H3 HeadingType = "h3"
)

// Level returns 1, 2 or 3.
func (h HeadingType) Level() int {
	switch h {
	case H2:
		return 2
	case H3:
		return 3
	default:
		return 1
	}
}

// ListType distinguishes numbered from bulleted list items.
type ListType string

const (
	Ordered   ListType = "ordered"
	Unordered ListType = "unordered"
)

type base struct {
	Id       string `json:"id"`
	ReadOnly *bool  `json:"readOnly,omitempty"`
}

func (b *base) ID() string      { return b.Id }
func (b *base) SetID(id string) { b.Id = id }

func (b *base) isCell() {}

type richText struct {
	Text   string                `json:"content"`
	Format formatting.Formatting `json:"formatting,omitempty"`
}

func (r *richText) Content() string                       { return r.Text }
func (r *richText) SetContent(content string)             { r.Text = content }
func (r *richText) Formatting() formatting.Formatting     { return r.Format }
func (r *richText) SetFormatting(f formatting.Formatting) { r.Format = f }

type TextCell struct {
	base
	richText
}

func (*TextCell) Kind() CellKind { return KindText }

type HeadingCell struct {
	base
	richText
	HeadingType HeadingType `json:"headingType"`
}

func (*HeadingCell) Kind() CellKind { return KindHeading }

type CodeCell struct {
	base
	Code   string  `json:"content"`
	Syntax *string `json:"syntax,omitempty"`
}

func (*CodeCell) Kind() CellKind { return KindCode }

// Code cells carry plain text only, so they are a ContentCell but not a
// TextCellLike.
func (c *CodeCell) Content() string           { return c.Code }
func (c *CodeCell) SetContent(content string) { c.Code = content }

type ListItemCell struct {
	base
	richText
	ListType    ListType `json:"listType"`
	StartNumber *uint16  `json:"startNumber,omitempty"`
	Level       *uint8   `json:"level,omitempty"`
}

func (*ListItemCell) Kind() CellKind { return KindListItem }

type CheckboxCell struct {
	base
	richText
	Checked bool   `json:"checked"`
	Level   *uint8 `json:"level,omitempty"`
}

func (*CheckboxCell) Kind() CellKind { return KindCheckbox }

type ImageCell struct {
	base
	URL    *string `json:"url,omitempty"`
	FileID *string `json:"fileId,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
}

func (*ImageCell) Kind() CellKind { return KindImage }

type DividerCell struct {
	base
}

func (*DividerCell) Kind() CellKind { return KindDivider }

type ProviderCell struct {
	base
	Intent    string  `json:"intent"`
	QueryData *string `json:"queryData,omitempty"`
	Title     string  `json:"title"`
}

func (*ProviderCell) Kind() CellKind { return KindProvider }

type TableCell struct {
	base
	Rows [][]formatting.RichText `json:"rows,omitempty"`
}

func (*TableCell) Kind() CellKind { return KindTable }

type LogCell struct {
	base
	DataLinks []string `json:"dataLinks,omitempty"`
}

func (*LogCell) Kind() CellKind { return KindLog }

type DiscussionCell struct {
	base
	ThreadID string `json:"threadId"`
}

func (*DiscussionCell) Kind() CellKind { return KindDiscussion }

type GraphCell struct {
	base
	DataLinks []string `json:"dataLinks,omitempty"`
	GraphType string   `json:"graphType,omitempty"`
}

func (*GraphCell) Kind() CellKind { return KindGraph }

// NewTextCell builds a text cell with the given content.
func NewTextCell(content string, f formatting.Formatting) *TextCell {
	return &TextCell{richText: richText{Text: content, Format: f}}
}

func NewHeadingCell(headingType HeadingType, content string, f formatting.Formatting) *HeadingCell {
	return &HeadingCell{richText: richText{Text: content, Format: f}, HeadingType: headingType}
}

func NewCodeCell(content string, syntax *string) *CodeCell {
	return &CodeCell{Code: content, Syntax: syntax}
}

func NewListItemCell(listType ListType, content string, f formatting.Formatting) *ListItemCell {
	return &ListItemCell{richText: richText{Text: content, Format: f}, ListType: listType}
}

func NewCheckboxCell(checked bool, content string, f formatting.Formatting) *CheckboxCell {
	return &CheckboxCell{richText: richText{Text: content, Format: f}, Checked: checked}
}

func NewImageCell(url string) *ImageCell {
	return &ImageCell{URL: &url}
}

// Ptr returns a pointer to v, for the optional cell fields.
func Ptr[T any](v T) *T {
	return &v
}
