package formatting

import (
	"time"
	"unicode/utf8"
)

// AnnotationKind identifies the type of a rich-text annotation.
type AnnotationKind string

const (
	KindStartBold          AnnotationKind = "start_bold"
	KindEndBold            AnnotationKind = "end_bold"
	KindStartCode          AnnotationKind = "start_code"
	KindEndCode            AnnotationKind = "end_code"
	KindStartHighlight     AnnotationKind = "start_highlight"
	KindEndHighlight       AnnotationKind = "end_highlight"
	KindStartItalics       AnnotationKind = "start_italics"
	KindEndItalics         AnnotationKind = "end_italics"
	KindStartStrikethrough AnnotationKind = "start_strikethrough"
	KindEndStrikethrough   AnnotationKind = "end_strikethrough"
	KindStartUnderline     AnnotationKind = "start_underline"
	KindEndUnderline       AnnotationKind = "end_underline"
	KindStartLink          AnnotationKind = "start_link"
	KindEndLink            AnnotationKind = "end_link"
	KindLabel              AnnotationKind = "label"
	KindMention            AnnotationKind = "mention"
	KindNotebookLink       AnnotationKind = "notebook_link"
	KindTimestamp          AnnotationKind = "timestamp"
)

// Annotation is a typed marker attached to a character offset.
//
// Only the payload field matching Kind is meaningful: URL for start_link and
// notebook_link, Label, Mention and Timestamp for their point kinds.
type Annotation struct {
	Kind      AnnotationKind
	URL       string
	Label     *Label
	Mention   *Mention
	Timestamp *time.Time
}

func StartBold() Annotation          { return Annotation{Kind: KindStartBold} }
func EndBold() Annotation            { return Annotation{Kind: KindEndBold} }
func StartCode() Annotation          { return Annotation{Kind: KindStartCode} }
func EndCode() Annotation            { return Annotation{Kind: KindEndCode} }
func StartHighlight() Annotation     { return Annotation{Kind: KindStartHighlight} }
func EndHighlight() Annotation       { return Annotation{Kind: KindEndHighlight} }
func StartItalics() Annotation       { return Annotation{Kind: KindStartItalics} }
func EndItalics() Annotation         { return Annotation{Kind: KindEndItalics} }
func StartStrikethrough() Annotation { return Annotation{Kind: KindStartStrikethrough} }
func EndStrikethrough() Annotation   { return Annotation{Kind: KindEndStrikethrough} }
func StartUnderline() Annotation     { return Annotation{Kind: KindStartUnderline} }
func EndUnderline() Annotation       { return Annotation{Kind: KindEndUnderline} }
func EndLink() Annotation            { return Annotation{Kind: KindEndLink} }

func StartLink(url string) Annotation {
	return Annotation{Kind: KindStartLink, URL: url}
}

func NotebookLink(url string) Annotation {
	return Annotation{Kind: KindNotebookLink, URL: url}
}

func LabelAnnotation(label Label) Annotation {
	return Annotation{Kind: KindLabel, Label: &label}
}

func MentionAnnotation(mention Mention) Annotation {
	return Annotation{Kind: KindMention, Mention: &mention}
}

func TimestampAnnotation(ts time.Time) Annotation {
	return Annotation{Kind: KindTimestamp, Timestamp: &ts}
}

// IsPaired reports whether the annotation is one half of a Start*/End* pair.
func (a Annotation) IsPaired() bool {
	switch a.Kind {
	case KindLabel, KindMention, KindNotebookLink, KindTimestamp:
		return false
	default:
		return true
	}
}

// ToggleOpposite returns the annotation that undoes a, if there is one.
// EndLink has no opposite because the URL is unknown.
func (a Annotation) ToggleOpposite() (Annotation, bool) {
	switch a.Kind {
	case KindStartBold:
		return EndBold(), true
	case KindEndBold:
		return StartBold(), true
	case KindStartCode:
		return EndCode(), true
	case KindEndCode:
		return StartCode(), true
	case KindStartHighlight:
		return EndHighlight(), true
	case KindEndHighlight:
		return StartHighlight(), true
	case KindStartItalics:
		return EndItalics(), true
	case KindEndItalics:
		return StartItalics(), true
	case KindStartStrikethrough:
		return EndStrikethrough(), true
	case KindEndStrikethrough:
		return StartStrikethrough(), true
	case KindStartUnderline:
		return EndUnderline(), true
	case KindEndUnderline:
		return StartUnderline(), true
	case KindStartLink:
		return EndLink(), true
	}
	return Annotation{}, false
}

// Equal compares kinds and payloads.
func (a Annotation) Equal(b Annotation) bool {
	if a.Kind != b.Kind || a.URL != b.URL {
		return false
	}
	if !equalPtr(a.Label, b.Label) || !equalPtr(a.Mention, b.Mention) {
		return false
	}
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		return true
	case a.Timestamp == nil || b.Timestamp == nil:
		return false
	default:
		return a.Timestamp.Equal(*b.Timestamp)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Label is a key/value tag embedded in text.
type Label struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewLabel(key, value string) Label {
	return Label{Key: key, Value: value}
}

// String returns "key:value", or just the key when there is no value.
func (l Label) String() string {
	if l.Value == "" {
		return l.Key
	}
	return l.Key + ":" + l.Value
}

// Mention references a user. It runs from its offset to the end of "@name".
type Mention struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

func (m Mention) String() string {
	return "@" + m.Name
}

// FormatTimestamp renders a timestamp in its canonical RFC 3339 form.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

// CanonicalText returns the text a point annotation stands for, and false for
// paired annotations.
func (a Annotation) CanonicalText() (string, bool) {
	switch a.Kind {
	case KindLabel:
		if a.Label != nil {
			return a.Label.String(), true
		}
	case KindMention:
		if a.Mention != nil {
			return a.Mention.String(), true
		}
	case KindTimestamp:
		if a.Timestamp != nil {
			return FormatTimestamp(*a.Timestamp), true
		}
	case KindNotebookLink:
		return a.URL, true
	}
	return "", false
}

// CharCount counts Unicode scalar values, the unit all offsets are expressed in.
func CharCount(s string) uint32 {
	return uint32(utf8.RuneCountInString(s))
}

// RichText pairs plain text with the formatting applied to it.
type RichText struct {
	Text       string     `json:"text"`
	Formatting Formatting `json:"formatting"`
}

func NewPlainText(text string) RichText {
	return RichText{Text: text}
}
