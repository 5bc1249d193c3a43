package formatting

import "time"

// ActiveFormatting is the set of styles that are on at a given offset.
// It is derived by replaying annotations and is never persisted.
type ActiveFormatting struct {
	Bold          bool
	Code          bool
	Highlight     bool
	Italics       bool
	Strikethrough bool
	Underline     bool
	Link          *string
	Label         *Label
	Mention       *Mention
	NotebookLink  *string
	Timestamp     *time.Time
}

func (f ActiveFormatting) WithBold(v bool) ActiveFormatting {
	f.Bold = v
	return f
}

func (f ActiveFormatting) WithCode(v bool) ActiveFormatting {
	f.Code = v
	return f
}

func (f ActiveFormatting) WithHighlight(v bool) ActiveFormatting {
	f.Highlight = v
	return f
}

func (f ActiveFormatting) WithItalics(v bool) ActiveFormatting {
	f.Italics = v
	return f
}

func (f ActiveFormatting) WithStrikethrough(v bool) ActiveFormatting {
	f.Strikethrough = v
	return f
}

func (f ActiveFormatting) WithUnderline(v bool) ActiveFormatting {
	f.Underline = v
	return f
}

func (f ActiveFormatting) WithLink(url *string) ActiveFormatting {
	f.Link = url
	return f
}

func (f ActiveFormatting) WithLabel(label *Label) ActiveFormatting {
	f.Label = label
	return f
}

func (f ActiveFormatting) WithMention(mention *Mention) ActiveFormatting {
	f.Mention = mention
	return f
}

func (f ActiveFormatting) WithNotebookLink(url *string) ActiveFormatting {
	f.NotebookLink = url
	return f
}

func (f ActiveFormatting) WithTimestamp(ts *time.Time) ActiveFormatting {
	f.Timestamp = ts
	return f
}

// Contains reports whether the annotation is satisfied by this state. End*
// kinds are satisfied by the absence of their style.
func (f ActiveFormatting) Contains(a Annotation) bool {
	switch a.Kind {
	case KindStartBold:
		return f.Bold
	case KindEndBold:
		return !f.Bold
	case KindStartCode:
		return f.Code
	case KindEndCode:
		return !f.Code
	case KindStartHighlight:
		return f.Highlight
	case KindEndHighlight:
		return !f.Highlight
	case KindStartItalics:
		return f.Italics
	case KindEndItalics:
		return !f.Italics
	case KindStartStrikethrough:
		return f.Strikethrough
	case KindEndStrikethrough:
		return !f.Strikethrough
	case KindStartUnderline:
		return f.Underline
	case KindEndUnderline:
		return !f.Underline
	case KindStartLink:
		return f.Link != nil
	case KindEndLink:
		return f.Link == nil
	case KindLabel:
		return f.Label != nil
	case KindMention:
		return f.Mention != nil
	case KindNotebookLink:
		return f.NotebookLink != nil
	case KindTimestamp:
		return f.Timestamp != nil
	}
	return false
}

// Apply returns the state after replaying a single annotation.
func (f ActiveFormatting) Apply(a Annotation) ActiveFormatting {
	switch a.Kind {
	case KindStartBold, KindEndBold:
		return f.WithBold(a.Kind == KindStartBold)
	case KindStartCode, KindEndCode:
		return f.WithCode(a.Kind == KindStartCode)
	case KindStartHighlight, KindEndHighlight:
		return f.WithHighlight(a.Kind == KindStartHighlight)
	case KindStartItalics, KindEndItalics:
		return f.WithItalics(a.Kind == KindStartItalics)
	case KindStartStrikethrough, KindEndStrikethrough:
		return f.WithStrikethrough(a.Kind == KindStartStrikethrough)
	case KindStartUnderline, KindEndUnderline:
		return f.WithUnderline(a.Kind == KindStartUnderline)
	case KindStartLink:
		url := a.URL
		return f.WithLink(&url)
	case KindEndLink:
		return f.WithLink(nil)
	case KindLabel:
		return f.WithLabel(a.Label)
	case KindMention:
		return f.WithMention(a.Mention)
	case KindNotebookLink:
		url := a.URL
		return f.WithNotebookLink(&url)
	case KindTimestamp:
		return f.WithTimestamp(a.Timestamp)
	}
	return f
}

// ActiveAt replays every annotation with an offset up to and including the
// given one.
func ActiveAt(f Formatting, offset uint32) ActiveFormatting {
	var state ActiveFormatting
	for _, a := range f[:FirstIndexStrictlyAfter(f, offset)] {
		state = state.Apply(a.Annotation)
	}
	return state
}

// Diff returns the annotations that turn reference into f.
//
// Slots are visited in a fixed order (bold, code, highlight, italics, link,
// strikethrough, underline, label, mention, notebook link, timestamp) so the
// output is reproducible. Point annotations have no removal form, so only new
// point values are emitted.
func (f ActiveFormatting) Diff(reference ActiveFormatting) []Annotation {
	var annotations []Annotation
	toggle := func(on, was bool, start, end Annotation) {
		if on == was {
			return
		}
		if on {
			annotations = append(annotations, start)
		} else {
			annotations = append(annotations, end)
		}
	}

	toggle(f.Bold, reference.Bold, StartBold(), EndBold())
	toggle(f.Code, reference.Code, StartCode(), EndCode())
	toggle(f.Highlight, reference.Highlight, StartHighlight(), EndHighlight())
	toggle(f.Italics, reference.Italics, StartItalics(), EndItalics())
	if !equalPtr(f.Link, reference.Link) {
		if f.Link != nil {
			annotations = append(annotations, StartLink(*f.Link))
		} else {
			annotations = append(annotations, EndLink())
		}
	}
	toggle(f.Strikethrough, reference.Strikethrough, StartStrikethrough(), EndStrikethrough())
	toggle(f.Underline, reference.Underline, StartUnderline(), EndUnderline())
	if f.Label != nil && !equalPtr(f.Label, reference.Label) {
		annotations = append(annotations, LabelAnnotation(*f.Label))
	}
	if f.Mention != nil && !equalPtr(f.Mention, reference.Mention) {
		annotations = append(annotations, MentionAnnotation(*f.Mention))
	}
	if f.NotebookLink != nil && !equalPtr(f.NotebookLink, reference.NotebookLink) {
		annotations = append(annotations, NotebookLink(*f.NotebookLink))
	}
	if f.Timestamp != nil && (reference.Timestamp == nil || !f.Timestamp.Equal(*reference.Timestamp)) {
		annotations = append(annotations, TimestampAnnotation(*f.Timestamp))
	}
	return annotations
}
