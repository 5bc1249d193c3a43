package formatting

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// AnnotationWithOffset places an annotation at a rune offset of a text.
type AnnotationWithOffset struct {
	Offset     uint32
	Annotation Annotation
}

func NewAnnotationWithOffset(offset uint32, annotation Annotation) AnnotationWithOffset {
	return AnnotationWithOffset{Offset: offset, Annotation: annotation}
}

// Translate returns a copy shifted by delta. Offsets never go below zero.
func (a AnnotationWithOffset) Translate(delta int64) AnnotationWithOffset {
	offset := int64(a.Offset) + delta
	if offset < 0 {
		offset = 0
	}
	return AnnotationWithOffset{Offset: uint32(offset), Annotation: a.Annotation}
}

// Formatting is the list of annotations applied to a text, sorted by offset.
// The order of annotations sharing an offset is undefined.
type Formatting []AnnotationWithOffset

// Insert adds an annotation after any existing annotations at the same offset.
func (f Formatting) Insert(a AnnotationWithOffset) Formatting {
	index := FirstIndexStrictlyAfter(f, a.Offset)
	f = append(f, AnnotationWithOffset{})
	copy(f[index+1:], f[index:])
	f[index] = a
	return f
}

// IsSorted reports whether offsets are non-decreasing.
func IsSorted(f Formatting) bool {
	return sort.SliceIsSorted(f, func(i, j int) bool { return f[i].Offset < f[j].Offset })
}

type annotationJSON struct {
	Offset    uint32         `json:"offset"`
	Type      AnnotationKind `json:"type"`
	URL       string         `json:"url,omitempty"`
	Key       string         `json:"key,omitempty"`
	Value     *string        `json:"value,omitempty"`
	Name      string         `json:"name,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}

func (a AnnotationWithOffset) MarshalJSON() ([]byte, error) {
	out := annotationJSON{Offset: a.Offset, Type: a.Annotation.Kind}
	switch a.Annotation.Kind {
	case KindStartLink, KindNotebookLink:
		out.URL = a.Annotation.URL
	case KindLabel:
		if a.Annotation.Label == nil {
			return nil, fmt.Errorf("label annotation at offset %d has no label", a.Offset)
		}
		out.Key = a.Annotation.Label.Key
		value := a.Annotation.Label.Value
		out.Value = &value
	case KindMention:
		if a.Annotation.Mention == nil {
			return nil, fmt.Errorf("mention annotation at offset %d has no mention", a.Offset)
		}
		out.Name = a.Annotation.Mention.Name
		out.UserID = a.Annotation.Mention.UserID
	case KindTimestamp:
		if a.Annotation.Timestamp == nil {
			return nil, fmt.Errorf("timestamp annotation at offset %d has no timestamp", a.Offset)
		}
		ts := a.Annotation.Timestamp.UTC()
		out.Timestamp = &ts
	}
	return json.Marshal(out)
}

func (a *AnnotationWithOffset) UnmarshalJSON(data []byte) error {
	var in annotationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	annotation := Annotation{Kind: in.Type}
	switch in.Type {
	case KindStartBold, KindEndBold, KindStartCode, KindEndCode,
		KindStartHighlight, KindEndHighlight, KindStartItalics, KindEndItalics,
		KindStartStrikethrough, KindEndStrikethrough, KindStartUnderline,
		KindEndUnderline, KindEndLink:
	case KindStartLink, KindNotebookLink:
		annotation.URL = in.URL
	case KindLabel:
		label := Label{Key: in.Key}
		if in.Value != nil {
			label.Value = *in.Value
		}
		annotation.Label = &label
	case KindMention:
		annotation.Mention = &Mention{Name: in.Name, UserID: in.UserID}
	case KindTimestamp:
		if in.Timestamp == nil {
			return fmt.Errorf("timestamp annotation at offset %d has no timestamp", in.Offset)
		}
		annotation.Timestamp = in.Timestamp
	default:
		return fmt.Errorf("unknown annotation type %q", in.Type)
	}
	a.Offset = in.Offset
	a.Annotation = annotation
	return nil
}
