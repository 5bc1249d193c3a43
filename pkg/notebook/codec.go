package notebook

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MarshalCell encodes a cell with its kind in a "type" field.
func MarshalCell(c Cell) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal %s cell: %w", c.Kind(), err)
	}
	return sjson.SetBytes(data, "type", string(c.Kind()))
}

// MarshalCells encodes cells as a JSON array. A nil slice encodes as [].
func MarshalCells(cells []Cell) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(cells))
	for _, c := range cells {
		data, err := MarshalCell(c)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return json.Marshal(raw)
}

func newCell(kind CellKind) (Cell, error) {
	switch kind {
	case KindText:
		return &TextCell{}, nil
	case KindHeading:
		return &HeadingCell{}, nil
	case KindCode:
		return &CodeCell{}, nil
	case KindListItem:
		return &ListItemCell{}, nil
	case KindCheckbox:
		return &CheckboxCell{}, nil
	case KindImage:
		return &ImageCell{}, nil
	case KindDivider:
		return &DividerCell{}, nil
	case KindProvider:
		return &ProviderCell{}, nil
	case KindTable:
		return &TableCell{}, nil
	case KindLog:
		return &LogCell{}, nil
	case KindDiscussion:
		return &DiscussionCell{}, nil
	case KindGraph:
		return &GraphCell{}, nil
	}
	return nil, fmt.Errorf("unknown cell type %q", kind)
}

// UnmarshalCell decodes a single cell, dispatching on its "type" field.
func UnmarshalCell(data []byte) (Cell, error) {
	kind := gjson.GetBytes(data, "type")
	if !kind.Exists() {
		return nil, fmt.Errorf("cell has no type")
	}
	c, err := newCell(CellKind(kind.String()))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal %s cell: %w", kind.String(), err)
	}
	return c, nil
}

// UnmarshalCells decodes a JSON array of cells. Empty input and null decode
// to a nil slice.
func UnmarshalCells(data []byte) ([]Cell, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("cells are not valid JSON")
	}
	parsed := gjson.ParseBytes(data)
	if parsed.Type == gjson.Null {
		return nil, nil
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("cells must be a JSON array")
	}

	var cells []Cell
	var err error
	parsed.ForEach(func(_, value gjson.Result) bool {
		var c Cell
		c, err = UnmarshalCell([]byte(value.Raw))
		if err != nil {
			err = fmt.Errorf("cell %d: %w", len(cells), err)
			return false
		}
		cells = append(cells, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}
