package notebook

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"notebook-markdown-be/pkg/formatting"
)

func TestMarshalCellsAddsType(t *testing.T) {
	heading := NewHeadingCell(H2, "Title", nil)
	heading.SetID("1")
	list := NewListItemCell(Ordered, "two", formatting.Formatting{
		formatting.NewAnnotationWithOffset(0, formatting.StartBold()),
		formatting.NewAnnotationWithOffset(3, formatting.EndBold()),
	})
	list.SetID("2")
	list.StartNumber = Ptr[uint16](2)
	code := NewCodeCell("fmt.Println()", Ptr("go"))
	code.SetID("3")

	data, err := MarshalCells([]Cell{heading, list, code})
	require.NoError(t, err)

	parsed := gjson.ParseBytes(data)
	assert.Equal(t, "heading", parsed.Get("0.type").String())
	assert.Equal(t, "h2", parsed.Get("0.headingType").String())
	assert.Equal(t, "Title", parsed.Get("0.content").String())
	assert.Equal(t, "list_item", parsed.Get("1.type").String())
	assert.Equal(t, int64(2), parsed.Get("1.startNumber").Int())
	assert.Equal(t, "start_bold", parsed.Get("1.formatting.0.type").String())
	assert.False(t, parsed.Get("1.level").Exists())
	assert.Equal(t, "code", parsed.Get("2.type").String())
	assert.Equal(t, "go", parsed.Get("2.syntax").String())
	assert.False(t, parsed.Get("2.formatting").Exists())
}

func TestUnmarshalCellsRestoresVariants(t *testing.T) {
	checkbox := NewCheckboxCell(true, "done", nil)
	checkbox.SetID("1")
	checkbox.Level = Ptr[uint8](1)
	image := NewImageCell("https://example.com/a.png")
	image.SetID("2")
	provider := &ProviderCell{Intent: "prometheus,timeseries", QueryData: Ptr("application/x-www-form-urlencoded,query=up"), Title: ""}
	provider.SetID("3")
	divider := &DividerCell{}
	divider.SetID("4")

	data, err := MarshalCells([]Cell{checkbox, image, provider, divider})
	require.NoError(t, err)

	cells, err := UnmarshalCells(data)
	require.NoError(t, err)
	require.Len(t, cells, 4)

	gotCheckbox, ok := cells[0].(*CheckboxCell)
	require.True(t, ok)
	assert.Equal(t, "1", gotCheckbox.ID())
	assert.True(t, gotCheckbox.Checked)
	assert.Equal(t, "done", gotCheckbox.Content())
	require.NotNil(t, gotCheckbox.Level)
	assert.Equal(t, uint8(1), *gotCheckbox.Level)

	gotImage, ok := cells[1].(*ImageCell)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a.png", *gotImage.URL)

	gotProvider, ok := cells[2].(*ProviderCell)
	require.True(t, ok)
	assert.Equal(t, "prometheus,timeseries", gotProvider.Intent)

	assert.Equal(t, KindDivider, cells[3].Kind())
	assert.Equal(t, "4", cells[3].ID())
}

func TestUnmarshalCellsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `[{`},
		{"not an array", `{"type":"text"}`},
		{"missing type", `[{"id":"1","content":"x"}]`},
		{"unknown type", `[{"id":"1","type":"sparkle"}]`},
		{"bad field", `[{"id":"1","type":"text","content":5}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCells([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalCellsEmpty(t *testing.T) {
	cells, err := UnmarshalCells(nil)
	assert.NoError(t, err)
	assert.Nil(t, cells)

	cells, err = UnmarshalCells([]byte("null"))
	assert.NoError(t, err)
	assert.Nil(t, cells)

	data, err := MarshalCells(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNewNotebookJSON(t *testing.T) {
	text := NewTextCell("hello", nil)
	text.SetID("1")
	nb := NewNotebook{
		Title:     "Some title",
		Cells:     []Cell{text},
		TimeRange: DefaultTimeRange(),
	}

	data, err := json.Marshal(nb)
	require.NoError(t, err)
	assert.Equal(t, "Some title", gjson.GetBytes(data, "title").String())
	assert.Equal(t, int64(-60), gjson.GetBytes(data, "timeRange.minutes").Int())
	assert.Equal(t, "text", gjson.GetBytes(data, "cells.0.type").String())
	assert.True(t, gjson.GetBytes(data, "labels").IsArray())

	var decoded NewNotebook
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, nb.Title, decoded.Title)
	require.Len(t, decoded.Cells, 1)
	assert.Equal(t, "hello", decoded.Cells[0].(*TextCell).Content())
	require.NotNil(t, decoded.TimeRange.Minutes)
	assert.Equal(t, DefaultRelativeMinutes, *decoded.TimeRange.Minutes)
}

func TestTimeRange(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	from, to := DefaultTimeRange().Resolve(now)
	assert.Equal(t, now.Add(-time.Hour), from)
	assert.Equal(t, now, to)
	assert.NoError(t, DefaultTimeRange().Validate())

	absolute := AbsoluteTimeRange(now.Add(-2*time.Hour), now)
	assert.False(t, absolute.IsRelative())
	assert.NoError(t, absolute.Validate())

	assert.ErrorIs(t, TimeRange{}.Validate(), ErrInvalidTimeRange)
	assert.ErrorIs(t, AbsoluteTimeRange(now, now.Add(-time.Minute)).Validate(), ErrInvalidTimeRange)
}

func TestQueryData(t *testing.T) {
	data := SetQueryField(FormEncodedMIME, "query", "sum(rate(http_requests_total[5m]))")
	assert.Equal(t, "application/x-www-form-urlencoded,query=sum%28rate%28http_requests_total%5B5m%5D%29%29", data)

	query, ok := QueryField(data, "query")
	assert.True(t, ok)
	assert.Equal(t, "sum(rate(http_requests_total[5m]))", query)

	data = SetQueryField(data, "step", "30s")
	step, ok := QueryField(data, "step")
	assert.True(t, ok)
	assert.Equal(t, "30s", step)

	_, ok = QueryField(data, "missing")
	assert.False(t, ok)
	_, ok = QueryField("application/json,{}", "query")
	assert.False(t, ok)
}
