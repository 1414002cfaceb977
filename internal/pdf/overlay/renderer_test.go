package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

func TestChooseStrategy(t *testing.T) {
	ascii := &Layout{
		FieldEntries: []FieldEntry{
			{TextContent: &TextContent{Content: "Jane Doe"}},
		},
	}
	assert.Equal(t, StrategyAnnotation, ChooseStrategy(ascii))

	// One wide-glyph entry switches the whole document.
	cjk := &Layout{
		FieldEntries: []FieldEntry{
			{TextContent: &TextContent{Content: "Jane Doe"}},
			{TextContent: &TextContent{Content: "山田太郎"}},
		},
	}
	assert.Equal(t, StrategyEmbedded, ChooseStrategy(cjk))
}

func TestCheckLayoutPages(t *testing.T) {
	dims := map[int][2]float64{1: {612, 792}, 2: {612, 792}}

	base := func() *Layout {
		return &Layout{
			FieldEntries: []FieldEntry{
				{Description: "Name", PageNum: 1, EntryBounds: Box{0, 0, 10, 10}},
			},
			PageDimensions: []PageGeometry{
				{PageNum: 1, ImgWidth: 1700, ImgHeight: 2200},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, checkLayoutPages(base(), 2, dims))
	})

	t.Run("page beyond document", func(t *testing.T) {
		layout := base()
		layout.FieldEntries[0].PageNum = 3
		err := checkLayoutPages(layout, 2, dims)
		require.Error(t, err)
		assert.True(t, pdferrors.IsInput(err))
		assert.Contains(t, err.Error(), "references page 3")
	})

	t.Run("missing page geometry", func(t *testing.T) {
		layout := base()
		layout.FieldEntries[0].PageNum = 2
		err := checkLayoutPages(layout, 2, dims)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no page dimensions recorded for page 2")
	})
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		r, g, b int
	}{
		{name: "black", input: "000000", r: 0, g: 0, b: 0},
		{name: "white", input: "FFFFFF", r: 255, g: 255, b: 255},
		{name: "mixed", input: "1A2B3C", r: 26, g: 43, b: 60},
		{name: "lowercase", input: "ff8000", r: 255, g: 128, b: 0},
		{name: "empty falls back to black", input: "", r: 0, g: 0, b: 0},
		{name: "short falls back to black", input: "FFF", r: 0, g: 0, b: 0},
		{name: "garbage falls back to black", input: "zzzzzz", r: 0, g: 0, b: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r8, g8, b8 := parseHexColor255(tt.input)
			assert.Equal(t, tt.r, r8)
			assert.Equal(t, tt.g, g8)
			assert.Equal(t, tt.b, b8)

			rf, gf, bf := parseHexColor(tt.input)
			assert.InDelta(t, float64(tt.r)/255, rf, 1e-9)
			assert.InDelta(t, float64(tt.g)/255, gf, 1e-9)
			assert.InDelta(t, float64(tt.b)/255, bf, 1e-9)
		})
	}
}

func TestRendererUnreadableInput(t *testing.T) {
	r := NewRenderer(NewFontSet())
	layout := &Layout{
		FieldEntries: []FieldEntry{
			{Description: "Name", PageNum: 1, EntryBounds: Box{0, 0, 10, 10},
				TextContent: &TextContent{Content: "田中"}},
		},
		PageDimensions: []PageGeometry{{PageNum: 1, ImgWidth: 100, ImgHeight: 100}},
	}

	_, err := r.ApplyFile("/nonexistent/input.pdf", layout, "/nonexistent/output.pdf")
	require.Error(t, err)
	// The document read fails first for a missing input.
	assert.True(t, pdferrors.IsInput(err))
}
