package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGulati/IndexFunds/internal/models"
)

func TestSymbolColor_Deterministic(t *testing.T) {
	assert.Equal(t, SymbolColor("^GSPC"), SymbolColor("^GSPC"))
	assert.EqualValues(t, 255, SymbolColor("^N225").A)
}

func TestHSLColor_Primaries(t *testing.T) {
	red := hslColor(0, 1, 0.5)
	assert.EqualValues(t, 255, red.R)
	assert.EqualValues(t, 0, red.G)
	assert.EqualValues(t, 0, red.B)

	green := hslColor(120, 1, 0.5)
	assert.EqualValues(t, 255, green.G)

	blue := hslColor(240, 1, 0.5)
	assert.EqualValues(t, 255, blue.B)
}

func TestRenderPNG(t *testing.T) {
	aligned := &models.AlignedChart{
		Range:    models.Range1Y,
		Timeline: []int64{86400, 172800, 259200},
		Series: []models.AlignedSeries{
			{Symbol: "A", Currency: "USD", Values: []models.NullFloat64{100, 110, 105}},
			{Symbol: "B", Currency: "USD", Values: []models.NullFloat64{models.Null(), 90, 95}},
		},
	}

	png, err := RenderPNG(aligned, 900, 400)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, "PNG", string(png[1:4]))
}

func TestRenderPNG_SkipsEmptySeries(t *testing.T) {
	aligned := &models.AlignedChart{
		Range:    models.Range1Y,
		Timeline: []int64{86400, 172800},
		Series: []models.AlignedSeries{
			{Symbol: "A", Currency: "USD", Values: []models.NullFloat64{100, 110}},
			{Symbol: "EMPTY", Empty: true, Values: []models.NullFloat64{models.Null(), models.Null()}},
		},
	}

	_, err := RenderPNG(aligned, 900, 400)
	assert.NoError(t, err)
}

func TestRenderPNG_NothingDrawable(t *testing.T) {
	aligned := &models.AlignedChart{
		Range:    models.Range1Y,
		Timeline: []int64{86400, 172800},
		Series: []models.AlignedSeries{
			{Symbol: "EMPTY", Empty: true, Values: []models.NullFloat64{models.Null(), models.Null()}},
		},
	}

	_, err := RenderPNG(aligned, 900, 400)
	assert.Error(t, err)
}

func TestRenderPNG_ShortTimeline(t *testing.T) {
	aligned := &models.AlignedChart{
		Range:    models.Range1D,
		Timeline: []int64{86400},
		Series:   []models.AlignedSeries{{Symbol: "A", Values: []models.NullFloat64{1}}},
	}

	_, err := RenderPNG(aligned, 900, 400)
	assert.Error(t, err)
}
