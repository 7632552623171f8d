package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSection() Section {
	labels := []string{"Jan 25", "Feb 25", "Mar 25"}
	return Section{
		Heading: "1. Engineering",
		Panels: []Panel{
			{Title: "On Time %", Labels: labels, Series: []Series{{Name: "On Time %", Values: []float64{80, 85, 90}}}, Max: 100},
			{Title: "Work Hour Completion %", Labels: labels, Series: []Series{{Name: "Completion", Values: []float64{70, 75, 72}}}, Max: 100},
			{Title: "Work Hour Lost", Labels: labels, Series: []Series{{Name: "Lost", Values: []float64{12, 8, 4}}}},
			{Title: "Leave Analysis", Labels: labels, Series: []Series{
				{Name: "SL %", Values: []float64{40, 50, 30}},
				{Name: "CL %", Values: []float64{40, 30, 50}},
				{Name: "A %", Values: []float64{20, 20, 20}},
			}},
		},
	}
}

func TestClampScale(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, DefaultScale},
		{-1, DefaultScale},
		{0.1, MinScale},
		{1, 1},
		{1.5, 1.5},
		{3, MaxScale},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScale(tt.in), "scale %v", tt.in)
	}
}

func TestRenderer_Size(t *testing.T) {
	w, h := NewRenderer(1.5).Size()
	assert.Equal(t, 1800, w)
	assert.Equal(t, 1200, h)

	w, h = NewRenderer(10).Size()
	assert.Equal(t, 2400, w)
	assert.Equal(t, 1600, h)
}

func TestRenderer_Render(t *testing.T) {
	img, err := NewRenderer(1).Render(sampleSection())
	require.NoError(t, err)

	assert.Equal(t, BaseWidth, img.Bounds().Dx())
	assert.Equal(t, BaseHeight, img.Bounds().Dy())
}

func TestRenderer_RenderDownscalesWideOutput(t *testing.T) {
	r := NewRenderer(1)
	r.MaxWidth = 600

	img, err := r.Render(sampleSection())
	require.NoError(t, err)

	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestRenderer_RenderEmptyAndZeroPanels(t *testing.T) {
	sec := Section{
		Heading: "2. Finance",
		Panels: []Panel{
			{Title: "On Time %"},
			{Title: "Work Hour Lost", Labels: []string{"Jan 25"}, Series: []Series{{Name: "Lost", Values: []float64{0}}}},
		},
	}

	img, err := NewRenderer(0.5).Render(sec)
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
}

func TestRenderer_RenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(0.5).RenderPNG(sampleSection(), &buf))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestAxisMax(t *testing.T) {
	assert.Equal(t, 100.0, axisMax(Panel{Max: 100}))
	assert.InDelta(t, 11.0, axisMax(Panel{Series: []Series{{Values: []float64{3, 10}}}}), 1e-9)
	assert.Equal(t, 1.0, axisMax(Panel{Series: []Series{{Values: []float64{0}}}}))
}
