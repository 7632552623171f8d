package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	BaseWidth  = 1200
	BaseHeight = 800

	MinScale     = 0.5
	MaxScale     = 2.0
	DefaultScale = 1.5

	// DefaultMaxWidth caps the width of a rendered section
	DefaultMaxWidth = 2400

	headingHeight = 60
)

var palette = []drawing.Color{chart.ColorBlue, chart.ColorGreen, chart.ColorRed, chart.ColorOrange}

// Series is one named row of values, aligned with Panel.Labels
type Series struct {
	Name   string
	Values []float64
}

// Panel is a single bar chart. One series renders plain bars, more than one
// renders stacked bars.
type Panel struct {
	Title  string
	Labels []string
	Series []Series
	Max    float64 // fixed y axis maximum, 0 derives it from the data
}

// Section is a heading over up to four panels laid out two by two
type Section struct {
	Heading string
	Panels  []Panel
}

type Renderer struct {
	Scale    float64
	MaxWidth int
}

// ClampScale limits a raster scale to [MinScale, MaxScale]; zero and
// negative values fall back to DefaultScale.
func ClampScale(scale float64) float64 {
	switch {
	case scale <= 0:
		return DefaultScale
	case scale < MinScale:
		return MinScale
	case scale > MaxScale:
		return MaxScale
	}
	return scale
}

func NewRenderer(scale float64) *Renderer {
	return &Renderer{Scale: ClampScale(scale), MaxWidth: DefaultMaxWidth}
}

// Size is the pixel size a section renders at before any downscale
func (r *Renderer) Size() (int, int) {
	scale := ClampScale(r.Scale)
	return int(BaseWidth * scale), int(BaseHeight * scale)
}

// Render draws a section onto a white canvas
func (r *Renderer) Render(sec Section) (image.Image, error) {
	width, height := r.Size()
	scale := ClampScale(r.Scale)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	heading := int(headingHeight * scale)
	drawHeading(canvas, sec.Heading, image.Rect(int(16*scale), int(12*scale), width, heading))

	cellW, cellH := width/2, (height-heading)/2
	for i, p := range sec.Panels {
		if i >= 4 {
			break
		}
		cell := image.Rect(0, 0, cellW, cellH).Add(image.Pt((i%2)*cellW, heading+(i/2)*cellH))

		img, err := renderPanel(p, cellW, cellH, scale)
		if err != nil {
			return nil, err
		}
		if img.Bounds().Dx() == cellW && img.Bounds().Dy() == cellH {
			draw.Draw(canvas, cell, img, img.Bounds().Min, draw.Src)
		} else {
			draw.CatmullRom.Scale(canvas, cell, img, img.Bounds(), draw.Src, nil)
		}
	}

	maxWidth := r.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if width <= maxWidth {
		return canvas, nil
	}

	out := image.NewRGBA(image.Rect(0, 0, maxWidth, height*maxWidth/width))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out, nil
}

// RenderPNG renders a section and encodes it as PNG
func (r *Renderer) RenderPNG(sec Section, w io.Writer) error {
	img, err := r.Render(sec)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func renderPanel(p Panel, width, height int, scale float64) (image.Image, error) {
	if !hasValues(p) {
		return blankPanel(p.Title, width, height), nil
	}

	padding := chart.Style{Padding: chart.Box{
		Top:    int(40 * scale),
		Left:   int(16 * scale),
		Right:  int(16 * scale),
		Bottom: int(16 * scale),
	}}

	var buf bytes.Buffer
	var err error
	if len(p.Series) == 1 {
		err = barChart(p, width, height, padding).Render(chart.PNG, &buf)
	} else {
		err = stackedChart(p, width, height, padding).Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %q chart: %w", p.Title, err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q chart: %w", p.Title, err)
	}
	return img, nil
}

func barChart(p Panel, width, height int, background chart.Style) chart.BarChart {
	bars := make([]chart.Value, 0, len(p.Labels))
	for i, label := range p.Labels {
		bars = append(bars, chart.Value{Label: label, Value: valueAt(p.Series[0].Values, i)})
	}

	barWidth := (width - 80) / (2 * len(bars))
	barWidth = max(4, min(barWidth, 60))

	return chart.BarChart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: background,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(p)},
		},
		Bars: bars,
	}
}

func stackedChart(p Panel, width, height int, background chart.Style) chart.StackedBarChart {
	bars := make([]chart.StackedBar, 0, len(p.Labels))
	for i, label := range p.Labels {
		values := make([]chart.Value, 0, len(p.Series))
		for j, s := range p.Series {
			col := palette[j%len(palette)]
			values = append(values, chart.Value{
				Label: s.Name,
				Value: valueAt(s.Values, i),
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
		}
		bars = append(bars, chart.StackedBar{Name: label, Values: values})
	}

	return chart.StackedBarChart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: background,
		BarSpacing: 20,
		Bars:       bars,
	}
}

// hasValues reports whether a panel has at least one label and a positive
// value; go-chart refuses empty or zero height charts.
func hasValues(p Panel) bool {
	if len(p.Labels) == 0 || len(p.Series) == 0 {
		return false
	}
	for _, s := range p.Series {
		for _, v := range s.Values {
			if v > 0 {
				return true
			}
		}
	}
	return false
}

func axisMax(p Panel) float64 {
	if p.Max > 0 {
		return p.Max
	}
	var top float64
	for _, s := range p.Series {
		for _, v := range s.Values {
			top = max(top, v)
		}
	}
	if top <= 0 {
		return 1
	}
	return top * 1.1
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func blankPanel(title string, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	lineH := max(height/16, 13)
	drawHeading(img, title, image.Rect(width/20, lineH/2, width, lineH*3/2))
	drawHeading(img, "No data", image.Rect(width/2-lineH*2, height/2-lineH/2, width, height/2+lineH/2))
	return img
}

// drawHeading renders text with the 7x13 bitmap face and scales it to the
// height of rect, keeping the aspect ratio.
func drawHeading(dst *image.RGBA, text string, rect image.Rectangle) {
	if text == "" || rect.Empty() {
		return
	}

	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()
	strip := image.NewRGBA(image.Rect(0, 0, textW, face.Height))
	draw.Draw(strip, strip.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  strip,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.I(face.Ascent)},
	}
	d.DrawString(text)

	h := rect.Dy()
	w := textW * h / face.Height
	if w > rect.Dx() {
		w = rect.Dx()
		h = face.Height * w / textW
	}
	target := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Min.Y+h)
	draw.CatmullRom.Scale(dst, target, strip, strip.Bounds(), draw.Src, nil)
}
