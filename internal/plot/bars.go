// Package plot renders the two-group mean chart for the t-test tool.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/stats"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const chartTitle = "Mean (error bars = STDEV.P)"

var palette = map[string]string{
	"blue":   "0000ff",
	"green":  "008000",
	"red":    "ff0000",
	"orange": "ffa500",
	"purple": "800080",
	"gray":   "808080",
}

// Colors lists the accepted bar color names.
func Colors() []string {
	out := make([]string, 0, len(palette))
	for k := range palette {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseColor maps a color name to its drawing color.
func ParseColor(name string) (drawing.Color, error) {
	hex, ok := palette[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return drawing.Color{}, fmt.Errorf("unknown color %q (choose from %s)", name, strings.Join(Colors(), ", "))
	}
	return drawing.ColorFromHex(hex), nil
}

// BarOptions controls the appearance of the chart.
type BarOptions struct {
	Color      string
	Capsize    int
	Width      int
	Height     int
	ShowValues bool
}

// DefaultBarOptions mirrors the config defaults.
func DefaultBarOptions() BarOptions {
	return BarOptions{Color: "blue", Capsize: 10, Width: 480, Height: 360, ShowValues: true}
}

type bar struct {
	label string
	mean  float64
	sd    float64
}

// RenderMeans draws two bars (means of A and B) with population SD error
// bars and the significance stars of res above them, as a PNG.
func RenderMeans(w io.Writer, res *stats.TTestResult, labels [2]string, opt BarOptions) error {
	if res == nil {
		return fmt.Errorf("render means: no t-test result")
	}
	fill, err := ParseColor(opt.Color)
	if err != nil {
		return err
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		d := DefaultBarOptions()
		opt.Width, opt.Height = d.Width, d.Height
	}
	if opt.Capsize < 0 {
		opt.Capsize = 0
	}
	bars := []bar{
		{label: labels[0], mean: finite(res.MeanA), sd: finite(res.SDA)},
		{label: labels[1], mean: finite(res.MeanB), sd: finite(res.SDB)},
	}

	maxMean := math.Max(bars[0].mean, bars[1].mean)
	maxSD := math.Max(bars[0].sd, bars[1].sd)
	starY := maxMean + maxSD*0.5 + maxSD*0.1
	lo, hi := 0.0, starY
	for _, b := range bars {
		lo = math.Min(lo, b.mean-b.sd)
		hi = math.Max(hi, b.mean+b.sd)
	}
	if hi-lo == 0 {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.15
	yr := chart.ContinuousRange{Min: lo, Max: hi + pad}
	if lo < 0 {
		yr.Min = lo - pad
	}

	ch := chart.Chart{
		Title:  chartTitle,
		Width:  opt.Width,
		Height: opt.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 3},
			Ticks: []chart.Tick{{Value: 1, Label: bars[0].label}, {Value: 2, Label: bars[1].label}},
		},
		YAxis: chart.YAxis{
			Name:  "Value",
			Range: &chart.ContinuousRange{Min: yr.Min, Max: yr.Max},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Mean",
				XValues: []float64{1, 2},
				YValues: []float64{bars[0].mean, bars[1].mean},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
			},
		},
		Elements: []chart.Renderable{
			barsRenderable(bars, yr, fill, opt, starY, res.Significance()),
		},
	}
	return ch.Render(chart.PNG, w)
}

// WritePNG renders the chart and writes it atomically to path.
func WritePNG(path string, res *stats.TTestResult, labels [2]string, opt BarOptions) error {
	var buf bytes.Buffer
	if err := RenderMeans(&buf, res, labels, opt); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func barsRenderable(bars []bar, yr chart.ContinuousRange, fill drawing.Color, opt BarOptions, starY float64, stars string) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		xr := chart.ContinuousRange{Min: 0, Max: 3, Domain: box.Width()}
		yr.Domain = box.Height()
		px := func(x float64) int { return box.Left + xr.Translate(x) }
		py := func(y float64) int { return box.Bottom - yr.Translate(y) }
		half := box.Width() / 6

		font := defaults.Font
		if font == nil {
			font, _ = chart.GetDefaultFont()
		}
		r.SetFont(font)
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(9)

		for i, b := range bars {
			cx := px(float64(i + 1))
			base := py(math.Max(0, yr.Min))

			r.SetFillColor(fill)
			r.SetStrokeColor(drawing.ColorBlack)
			r.SetStrokeWidth(1)
			r.MoveTo(cx-half, base)
			r.LineTo(cx+half, base)
			r.LineTo(cx+half, py(b.mean))
			r.LineTo(cx-half, py(b.mean))
			r.Close()
			r.FillStroke()

			if b.sd > 0 {
				top, bottom := py(b.mean+b.sd), py(b.mean-b.sd)
				r.SetStrokeColor(drawing.ColorBlack)
				r.SetStrokeWidth(1.5)
				r.MoveTo(cx, bottom)
				r.LineTo(cx, top)
				r.Stroke()
				if opt.Capsize > 0 {
					for _, y := range []int{top, bottom} {
						r.MoveTo(cx-opt.Capsize/2, y)
						r.LineTo(cx+opt.Capsize/2, y)
						r.Stroke()
					}
				}
			}

			if opt.ShowValues {
				label := fmt.Sprintf("%.2f", b.mean)
				tb := r.MeasureText(label)
				r.Text(label, cx-tb.Width()/2, py(b.mean)-3)
			}
		}

		if stars != "" {
			r.SetFontSize(16)
			tb := r.MeasureText(stars)
			mid := (px(1) + px(2)) / 2
			r.Text(stars, mid-tb.Width()/2, py(starY))
		}
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
