package chart

import (
	"bytes"
	"fmt"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/GGulati/IndexFunds/internal/models"
)

// RenderPNG renders an aligned chart as a PNG line chart, one colored
// line per non-empty series. Null slots are skipped rather than drawn
// as zeros. Returns raw PNG bytes.
func RenderPNG(aligned *models.AlignedChart, width, height int) ([]byte, error) {
	if len(aligned.Timeline) < 2 {
		return nil, fmt.Errorf("need at least 2 timeline points, got %d", len(aligned.Timeline))
	}

	series := make([]gochart.Series, 0, len(aligned.Series))
	for _, s := range aligned.Series {
		if s.Empty {
			continue
		}

		xValues := make([]time.Time, 0, len(aligned.Timeline))
		yValues := make([]float64, 0, len(aligned.Timeline))
		for i, v := range s.Values {
			if v.IsNull() {
				continue
			}
			xValues = append(xValues, time.Unix(aligned.Timeline[i], 0).UTC())
			yValues = append(yValues, float64(v))
		}
		if len(xValues) < 2 {
			continue
		}

		series = append(series, gochart.TimeSeries{
			Name: s.Symbol,
			Style: gochart.Style{
				StrokeColor: SymbolColor(s.Symbol),
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: yValues,
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no drawable series")
	}

	yFormatter := func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		if aligned.PercentBasis {
			return fmt.Sprintf("%.0f%%", f)
		}
		return fmt.Sprintf("%.0f", f)
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			TickPosition: gochart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return gochart.TimeFromFloat64(t).Format(xTickFormat(aligned.Range))
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			ValueFormatter: yFormatter,
		},
		Series: series,
	}

	graph.Elements = []gochart.Renderable{
		gochart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// xTickFormat picks a tick label format appropriate to the window width.
func xTickFormat(rng models.Range) string {
	switch rng {
	case models.Range1D, models.Range5D:
		return "15:04"
	case models.Range1Mo, models.Range6Mo, models.RangeYTD:
		return "Jan 2"
	default:
		return "Jan 06"
	}
}

// SymbolColor derives a stable color from a symbol's characters, so a
// symbol keeps its color across requests without a stored palette.
func SymbolColor(symbol string) drawing.Color {
	var sum int
	for _, r := range symbol {
		sum += int(r)
	}
	hue := float64(sum % 360)
	return hslColor(hue, 0.65, 0.45)
}

// hslColor converts an HSL triple (hue in degrees, saturation and
// lightness in [0,1]) to an opaque RGB color.
func hslColor(h, s, l float64) drawing.Color {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return drawing.Color{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
