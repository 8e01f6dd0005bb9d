package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/JonMunkholm/bidash/internal/core"
)

const (
	svgWidth     = 960
	svgHeight    = 480
	svgBarWidth  = 40
	svgBarGap    = 12
	maxLabelRune = 14
)

// RenderBarSVG writes a static bar chart of s as SVG.
func RenderBarSVG(w io.Writer, title string, s core.Summary) error {
	if len(s) == 0 {
		return ErrEmptyChart
	}

	bars := make([]gochart.Value, len(s))
	for i, g := range s {
		bars[i] = gochart.Value{Label: shortLabel(g.Key), Value: g.Value}
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      svgWidth,
		Height:     svgHeight,
		BarWidth:   svgBarWidth,
		BarSpacing: svgBarGap,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Bars: bars,
	}
	if need := len(bars)*(svgBarWidth+svgBarGap) + 80; need > svgWidth {
		bc.Width = need
	}

	if err := bc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func shortLabel(s string) string {
	r := []rune(s)
	if len(r) <= maxLabelRune {
		return s
	}
	return string(r[:maxLabelRune-1]) + "…"
}
